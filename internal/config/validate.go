// SPDX-License-Identifier: AGPL-3.0-or-later
// dect-nr-plus-l2core - A DECT NR+ layer-2 MAC protocol engine
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

package config

import "errors"

var (
	// ErrInvalidLogLevel indicates that the provided log level is not valid.
	ErrInvalidLogLevel = errors.New("invalid log level provided")
	// ErrInvalidRedisHost indicates that the provided Redis host is not valid.
	ErrInvalidRedisHost = errors.New("invalid Redis host provided")
	// ErrInvalidRedisPort indicates that the provided Redis port is not valid.
	ErrInvalidRedisPort = errors.New("invalid Redis port provided")
	// ErrInvalidDatabaseDriver indicates that the provided database driver is not valid.
	ErrInvalidDatabaseDriver = errors.New("invalid database driver provided")
	// ErrInvalidDatabaseHost indicates that the provided database host is not valid.
	ErrInvalidDatabaseHost = errors.New("invalid database host provided")
	// ErrInvalidDatabasePort indicates that the provided database port is not valid.
	ErrInvalidDatabasePort = errors.New("invalid database port provided")
	// ErrInvalidDatabaseName indicates that the provided database name is not valid.
	ErrInvalidDatabaseName = errors.New("invalid database name provided")
	// ErrSecretRequired indicates that the secret key is required for the application.
	ErrSecretRequired = errors.New("secret key is required for the application")
	// ErrPasswordSaltRequired indicates that the password salt is required for key derivation.
	ErrPasswordSaltRequired = errors.New("password salt is required for key derivation")
	// ErrInvalidHTTPHost indicates that the provided HTTP host is not valid.
	ErrInvalidHTTPHost = errors.New("invalid HTTP host provided")
	// ErrInvalidHTTPPort indicates that the provided HTTP port is not valid.
	ErrInvalidHTTPPort = errors.New("invalid HTTP port provided")
	// ErrHTTPCanonicalHostRequired indicates the canonical host used for absolute URLs is missing.
	ErrHTTPCanonicalHostRequired = errors.New("canonical host is required for generating absolute URLs in the HTTP server")
	// ErrHTTPRobotsTXTModeInvalid indicates that the provided robots.txt mode is not valid.
	ErrHTTPRobotsTXTModeInvalid = errors.New("invalid robots.txt mode provided, must be one of allow, disabled, or custom")
	// ErrInvalidHTTPRobotsTXTContent indicates that the robots.txt content is required when the mode is custom.
	ErrInvalidHTTPRobotsTXTContent = errors.New("invalid robots.txt content provided, must be non-empty when mode is custom")
	// ErrInvalidMetricsBindAddress indicates that the provided metrics server bind address is not valid.
	ErrInvalidMetricsBindAddress = errors.New("invalid metrics server bind address provided")
	// ErrInvalidMetricsPort indicates that the provided metrics server port is not valid.
	ErrInvalidMetricsPort = errors.New("invalid metrics server port provided")
	// ErrInvalidPProfBindAddress indicates that the provided PProf server bind address is not valid.
	ErrInvalidPProfBindAddress = errors.New("invalid PProf server bind address provided")
	// ErrInvalidPProfPort indicates that the provided PProf server port is not valid.
	ErrInvalidPProfPort = errors.New("invalid PProf server port provided")
	// ErrInvalidRole indicates that the provided MAC role is not valid.
	ErrInvalidRole = errors.New("invalid MAC role provided, must be ft or pt")
	// ErrInvalidSamplesPerSecond indicates the sample rate is not positive.
	ErrInvalidSamplesPerSecond = errors.New("samples per second must be positive")
	// ErrInvalidBeaconPeriod indicates the beacon period is not positive.
	ErrInvalidBeaconPeriod = errors.New("beacon period samples must be positive")
	// ErrInvalidHARQProcesses indicates the HARQ process pool size is not positive.
	ErrInvalidHARQProcesses = errors.New("harq processes must be positive")
	// ErrInvalidAppBridgeQueue indicates the app bridge queue limits are not positive.
	ErrInvalidAppBridgeQueue = errors.New("app bridge queue depth and max datagram size must be positive")
	// ErrInvalidAppBridgeTransport indicates an unrecognized transport was configured.
	ErrInvalidAppBridgeTransport = errors.New("app bridge transport must be \"none\" or \"udp\"")
	// ErrInvalidAppBridgeConnections indicates a non-positive connection count.
	ErrInvalidAppBridgeConnections = errors.New("app bridge connection count must be positive")
	// ErrInvalidAppBridgeUDPPort indicates a UDP ingress or egress base port out of range.
	ErrInvalidAppBridgeUDPPort = errors.New("app bridge udp base ports must be between 1 and 65535")
)

// Validate validates the Redis configuration.
func (r Redis) Validate() error {
	if !r.Enabled {
		return nil
	}

	if r.Host == "" {
		return ErrInvalidRedisHost
	}
	if r.Port <= 0 || r.Port > 65535 {
		return ErrInvalidRedisPort
	}

	return nil
}

// Validate validates the Database configuration.
func (d Database) Validate() error {
	if d.Driver != DatabaseDriverSQLite &&
		d.Driver != DatabaseDriverPostgres &&
		d.Driver != DatabaseDriverMySQL {
		return ErrInvalidDatabaseDriver
	}

	if d.Driver != DatabaseDriverSQLite && d.Host == "" {
		return ErrInvalidDatabaseHost
	}

	if d.Driver != DatabaseDriverSQLite && (d.Port <= 0 || d.Port > 65535) {
		return ErrInvalidDatabasePort
	}

	if d.Database == "" {
		return ErrInvalidDatabaseName
	}

	return nil
}

// Validate validates the RobotsTXT configuration.
func (r RobotsTXT) Validate() error {
	if r.Mode != RobotsTXTModeAllow &&
		r.Mode != RobotsTXTModeDisabled &&
		r.Mode != RobotsTXTModeCustom {
		return ErrHTTPRobotsTXTModeInvalid
	}

	if r.Mode == RobotsTXTModeCustom && r.Content == "" {
		return ErrInvalidHTTPRobotsTXTContent
	}

	return nil
}

// Validate validates the HTTP configuration.
func (h HTTP) Validate() error {
	if h.Bind == "" {
		return ErrInvalidHTTPHost
	}

	if h.Port <= 0 || h.Port > 65535 {
		return ErrInvalidHTTPPort
	}

	if h.CanonicalHost == "" {
		return ErrHTTPCanonicalHostRequired
	}

	if err := h.RobotsTXT.Validate(); err != nil {
		return err
	}

	return nil
}

// Validate validates the Metrics configuration.
func (m Metrics) Validate() error {
	if !m.Enabled {
		return nil
	}

	if m.Bind == "" {
		return ErrInvalidMetricsBindAddress
	}
	if m.Port <= 0 || m.Port > 65535 {
		return ErrInvalidMetricsPort
	}

	return nil
}

// Validate validates the PProf configuration.
func (p PProf) Validate() error {
	if !p.Enabled {
		return nil
	}

	if p.Bind == "" {
		return ErrInvalidPProfBindAddress
	}
	if p.Port <= 0 || p.Port > 65535 {
		return ErrInvalidPProfPort
	}

	return nil
}

// Validate validates the MAC configuration.
func (m MAC) Validate() error {
	if m.Role != RoleFT && m.Role != RolePT {
		return ErrInvalidRole
	}
	if m.SamplesPerSecond <= 0 {
		return ErrInvalidSamplesPerSecond
	}
	if m.BeaconPeriodSamples <= 0 {
		return ErrInvalidBeaconPeriod
	}
	if m.HARQProcesses <= 0 {
		return ErrInvalidHARQProcesses
	}
	return nil
}

// Validate validates the AppBridge configuration.
func (a AppBridge) Validate() error {
	if a.NDatagram <= 0 || a.NDatagramMaxByte <= 0 {
		return ErrInvalidAppBridgeQueue
	}

	if a.Transport != AppBridgeTransportNone && a.Transport != AppBridgeTransportUDP {
		return ErrInvalidAppBridgeTransport
	}

	if a.Transport == AppBridgeTransportUDP {
		if a.NConnections <= 0 {
			return ErrInvalidAppBridgeConnections
		}
		if a.UDPIngressBasePort <= 0 || a.UDPIngressBasePort > 65535 {
			return ErrInvalidAppBridgeUDPPort
		}
		if a.UDPEgressBasePort <= 0 || a.UDPEgressBasePort > 65535 {
			return ErrInvalidAppBridgeUDPPort
		}
	}

	return nil
}

func (c Config) Validate() error {
	if c.LogLevel != LogLevelDebug &&
		c.LogLevel != LogLevelInfo &&
		c.LogLevel != LogLevelWarn &&
		c.LogLevel != LogLevelError {
		return ErrInvalidLogLevel
	}

	if c.Secret == "" {
		return ErrSecretRequired
	}

	if c.PasswordSalt == "" {
		return ErrPasswordSaltRequired
	}

	if err := c.Redis.Validate(); err != nil {
		return err
	}

	if err := c.Database.Validate(); err != nil {
		return err
	}

	if err := c.HTTP.Validate(); err != nil {
		return err
	}

	if err := c.MAC.Validate(); err != nil {
		return err
	}

	if err := c.AppBridge.Validate(); err != nil {
		return err
	}

	if err := c.Metrics.Validate(); err != nil {
		return err
	}

	if err := c.PProf.Validate(); err != nil {
		return err
	}

	return nil
}

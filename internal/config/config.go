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

import (
	"crypto/sha256"

	"golang.org/x/crypto/pbkdf2"
)

// Config stores the application configuration. Values are populated by
// configulator from the environment, a config file, or flags depending on
// how the binary is invoked.
type Config struct {
	LogLevel     LogLevel `name:"log-level" description:"Logging verbosity" default:"info"`
	Secret       string   `name:"secret" description:"Secret used to derive the association authentication key"`
	PasswordSalt string   `name:"password-salt" description:"Salt used alongside Secret for key derivation"`

	Redis     Redis     `name:"redis"`
	Database  Database  `name:"database"`
	HTTP      HTTP      `name:"http"`
	MAC       MAC       `name:"mac"`
	AppBridge AppBridge `name:"app-bridge"`
	Metrics   Metrics   `name:"metrics"`
	PProf     PProf     `name:"pprof"`
}

// Redis configures the optional distributed coordination backend, used to
// detect other live instances of the same FT during a restart or failover.
type Redis struct {
	Enabled  bool   `name:"enabled" default:"false"`
	Host     string `name:"host" default:"localhost"`
	Port     int    `name:"port" default:"6379"`
	Password string `name:"password"`
}

// Database configures persistent storage for contacts and radio device
// capability records.
type Database struct {
	Driver          DatabaseDriver `name:"driver" default:"sqlite"`
	Host            string         `name:"host"`
	Port            int            `name:"port"`
	User            string         `name:"user"`
	Password        string         `name:"password"`
	Database        string         `name:"database" default:"l2core.db"`
	ExtraParameters []string       `name:"extra-parameters" description:"Extra key=value DSN parameters appended verbatim"`
}

// RobotsTXT configures the robots.txt served by the diagnostic HTTP server.
type RobotsTXT struct {
	Mode    RobotsTXTMode `name:"mode" default:"disabled"`
	Content string        `name:"content"`
}

// HTTP configures the diagnostic HTTP server exposing contact and HARQ pool
// state for operators.
type HTTP struct {
	Bind          string    `name:"bind" default:"[::]"`
	Port          int       `name:"port" default:"4060"`
	CanonicalHost string    `name:"canonical-host"`
	RobotsTXT     RobotsTXT `name:"robots-txt"`
}

// MAC configures the firmware instance: its role, identity, and the timing
// parameters governing beacon scheduling, HARQ pooling, and association.
type MAC struct {
	Role               Role   `name:"role" default:"ft"`
	NetworkID          uint32 `name:"network-id"`
	LongRadioDeviceID  uint32 `name:"long-radio-device-id"`
	ShortRadioDeviceID uint32 `name:"short-radio-device-id"`

	SamplesPerSecond       int64 `name:"samples-per-second" default:"1000000"`
	BeaconPeriodSamples    int64 `name:"beacon-period-samples" default:"10000000"`
	PrepareDurationSamples int64 `name:"prepare-duration-samples" default:"2000"`
	PPSOffsetSamples       int64 `name:"pps-offset-samples" default:"0"`

	HARQProcesses int    `name:"harq-processes" default:"8"`
	HARQALenMax   uint32 `name:"harq-a-len-max" default:"1024"`
	HARQZ         int    `name:"harq-z" default:"6144"`

	MaxSimultaneousTxUnicast int `name:"max-simultaneous-tx-unicast" default:"1"`
	MissedBeaconMax          int `name:"missed-beacon-max" default:"8"`
	AssociationMaxRetries    int `name:"association-max-retries" default:"5"`
}

// AppBridge configures the bounded ingress/egress datagram queues bridging
// the firmware to the surrounding application, and the external transport
// that feeds and drains them.
type AppBridge struct {
	NDatagram        int `name:"n-datagram" default:"32"`
	NDatagramMaxByte int `name:"n-datagram-max-byte" default:"1500"`

	Transport AppBridgeTransport `name:"transport" default:"none"`
	// NConnections is the number of independent application connections
	// bridged, each with its own ingress and egress UDP port.
	NConnections int `name:"n-connections" default:"1"`
	// UDPIngressBasePort is the first of NConnections consecutive ports
	// the bridge listens on for datagrams bound for the MAC, one port per
	// connection, all bound to INADDR_ANY.
	UDPIngressBasePort int `name:"udp-ingress-base-port" default:"47000"`
	// UDPEgressBasePort is the first of NConnections consecutive ports
	// the bridge sends decoded user-plane-data to.
	UDPEgressBasePort int `name:"udp-egress-base-port" default:"47100"`
	// UDPEgressHost is the destination host datagrams are sent to on the
	// egress ports; defaults to the loopback interface.
	UDPEgressHost string `name:"udp-egress-host" default:"127.0.0.1"`
}

// Metrics configures the Prometheus metrics server and optional OTLP trace export.
type Metrics struct {
	Enabled      bool   `name:"enabled" default:"false"`
	Bind         string `name:"bind" default:"[::]"`
	Port         int    `name:"port" default:"9090"`
	OTLPEndpoint string `name:"otlp-endpoint"`
}

// PProf configures the optional pprof profiling server.
type PProf struct {
	Enabled bool   `name:"enabled" default:"false"`
	Bind    string `name:"bind" default:"[::]"`
	Port    int    `name:"port" default:"6060"`
}

// GetDerivedSecret derives the key used for association authentication tags
// (see internal/contact.DeriveAuthTag) from Secret and PasswordSalt.
func (c Config) GetDerivedSecret() []byte {
	const iterations = 4096
	const keyLen = 32
	return pbkdf2.Key([]byte(c.Secret), []byte(c.PasswordSalt), iterations, keyLen, sha256.New)
}

// ValidateWithFields validates every sub-section of Config and returns all
// accumulated errors instead of stopping at the first one, useful for
// surfacing every misconfigured field at once in a setup UI.
func (c Config) ValidateWithFields() []error {
	var errs []error
	if c.LogLevel != LogLevelDebug &&
		c.LogLevel != LogLevelInfo &&
		c.LogLevel != LogLevelWarn &&
		c.LogLevel != LogLevelError {
		errs = append(errs, ErrInvalidLogLevel)
	}
	if c.Secret == "" {
		errs = append(errs, ErrSecretRequired)
	}
	if c.PasswordSalt == "" {
		errs = append(errs, ErrPasswordSaltRequired)
	}
	for _, err := range c.Redis.ValidateWithFields() {
		errs = append(errs, err)
	}
	if err := c.Database.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.HTTP.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.MAC.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.AppBridge.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Metrics.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.PProf.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errs
}

// ValidateWithFields validates Redis and returns all accumulated errors.
func (r Redis) ValidateWithFields() []error {
	if !r.Enabled {
		return nil
	}
	var errs []error
	if r.Host == "" {
		errs = append(errs, ErrInvalidRedisHost)
	}
	if r.Port <= 0 || r.Port > 65535 {
		errs = append(errs, ErrInvalidRedisPort)
	}
	return errs
}

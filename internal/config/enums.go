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

// LogLevel represents the logging level for the application.
type LogLevel string

const (
	// LogLevelDebug is the debug logging level, providing detailed information.
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo is the informational logging level, providing general information.
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn is the warning logging level, indicating potential issues.
	LogLevelWarn LogLevel = "warn"
	// LogLevelError is the error logging level, indicating serious issues.
	LogLevelError LogLevel = "error"
)

// DatabaseDriver represents the type of database driver used to persist
// contacts and radio device capabilities.
type DatabaseDriver string

const (
	// DatabaseDriverSQLite is the SQLite database driver.
	DatabaseDriverSQLite DatabaseDriver = "sqlite"
	// DatabaseDriverPostgres is the PostgreSQL database driver.
	DatabaseDriverPostgres DatabaseDriver = "postgres"
	// DatabaseDriverMySQL is the MySQL database driver.
	DatabaseDriverMySQL DatabaseDriver = "mysql"
)

// Role selects whether the firmware instance runs fixed termination (FT,
// the cluster/network beacon source) or portable termination (PT,
// associating with and following an FT) behavior.
type Role string

const (
	// RoleFT is the fixed termination role.
	RoleFT Role = "ft"
	// RolePT is the portable termination role.
	RolePT Role = "pt"
)

// AppBridgeTransport selects which external interface carries application
// traffic in and out of the firmware: none, or per-connection UDP sockets.
// A TUN-backed transport is not selectable through this setting.
type AppBridgeTransport string

const (
	// AppBridgeTransportNone disables the application bridge transport;
	// the bridge's bounded queues still exist but nothing drains or feeds
	// them from outside the process. Useful for tests and for MAC-only
	// deployments that talk to the firmware purely over the diag API.
	AppBridgeTransportNone AppBridgeTransport = "none"
	// AppBridgeTransportUDP carries each connection's traffic over a
	// dedicated ingress/egress UDP port pair bound to INADDR_ANY.
	AppBridgeTransportUDP AppBridgeTransport = "udp"
)

// RobotsTXTMode represents the mode for handling robots.txt on the diagnostic HTTP server.
type RobotsTXTMode string

const (
	// RobotsTXTModeAllow allows all robots to access the site.
	RobotsTXTModeAllow RobotsTXTMode = "allow"
	// RobotsTXTModeDisabled sends a robots.txt file that disallows all robots.
	RobotsTXTModeDisabled RobotsTXTMode = "disabled"
	// RobotsTXTModeCustom allows a custom robots.txt file to be served.
	RobotsTXTModeCustom RobotsTXTMode = "custom"
)

// ABOUTME: Product and version identification
// ABOUTME: Reported in telemetry handshakes, mDNS records and the TUI header
package version

const (
	Version      = "0.3.0"
	Product      = "Orbit Spatial Player"
	Manufacturer = "Resonate"
)

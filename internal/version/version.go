// ABOUTME: Version information for portmix
// ABOUTME: Reported by the host at startup and by --version
package version

import "fmt"

const (
	Version      = "0.1.0"
	Product      = "portmix"
	Manufacturer = "Resonate"
)

// String returns the product banner, e.g. "portmix 0.1.0 (Resonate)"
func String() string {
	return fmt.Sprintf("%s %s (%s)", Product, Version, Manufacturer)
}

// ABOUTME: Build version and product identification
// ABOUTME: Reported in logs, the banner and the control API
package version

import "fmt"

const (
	Product      = "binaural"
	Manufacturer = "binaural-go"
)

// Version is overridden at build time with -ldflags "-X .../version.Version=x.y.z"
var Version = "0.3.0"

// String returns "binaural 0.3.0"
func String() string {
	return fmt.Sprintf("%s %s", Product, Version)
}

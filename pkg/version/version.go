// Package version exposes the feedlist build version.
package version

import "runtime/debug"

// version is set at build time via
// -ldflags "-X github.com/rshade/feedlist/pkg/version.version=v1.2.3".
var version = "" //nolint:gochecknoglobals // Overridden by the linker

// devVersion is reported when neither ldflags nor module info carry a version.
const devVersion = "0.0.0-dev"

// GetVersion returns the build version, falling back to the module version
// recorded by "go install" and then to a development marker.
func GetVersion() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return devVersion
}

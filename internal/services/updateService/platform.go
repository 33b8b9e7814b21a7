package updateservice

import (
	"fmt"
	"runtime"
	"strings"
)

// Target returns the platform identifier used to select release assets,
// in the form "<os>-<arch>".
func Target() string {
	return fmt.Sprintf("%s-%s", NormalizeOS(runtime.GOOS), NormalizeArch(runtime.GOARCH))
}

// NormalizeOS maps an OS name to the casing used in release asset names.
func NormalizeOS(goos string) string {
	switch strings.ToLower(goos) {
	case "darwin":
		// Assets use 'macOS' exactly
		return "macOS"
	default:
		return strings.ToLower(goos)
	}
}

// NormalizeArch maps architecture names onto the conventional short
// vocabulary used in release asset names, so identifiers coming from uname
// style sources and Go's runtime agree.
func NormalizeArch(arch string) string {
	switch strings.ToLower(arch) {
	case "x86_64":
		return "amd64"
	case "aarch64":
		return "arm64"
	default:
		return strings.ToLower(arch)
	}
}

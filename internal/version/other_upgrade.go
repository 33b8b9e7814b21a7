//go:build !windows
// +build !windows

package version

import "errors"

// RunWindowsSelfUpgrade is only meaningful on Windows, where the running
// executable cannot be renamed over directly.
func RunWindowsSelfUpgrade(oldExe, newExe string) error {
	return errors.New("windows self-upgrade invoked on non-windows platform")
}

//go:build !darwin || !cgo

package osver

// systemVersion reports 0.0.0 outside macOS, so every IsAtLeast check fails.
func systemVersion() Version {
	return Version{}
}

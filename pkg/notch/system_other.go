//go:build !darwin || !cgo

package notch

// NewSystemProvider returns a provider without screens. Notch detection is
// only available on macOS.
func NewSystemProvider() ScreenProvider {
	return &StaticProvider{MainIndex: -1}
}

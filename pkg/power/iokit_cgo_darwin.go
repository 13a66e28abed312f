//go:build darwin && cgo

package power

func newIOKitSource() (Source, error) {
	return NewIOKit(), nil
}

//go:build !darwin

package power

func platformSource(string) (Source, error) {
	return nil, ErrUnsupportedBackend
}

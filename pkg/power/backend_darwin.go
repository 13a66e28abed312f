//go:build darwin

package power

func platformSource(backend string) (Source, error) {
	switch backend {
	case BackendIOKit:
		return newIOKitSource()
	case BackendSMC:
		return NewSMC(nil), nil
	}
	return nil, ErrUnsupportedBackend
}

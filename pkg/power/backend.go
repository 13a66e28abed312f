package power

import (
	"fmt"
	"runtime"
)

// Backend names accepted by New.
const (
	BackendAuto    = "auto"
	BackendIOKit   = "iokit"
	BackendBattery = "battery"
	BackendSMC     = "smc"
)

// New returns the Source for backend. "auto" picks IOKit where available
// and falls back to the portable battery backend.
func New(backend string) (Source, error) {
	switch backend {
	case BackendAuto, "":
		if s, err := platformSource(BackendIOKit); err == nil {
			return s, nil
		}
		return NewBattery(), nil
	case BackendBattery:
		return NewBattery(), nil
	case BackendIOKit, BackendSMC:
		s, err := platformSource(backend)
		if err != nil {
			return nil, fmt.Errorf("%s on %s/%s: %w", backend, runtime.GOOS, runtime.GOARCH, err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown power source backend %q", backend)
	}
}

//go:build darwin

package power

import (
	"sync"

	pkgerrors "github.com/pkg/errors"

	"github.com/charlie0129/island/pkg/smc"
)

var _ Source = &SMC{}

// SMC reads the internal battery straight from the System Management
// Controller. The connection is opened on first use.
type SMC struct {
	mu     sync.Mutex
	conn   *smc.AppleSMC
	opened bool
}

// NewSMC returns an SMC source on conn. A nil conn uses the real controller.
func NewSMC(conn *smc.AppleSMC) *SMC {
	if conn == nil {
		conn = smc.New()
	}
	return &SMC{conn: conn}
}

func (s *SMC) Name() string { return "smc" }

func (s *SMC) Descriptions() ([]Description, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.opened {
		if err := s.conn.Open(); err != nil {
			return nil, pkgerrors.Wrap(err, "failed to open SMC")
		}
		s.opened = true
	}

	charge, err := s.conn.GetBatteryCharge()
	if err != nil {
		return nil, err
	}

	pluggedIn, err := s.conn.IsPluggedIn()
	if err != nil {
		return nil, err
	}

	charging, err := s.conn.IsCharging()
	if err != nil {
		return nil, err
	}

	state := StateBatteryPower
	if pluggedIn {
		state = StateACPower
	}

	return []Description{{
		KeyName:             "InternalBattery-0",
		KeyType:             TypeInternalBattery,
		KeyCurrentCapacity:  charge,
		KeyMaxCapacity:      100,
		KeyIsCharging:       charging,
		KeyPowerSourceState: state,
	}}, nil
}

// Close closes the SMC connection if it was opened.
func (s *SMC) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.opened {
		return nil
	}
	s.opened = false
	return s.conn.Close()
}

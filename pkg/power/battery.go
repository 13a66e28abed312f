package power

import (
	"fmt"
	"math"

	"github.com/distatus/battery"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var _ Source = &Battery{}

// Battery reads batteries through github.com/distatus/battery. It works on
// every platform that library supports, but only knows about batteries, not
// UPSs or accessories.
type Battery struct {
	getAll func() ([]*battery.Battery, error)
}

// NewBattery returns a Battery source.
func NewBattery() *Battery {
	return &Battery{getAll: battery.GetAll}
}

func (b *Battery) Name() string { return "battery" }

func (b *Battery) Descriptions() ([]Description, error) {
	batteries, err := b.getAll()
	if err != nil {
		if len(batteries) == 0 {
			return nil, pkgerrors.Wrap(err, "failed to enumerate batteries")
		}
		// Partial errors still come with usable batteries.
		logrus.WithError(err).Debug("battery enumeration returned partial errors")
	}

	ret := make([]Description, 0, len(batteries))
	for i, bat := range batteries {
		if bat == nil {
			continue
		}
		ret = append(ret, describeBattery(i, bat))
	}

	return ret, nil
}

func describeBattery(i int, bat *battery.Battery) Description {
	d := Description{
		KeyName:        fmt.Sprintf("InternalBattery-%d", i),
		KeyType:        TypeInternalBattery,
		KeyIsCharging:  bat.State == battery.Charging,
		KeyMaxCapacity: 100,
	}

	if bat.Full > 0 && !math.IsNaN(bat.Current) {
		d[KeyCurrentCapacity] = int(math.Round(bat.Current / bat.Full * 100))
	}

	if bat.State == battery.Discharging {
		d[KeyPowerSourceState] = StateBatteryPower
	} else {
		d[KeyPowerSourceState] = StateACPower
	}

	return d
}

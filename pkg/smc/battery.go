//go:build darwin

package smc

import (
	"encoding/binary"
	"fmt"
)

// GetBatteryCharge returns the battery charge in percent.
func (c *AppleSMC) GetBatteryCharge() (int, error) {
	v, err := c.Read(BatteryChargeKey)
	if err != nil {
		return 0, err
	}

	if len(v.Bytes) != 1 {
		return 0, fmt.Errorf("incorrect data length %d!=1 for %s", len(v.Bytes), BatteryChargeKey)
	}

	return int(v.Bytes[0]), nil
}

// IsPluggedIn returns whether external power is connected.
func (c *AppleSMC) IsPluggedIn() (bool, error) {
	v, err := c.Read(ACPowerKey)
	if err != nil {
		return false, err
	}

	return len(v.Bytes) == 1 && int8(v.Bytes[0]) > 0, nil
}

// GetBatteryCurrent returns the battery current in mA. Positive values mean
// the battery is being charged.
func (c *AppleSMC) GetBatteryCurrent() (int, error) {
	v, err := c.Read(BatteryCurrentKey)
	if err != nil {
		return 0, err
	}

	if len(v.Bytes) != 2 {
		return 0, fmt.Errorf("incorrect data length %d!=2 for %s", len(v.Bytes), BatteryCurrentKey)
	}

	return int(int16(binary.LittleEndian.Uint16(v.Bytes))), nil
}

// IsCharging reports whether power is flowing into the battery.
func (c *AppleSMC) IsCharging() (bool, error) {
	pluggedIn, err := c.IsPluggedIn()
	if err != nil {
		return false, err
	}
	if !pluggedIn {
		return false, nil
	}

	current, err := c.GetBatteryCurrent()
	if err != nil {
		return false, err
	}

	return current > 0, nil
}

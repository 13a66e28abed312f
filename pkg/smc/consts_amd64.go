//go:build darwin && amd64

package smc

// SMC keys on Intel Macs. Intel MacBooks have no notch, so these are only
// here to keep the package building.
const (
	ACPowerKey        = "AC-W"
	BatteryChargeKey  = "BBIF"
	BatteryCurrentKey = "B0AC"
)

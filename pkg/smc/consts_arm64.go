//go:build darwin && arm64

package smc

// SMC keys on Apple Silicon.
const (
	ACPowerKey        = "AC-W"
	BatteryChargeKey  = "BUIC"
	BatteryCurrentKey = "B0AC"
)

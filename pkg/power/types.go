// Package power enumerates power sources (internal battery, UPS, battery
// packs) and turns their raw descriptions into snapshots.
package power

import "errors"

// Keys of a power source description, as named by IOKit (IOPSKeys.h).
const (
	KeyCurrentCapacity  = "Current Capacity"
	KeyMaxCapacity      = "Max Capacity"
	KeyIsCharging       = "Is Charging"
	KeyName             = "Name"
	KeyType             = "Type"
	KeyPowerSourceState = "Power Source State"
)

// Values of KeyType and KeyPowerSourceState.
const (
	TypeInternalBattery = "InternalBattery"
	TypeUPS             = "UPS"

	StateACPower      = "AC Power"
	StateBatteryPower = "Battery Power"
)

var (
	// ErrNoPowerSources is returned when the system reports no power source
	// at all, e.g. on a desktop Mac.
	ErrNoPowerSources = errors.New("no power sources found")
	// ErrUnsupportedBackend is returned by New for backends not available on
	// this platform.
	ErrUnsupportedBackend = errors.New("power source backend not supported on this platform")
)

// Description is the raw key/value description of one power source.
type Description map[string]any

// Snapshot is the parsed state of one power source at poll time.
type Snapshot struct {
	Name            string `json:"name,omitempty"`
	Type            string `json:"type,omitempty"`
	CapacityPercent int    `json:"capacityPercent"`
	IsCharging      bool   `json:"isCharging"`
}

// Source enumerates power sources.
type Source interface {
	// Name identifies the backend, e.g. "iokit".
	Name() string
	// Descriptions returns one description per attached power source.
	Descriptions() ([]Description, error)
}

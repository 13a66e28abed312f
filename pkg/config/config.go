package config

import "fmt"

const (
	MinPollIntervalSeconds = 5
	MaxPollIntervalSeconds = 3600
)

type Config interface {
	PollIntervalSeconds() int
	ChargingModePolicy() string
	NotchPolicy() string
	PowerSource() string
	ModeHoldSeconds() int
	DesktopNotifications() bool
	NotificationSource() string
	SimulatedNotificationSchedule() string
	AllowNonRootAccess() bool

	SetPollIntervalSeconds(int)
	SetChargingModePolicy(string)
	SetNotchPolicy(string)
	SetPowerSource(string)
	SetModeHoldSeconds(int)
	SetDesktopNotifications(bool)
	SetNotificationSource(string)
	SetSimulatedNotificationSchedule(string)
	SetAllowNonRootAccess(bool)

	// Load reads the configuration from the source.
	Load() error
	// Save saves the configuration to the source.
	Save() error
}

// ValidatePollInterval checks that seconds is within the accepted range.
func ValidatePollInterval(seconds int) error {
	if seconds < MinPollIntervalSeconds || seconds > MaxPollIntervalSeconds {
		return fmt.Errorf("poll interval must be between %d and %d seconds, got %d", MinPollIntervalSeconds, MaxPollIntervalSeconds, seconds)
	}
	return nil
}

package island

import (
	"fmt"
	"strings"
	"time"
)

// Mode is the presentation mode of the island.
type Mode string

const (
	ModeIdle         Mode = "idle"
	ModeBattery      Mode = "battery"
	ModeNotification Mode = "notification"
	ModeExpanded     Mode = "expanded"
)

// Modes lists every valid mode.
var Modes = []Mode{ModeIdle, ModeBattery, ModeNotification, ModeExpanded}

// ParseMode parses a mode name, case-insensitively.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if m.Valid() {
		return m, nil
	}
	return "", fmt.Errorf("unknown mode %q, expected one of %v", s, Modes)
}

func (m Mode) Valid() bool {
	for _, v := range Modes {
		if m == v {
			return true
		}
	}
	return false
}

func (m Mode) String() string { return string(m) }

// Notification is a single notification shown by the island.
type Notification struct {
	ID       string    `json:"id"`
	App      string    `json:"app,omitempty"`
	Title    string    `json:"title"`
	Body     string    `json:"body,omitempty"`
	PostedAt time.Time `json:"postedAt"`
}

// Snapshot is a copy of the island state. BatteryLevel is published as read
// from the power subsystem and is not clamped; consumers that render it as a
// percentage should bound it themselves.
type Snapshot struct {
	BatteryLevel  int           `json:"batteryLevel"`
	IsCharging    bool          `json:"isCharging"`
	Mode          Mode          `json:"mode"`
	Notification  *Notification `json:"notification,omitempty"`
	PowerSource   string        `json:"powerSource,omitempty"`
	ModeRequests  uint64        `json:"modeRequests"`
	LastPoll      time.Time     `json:"lastPoll,omitempty"`
	LastPollError string        `json:"lastPollError,omitempty"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

func (s Snapshot) clone() Snapshot {
	if s.Notification != nil {
		n := *s.Notification
		s.Notification = &n
	}
	return s
}

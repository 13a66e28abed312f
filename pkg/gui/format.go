package gui

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/charlie0129/island/pkg/island"
	"github.com/charlie0129/island/pkg/notch"
)

// titleFor renders the status item title, e.g. "⚡ 87%".
func titleFor(s island.Snapshot) string {
	level := clampLevel(s.BatteryLevel)
	switch {
	case s.Mode == island.ModeNotification && s.Notification != nil:
		return "🔔 " + truncate(s.Notification.Title, 24)
	case s.LastPollError != "" && s.BatteryLevel == 0:
		return "⚠️ --"
	case s.IsCharging:
		return fmt.Sprintf("⚡ %d%%", level)
	default:
		return fmt.Sprintf("🔋 %d%%", level)
	}
}

func modeLine(s island.Snapshot) string {
	return "Mode: " + string(s.Mode)
}

func batteryLine(s island.Snapshot) string {
	if s.LastPollError != "" {
		return "Battery: unavailable (" + truncate(s.LastPollError, 48) + ")"
	}
	state := "not charging"
	if s.IsCharging {
		state = "charging"
	}
	line := fmt.Sprintf("Battery: %d%%, %s", clampLevel(s.BatteryLevel), state)
	if !s.LastPoll.IsZero() {
		line += ", polled " + humanize.Time(s.LastPoll)
	}
	return line
}

func notchLine(info *notch.Info) string {
	switch {
	case info == nil:
		return "Notch: unknown"
	case !info.HasNotch:
		return "Notch: none"
	case info.Rect == nil:
		return "Notch: present, position unknown"
	default:
		r := info.Rect
		return fmt.Sprintf("Notch: %gx%g at (%g, %g)", r.Width, r.Height, r.X, r.Y)
	}
}

// clampLevel bounds the published level for display only.
func clampLevel(level int) int {
	return max(0, min(100, level))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

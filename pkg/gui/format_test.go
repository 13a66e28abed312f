package gui

import (
	"testing"
	"time"

	"github.com/charlie0129/island/pkg/island"
	"github.com/charlie0129/island/pkg/notch"
)

func TestTitleFor(t *testing.T) {
	tests := []struct {
		name string
		s    island.Snapshot
		want string
	}{
		{"idle", island.Snapshot{Mode: island.ModeIdle, BatteryLevel: 87}, "🔋 87%"},
		{"charging", island.Snapshot{Mode: island.ModeBattery, BatteryLevel: 87, IsCharging: true}, "⚡ 87%"},
		{"clamped", island.Snapshot{BatteryLevel: 150}, "🔋 100%"},
		{"poll failed", island.Snapshot{LastPollError: "no power sources found"}, "⚠️ --"},
		{
			"notification",
			island.Snapshot{Mode: island.ModeNotification, Notification: &island.Notification{Title: "A very long notification title indeed"}},
			"🔔 A very long notificatio…",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := titleFor(tt.s); got != tt.want {
				t.Errorf("titleFor() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBatteryLine(t *testing.T) {
	s := island.Snapshot{BatteryLevel: 42, IsCharging: true, LastPoll: time.Now().Add(-12 * time.Second)}
	if got, want := batteryLine(s), "Battery: 42%, charging, polled 12 seconds ago"; got != want {
		t.Errorf("batteryLine() = %q, want %q", got, want)
	}
	s = island.Snapshot{LastPollError: "boom"}
	if got, want := batteryLine(s), "Battery: unavailable (boom)"; got != want {
		t.Errorf("batteryLine() = %q, want %q", got, want)
	}
}

func TestNotchLine(t *testing.T) {
	tests := []struct {
		info *notch.Info
		want string
	}{
		{nil, "Notch: unknown"},
		{&notch.Info{}, "Notch: none"},
		{&notch.Info{HasNotch: true}, "Notch: present, position unknown"},
		{&notch.Info{HasNotch: true, Rect: &notch.Rect{X: 400, Y: 868, Width: 300, Height: 32}}, "Notch: 300x32 at (400, 868)"},
	}
	for _, tt := range tests {
		if got := notchLine(tt.info); got != tt.want {
			t.Errorf("notchLine(%+v) = %q, want %q", tt.info, got, tt.want)
		}
	}
}

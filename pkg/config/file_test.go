package config

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charlie0129/island/pkg/utils/ptr"
)

func TestFile_Defaults(t *testing.T) {
	f, err := NewFile(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)

	assert.Equal(t, 60, f.PollIntervalSeconds())
	assert.Equal(t, "rising-edge", f.ChargingModePolicy())
	assert.Equal(t, "strict", f.NotchPolicy())
	assert.Equal(t, "auto", f.PowerSource())
	assert.Equal(t, 5, f.ModeHoldSeconds())
	assert.False(t, f.DesktopNotifications())
	assert.Equal(t, "simulated", f.NotificationSource())
	assert.Empty(t, f.SimulatedNotificationSchedule())
	assert.False(t, f.AllowNonRootAccess())
}

func TestFile_Load(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
		check   func(t *testing.T, f *File)
	}{
		{
			name:    "empty file",
			content: "  \n",
			check: func(t *testing.T, f *File) {
				assert.Equal(t, 60, f.PollIntervalSeconds())
			},
		},
		{
			name:    "partial",
			content: `{"pollIntervalSeconds": 30, "notchPolicy": "inset"}`,
			check: func(t *testing.T, f *File) {
				assert.Equal(t, 30, f.PollIntervalSeconds())
				assert.Equal(t, "inset", f.NotchPolicy())
				assert.Equal(t, "rising-edge", f.ChargingModePolicy())
			},
		},
		{
			name:    "invalid json",
			content: `{"pollIntervalSeconds":`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := filepath.Join(t.TempDir(), "config.json")
			require.NoError(t, os.WriteFile(p, []byte(tt.content), 0644))

			f, err := NewFile(p)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, f)
		})
	}
}

func TestFile_SaveAndReload(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "config.json")
	f := NewFileFromConfig(nil, p)

	f.SetPollIntervalSeconds(120)
	f.SetChargingModePolicy("every-poll")
	f.SetDesktopNotifications(true)
	f.SetSimulatedNotificationSchedule("@every 10m")
	f.SetNotificationSource("accessibility")
	require.NoError(t, f.Save())

	g, err := NewFile(p)
	require.NoError(t, err)
	assert.Equal(t, 120, g.PollIntervalSeconds())
	assert.Equal(t, "every-poll", g.ChargingModePolicy())
	assert.True(t, g.DesktopNotifications())
	assert.Equal(t, "@every 10m", g.SimulatedNotificationSchedule())
	assert.Equal(t, "accessibility", g.NotificationSource())
	assert.Equal(t, "strict", g.NotchPolicy())
}

func TestFile_SettersValidate(t *testing.T) {
	f := NewFileFromConfig(nil, "")
	assert.Panics(t, func() { f.SetPollIntervalSeconds(1) })
	assert.Panics(t, func() { f.SetPollIntervalSeconds(MaxPollIntervalSeconds + 1) })
	assert.Panics(t, func() { f.SetChargingModePolicy("never") })
	assert.Panics(t, func() { f.SetNotchPolicy("maybe") })
	assert.Panics(t, func() { f.SetModeHoldSeconds(-1) })
	assert.Panics(t, func() { f.SetNotificationSource("") })
	assert.NotPanics(t, func() { f.SetPollIntervalSeconds(MinPollIntervalSeconds) })
}

func TestNewRawFileConfigFromConfig(t *testing.T) {
	_, err := NewRawFileConfigFromConfig(nil)
	assert.Error(t, err)

	f := NewFileFromConfig(&RawFileConfig{ModeHoldSeconds: ptr.To(0)}, "")
	raw, err := NewRawFileConfigFromConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 0, *raw.ModeHoldSeconds)
	assert.Equal(t, 60, *raw.PollIntervalSeconds)
	assert.Equal(t, "auto", *raw.PowerSource)
	assert.Equal(t, "simulated", *raw.NotificationSource)
}

func TestWatcher(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(p, []byte(`{}`), 0644))

	var calls atomic.Int32
	w, err := NewWatcher(p, func() { calls.Add(1) })
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte(`{}`), 0644))
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(p, []byte(`{"pollIntervalSeconds": 30}`), 0644))
	}

	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 3*time.Second, 20*time.Millisecond)
	time.Sleep(3 * watchDebounce)
	assert.Equal(t, int32(1), calls.Load(), "bursts are coalesced")
}

package island

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charlie0129/island/pkg/events"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"idle", ModeIdle, false},
		{"Battery", ModeBattery, false},
		{" notification ", ModeNotification, false},
		{"expanded", ModeExpanded, false},
		{"", "", true},
		{"compact", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestState_DefaultsAndMutations(t *testing.T) {
	s := New(WithModeHold(0))
	defer s.Close()

	snap := s.Snapshot()
	assert.Equal(t, ModeIdle, snap.Mode)
	assert.Equal(t, 0, snap.BatteryLevel)
	assert.False(t, snap.IsCharging)

	ok := s.DispatchSync(func(m *Mutator) {
		m.SetBatteryLevel(87)
		m.SetCharging(true)
		m.SetPowerSource("InternalBattery-0")
	})
	require.True(t, ok)

	snap = s.Snapshot()
	assert.Equal(t, 87, snap.BatteryLevel)
	assert.True(t, snap.IsCharging)
	assert.Equal(t, "InternalBattery-0", snap.PowerSource)
	assert.Equal(t, ModeIdle, snap.Mode)
}

func TestState_BatteryLevelIsNotClamped(t *testing.T) {
	s := New(WithModeHold(0))
	defer s.Close()

	s.DispatchSync(func(m *Mutator) { m.SetBatteryLevel(150) })
	assert.Equal(t, 150, s.Snapshot().BatteryLevel)
}

func TestState_SetPollResult(t *testing.T) {
	s := New(WithModeHold(0))
	defer s.Close()

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s.DispatchSync(func(m *Mutator) { m.SetPollResult(at, errors.New("no power sources")) })
	snap := s.Snapshot()
	assert.Equal(t, "no power sources", snap.LastPollError)
	assert.True(t, snap.LastPoll.Equal(at))

	s.DispatchSync(func(m *Mutator) { m.SetPollResult(at.Add(time.Minute), nil) })
	assert.Empty(t, s.Snapshot().LastPollError)
}

func TestState_Subscribe(t *testing.T) {
	s := New(WithModeHold(0))
	defer s.Close()

	ch, cancel := s.Subscribe()
	s.Dispatch(func(m *Mutator) { m.SetBatteryLevel(42) })

	select {
	case snap := <-ch:
		assert.Equal(t, 42, snap.BatteryLevel)
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot delivered")
	}

	cancel()
	require.Eventually(t, func() bool {
		_, ok := <-ch
		return !ok
	}, 2*time.Second, 10*time.Millisecond)
}

func TestState_NoPublishWithoutChange(t *testing.T) {
	s := New(WithModeHold(0))
	defer s.Close()

	ch := s.Hub().Subscribe()
	defer s.Hub().Unsubscribe(ch)

	s.DispatchSync(func(m *Mutator) { m.SetBatteryLevel(0) })
	s.DispatchSync(func(m *Mutator) { m.SetCharging(false) })
	assert.Len(t, ch, 0)
}

func TestState_ModeRequestsAreCounted(t *testing.T) {
	s := New(WithModeHold(0))
	defer s.Close()

	ch := s.Hub().Subscribe()
	defer s.Hub().Unsubscribe(ch)

	s.DispatchSync(func(m *Mutator) { m.SetMode(ModeBattery) })
	s.DispatchSync(func(m *Mutator) { m.SetMode(ModeBattery) })

	assert.Equal(t, uint64(2), s.Snapshot().ModeRequests)

	var changes []events.ModeChangedEvent
	for len(ch) > 0 {
		ev := <-ch
		if ev.Name != events.ModeChanged {
			continue
		}
		e, err := events.DecodeAs[events.ModeChangedEvent](ev)
		require.NoError(t, err)
		changes = append(changes, e)
	}
	require.Len(t, changes, 2)
	assert.Equal(t, "idle", changes[0].From)
	assert.Equal(t, "battery", changes[1].From)
	assert.Equal(t, uint64(2), changes[1].Count)
}

func TestState_ModeHold(t *testing.T) {
	s := New(WithModeHold(30 * time.Millisecond))
	defer s.Close()

	s.DispatchSync(func(m *Mutator) { m.SetMode(ModeBattery) })
	assert.Equal(t, ModeBattery, s.Snapshot().Mode)

	require.Eventually(t, func() bool {
		return s.Snapshot().Mode == ModeIdle
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, uint64(1), s.Snapshot().ModeRequests, "reverting is not a mode request")
}

func TestState_ModeHoldRearmed(t *testing.T) {
	s := New(WithModeHold(time.Hour))
	defer s.Close()

	s.DispatchSync(func(m *Mutator) { m.SetMode(ModeBattery) })
	s.SetModeHold(20 * time.Millisecond)
	s.DispatchSync(func(m *Mutator) { m.SetMode(ModeExpanded) })

	require.Eventually(t, func() bool {
		return s.Snapshot().Mode == ModeIdle
	}, 2*time.Second, 5*time.Millisecond)
}

func TestState_ModeHoldDisabled(t *testing.T) {
	s := New(WithModeHold(0))
	defer s.Close()

	s.DispatchSync(func(m *Mutator) { m.SetMode(ModeExpanded) })
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, ModeExpanded, s.Snapshot().Mode)
}

func TestState_ShowNotification(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	s := New(WithModeHold(0), withClock(func() time.Time { return now }))
	defer s.Close()

	ch := s.Hub().Subscribe()
	defer s.Hub().Unsubscribe(ch)

	s.DispatchSync(func(m *Mutator) {
		m.ShowNotification(Notification{ID: "01H", Title: "Hello", Body: "world"})
	})

	snap := s.Snapshot()
	assert.Equal(t, ModeNotification, snap.Mode)
	require.NotNil(t, snap.Notification)
	assert.Equal(t, "Hello", snap.Notification.Title)
	assert.True(t, snap.Notification.PostedAt.Equal(now))

	var posted bool
	for len(ch) > 0 {
		if ev := <-ch; ev.Name == events.NotificationPosted {
			posted = true
		}
	}
	assert.True(t, posted)

	// Snapshots are copies.
	snap.Notification.Title = "changed"
	assert.Equal(t, "Hello", s.Snapshot().Notification.Title)

	s.DispatchSync(func(m *Mutator) { m.SetMode(ModeBattery) })
	assert.Nil(t, s.Snapshot().Notification)
}

func TestState_Close(t *testing.T) {
	s := New()
	s.Close()
	s.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Dispatch(func(m *Mutator) { m.SetBatteryLevel(1) })
		assert.False(t, s.DispatchSync(func(m *Mutator) {}))
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("dispatch blocked after Close")
	}
}

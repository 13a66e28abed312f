package daemon

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charlie0129/island/pkg/config"
	"github.com/charlie0129/island/pkg/events"
	"github.com/charlie0129/island/pkg/island"
	"github.com/charlie0129/island/pkg/notch"
	"github.com/charlie0129/island/pkg/notify"
	"github.com/charlie0129/island/pkg/power"
	"github.com/charlie0129/island/pkg/version"
)

func notchedScreen() *notch.StaticScreen {
	return &notch.StaticScreen{
		FrameRect: notch.Rect{Width: 1100, Height: 900},
		Inset:     32,
		Left:      &notch.Rect{X: 0, Y: 868, Width: 400, Height: 32},
		Right:     &notch.Rect{X: 700, Y: 868, Width: 400, Height: 32},
	}
}

type testDaemon struct {
	*Daemon
	src    *power.Static
	router http.Handler
	conf   string
}

func newTestDaemon(t *testing.T) *testDaemon {
	t.Helper()

	confPath := filepath.Join(t.TempDir(), "config.json")
	conf, err := config.NewFile(confPath)
	require.NoError(t, err)

	src := power.NewStatic(power.Description{
		power.KeyName:            "InternalBattery-0",
		power.KeyType:            power.TypeInternalBattery,
		power.KeyCurrentCapacity: 87,
		power.KeyIsCharging:      false,
	})
	d, err := New(conf, Options{
		Screens: notch.NewStaticProvider(notchedScreen(), &notch.StaticScreen{FrameRect: notch.Rect{X: 1100, Width: 1920, Height: 1080}}),
		Power:   src,
	})
	require.NoError(t, err)
	require.NoError(t, d.Start(context.Background()))
	t.Cleanup(d.Stop)

	return &testDaemon{Daemon: d, src: src, router: d.Router(), conf: confPath}
}

func (td *testDaemon) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	td.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestGetState(t *testing.T) {
	td := newTestDaemon(t)
	require.Eventually(t, func() bool { return td.State().Snapshot().BatteryLevel == 87 }, 2*time.Second, 10*time.Millisecond)

	w := td.do(t, http.MethodGet, "/state", "")
	require.Equal(t, http.StatusOK, w.Code)
	snap := decode[island.Snapshot](t, w)
	assert.Equal(t, 87, snap.BatteryLevel)
	assert.Equal(t, island.ModeIdle, snap.Mode)
}

func TestGetNotch(t *testing.T) {
	td := newTestDaemon(t)

	w := td.do(t, http.MethodGet, "/notch", "")
	require.Equal(t, http.StatusOK, w.Code)
	info := decode[notch.Info](t, w)
	assert.True(t, info.HasNotch)
	assert.Equal(t, &notch.Rect{X: 400, Y: 868, Width: 300, Height: 32}, info.Rect)

	w = td.do(t, http.MethodGet, "/notch?all=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	all := decode[[]notch.ScreenNotch](t, w)
	require.Len(t, all, 2)
	assert.True(t, all[0].Info.HasNotch)
	assert.False(t, all[1].Info.HasNotch)
	assert.Nil(t, all[1].Info.Rect)
}

func TestGetBattery(t *testing.T) {
	td := newTestDaemon(t)

	td.src.Set(nil, power.Description{power.KeyName: "InternalBattery-0", power.KeyCurrentCapacity: 55, power.KeyIsCharging: true})
	w := td.do(t, http.MethodGet, "/battery", "")
	require.Equal(t, http.StatusOK, w.Code)
	snaps := decode[[]power.Snapshot](t, w)
	require.Len(t, snaps, 1)
	assert.Equal(t, 55, snaps[0].CapacityPercent)
	assert.Equal(t, 55, td.State().Snapshot().BatteryLevel)
	assert.True(t, td.State().Snapshot().IsCharging)

	td.src.Set(errors.New("IOKit unavailable"))
	w = td.do(t, http.MethodGet, "/battery", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, td.State().Snapshot().LastPollError, "IOKit unavailable")

	w = td.do(t, http.MethodGet, "/telemetry", "")
	require.Equal(t, http.StatusOK, w.Code)
	tel := decode[map[string]any](t, w)
	assert.Equal(t, "static", tel["source"])
	assert.Contains(t, tel["lastError"], "IOKit unavailable")
}

func TestSetMode(t *testing.T) {
	td := newTestDaemon(t)

	tests := []struct {
		body     string
		wantCode int
	}{
		{`"expanded"`, http.StatusCreated},
		{`"Battery"`, http.StatusCreated},
		{`"sideways"`, http.StatusBadRequest},
		{`expanded`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			w := td.do(t, http.MethodPut, "/mode", tt.body)
			assert.Equal(t, tt.wantCode, w.Code, w.Body.String())
		})
	}
	assert.Equal(t, island.ModeBattery, td.State().Snapshot().Mode)
}

func TestPostNotification(t *testing.T) {
	td := newTestDaemon(t)

	w := td.do(t, http.MethodPost, "/notifications", `{"app":"Mail","title":"New message","body":"Hello"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	n := decode[island.Notification](t, w)
	assert.NotEmpty(t, n.ID)
	assert.Equal(t, "New message", n.Title)

	require.Eventually(t, func() bool {
		s := td.State().Snapshot()
		return s.Mode == island.ModeNotification && s.Notification != nil && s.Notification.ID == n.ID
	}, 2*time.Second, 10*time.Millisecond)

	w = td.do(t, http.MethodPost, "/notifications", `{"app":"Mail"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Default burst is 3, one was used above.
	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		codes = append(codes, td.do(t, http.MethodPost, "/notifications", `{"title":"spam"}`).Code)
	}
	assert.Equal(t, []int{http.StatusCreated, http.StatusCreated, http.StatusTooManyRequests}, codes)
}

func TestSetPollInterval(t *testing.T) {
	td := newTestDaemon(t)

	for _, body := range []string{"4", "3601", `"30"`} {
		w := td.do(t, http.MethodPut, "/poll-interval", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}

	w := td.do(t, http.MethodPut, "/poll-interval", "30")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, 30*time.Second, td.observer.Interval())

	saved, err := config.NewFile(td.conf)
	require.NoError(t, err)
	assert.Equal(t, 30, saved.PollIntervalSeconds())

	w = td.do(t, http.MethodGet, "/config", "")
	require.Equal(t, http.StatusOK, w.Code)
	raw := decode[config.RawFileConfig](t, w)
	assert.Equal(t, 30, *raw.PollIntervalSeconds)
	assert.Equal(t, "strict", *raw.NotchPolicy)
}

func TestSetChargingPolicy(t *testing.T) {
	td := newTestDaemon(t)

	w := td.do(t, http.MethodPut, "/charging-policy", `"every-poll"`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "every-poll", string(td.observer.Policy()))

	for _, body := range []string{`""`, `"sometimes"`, `1`} {
		w = td.do(t, http.MethodPut, "/charging-policy", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestGetVersion(t *testing.T) {
	td := newTestDaemon(t)
	w := td.do(t, http.MethodGet, "/version", "")
	require.Equal(t, http.StatusOK, w.Code)
	v := decode[version.Info](t, w)
	assert.NotEmpty(t, v.Version)
}

func TestReload(t *testing.T) {
	td := newTestDaemon(t)

	f := config.NewFileFromConfig(nil, td.conf)
	f.SetPollIntervalSeconds(15)
	f.SetNotchPolicy("inset")
	f.SetChargingModePolicy("every-poll")
	require.NoError(t, f.Save())

	require.NoError(t, td.Reload())
	assert.Equal(t, 15*time.Second, td.observer.Interval())
	assert.Equal(t, notch.PolicyInset, td.Detector().Policy())
	assert.Equal(t, "every-poll", string(td.observer.Policy()))
}

func TestStreamEvents(t *testing.T) {
	td := newTestDaemon(t)
	srv := httptest.NewServer(td.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	names := make(chan string, 16)
	go func() {
		defer close(names)
		sc := bufio.NewScanner(resp.Body)
		for sc.Scan() {
			if name, ok := strings.CutPrefix(sc.Text(), "event:"); ok {
				names <- strings.TrimSpace(name)
			}
		}
	}()

	next := func() string {
		select {
		case n := <-names:
			return n
		case <-ctx.Done():
			t.Fatal("timed out waiting for event")
			return ""
		}
	}
	require.Equal(t, events.StateChanged, next())

	require.Eventually(t, func() bool { return td.State().Hub().Subscribers() > 0 }, 2*time.Second, 10*time.Millisecond)
	w := td.do(t, http.MethodPut, "/mode", `"expanded"`)
	require.Equal(t, http.StatusCreated, w.Code)

	seen := map[string]bool{}
	for !seen[events.ModeChanged] || !seen[events.StateChanged] {
		seen[next()] = true
	}
}

// pushSource delivers notifications only through its sink.
type pushSource struct {
	sink notify.Sink
}

func (s *pushSource) Name() string { return "push" }

func (s *pushSource) Start(_ context.Context, sink notify.Sink) error {
	s.sink = sink
	return nil
}

func (s *pushSource) Stop() {}

func TestNotificationSource(t *testing.T) {
	t.Run("unsupported kind in config", func(t *testing.T) {
		conf := config.NewFileFromConfig(nil, "")
		conf.SetNotificationSource(notify.KindAccessibility)

		_, err := New(conf, Options{
			Screens: notch.NewStaticProvider(),
			Power:   power.NewStatic(),
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, notify.ErrUnsupportedSource)
	})

	t.Run("source without posting", func(t *testing.T) {
		src := &pushSource{}
		d, err := New(config.NewFileFromConfig(nil, ""), Options{
			Screens:       notch.NewStaticProvider(),
			Power:         power.NewStatic(),
			Notifications: src,
		})
		require.NoError(t, err)
		require.NoError(t, d.Start(context.Background()))
		t.Cleanup(d.Stop)

		req := httptest.NewRequest(http.MethodPost, "/notifications", strings.NewReader(`{"title":"hi"}`))
		w := httptest.NewRecorder()
		d.Router().ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotImplemented, w.Code)

		require.NotNil(t, src.sink)
		src.sink(island.Notification{ID: "n1", Title: "pushed"})
		require.Eventually(t, func() bool {
			s := d.State().Snapshot()
			return s.Mode == island.ModeNotification && s.Notification != nil && s.Notification.ID == "n1"
		}, 2*time.Second, 10*time.Millisecond)
	})
}

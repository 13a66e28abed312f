package client

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charlie0129/island/pkg/events"
	"github.com/charlie0129/island/pkg/island"
)

// serve starts handler on a unix socket and returns a client for it.
func serve(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	// Keep the path short, unix socket paths are limited to ~104 bytes.
	dir, err := os.MkdirTemp("", "isl")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	sock := filepath.Join(dir, "s.sock")

	l, err := net.Listen("unix", sock)
	require.NoError(t, err)
	srv := &http.Server{Handler: handler}
	go func() { _ = srv.Serve(l) }()
	t.Cleanup(func() { _ = srv.Close() })

	return NewClient(sock)
}

func TestClient_DaemonNotRunning(t *testing.T) {
	c := NewClient(filepath.Join(t.TempDir(), "missing.sock"))
	_, err := c.GetState()
	assert.ErrorIs(t, err, ErrDaemonNotRunning)
}

func TestClient_Errors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/mode", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`"unknown mode \"x\""`))
	})
	c := serve(t, mux)

	_, err := c.SetMode("x")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadRequest, se.Code)
	assert.Equal(t, `unknown mode "x"`, se.Message)

	_, err = c.Get("/nope")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.Send(http.MethodDelete, "/mode", "")
	assert.Error(t, err)
}

func TestClient_GetState(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/state", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"batteryLevel": 87, "isCharging": true, "mode": "battery"}`))
	})
	mux.HandleFunc("/notifications", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": "01J", "title": "hi"}`))
	})
	c := serve(t, mux)

	s, err := c.GetState()
	require.NoError(t, err)
	assert.Equal(t, 87, s.BatteryLevel)
	assert.True(t, s.IsCharging)
	assert.Equal(t, island.ModeBattery, s.Mode)

	n, err := c.PostNotification("", "hi", "")
	require.NoError(t, err)
	assert.Equal(t, "01J", n.ID)
}

func TestReadEvents(t *testing.T) {
	stream := strings.Join([]string{
		": keep-alive",
		"",
		"event:state.changed",
		`data:{"batteryLevel":1}`,
		"",
		"event: mode.changed",
		`data: {"from":"idle",`,
		`data: "to":"battery"}`,
		"",
		"data:plain",
		"",
		"",
	}, "\n")

	var got []events.Event
	err := readEvents(strings.NewReader(stream), func(ev events.Event) bool {
		got = append(got, ev)
		return true
	})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, events.StateChanged, got[0].Name)
	assert.JSONEq(t, `{"batteryLevel":1}`, string(got[0].Data))
	assert.Equal(t, events.ModeChanged, got[1].Name)
	assert.JSONEq(t, `{"from":"idle","to":"battery"}`, string(got[1].Data))
	assert.Equal(t, "message", got[2].Name)
}

func TestReadEvents_UnterminatedEventDropped(t *testing.T) {
	stream := "event:state.changed\ndata:{}\n\ndata:partial\n"

	var got []events.Event
	err := readEvents(strings.NewReader(stream), func(ev events.Event) bool {
		got = append(got, ev)
		return true
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, events.StateChanged, got[0].Name)
}

func TestSubscribeEvents(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/events", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte("event:state.changed\ndata:{\"mode\":\"idle\"}\n\n"))
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	})
	c := serve(t, mux)

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := c.SubscribeEvents(ctx)
	require.NoError(t, err)

	select {
	case ev := <-ch:
		snap, err := events.DecodeAs[island.Snapshot](ev)
		require.NoError(t, err)
		assert.Equal(t, island.ModeIdle, snap.Mode)
	case <-time.After(3 * time.Second):
		t.Fatal("no event received")
	}

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-ch:
			return !ok
		default:
			return false
		}
	}, 3*time.Second, 10*time.Millisecond)
}

func TestSubscribeEvents_NotRunning(t *testing.T) {
	c := NewClient(filepath.Join(t.TempDir(), "missing.sock"))
	_, err := c.SubscribeEvents(context.Background())
	assert.True(t, errors.Is(err, ErrDaemonNotRunning))
}

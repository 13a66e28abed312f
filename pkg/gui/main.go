package gui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/getlantern/systray"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/island/pkg/client"
	"github.com/charlie0129/island/pkg/events"
	"github.com/charlie0129/island/pkg/island"
)

const reconnectInterval = 2 * time.Second

type menu struct {
	api *client.Client

	status   *systray.MenuItem
	battery  *systray.MenuItem
	notch    *systray.MenuItem
	modes    map[island.Mode]*systray.MenuItem
	simulate *systray.MenuItem
	quit     *systray.MenuItem
}

func newMenu(api *client.Client) *menu {
	systray.SetTitle("🔋 Loading...")
	systray.SetTooltip("island")

	m := &menu{api: api, modes: map[island.Mode]*systray.MenuItem{}}

	m.status = systray.AddMenuItem("Mode: -", "Current island mode")
	m.status.Disable()
	m.battery = systray.AddMenuItem("Battery: -", "Last battery poll")
	m.battery.Disable()
	m.notch = systray.AddMenuItem("Notch: -", "Notch of the main screen")
	m.notch.Disable()

	systray.AddSeparator()

	setMode := systray.AddMenuItem("Set Mode", "Request an island mode")
	for _, mode := range island.Modes {
		m.modes[mode] = setMode.AddSubMenuItemCheckbox(string(mode), "Switch the island to "+string(mode), false)
	}
	m.simulate = systray.AddMenuItem("Simulate Notification", simulateTooltip)

	systray.AddSeparator()
	m.quit = systray.AddMenuItem("Quit", quitTooltip)

	return m
}

func (m *menu) render(s island.Snapshot) {
	systray.SetTitle(titleFor(s))
	m.status.SetTitle(modeLine(s))
	m.battery.SetTitle(batteryLine(s))
	for mode, item := range m.modes {
		if mode == s.Mode {
			item.Check()
		} else {
			item.Uncheck()
		}
	}
}

func (m *menu) offline(err error) {
	systray.SetTitle(offlineTitle)
	m.status.SetTitle("Mode: -")
	m.battery.SetTitle("Battery: -")
	if errors.Is(err, client.ErrDaemonNotRunning) {
		m.status.SetTitle("Daemon not running")
	}
}

func (m *menu) refreshNotch() {
	info, err := m.api.GetNotch()
	if err != nil {
		logrus.WithError(err).Debug("failed to get notch")
		m.notch.SetTitle(notchLine(nil))
		return
	}
	m.notch.SetTitle(notchLine(info))
}

// forwardClicks sends mode to out for every click until ctx is done. A click
// nobody receives anymore does not block it.
func forwardClicks(ctx context.Context, clicks <-chan struct{}, mode island.Mode, out chan<- island.Mode) {
	for {
		select {
		case <-clicks:
			select {
			case out <- mode:
			case <-ctx.Done():
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// handleClicks runs until Quit is clicked or ctx is done.
func (m *menu) handleClicks(ctx context.Context) {
	clicked := make(chan island.Mode)
	for mode, item := range m.modes {
		go forwardClicks(ctx, item.ClickedCh, mode, clicked)
	}

	posted := 0
	for {
		select {
		case mode := <-clicked:
			if _, err := m.api.SetMode(mode); err != nil {
				logrus.WithError(err).Error("failed to set mode")
			}
		case <-m.simulate.ClickedCh:
			posted++
			_, err := m.api.PostNotification("island", fmt.Sprintf("Simulated notification #%d", posted), "Posted from the menubar")
			if err != nil {
				logrus.WithError(err).Error("failed to post notification")
			}
		case <-m.quit.ClickedCh:
			systray.Quit()
			return
		case <-ctx.Done():
			return
		}
	}
}

// watch keeps an event stream open, reconnecting while the daemon is away.
func (m *menu) watch(ctx context.Context) {
	for {
		if err := m.stream(ctx); err != nil {
			logrus.WithError(err).Debug("event stream unavailable")
			m.offline(err)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectInterval):
		}
	}
}

func (m *menu) stream(ctx context.Context) error {
	ch, err := m.api.SubscribeEvents(ctx)
	if err != nil {
		return err
	}
	m.refreshNotch()

	for ev := range ch {
		logrus.WithFields(logrus.Fields{
			"event": ev.Name,
			"data":  string(ev.Data),
		}).Trace("new event")

		if ev.Name != events.StateChanged {
			continue
		}
		s, err := events.DecodeAs[island.Snapshot](ev)
		if err != nil {
			logrus.WithError(err).Error("failed to decode state.changed event")
			continue
		}
		m.render(s)
	}
	return errors.New("event stream closed")
}

package notify

import (
	"strconv"
	"sync"

	"github.com/gen2brain/beeep"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/island/pkg/island"
)

// Desktop mirrors island notifications as OS notifications.
type Desktop struct {
	mu      sync.Mutex
	enabled bool
	send    func(title, message string) error
}

func NewDesktop(enabled bool) *Desktop {
	return &Desktop{
		enabled: enabled,
		send: func(title, message string) error {
			return beeep.Notify(title, message, "")
		},
	}
}

func (d *Desktop) SetEnabled(enabled bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.enabled = enabled
}

func (d *Desktop) Enabled() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.enabled
}

// Notify sends n as a desktop notification if enabled. Failures are logged.
func (d *Desktop) Notify(n island.Notification) {
	if !d.Enabled() {
		return
	}
	title := n.Title
	if n.App != "" {
		title = n.App + ": " + n.Title
	}
	if err := d.send(title, n.Body); err != nil {
		logrus.WithError(err).Warn("failed to send desktop notification")
	}
}

// ChargingStarted announces that the battery started charging.
func (d *Desktop) ChargingStarted(level int) {
	d.Notify(island.Notification{
		Title: "⚡ Charging",
		Body:  "Battery at " + strconv.Itoa(level) + "%",
	})
}

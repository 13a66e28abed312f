package daemon

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/island/pkg/events"
)

const keepAliveInterval = 15 * time.Second

// streamEvents streams hub events as server-sent events. The first event is
// always the current state.
func (d *Daemon) streamEvents(c *gin.Context) {
	hub := d.state.Hub()
	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	logrus.WithField("subscribers", hub.Subscribers()).Debug("event stream opened")
	defer logrus.Debug("event stream closed")

	c.SSEvent(events.StateChanged, d.state.Snapshot())
	c.Writer.Flush()

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent(ev.Name, string(ev.Data))
			return true
		case <-keepAlive.C:
			_, _ = io.WriteString(w, ": keep-alive\n\n")
			return true
		case <-ctx.Done():
			return false
		case <-d.streamsDone:
			return false
		}
	})
}

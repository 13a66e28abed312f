package daemon

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/island/pkg/battery"
	"github.com/charlie0129/island/pkg/config"
	"github.com/charlie0129/island/pkg/island"
	"github.com/charlie0129/island/pkg/notify"
	"github.com/charlie0129/island/pkg/version"
)

func abort(c *gin.Context, code int, err error) {
	c.IndentedJSON(code, err.Error())
	_ = c.AbortWithError(code, err)
}

func (d *Daemon) getState(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, d.state.Snapshot())
}

func (d *Daemon) getNotch(c *gin.Context) {
	det := d.Detector()

	all, _ := strconv.ParseBool(c.DefaultQuery("all", "false"))
	if all {
		c.IndentedJSON(http.StatusOK, det.AllScreens())
		return
	}
	c.IndentedJSON(http.StatusOK, det.MainScreenNotch())
}

// getBattery polls immediately instead of returning the last poll.
func (d *Daemon) getBattery(c *gin.Context) {
	snaps, err := d.observer.UpdateBatteryStatus()
	if err != nil {
		abort(c, http.StatusServiceUnavailable, err)
		return
	}
	c.IndentedJSON(http.StatusOK, snaps)
}

func (d *Daemon) getTelemetry(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, d.observer.Telemetry())
}

func (d *Daemon) setMode(c *gin.Context) {
	var s string
	if err := c.BindJSON(&s); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}

	mode, err := island.ParseMode(s)
	if err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}

	if !d.state.DispatchSync(func(m *island.Mutator) { m.SetMode(mode) }) {
		abort(c, http.StatusServiceUnavailable, errors.New("daemon is shutting down"))
		return
	}
	logrus.Infof("set mode to %s", mode)

	c.IndentedJSON(http.StatusCreated, d.state.Snapshot())
}

func (d *Daemon) postNotification(c *gin.Context) {
	var req notify.PostRequest
	if err := c.BindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		abort(c, http.StatusBadRequest, errors.New("notification title must not be empty"))
		return
	}

	poster, ok := d.notifier.(notify.Poster)
	if !ok {
		abort(c, http.StatusNotImplemented, fmt.Errorf("notification source %s does not accept posts", d.notifier.Name()))
		return
	}

	n, err := poster.Post(req.App, req.Title, req.Body)
	switch {
	case errors.Is(err, notify.ErrRateLimited):
		abort(c, http.StatusTooManyRequests, err)
		return
	case errors.Is(err, notify.ErrNotStarted):
		abort(c, http.StatusServiceUnavailable, err)
		return
	case err != nil:
		abort(c, http.StatusInternalServerError, err)
		return
	}

	c.IndentedJSON(http.StatusCreated, n)
}

func (d *Daemon) getConfig(c *gin.Context) {
	fc, err := config.NewRawFileConfigFromConfig(d.conf)
	if err != nil {
		abort(c, http.StatusInternalServerError, err)
		return
	}
	c.IndentedJSON(http.StatusOK, fc)
}

func (d *Daemon) setPollInterval(c *gin.Context) {
	var secs int
	if err := c.BindJSON(&secs); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	if err := config.ValidatePollInterval(secs); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}

	d.conf.SetPollIntervalSeconds(secs)
	if err := d.conf.Save(); err != nil {
		logrus.Errorf("saveConfig failed: %v", err)
		abort(c, http.StatusInternalServerError, err)
		return
	}
	if err := d.observer.SetInterval(seconds(secs)); err != nil {
		abort(c, http.StatusInternalServerError, err)
		return
	}

	c.IndentedJSON(http.StatusCreated, fmt.Sprintf("set poll interval to %d seconds", secs))
}

func (d *Daemon) setChargingPolicy(c *gin.Context) {
	var s string
	if err := c.BindJSON(&s); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	if s == "" {
		abort(c, http.StatusBadRequest, errors.New("charging mode policy must not be empty"))
		return
	}
	p, err := battery.ParsePolicy(s)
	if err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}

	d.conf.SetChargingModePolicy(string(p))
	if err := d.conf.Save(); err != nil {
		logrus.Errorf("saveConfig failed: %v", err)
		abort(c, http.StatusInternalServerError, err)
		return
	}
	_ = d.observer.SetPolicy(p)

	c.IndentedJSON(http.StatusCreated, fmt.Sprintf("set charging mode policy to %s", p))
}

func getVersion(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, version.Get())
}

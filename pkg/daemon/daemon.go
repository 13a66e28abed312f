package daemon

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/island/pkg/battery"
	"github.com/charlie0129/island/pkg/config"
	"github.com/charlie0129/island/pkg/island"
	"github.com/charlie0129/island/pkg/notch"
	"github.com/charlie0129/island/pkg/notify"
	"github.com/charlie0129/island/pkg/power"
)

type Options struct {
	// AllowNonRoot makes the socket accessible to every user, regardless of
	// the allowNonRootAccess config key.
	AllowNonRoot bool
	// Screens overrides the system screen provider.
	Screens notch.ScreenProvider
	// Power overrides the power source selected by the powerSource key.
	Power power.Source
	// Notifications overrides the source selected by the notificationSource key.
	Notifications notify.Source
}

// Daemon wires the island state to its producers and serves it over HTTP.
type Daemon struct {
	conf     *config.File
	state    *island.State
	screens  notch.ScreenProvider
	source   power.Source
	observer *battery.Observer
	notifier notify.Source
	desktop  *notify.Desktop

	mu       sync.RWMutex
	detector *notch.Detector

	cancel      context.CancelFunc
	streamsDone chan struct{}
	streamsOnce sync.Once
}

// New builds a daemon from conf. Nothing runs until Start.
func New(conf *config.File, opts Options) (*Daemon, error) {
	notchPolicy, err := notch.ParsePolicy(conf.NotchPolicy())
	if err != nil {
		return nil, err
	}
	chargingPolicy, err := battery.ParsePolicy(conf.ChargingModePolicy())
	if err != nil {
		return nil, err
	}
	if err := config.ValidatePollInterval(conf.PollIntervalSeconds()); err != nil {
		return nil, err
	}

	src := opts.Power
	if src == nil {
		src, err = power.New(conf.PowerSource())
		if err != nil {
			return nil, pkgerrors.Wrapf(err, "failed to create power source %q", conf.PowerSource())
		}
	}
	notifier := opts.Notifications
	if notifier == nil {
		notifier, err = notify.New(conf.NotificationSource(), notify.SimulatedOptions{
			Schedule: conf.SimulatedNotificationSchedule(),
		})
		if err != nil {
			return nil, pkgerrors.Wrapf(err, "failed to create notification source %q", conf.NotificationSource())
		}
	}
	screens := opts.Screens
	if screens == nil {
		screens = notch.NewSystemProvider()
	}

	d := &Daemon{
		conf:     conf,
		state:    island.New(island.WithModeHold(seconds(conf.ModeHoldSeconds()))),
		screens:  screens,
		source:   src,
		detector: notch.NewDetector(screens, notchPolicy),
		desktop:  notify.NewDesktop(conf.DesktopNotifications()),
		notifier: notifier,

		streamsDone: make(chan struct{}),
	}
	d.observer = battery.NewObserver(src, d.state, battery.Options{
		Interval: seconds(conf.PollIntervalSeconds()),
		Policy:   chargingPolicy,
		OnChargingStarted: func(level int) {
			go d.desktop.ChargingStarted(level)
		},
	})

	return d, nil
}

func seconds(s int) time.Duration { return time.Duration(s) * time.Second }

// State returns the shared island state.
func (d *Daemon) State() *island.State { return d.state }

func (d *Daemon) Detector() *notch.Detector {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.detector
}

// Start starts battery polling and the notification source.
func (d *Daemon) Start(ctx context.Context) error {
	ctx, d.cancel = context.WithCancel(ctx)

	if err := d.notifier.Start(ctx, d.showNotification); err != nil {
		return pkgerrors.Wrap(err, "failed to start notification source")
	}
	d.observer.Start()

	info := d.Detector().MainScreenNotch()
	logrus.WithFields(logrus.Fields{
		"hasNotch": info.HasNotch,
		"rect":     info.Rect,
		"policy":   d.Detector().Policy(),
	}).Info("main screen notch detected")
	return nil
}

// Stop stops every producer and the state. It is safe to call once after
// Start.
func (d *Daemon) Stop() {
	d.closeStreams()

	logrus.Info("stopping battery observer")
	d.observer.Stop()

	logrus.Info("stopping notification source")
	d.notifier.Stop()
	if d.cancel != nil {
		d.cancel()
	}

	d.state.Close()

	if c, ok := d.source.(io.Closer); ok {
		if err := c.Close(); err != nil {
			logrus.WithError(err).Warn("failed to close power source")
		}
	}
}

// closeStreams ends every open event stream, so that the http server can
// shut down without waiting for clients to disconnect.
func (d *Daemon) closeStreams() {
	d.streamsOnce.Do(func() { close(d.streamsDone) })
}

func (d *Daemon) showNotification(n island.Notification) {
	d.state.Dispatch(func(m *island.Mutator) { m.ShowNotification(n) })
	go d.desktop.Notify(n)
}

// Reload re-reads the config file and applies every key that can change at
// runtime.
func (d *Daemon) Reload() error {
	if err := d.conf.Load(); err != nil {
		return err
	}
	d.apply()
	logrus.WithFields(d.conf.LogrusFields()).Info("config reloaded")
	return nil
}

func (d *Daemon) apply() {
	if err := d.observer.SetInterval(seconds(d.conf.PollIntervalSeconds())); err != nil {
		logrus.WithError(err).Error("invalid poll interval in config, keeping the current one")
	}
	if p, err := battery.ParsePolicy(d.conf.ChargingModePolicy()); err != nil {
		logrus.WithError(err).Error("invalid charging mode policy in config, keeping the current one")
	} else {
		_ = d.observer.SetPolicy(p)
	}
	if p, err := notch.ParsePolicy(d.conf.NotchPolicy()); err != nil {
		logrus.WithError(err).Error("invalid notch policy in config, keeping the current one")
	} else {
		d.mu.Lock()
		d.detector = notch.NewDetector(d.screens, p)
		d.mu.Unlock()
	}
	if hold := d.conf.ModeHoldSeconds(); hold >= 0 {
		d.state.SetModeHold(seconds(hold))
	}
	d.desktop.SetEnabled(d.conf.DesktopNotifications())
	if s, ok := d.notifier.(notify.Schedulable); ok {
		if err := s.SetSchedule(d.conf.SimulatedNotificationSchedule()); err != nil {
			logrus.WithError(err).Error("invalid notification schedule in config, keeping the current one")
		}
	}
	if d.conf.NotificationSource() != d.notifier.Name() {
		logrus.WithFields(logrus.Fields{
			"current":    d.notifier.Name(),
			"configured": d.conf.NotificationSource(),
		}).Warn("notification source changed in config, restart the daemon to apply")
	}
	if d.conf.PowerSource() != "auto" && d.conf.PowerSource() != d.source.Name() {
		logrus.WithFields(logrus.Fields{
			"current":    d.source.Name(),
			"configured": d.conf.PowerSource(),
		}).Warn("power source changed in config, restart the daemon to apply")
	}
}

func (d *Daemon) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(ginLogger(logrus.StandardLogger()))
	router.GET("/state", d.getState)
	router.GET("/notch", d.getNotch)
	router.GET("/battery", d.getBattery)
	router.GET("/telemetry", d.getTelemetry)
	router.PUT("/mode", d.setMode)
	router.POST("/notifications", d.postNotification)
	router.GET("/events", d.streamEvents)
	router.GET("/config", d.getConfig)
	router.PUT("/poll-interval", d.setPollInterval)
	router.PUT("/charging-policy", d.setChargingPolicy)
	router.GET("/version", getVersion)

	return router
}

func Run(configPath string, unixSocketPath string, opts Options) error {
	conf, err := config.NewFile(configPath)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to parse config during startup")
	}
	logrus.WithFields(conf.LogrusFields()).Infof("config loaded")

	d, err := New(conf, opts)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           d.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// A socket left by a crashed daemon would make Listen fail.
	if fi, err := os.Stat(unixSocketPath); err == nil && fi.Mode()&os.ModeSocket != 0 {
		logrus.WithField("socket", unixSocketPath).Debug("removing stale socket")
		_ = os.Remove(unixSocketPath)
	}
	l, err := net.Listen("unix", unixSocketPath)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to listen on %s", unixSocketPath)
	}

	if conf.AllowNonRootAccess() || opts.AllowNonRoot {
		logrus.Infof("non-root access is allowed, changing permissions of %s to 0777", unixSocketPath)
		if err := os.Chmod(unixSocketPath, 0777); err != nil {
			return pkgerrors.Wrapf(err, "failed to change permissions of %s", unixSocketPath)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := d.Start(ctx); err != nil {
		return err
	}

	// Serve HTTP on unix socket
	go func() {
		logrus.Infof("http server listening on %s", l.Addr().String())
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatal(err)
		}
	}()

	// Receive SIGHUP to reload config
	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGHUP)
		for range sigc {
			if err := d.Reload(); err != nil {
				logrus.Errorf("failed to reload config: %v", err)
			}
		}
	}()

	watcher, err := config.NewWatcher(configPath, func() {
		if err := d.Reload(); err != nil {
			logrus.Errorf("failed to reload config: %v", err)
		}
	})
	if err == nil {
		err = watcher.Start()
	}
	if err != nil {
		logrus.WithError(err).Warn("config file watching disabled, send SIGHUP to reload")
	}

	// Poll right away after wake-up instead of waiting for the next tick.
	go func() {
		err := listenWakeNotifications(func() {
			logrus.Debug("system woke up, polling battery")
			_, _ = d.observer.UpdateBatteryStatus()
		})
		if err != nil {
			logrus.Errorf("failed to listen to system wake notifications: %v", err)
		}
	}()

	// Handle common process-killing signals, so we can gracefully shut down:
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	// Wait for a SIGINT or SIGTERM:
	sig := <-sigc
	logrus.Infof("caught signal \"%s\": shutting down.", sig)

	logrus.Info("shutting down http server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	d.closeStreams()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("failed to shutdown http server: %v", err)
	}
	shutdownCancel()

	if watcher != nil {
		_ = watcher.Stop()
	}

	logrus.Info("stopping listening wake notifications")
	stopListeningWakeNotifications()

	d.Stop()

	logrus.Info("exiting")
	return nil
}

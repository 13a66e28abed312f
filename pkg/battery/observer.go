// Package battery polls the power subsystem and publishes battery level and
// charging state onto the island state.
package battery

import (
	"fmt"
	"reflect"
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/island/pkg/events"
	"github.com/charlie0129/island/pkg/island"
	"github.com/charlie0129/island/pkg/power"
)

// DefaultInterval is the default time between two polls.
const DefaultInterval = 60 * time.Second

// Policy decides when a charging source triggers the battery mode.
type Policy string

const (
	// PolicyRisingEdge requests battery mode only when charging starts.
	PolicyRisingEdge Policy = "rising-edge"
	// PolicyEveryPoll requests battery mode on every poll that reports
	// charging.
	PolicyEveryPoll Policy = "every-poll"
)

// ParsePolicy parses a charging mode policy. An empty string selects
// PolicyRisingEdge.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PolicyRisingEdge:
		return PolicyRisingEdge, nil
	case PolicyEveryPoll:
		return PolicyEveryPoll, nil
	default:
		return "", fmt.Errorf("unknown charging mode policy %q, expected %q or %q", s, PolicyRisingEdge, PolicyEveryPoll)
	}
}

type Options struct {
	// Interval between polls. Defaults to DefaultInterval.
	Interval time.Duration
	// Policy defaults to PolicyRisingEdge.
	Policy Policy
	// OnChargingStarted, if set, is called after a poll in which charging
	// started. It runs on the polling goroutine.
	OnChargingStarted func(level int)
}

// Telemetry describes recent polling activity.
type Telemetry struct {
	Interval        string           `json:"interval"`
	Policy          Policy           `json:"policy"`
	Source          string           `json:"source"`
	Running         bool             `json:"running"`
	Polls           []time.Time      `json:"polls"`
	ContinuousPolls int              `json:"continuousPolls"`
	MissedPolls     int              `json:"missedPolls"`
	LastSnapshots   []power.Snapshot `json:"lastSnapshots"`
	LastError       string           `json:"lastError,omitempty"`
}

// Observer periodically polls a power source. It is safe for concurrent use.
type Observer struct {
	source power.Source
	state  *island.State
	onCS   func(level int)

	mu       sync.Mutex
	interval time.Duration
	policy   Policy
	running  bool
	stop     chan struct{}
	done     chan struct{}
	reset    chan time.Duration

	pollMu     sync.Mutex
	recorder   *TimeSeriesRecorder
	lastStatus []power.Snapshot
	lastErr    error
	lastPrint  time.Time
	now        func() time.Time
}

// NewObserver creates an observer that publishes onto state. It does not poll
// until Start or UpdateBatteryStatus is called.
func NewObserver(source power.Source, state *island.State, opts Options) *Observer {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Policy == "" {
		opts.Policy = PolicyRisingEdge
	}
	return &Observer{
		source:   source,
		state:    state,
		onCS:     opts.OnChargingStarted,
		interval: opts.Interval,
		policy:   opts.Policy,
		recorder: NewTimeSeriesRecorder(60),
		now:      time.Now,
	}
}

// Start polls once immediately and then once every interval, until Stop is
// called. Calling Start on a running observer does nothing.
func (o *Observer) Start() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.running {
		logrus.Debug("battery observer already running")
		return
	}
	o.running = true
	o.stop = make(chan struct{})
	o.done = make(chan struct{})
	o.reset = make(chan time.Duration, 1)

	logrus.WithFields(logrus.Fields{
		"source":   o.source.Name(),
		"interval": o.interval,
		"policy":   o.policy,
	}).Info("starting battery observer")

	go o.loop(o.interval, o.stop, o.done, o.reset)
}

// Stop stops the periodic polling and waits for an in-flight poll to finish.
func (o *Observer) Stop() {
	o.mu.Lock()
	if !o.running {
		o.mu.Unlock()
		return
	}
	o.running = false
	close(o.stop)
	done := o.done
	o.mu.Unlock()

	<-done
	logrus.Info("battery observer stopped")
}

// Running reports whether the periodic polling is active.
func (o *Observer) Running() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.running
}

func (o *Observer) loop(interval time.Duration, stop <-chan struct{}, done chan<- struct{}, reset <-chan time.Duration) {
	defer close(done)

	_, _ = o.UpdateBatteryStatus()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case d := <-reset:
			ticker.Reset(d)
		case <-ticker.C:
			o.checkMissedPolls()
			_, _ = o.UpdateBatteryStatus()
		}
	}
}

// Interval returns the current poll interval.
func (o *Observer) Interval() time.Duration {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.interval
}

// SetInterval changes the poll interval. A running loop picks it up at once.
func (o *Observer) SetInterval(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", d)
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.interval == d {
		return nil
	}
	logrus.WithFields(logrus.Fields{"from": o.interval, "to": d}).Info("poll interval changed")
	o.interval = d
	if o.running {
		// Replace a pending value, the loop only needs the latest one.
		select {
		case <-o.reset:
		default:
		}
		o.reset <- d
	}
	return nil
}

func (o *Observer) Policy() Policy {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.policy
}

func (o *Observer) SetPolicy(p Policy) error {
	if p != PolicyRisingEdge && p != PolicyEveryPoll {
		return fmt.Errorf("unknown charging mode policy %q", p)
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.policy != p {
		logrus.WithFields(logrus.Fields{"from": o.policy, "to": p}).Info("charging mode policy changed")
	}
	o.policy = p
	return nil
}

// UpdateBatteryStatus queries the power source once and publishes every
// snapshot, in order, onto the island state. Internal batteries are applied
// last, so they win over accessories. On failure the level and charging flag
// are left untouched and the error is recorded as the last poll error.
func (o *Observer) UpdateBatteryStatus() ([]power.Snapshot, error) {
	o.pollMu.Lock()
	defer o.pollMu.Unlock()

	now := o.now()
	o.recorder.AddRecord(now)

	descs, err := o.source.Descriptions()
	if err == nil && len(descs) == 0 {
		err = power.ErrNoPowerSources
	}
	if err != nil {
		err = pkgerrors.Wrapf(err, "failed to query %s power source", o.source.Name())
		o.lastErr = err
		logrus.WithError(err).Warn("battery poll failed")
		o.state.DispatchSync(func(m *island.Mutator) { m.SetPollResult(now, err) })
		o.state.Hub().Publish(events.BatteryPolled, o.telemetryLocked())
		return nil, err
	}

	snaps := power.ParseDescriptions(power.Order(descs))
	policy := o.Policy()

	var started bool
	o.state.DispatchSync(func(m *island.Mutator) {
		wasCharging := m.Snapshot().IsCharging
		for _, s := range snaps {
			m.SetBatteryLevel(s.CapacityPercent)
			m.SetCharging(s.IsCharging)
			m.SetPowerSource(s.Name)
		}
		m.SetPollResult(now, nil)

		charging := m.Snapshot().IsCharging
		started = charging && !wasCharging
		if charging && (policy == PolicyEveryPoll || started) {
			m.SetMode(island.ModeBattery)
		}
	})

	o.lastErr = nil
	o.printStatus(snaps)
	o.state.Hub().Publish(events.BatteryPolled, o.telemetryLocked())

	if started {
		logrus.WithField("batteryLevel", snaps[len(snaps)-1].CapacityPercent).Info("charging started")
		if o.onCS != nil {
			o.onCS(snaps[len(snaps)-1].CapacityPercent)
		}
	}

	return snaps, nil
}

func (o *Observer) checkMissedPolls() {
	interval := o.Interval()
	last := o.recorder.GetLastRecord()
	if last.IsZero() {
		return
	}
	if gap := o.now().Round(0).Sub(last); gap >= 2*interval {
		logrus.WithFields(logrus.Fields{
			"lastPoll": last.Format(time.RFC3339),
			"missed":   int(gap/interval) - 1,
		}).Debug("possibly missed battery polls, system was probably asleep")
	}
}

// printStatus logs at debug level only when the snapshots change or the
// previous print is older than one interval.
func (o *Observer) printStatus(snaps []power.Snapshot) {
	fields := logrus.Fields{"source": o.source.Name(), "count": len(snaps)}
	if len(snaps) > 0 {
		s := snaps[len(snaps)-1]
		fields["name"] = s.Name
		fields["batteryLevel"] = s.CapacityPercent
		fields["isCharging"] = s.IsCharging
	}

	now := o.now()
	defer func() { o.lastPrint = now }()

	if now.Sub(o.lastPrint) < o.Interval()+time.Second && reflect.DeepEqual(o.lastStatus, snaps) {
		logrus.WithFields(fields).Trace("battery status")
		return
	}
	logrus.WithFields(fields).Debug("battery status")
	o.lastStatus = snaps
}

// Telemetry returns the recent polling activity.
func (o *Observer) Telemetry() Telemetry {
	o.pollMu.Lock()
	defer o.pollMu.Unlock()
	return o.telemetryLocked()
}

func (o *Observer) telemetryLocked() Telemetry {
	o.mu.Lock()
	interval, policy, running := o.interval, o.policy, o.running
	o.mu.Unlock()

	t := Telemetry{
		Interval:        interval.String(),
		Policy:          policy,
		Source:          o.source.Name(),
		Running:         running,
		Polls:           o.recorder.GetRecords(),
		ContinuousPolls: o.recorder.GetRecordsIn(interval*5, interval, o.now().Round(0)),
		MissedPolls:     o.recorder.MissedIntervals(interval),
		LastSnapshots:   o.lastStatus,
	}
	if o.lastErr != nil {
		t.LastError = o.lastErr.Error()
	}
	return t
}

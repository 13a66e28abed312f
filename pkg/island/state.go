package island

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/charlie0129/island/pkg/events"
)

const (
	// DefaultModeHold is how long a non-idle mode stays active before the
	// island collapses back to idle.
	DefaultModeHold = 5 * time.Second

	queueSize = 64
)

// State is the shared island state. All mutations run serially on its own
// goroutine, the main context. Producers enqueue closures with Dispatch and
// consumers read copies with Snapshot or Subscribe.
type State struct {
	queue chan func()
	done  chan struct{}
	wg    sync.WaitGroup
	once  sync.Once
	hub   *events.EventHub
	now   func() time.Time

	// Owned by the main context.
	cur      Snapshot
	modeHold time.Duration
	hold     *time.Timer
	holdGen  uint64

	mu        sync.RWMutex
	published Snapshot
}

type Option func(*State)

// WithModeHold sets how long non-idle modes are held. Zero disables the
// automatic revert to idle.
func WithModeHold(d time.Duration) Option {
	return func(s *State) { s.modeHold = d }
}

// WithHub publishes state events on hub instead of a private one.
func WithHub(hub *events.EventHub) Option {
	return func(s *State) { s.hub = hub }
}

func withClock(now func() time.Time) Option {
	return func(s *State) { s.now = now }
}

// New creates the state in idle mode and starts its main context. Call Close
// to stop it.
func New(opts ...Option) *State {
	s := &State{
		queue:    make(chan func(), queueSize),
		done:     make(chan struct{}),
		modeHold: DefaultModeHold,
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	if s.hub == nil {
		s.hub = events.NewEventHub()
	}
	s.cur = Snapshot{Mode: ModeIdle, UpdatedAt: s.now()}
	s.published = s.cur.clone()

	s.wg.Add(1)
	go s.run()
	return s
}

// Hub returns the event hub the state publishes on.
func (s *State) Hub() *events.EventHub { return s.hub }

func (s *State) run() {
	defer s.wg.Done()
	for {
		select {
		case fn := <-s.queue:
			fn()
		case <-s.done:
			if s.hold != nil {
				s.hold.Stop()
			}
			return
		}
	}
}

// Dispatch enqueues fn to run on the main context. It returns immediately
// unless the queue is full. Calls after Close are dropped.
func (s *State) Dispatch(fn func(m *Mutator)) {
	s.enqueue(func() { s.apply(fn) })
}

// DispatchSync runs fn on the main context and waits for it to finish,
// including publication of the resulting snapshot. It reports false if the
// state was closed before fn ran.
func (s *State) DispatchSync(fn func(m *Mutator)) bool {
	ran := make(chan struct{})
	s.enqueue(func() {
		defer close(ran)
		s.apply(fn)
	})
	select {
	case <-ran:
		return true
	case <-s.done:
		return false
	}
}

func (s *State) enqueue(f func()) {
	select {
	case <-s.done:
		logrus.Trace("island state closed, mutation dropped")
		return
	default:
	}
	select {
	case s.queue <- f:
	case <-s.done:
	}
}

func (s *State) apply(fn func(m *Mutator)) {
	m := &Mutator{s: s}
	fn(m)
	if !m.changed {
		return
	}
	s.cur.UpdatedAt = s.now()
	snap := s.cur.clone()

	s.mu.Lock()
	s.published = snap
	s.mu.Unlock()

	s.hub.Publish(events.StateChanged, snap)
}

// Snapshot returns a copy of the most recently published state.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.published.clone()
}

// Subscribe delivers a snapshot after every batch of mutations. Slow
// subscribers miss snapshots. Call cancel to release the subscription; the
// channel is closed afterwards.
func (s *State) Subscribe() (<-chan Snapshot, func()) {
	in := s.hub.Subscribe()
	out := make(chan Snapshot, cap(in))
	go func() {
		defer close(out)
		for ev := range in {
			if ev.Name != events.StateChanged {
				continue
			}
			snap, err := events.DecodeAs[Snapshot](ev)
			if err != nil {
				logrus.WithError(err).Error("failed to decode state snapshot")
				continue
			}
			select {
			case out <- snap:
			default:
			}
		}
	}()
	return out, func() { s.hub.Unsubscribe(in) }
}

// SetModeHold changes the mode hold duration for subsequent mode requests.
func (s *State) SetModeHold(d time.Duration) {
	s.Dispatch(func(m *Mutator) { m.s.modeHold = d })
}

// Close stops the main context. Pending mutations may be discarded.
func (s *State) Close() {
	s.once.Do(func() { close(s.done) })
	s.wg.Wait()
}

// Mutator changes the state. It is only valid inside a Dispatch closure.
type Mutator struct {
	s       *State
	changed bool
}

// Snapshot returns the state as seen by the main context, including changes
// made earlier in the same closure.
func (m *Mutator) Snapshot() Snapshot { return m.s.cur.clone() }

func (m *Mutator) SetBatteryLevel(level int) {
	if m.s.cur.BatteryLevel != level {
		m.s.cur.BatteryLevel = level
		m.changed = true
	}
}

func (m *Mutator) SetCharging(charging bool) {
	if m.s.cur.IsCharging != charging {
		m.s.cur.IsCharging = charging
		m.changed = true
	}
}

func (m *Mutator) SetPowerSource(name string) {
	if m.s.cur.PowerSource != name {
		m.s.cur.PowerSource = name
		m.changed = true
	}
}

// SetPollResult records the outcome of a battery poll. A nil err clears the
// previous error.
func (m *Mutator) SetPollResult(at time.Time, err error) {
	m.s.cur.LastPoll = at
	m.s.cur.LastPollError = ""
	if err != nil {
		m.s.cur.LastPollError = err.Error()
	}
	m.changed = true
}

// SetMode requests a presentation mode. Every request is counted and
// published as a mode.changed event, even if mode is already active. Non-idle
// modes revert to idle after the mode hold unless another request arrives.
func (m *Mutator) SetMode(mode Mode) {
	s := m.s
	from := s.cur.Mode
	s.cur.Mode = mode
	s.cur.ModeRequests++
	if mode != ModeNotification {
		s.cur.Notification = nil
	}
	m.changed = true

	logrus.WithFields(logrus.Fields{
		"from":  from,
		"to":    mode,
		"count": s.cur.ModeRequests,
	}).Debug("mode requested")
	s.hub.Publish(events.ModeChanged, events.ModeChangedEvent{
		From:  string(from),
		To:    string(mode),
		Count: s.cur.ModeRequests,
		Ts:    s.now().Unix(),
	})

	s.armHold(mode)
}

// ShowNotification shows n and switches to notification mode.
func (m *Mutator) ShowNotification(n Notification) {
	if n.PostedAt.IsZero() {
		n.PostedAt = m.s.now()
	}
	m.SetMode(ModeNotification)
	m.s.cur.Notification = &n
	m.s.hub.Publish(events.NotificationPosted, n)
}

func (s *State) armHold(mode Mode) {
	s.holdGen++
	if s.hold != nil {
		s.hold.Stop()
		s.hold = nil
	}
	if mode == ModeIdle || s.modeHold <= 0 {
		return
	}
	gen := s.holdGen
	s.hold = time.AfterFunc(s.modeHold, func() {
		s.Dispatch(func(m *Mutator) {
			if m.s.holdGen != gen || m.s.cur.Mode == ModeIdle {
				return
			}
			logrus.WithField("from", m.s.cur.Mode).Debug("mode hold expired, collapsing to idle")
			m.s.cur.Mode = ModeIdle
			m.s.cur.Notification = nil
			m.s.hold = nil
			m.changed = true
		})
	})
}

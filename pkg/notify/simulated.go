package notify

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/charlie0129/island/pkg/island"
)

const (
	// DefaultRate and DefaultBurst limit simulated posts.
	DefaultRate  = rate.Limit(1)
	DefaultBurst = 3

	demoApp   = "island"
	demoTitle = "Scheduled notification"
)

type SimulatedOptions struct {
	// Schedule is a cron expression for demo notifications. Empty disables
	// them.
	Schedule string
	Rate     rate.Limit
	Burst    int
}

var _ Source = &Simulated{}

// Simulated is a notification source fed by Post and by an optional cron
// schedule.
type Simulated struct {
	limiter   *rate.Limiter
	scheduler *Scheduler
	now       func() time.Time

	mu     sync.Mutex
	sink   Sink
	cancel context.CancelFunc
	posted int
}

func NewSimulated(opts SimulatedOptions) *Simulated {
	if opts.Rate == 0 {
		opts.Rate = DefaultRate
	}
	if opts.Burst <= 0 {
		opts.Burst = DefaultBurst
	}
	s := &Simulated{
		limiter: rate.NewLimiter(opts.Rate, opts.Burst),
		now:     time.Now,
	}
	s.scheduler = s.newScheduler()
	if opts.Schedule != "" {
		if err := s.scheduler.Schedule(opts.Schedule); err != nil {
			logrus.WithError(err).WithField("schedule", opts.Schedule).Error("invalid notification schedule, ignored")
		}
	}
	return s
}

func (s *Simulated) newScheduler() *Scheduler {
	return NewScheduler(s.postScheduled, func(err error) {
		logrus.WithError(err).Warn("scheduled notification failed")
	})
}

func (s *Simulated) Name() string { return KindSimulated }

func (s *Simulated) Start(ctx context.Context, sink Sink) error {
	s.mu.Lock()
	if s.sink != nil {
		s.mu.Unlock()
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	s.sink = sink
	s.cancel = cancel
	sched := s.scheduler
	s.mu.Unlock()

	sched.Start()
	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	logrus.Info("simulated notification source started")
	return nil
}

func (s *Simulated) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.sink, s.cancel = nil, nil
	old := s.scheduler
	if cancel != nil {
		// A stopped scheduler cannot be restarted, keep a fresh one with the
		// same schedule for the next Start.
		_, expr, _ := old.Status()
		s.scheduler = s.newScheduler()
		_ = s.scheduler.Schedule(expr)
	}
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	old.Stop()
	logrus.Info("simulated notification source stopped")
}

// Post delivers a notification to the sink. It returns ErrRateLimited if
// posts arrive too quickly.
func (s *Simulated) Post(app, title, body string) (island.Notification, error) {
	s.mu.Lock()
	sink := s.sink
	s.mu.Unlock()
	if sink == nil {
		return island.Notification{}, ErrNotStarted
	}

	now := s.now()
	if !s.limiter.AllowN(now, 1) {
		logrus.WithField("title", title).Debug("notification rate limited")
		return island.Notification{}, ErrRateLimited
	}

	n := island.Notification{
		ID:       NewID(now),
		App:      app,
		Title:    title,
		Body:     body,
		PostedAt: now,
	}
	sink(n)

	s.mu.Lock()
	s.posted++
	s.mu.Unlock()

	logrus.WithFields(logrus.Fields{"id": n.ID, "app": app, "title": title}).Debug("notification posted")
	return n, nil
}

// SetSchedule replaces the demo notification schedule. An empty expression
// disables it.
func (s *Simulated) SetSchedule(expr string) error {
	s.mu.Lock()
	sched := s.scheduler
	s.mu.Unlock()
	return sched.Schedule(expr)
}

// Schedule returns the active schedule expression and its next run.
func (s *Simulated) Schedule() (expr string, next time.Time) {
	s.mu.Lock()
	sched := s.scheduler
	s.mu.Unlock()
	next, expr, _ = sched.Status()
	return expr, next
}

// Posted returns the number of notifications delivered so far.
func (s *Simulated) Posted() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.posted
}

func (s *Simulated) postScheduled() error {
	_, err := s.Post(demoApp, demoTitle, "Posted at "+s.now().Format(time.Kitchen))
	return err
}

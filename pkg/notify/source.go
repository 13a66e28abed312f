// Package notify provides notification sources that feed the island, and an
// optional desktop notification sink.
package notify

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/charlie0129/island/pkg/island"
)

var (
	// ErrUnsupportedSource is returned by New for source kinds that are not
	// implemented, such as reading other applications' notifications.
	ErrUnsupportedSource = errors.New("notification source not supported")
	// ErrRateLimited is returned when notifications are posted faster than
	// the source allows.
	ErrRateLimited = errors.New("too many notifications, try again later")
	// ErrNotStarted is returned when posting to a source that has no sink.
	ErrNotStarted = errors.New("notification source not started")

	errNoSchedule = errors.New("no active schedule")
)

// Source kinds accepted by New.
const (
	KindSimulated     = "simulated"
	KindAccessibility = "accessibility"
)

// PostRequest is a notification to post, as accepted by the daemon API.
type PostRequest struct {
	App   string `json:"app"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Sink receives notifications from a source.
type Sink func(n island.Notification)

// Source produces notifications.
type Source interface {
	Name() string
	// Start begins delivering notifications to sink until ctx is done or
	// Stop is called.
	Start(ctx context.Context, sink Sink) error
	Stop()
}

// Poster is implemented by sources that accept notifications posted through
// the local API.
type Poster interface {
	Post(app, title, body string) (island.Notification, error)
}

// Schedulable is implemented by sources that post on a cron schedule.
type Schedulable interface {
	SetSchedule(expr string) error
}

var (
	_ Poster      = &Simulated{}
	_ Schedulable = &Simulated{}
)

// New returns the source of the given kind.
func New(kind string, opts SimulatedOptions) (Source, error) {
	switch kind {
	case "", KindSimulated:
		return NewSimulated(opts), nil
	case KindAccessibility:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, kind)
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrUnsupportedSource, kind)
	}
}

// NewID returns a new notification ID.
func NewID(t time.Time) string {
	return ulid.MustNew(ulid.Timestamp(t), rand.Reader).String()
}

package events

import "encoding/json"

// Event names.
const (
	// StateChanged carries a full island state snapshot after every batch of
	// mutations.
	StateChanged = "state.changed"
	// ModeChanged is published for every mode request, including requests
	// for the mode that is already active.
	ModeChanged = "mode.changed"
	// NotificationPosted carries a notification accepted by the island.
	NotificationPosted = "notification.posted"
	// BatteryPolled carries the snapshots read by one battery poll.
	BatteryPolled = "battery.polled"
)

// Event is a named JSON payload, streamed to clients as server-sent events.
type Event struct {
	Name string          // SSE event name
	Data json.RawMessage // Raw JSON payload
}

// ModeChangedEvent is the payload of ModeChanged. Count is the number of mode
// requests seen by the state so far.
type ModeChangedEvent struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Count uint64 `json:"count"`
	Ts    int64  `json:"ts"`
}

// DecodeAs decodes the event payload into T. An empty payload decodes to the
// zero value of T.
//
//	snap, err := events.DecodeAs[island.Snapshot](ev)
func DecodeAs[T any](e Event) (T, error) {
	var zero T
	if len(e.Data) == 0 {
		return zero, nil
	}
	var v T
	if err := json.Unmarshal(e.Data, &v); err != nil {
		return zero, err
	}
	return v, nil
}

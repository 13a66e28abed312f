package battery

import (
	"sync"
	"time"
)

// TimeSeriesRecorder records the last N poll times.
type TimeSeriesRecorder struct {
	MaxRecordCount int
	records        []time.Time
	mu             sync.Mutex
}

// NewTimeSeriesRecorder returns a new TimeSeriesRecorder.
func NewTimeSeriesRecorder(maxRecordCount int) *TimeSeriesRecorder {
	return &TimeSeriesRecorder{
		MaxRecordCount: maxRecordCount,
		records:        make([]time.Time, 0, maxRecordCount),
	}
}

// AddRecord adds a new record.
func (r *TimeSeriesRecorder) AddRecord(t time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Strip monotonic clock reading, so that time.Since stays accurate
	// across system sleep.
	t = t.Round(0)

	if len(r.records) >= r.MaxRecordCount {
		r.records = r.records[1:]
	}
	r.records = append(r.records, t)
}

// GetRecords returns a copy of the records, oldest first.
func (r *TimeSeriesRecorder) GetRecords() []time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()

	ret := make([]time.Time, len(r.records))
	copy(ret, r.records)
	return ret
}

// GetLastRecord returns the last record, or the zero time.
func (r *TimeSeriesRecorder) GetLastRecord() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.records) == 0 {
		return time.Time{}
	}
	return r.records[len(r.records)-1]
}

// ClearRecords clears all records.
func (r *TimeSeriesRecorder) ClearRecords() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = r.records[:0]
}

// GetRecordsIn returns the number of continuous records in the last duration,
// counted back from now. Two adjacent records are continuous if they are less
// than interval+1s apart.
func (r *TimeSeriesRecorder) GetRecordsIn(last, interval time.Duration, now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	slack := interval + time.Second

	// The last record must be within one interval.
	if len(r.records) > 0 && now.Sub(r.records[len(r.records)-1]) >= slack {
		return 0
	}

	count := 0
	for i := len(r.records) - 1; i >= 0; i-- {
		record := r.records[i]
		if now.Sub(record) > last {
			break
		}

		after := record
		if i+1 < len(r.records) {
			after = r.records[i+1]
		}
		if after.Sub(record) >= slack {
			break
		}
		count++
	}

	return count
}

// MissedIntervals estimates how many polls were skipped between adjacent
// records, e.g. while the system was asleep.
func (r *TimeSeriesRecorder) MissedIntervals(interval time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if interval <= 0 {
		return 0
	}
	missed := 0
	for i := 1; i < len(r.records); i++ {
		gap := r.records[i].Sub(r.records[i-1])
		if gap >= interval+time.Second {
			missed += int(gap/interval) - 1
		}
	}
	return missed
}

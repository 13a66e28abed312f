package power

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestLogTruncated(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()
	level := logrus.GetLevel()
	logrus.SetLevel(logrus.DebugLevel)
	defer logrus.SetLevel(level)

	tests := []struct {
		name    string
		total   int
		want    bool
		entries int
	}{
		{"below limit", 3, false, 0},
		{"at limit", 8, false, 0},
		{"above limit", 11, true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hook.Reset()
			if got := logTruncated("iokit", tt.total, 8); got != tt.want {
				t.Errorf("logTruncated() = %v, want %v", got, tt.want)
			}
			if got := len(hook.AllEntries()); got != tt.entries {
				t.Fatalf("got %d log entries, want %d", got, tt.entries)
			}
			if tt.entries > 0 {
				e := hook.LastEntry()
				if e.Level != logrus.DebugLevel || e.Data["total"] != tt.total {
					t.Errorf("unexpected log entry: %v %v", e.Level, e.Data)
				}
			}
		})
	}
}

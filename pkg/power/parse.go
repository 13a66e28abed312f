package power

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ParseDescription extracts a Snapshot from d. A missing or malformed
// capacity reads as 0 and a missing charging flag reads as false. The
// capacity is not clamped to 0..100.
func ParseDescription(d Description) Snapshot {
	s := Snapshot{}

	if v, ok := d[KeyCurrentCapacity]; ok {
		if n, ok := toInt(v); ok {
			s.CapacityPercent = n
		}
	}
	if v, ok := d[KeyIsCharging]; ok {
		if b, ok := toBool(v); ok {
			s.IsCharging = b
		}
	}
	if v, ok := d[KeyName].(string); ok {
		s.Name = v
	}
	if v, ok := d[KeyType].(string); ok {
		s.Type = v
	}

	return s
}

// ParseDescriptions parses every description, preserving order.
func ParseDescriptions(ds []Description) []Snapshot {
	ret := make([]Snapshot, 0, len(ds))
	for _, d := range ds {
		ret = append(ret, ParseDescription(d))
	}
	return ret
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint:
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		return int(n), true
	case float32:
		return floatToInt(float64(n))
	case float64:
		return floatToInt(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
		if f, err := n.Float64(); err == nil {
			return floatToInt(f)
		}
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i, true
		}
	}
	return 0, false
}

func floatToInt(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(math.Round(f)), true
}

func toBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		if parsed, err := strconv.ParseBool(strings.TrimSpace(b)); err == nil {
			return parsed, true
		}
	case int:
		return b != 0, true
	}
	return false, false
}

// Package snapshot projects entity records into restorable field maps and
// turns stored maps back into column updates.
package snapshot

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

// TimeLayout is the stable serialized form of date fields: UTC with
// millisecond precision, e.g. 2025-02-15T00:00:00.000Z.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

var parseLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Snapshot maps field keys to JSON-compatible values.
type Snapshot map[string]any

// Clone returns a shallow copy.
func (s Snapshot) Clone() Snapshot {
	if s == nil {
		return nil
	}
	out := make(Snapshot, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// JSONMap converts the snapshot into its storage column type.
func (s Snapshot) JSONMap() *datatypes.JSONMap {
	if s == nil {
		return nil
	}
	m := datatypes.JSONMap(s)
	return &m
}

// FormatTime renders t in TimeLayout, or nil when t is nil.
func FormatTime(t *time.Time) any {
	if t == nil || t.IsZero() {
		return nil
	}
	return t.UTC().Format(TimeLayout)
}

// ParseTime converts a stored value back into a time. Absent, null and
// malformed values all yield nil.
func ParseTime(v any) *time.Time {
	switch val := v.(type) {
	case nil:
		return nil
	case time.Time:
		if val.IsZero() {
			return nil
		}
		return &val
	case *time.Time:
		if val == nil || val.IsZero() {
			return nil
		}
		t := *val
		return &t
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return nil
		}
		for _, layout := range parseLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return &t
			}
		}
		return nil
	default:
		return nil
	}
}

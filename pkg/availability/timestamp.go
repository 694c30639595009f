package availability

import (
	"encoding/json"
	"strings"
	"time"

	"facilio/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Layouts tried for string timestamps without an explicit offset. They are
// interpreted in the caller's location.
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	model.DateFormat,
}

var zonedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
}

type dateAccessor interface{ ToDate() time.Time }
type protoAccessor interface{ AsTime() time.Time }
type timeAccessor interface{ Time() time.Time }

// NormalizeTimestamp converts the event timestamp representations found in the
// Events collection into a time.Time. It tries, in order: native dates,
// accessor-based timestamp objects, {seconds, nanoseconds} pairs and strings.
// A nil loc means UTC.
func NormalizeTimestamp(value any, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}

	switch v := value.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return v, !v.IsZero()
	case *time.Time:
		if v == nil || v.IsZero() {
			return time.Time{}, false
		}
		return *v, true
	case primitive.DateTime:
		return v.Time(), true
	case *primitive.DateTime:
		if v == nil {
			return time.Time{}, false
		}
		return v.Time(), true
	}

	if t, ok := fromAccessor(value); ok {
		return t, true
	}
	if t, ok := fromSecondsNanos(value); ok {
		return t, true
	}
	if s, ok := value.(string); ok {
		return parseTimestamp(s, loc)
	}
	return time.Time{}, false
}

func fromAccessor(value any) (time.Time, bool) {
	var t time.Time
	switch v := value.(type) {
	case dateAccessor:
		t = v.ToDate()
	case protoAccessor:
		t = v.AsTime()
	case timeAccessor:
		t = v.Time()
	default:
		return time.Time{}, false
	}
	return t, !t.IsZero()
}

func fromSecondsNanos(value any) (time.Time, bool) {
	var lookup func(key string) (any, bool)

	switch v := value.(type) {
	case model.SecondsNanos:
		return unixMillis(float64(v.Seconds), float64(v.Nanoseconds)), true
	case *model.SecondsNanos:
		if v == nil {
			return time.Time{}, false
		}
		return unixMillis(float64(v.Seconds), float64(v.Nanoseconds)), true
	case primitive.Timestamp:
		return time.Unix(int64(v.T), 0), true
	case map[string]any:
		lookup = func(key string) (any, bool) {
			val, ok := v[key]
			return val, ok
		}
	case bson.M:
		lookup = func(key string) (any, bool) {
			val, ok := v[key]
			return val, ok
		}
	case bson.D:
		lookup = func(key string) (any, bool) {
			for _, e := range v {
				if e.Key == key {
					return e.Value, true
				}
			}
			return nil, false
		}
	default:
		return time.Time{}, false
	}

	seconds, ok := numberField(lookup, "seconds", "_seconds")
	if !ok {
		return time.Time{}, false
	}
	nanos, _ := numberField(lookup, "nanoseconds", "_nanoseconds")
	return unixMillis(seconds, nanos), true
}

func numberField(lookup func(string) (any, bool), keys ...string) (float64, bool) {
	for _, key := range keys {
		if raw, ok := lookup(key); ok {
			return toFloat(raw)
		}
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// unixMillis reconstructs seconds*1000 + nanoseconds/1e6 at millisecond precision.
func unixMillis(seconds, nanos float64) time.Time {
	return time.UnixMilli(int64(seconds*1000 + nanos/1e6))
}

func parseTimestamp(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

package availability

import (
	"encoding/json"
	"testing"
	"time"

	"facilio/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeTimestamp struct {
	t time.Time
}

func (f fakeTimestamp) ToDate() time.Time {
	return f.t
}

type protoTimestamp struct {
	t time.Time
}

func (p protoTimestamp) AsTime() time.Time {
	return p.t
}

func TestNormalizeTimestamp(t *testing.T) {
	want := time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC)
	wantPtr := want

	tests := []struct {
		name   string
		value  any
		wantOK bool
	}{
		{"native time", want, true},
		{"pointer to time", &wantPtr, true},
		{"bson datetime", primitive.NewDateTimeFromTime(want), true},
		{"ToDate accessor", fakeTimestamp{want}, true},
		{"AsTime accessor", protoTimestamp{want}, true},
		{"seconds struct", model.SecondsNanos{Seconds: want.Unix()}, true},
		{"seconds map", map[string]any{"seconds": want.Unix(), "nanoseconds": 0}, true},
		{"underscored keys", map[string]any{"_seconds": float64(want.Unix()), "_nanoseconds": float64(0)}, true},
		{"bson.M pair", bson.M{"seconds": int64(want.Unix()), "nanoseconds": int32(0)}, true},
		{"bson.D pair", bson.D{{Key: "seconds", Value: int64(want.Unix())}, {Key: "nanoseconds", Value: int64(0)}}, true},
		{"json number pair", map[string]any{"seconds": json.Number("1748782800")}, true},
		{"rfc3339 string", "2025-06-01T13:00:00Z", true},
		{"offset string", "2025-06-01T16:00:00+03:00", true},
		{"local string", "2025-06-01T13:00:00", true},
		{"minutes string", "2025-06-01T13:00", true},
		{"space separated", "2025-06-01 13:00", true},
		{"nil", nil, false},
		{"zero time", time.Time{}, false},
		{"empty string", "   ", false},
		{"garbage string", "next tuesday", false},
		{"map without seconds", map[string]any{"nanoseconds": 5}, false},
		{"string seconds", map[string]any{"seconds": "1748782800"}, false},
		{"unsupported type", 42, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeTimestamp(tt.value, time.UTC)
			if ok != tt.wantOK {
				t.Fatalf("NormalizeTimestamp(%v) ok = %v, want %v", tt.value, ok, tt.wantOK)
			}
			if ok && !got.Equal(want) {
				t.Errorf("NormalizeTimestamp(%v) = %v, want %v", tt.value, got, want)
			}
		})
	}
}

func TestNormalizeTimestamp_NanosecondsToMillis(t *testing.T) {
	got, ok := NormalizeTimestamp(map[string]any{"seconds": 10, "nanoseconds": 250_999_999}, nil)
	if !ok {
		t.Fatal("expected pair to normalize")
	}
	if got.UnixMilli() != 10_250 {
		t.Errorf("expected 10250ms, got %d", got.UnixMilli())
	}
}

func TestNormalizeTimestamp_LocalStringUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	got, ok := NormalizeTimestamp("2025-06-01T13:00", loc)
	if !ok {
		t.Fatal("expected string to normalize")
	}
	if got.UTC().Hour() != 10 {
		t.Errorf("expected 10:00 UTC, got %v", got.UTC())
	}
}

package mongo

import (
	"context"
	"testing"
	"time"
)

func TestWithTimeout(t *testing.T) {
	ctx, cancel := WithTimeout(context.Background(), time.Minute)
	defer cancel()
	deadline, ok := ctx.Deadline()
	if !ok || time.Until(deadline) > time.Minute {
		t.Fatalf("expected deadline within a minute, got %v (%v)", deadline, ok)
	}

	parent, cancelParent := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancelParent()
	ctx, cancel = WithTimeout(parent, time.Hour)
	defer cancel()
	deadline, _ = ctx.Deadline()
	if time.Until(deadline) > time.Second {
		t.Errorf("shorter parent deadline should win, got %v", time.Until(deadline))
	}
}

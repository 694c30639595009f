package kafka

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"facilio/pkg/logger"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

type fakeReader struct {
	queue     chan kafka.Message
	committed []kafka.Message
	mu        sync.Mutex
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	case m := <-r.queue:
		return m, nil
	}
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *fakeReader) Close() error { return nil }

func discard() *logger.Logger {
	return logger.New(logger.Config{Output: io.Discard})
}

func headerValue(m kafka.Message, key string) string {
	for _, h := range m.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestMessageBuilder(t *testing.T) {
	msg, err := NewMessage().
		WithKey("facility-1").
		WithValue(map[string]string{"status": "pending"}).
		WithEventType("booking.created").
		WithSource("bookings").
		Build()
	require.NoError(t, err)

	assert.Equal(t, "facility-1", msg.Key)
	assert.JSONEq(t, `{"status":"pending"}`, string(msg.Value))
	assert.NotEmpty(t, msg.GetEventID())
	assert.Equal(t, "booking.created", msg.GetEventType())
	assert.NotEmpty(t, msg.Headers[HeaderTimestamp])

	_, err = NewMessage().WithValue(make(chan int)).Build()
	assert.Error(t, err)
}

func TestRetryCount(t *testing.T) {
	msg := Message{Headers: map[string]string{}}
	assert.Equal(t, 0, msg.GetRetryCount())
	for i := 0; i < 12; i++ {
		msg.IncrementRetryCount()
	}
	assert.Equal(t, 12, msg.GetRetryCount())
}

func TestClassifyError(t *testing.T) {
	assert.Equal(t, ErrorTypeTransient, ClassifyError(errors.New("dial tcp: i/o timeout")))
	assert.Equal(t, ErrorTypePermanent, ClassifyError(errors.New("invalid payload")))
	assert.Equal(t, ErrorTypeTransient, ClassifyError(NewTransientError("retry me", nil)))
	assert.False(t, ShouldRetry(errors.New("connection refused"), 3, 3))
	assert.True(t, ShouldRetry(errors.New("connection refused"), 0, 3))
}

func TestProducer_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := &Producer{writer: w, topic: "booking-events", log: discard()}

	var seenTopic string
	p.Use(func(ctx context.Context, msg Message, next MessageHandler) error {
		seenTopic = msg.Topic
		return next(ctx, msg)
	})

	msg, err := NewMessage().WithKey("k").WithValue("v").Build()
	require.NoError(t, err)
	require.NoError(t, p.Publish(context.Background(), msg))

	assert.Equal(t, "booking-events", seenTopic)
	require.Len(t, w.messages, 1)
	assert.Equal(t, "k", string(w.messages[0].Key))

	assert.ErrorIs(t, p.Publish(context.Background(), Message{Value: []byte("x")}), ErrEmptyKey)
	assert.ErrorIs(t, p.Publish(context.Background(), Message{Key: "k"}), ErrEmptyValue)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
	assert.ErrorIs(t, p.Publish(context.Background(), msg), ErrProducerClosed)
}

func TestProducer_FailureGoesToDLQ(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	dlq := &fakeWriter{}
	p := &Producer{writer: w, dlqWriter: dlq, topic: "booking-events", log: discard()}

	msg, _ := NewMessage().WithKey("k").WithValue("v").Build()
	err := p.Publish(context.Background(), msg)

	assert.Error(t, err)
	require.Len(t, dlq.messages, 1)
	assert.Equal(t, "booking-events", headerValue(dlq.messages[0], HeaderOriginalTopic))
	assert.Empty(t, msg.Headers[HeaderOriginalTopic], "caller's headers must not be mutated")
}

func TestConsumer_ProcessesAndCommits(t *testing.T) {
	reader := &fakeReader{queue: make(chan kafka.Message, 2)}
	dlq := &fakeWriter{}

	var handled []string
	var mu sync.Mutex
	c := &Consumer{
		reader:     reader,
		dlqWriter:  dlq,
		topic:      "booking-events",
		groupID:    "notifications",
		maxRetries: 2,
		log:        discard(),
		handler: func(_ context.Context, msg Message) error {
			mu.Lock()
			defer mu.Unlock()
			handled = append(handled, msg.Key)
			if msg.Key == "bad" {
				return NewPermanentError("deserialization failed", nil)
			}
			return nil
		},
	}

	reader.queue <- kafka.Message{Key: []byte("good")}
	reader.queue <- kafka.Message{Key: []byte("bad")}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	require.Eventually(t, func() bool {
		reader.mu.Lock()
		defer reader.mu.Unlock()
		return len(reader.committed) == 2
	}, 2*time.Second, 10*time.Millisecond)
	cancel()
	<-done

	assert.Equal(t, []string{"good", "bad"}, handled)
	require.Len(t, dlq.messages, 1)
	assert.Equal(t, "notifications", headerValue(dlq.messages[0], HeaderDLQGroup))
	require.NoError(t, c.Close())
}

func TestConsumer_RetriesTransientErrors(t *testing.T) {
	attempts := 0
	c := &Consumer{
		maxRetries: 2,
		log:        discard(),
		handler: func(context.Context, Message) error {
			attempts++
			return NewTransientError("mongo timeout", nil)
		},
	}

	err := c.processMessage(context.Background(), Message{Headers: map[string]string{}})
	assert.Error(t, err)
	assert.Equal(t, 3, attempts)
}

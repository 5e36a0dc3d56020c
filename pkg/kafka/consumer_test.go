package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeReader serves queued messages and then blocks until the context ends.
type fakeReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []kafka.Message
	closed    bool
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.queue) > 0 {
		msg := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()
		return msg, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *fakeReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *fakeReader) commits() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.committed)
}

func eventMessage(t *testing.T, topic, eventID string) kafka.Message {
	t.Helper()
	event, err := NewEvent(topic, "mat_1", "material", "fashion-backend", map[string]string{"id": "mat_1"})
	require.NoError(t, err)
	event.ID = eventID
	data, err := json.Marshal(event)
	require.NoError(t, err)
	return kafka.Message{Topic: topic, Value: data}
}

func runConsumer(t *testing.T, c *Consumer, r *fakeReader, wantCommits int) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()

	require.Eventually(t, func() bool { return r.commits() == wantCommits }, 2*time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
	assert.True(t, r.closed)
}

func TestConsumer_HandlesAndCommits(t *testing.T) {
	topic := "fashion.material.created"
	r := &fakeReader{queue: []kafka.Message{eventMessage(t, topic, "e1"), eventMessage(t, topic, "e2")}}

	var got []string
	handler := func(_ context.Context, event *Event) error {
		got = append(got, event.ID)
		return nil
	}
	c := newConsumer(r, ConsumerConfig{Topic: topic, GroupID: "handles"}, handler, discardLogger())

	runConsumer(t, c, r, 2)
	assert.Equal(t, []string{"e1", "e2"}, got)
	assert.Equal(t, 2.0, testutil.ToFloat64(consumedTotal.WithLabelValues(topic, "handles", outcomeProcessed)))
}

func TestConsumer_RecoversAfterTransientFailure(t *testing.T) {
	r := &fakeReader{queue: []kafka.Message{eventMessage(t, "fashion.color.created", "e3")}}
	w := &recordingWriter{}

	calls := 0
	handler := func(context.Context, *Event) error {
		calls++
		if calls == 1 {
			return errors.New("timeout")
		}
		return nil
	}
	c := newConsumer(r, ConsumerConfig{
		Topic:   "fashion.color.created",
		GroupID: "g",
		Backoff: time.Millisecond,
		DLQ:     newDLQProducer(w, discardLogger()),
	}, handler, discardLogger())

	runConsumer(t, c, r, 1)
	assert.Equal(t, 2, calls)
	assert.Empty(t, w.msgs)
}

func TestConsumer_RetriesThenDeadLetters(t *testing.T) {
	topic := "fashion.color.created"
	r := &fakeReader{queue: []kafka.Message{eventMessage(t, topic, "e2")}}
	w := &recordingWriter{}

	attempts := 0
	handler := func(context.Context, *Event) error {
		attempts++
		return errors.New("storefront unavailable")
	}
	c := newConsumer(r, ConsumerConfig{
		Topic:    topic,
		GroupID:  "dead-letters",
		Attempts: 4,
		Backoff:  time.Millisecond,
		DLQ:      newDLQProducer(w, discardLogger()),
	}, handler, discardLogger())

	runConsumer(t, c, r, 1)
	assert.Equal(t, 4, attempts)
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "fashion.color.created.dlq", w.msgs[0].Topic)
	assert.Equal(t, "storefront unavailable", headerValue(w.msgs[0].Headers, HeaderDLQError))
	assert.Equal(t, 1.0, testutil.ToFloat64(consumedTotal.WithLabelValues(topic, "dead-letters", outcomeFailed)))
}

func TestConsumer_MalformedMessageIsDeadLettered(t *testing.T) {
	topic := "fashion.color.deleted"
	r := &fakeReader{queue: []kafka.Message{
		{Topic: topic, Value: []byte("{oops")},
		{Topic: topic, Value: []byte(`{"type":"fashion.color.deleted"}`)},
	}}
	w := &recordingWriter{}

	called := false
	handler := func(context.Context, *Event) error {
		called = true
		return nil
	}
	c := newConsumer(r, ConsumerConfig{Topic: topic, GroupID: "malformed", DLQ: newDLQProducer(w, discardLogger())}, handler, discardLogger())

	runConsumer(t, c, r, 2)
	assert.False(t, called)
	assert.Len(t, w.msgs, 2)
	assert.Equal(t, 2.0, testutil.ToFloat64(consumedTotal.WithLabelValues(topic, "malformed", outcomeMalformed)))
}

func TestConsumer_FailureWithoutDLQStillCommits(t *testing.T) {
	r := &fakeReader{queue: []kafka.Message{eventMessage(t, "fashion.material.deleted", "e5")}}
	handler := func(context.Context, *Event) error { return errors.New("boom") }
	c := newConsumer(r, ConsumerConfig{Topic: "fashion.material.deleted", Attempts: 1}, handler, discardLogger())

	runConsumer(t, c, r, 1)
}

func TestConsumer_CancelDuringRetryLeavesMessageUncommitted(t *testing.T) {
	r := &fakeReader{queue: []kafka.Message{eventMessage(t, "fashion.material.restored", "e6")}}
	ctx, cancel := context.WithCancel(context.Background())

	handler := func(context.Context, *Event) error {
		cancel()
		return errors.New("storefront unavailable")
	}
	c := newConsumer(r, ConsumerConfig{Topic: "fashion.material.restored", Backoff: time.Hour}, handler, discardLogger())

	require.NoError(t, c.Start(ctx))
	assert.Zero(t, r.commits())
	assert.True(t, r.closed)
}

func TestConsumer_CloseIsIdempotent(t *testing.T) {
	r := &fakeReader{}
	c := newConsumer(r, ConsumerConfig{}, func(context.Context, *Event) error { return nil }, discardLogger())

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.True(t, r.closed)
}

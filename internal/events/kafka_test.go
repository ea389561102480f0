package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureWriter struct {
	msgs []kafka.Message
	err  error
}

func (c *captureWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	c.msgs = append(c.msgs, msgs...)
	return c.err
}

func TestKafkaPublisher_KeysByOrder(t *testing.T) {
	w := &captureWriter{}
	p := NewKafkaPublisher(w)

	e := New(TypeOrderPlaced, 42, 7, map[string]any{"no": "abc"})
	require.NoError(t, p.Publish(context.Background(), e))

	require.Len(t, w.msgs, 1)
	assert.Equal(t, "42", string(w.msgs[0].Key))
	var got Event
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, e.EventID, got.EventID)
	assert.Equal(t, TypeOrderPlaced, got.Type)
	assert.Equal(t, int64(7), got.UserID)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	p := NewKafkaPublisher(&captureWriter{err: errors.New("broker down")})
	err := p.Publish(context.Background(), New(TypeOrderClosed, 1, 0, nil))
	assert.ErrorContains(t, err, "broker down")
}

// queueReader serves queued messages, then blocks until the context ends.
type queueReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []int64
}

func (q *queueReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	q.mu.Lock()
	if len(q.queue) > 0 {
		m := q.queue[0]
		q.queue = q.queue[1:]
		q.mu.Unlock()
		return m, nil
	}
	q.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (q *queueReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, m := range msgs {
		q.committed = append(q.committed, m.Offset)
	}
	return nil
}

func encode(t *testing.T, e Event) []byte {
	t.Helper()
	b, err := json.Marshal(e)
	require.NoError(t, err)
	return b
}

func TestConsume_FiltersAndCommits(t *testing.T) {
	r := &queueReader{queue: []kafka.Message{
		{Offset: 1, Value: encode(t, New(TypeOrderPaid, 10, 1, nil))},
		{Offset: 2, Value: []byte("not json")},
		{Offset: 3, Value: encode(t, New(TypeOrderPlaced, 11, 1, nil))},
		{Offset: 4, Value: encode(t, New(TypeOrderPaid, 12, 1, nil))},
	}}

	ctx, cancel := context.WithCancel(context.Background())
	var handled []int64
	err := Consume(ctx, r, TypeOrderPaid, func(_ context.Context, e Event) error {
		handled = append(handled, e.OrderID)
		if e.OrderID == 12 {
			cancel()
			return errors.New("handler failed")
		}
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []int64{10, 12}, handled)
	assert.Equal(t, []int64{1, 2, 3, 4}, r.committed)
}

package mykafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestNewProducer_NoBrokers(t *testing.T) {
	t.Parallel()

	_, err := NewProducer(nil)
	require.Error(t, err)
}

func TestPublishEvent_EncodesJSON(t *testing.T) {
	t.Parallel()

	w := &recordingWriter{}
	p := &Producer{writer: w}

	err := p.PublishEvent(context.Background(), TopicOrderEvents, "order-1", map[string]any{
		"type":  "order_created",
		"total": 1500,
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, TopicOrderEvents, msg.Topic)
	assert.Equal(t, "order-1", string(msg.Key))

	var body map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &body))
	assert.Equal(t, "order_created", body["type"])
	assert.EqualValues(t, 1500, body["total"])

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestPublishEvent_Errors(t *testing.T) {
	t.Parallel()

	p := &Producer{writer: &recordingWriter{err: errors.New("broker down")}}
	require.Error(t, p.PublishEvent(context.Background(), TopicUserEvents, "k", map[string]string{"a": "b"}))

	require.Error(t, p.PublishEvent(context.Background(), TopicUserEvents, "k", make(chan int)))
}

func TestNop(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Nop{}.PublishEvent(context.Background(), "t", "k", nil))
}

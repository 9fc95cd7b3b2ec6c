package infra

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOutbox struct {
	events    []OutboxEvent
	published []uuid.UUID
}

func (f *fakeOutbox) FetchUnpublished(_ context.Context, limit int) ([]OutboxEvent, error) {
	var out []OutboxEvent
	for _, e := range f.events {
		if !f.isPublished(e.EventID) && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeOutbox) MarkPublished(_ context.Context, id uuid.UUID) error {
	f.published = append(f.published, id)
	return nil
}

func (f *fakeOutbox) isPublished(id uuid.UUID) bool {
	for _, p := range f.published {
		if p == id {
			return true
		}
	}
	return false
}

type sentMessage struct {
	topic string
	key   string
	value []byte
}

type fakePublisher struct {
	sent   []sentMessage
	failOn int // 1-based publish call that fails; 0 never
	calls  int
}

func (f *fakePublisher) Publish(_ context.Context, topic string, key, value []byte) error {
	f.calls++
	if f.calls == f.failOn {
		return errors.New("broker unavailable")
	}
	f.sent = append(f.sent, sentMessage{topic: topic, key: string(key), value: value})
	return nil
}

func outboxEvent(aggregateID, eventType string) OutboxEvent {
	return OutboxEvent{
		EventID:       uuid.New(),
		AggregateType: "game",
		AggregateID:   aggregateID,
		EventType:     eventType,
		PartitionKey:  aggregateID,
		Payload:       json.RawMessage(`{"ok":true}`),
		OccurredAt:    time.Date(2024, 8, 17, 16, 0, 0, 0, time.UTC),
	}
}

func TestOutboxEvent_Topic(t *testing.T) {
	assert.Equal(t, "matchday.game.game.match.scored", outboxEvent("g", "game.match.scored").Topic())
}

func TestOutboxPoller_PublishesInOrder(t *testing.T) {
	src := &fakeOutbox{events: []OutboxEvent{
		outboxEvent("g1", "game.bet.placed"),
		outboxEvent("g1", "game.match.scored"),
	}}
	pub := &fakePublisher{}
	poller := NewOutboxPoller(src, pub, time.Second, 10, testLogger())

	n, err := poller.Poll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, pub.sent, 2)
	assert.Equal(t, "matchday.game.game.bet.placed", pub.sent[0].topic)
	assert.Equal(t, "g1", pub.sent[0].key)

	var msg map[string]interface{}
	require.NoError(t, json.Unmarshal(pub.sent[1].value, &msg))
	assert.Equal(t, "game.match.scored", msg["event_type"])
	assert.Equal(t, map[string]interface{}{"ok": true}, msg["payload"])

	n, err = poller.Poll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestOutboxPoller_StopsAtFirstFailure(t *testing.T) {
	src := &fakeOutbox{events: []OutboxEvent{
		outboxEvent("g1", "a"),
		outboxEvent("g1", "b"),
		outboxEvent("g1", "c"),
	}}
	pub := &fakePublisher{failOn: 2}
	poller := NewOutboxPoller(src, pub, time.Second, 10, testLogger())

	n, err := poller.Poll(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []uuid.UUID{src.events[0].EventID}, src.published)

	// The next poll resumes with the failed event.
	n, err = poller.Poll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "matchday.game.b", pub.sent[1].topic)
}

func TestOutboxPoller_BatchSize(t *testing.T) {
	src := &fakeOutbox{}
	for i := 0; i < 5; i++ {
		src.events = append(src.events, outboxEvent("g1", "e"))
	}
	poller := NewOutboxPoller(src, &fakePublisher{}, time.Second, 2, testLogger())

	n, err := poller.Poll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestKafkaProducer_DisabledIsNoop(t *testing.T) {
	p := NewKafkaProducer("", true, testLogger())
	assert.False(t, p.Enabled())
	assert.NoError(t, p.Publish(context.Background(), "t", nil, []byte("x")))
	assert.NoError(t, p.Close())
}

func TestParseBrokers(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"localhost:9092", []string{"localhost:9092"}},
		{" a:9092, b:9092 ,,", []string{"a:9092", "b:9092"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseBrokers(tt.in))
		})
	}
}

func TestKafkaProducer_EnabledWithBrokers(t *testing.T) {
	p := NewKafkaProducer("localhost:9092", true, testLogger())
	defer p.Close()
	assert.True(t, p.Enabled())

	off := NewKafkaProducer("localhost:9092", false, testLogger())
	assert.False(t, off.Enabled())
}


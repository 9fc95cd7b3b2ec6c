package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TopicPrefix namespaces every topic the outbox publishes to.
const TopicPrefix = "matchday"

// OutboxEvent is an unpublished row of event_outbox.
type OutboxEvent struct {
	EventID       uuid.UUID
	AggregateType string
	AggregateID   string
	EventType     string
	PartitionKey  string
	Payload       json.RawMessage
	OccurredAt    time.Time
}

// Topic returns the Kafka topic for the event: matchday.<aggregate>.<event>.
func (e OutboxEvent) Topic() string {
	return TopicPrefix + "." + e.AggregateType + "." + e.EventType
}

// OutboxSource reads and acknowledges outbox rows.
type OutboxSource interface {
	FetchUnpublished(ctx context.Context, limit int) ([]OutboxEvent, error)
	MarkPublished(ctx context.Context, eventID uuid.UUID) error
}

// Publisher delivers one message to a topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

// PgOutboxSource reads event_outbox through a pgx pool.
type PgOutboxSource struct {
	pool *pgxpool.Pool
}

// NewPgOutboxSource creates an OutboxSource backed by pool.
func NewPgOutboxSource(pool *pgxpool.Pool) *PgOutboxSource {
	return &PgOutboxSource{pool: pool}
}

func (s *PgOutboxSource) FetchUnpublished(ctx context.Context, limit int) ([]OutboxEvent, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT "eventId", "aggregateType", "aggregateId", "eventType", "partitionKey", "payload", "occurredAt"
		FROM event_outbox
		WHERE "publishedAt" IS NULL
		ORDER BY "id" ASC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch unpublished events: %w", err)
	}
	defer rows.Close()

	var events []OutboxEvent
	for rows.Next() {
		var e OutboxEvent
		if err := rows.Scan(&e.EventID, &e.AggregateType, &e.AggregateID, &e.EventType, &e.PartitionKey, &e.Payload, &e.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan outbox row: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *PgOutboxSource) MarkPublished(ctx context.Context, eventID uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `UPDATE event_outbox SET "publishedAt" = now() WHERE "eventId" = $1`, eventID)
	if err != nil {
		return fmt.Errorf("mark published: %w", err)
	}
	return nil
}

// OutboxPoller polls the outbox and publishes events to Kafka.
type OutboxPoller struct {
	source    OutboxSource
	producer  Publisher
	logger    *slog.Logger
	interval  time.Duration
	batchSize int
}

// NewOutboxPoller creates a new outbox poller.
func NewOutboxPoller(source OutboxSource, producer Publisher, interval time.Duration, batchSize int, logger *slog.Logger) *OutboxPoller {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &OutboxPoller{
		source:    source,
		producer:  producer,
		logger:    logger,
		interval:  interval,
		batchSize: batchSize,
	}
}

// Run polls until ctx is cancelled.
func (p *OutboxPoller) Run(ctx context.Context) {
	p.logger.Info("outbox poller started", "interval", p.interval, "batch_size", p.batchSize)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("outbox poller stopped")
			return
		case <-ticker.C:
			if _, err := p.Poll(ctx); err != nil {
				p.logger.Error("outbox poll error", "error", err)
			}
		}
	}
}

// Poll publishes one batch in order and returns how many events were published.
// It stops at the first failed publish so per-aggregate order is kept.
func (p *OutboxPoller) Poll(ctx context.Context) (int, error) {
	events, err := p.source.FetchUnpublished(ctx, p.batchSize)
	if err != nil {
		return 0, err
	}

	published := 0
	for _, e := range events {
		msg, err := json.Marshal(map[string]interface{}{
			"event_id":       e.EventID,
			"aggregate_type": e.AggregateType,
			"aggregate_id":   e.AggregateID,
			"event_type":     e.EventType,
			"payload":        e.Payload,
			"occurred_at":    e.OccurredAt,
		})
		if err != nil {
			return published, fmt.Errorf("marshal event %s: %w", e.EventID, err)
		}

		key := e.PartitionKey
		if key == "" {
			key = e.AggregateID
		}
		if err := p.producer.Publish(ctx, e.Topic(), []byte(key), msg); err != nil {
			p.logger.Error("kafka publish failed", "event_id", e.EventID, "error", err)
			return published, fmt.Errorf("publish event %s: %w", e.EventID, err)
		}

		if err := p.source.MarkPublished(ctx, e.EventID); err != nil {
			return published, err
		}
		published++
	}

	if published > 0 {
		p.logger.Debug("outbox poll complete", "published", published)
	}
	return published, nil
}

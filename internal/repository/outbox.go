package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/attaboy/matchday/internal/domain"
	"github.com/google/uuid"
)

type outboxRepo struct{}

// NewOutboxRepository returns a pgx-backed OutboxRepository.
func NewOutboxRepository() OutboxRepository {
	return &outboxRepo{}
}

// InsertAll writes every draft in one statement. Rows are inserted in slice
// order so the "id" sequence follows the order the events happened in.
func (r *outboxRepo) InsertAll(ctx context.Context, db DBTX, drafts []domain.OutboxDraft) error {
	if len(drafts) == 0 {
		return nil
	}

	n := len(drafts)
	var (
		eventIDs   = make([]uuid.UUID, n)
		aggTypes   = make([]string, n)
		aggIDs     = make([]string, n)
		eventTypes = make([]string, n)
		keys       = make([]string, n)
		headers    = make([]string, n)
		payloads   = make([]string, n)
		occurred   = make([]time.Time, n)
	)
	for i, d := range drafts {
		eventIDs[i] = d.EventID
		aggTypes[i] = string(d.AggregateType)
		aggIDs[i] = d.AggregateID
		eventTypes[i] = string(d.EventType)
		keys[i] = d.PartitionKey
		headers[i] = jsonOrEmpty(d.Headers)
		payloads[i] = jsonOrEmpty(d.Payload)
		occurred[i] = d.OccurredAt
	}

	_, err := db.Exec(ctx, `
		INSERT INTO event_outbox
		  ("eventId", "aggregateType", "aggregateId", "eventType", "partitionKey", "headers", "payload", "occurredAt")
		SELECT e.event_id, e.agg_type, e.agg_id, e.event_type, e.part_key, e.headers::jsonb, e.payload::jsonb, e.occurred_at
		FROM unnest($1::uuid[], $2::text[], $3::text[], $4::text[], $5::text[], $6::text[], $7::text[], $8::timestamptz[])
		  WITH ORDINALITY AS e(event_id, agg_type, agg_id, event_type, part_key, headers, payload, occurred_at, ord)
		ORDER BY e.ord`,
		eventIDs, aggTypes, aggIDs, eventTypes, keys, headers, payloads, occurred,
	)
	if err != nil {
		return fmt.Errorf("insert %d outbox events (first %s): %w", n, drafts[0].EventType, err)
	}
	return nil
}

func jsonOrEmpty(raw []byte) string {
	if len(raw) == 0 {
		return "{}"
	}
	return string(raw)
}

package infra

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaProducer publishes outbox events. A producer built without brokers,
// or with Kafka disabled, drops every message.
type KafkaProducer struct {
	writer  *kafka.Writer
	brokers []string
	logger  *slog.Logger
}

// ParseBrokers splits a comma separated broker list, dropping blanks.
func ParseBrokers(list string) []string {
	var brokers []string
	for _, b := range strings.Split(list, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// NewKafkaProducer creates a producer for the brokers in list.
func NewKafkaProducer(list string, enabled bool, logger *slog.Logger) *KafkaProducer {
	brokers := ParseBrokers(list)
	if !enabled || len(brokers) == 0 {
		logger.Info("kafka producer disabled")
		return &KafkaProducer{logger: logger}
	}

	// Hashing the key keeps every event of one game on one partition.
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		WriteTimeout:           10 * time.Second,
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}

	logger.Info("kafka producer initialized", "brokers", brokers)
	return &KafkaProducer{writer: w, brokers: brokers, logger: logger}
}

// Enabled reports whether messages actually leave the process.
func (p *KafkaProducer) Enabled() bool { return p.writer != nil }

// Publish writes one message and waits for every in-sync replica.
func (p *KafkaProducer) Publish(ctx context.Context, topic string, key, value []byte) error {
	if p.writer == nil {
		return nil
	}
	err := p.writer.WriteMessages(ctx, kafka.Message{Topic: topic, Key: key, Value: value})
	if err != nil {
		return fmt.Errorf("write to %s: %w", topic, err)
	}
	return nil
}

// Close flushes pending writes and logs the writer totals.
func (p *KafkaProducer) Close() error {
	if p.writer == nil {
		return nil
	}
	stats := p.writer.Stats()
	p.logger.Info("kafka producer closing",
		"messages", stats.Messages,
		"bytes", stats.Bytes,
		"errors", stats.Errors,
	)
	return p.writer.Close()
}

package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/trogers1052/opportunity-radar/internal/models"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes snapshot load events to Kafka. It is registered as a controller observer.
type Producer struct {
	writer messageWriter
	topic  string
	now    func() time.Time
}

// NewProducer creates a new Kafka producer
func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}

	return &Producer{
		writer: writer,
		topic:  topic,
		now:    time.Now,
	}
}

// SnapshotLoaded publishes a SNAPSHOT_LOADED event
func (p *Producer) SnapshotLoaded(ctx context.Context, snap models.Snapshot) error {
	event := models.SnapshotEvent{
		EventType:   models.EventSnapshotLoaded,
		Source:      snap.Source,
		RecordCount: len(snap.Records),
		Timestamp:   p.now(),
	}
	for i := range snap.Records {
		switch {
		case snap.Records[i].IsIncome():
			event.Income++
		case snap.Records[i].IsProtection():
			event.Protection++
		}
	}
	return p.publish(ctx, snap.Source, event)
}

// SnapshotFailed publishes a SNAPSHOT_FAILED event
func (p *Producer) SnapshotFailed(ctx context.Context, source string, loadErr error) error {
	event := models.SnapshotEvent{
		EventType: models.EventSnapshotFailed,
		Source:    source,
		Error:     loadErr.Error(),
		Timestamp: p.now(),
	}
	return p.publish(ctx, source, event)
}

func (p *Producer) publish(ctx context.Context, key string, event models.SnapshotEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: data,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	return nil
}

// Close closes the Kafka producer
func (p *Producer) Close() error {
	return p.writer.Close()
}

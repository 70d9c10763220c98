package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/trogers1052/opportunity-radar/internal/logger"
	"github.com/trogers1052/opportunity-radar/internal/models"
	"github.com/trogers1052/opportunity-radar/internal/radar"
)

// Refresher reloads the snapshot
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Consumer listens for DATA_PUBLISHED events from the snapshot generator and triggers a
// refresh for each one.
type Consumer struct {
	reader    *kafka.Reader
	refresher Refresher
	logger    *zap.Logger
}

// NewConsumer creates a new Kafka consumer for generator events
func NewConsumer(brokers []string, topic, groupID string, refresher Refresher, log *zap.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       1e6, // 1MB
		MaxWait:        1 * time.Second,
		StartOffset:    kafka.LastOffset,
		CommitInterval: time.Second,
	})

	return &Consumer{
		reader:    reader,
		refresher: refresher,
		logger:    logger.OrNop(log),
	}
}

// Start begins consuming messages from Kafka
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("starting kafka consumer", zap.String("topic", c.reader.Config().Topic))

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("kafka consumer shutting down")
			return c.reader.Close()
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil // Context cancelled, normal shutdown
				}
				c.logger.Error("error reading message", zap.Error(err))
				continue
			}

			if err := c.processMessage(ctx, msg); err != nil {
				c.logger.Error("error processing message", zap.Error(err))
			}
		}
	}
}

// processMessage handles a single Kafka message
func (c *Consumer) processMessage(ctx context.Context, msg kafka.Message) error {
	c.logger.Debug("received message",
		zap.Int("partition", msg.Partition),
		zap.Int64("offset", msg.Offset),
		zap.ByteString("key", msg.Key))

	var event models.DataPublishedEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal data published event: %w", err)
	}

	if event.EventType != models.EventDataPublished {
		c.logger.Debug("ignoring event type", zap.String("event_type", event.EventType))
		return nil
	}

	err := c.refresher.Refresh(ctx)
	switch {
	case errors.Is(err, radar.ErrBusy):
		c.logger.Info("refresh already running, skipping", zap.String("source", event.Source))
		return nil
	case err != nil:
		return fmt.Errorf("failed to refresh after publish: %w", err)
	}

	c.logger.Info("refreshed after data publish", zap.String("source", event.Source))
	return nil
}

// Close closes the Kafka consumer
func (c *Consumer) Close() error {
	return c.reader.Close()
}

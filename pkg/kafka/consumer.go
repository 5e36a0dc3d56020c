package kafka

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// Handler processes one decoded event.
type Handler func(ctx context.Context, event *Event) error

// ConsumerConfig configures a single-topic group consumer.
type ConsumerConfig struct {
	Brokers  []string
	GroupID  string
	Topic    string
	MinBytes int
	MaxBytes int

	// Attempts is how many times the handler runs before a message is dead
	// lettered. Defaults to 3.
	Attempts int
	// Backoff is multiplied by the attempt number between tries. Defaults to 100ms.
	Backoff time.Duration

	// DLQ receives messages that are malformed or failed every attempt. When
	// nil they are logged and committed.
	DLQ *DLQProducer
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer reads a topic with at-least-once semantics: offsets are committed
// only after the handler succeeded or the message was dead lettered.
type Consumer struct {
	reader   messageReader
	cfg      ConsumerConfig
	handler  Handler
	logger   *slog.Logger
	closeErr error
	once     sync.Once
}

// NewConsumer creates a consumer backed by a kafka-go group reader.
func NewConsumer(cfg ConsumerConfig, handler Handler, logger *slog.Logger) *Consumer {
	return newConsumer(kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		GroupID:  cfg.GroupID,
		Topic:    cfg.Topic,
		MinBytes: cfg.MinBytes,
		MaxBytes: cfg.MaxBytes,
	}), cfg, handler, logger)
}

func newConsumer(r messageReader, cfg ConsumerConfig, handler Handler, logger *slog.Logger) *Consumer {
	if cfg.Attempts <= 0 {
		cfg.Attempts = 3
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 100 * time.Millisecond
	}
	return &Consumer{
		reader:  r,
		cfg:     cfg,
		handler: handler,
		logger:  logger.With(slog.String("topic", cfg.Topic), slog.String("group", cfg.GroupID)),
	}
}

// Start consumes until ctx is cancelled, then closes the reader.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("kafka consumer started")
	defer c.logger.Info("kafka consumer stopped")

	for ctx.Err() == nil {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			c.logger.Error("kafka fetch failed", slog.String("error", err.Error()))
			continue
		}
		if !c.handle(ctx, msg) {
			break
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Error("kafka commit failed",
				slog.Int64("offset", msg.Offset),
				slog.String("error", err.Error()),
			)
		}
	}
	return c.Close()
}

// handle runs one message to completion. It returns false when ctx was
// cancelled mid-retry, in which case the message must stay uncommitted.
func (c *Consumer) handle(ctx context.Context, msg kafka.Message) bool {
	event, err := DecodeEvent(msg.Value)
	if err != nil {
		consumedTotal.WithLabelValues(msg.Topic, c.cfg.GroupID, outcomeMalformed).Inc()
		c.logger.Error("dropping malformed message",
			slog.Int64("offset", msg.Offset),
			slog.String("error", err.Error()),
		)
		c.deadLetter(ctx, msg, err)
		return true
	}

	start := time.Now()
	err = c.attempt(extractTrace(ctx, &msg), event)
	handleDuration.WithLabelValues(msg.Topic, c.cfg.GroupID).Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		consumedTotal.WithLabelValues(msg.Topic, c.cfg.GroupID, outcomeProcessed).Inc()
	case ctx.Err() != nil && errors.Is(err, ctx.Err()):
		return false
	default:
		consumedTotal.WithLabelValues(msg.Topic, c.cfg.GroupID, outcomeFailed).Inc()
		c.logger.Error("event handling failed",
			slog.String("event_id", event.ID),
			slog.String("aggregate_id", event.AggregateID),
			slog.Int64("offset", msg.Offset),
			slog.Int("attempts", c.cfg.Attempts),
			slog.String("error", err.Error()),
		)
		c.deadLetter(ctx, msg, err)
	}
	return true
}

func (c *Consumer) attempt(ctx context.Context, event *Event) error {
	var err error
	for n := 1; n <= c.cfg.Attempts; n++ {
		if err = c.handler(ctx, event); err == nil {
			return nil
		}
		if n == c.cfg.Attempts {
			break
		}
		c.logger.WarnContext(ctx, "event handler failed, retrying",
			slog.String("event_id", event.ID),
			slog.Int("attempt", n),
			slog.String("error", err.Error()),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(n) * c.cfg.Backoff):
		}
	}
	return err
}

func (c *Consumer) deadLetter(ctx context.Context, msg kafka.Message, cause error) {
	if c.cfg.DLQ == nil {
		return
	}
	if err := c.cfg.DLQ.Publish(ctx, msg, cause, c.cfg.GroupID); err != nil {
		c.logger.Error("dead-letter failed", slog.String("error", err.Error()))
	}
}

// Close closes the reader once; later calls return the first result.
func (c *Consumer) Close() error {
	c.once.Do(func() { c.closeErr = c.reader.Close() })
	return c.closeErr
}

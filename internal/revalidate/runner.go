package revalidate

import (
	"context"
	"log/slog"
	"sync"

	pkgkafka "github.com/shubhamchoudhary-2003/fullstack/pkg/kafka"
)

// Consumer reads one topic until its context is cancelled.
type Consumer interface {
	Start(ctx context.Context) error
	Close() error
}

// ConsumerFactory builds the consumer for one topic.
type ConsumerFactory func(topic string, handler pkgkafka.Handler) Consumer

// Runner runs one consumer per catalog topic.
type Runner struct {
	consumers []Consumer
	logger    *slog.Logger
	wg        sync.WaitGroup
}

// NewRunner wires handler, deduplicated through store, to a consumer for each topic.
func NewRunner(topics []string, handler *Handler, store pkgkafka.IdempotencyStore, factory ConsumerFactory, logger *slog.Logger) *Runner {
	h := pkgkafka.IdempotentHandler(store, handler.Handle, logger)

	consumers := make([]Consumer, 0, len(topics))
	for _, topic := range topics {
		consumers = append(consumers, factory(topic, h))
	}
	return &Runner{
		consumers: consumers,
		logger:    logger,
	}
}

// Start launches every consumer in its own goroutine and returns immediately.
func (r *Runner) Start(ctx context.Context) {
	for _, c := range r.consumers {
		r.wg.Add(1)
		go func(c Consumer) {
			defer r.wg.Done()
			if err := c.Start(ctx); err != nil {
				r.logger.Error("revalidation consumer stopped", slog.String("error", err.Error()))
			}
		}(c)
	}
}

// Wait blocks until every consumer has returned.
func (r *Runner) Wait() {
	r.wg.Wait()
}

// Close closes every consumer.
func (r *Runner) Close() error {
	var firstErr error
	for _, c := range r.consumers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

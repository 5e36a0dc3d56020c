package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
)

// Headers added to dead-lettered messages.
const (
	HeaderDLQTopic     = "dlq.topic"
	HeaderDLQPartition = "dlq.partition"
	HeaderDLQOffset    = "dlq.offset"
	HeaderDLQGroup     = "dlq.group"
	HeaderDLQError     = "dlq.error"
	HeaderDLQFailedAt  = "dlq.failed_at"
)

// DLQTopic returns the dead letter topic for topic.
func DLQTopic(topic string) string {
	return topic + ".dlq"
}

// DLQProducer parks messages that could not be handled so they can be
// inspected and replayed.
type DLQProducer struct {
	writer messageWriter
	logger *slog.Logger
	now    func() time.Time
}

// NewDLQProducer creates a producer that writes each dead letter
// individually.
func NewDLQProducer(brokers []string, logger *slog.Logger) *DLQProducer {
	return newDLQProducer(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		BatchSize:              1,
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}, logger)
}

func newDLQProducer(w messageWriter, logger *slog.Logger) *DLQProducer {
	return &DLQProducer{writer: w, logger: logger, now: time.Now}
}

// Publish copies msg to its dead letter topic, keeping its key, value and
// headers and recording where it came from and why it failed.
func (d *DLQProducer) Publish(ctx context.Context, msg kafka.Message, cause error, group string) error {
	topic := DLQTopic(msg.Topic)

	headers := append(make([]kafka.Header, 0, len(msg.Headers)+6), msg.Headers...)
	headers = append(headers,
		header(HeaderDLQTopic, msg.Topic),
		header(HeaderDLQPartition, strconv.Itoa(msg.Partition)),
		header(HeaderDLQOffset, strconv.FormatInt(msg.Offset, 10)),
		header(HeaderDLQGroup, group),
		header(HeaderDLQFailedAt, d.now().UTC().Format(time.RFC3339)),
	)
	if cause != nil {
		headers = append(headers, header(HeaderDLQError, cause.Error()))
	}

	err := d.writer.WriteMessages(ctx, kafka.Message{
		Topic:   topic,
		Key:     msg.Key,
		Value:   msg.Value,
		Headers: headers,
	})
	if err != nil {
		return fmt.Errorf("dead-letter %s/%d@%d: %w", msg.Topic, msg.Partition, msg.Offset, err)
	}
	deadLetteredTotal.WithLabelValues(msg.Topic, group).Inc()

	d.logger.WarnContext(ctx, "message dead-lettered",
		slog.String("topic", msg.Topic),
		slog.Int("partition", msg.Partition),
		slog.Int64("offset", msg.Offset),
		slog.String("dlq_topic", topic),
	)
	return nil
}

// Close flushes and closes the writer.
func (d *DLQProducer) Close() error {
	return d.writer.Close()
}

func header(key, value string) kafka.Header {
	return kafka.Header{Key: key, Value: []byte(value)}
}

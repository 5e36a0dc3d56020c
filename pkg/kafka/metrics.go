package kafka

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Consumer outcomes.
const (
	outcomeProcessed = "processed"
	outcomeFailed    = "failed"
	outcomeMalformed = "malformed"
)

var (
	consumedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kafka_consumer_messages_total",
		Help: "Messages consumed, by outcome.",
	}, []string{"topic", "group", "outcome"})

	handleDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kafka_consumer_handle_duration_seconds",
		Help:    "Time spent handling one message, retries included.",
		Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"topic", "group"})

	duplicatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kafka_consumer_duplicates_total",
		Help: "Events skipped because their ID was already processed.",
	}, []string{"type"})

	deadLetteredTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kafka_dead_lettered_total",
		Help: "Messages written to a dead letter topic.",
	}, []string{"topic", "group"})

	publishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kafka_producer_messages_total",
		Help: "Publish attempts, by result.",
	}, []string{"topic", "result"})

	publishDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kafka_producer_publish_duration_seconds",
		Help:    "Latency of synchronous publishes.",
		Buckets: prometheus.DefBuckets,
	}, []string{"topic"})
)

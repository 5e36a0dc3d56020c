package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker/v2"
)

// ErrCircuitOpen is returned without calling downstream while the breaker is open.
var ErrCircuitOpen = gobreaker.ErrOpenState

var (
	breakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "circuit_breaker_state",
		Help: "Breaker state: 0 closed, 1 half-open, 2 open.",
	}, []string{"name"})

	breakerRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "circuit_breaker_rejected_total",
		Help: "Calls refused because the breaker was open.",
	}, []string{"name"})
)

// Doer sends an HTTP request.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// BreakerConfig decides when the breaker opens and how it recovers.
type BreakerConfig struct {
	Name string
	// MinRequests must be seen in an interval before FailureRatio applies.
	MinRequests  uint32
	FailureRatio float64
	// Interval clears the counts while closed. Timeout is the open period
	// before a half-open probe; HalfOpenRequests probes are let through.
	Interval         time.Duration
	Timeout          time.Duration
	HalfOpenRequests uint32
}

// DefaultBreakerConfig opens after half of at least five calls in a minute
// fail, and probes again after 30s.
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:             name,
		MinRequests:      5,
		FailureRatio:     0.5,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		HalfOpenRequests: 1,
	}
}

// StatusError is a 5xx answer. It counts as a breaker failure.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.StatusCode, e.Body)
}

// Breaker guards a Doer with a circuit breaker. Transport errors and 5xx
// answers count as failures; 4xx answers are returned untouched.
type Breaker struct {
	next Doer
	cb   *gobreaker.CircuitBreaker[*http.Response]
	name string
}

// NewBreaker wraps next.
func NewBreaker(next Doer, cfg BreakerConfig, logger *slog.Logger) *Breaker {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.HalfOpenRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.Requests >= cfg.MinRequests &&
				float64(c.TotalFailures)/float64(c.Requests) >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			breakerState.WithLabelValues(name).Set(stateValue(to))
			logger.Warn("circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	}
	breakerState.WithLabelValues(cfg.Name).Set(stateValue(gobreaker.StateClosed))

	return &Breaker{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[*http.Response](settings),
		name: cfg.Name,
	}
}

// Do sends req through the breaker.
func (b *Breaker) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	resp, err := b.cb.Execute(func() (*http.Response, error) {
		resp, err := b.next.Do(ctx, req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			defer func() { _ = resp.Body.Close() }()
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
			return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
		}
		return resp, nil
	})
	if errors.Is(err, ErrCircuitOpen) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		breakerRejected.WithLabelValues(b.name).Inc()
	}
	return resp, err
}

// State reports the current breaker state.
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

package database

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// retryPolicy retries startup work with exponential backoff and ±jitter.
type retryPolicy struct {
	attempts int
	base     time.Duration
	jitter   float64
}

// startupRetry waits roughly 1s then 2s between three attempts.
var startupRetry = retryPolicy{attempts: 3, base: time.Second, jitter: 0.25}

func (p retryPolicy) backoff(attempt int) time.Duration {
	d := p.base << attempt
	return d + time.Duration(float64(d)*p.jitter*(2*rand.Float64()-1)) // #nosec G404 -- jitter only
}

// do runs fn until it succeeds, retryable rejects its error, attempts run
// out or ctx ends.
func (p retryPolicy) do(ctx context.Context, logger *slog.Logger, what string, retryable func(error) bool, fn func(context.Context) error) error {
	var err error
	for attempt := 0; attempt < p.attempts; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if !retryable(err) || attempt == p.attempts-1 {
			break
		}
		wait := p.backoff(attempt)
		if logger != nil {
			logger.Warn(what+" failed, retrying",
				slog.Int("attempt", attempt+1),
				slog.Duration("backoff", wait),
				slog.String("error", err.Error()),
			)
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%s: %w", what, ctx.Err())
		case <-time.After(wait):
		}
	}
	return fmt.Errorf("%s: %w", what, err)
}

func always(error) bool { return true }

// isTransient reports whether err is a connectivity failure rather than a
// problem with the SQL itself.
func isTransient(err error) bool {
	var connErr *pgconn.ConnectError
	var netErr net.Error
	var pgErr *pgconn.PgError
	switch {
	case err == nil:
		return false
	case errors.As(err, &connErr), errors.As(err, &netErr):
		return true
	case errors.As(err, &pgErr):
		// Class 08 is connection_exception; 57P03 is cannot_connect_now.
		return strings.HasPrefix(pgErr.Code, "08") || pgErr.Code == "57P03"
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return true
	default:
		return pgconn.SafeToRetry(err)
	}
}

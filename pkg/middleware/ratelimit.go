package middleware

import (
	"context"
	"log/slog"
	"math"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const idleBucketTTL = 3 * time.Minute

type bucket struct {
	*rate.Limiter
	touched time.Time
}

// buckets holds one token bucket per client address.
type buckets struct {
	mu    sync.Mutex
	m     map[netip.Addr]*bucket
	limit rate.Limit
	burst int
	idle  time.Duration
	now   func() time.Time
}

func newBuckets(rps float64, burst int, idle time.Duration) *buckets {
	return &buckets{
		m:     map[netip.Addr]*bucket{},
		limit: rate.Limit(rps),
		burst: burst,
		idle:  idle,
		now:   time.Now,
	}
}

// take reserves one token for addr. It reports whether the request may
// proceed, the tokens left and how long a rejected caller should wait.
func (b *buckets) take(addr netip.Addr) (ok bool, left int, wait time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	bk := b.m[addr]
	if bk == nil {
		bk = &bucket{Limiter: rate.NewLimiter(b.limit, b.burst)}
		b.m[addr] = bk
	}
	bk.touched = now

	r := bk.ReserveN(now, 1)
	if !r.OK() {
		return false, 0, time.Second
	}
	if d := r.DelayFrom(now); d > 0 {
		r.CancelAt(now)
		return false, 0, d
	}
	return true, int(math.Max(0, bk.TokensAt(now))), 0
}

func (b *buckets) evictIdle() {
	b.mu.Lock()
	defer b.mu.Unlock()

	cutoff := b.now().Add(-b.idle)
	for addr, bk := range b.m {
		if bk.touched.Before(cutoff) {
			delete(b.m, addr)
		}
	}
}

func (b *buckets) size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.m)
}

func (b *buckets) janitor(ctx context.Context) {
	t := time.NewTicker(b.idle)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			b.evictIdle()
		}
	}
}

// RateLimit limits each client address to rps requests per second with the
// given burst. Rejected requests get 429 with Retry-After in whole seconds.
// Idle buckets are dropped until ctx is cancelled.
func RateLimit(ctx context.Context, rps float64, burst int, logger *slog.Logger) func(http.Handler) http.Handler {
	set := newBuckets(rps, burst, idleBucketTTL)
	go set.janitor(ctx)
	limit := strconv.Itoa(burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			addr := clientAddr(r)
			ok, left, wait := set.take(addr)
			w.Header().Set("RateLimit-Limit", limit)
			w.Header().Set("RateLimit-Remaining", strconv.Itoa(left))
			if ok {
				next.ServeHTTP(w, r)
				return
			}

			logger.WarnContext(r.Context(), "rate limit exceeded",
				slog.String("ip", addr.String()),
				slog.String("path", r.URL.Path),
			)
			httpRateLimitedTotal.WithLabelValues(r.Method, routePattern(r)).Inc()
			w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(wait)))
			writeError(w, r, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests")
		})
	}
}

func retryAfterSeconds(d time.Duration) int {
	s := int(math.Ceil(d.Seconds()))
	if s < 1 {
		return 1
	}
	return s
}

// clientAddr takes the first parseable X-Forwarded-For entry, then X-Real-IP,
// then the peer address. IPv4-mapped addresses are unmapped.
func clientAddr(r *http.Request) netip.Addr {
	candidates := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	candidates = append(candidates, r.Header.Get("X-Real-IP"))
	for _, c := range candidates {
		if a, err := netip.ParseAddr(strings.TrimSpace(c)); err == nil {
			return a.Unmap()
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	a, err := netip.ParseAddr(host)
	if err != nil {
		return netip.Addr{}
	}
	return a.Unmap()
}

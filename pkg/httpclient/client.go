package httpclient

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net"
	"net/http"
	"time"
)

// Config controls timeouts and retries of outbound calls.
type Config struct {
	Timeout         time.Duration
	MaxRetries      int
	RetryWaitMin    time.Duration
	RetryWaitMax    time.Duration
	MaxConnsPerHost int
}

// DefaultConfig suits short calls to the storefront.
func DefaultConfig() Config {
	return Config{
		Timeout:         10 * time.Second,
		MaxRetries:      2,
		RetryWaitMin:    250 * time.Millisecond,
		RetryWaitMax:    2 * time.Second,
		MaxConnsPerHost: 16,
	}
}

// Client is an http.Client that retries network failures and 5xx answers.
type Client struct {
	http *http.Client
	cfg  Config
}

// New creates a client with its own pooled transport.
func New(cfg Config) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = cfg.MaxConnsPerHost
	transport.MaxConnsPerHost = cfg.MaxConnsPerHost

	return &Client{
		http: &http.Client{Transport: transport, Timeout: cfg.Timeout},
		cfg:  cfg,
	}
}

// Do sends req, retrying with jittered exponential backoff. 501 is final.
// A request body is only re-sent when req.GetBody can rewind it.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)

	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.backoff(attempt)):
			}
			if err := rewind(req); err != nil {
				return nil, err
			}
		}

		last := attempt == c.cfg.MaxRetries
		resp, err := c.http.Do(req)
		switch {
		case err != nil:
			if last || !retryable(err) {
				return nil, fmt.Errorf("%s %s: attempt %d: %w", req.Method, req.URL.Redacted(), attempt+1, err)
			}
		case resp.StatusCode >= 500 && resp.StatusCode != http.StatusNotImplemented && !last:
			_ = resp.Body.Close()
		default:
			return resp, nil
		}
	}
}

// backoff doubles from RetryWaitMin up to RetryWaitMax, spread over ±25%.
func (c *Client) backoff(attempt int) time.Duration {
	d := c.cfg.RetryWaitMin << (attempt - 1)
	if d > c.cfg.RetryWaitMax || d <= 0 {
		d = c.cfg.RetryWaitMax
	}
	return jitter(d)
}

func jitter(d time.Duration) time.Duration {
	spread := int64(d) / 2
	if spread <= 0 {
		return d
	}
	return time.Duration(int64(d) - spread/2 + rand.Int64N(spread+1)) // #nosec G404 -- jitter only
}

func rewind(req *http.Request) error {
	if req.Body == nil || req.Body == http.NoBody || req.GetBody == nil {
		return nil
	}
	body, err := req.GetBody()
	if err != nil {
		return fmt.Errorf("rewind request body: %w", err)
	}
	req.Body = body
	return nil
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

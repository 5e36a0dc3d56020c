package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig(retries int) Config {
	return Config{
		Timeout:         2 * time.Second,
		MaxRetries:      retries,
		RetryWaitMin:    time.Millisecond,
		RetryWaitMax:    5 * time.Millisecond,
		MaxConnsPerHost: 4,
	}
}

// statusSequence answers with the given statuses in order, repeating the last.
func statusSequence(t *testing.T, statuses ...int) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(atomic.AddInt32(&calls, 1)) - 1
		if n >= len(statuses) {
			n = len(statuses) - 1
		}
		w.WriteHeader(statuses[n])
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func send(t *testing.T, c *Client, ctx context.Context, method, url string, body io.Reader) (*http.Response, error) {
	t.Helper()
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	require.NoError(t, err)
	resp, err := c.Do(ctx, req)
	if resp != nil {
		t.Cleanup(func() { _ = resp.Body.Close() })
	}
	return resp, err
}

func TestClient_RetriesServerErrors(t *testing.T) {
	srv, calls := statusSequence(t, 503, 502, 200)

	resp, err := send(t, New(fastConfig(3)), context.Background(), http.MethodPost, srv.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), atomic.LoadInt32(calls))
}

func TestClient_ReturnsLastServerError(t *testing.T) {
	srv, calls := statusSequence(t, 500)

	resp, err := send(t, New(fastConfig(2)), context.Background(), http.MethodPost, srv.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, int32(3), atomic.LoadInt32(calls))
}

func TestClient_FinalStatuses(t *testing.T) {
	for _, status := range []int{http.StatusNotImplemented, http.StatusUnauthorized, http.StatusNotFound} {
		srv, calls := statusSequence(t, status, 200)

		resp, err := send(t, New(fastConfig(3)), context.Background(), http.MethodPost, srv.URL, nil)
		require.NoError(t, err)
		assert.Equal(t, status, resp.StatusCode)
		assert.Equal(t, int32(1), atomic.LoadInt32(calls), "status %d", status)
	}
}

func TestClient_RetryResendsBody(t *testing.T) {
	var bodies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(b))
		if len(bodies) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	_, err := send(t, New(fastConfig(1)), context.Background(), http.MethodPost, srv.URL, strings.NewReader(`{"tags":["materials"]}`))
	require.NoError(t, err)
	assert.Equal(t, []string{`{"tags":["materials"]}`, `{"tags":["materials"]}`}, bodies)
}

func TestClient_NetworkErrorRetriedThenReported(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := send(t, New(fastConfig(1)), context.Background(), http.MethodGet, url+"/api/revalidate", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "attempt 2")
}

func TestClient_ContextCancelledDuringBackoff(t *testing.T) {
	srv, _ := statusSequence(t, 503)
	cfg := fastConfig(3)
	cfg.RetryWaitMin, cfg.RetryWaitMax = time.Hour, time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := send(t, New(cfg), ctx, http.MethodPost, srv.URL, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_Backoff(t *testing.T) {
	c := New(Config{RetryWaitMin: 100 * time.Millisecond, RetryWaitMax: 300 * time.Millisecond})

	for attempt, base := range map[int]time.Duration{1: 100 * time.Millisecond, 2: 200 * time.Millisecond, 3: 300 * time.Millisecond, 9: 300 * time.Millisecond} {
		for range 20 {
			d := c.backoff(attempt)
			assert.GreaterOrEqual(t, d, base*3/4)
			assert.LessOrEqual(t, d, base*5/4)
		}
	}
	assert.Equal(t, time.Duration(1), jitter(1))
}

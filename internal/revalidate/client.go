package revalidate

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/shubhamchoudhary-2003/fullstack/pkg/httpclient"
)

// SecretHeader carries the shared secret expected by the storefront's
// revalidation route.
const SecretHeader = "x-revalidate-secret"

// Client asks the storefront to drop cached pages by tag.
type Client struct {
	http    httpclient.Doer
	baseURL string
	secret  string
	logger  *slog.Logger
}

// NewClient creates a storefront revalidation client for the storefront at baseURL.
func NewClient(doer httpclient.Doer, baseURL, secret string, logger *slog.Logger) *Client {
	return &Client{
		http:    doer,
		baseURL: strings.TrimRight(baseURL, "/"),
		secret:  secret,
		logger:  logger,
	}
}

// Revalidate posts the tags to {baseURL}/api/revalidate. Any non-2xx answer
// is returned as an error.
func (c *Client) Revalidate(ctx context.Context, tags []string) error {
	if len(tags) == 0 {
		return nil
	}

	endpoint := c.baseURL + "/api/revalidate?" + url.Values{"tags": {strings.Join(tags, ",")}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, http.NoBody)
	if err != nil {
		return fmt.Errorf("create revalidate request: %w", err)
	}
	if c.secret != "" {
		req.Header.Set(SecretHeader, c.secret)
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("revalidate %v: %w", tags, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return httpclient.ParseResponseError(resp, "storefront")
	}
	_ = resp.Body.Close()

	c.logger.DebugContext(ctx, "storefront revalidated", slog.Any("tags", tags))
	return nil
}

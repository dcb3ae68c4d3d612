package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/matzehuels/celltower/pkg/observability"
)

// DefaultTimeout bounds a single request.
const DefaultTimeout = 60 * time.Second

var (
	// ErrNotFound is returned for 404 responses.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for connection failures and unexpected statuses.
	ErrNetwork = errors.New("network error")
)

// Client performs GET requests with default headers and hook reporting.
type Client struct {
	http    *http.Client
	headers map[string]string
}

// NewClient creates a client. A nil hc gets a client with [DefaultTimeout].
func NewClient(hc *http.Client, headers map[string]string) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{http: hc, headers: headers}
}

// GetBytes downloads rawURL and returns the body. Connection errors and
// 5xx statuses come back wrapped in [RetryableError].
func (c *Client) GetBytes(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	host, path := splitURL(req.URL)
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		return nil, Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, Retryable(fmt.Errorf("%w: read body: %v", ErrNetwork, err))
	}
	return body, nil
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code >= 500:
		return Retryable(fmt.Errorf("%w: status %d", ErrNetwork, code))
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}

func splitURL(u *url.URL) (string, string) {
	return u.Host, u.Path
}

package platforms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	maxResponseBytes = 64 << 10
	userAgent        = "lichess-bot-notify"
)

// StatusError carries the webhook's HTTP status so adapters can tell a
// deleted message (404) apart from other failures. RetryAfter is set when the
// webhook answered 429 with a Retry-After header in seconds.
type StatusError struct {
	StatusCode int
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("webhook failed with status %d", e.StatusCode)
}

// IsPermanent reports whether resending the same message cannot succeed:
// any 4xx except rate limiting.
func IsPermanent(err error) bool {
	var se *StatusError
	if !errors.As(err, &se) {
		return false
	}
	return se.StatusCode >= 400 && se.StatusCode < 500 && se.StatusCode != http.StatusTooManyRequests
}

// RetryAfter returns the delay the webhook asked for, or zero.
func RetryAfter(err error) time.Duration {
	var se *StatusError
	if errors.As(err, &se) {
		return se.RetryAfter
	}
	return 0
}

type HTTPClient struct {
	inner *http.Client
}

func NewHTTPClient(timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPClient{inner: &http.Client{Timeout: timeout}}
}

func (c *HTTPClient) Post(ctx context.Context, endpoint string, headers map[string]string, body any) ([]byte, error) {
	return c.send(ctx, http.MethodPost, endpoint, headers, body)
}

func (c *HTTPClient) Patch(ctx context.Context, endpoint string, headers map[string]string, body any) ([]byte, error) {
	return c.send(ctx, http.MethodPatch, endpoint, headers, body)
}

func (c *HTTPClient) send(ctx context.Context, method, endpoint string, headers map[string]string, body any) ([]byte, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode webhook body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.inner.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	out, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return out, nil
	}
	statusErr := &StatusError{StatusCode: resp.StatusCode}
	if resp.StatusCode == http.StatusTooManyRequests {
		statusErr.RetryAfter = parseRetryAfter(resp.Header.Get("Retry-After"))
	}
	return out, statusErr
}

func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs * float64(time.Second))
}

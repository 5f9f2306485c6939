package infra

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrHTTP is returned for responses with status >= 400.
type ErrHTTP struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *ErrHTTP) Error() string {
	return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, e.Status, e.Body)
}

// DefaultUserAgent is sent when the caller sets none.
const DefaultUserAgent = "findata/1.0 (github.com/seenimoa/findata)"

// MaxBodySize caps how much of a response GetBytes reads.
const MaxBodySize = 64 << 20

// HTTPClient is shared by every provider.
var HTTPClient = &http.Client{Timeout: 30 * time.Second}

// SetTimeout changes the shared client's timeout.
func SetTimeout(d time.Duration) {
	if d > 0 {
		HTTPClient.Timeout = d
	}
}

// DoGet performs a GET with default headers overridden by headers. The caller
// closes the returned body.
func DoGet(ctx context.Context, url string, headers map[string]string) (io.ReadCloser, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", DefaultUserAgent)
	req.Header.Set("Accept", "application/json, text/html, */*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := HTTPClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("HTTP GET %s: %w", url, err)
	}
	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, resp.StatusCode, &ErrHTTP{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(body),
		}
	}
	return resp.Body, resp.StatusCode, nil
}

// GetBytes is DoGet reading the whole body.
func GetBytes(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	body, _, err := DoGet(ctx, url, headers)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	data, err := io.ReadAll(io.LimitReader(body, MaxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	return data, nil
}

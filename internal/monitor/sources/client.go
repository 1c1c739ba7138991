package sources

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const browserUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// quoteClient wraps an HTTP client with a shared rate limiter and the
// browser-ish headers the Chinese quote endpoints expect.
type quoteClient struct {
	client  *http.Client
	limiter *rate.Limiter
	headers map[string]string
}

func newQuoteClient(timeout time.Duration) *quoteClient {
	return &quoteClient{
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(2), 4),
		headers: map[string]string{
			"User-Agent":      browserUA,
			"Accept":          "application/json, text/plain, */*",
			"Accept-Language": "zh-CN,zh;q=0.9,en;q=0.8",
		},
	}
}

// get fetches url and returns the raw body. Non-200 responses are errors.
func (q *quoteClient) get(ctx context.Context, url string, extraHeaders map[string]string) ([]byte, *http.Response, error) {
	if err := q.limiter.Wait(ctx); err != nil {
		return nil, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, err
	}
	for k, v := range q.headers {
		req.Header.Set(k, v)
	}
	for k, v := range extraHeaders {
		req.Header.Set(k, v)
	}

	resp, err := q.client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, resp, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, resp, fmt.Errorf("read body: %w", err)
	}
	return body, resp, nil
}

// round2 rounds to the 0.01 CNY/g price tick, matching what the exchanges
// themselves publish.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

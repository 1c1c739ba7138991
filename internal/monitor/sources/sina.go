package sources

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"

	"github.com/web3-frozen/goldwatch/internal/monitor"
)

const sinaAPI = "https://hq.sinajs.cn/list=gds_au9999"

// Sina fetches the Au99.99 quote from the Sina Finance hq endpoint. The
// payload is a GBK-encoded JS assignment whose quoted value is a CSV record:
// name, price, prev close, open, high, low, ...
type Sina struct {
	qc      *quoteClient
	baseURL string
}

func NewSina(timeout time.Duration) *Sina {
	return &Sina{
		qc:      newQuoteClient(timeout),
		baseURL: sinaAPI,
	}
}

func (s *Sina) Name() string { return "sina" }
func (s *Sina) URL() string  { return "https://finance.sina.com.cn/futures/quotes/AU9999.shtml" }

func (s *Sina) Fetch(ctx context.Context) (monitor.Reading, error) {
	// The hq endpoint rejects requests without a Sina referer.
	body, resp, err := s.qc.get(ctx, s.baseURL, map[string]string{
		"Referer": "https://finance.sina.com.cn",
	})
	if err != nil {
		return monitor.Reading{}, fmt.Errorf("sina API: %w", err)
	}

	text := string(body)
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(strings.ToLower(ct), "utf-8") {
		decoded, _, convErr := transform.String(simplifiedchinese.GBK.NewDecoder(), text)
		if convErr == nil {
			text = decoded
		}
	}

	quoted, err := extractQuoted(text)
	if err != nil {
		return monitor.Reading{}, fmt.Errorf("sina quote: %w", err)
	}
	parts := strings.Split(quoted, ",")
	if len(parts) < 8 {
		return monitor.Reading{}, fmt.Errorf("sina quote has %d fields, want at least 8", len(parts))
	}

	price, err := parsePrice(parts[1])
	if err != nil {
		return monitor.Reading{}, fmt.Errorf("sina price: %w", err)
	}

	prevClose := floatOr(parts[2], price)
	open := floatOr(parts[3], price)
	high := floatOr(parts[4], price)
	low := floatOr(parts[5], price)

	change := price - prevClose
	var changePct float64
	if prevClose > 0 {
		changePct = change / prevClose * 100
	}

	return monitor.Reading{
		Price:         round2(price),
		Open:          round2(open),
		High:          round2(high),
		Low:           round2(low),
		PrevClose:     round2(prevClose),
		Change:        round2(change),
		ChangePercent: round2(changePct),
		Source:        s.Name(),
		Timestamp:     time.Now(),
	}, nil
}

// extractQuoted pulls the first double-quoted value out of a hq-style
// payload like `var hq_str_gds_au9999="...";`.
func extractQuoted(text string) (string, error) {
	start := strings.IndexByte(text, '"')
	if start < 0 {
		return "", fmt.Errorf("no quoted payload")
	}
	end := strings.IndexByte(text[start+1:], '"')
	if end < 0 {
		return "", fmt.Errorf("unterminated quoted payload")
	}
	return text[start+1 : start+1+end], nil
}

// parsePrice parses a price field, rejecting empty, non-numeric and
// non-positive values.
func parsePrice(field string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", field, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("non-positive price %v", v)
	}
	return v, nil
}

// floatOr parses field, falling back when the provider leaves it blank.
func floatOr(field string, fallback float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

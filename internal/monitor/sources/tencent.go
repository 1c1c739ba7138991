package sources

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/web3-frozen/goldwatch/internal/monitor"
)

const (
	tencentSimpleAPI = "https://qt.gtimg.cn/q=s_shau9999"
	tencentFullAPI   = "https://qt.gtimg.cn/q=shau9999"
)

// Tencent fetches the Au99.99 quote from the Tencent gtimg endpoint. The
// simple quote carries price/change; day open/high/low require a second
// request for the full quote, which is best-effort.
type Tencent struct {
	qc        *quoteClient
	simpleURL string
	fullURL   string
}

func NewTencent(timeout time.Duration) *Tencent {
	return &Tencent{
		qc:        newQuoteClient(timeout),
		simpleURL: tencentSimpleAPI,
		fullURL:   tencentFullAPI,
	}
}

func (t *Tencent) Name() string { return "tencent" }
func (t *Tencent) URL() string  { return "https://gu.qq.com/shau9999" }

func (t *Tencent) Fetch(ctx context.Context) (monitor.Reading, error) {
	body, _, err := t.qc.get(ctx, t.simpleURL, nil)
	if err != nil {
		return monitor.Reading{}, fmt.Errorf("tencent API: %w", err)
	}

	quoted, err := extractQuoted(string(body))
	if err != nil {
		return monitor.Reading{}, fmt.Errorf("tencent quote: %w", err)
	}
	// 1~黄金Au9999~shau9999~price~change~change_percent~...
	parts := strings.Split(quoted, "~")
	if len(parts) < 6 {
		return monitor.Reading{}, fmt.Errorf("tencent quote has %d fields, want at least 6", len(parts))
	}

	price, err := parsePrice(parts[3])
	if err != nil {
		return monitor.Reading{}, fmt.Errorf("tencent price: %w", err)
	}
	change := floatSigned(parts[4])
	changePct := floatSigned(parts[5])

	r := monitor.Reading{
		Price:         round2(price),
		Open:          round2(price),
		High:          round2(price),
		Low:           round2(price),
		PrevClose:     round2(price - change),
		Change:        round2(change),
		ChangePercent: round2(changePct),
		Source:        t.Name(),
		Timestamp:     time.Now(),
	}

	t.enrichFromFullQuote(ctx, &r)
	return r, nil
}

// enrichFromFullQuote fills open/high/low from the full quote. The simple
// quote already produced a valid reading, so any failure here is ignored.
func (t *Tencent) enrichFromFullQuote(ctx context.Context, r *monitor.Reading) {
	body, _, err := t.qc.get(ctx, t.fullURL, nil)
	if err != nil {
		return
	}
	quoted, err := extractQuoted(string(body))
	if err != nil {
		return
	}
	parts := strings.Split(quoted, "~")
	if len(parts) <= 34 {
		return
	}
	if v := floatOr(parts[4], 0); v > 0 {
		r.PrevClose = round2(v)
	}
	if v := floatOr(parts[5], 0); v > 0 {
		r.Open = round2(v)
	}
	if v := floatOr(parts[33], 0); v > 0 {
		r.High = round2(v)
	}
	if v := floatOr(parts[34], 0); v > 0 {
		r.Low = round2(v)
	}
}

// floatSigned parses a possibly negative numeric field, zero on failure.
func floatSigned(field string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
	if err != nil {
		return 0
	}
	return v
}

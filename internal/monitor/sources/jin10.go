package sources

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/web3-frozen/goldwatch/internal/monitor"
)

const jin10URL = "https://quote.jin10.com/au9999"

// Jin10 scrapes the Au99.99 quote from the Jin10 quote page via headless
// Chrome. Jin10 has no plain HTTP quote API; the page renders prices
// client-side. Disabled by default because it needs a Chrome binary and is
// an order of magnitude slower than the HTTP sources.
type Jin10 struct {
	logger  *slog.Logger
	pageURL string
	timeout time.Duration
}

func NewJin10(logger *slog.Logger, timeout time.Duration) *Jin10 {
	if timeout < 30*time.Second {
		timeout = 30 * time.Second
	}
	return &Jin10{logger: logger, pageURL: jin10URL, timeout: timeout}
}

func (j *Jin10) Name() string { return "jin10" }
func (j *Jin10) URL() string  { return jin10URL }

const jin10ExtractJS = `(() => {
	const el = document.querySelector('.quote-price, [class*="price"]');
	return el ? el.textContent.trim() : '';
})()`

func (j *Jin10) Fetch(ctx context.Context) (monitor.Reading, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-crash-reporter", true),
		chromedp.Flag("crash-dumps-dir", "/tmp"),
		chromedp.UserDataDir("/tmp/chromedp-profile"),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	cctx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	cctx, cancel = context.WithTimeout(cctx, j.timeout)
	defer cancel()

	var raw string
	err := chromedp.Run(cctx,
		chromedp.Navigate(j.pageURL),
		chromedp.Sleep(2*time.Second),
		chromedp.Evaluate(jin10ExtractJS, &raw),
	)
	if err != nil {
		return monitor.Reading{}, fmt.Errorf("chromedp jin10: %w", err)
	}

	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return monitor.Reading{}, fmt.Errorf("parse jin10 price %q: %w", raw, err)
	}
	if price <= 0 {
		return monitor.Reading{}, fmt.Errorf("jin10 non-positive price %.2f", price)
	}

	return monitor.Reading{
		Price:     round2(price),
		Source:    j.Name(),
		Timestamp: time.Now(),
	}, nil
}

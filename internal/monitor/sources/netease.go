package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/web3-frozen/goldwatch/internal/monitor"
)

const neteaseAPI = "https://api.money.126.net/data/feed/118AU9999,money.api"

// NetEase fetches the Au99.99 quote from the 126.net feed. The response is
// JSONP: _ntes_quote_callback({"118AU9999": {...}});
type NetEase struct {
	qc      *quoteClient
	baseURL string
}

func NewNetEase(timeout time.Duration) *NetEase {
	return &NetEase{
		qc:      newQuoteClient(timeout),
		baseURL: neteaseAPI,
	}
}

func (n *NetEase) Name() string { return "netease" }
func (n *NetEase) URL() string  { return "https://quotes.money.163.com/" }

type neteaseQuote struct {
	Price     float64 `json:"price"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	PrevClose float64 `json:"yestclose"`
	Change    float64 `json:"updown"`
	Percent   float64 `json:"percent"`
}

func (n *NetEase) Fetch(ctx context.Context) (monitor.Reading, error) {
	body, _, err := n.qc.get(ctx, n.baseURL, nil)
	if err != nil {
		return monitor.Reading{}, fmt.Errorf("netease API: %w", err)
	}

	inner, err := stripJSONP(string(body))
	if err != nil {
		return monitor.Reading{}, fmt.Errorf("netease quote: %w", err)
	}

	var payload map[string]neteaseQuote
	if err := json.Unmarshal([]byte(inner), &payload); err != nil {
		return monitor.Reading{}, fmt.Errorf("decode netease quote: %w", err)
	}
	q, ok := payload["118AU9999"]
	if !ok {
		return monitor.Reading{}, fmt.Errorf("netease quote missing 118AU9999")
	}
	if q.Price <= 0 {
		return monitor.Reading{}, fmt.Errorf("netease non-positive price %.2f", q.Price)
	}

	return monitor.Reading{
		Price:         round2(q.Price),
		Open:          round2(q.Open),
		High:          round2(q.High),
		Low:           round2(q.Low),
		PrevClose:     round2(q.PrevClose),
		Change:        round2(q.Change),
		ChangePercent: round2(q.Percent * 100),
		Source:        n.Name(),
		Timestamp:     time.Now(),
	}, nil
}

// stripJSONP extracts the argument of a callback(...) wrapper.
func stripJSONP(text string) (string, error) {
	open := strings.IndexByte(text, '(')
	closing := strings.LastIndexByte(text, ')')
	if open < 0 || closing < open {
		return "", fmt.Errorf("not a JSONP payload")
	}
	return text[open+1 : closing], nil
}

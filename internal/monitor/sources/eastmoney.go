package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/web3-frozen/goldwatch/internal/monitor"
)

const eastmoneyAPI = "https://push2.eastmoney.com/api/qt/stock/get?secid=118.AU9999&fields=f43,f44,f45,f46,f60,f170"

// EastMoney fetches the Au99.99 quote from the EastMoney push API.
// Prices come back in fen (hundredths of a yuan).
type EastMoney struct {
	qc      *quoteClient
	baseURL string
}

func NewEastMoney(timeout time.Duration) *EastMoney {
	return &EastMoney{
		qc:      newQuoteClient(timeout),
		baseURL: eastmoneyAPI,
	}
}

func (e *EastMoney) Name() string { return "eastmoney" }
func (e *EastMoney) URL() string  { return "https://quote.eastmoney.com/sgx/AU9999.html" }

type eastmoneyResp struct {
	Data *struct {
		Price         float64 `json:"f43"`
		High          float64 `json:"f44"`
		Low           float64 `json:"f45"`
		Open          float64 `json:"f46"`
		PrevClose     float64 `json:"f60"`
		ChangePercent float64 `json:"f170"`
	} `json:"data"`
}

func (e *EastMoney) Fetch(ctx context.Context) (monitor.Reading, error) {
	body, _, err := e.qc.get(ctx, e.baseURL, nil)
	if err != nil {
		return monitor.Reading{}, fmt.Errorf("eastmoney API: %w", err)
	}

	var payload eastmoneyResp
	if err := json.Unmarshal(body, &payload); err != nil {
		return monitor.Reading{}, fmt.Errorf("decode eastmoney quote: %w", err)
	}
	if payload.Data == nil {
		return monitor.Reading{}, fmt.Errorf("eastmoney quote missing data")
	}

	d := payload.Data
	price := d.Price / 100
	if price <= 0 {
		return monitor.Reading{}, fmt.Errorf("eastmoney non-positive price %.2f", price)
	}
	prevClose := d.PrevClose / 100

	return monitor.Reading{
		Price:         round2(price),
		Open:          round2(d.Open / 100),
		High:          round2(d.High / 100),
		Low:           round2(d.Low / 100),
		PrevClose:     round2(prevClose),
		Change:        round2(price - prevClose),
		ChangePercent: round2(d.ChangePercent / 100),
		Source:        e.Name(),
		Timestamp:     time.Now(),
	}, nil
}

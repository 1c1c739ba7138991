package monitor

import (
	"github.com/shopspring/decimal"
)

// tickPlaces rounds every derived price to the exchange minimum increment,
// 0.01 CNY/g for Au99.99.
const tickPlaces = 2

// Target is one fee-adjusted sell target: selling at SellPrice and paying
// the sale fee realizes MarginPercent over the reference price.
type Target struct {
	MarginPercent float64 `json:"target_percent"`
	SellPrice     float64 `json:"sell_price"`
	ProfitAmount  float64 `json:"profit_amount"`
	Multiplier    float64 `json:"actual_multiplier"`
}

// ProfitResult is derived on demand from the latest price and the operator's
// reference (buy) price. Never stored.
type ProfitResult struct {
	PnlAbsolute float64 `json:"pnl_absolute"`
	PnlPercent  float64 `json:"pnl_percent"`
	// NetPercent is the realized percentage if sold now, after the sale
	// fee: (current*(1-fee) - ref) / ref.
	NetPercent float64  `json:"current_profit"`
	Targets    []Target `json:"targets"`
}

// DefaultMargins are the profit targets offered when none are configured,
// in percent.
var DefaultMargins = []float64{5, 10, 15, 20, 30}

// ComputeProfit derives gain/loss and fee-adjusted sell targets. A
// non-positive reference price yields ok=false: profit is undefined, not an
// error. Deterministic for identical inputs; decimal arithmetic rounded to
// the price tick keeps it reproducible across platforms.
func ComputeProfit(currentPrice, referencePrice, feeRate float64, marginsPct []float64) (ProfitResult, bool) {
	if referencePrice <= 0 {
		return ProfitResult{}, false
	}
	if len(marginsPct) == 0 {
		marginsPct = DefaultMargins
	}

	cur := decimal.NewFromFloat(currentPrice)
	ref := decimal.NewFromFloat(referencePrice)
	fee := decimal.NewFromFloat(feeRate)
	one := decimal.NewFromInt(1)
	hundred := decimal.NewFromInt(100)

	abs := cur.Sub(ref)
	pct := abs.Div(ref).Mul(hundred)
	net := cur.Mul(one.Sub(fee)).Sub(ref).Div(ref).Mul(hundred)

	res := ProfitResult{
		PnlAbsolute: abs.Round(tickPlaces).InexactFloat64(),
		PnlPercent:  pct.Round(2).InexactFloat64(),
		NetPercent:  net.Round(2).InexactFloat64(),
		Targets:     make([]Target, 0, len(marginsPct)),
	}

	for _, m := range marginsPct {
		margin := decimal.NewFromFloat(m).Div(hundred)
		// sell = ref * (1 + margin) / (1 - fee)
		sell := ref.Mul(one.Add(margin)).Div(one.Sub(fee)).Round(tickPlaces)
		res.Targets = append(res.Targets, Target{
			MarginPercent: m,
			SellPrice:     sell.InexactFloat64(),
			ProfitAmount:  ref.Mul(margin).Round(tickPlaces).InexactFloat64(),
			Multiplier:    sell.Div(ref).Round(4).InexactFloat64(),
		})
	}
	return res, true
}

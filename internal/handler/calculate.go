package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/web3-frozen/goldwatch/internal/monitor"
	"github.com/web3-frozen/goldwatch/internal/settings"
)

// Calculate derives profit targets for a buy price. The buy price comes from
// the request body or, when omitted, from the stored reference price;
// current_price defaults to the latest accepted reading.
func Calculate(h *monitor.History, st *settings.Store, feeRate float64) http.HandlerFunc {
	type request struct {
		BuyPrice     float64 `json:"buy_price"`
		CurrentPrice float64 `json:"current_price"`
	}
	type response struct {
		Targets       []monitor.Target `json:"targets"`
		CurrentProfit float64          `json:"current_profit"`
		PnlAbsolute   float64          `json:"pnl_absolute"`
		PnlPercent    float64          `json:"pnl_percent"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		// An empty body is a valid request: both prices fall back to
		// stored state.
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		buy := req.BuyPrice
		if buy <= 0 {
			if ref, ok := st.Reference(); ok {
				buy = ref.Value
			}
		}
		if buy <= 0 {
			writeError(w, http.StatusBadRequest, "buy price must be greater than 0")
			return
		}

		current := req.CurrentPrice
		if current <= 0 {
			if latest, ok := h.Latest(); ok {
				current = latest.Price
			}
		}
		if current <= 0 {
			writeError(w, http.StatusServiceUnavailable, "no price data available yet")
			return
		}

		res, ok := monitor.ComputeProfit(current, buy, feeRate, nil)
		if !ok {
			writeError(w, http.StatusBadRequest, "buy price must be greater than 0")
			return
		}
		writeData(w, response{
			Targets:       res.Targets,
			CurrentProfit: res.NetPercent,
			PnlAbsolute:   res.PnlAbsolute,
			PnlPercent:    res.PnlPercent,
		})
	}
}

// Profit computes gain/loss against the stored reference price for the
// latest reading. With no reference price set the result is undefined and
// reported as such, not as an error.
func Profit(h *monitor.History, st *settings.Store, feeRate float64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		latest, ok := h.Latest()
		if !ok {
			writeError(w, http.StatusServiceUnavailable, "no price data available yet")
			return
		}
		ref, ok := st.Reference()
		if !ok {
			writeError(w, http.StatusOK, "reference price not set")
			return
		}
		res, ok := monitor.ComputeProfit(latest.Price, ref.Value, feeRate, nil)
		if !ok {
			writeError(w, http.StatusOK, "reference price not set")
			return
		}
		writeData(w, res)
	}
}

package handler

import (
	"encoding/json"
	"net/http"

	"github.com/web3-frozen/goldwatch/internal/settings"
)

type settingsView struct {
	ReferencePrice float64 `json:"reference_price"`
	High           float64 `json:"high"`
	Low            float64 `json:"low"`
	Enabled        bool    `json:"enabled"`
	TradingEvents  bool    `json:"trading_events_enabled"`
}

// GetSettings returns the reference price, alert band and event flag.
func GetSettings(st *settings.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeData(w, currentSettings(st))
	}
}

// UpdateSettings replaces the reference price, alert band and event flag in
// one write. An omitted trading_events_enabled resets to enabled.
func UpdateSettings(st *settings.Store) http.HandlerFunc {
	type request struct {
		ReferencePrice float64 `json:"reference_price"`
		High           float64 `json:"high"`
		Low            float64 `json:"low"`
		Enabled        bool    `json:"enabled"`
		TradingEvents  *bool   `json:"trading_events_enabled"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.ReferencePrice < 0 || req.High < 0 || req.Low < 0 {
			writeError(w, http.StatusBadRequest, "prices must not be negative")
			return
		}

		st.SetReference(req.ReferencePrice)
		st.SetBand(settings.AlertBand{
			High:    req.High,
			Low:     req.Low,
			Enabled: req.Enabled,
		})
		events := true
		if req.TradingEvents != nil {
			events = *req.TradingEvents
		}
		st.SetTradingEvents(events)
		writeData(w, currentSettings(st))
	}
}

func currentSettings(st *settings.Store) settingsView {
	band := st.Band()
	view := settingsView{
		High:          band.High,
		Low:           band.Low,
		Enabled:       band.Enabled,
		TradingEvents: st.TradingEvents(),
	}
	if ref, ok := st.Reference(); ok {
		view.ReferencePrice = ref.Value
	}
	return view
}

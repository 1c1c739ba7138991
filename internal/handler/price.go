package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/web3-frozen/goldwatch/internal/monitor"
)

// priceView is the /api/price payload: the latest reading flattened together
// with derived deltas, window summary and freshness.
type priceView struct {
	monitor.Reading
	ChangeFromPrev float64 `json:"change_from_prev"`
	ChangeFromOpen float64 `json:"change_from_open"`
	ActiveSource   string  `json:"active_source"`
	HistoryLen     int     `json:"history_len"`
	AgeSeconds     float64 `json:"age_seconds"`
	Stale          bool    `json:"stale"`

	Summary *monitor.Summary `json:"summary,omitempty"`
}

// Price serves the latest accepted reading with derived metrics. Until the
// first provider answers there is nothing to show and the endpoint says so
// rather than inventing a price.
func Price(h *monitor.History, staleAfter time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := h.Snapshot()
		if snap == nil {
			writeError(w, http.StatusServiceUnavailable, "no price data available yet")
			return
		}

		now := time.Now()
		view := priceView{
			Reading:        snap.Latest,
			ChangeFromPrev: snap.ChangeFromPrev,
			ChangeFromOpen: snap.ChangeFromOpen,
			ActiveSource:   snap.ActiveSource,
			HistoryLen:     snap.HistoryLen,
			AgeSeconds:     snap.Age(now).Seconds(),
			Stale:          snap.Stale(now, staleAfter),
		}
		if s, ok := h.Summary(); ok {
			view.Summary = &s
		}
		writeData(w, view)
	}
}

// History serves the retained readings in chronological order. An optional
// ?limit=N keeps only the most recent N.
func History(h *monitor.History) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if s := r.URL.Query().Get("limit"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n < 0 {
				writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
				return
			}
			limit = n
		}

		readings := h.Recent(limit)
		if readings == nil {
			readings = []monitor.Reading{}
		}
		writeData(w, readings)
	}
}

// Sources reports the failover order and which source is currently active.
func Sources(c *monitor.Chain) http.HandlerFunc {
	type view struct {
		Sources []string `json:"sources"`
		Active  string   `json:"active"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		writeData(w, view{
			Sources: c.SourceNames(),
			Active:  c.ActiveSource(),
		})
	}
}

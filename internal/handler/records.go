package handler

import (
	"encoding/json"
	"net/http"

	"github.com/web3-frozen/goldwatch/internal/records"
)

// AddRecord stores a manual price annotation.
func AddRecord(s *records.Store) http.HandlerFunc {
	type request struct {
		Price    float64 `json:"price"`
		BuyPrice float64 `json:"buy_price"`
		Profit   float64 `json:"profit"`
		Note     string  `json:"note"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Price <= 0 {
			writeError(w, http.StatusBadRequest, "price must be greater than 0")
			return
		}
		rec := s.Add(records.Record{
			Price:    req.Price,
			BuyPrice: req.BuyPrice,
			Profit:   req.Profit,
			Note:     req.Note,
		})
		writeData(w, rec)
	}
}

// ListRecords returns all retained manual records, oldest first.
func ListRecords(s *records.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeData(w, s.List())
	}
}

// ClearRecords removes every manual record.
func ClearRecords(s *records.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Clear()
		writeJSON(w, http.StatusOK, envelope{Success: true})
	}
}

// Package settings holds the operator-adjustable state: the reference (buy)
// price the profit engine works from, and the alert band. Values are read
// and replaced wholesale under one mutex, so a reader never sees a torn
// update; a write becomes visible to the next profit computation.
package settings

import (
	"sync"
	"time"
)

// ReferencePrice is the operator's buy price. Zero Value means unset, in
// which case profit metrics are undefined.
type ReferencePrice struct {
	Value float64   `json:"value"`
	SetAt time.Time `json:"set_at"`
}

// AlertBand triggers alerts when the price leaves [Low, High]. A zero bound
// disables that edge.
type AlertBand struct {
	High    float64 `json:"high"`
	Low     float64 `json:"low"`
	Enabled bool    `json:"enabled"`
}

type Store struct {
	mu     sync.RWMutex
	ref    ReferencePrice
	band   AlertBand
	events bool
}

// NewStore returns a store with trading-event notices enabled, the alert
// band disabled and no reference price.
func NewStore() *Store {
	return &Store{events: true}
}

func (s *Store) Reference() (ReferencePrice, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ref, s.ref.Value > 0
}

// SetReference replaces the reference price. Non-positive values clear it.
func (s *Store) SetReference(value float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if value <= 0 {
		s.ref = ReferencePrice{}
		return
	}
	s.ref = ReferencePrice{Value: value, SetAt: time.Now()}
}

func (s *Store) Band() AlertBand {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.band
}

func (s *Store) SetBand(b AlertBand) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.band = b
}

// TradingEvents reports whether holiday closure and reopening notices are
// enabled. Independent of the alert band.
func (s *Store) TradingEvents() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.events
}

func (s *Store) SetTradingEvents(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = enabled
}

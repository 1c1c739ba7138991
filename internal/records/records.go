// Package records keeps the operator's manual price annotations. Purely in
// memory: the service deliberately carries no state across restarts.
package records

import (
	"sync"
	"time"
)

// Record is one manually captured price snapshot with a note.
type Record struct {
	Price     float64   `json:"price"`
	BuyPrice  float64   `json:"buy_price,omitempty"`
	Profit    float64   `json:"profit,omitempty"`
	Note      string    `json:"note,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Store is an append-only list of records, pruned by age so an always-on
// process does not grow without bound.
type Store struct {
	keepFor time.Duration

	mu   sync.RWMutex
	recs []Record
}

func NewStore(keepFor time.Duration) *Store {
	if keepFor <= 0 {
		keepFor = 7 * 24 * time.Hour
	}
	return &Store{keepFor: keepFor}
}

// Add appends a record, stamping it if the caller left Timestamp zero.
func (s *Store) Add(r Record) Record {
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prune(time.Now())
	s.recs = append(s.recs, r)
	return r
}

// List returns all retained records, oldest first.
func (s *Store) List() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Record, len(s.recs))
	copy(out, s.recs)
	return out
}

// Clear removes every record.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs = nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.recs)
}

// prune drops records older than keepFor. Caller holds the write lock.
func (s *Store) prune(now time.Time) {
	cutoff := now.Add(-s.keepFor)
	i := 0
	for i < len(s.recs) && s.recs[i].Timestamp.Before(cutoff) {
		i++
	}
	if i > 0 {
		s.recs = append([]Record(nil), s.recs[i:]...)
	}
}

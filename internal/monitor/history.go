package monitor

import (
	"iter"
	"sync"
	"sync/atomic"
	"time"

	"github.com/web3-frozen/goldwatch/internal/metrics"
)

// Snapshot is the consistent read model published after every accepted
// reading. It is immutable once published; readers may hold it indefinitely.
type Snapshot struct {
	Latest       Reading  `json:"latest"`
	Previous     *Reading `json:"previous,omitempty"`
	ActiveSource string   `json:"active_source"`
	HistoryLen   int      `json:"history_len"`

	// ChangeFromPrev is Latest.Price - Previous.Price, 0 with no previous.
	ChangeFromPrev float64 `json:"change_from_prev"`
	// ChangeFromOpen is Latest.Price - Latest.Open when the provider
	// reported a day-open price.
	ChangeFromOpen float64 `json:"change_from_open"`
}

// Age returns how long ago the latest reading was accepted.
func (s *Snapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.Latest.Timestamp)
}

// Stale reports whether the snapshot is older than the given threshold.
func (s *Snapshot) Stale(now time.Time, after time.Duration) bool {
	return s.Age(now) > after
}

// Summary aggregates the retained window, mirroring the day-range numbers
// shown next to the live price.
type Summary struct {
	High       float64 `json:"high_24h"`
	Low        float64 `json:"low_24h"`
	Avg        float64 `json:"avg_24h"`
	Volatility float64 `json:"volatility"`
	Count      int     `json:"count"`
}

// History is a capacity-bounded FIFO of accepted readings. Append is the
// only mutation and the poller is its only caller; readers go through the
// atomically published snapshot or through All, so they never block the
// writer and never observe a half-appended state.
type History struct {
	capacity int

	mu  sync.Mutex
	buf []Reading

	snap     atomic.Pointer[Snapshot]
	readings atomic.Pointer[[]Reading]
}

func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = 1
	}
	return &History{
		capacity: capacity,
		buf:      make([]Reading, 0, capacity),
	}
}

func (h *History) Capacity() int { return h.capacity }

// Append accepts a reading, evicting the oldest entries once the capacity is
// exceeded, then publishes a fresh snapshot.
func (h *History) Append(r Reading, activeSource string) {
	h.mu.Lock()
	h.buf = append(h.buf, r)
	if len(h.buf) > h.capacity {
		h.buf = h.buf[len(h.buf)-h.capacity:]
	}
	frozen := make([]Reading, len(h.buf))
	copy(frozen, h.buf)
	h.mu.Unlock()

	snap := &Snapshot{
		Latest:       r,
		ActiveSource: activeSource,
		HistoryLen:   len(frozen),
	}
	if len(frozen) >= 2 {
		prev := frozen[len(frozen)-2]
		snap.Previous = &prev
		snap.ChangeFromPrev = r.Price - prev.Price
	}
	if r.Open > 0 {
		snap.ChangeFromOpen = r.Price - r.Open
	}

	h.readings.Store(&frozen)
	h.snap.Store(snap)

	metrics.HistoryLength.Set(float64(len(frozen)))
	metrics.CurrentPrice.Set(r.Price)
}

// Snapshot returns the latest published snapshot, or nil before the first
// accepted reading. Identical between appends.
func (h *History) Snapshot() *Snapshot {
	return h.snap.Load()
}

// Latest returns the most recent reading.
func (h *History) Latest() (Reading, bool) {
	if s := h.snap.Load(); s != nil {
		return s.Latest, true
	}
	return Reading{}, false
}

// Previous returns the second most recent reading.
func (h *History) Previous() (Reading, bool) {
	if s := h.snap.Load(); s != nil && s.Previous != nil {
		return *s.Previous, true
	}
	return Reading{}, false
}

func (h *History) Len() int {
	if s := h.snap.Load(); s != nil {
		return s.HistoryLen
	}
	return 0
}

// All returns a lazy, restartable sequence over the retained readings in
// chronological order. The sequence iterates a frozen copy, so appends that
// happen mid-iteration are not observed.
func (h *History) All() iter.Seq[Reading] {
	return func(yield func(Reading) bool) {
		p := h.readings.Load()
		if p == nil {
			return
		}
		for _, r := range *p {
			if !yield(r) {
				return
			}
		}
	}
}

// Recent returns the most recent limit readings in chronological order,
// sliced from the published frozen window without copying (published windows
// are never mutated). A non-positive limit returns the whole window.
func (h *History) Recent(limit int) []Reading {
	p := h.readings.Load()
	if p == nil {
		return nil
	}
	rs := *p
	if limit > 0 && len(rs) > limit {
		rs = rs[len(rs)-limit:]
	}
	return rs
}

// Summary computes high/low/average/volatility over the retained window.
func (h *History) Summary() (Summary, bool) {
	p := h.readings.Load()
	if p == nil || len(*p) == 0 {
		return Summary{}, false
	}
	rs := *p
	s := Summary{High: rs[0].Price, Low: rs[0].Price, Count: len(rs)}
	var sum float64
	for _, r := range rs {
		if r.Price > s.High {
			s.High = r.Price
		}
		if r.Price < s.Low {
			s.Low = r.Price
		}
		sum += r.Price
	}
	s.Avg = sum / float64(len(rs))
	s.Volatility = s.High - s.Low
	return s, true
}

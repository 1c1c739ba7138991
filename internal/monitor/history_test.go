package monitor

import (
	"testing"
	"time"
)

func reading(price float64) Reading {
	return Reading{Price: price, Source: "test", Timestamp: time.Now()}
}

func TestHistoryEvictsOldestFirst(t *testing.T) {
	h := NewHistory(3)
	for _, p := range []float64{10, 20, 30, 40} {
		h.Append(reading(p), "test")
	}

	if h.Len() != 3 {
		t.Fatalf("Len = %d, want 3", h.Len())
	}
	var got []float64
	for r := range h.All() {
		got = append(got, r.Price)
	}
	want := []float64{20, 30, 40}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("retained[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestHistoryLenBounded(t *testing.T) {
	tests := []struct {
		capacity int
		appends  int
		wantLen  int
	}{
		{5, 0, 0},
		{5, 3, 3},
		{5, 5, 5},
		{5, 17, 5},
		{1, 4, 1},
	}
	for _, tt := range tests {
		h := NewHistory(tt.capacity)
		for i := 0; i < tt.appends; i++ {
			h.Append(reading(float64(i+1)), "test")
		}
		if h.Len() != tt.wantLen {
			t.Errorf("capacity %d, %d appends: Len = %d, want %d",
				tt.capacity, tt.appends, h.Len(), tt.wantLen)
		}
	}
}

func TestHistoryLatestPrevious(t *testing.T) {
	h := NewHistory(10)

	if _, ok := h.Latest(); ok {
		t.Error("Latest on empty history should report absent")
	}
	if _, ok := h.Previous(); ok {
		t.Error("Previous on empty history should report absent")
	}

	h.Append(reading(10), "test")
	latest, ok := h.Latest()
	if !ok || latest.Price != 10 {
		t.Errorf("Latest = (%v, %v), want (10, true)", latest.Price, ok)
	}
	if _, ok := h.Previous(); ok {
		t.Error("Previous with one entry should report absent")
	}

	h.Append(reading(20), "test")
	prev, ok := h.Previous()
	if !ok || prev.Price != 10 {
		t.Errorf("Previous = (%v, %v), want (10, true)", prev.Price, ok)
	}
}

func TestSnapshotIdempotentBetweenAppends(t *testing.T) {
	h := NewHistory(10)
	h.Append(reading(10), "test")
	h.Append(reading(12), "test")

	s1 := h.Snapshot()
	s2 := h.Snapshot()
	if s1 != s2 {
		t.Error("Snapshot without intervening append should return the same value")
	}
	if s1.Latest.Price != 12 || s1.Previous == nil || s1.Previous.Price != 10 {
		t.Errorf("snapshot = latest %v / previous %+v, want 12 / 10", s1.Latest.Price, s1.Previous)
	}
	if s1.ChangeFromPrev != 2 {
		t.Errorf("ChangeFromPrev = %v, want 2", s1.ChangeFromPrev)
	}
}

func TestSnapshotNilBeforeFirstReading(t *testing.T) {
	h := NewHistory(10)
	if h.Snapshot() != nil {
		t.Error("Snapshot before any append should be nil")
	}
}

func TestSnapshotChangeFromOpen(t *testing.T) {
	h := NewHistory(10)
	h.Append(Reading{Price: 505, Open: 500, Source: "test", Timestamp: time.Now()}, "test")
	if got := h.Snapshot().ChangeFromOpen; got != 5 {
		t.Errorf("ChangeFromOpen = %v, want 5", got)
	}
}

func TestSnapshotStaleness(t *testing.T) {
	h := NewHistory(10)
	stamp := time.Now().Add(-time.Minute)
	h.Append(Reading{Price: 500, Source: "test", Timestamp: stamp}, "test")

	snap := h.Snapshot()
	now := time.Now()
	if !snap.Stale(now, 30*time.Second) {
		t.Error("minute-old snapshot should be stale at a 30s threshold")
	}
	if snap.Stale(now, 2*time.Minute) {
		t.Error("minute-old snapshot should be fresh at a 2m threshold")
	}
	if age := snap.Age(now); age < time.Minute {
		t.Errorf("Age = %v, want at least 1m", age)
	}
}

func TestAllIsRestartable(t *testing.T) {
	h := NewHistory(5)
	h.Append(reading(1), "test")
	h.Append(reading(2), "test")

	seq := h.All()
	for range 2 {
		count := 0
		for range seq {
			count++
		}
		if count != 2 {
			t.Fatalf("iteration yielded %d readings, want 2", count)
		}
	}
}

func TestAllUnaffectedByConcurrentAppend(t *testing.T) {
	h := NewHistory(5)
	h.Append(reading(1), "test")
	h.Append(reading(2), "test")

	seq := h.All()
	h.Append(reading(3), "test")

	// Each restart iterates the frozen slice published by the most recent
	// append; mid-iteration appends are never observed.
	count := 0
	for range seq {
		count++
	}
	if count != 3 {
		t.Errorf("iteration yielded %d readings, want 3", count)
	}
}

func TestRecent(t *testing.T) {
	h := NewHistory(5)
	if got := h.Recent(3); got != nil {
		t.Errorf("Recent on empty history = %v, want nil", got)
	}

	for _, p := range []float64{1, 2, 3, 4} {
		h.Append(reading(p), "test")
	}

	tests := []struct {
		limit int
		want  []float64
	}{
		{0, []float64{1, 2, 3, 4}},
		{2, []float64{3, 4}},
		{4, []float64{1, 2, 3, 4}},
		{10, []float64{1, 2, 3, 4}},
	}
	for _, tt := range tests {
		got := h.Recent(tt.limit)
		if len(got) != len(tt.want) {
			t.Errorf("Recent(%d) len = %d, want %d", tt.limit, len(got), len(tt.want))
			continue
		}
		for i := range tt.want {
			if got[i].Price != tt.want[i] {
				t.Errorf("Recent(%d)[%d] = %v, want %v", tt.limit, i, got[i].Price, tt.want[i])
			}
		}
	}
}

func TestSummary(t *testing.T) {
	h := NewHistory(10)
	if _, ok := h.Summary(); ok {
		t.Error("Summary on empty history should report absent")
	}

	for _, p := range []float64{500, 510, 495, 505} {
		h.Append(reading(p), "test")
	}
	s, ok := h.Summary()
	if !ok {
		t.Fatal("Summary should be present")
	}
	if s.High != 510 || s.Low != 495 {
		t.Errorf("High/Low = %v/%v, want 510/495", s.High, s.Low)
	}
	if s.Volatility != 15 {
		t.Errorf("Volatility = %v, want 15", s.Volatility)
	}
	if s.Count != 4 {
		t.Errorf("Count = %d, want 4", s.Count)
	}
	if s.Avg != 502.5 {
		t.Errorf("Avg = %v, want 502.5", s.Avg)
	}
}

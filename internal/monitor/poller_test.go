package monitor

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"
)

func newTestPoller(chain *Chain, h *History, onRead ReadingFunc) *Poller {
	return NewPoller(chain, h, slog.Default(), 5*time.Millisecond, 50*time.Millisecond, onRead)
}

func TestPollOnceAppendsOnSuccess(t *testing.T) {
	src := &fakeSource{name: "a", price: 500}
	chain := newTestChain(src)
	h := NewHistory(10)
	p := newTestPoller(chain, h, nil)

	wait := p.pollOnce(context.Background())
	if wait != p.interval {
		t.Errorf("wait = %v, want normal interval %v", wait, p.interval)
	}
	if h.Len() != 1 {
		t.Fatalf("Len = %d, want 1", h.Len())
	}
	snap := h.Snapshot()
	if snap.ActiveSource != "a" {
		t.Errorf("ActiveSource = %q, want %q", snap.ActiveSource, "a")
	}
}

func TestPollOnceBackoffOnExhaustion(t *testing.T) {
	src := &fakeSource{name: "a", err: errors.New("down")}
	chain := newTestChain(src)
	h := NewHistory(10)
	p := newTestPoller(chain, h, nil)

	wait := p.pollOnce(context.Background())
	if wait != p.backoff {
		t.Errorf("wait = %v, want backoff %v", wait, p.backoff)
	}
	if h.Len() != 0 {
		t.Errorf("Len = %d, want 0: nothing may be appended on a failed cycle", h.Len())
	}
}

func TestPollerRepeatedExhaustionLeavesStateUntouched(t *testing.T) {
	src := &fakeSource{name: "a", price: 500}
	chain := newTestChain(src)
	h := NewHistory(10)
	p := newTestPoller(chain, h, nil)

	p.pollOnce(context.Background())
	before := h.Snapshot()

	// Two consecutive all-fail cycles: backoff both times, history and
	// snapshot identical, active source sticky.
	src.err = errors.New("down")
	for i := 0; i < 2; i++ {
		if wait := p.pollOnce(context.Background()); wait != p.backoff {
			t.Errorf("cycle %d: wait = %v, want backoff", i, wait)
		}
	}

	if h.Len() != 1 {
		t.Errorf("Len = %d, want 1", h.Len())
	}
	after := h.Snapshot()
	if after != before {
		t.Error("snapshot must be unchanged across failed cycles")
	}
	if after.ActiveSource != "a" {
		t.Errorf("ActiveSource = %q, want sticky %q", after.ActiveSource, "a")
	}
}

func TestPollerRecoversToNormalCadence(t *testing.T) {
	src := &fakeSource{name: "a", err: errors.New("down")}
	chain := newTestChain(src)
	h := NewHistory(10)
	p := newTestPoller(chain, h, nil)

	if wait := p.pollOnce(context.Background()); wait != p.backoff {
		t.Fatalf("wait = %v, want backoff", wait)
	}

	src.err = nil
	src.price = 500
	if wait := p.pollOnce(context.Background()); wait != p.interval {
		t.Errorf("wait = %v, want normal interval after recovery", wait)
	}
	if h.Len() != 1 {
		t.Errorf("Len = %d, want 1", h.Len())
	}
}

func TestPollerTimestampsNonDecreasing(t *testing.T) {
	src := &fakeSource{name: "a", price: 500}
	chain := newTestChain(src)
	h := NewHistory(10)
	p := newTestPoller(chain, h, nil)

	for i := 0; i < 5; i++ {
		p.pollOnce(context.Background())
	}

	var prev time.Time
	for r := range h.All() {
		if r.Timestamp.Before(prev) {
			t.Fatalf("timestamps regressed: %v before %v", r.Timestamp, prev)
		}
		prev = r.Timestamp
	}
}

func TestPollerNotifiesOnReading(t *testing.T) {
	src := &fakeSource{name: "a", price: 500}
	chain := newTestChain(src)
	h := NewHistory(10)

	var seen []float64
	p := newTestPoller(chain, h, func(ctx context.Context, r Reading) {
		seen = append(seen, r.Price)
	})

	p.pollOnce(context.Background())
	src.err = errors.New("down")
	p.pollOnce(context.Background())

	if len(seen) != 1 || seen[0] != 500 {
		t.Errorf("notifications = %v, want exactly one for the accepted reading", seen)
	}
}

func TestPollerRunStopsOnCancel(t *testing.T) {
	src := &fakeSource{name: "a", price: 500}
	chain := newTestChain(src)
	h := NewHistory(10)
	p := newTestPoller(chain, h, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
	if h.Len() == 0 {
		t.Error("Run should have accepted at least one reading before cancellation")
	}
}

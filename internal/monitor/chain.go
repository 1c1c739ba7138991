package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/web3-frozen/goldwatch/internal/metrics"
)

// errImplausiblePrice marks a reading rejected by the deviation bound, as
// opposed to a fetch or parse failure.
var errImplausiblePrice = errors.New("implausible price")

// ChainOptions tunes the failover chain. Zero values fall back to defaults.
type ChainOptions struct {
	// MaxDeviationPct rejects a price that moved more than this percentage
	// away from the same source's previous accepted price.
	MaxDeviationPct float64

	// MaxFails is the number of consecutive failures before a source is
	// muted for MuteFor.
	MaxFails int

	MuteFor time.Duration
}

const (
	defaultMaxDeviationPct = 5.0
	defaultMaxFails        = 3
	defaultMuteFor         = 2 * time.Minute

	// rebaselineAfterCycles is how many consecutive exhausted cycles caused
	// by the deviation bound it takes before the baselines are discarded.
	rebaselineAfterCycles = 3
)

// sourceState carries the per-source breaker and plausibility baseline.
type sourceState struct {
	src       Source
	failCount int
	muteUntil time.Time
	lastPrice float64
}

// Chain tries sources in registration order until one yields an accepted
// reading. The active source is the last one that succeeded and is sticky:
// an exhausted cycle leaves it unchanged so consumers keep displaying the
// last known provider instead of flapping to none.
type Chain struct {
	opts   ChainOptions
	logger *slog.Logger

	mu      sync.RWMutex
	sources []*sourceState
	active  string

	// implausibleCycles counts consecutive exhausted cycles where a source
	// was rejected by the deviation bound. The bound protects against a
	// single provider glitching; when every cycle dies on it the price level
	// itself has moved, and holding on to the old baselines would lock the
	// chain out until restart.
	implausibleCycles int
}

func NewChain(logger *slog.Logger, opts ChainOptions) *Chain {
	if opts.MaxDeviationPct <= 0 {
		opts.MaxDeviationPct = defaultMaxDeviationPct
	}
	if opts.MaxFails <= 0 {
		opts.MaxFails = defaultMaxFails
	}
	if opts.MuteFor <= 0 {
		opts.MuteFor = defaultMuteFor
	}
	return &Chain{opts: opts, logger: logger}
}

// Register appends a source at the lowest priority so far. Registration
// order is the failover order; there is no latency-based reordering.
func (c *Chain) Register(src Source) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sources = append(c.sources, &sourceState{src: src})
	c.logger.Info("registered source", "source", src.Name(), "priority", len(c.sources))
}

// SourceNames returns source names in priority order.
func (c *Chain) SourceNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.sources))
	for _, s := range c.sources {
		names = append(names, s.src.Name())
	}
	return names
}

// ActiveSource returns the name of the last source that succeeded, or ""
// before the first success.
func (c *Chain) ActiveSource() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active
}

// Acquire runs one failover cycle: each source in priority order, stopping
// at the first accepted reading. All sources failing yields a
// *ChainExhaustedError; the active source is left untouched in that case.
func (c *Chain) Acquire(ctx context.Context) (Reading, error) {
	c.mu.RLock()
	states := make([]*sourceState, len(c.sources))
	copy(states, c.sources)
	c.mu.RUnlock()

	now := time.Now()
	var failures []*SourceError
	muted := 0

	for i, st := range states {
		if c.isMuted(st, now) {
			muted++
			continue
		}

		start := time.Now()
		reading, err := st.src.Fetch(ctx)
		if err == nil {
			err = c.plausible(st, reading.Price)
		}
		metrics.PollDuration.WithLabelValues(st.src.Name()).Observe(time.Since(start).Seconds())

		if err != nil {
			metrics.PollTotal.WithLabelValues(st.src.Name(), "error").Inc()
			failures = append(failures, &SourceError{Source: st.src.Name(), Err: err})
			c.recordFailure(st)
			if ctx.Err() != nil {
				break
			}
			continue
		}

		metrics.PollTotal.WithLabelValues(st.src.Name(), "success").Inc()
		metrics.PollLastSuccess.WithLabelValues(st.src.Name()).SetToCurrentTime()
		if i > 0 {
			metrics.FailoverTotal.Inc()
		}
		c.recordSuccess(st, reading.Price)
		return reading, nil
	}

	metrics.ChainExhaustedTotal.Inc()
	c.noteExhausted(failures)
	return Reading{}, &ChainExhaustedError{
		Failures: failures,
		AllMuted: len(states) > 0 && muted == len(states),
	}
}

// noteExhausted tracks exhausted cycles caused by the deviation bound. After
// rebaselineAfterCycles in a row the rejected level is treated as the new
// market level: every baseline is dropped so the next cycle accepts it. An
// exhausted cycle with ordinary fetch failures resets the count; an all-muted
// cycle carries no new evidence and leaves it alone.
func (c *Chain) noteExhausted(failures []*SourceError) {
	deviated := false
	for _, f := range failures {
		if errors.Is(f, errImplausiblePrice) {
			deviated = true
			break
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !deviated {
		if len(failures) > 0 {
			c.implausibleCycles = 0
		}
		return
	}
	c.implausibleCycles++
	if c.implausibleCycles < rebaselineAfterCycles {
		return
	}
	c.implausibleCycles = 0
	for _, st := range c.sources {
		st.lastPrice = 0
	}
	c.logger.Warn("price moved beyond the deviation bound on consecutive cycles, accepting new level",
		"cycles", rebaselineAfterCycles, "max_deviation_pct", c.opts.MaxDeviationPct)
	metrics.BaselineResetTotal.Inc()
}

func (c *Chain) isMuted(st *sourceState, now time.Time) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return st.muteUntil.After(now)
}

// plausible rejects a price that jumped implausibly against the source's own
// previous accepted price. The first reading from a source has no baseline
// and passes.
func (c *Chain) plausible(st *sourceState, price float64) error {
	c.mu.RLock()
	last := st.lastPrice
	c.mu.RUnlock()
	if last <= 0 {
		return nil
	}
	deviation := math.Abs(price-last) / last * 100
	if deviation > c.opts.MaxDeviationPct {
		return fmt.Errorf("%w %.2f, deviates %.1f%% from previous %.2f",
			errImplausiblePrice, price, deviation, last)
	}
	return nil
}

func (c *Chain) recordSuccess(st *sourceState, price float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st.failCount = 0
	st.muteUntil = time.Time{}
	st.lastPrice = price
	c.implausibleCycles = 0
	if c.active != st.src.Name() {
		c.logger.Info("active source changed", "from", c.active, "to", st.src.Name())
	}
	c.active = st.src.Name()
}

func (c *Chain) recordFailure(st *sourceState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st.failCount++
	if st.failCount >= c.opts.MaxFails {
		st.muteUntil = time.Now().Add(c.opts.MuteFor)
		st.failCount = 0
		c.logger.Warn("source muted after repeated failures",
			"source", st.src.Name(), "mute_for", c.opts.MuteFor.String())
		metrics.SourceMutedTotal.WithLabelValues(st.src.Name()).Inc()
	}
}

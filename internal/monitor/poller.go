package monitor

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// ReadingFunc is notified after every accepted reading, outside the history
// lock. Used to feed the alert watcher.
type ReadingFunc func(ctx context.Context, r Reading)

// Poller drives acquisition on a fixed cadence. It is the sole writer of the
// history store. A cycle where every source fails switches the poller into
// backoff: nothing is appended, the next attempt waits the (longer) backoff
// interval, and the first success restores the normal cadence. Failures are
// never fatal; only ctx cancellation stops the loop.
type Poller struct {
	chain    *Chain
	history  *History
	logger   *slog.Logger
	interval time.Duration
	backoff  time.Duration
	onRead   ReadingFunc

	lastStamp time.Time
}

func NewPoller(chain *Chain, history *History, logger *slog.Logger, interval, backoff time.Duration, onRead ReadingFunc) *Poller {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if backoff < interval {
		backoff = interval
	}
	return &Poller{
		chain:    chain,
		history:  history,
		logger:   logger,
		interval: interval,
		backoff:  backoff,
		onRead:   onRead,
	}
}

// Run polls until ctx is cancelled. The first acquisition happens
// immediately so the service has data as soon as a provider answers.
func (p *Poller) Run(ctx context.Context) {
	p.logger.Info("poller started",
		"interval", p.interval.String(), "backoff", p.backoff.String())

	wait := p.pollOnce(ctx)
	timer := time.NewTimer(wait)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("poller stopped")
			return
		case <-timer.C:
			timer.Reset(p.pollOnce(ctx))
		}
	}
}

// pollOnce runs one acquisition cycle and returns how long to wait before
// the next one.
func (p *Poller) pollOnce(ctx context.Context) time.Duration {
	reading, err := p.chain.Acquire(ctx)
	if err != nil {
		var exhausted *ChainExhaustedError
		if errors.As(err, &exhausted) && exhausted.AllMuted {
			p.logger.Warn("acquisition skipped", "reason", err.Error())
		} else {
			p.logger.Error("acquisition failed", "error", err)
		}
		return p.backoff
	}

	// Stamp with our own clock, clamped non-decreasing, so history
	// ordering never depends on provider clocks.
	now := time.Now()
	if now.Before(p.lastStamp) {
		now = p.lastStamp
	}
	p.lastStamp = now
	reading.Timestamp = now

	p.history.Append(reading, p.chain.ActiveSource())
	p.logger.Debug("reading accepted",
		"source", reading.Source, "price", reading.Price)

	if p.onRead != nil {
		p.onRead(ctx, reading)
	}
	return p.interval
}

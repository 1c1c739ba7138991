package monitor

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Source is one upstream quote provider for the Au99.99 spot price.
// Implementations live in the sources subpackage; the chain tries them in
// registration order.
type Source interface {
	// Name returns a unique identifier for this source (e.g., "eastmoney").
	Name() string

	// URL returns a human-facing page for the quote, used in alerts.
	URL() string

	// Fetch retrieves the current quote. Any failure mode (network, bad
	// status, malformed payload, non-positive price) is returned as an
	// ordinary error; Fetch must respect ctx and never panic.
	Fetch(ctx context.Context) (Reading, error)
}

// Reading is one accepted price observation. Price is CNY per gram.
// Day-context fields are zero when the provider does not report them.
type Reading struct {
	Price         float64   `json:"price"`
	Open          float64   `json:"open,omitempty"`
	High          float64   `json:"high,omitempty"`
	Low           float64   `json:"low,omitempty"`
	PrevClose     float64   `json:"yesterday_close,omitempty"`
	Change        float64   `json:"change,omitempty"`
	ChangePercent float64   `json:"change_percent,omitempty"`
	Source        string    `json:"source"`
	Timestamp     time.Time `json:"timestamp"`
}

// SourceError records why a single source failed during one acquisition
// cycle.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// ChainExhaustedError is returned by Chain.Acquire when every enabled source
// failed (or was muted) in the same cycle.
type ChainExhaustedError struct {
	Failures []*SourceError
	AllMuted bool
}

func (e *ChainExhaustedError) Error() string {
	if e.AllMuted {
		return "all sources muted by circuit breaker"
	}
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, f.Error())
	}
	return "all sources failed: " + strings.Join(parts, "; ")
}

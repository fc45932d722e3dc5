// Package polling implements the completion contract for in-flight
// generations: consumers refetch on a fixed interval while any comment in
// view is pending or generating, and stop once none are.
package polling

import (
	"context"
	"time"

	"github.com/blendi-remade/reve-studio/internal/models"
)

// DefaultInterval is used when no interval is configured.
const DefaultInterval = 2 * time.Second

// InFlight counts comments still waiting on the provider.
func InFlight(comments []*models.Comment) int {
	n := 0
	for i := range comments {
		if comments[i].Status.InFlight() {
			n++
		}
	}
	return n
}

// NeedsPolling reports whether a consumer should schedule another refetch.
func NeedsPolling(comments []*models.Comment) bool {
	for i := range comments {
		if comments[i].Status.InFlight() {
			return true
		}
	}
	return false
}

// Hint is attached to listings so clients know whether to keep polling.
type Hint struct {
	InFlight       int   `json:"in_flight"`
	PollIntervalMS int64 `json:"poll_interval_ms"`
}

// HintFor builds the hint for a listing. The interval is zero when
// nothing is in flight.
func HintFor(comments []*models.Comment, interval time.Duration) Hint {
	h := Hint{InFlight: InFlight(comments)}
	if h.InFlight > 0 {
		if interval <= 0 {
			interval = DefaultInterval
		}
		h.PollIntervalMS = interval.Milliseconds()
	}
	return h
}

// FetchFunc loads the current comments in view.
type FetchFunc func(ctx context.Context) ([]*models.Comment, error)

// Poller drives the consumer side of the contract.
type Poller struct {
	Interval time.Duration
	// OnUpdate, if set, is called with every successful fetch.
	OnUpdate func(comments []*models.Comment)
	// OnError, if set, is called for failed fetches. Polling continues.
	OnError func(err error)
}

// Run fetches once and then keeps refetching on a fixed interval until no
// comment is in flight or ctx is done. There is no deadline of its own.
// It returns the last successfully fetched set.
func (p *Poller) Run(ctx context.Context, fetch FetchFunc) ([]*models.Comment, error) {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	var last []*models.Comment
	poll := func() bool {
		comments, err := fetch(ctx)
		if err != nil {
			if p.OnError != nil {
				p.OnError(err)
			}
			return true
		}
		last = comments
		if p.OnUpdate != nil {
			p.OnUpdate(comments)
		}
		return NeedsPolling(comments)
	}

	if !poll() {
		return last, nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return last, ctx.Err()
		case <-ticker.C:
			if !poll() {
				return last, nil
			}
		}
	}
}

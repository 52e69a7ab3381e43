// Package round tracks the competition round number and the market freeze
// flag. The ledger never reads this state itself; handlers snapshot it and
// pass it into each trade request, keeping the core's concurrency reasoning
// self-contained.
package round

import (
	"sync"
	"time"
)

// State is a point-in-time snapshot of the controller.
type State struct {
	Round  int        `json:"round"`
	Frozen bool       `json:"frozen"`
	EndsAt *time.Time `json:"ends_at,omitempty"`
}

// Controller gates trading. A fresh controller starts at round 0, frozen:
// no trades are accepted until the administrator starts the first round.
type Controller struct {
	mu     sync.Mutex
	round  int
	frozen bool
	endsAt *time.Time
	timer  *time.Timer

	// OnFreeze, if set, fires when a round's timer expires. Wired to the
	// WebSocket hub so clients learn the round ended.
	OnFreeze func(round int)
}

// New creates a controller in the frozen pre-game state.
func New() *Controller {
	return &Controller{frozen: true}
}

// Snapshot returns the current round number and freeze flag.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{Round: c.round, Frozen: c.frozen, EndsAt: c.endsAt}
}

// StartRound increments the round number and unfreezes trading. If duration
// is positive the market auto-freezes when it elapses; a zero duration runs
// until an explicit Freeze.
func (c *Controller) StartRound(duration time.Duration) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}

	c.round++
	c.frozen = false
	c.endsAt = nil

	if duration > 0 {
		ends := time.Now().Add(duration)
		c.endsAt = &ends
		started := c.round
		c.timer = time.AfterFunc(duration, func() { c.expire(started) })
	}

	return State{Round: c.round, Frozen: c.frozen, EndsAt: c.endsAt}
}

// expire freezes the market when the timer for the given round fires.
// A stale timer from an already-superseded round is ignored.
func (c *Controller) expire(round int) {
	c.mu.Lock()
	if c.round != round || c.frozen {
		c.mu.Unlock()
		return
	}
	c.frozen = true
	c.endsAt = nil
	cb := c.OnFreeze
	c.mu.Unlock()

	if cb != nil {
		cb(round)
	}
}

// Freeze halts trading immediately, keeping the round number.
func (c *Controller) Freeze() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.frozen = true
	c.endsAt = nil
	return State{Round: c.round, Frozen: true}
}

// Resume reopens trading within the current round. No-op before the first
// round has started.
func (c *Controller) Resume() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.round > 0 {
		c.frozen = false
	}
	return State{Round: c.round, Frozen: c.frozen, EndsAt: c.endsAt}
}

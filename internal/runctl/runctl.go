// Package runctl schedules analysis runs: it debounces rapid re-run requests, merges their scopes, hands out strictly increasing run ids, and decides
// whether a given run's late results are still welcome.
//
// The controller is a plain synchronous state machine. It owns no timers and no goroutines: Request returns the quiescence delay plus a generation token,
// the caller sleeps (or schedules a tick) and then calls Fire with that token. A token made stale by a later Request turns its Fire into a no-op, which is
// how a restarted delay is expressed.
package runctl

import "time"

// DefaultDelay is the quiescence delay between the last run request and the run actually firing.
const DefaultDelay = 500 * time.Millisecond

// State is the controller's scheduling state.
type State int

const (
	Idle State = iota
	Scheduled
	InFlight
	Completed
	Cancelled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Scheduled:
		return "scheduled"
	case InFlight:
		return "running"
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Scope is the set of worker names a run covers. A nil Scope is a full run covering every enabled worker.
type Scope map[string]struct{}

// NewScope builds a scoped run covering exactly the given worker names.
func NewScope(names ...string) Scope {
	s := make(Scope, len(names))
	for _, name := range names {
		s[name] = struct{}{}
	}
	return s
}

// Contains reports whether the scope covers name. A nil (full) scope covers every worker.
func (s Scope) Contains(name string) bool {
	if s == nil {
		return true
	}
	_, ok := s[name]
	return ok
}

// Union merges two scopes. A full (nil) scope absorbs anything.
func (s Scope) Union(o Scope) Scope {
	if s == nil || o == nil {
		return nil
	}
	merged := make(Scope, len(s)+len(o))
	for name := range s {
		merged[name] = struct{}{}
	}
	for name := range o {
		merged[name] = struct{}{}
	}
	return merged
}

// Run identifies one dispatched analysis run.
type Run struct {
	ID    int
	Scope Scope
}

// Controller tracks the pending (debounced) run request and the currently dispatched run.
type Controller struct {
	delay time.Duration

	state   State
	pending Scope // only meaningful while state == Scheduled; nil means a full run
	gen     int   // bumped by every Request; Fire must present the latest value

	lastID   int // last dispatched run id; never reused
	activeID int // id whose results are currently accepted; 0 when none
}

// NewController returns a controller with the given quiescence delay. delay <= 0 selects DefaultDelay.
func NewController(delay time.Duration) *Controller {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Controller{delay: delay}
}

// State returns the scheduling state. Note that a previously dispatched run may still be streaming while the state is Scheduled again.
func (c *Controller) State() State {
	return c.state
}

// ActiveID returns the run id whose results are currently accepted, or 0 if none.
func (c *Controller) ActiveID() int {
	return c.activeID
}

// Request records a run request and (re)starts the quiescence delay. While a request is already scheduled the scopes merge: a full request absorbs scoped
// ones, two scoped requests cover the union of their names. Returns the delay to wait and the generation token to later pass to Fire.
func (c *Controller) Request(scope Scope) (time.Duration, int) {
	if c.state == Scheduled {
		c.pending = c.pending.Union(scope)
	} else {
		c.pending = scope
		c.state = Scheduled
	}
	c.gen++
	return c.delay, c.gen
}

// Fire dispatches the pending run once its delay elapsed. It returns false if gen is stale (a later Request restarted the delay) or nothing is pending.
// The returned run carries a strictly increasing id; any previous run's results stop being accepted from here on.
func (c *Controller) Fire(gen int) (Run, bool) {
	if c.state != Scheduled || gen != c.gen {
		return Run{}, false
	}

	c.lastID++
	c.activeID = c.lastID
	c.state = InFlight

	run := Run{ID: c.lastID, Scope: c.pending}
	c.pending = nil
	return run, true
}

// Accept reports whether results for runID should still be applied. Only the most recently dispatched, unfinished run is accepted; everything else is
// stale and must be dropped.
func (c *Controller) Accept(runID int) bool {
	return runID != 0 && runID == c.activeID
}

// Finish marks runID completed. Finishing a stale id is a no-op. If a newer request is already scheduled, the state stays Scheduled.
func (c *Controller) Finish(runID int) {
	if runID == 0 || runID != c.activeID {
		return
	}
	c.activeID = 0
	if c.state == InFlight {
		c.state = Completed
	}
}

// CancelActive stops accepting results for the current run (stream failure or shutdown). A no-op when no run is active. A scheduled request survives.
func (c *Controller) CancelActive() {
	if c.activeID == 0 {
		return
	}
	c.activeID = 0
	if c.state == InFlight {
		c.state = Cancelled
	}
}

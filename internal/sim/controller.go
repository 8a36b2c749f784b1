package sim

import (
	"runtime/debug"
	"sync"

	"github.com/fluxmap/fluxmap/internal/logging"
)

// ControlState is the admission controller's state.
type ControlState int

const (
	ControlIdle ControlState = iota
	ControlRunning
	ControlPaused
	ControlStepping
)

// String returns a human-readable controller state name.
func (s ControlState) String() string {
	switch s {
	case ControlIdle:
		return "idle"
	case ControlRunning:
		return "running"
	case ControlPaused:
		return "paused"
	case ControlStepping:
		return "stepping"
	default:
		return "unknown"
	}
}

// Controller is the finite-state admission gate for upstream producers.
// Producers poll CanProceed before pushing work; a granted step is not
// finished until the producer reports back through StepComplete, which is
// what resolves the channel Step handed out.
//
// Controller carries its own lock: unlike the reducers it is called from
// producer goroutines, not only from the simulation's single writer.
type Controller struct {
	mu          sync.Mutex
	state       ControlState
	stepPending bool
	stepWaiters []chan bool
	subs        []func(ControlState)

	logger *logging.Logger
}

// NewController creates a controller in the idle state.
func NewController(logger *logging.Logger) *Controller {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Controller{logger: logger}
}

// State returns the current control state.
func (c *Controller) State() ControlState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// CanProceed reports whether a producer may admit one unit of work right
// now. While stepping it consumes the pending step flag and grants exactly
// once.
func (c *Controller) CanProceed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case ControlRunning:
		return true
	case ControlStepping:
		if c.stepPending {
			c.stepPending = false
			return true
		}
	}
	return false
}

// Play transitions to running. A no-op when already running.
func (c *Controller) Play() {
	c.transition(func() bool {
		if c.state == ControlRunning {
			return false
		}
		c.state = ControlRunning
		return true
	})
}

// Pause suspends admission. Only meaningful from running or stepping.
func (c *Controller) Pause() {
	c.transition(func() bool {
		if c.state != ControlRunning && c.state != ControlStepping {
			return false
		}
		c.state = ControlPaused
		return true
	})
}

// Stop unconditionally resets to idle, clears any pending step, and
// resolves outstanding step waiters false. Outstanding tokens and pulses
// are not cancelled; they expire on their own.
func (c *Controller) Stop() {
	c.mu.Lock()
	changed := c.state != ControlIdle
	c.state = ControlIdle
	c.stepPending = false
	waiters := c.stepWaiters
	c.stepWaiters = nil
	subs := c.snapshotSubs()
	state := c.state
	c.mu.Unlock()

	for _, w := range waiters {
		w <- false
	}
	if changed {
		c.notify(subs, state)
	}
}

// Step grants admission for exactly one unit of work and returns a channel
// that resolves true once the producer calls StepComplete (or false if the
// controller is stopped first). Admission granted and work finished are
// deliberately decoupled.
func (c *Controller) Step() <-chan bool {
	done := make(chan bool, 1)
	c.mu.Lock()
	if c.state == ControlRunning {
		// Stepping while free-running makes no sense; resolve immediately.
		c.mu.Unlock()
		done <- true
		return done
	}
	changed := c.state != ControlStepping
	c.state = ControlStepping
	c.stepPending = true
	c.stepWaiters = append(c.stepWaiters, done)
	subs := c.snapshotSubs()
	state := c.state
	c.mu.Unlock()

	if changed {
		c.notify(subs, state)
	}
	return done
}

// StepComplete reports that the stepped unit of work finished. It resolves
// all waiters true and settles the controller back into paused.
func (c *Controller) StepComplete() {
	c.mu.Lock()
	if c.state != ControlStepping {
		c.mu.Unlock()
		return
	}
	c.state = ControlPaused
	c.stepPending = false
	waiters := c.stepWaiters
	c.stepWaiters = nil
	subs := c.snapshotSubs()
	state := c.state
	c.mu.Unlock()

	for _, w := range waiters {
		w <- true
	}
	c.notify(subs, state)
}

// Subscribe registers a callback invoked synchronously on every state
// change. The returned function removes the subscription.
func (c *Controller) Subscribe(fn func(ControlState)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = append(c.subs, fn)
	idx := len(c.subs) - 1
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if idx < len(c.subs) {
			c.subs[idx] = nil
		}
	}
}

func (c *Controller) transition(apply func() bool) {
	c.mu.Lock()
	if !apply() {
		c.mu.Unlock()
		return
	}
	subs := c.snapshotSubs()
	state := c.state
	c.mu.Unlock()

	c.logger.Info("controller state changed", "state", state.String())
	c.notify(subs, state)
}

func (c *Controller) snapshotSubs() []func(ControlState) {
	out := make([]func(ControlState), len(c.subs))
	copy(out, c.subs)
	return out
}

// notify invokes subscribers outside the lock, each under its own recover
// so one failing observer cannot block the others.
func (c *Controller) notify(subs []func(ControlState), state ControlState) {
	for _, fn := range subs {
		if fn == nil {
			continue
		}
		func() {
			defer func() {
				if r := recover(); r != nil {
					c.logger.Error("controller subscriber panicked",
						"state", state.String(),
						"panic", r,
						"stack", string(debug.Stack()))
				}
			}()
			fn(state)
		}()
	}
}

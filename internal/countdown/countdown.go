package countdown

import (
	"errors"
	"sync"
	"time"
)

// State is the countdown lifecycle. Running returns to Idle only through an
// explicit Stop; nothing leaves Expired.
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StateExpired State = "expired"
)

// Thresholds are the remaining-second marks at which OnThreshold fires.
// They are side-channel signals, not state transitions.
var Thresholds = []int{300, 60}

var (
	ErrNonPositive = errors.New("countdown requires a positive duration")
	ErrNotIdle     = errors.New("countdown already started")
)

// Callbacks are invoked from the scheduler's tick. OnExpire fires exactly
// once, after which the countdown stops ticking for good.
type Callbacks struct {
	OnTick      func(remaining int)
	OnThreshold func(remaining int)
	OnExpire    func()
}

// Countdown decrements once per second from an initial duration and fires a
// terminal expiry signal at zero. Remaining never goes negative.
type Countdown struct {
	mu        sync.Mutex
	remaining int
	state     State
	sched     Scheduler
	stop      func()
	cb        Callbacks
}

// New creates an idle countdown holding seconds of remaining time.
func New(seconds int, sched Scheduler, cb Callbacks) (*Countdown, error) {
	if seconds <= 0 {
		return nil, ErrNonPositive
	}
	return &Countdown{
		remaining: seconds,
		state:     StateIdle,
		sched:     sched,
		cb:        cb,
	}, nil
}

// Start begins ticking once per second. Only valid from Idle.
func (c *Countdown) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateIdle {
		return ErrNotIdle
	}
	c.state = StateRunning
	c.stop = c.sched.Repeat(time.Second, c.tick)
	return nil
}

// Stop cancels the pending tick and returns to Idle so no expiry can fire
// against a torn-down session. A no-op once expired.
func (c *Countdown) Stop() {
	c.mu.Lock()
	if c.state != StateRunning {
		c.mu.Unlock()
		return
	}
	c.state = StateIdle
	stop := c.stop
	c.stop = nil
	c.mu.Unlock()

	if stop != nil {
		stop()
	}
}

// Remaining returns the seconds left.
func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// State returns the current lifecycle state.
func (c *Countdown) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// tick decrements by exactly one and dispatches callbacks outside the lock.
func (c *Countdown) tick() {
	c.mu.Lock()
	if c.state != StateRunning {
		c.mu.Unlock()
		return
	}
	c.remaining--
	if c.remaining < 0 {
		c.remaining = 0
	}
	rem := c.remaining
	expired := rem == 0
	var stop func()
	if expired {
		c.state = StateExpired
		stop = c.stop
		c.stop = nil
	}
	c.mu.Unlock()

	if stop != nil {
		stop()
	}
	if c.cb.OnTick != nil {
		c.cb.OnTick(rem)
	}
	if !expired && c.cb.OnThreshold != nil && isThreshold(rem) {
		c.cb.OnThreshold(rem)
	}
	if expired && c.cb.OnExpire != nil {
		c.cb.OnExpire()
	}
}

func isThreshold(rem int) bool {
	for _, t := range Thresholds {
		if rem == t {
			return true
		}
	}
	return false
}

package session

// State is the coarse lifecycle state of a game session.
type State string

const (
	StateNotStarted State = "not_started"
	StateRunning    State = "running"
	StatePaused     State = "paused"
	StateEnded      State = "ended"
)

// Side identifies one bench of the scoreboard.
type Side string

const (
	SideHome Side = "home"
	SideAway Side = "away"
)

const (
	minQuarter = 1
	maxQuarter = 6 // quarters 5 and 6 render as OT 1 / OT 2
)

// Clock tracks elapsed game time, the current quarter and the timeout
// counters. It is not self-locking: the owning Session serializes every
// mutation, including ticker ticks, behind its own mutex.
type Clock struct {
	state         State
	quarter       int
	clockSeconds  int
	periodSeconds int
	homeTimeouts  int
	awayTimeouts  int
}

// NewClock creates a clock in NotStarted with a full period on it.
func NewClock(periodSeconds, timeoutsPerSide int) *Clock {
	return &Clock{
		state:         StateNotStarted,
		quarter:       minQuarter,
		clockSeconds:  periodSeconds,
		periodSeconds: periodSeconds,
		homeTimeouts:  timeoutsPerSide,
		awayTimeouts:  timeoutsPerSide,
	}
}

// start begins the game. Valid only from NotStarted.
func (c *Clock) start() error {
	if c.state == StateEnded {
		return nil
	}
	if c.state != StateNotStarted {
		return ErrInvalidState
	}
	c.state = StateRunning
	return nil
}

// pause stops the countdown. Valid only from Running.
func (c *Clock) pause() error {
	if c.state == StateEnded {
		return nil
	}
	if c.state != StateRunning {
		return ErrInvalidState
	}
	c.state = StatePaused
	return nil
}

// resume restarts the countdown. Valid only from Paused.
func (c *Clock) resume() error {
	if c.state == StateEnded {
		return nil
	}
	if c.state != StatePaused {
		return ErrInvalidState
	}
	c.state = StateRunning
	return nil
}

// end is terminal and idempotent. Once ended, no further mutation of the
// clock is possible.
func (c *Clock) end() {
	c.state = StateEnded
}

// tick counts one second off the clock while running. The clock floors at
// zero and never auto-advances the quarter; the coach drives that.
func (c *Clock) tick() {
	if c.state != StateRunning {
		return
	}
	if c.clockSeconds > 0 {
		c.clockSeconds--
	}
}

// adjustQuarter moves the quarter by delta, clamped to [1,6]. The clock
// itself is untouched; resetting it between periods is the coach's call.
func (c *Clock) adjustQuarter(delta int) {
	if c.state == StateEnded {
		return
	}
	q := c.quarter + delta
	if q < minQuarter {
		q = minQuarter
	}
	if q > maxQuarter {
		q = maxQuarter
	}
	c.quarter = q
}

// useTimeout burns one timeout for a side. Exhausted counters are a
// silent no-op, never negative.
func (c *Clock) useTimeout(side Side) {
	if c.state == StateEnded {
		return
	}
	switch side {
	case SideHome:
		if c.homeTimeouts > 0 {
			c.homeTimeouts--
		}
	case SideAway:
		if c.awayTimeouts > 0 {
			c.awayTimeouts--
		}
	}
}

// State returns the current lifecycle state.
func (c *Clock) State() State { return c.state }

// Quarter returns the current quarter (5/6 are overtime).
func (c *Clock) Quarter() int { return c.quarter }

// Seconds returns the seconds remaining in the period.
func (c *Clock) Seconds() int { return c.clockSeconds }

// Timeouts returns the remaining timeouts for a side.
func (c *Clock) Timeouts(side Side) int {
	if side == SideHome {
		return c.homeTimeouts
	}
	return c.awayTimeouts
}

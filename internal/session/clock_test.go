package session

import "testing"

func TestClockLifecycle(t *testing.T) {
	c := NewClock(1200, 3)

	if c.State() != StateNotStarted {
		t.Fatalf("expected not_started, got %s", c.State())
	}

	if err := c.start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if c.State() != StateRunning {
		t.Fatalf("expected running, got %s", c.State())
	}

	// Starting twice is a state conflict.
	if err := c.start(); err != ErrInvalidState {
		t.Errorf("expected ErrInvalidState on double start, got %v", err)
	}

	if err := c.pause(); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if err := c.pause(); err != ErrInvalidState {
		t.Errorf("expected ErrInvalidState on double pause, got %v", err)
	}

	if err := c.resume(); err != nil {
		t.Fatalf("resume: %v", err)
	}

	c.end()
	if c.State() != StateEnded {
		t.Fatalf("expected ended, got %s", c.State())
	}

	// Ended is terminal: lifecycle calls become silent no-ops.
	if err := c.start(); err != nil {
		t.Errorf("start after end should be silent no-op, got %v", err)
	}
	if err := c.pause(); err != nil {
		t.Errorf("pause after end should be silent no-op, got %v", err)
	}
	c.end()
	if c.State() != StateEnded {
		t.Fatalf("expected ended to stick, got %s", c.State())
	}
}

func TestClockTickOnlyWhileRunning(t *testing.T) {
	c := NewClock(3, 3)

	c.tick()
	if c.Seconds() != 3 {
		t.Errorf("tick before start should not move the clock, got %d", c.Seconds())
	}

	if err := c.start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	c.tick()
	if c.Seconds() != 2 {
		t.Errorf("expected 2 after one tick, got %d", c.Seconds())
	}

	if err := c.pause(); err != nil {
		t.Fatalf("pause: %v", err)
	}
	c.tick()
	if c.Seconds() != 2 {
		t.Errorf("tick while paused should not move the clock, got %d", c.Seconds())
	}

	if err := c.resume(); err != nil {
		t.Fatalf("resume: %v", err)
	}
	c.tick()
	c.tick()
	c.tick() // would go negative
	if c.Seconds() != 0 {
		t.Errorf("clock should floor at 0, got %d", c.Seconds())
	}
	if c.State() != StateRunning {
		t.Errorf("expiry does not end the game, got %s", c.State())
	}
}

func TestClockQuarterClamp(t *testing.T) {
	c := NewClock(600, 3)

	c.adjustQuarter(-1)
	if c.Quarter() != 1 {
		t.Errorf("quarter should clamp at 1, got %d", c.Quarter())
	}

	for i := 0; i < 10; i++ {
		c.adjustQuarter(1)
	}
	if c.Quarter() != 6 {
		t.Errorf("quarter should clamp at 6, got %d", c.Quarter())
	}

	// Moving the quarter does not touch the clock.
	if c.Seconds() != 600 {
		t.Errorf("quarter change should not reset the clock, got %d", c.Seconds())
	}
}

func TestClockTimeouts(t *testing.T) {
	c := NewClock(600, 2)

	c.useTimeout(SideHome)
	c.useTimeout(SideHome)
	c.useTimeout(SideHome) // already at zero
	if got := c.Timeouts(SideHome); got != 0 {
		t.Errorf("home timeouts should floor at 0, got %d", got)
	}
	if got := c.Timeouts(SideAway); got != 2 {
		t.Errorf("away timeouts should be untouched, got %d", got)
	}

	c.end()
	c.useTimeout(SideAway)
	if got := c.Timeouts(SideAway); got != 2 {
		t.Errorf("timeouts after end should be a no-op, got %d", got)
	}
}

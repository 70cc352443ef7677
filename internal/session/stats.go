package session

import "flagstat/internal/catalog"

// StatLine holds one player's cumulative counters for the current
// session. Total points are always derived from the counters via the
// catalog weights; there is no independently mutable total to drift.
type StatLine struct {
	counters map[catalog.Field]int
}

func newStatLine() *StatLine {
	return &StatLine{counters: make(map[catalog.Field]int)}
}

// Count returns one counter's value.
func (l *StatLine) Count(f catalog.Field) int {
	return l.counters[f]
}

// TotalPoints recomputes the weighted point total from the counters.
func (l *StatLine) TotalPoints() int {
	return catalog.TotalPoints(l.counters)
}

// Counters returns a copy of the non-zero counters.
func (l *StatLine) Counters() map[catalog.Field]int {
	out := make(map[catalog.Field]int, len(l.counters))
	for f, n := range l.counters {
		if n != 0 {
			out[f] = n
		}
	}
	return out
}

// empty reports whether every counter is zero (possible after undo).
func (l *StatLine) empty() bool {
	for _, n := range l.counters {
		if n != 0 {
			return false
		}
	}
	return true
}

// add adjusts one counter, flooring at zero.
func (l *StatLine) add(f catalog.Field, n int) {
	v := l.counters[f] + n
	if v < 0 {
		v = 0
	}
	l.counters[f] = v
}

// lastAction is the single-slot undo buffer: the most recent applied
// action, flattened to what reversing it needs. Depth is exactly one;
// this is a deliberate carry-over, not an event log.
type lastAction struct {
	playerID     string
	field        catalog.Field
	ledgerSide   Side
	ledgerPoints int // 0 when the play did not post to the scoreboard
}

// Accumulator owns the per-player session stat lines. Lines are created
// lazily on a player's first action and live until reconciliation drains
// them. Like the clock, it relies on the owning Session for locking.
type Accumulator struct {
	lines map[string]*StatLine
	last  *lastAction
}

// NewAccumulator creates an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{lines: make(map[string]*StatLine)}
}

// apply increments the player's counter for the action and records the
// undo slot, overwriting whatever was there.
func (a *Accumulator) apply(playerID string, field catalog.Field, side Side, ledgerPoints int) {
	line, ok := a.lines[playerID]
	if !ok {
		line = newStatLine()
		a.lines[playerID] = line
	}
	line.add(field, 1)
	a.last = &lastAction{
		playerID:     playerID,
		field:        field,
		ledgerSide:   side,
		ledgerPoints: ledgerPoints,
	}
}

// undo reverses the most recent action and clears the slot, so a second
// consecutive undo is a no-op. Returns what was reversed.
func (a *Accumulator) undo() (lastAction, bool) {
	if a.last == nil {
		return lastAction{}, false
	}
	act := *a.last
	a.last = nil
	if line, ok := a.lines[act.playerID]; ok {
		line.add(act.field, -1)
	}
	return act, true
}

// line returns a player's stat line, or nil if they have none yet.
func (a *Accumulator) line(playerID string) *StatLine {
	return a.lines[playerID]
}

// drain hands the lines over for reconciliation and leaves the
// accumulator empty, so session data can only be committed once.
func (a *Accumulator) drain() map[string]*StatLine {
	lines := a.lines
	a.lines = make(map[string]*StatLine)
	a.last = nil
	return lines
}

// snapshotLines returns a deep copy of all non-empty lines.
func (a *Accumulator) snapshotLines() map[string]PlayerStats {
	out := make(map[string]PlayerStats, len(a.lines))
	for id, line := range a.lines {
		if line.empty() {
			continue
		}
		out[id] = PlayerStats{
			Counters:    line.Counters(),
			TotalPoints: line.TotalPoints(),
		}
	}
	return out
}

// PlayerStats is the read-only view of one stat line used in snapshots.
type PlayerStats struct {
	Counters    map[catalog.Field]int `json:"counters"`
	TotalPoints int                   `json:"totalPoints"`
}

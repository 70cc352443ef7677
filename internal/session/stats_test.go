package session

import (
	"testing"

	"flagstat/internal/catalog"
)

func TestStatLineTotalPointsDerived(t *testing.T) {
	l := newStatLine()
	l.add(catalog.FieldTouchdowns, 1)
	l.add(catalog.FieldExtraPoints1, 1)
	l.add(catalog.FieldFlagPulls, 3)

	if got := l.TotalPoints(); got != 7 {
		t.Errorf("expected 7 (6+1, flag pulls weightless), got %d", got)
	}

	// Counters never go negative.
	l.add(catalog.FieldTouchdowns, -5)
	if got := l.Count(catalog.FieldTouchdowns); got != 0 {
		t.Errorf("counter should floor at 0, got %d", got)
	}
	if got := l.TotalPoints(); got != 1 {
		t.Errorf("expected 1 after flooring touchdowns, got %d", got)
	}
}

func TestAccumulatorUndoSingleSlot(t *testing.T) {
	a := NewAccumulator()

	a.apply("p1", catalog.FieldReceptions, SideHome, 0)
	a.apply("p1", catalog.FieldTouchdowns, SideHome, 6)

	act, ok := a.undo()
	if !ok {
		t.Fatal("expected first undo to succeed")
	}
	if act.playerID != "p1" || act.field != catalog.FieldTouchdowns || act.ledgerPoints != 6 {
		t.Errorf("undo reversed wrong action: %+v", act)
	}
	if got := a.line("p1").Count(catalog.FieldTouchdowns); got != 0 {
		t.Errorf("touchdown counter should be back to 0, got %d", got)
	}

	// Depth is exactly one: the reception is not reachable.
	if _, ok := a.undo(); ok {
		t.Error("second consecutive undo should be a no-op")
	}
	if got := a.line("p1").Count(catalog.FieldReceptions); got != 1 {
		t.Errorf("reception should survive, got %d", got)
	}
}

func TestAccumulatorApplyOverwritesUndoSlot(t *testing.T) {
	a := NewAccumulator()

	a.apply("p1", catalog.FieldRuns, SideHome, 0)
	a.apply("p2", catalog.FieldSacks, SideAway, 0)

	act, ok := a.undo()
	if !ok || act.playerID != "p2" {
		t.Fatalf("undo should reverse the newest action, got %+v ok=%v", act, ok)
	}
	if got := a.line("p1").Count(catalog.FieldRuns); got != 1 {
		t.Errorf("older action should be untouched, got %d", got)
	}
}

func TestAccumulatorDrainEmptiesLines(t *testing.T) {
	a := NewAccumulator()
	a.apply("p1", catalog.FieldCompletions, SideHome, 0)

	lines := a.drain()
	if len(lines) != 1 {
		t.Fatalf("expected 1 drained line, got %d", len(lines))
	}
	if len(a.drain()) != 0 {
		t.Error("second drain should hand back nothing")
	}
	if _, ok := a.undo(); ok {
		t.Error("undo after drain should be a no-op")
	}
}

func TestSnapshotLinesSkipsEmpty(t *testing.T) {
	a := NewAccumulator()
	a.apply("p1", catalog.FieldFumbles, SideHome, 0)
	a.undo()

	if stats := a.snapshotLines(); len(stats) != 0 {
		t.Errorf("fully undone line should not appear in snapshots, got %v", stats)
	}
}

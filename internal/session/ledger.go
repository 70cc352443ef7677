package session

// Ledger is the home/away scoreboard. It is driven by the same action
// stream as the stat lines for scoring plays, and by explicit score
// buttons, but stays independent of per-player attribution: a team can
// score without a player getting credit and vice versa.
type Ledger struct {
	homeName  string
	awayName  string
	homeScore int
	awayScore int
}

// NewLedger creates a zero-zero scoreboard.
func NewLedger(homeName, awayName string) *Ledger {
	return &Ledger{homeName: homeName, awayName: awayName}
}

// add posts points to a side. Reversals (negative points, from undo)
// floor the score at zero.
func (l *Ledger) add(side Side, points int) {
	switch side {
	case SideHome:
		l.homeScore += points
		if l.homeScore < 0 {
			l.homeScore = 0
		}
	case SideAway:
		l.awayScore += points
		if l.awayScore < 0 {
			l.awayScore = 0
		}
	}
}

// score returns a side's current total.
func (l *Ledger) score(side Side) int {
	if side == SideHome {
		return l.homeScore
	}
	return l.awayScore
}

// name returns a side's display name.
func (l *Ledger) name(side Side) string {
	if side == SideHome {
		return l.homeName
	}
	return l.awayName
}

package session

// Player is one roster entry eligible for in-game actions.
type Player struct {
	ID       string `json:"id"`
	Jersey   int    `json:"jersey"`
	Name     string `json:"name"`
	Position string `json:"position"`
	Side     Side   `json:"side"`
	Active   bool   `json:"active"`
}

// Roster holds the active players for both sides plus the single
// "currently selected" player that actions without an explicit target
// fall through to. Side attribution for the score ledger comes from the
// playerID -> side lookup built here, never from string matching.
type Roster struct {
	players  []Player
	byID     map[string]int // playerID -> index into players
	sideByID map[string]Side
	selected string
}

// NewRoster creates an empty roster with no selection.
func NewRoster() *Roster {
	return &Roster{
		byID:     make(map[string]int),
		sideByID: make(map[string]Side),
	}
}

// setSide replaces one side's players, preserving roster order. If the
// previously selected player is gone afterwards, selection falls back to
// the first remaining active player, or clears.
func (r *Roster) setSide(side Side, players []Player) {
	kept := make([]Player, 0, len(r.players)+len(players))
	for _, p := range r.players {
		if p.Side != side {
			kept = append(kept, p)
		}
	}
	for _, p := range players {
		p.Side = side
		kept = append(kept, p)
	}

	r.players = kept
	r.byID = make(map[string]int, len(kept))
	r.sideByID = make(map[string]Side, len(kept))
	for i, p := range kept {
		r.byID[p.ID] = i
		r.sideByID[p.ID] = p.Side
	}

	if r.selected != "" {
		if i, ok := r.byID[r.selected]; !ok || !r.players[i].Active {
			r.selected = r.firstActive()
		}
	}
}

// firstActive returns the first active player's id in roster order, or "".
func (r *Roster) firstActive() string {
	for _, p := range r.players {
		if p.Active {
			return p.ID
		}
	}
	return ""
}

// selectPlayer sets the selection, or toggles it off when re-selecting
// the already selected player. The target must be an active member.
func (r *Roster) selectPlayer(playerID string) error {
	if playerID == r.selected {
		r.selected = ""
		return nil
	}
	i, ok := r.byID[playerID]
	if !ok || !r.players[i].Active {
		return ErrUnknownPlayer
	}
	r.selected = playerID
	return nil
}

// resolve returns the target for an action: the explicit id when given,
// otherwise the current selection.
func (r *Roster) resolve(playerID string) (string, error) {
	if playerID == "" {
		playerID = r.selected
	}
	if playerID == "" {
		return "", ErrNoTarget
	}
	i, ok := r.byID[playerID]
	if !ok || !r.players[i].Active {
		return "", ErrUnknownPlayer
	}
	return playerID, nil
}

// sideOf returns the side a rostered player was drawn from.
func (r *Roster) sideOf(playerID string) (Side, bool) {
	s, ok := r.sideByID[playerID]
	return s, ok
}

// get returns a rostered player by id.
func (r *Roster) get(playerID string) (Player, bool) {
	i, ok := r.byID[playerID]
	if !ok {
		return Player{}, false
	}
	return r.players[i], true
}

// list returns a copy of all rostered players in order.
func (r *Roster) list() []Player {
	out := make([]Player, len(r.players))
	copy(out, r.players)
	return out
}

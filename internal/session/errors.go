package session

import "errors"

var (
	// ErrInvalidState is returned when a mutation is attempted in a game
	// state that does not allow it (e.g. recording an action while paused).
	// Callers are expected to suppress the originating control rather than
	// surface this to the user.
	ErrInvalidState = errors.New("invalid state for action")

	// ErrNoTarget is returned when an action carries no player id and no
	// player is currently selected.
	ErrNoTarget = errors.New("no target player")

	// ErrMissingPoints is returned when a variable-point action (an
	// interception return) is recorded without an explicit point value.
	ErrMissingPoints = errors.New("missing explicit points")

	// ErrUnknownKind is returned for action kinds not in the catalog.
	ErrUnknownKind = errors.New("unknown action kind")

	// ErrUnknownPlayer is returned when a player id is not in the active roster.
	ErrUnknownPlayer = errors.New("player not in active roster")

	// ErrSessionNotFound is returned by the manager for unknown session ids.
	ErrSessionNotFound = errors.New("session not found")
)

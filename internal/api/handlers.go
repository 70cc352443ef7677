package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"flagstat/internal/catalog"
	"flagstat/internal/session"
)

// Handler methods for routerHandlers.
// These are used by both the standalone router (for testing) and the full Server.

func (h *routerHandlers) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"status":   "ok",
		"sessions": h.manager.Count(),
	})
}

func (h *routerHandlers) handleListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.manager.Snapshots())
}

func (h *routerHandlers) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TeamID    string `json:"teamId"`
		Season    int    `json:"season"`
		HomeName  string `json:"homeName"`
		AwayName  string `json:"awayName"`
		Opponent  string `json:"opponent"`
		GameType  string `json:"gameType"`
		Notes     string `json:"notes"`
		CreatedBy string `json:"createdBy"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.TeamID == "" {
		writeError(w, "teamId is required", http.StatusBadRequest)
		return
	}
	if req.HomeName == "" || req.AwayName == "" {
		writeError(w, "homeName and awayName are required", http.StatusBadRequest)
		return
	}
	if req.Season == 0 {
		req.Season = time.Now().Year()
	}

	s := h.manager.Create(session.Params{
		TeamID:    req.TeamID,
		Season:    req.Season,
		HomeName:  req.HomeName,
		AwayName:  req.AwayName,
		Opponent:  req.Opponent,
		GameType:  req.GameType,
		Notes:     req.Notes,
		CreatedBy: req.CreatedBy,
	})

	// Best effort: pre-load the team's roster as the home side. A store
	// failure is not fatal; the coach can set the roster explicitly.
	if h.rosters != nil {
		if players, err := h.rosters.GetTeamRoster(r.Context(), req.TeamID); err != nil {
			log.Printf("[API] roster preload for team %s failed: %v", req.TeamID, err)
		} else if len(players) > 0 {
			s.SetActiveRoster(session.SideHome, players)
		}
	}

	UpdateSessionCount(h.manager.Count())
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(s.Snapshot())
}

func (h *routerHandlers) handleGetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, s.Snapshot())
}

func (h *routerHandlers) handleStart(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := s.StartGame(); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, s.Snapshot())
}

func (h *routerHandlers) handlePause(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := s.PauseGame(); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, s.Snapshot())
}

func (h *routerHandlers) handleResume(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := s.ResumeGame(); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, s.Snapshot())
}

func (h *routerHandlers) handleEnd(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	start := time.Now()
	summary, err := s.EndGame(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	RecordReconcile(time.Since(start), len(summary.FailedPlayerIDs), summary.GameRecordSaved)

	// Partial failure is still a 200: the summary carries what saved and
	// what did not, and the caller renders it as a partial-success toast.
	writeJSON(w, summary)
}

func (h *routerHandlers) handleRecordAction(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req struct {
		PlayerID string `json:"playerId"`
		Kind     string `json:"kind"`
		Points   *int   `json:"points"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.Kind == "" {
		writeError(w, "kind is required", http.StatusBadRequest)
		return
	}

	if err := s.RecordAction(req.PlayerID, catalog.Kind(req.Kind), req.Points); err != nil {
		RecordActionRejected(rejectionReason(err))
		writeEngineError(w, err)
		return
	}

	RecordAction(req.Kind)
	writeJSON(w, s.Snapshot())
}

func (h *routerHandlers) handleUndo(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	undone := s.Undo()
	if undone {
		RecordUndo()
	}
	writeJSON(w, map[string]interface{}{
		"undone":   undone,
		"snapshot": s.Snapshot(),
	})
}

func (h *routerHandlers) handleUpdateScore(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req struct {
		Side   string `json:"side"`
		Points int    `json:"points"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	side, ok2 := parseSide(req.Side)
	if !ok2 {
		writeError(w, "side must be home or away", http.StatusBadRequest)
		return
	}

	if err := s.UpdateScore(side, req.Points); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, s.Snapshot())
}

func (h *routerHandlers) handleAdjustQuarter(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req struct {
		Delta int `json:"delta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.Delta != 1 && req.Delta != -1 {
		writeError(w, "delta must be 1 or -1", http.StatusBadRequest)
		return
	}

	s.AdjustQuarter(req.Delta)
	writeJSON(w, s.Snapshot())
}

func (h *routerHandlers) handleUseTimeout(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req struct {
		Side string `json:"side"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	side, ok2 := parseSide(req.Side)
	if !ok2 {
		writeError(w, "side must be home or away", http.StatusBadRequest)
		return
	}

	s.UseTimeout(side)
	writeJSON(w, s.Snapshot())
}

func (h *routerHandlers) handleSelectPlayer(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req struct {
		PlayerID string `json:"playerId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	if err := s.SelectPlayer(req.PlayerID); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, s.Snapshot())
}

func (h *routerHandlers) handleSetRoster(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req struct {
		Side    string           `json:"side"`
		Players []session.Player `json:"players"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	side, ok2 := parseSide(req.Side)
	if !ok2 {
		writeError(w, "side must be home or away", http.StatusBadRequest)
		return
	}

	if err := s.SetActiveRoster(side, req.Players); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, s.Snapshot())
}

// session resolves the {sessionID} URL param, writing a 404 on miss.
func (h *routerHandlers) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id := chi.URLParam(r, "sessionID")
	s, err := h.manager.Get(id)
	if err != nil {
		writeError(w, "Session not found", http.StatusNotFound)
		return nil, false
	}
	return s, true
}

func parseSide(s string) (session.Side, bool) {
	switch session.Side(s) {
	case session.SideHome:
		return session.SideHome, true
	case session.SideAway:
		return session.SideAway, true
	}
	return "", false
}

// writeEngineError maps engine errors to HTTP statuses: state conflicts
// are 409, bad targets/kinds/points are 400.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		writeError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, session.ErrInvalidState):
		writeError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, session.ErrNoTarget),
		errors.Is(err, session.ErrMissingPoints),
		errors.Is(err, session.ErrUnknownKind),
		errors.Is(err, session.ErrUnknownPlayer):
		writeError(w, err.Error(), http.StatusBadRequest)
	default:
		writeError(w, "Internal error", http.StatusInternalServerError)
	}
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, session.ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, session.ErrNoTarget), errors.Is(err, session.ErrUnknownPlayer):
		return "no_target"
	case errors.Is(err, session.ErrMissingPoints):
		return "missing_points"
	default:
		return "unknown_kind"
	}
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kotobaplay/wordrelay/internal/relay"
)

// AddPlayerRequest is the request body for POST /api/host/players.
// Omitted budgets fall back to the defaults.
type AddPlayerRequest struct {
	Name             string `json:"name"`
	BaseSeconds      *int   `json:"baseSeconds,omitempty"`
	PassLimit        *int   `json:"passLimit,omitempty"`
	WrongAnswerLimit *int   `json:"wrongAnswerLimit,omitempty"`
}

// ReorderRequest is the request body for POST /api/host/players/reorder.
type ReorderRequest struct {
	Names []string `json:"names"`
}

// MovePlayerRequest is the request body for POST /api/host/players/move.
// Index is the insertion point counted before the player is pulled out
// of the roster.
type MovePlayerRequest struct {
	Name  string `json:"name"`
	Index int    `json:"index"`
}

// RosterResponse is the roster after a mutation.
type RosterResponse struct {
	Players       []relay.PlayerSnapshot `json:"players"`
	CurrentPlayer string                 `json:"currentPlayer,omitempty"`
}

// PlayerHistoryResponse lists one player's submissions this game.
type PlayerHistoryResponse struct {
	Name    string               `json:"name"`
	Correct []relay.AnswerRecord `json:"correct"`
	Wrong   []relay.AnswerRecord `json:"wrong"`
}

func rosterResponse(console *Console) RosterResponse {
	state := console.State()
	return RosterResponse{
		Players:       state.Players,
		CurrentPlayer: state.CurrentPlayer,
	}
}

func orDefault(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func handleAddPlayer(console *Console) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AddPlayerRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		err := console.AddPlayer(req.Name,
			orDefault(req.BaseSeconds, relay.DefaultBaseSeconds),
			orDefault(req.PassLimit, relay.DefaultPassLimit),
			orDefault(req.WrongAnswerLimit, relay.DefaultWrongAnswerLimit))
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, rosterResponse(console))
	}
}

func handleRemovePlayer(console *Console) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := console.RemovePlayer(chi.URLParam(r, "name")); err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rosterResponse(console))
	}
}

func handleReorderPlayers(console *Console) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ReorderRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := console.ReorderPlayers(req.Names); err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rosterResponse(console))
	}
}

func handleMovePlayer(console *Console) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req MovePlayerRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := console.MovePlayer(req.Name, req.Index); err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rosterResponse(console))
	}
}

func handleForfeit(console *Console) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := console.Forfeit(chi.URLParam(r, "name")); err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rosterResponse(console))
	}
}

func handleSkip(console *Console) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := console.Skip(chi.URLParam(r, "name")); err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rosterResponse(console))
	}
}

func handlePlayerHistory(console *Console) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		correct, wrong, err := console.PlayerHistory(name)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		if correct == nil {
			correct = []relay.AnswerRecord{}
		}
		if wrong == nil {
			wrong = []relay.AnswerRecord{}
		}
		writeJSON(w, http.StatusOK, PlayerHistoryResponse{
			Name:    name,
			Correct: correct,
			Wrong:   wrong,
		})
	}
}

package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kotobaplay/wordrelay/internal/relay"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeEngineError maps engine errors onto HTTP statuses: invalid
// arguments and missing prerequisites are 400, unknown players 404,
// wrong-phase operations 409.
func writeEngineError(w http.ResponseWriter, err error) {
	var verr *relay.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Msg)
	case errors.Is(err, relay.ErrNoCatalog), errors.Is(err, relay.ErrNoPlayers):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, relay.ErrPlayerNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, relay.ErrNoActivePlayer),
		errors.Is(err, relay.ErrNotCurrentPlayer),
		errors.Is(err, relay.ErrGameRunning):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

package server

import "net/http"

// SubmitAnswerRequest is the request body for POST /api/host/game/answer.
type SubmitAnswerRequest struct {
	Text string `json:"text"`
}

// SubmitAnswerResponse reports the adjudication outcome.
type SubmitAnswerResponse struct {
	Correct       bool   `json:"correct"`
	CurrentPlayer string `json:"currentPlayer,omitempty"`
	Running       bool   `json:"running"`
}

// PassResponse reports whether the active player spent a pass.
type PassResponse struct {
	Passed        bool   `json:"passed"`
	CurrentPlayer string `json:"currentPlayer,omitempty"`
}

// GameStatusResponse is returned by the start and stop operations.
type GameStatusResponse struct {
	Running       bool   `json:"running"`
	CurrentPlayer string `json:"currentPlayer,omitempty"`
}

func handleStartGame(console *Console) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := console.StartGame(); err != nil {
			writeEngineError(w, err)
			return
		}
		state := console.State()
		writeJSON(w, http.StatusOK, GameStatusResponse{
			Running:       state.Running,
			CurrentPlayer: state.CurrentPlayer,
		})
	}
}

func handleStopGame(console *Console) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		console.StopGame()
		writeJSON(w, http.StatusOK, GameStatusResponse{Running: false})
	}
}

func handleSubmitAnswer(console *Console) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SubmitAnswerRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		correct, err := console.SubmitAnswer(req.Text)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		state := console.State()
		writeJSON(w, http.StatusOK, SubmitAnswerResponse{
			Correct:       correct,
			CurrentPlayer: state.CurrentPlayer,
			Running:       state.Running,
		})
	}
}

func handlePass(console *Console) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		passed, err := console.Pass()
		if err != nil {
			writeEngineError(w, err)
			return
		}
		state := console.State()
		writeJSON(w, http.StatusOK, PassResponse{
			Passed:        passed,
			CurrentPlayer: state.CurrentPlayer,
		})
	}
}

// handleTyping parks the countdown while the host transcribes an
// answer. The console re-arms the hold on every ping.
func handleTyping(console *Console) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		console.HoldClock()
		w.WriteHeader(http.StatusNoContent)
	}
}

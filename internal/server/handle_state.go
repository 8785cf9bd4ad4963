package server

import "net/http"

// handleState returns the full console state in one document. The
// display page fetches it on load, then follows the event stream.
func handleState(console *Console) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, console.State())
	}
}

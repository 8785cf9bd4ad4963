package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kotobaplay/wordrelay/internal/relay"
)

func handleListAnswerLists(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lists, err := store.ListAnswerLists(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, lists)
	}
}

func handleGetAnswerList(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		detail, err := store.GetAnswerList(r.Context(), chi.URLParam(r, "id"))
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "answer list not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, detail)
	}
}

// handleLoadAnswerList makes a stored list the working catalog.
func handleLoadAnswerList(console *Console, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		detail, err := store.GetAnswerList(r.Context(), chi.URLParam(r, "id"))
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "answer list not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		rows, err := relay.ReadRows(strings.NewReader(detail.Content))
		if err != nil {
			writeError(w, http.StatusBadRequest, "unreadable answer list")
			return
		}

		console.LoadCatalog(rows, detail.ID)
		writeJSON(w, http.StatusOK, catalogResponse(console))
	}
}

func handleDeleteAnswerList(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := store.DeleteAnswerList(r.Context(), chi.URLParam(r, "id"))
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "answer list not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

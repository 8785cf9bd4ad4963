package server

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/kotobaplay/wordrelay/internal/relay"
)

// CatalogUploadRequest carries raw CSV content for the working
// catalog. A non-empty name also stores the list in the library.
type CatalogUploadRequest struct {
	Name    string `json:"name,omitempty"`
	Content string `json:"content"`
}

// CatalogResponse summarizes the working catalog.
type CatalogResponse struct {
	Total     int      `json:"total"`
	Remaining []string `json:"remaining"`
	Answered  []string `json:"answered"`
	ListID    string   `json:"listId,omitempty"`
}

// UnmarkRequest identifies a consumed entry by its display key.
type UnmarkRequest struct {
	Key string `json:"key"`
}

// UnmarkResponse reports the catalog sections after an unmark.
type UnmarkResponse struct {
	Changed   bool     `json:"changed"`
	Remaining []string `json:"remaining"`
	Answered  []string `json:"answered"`
}

func catalogResponse(console *Console) CatalogResponse {
	state := console.State()
	return CatalogResponse{
		Total:     state.CatalogSize,
		Remaining: state.Remaining,
		Answered:  state.Answered,
		ListID:    state.ActiveListID,
	}
}

func handleCatalogUpload(console *Console, store Store, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CatalogUploadRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if strings.TrimSpace(req.Content) == "" {
			writeError(w, http.StatusBadRequest, "content is required")
			return
		}

		rows, err := relay.ReadRows(strings.NewReader(req.Content))
		if err != nil {
			writeError(w, http.StatusBadRequest, "unreadable answer list")
			return
		}
		if relay.ParseRows(rows).Size() == 0 {
			writeError(w, http.StatusBadRequest, "no entries found in answer list")
			return
		}

		listID := ""
		if name := strings.TrimSpace(req.Name); name != "" {
			summary, err := store.SaveAnswerList(r.Context(), name, []byte(req.Content))
			if err != nil {
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}
			listID = summary.ID
			logger.Info("answer list stored",
				"name", name, "size", humanize.Bytes(uint64(len(req.Content))))
		}

		console.LoadCatalog(rows, listID)
		writeJSON(w, http.StatusOK, catalogResponse(console))
	}
}

// handleCatalogExport downloads the working catalog as CSV, answered
// section included, so progress survives outside the server.
func handleCatalogExport(console *Console, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, _, err := console.SaveRows()
		if err != nil {
			writeEngineError(w, err)
			return
		}

		var buf bytes.Buffer
		if err := relay.WriteRows(&buf, rows); err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		logger.Info("catalog exported", "size", humanize.Bytes(uint64(buf.Len())))

		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="answers.csv"`)
		w.WriteHeader(http.StatusOK)
		w.Write(buf.Bytes())
	}
}

// handleCatalogSave writes the working catalog back to the stored list
// it was loaded from.
func handleCatalogSave(console *Console, store Store, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, listID, err := console.SaveRows()
		if err != nil {
			writeEngineError(w, err)
			return
		}
		if listID == "" {
			writeError(w, http.StatusConflict, "no stored list is active")
			return
		}

		var buf bytes.Buffer
		if err := relay.WriteRows(&buf, rows); err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if err := store.UpdateAnswerListContent(r.Context(), listID, buf.Bytes()); err != nil {
			if errors.Is(err, ErrNotFound) {
				writeError(w, http.StatusNotFound, "answer list not found")
				return
			}
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		logger.Info("catalog saved",
			"list_id", listID, "size", humanize.Bytes(uint64(buf.Len())))
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func handleUnmarkAnswer(console *Console) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req UnmarkRequest
		if err := readJSON(r, &req); err != nil || req.Key == "" {
			writeError(w, http.StatusBadRequest, "key is required")
			return
		}

		changed := console.UnmarkAnswer(req.Key)
		state := console.State()
		writeJSON(w, http.StatusOK, UnmarkResponse{
			Changed:   changed,
			Remaining: state.Remaining,
			Answered:  state.Answered,
		})
	}
}

package server

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"
)

func addRoutes(r chi.Router, logger *slog.Logger, console *Console, store Store, passwordHash []byte, spaDir string) {
	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("WordRelay API", "/openapi.json", "/docs"))
	r.Get("/healthz", handleHealth(logger, store))

	// Spectator surface, no auth.
	r.Get("/api/state", handleState(console))
	r.Get("/api/events", handleEvents(console))
	r.Get("/ws/events", handleWSEvents(logger, console))
	r.Get("/api/display/qr", handleDisplayQR(logger))

	// Host session.
	r.Post("/api/host/login", handleHostLogin(store, passwordHash))
	r.Post("/api/host/logout", handleHostLogout(store))
	r.Get("/api/host/me", handleHostMe(store))

	// Roster management.
	r.Route("/api/host/players", func(r chi.Router) {
		r.Use(hostAuthMiddleware(store))
		r.Post("/", handleAddPlayer(console))
		r.Post("/reorder", handleReorderPlayers(console))
		r.Post("/move", handleMovePlayer(console))
		r.Delete("/{name}", handleRemovePlayer(console))
		r.Post("/{name}/forfeit", handleForfeit(console))
		r.Post("/{name}/skip", handleSkip(console))
		r.Get("/{name}/history", handlePlayerHistory(console))
	})

	// Game flow.
	r.Route("/api/host/game", func(r chi.Router) {
		r.Use(hostAuthMiddleware(store))
		r.Post("/start", handleStartGame(console))
		r.Post("/stop", handleStopGame(console))
		r.Post("/answer", handleSubmitAnswer(console))
		r.Post("/pass", handlePass(console))
		r.Post("/typing", handleTyping(console))
	})

	// Working catalog.
	r.Route("/api/host/catalog", func(r chi.Router) {
		r.Use(hostAuthMiddleware(store))
		r.Post("/", handleCatalogUpload(console, store, logger))
		r.Get("/export", handleCatalogExport(console, logger))
		r.Post("/save", handleCatalogSave(console, store, logger))
		r.Post("/unmark", handleUnmarkAnswer(console))
	})

	// Answer-list library.
	r.Route("/api/host/lists", func(r chi.Router) {
		r.Use(hostAuthMiddleware(store))
		r.Get("/", handleListAnswerLists(store))
		r.Get("/{id}", handleGetAnswerList(store))
		r.Post("/{id}/load", handleLoadAnswerList(console, store))
		r.Delete("/{id}", handleDeleteAnswerList(store))
	})

	if spaDir != "" {
		if info, err := os.Stat(spaDir); err == nil && info.IsDir() {
			logger.Info("serving SPA", "dir", spaDir)
			r.NotFound(handleSPA(spaDir))
		}
	}
}

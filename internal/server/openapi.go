package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "WordRelay API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Backend API for the WordRelay quiz console.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// GET /api/state
	getState, _ := r.NewOperationContext(http.MethodGet, "/api/state")
	getState.SetSummary("Game snapshot")
	getState.SetDescription("Returns the full console state for displays and late joiners.")
	getState.AddRespStructure(StateSnapshot{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getState)

	// GET /api/events
	getEvents, _ := r.NewOperationContext(http.MethodGet, "/api/events")
	getEvents.SetSummary("SSE event stream")
	getEvents.SetDescription("Server-Sent Events stream for real-time game updates. Starts with a state snapshot frame.")
	getEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	_ = r.AddOperation(getEvents)

	// GET /ws/events
	getWSEvents, _ := r.NewOperationContext(http.MethodGet, "/ws/events")
	getWSEvents.SetSummary("WebSocket event stream")
	getWSEvents.SetDescription("Upgrades to a WebSocket connection carrying the same events as /api/events.")
	getWSEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusSwitchingProtocols),
		openapi.WithContentType("text/plain"))
	_ = r.AddOperation(getWSEvents)

	// GET /api/display/qr
	getQR, _ := r.NewOperationContext(http.MethodGet, "/api/display/qr")
	getQR.SetSummary("Display QR code")
	getQR.SetDescription("Returns a PNG QR code linking to the spectator display.")
	getQR.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("image/png"))
	_ = r.AddOperation(getQR)

	// POST /api/host/login
	postLogin, _ := r.NewOperationContext(http.MethodPost, "/api/host/login")
	postLogin.SetSummary("Host login")
	postLogin.SetDescription("Authenticate with the host password. Sets host_session cookie.")
	postLogin.AddReqStructure(HostLoginRequest{})
	postLogin.AddRespStructure(HostMeResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postLogin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(postLogin)

	// POST /api/host/logout
	postLogout, _ := r.NewOperationContext(http.MethodPost, "/api/host/logout")
	postLogout.SetSummary("Host logout")
	postLogout.SetDescription("Clears the host session and cookie.")
	postLogout.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(postLogout)

	// GET /api/host/me
	getMe, _ := r.NewOperationContext(http.MethodGet, "/api/host/me")
	getMe.SetSummary("Current host")
	getMe.SetDescription("Reports whether the caller holds a valid host session.")
	getMe.AddRespStructure(HostMeResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getMe.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getMe)

	// POST /api/host/players
	addPlayer, _ := r.NewOperationContext(http.MethodPost, "/api/host/players")
	addPlayer.SetSummary("Add player")
	addPlayer.SetDescription("Adds a player to the rotation. Omitted budgets use the defaults. Requires host_session cookie.")
	addPlayer.AddReqStructure(AddPlayerRequest{})
	addPlayer.AddRespStructure(RosterResponse{}, openapi.WithHTTPStatus(http.StatusCreated))
	addPlayer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	addPlayer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(addPlayer)

	// DELETE /api/host/players/{name}
	removePlayer, _ := r.NewOperationContext(http.MethodDelete, "/api/host/players/{name}")
	removePlayer.SetSummary("Remove player")
	removePlayer.SetDescription("Removes a player from the rotation, mid-game included. Requires host_session cookie.")
	removePlayer.AddRespStructure(RosterResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	removePlayer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	removePlayer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(removePlayer)

	// POST /api/host/players/reorder
	reorderPlayers, _ := r.NewOperationContext(http.MethodPost, "/api/host/players/reorder")
	reorderPlayers.SetSummary("Reorder players")
	reorderPlayers.SetDescription("Replaces the rotation order. Only allowed before the game starts. Requires host_session cookie.")
	reorderPlayers.AddReqStructure(ReorderRequest{})
	reorderPlayers.AddRespStructure(RosterResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	reorderPlayers.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	reorderPlayers.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	reorderPlayers.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(reorderPlayers)

	// POST /api/host/players/move
	movePlayer, _ := r.NewOperationContext(http.MethodPost, "/api/host/players/move")
	movePlayer.SetSummary("Move player")
	movePlayer.SetDescription("Moves one player to a new position. Only allowed before the game starts. Requires host_session cookie.")
	movePlayer.AddReqStructure(MovePlayerRequest{})
	movePlayer.AddRespStructure(RosterResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	movePlayer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	movePlayer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	movePlayer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(movePlayer)

	// POST /api/host/players/{name}/forfeit
	forfeitPlayer, _ := r.NewOperationContext(http.MethodPost, "/api/host/players/{name}/forfeit")
	forfeitPlayer.SetSummary("Forfeit player")
	forfeitPlayer.SetDescription("Eliminates a player who gives up. Requires host_session cookie.")
	forfeitPlayer.AddRespStructure(RosterResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	forfeitPlayer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	forfeitPlayer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(forfeitPlayer)

	// POST /api/host/players/{name}/skip
	skipPlayer, _ := r.NewOperationContext(http.MethodPost, "/api/host/players/{name}/skip")
	skipPlayer.SetSummary("Skip player")
	skipPlayer.SetDescription("Hands the turn past the named player without charging them. Requires host_session cookie.")
	skipPlayer.AddRespStructure(RosterResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	skipPlayer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	skipPlayer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	skipPlayer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(skipPlayer)

	// GET /api/host/players/{name}/history
	playerHistory, _ := r.NewOperationContext(http.MethodGet, "/api/host/players/{name}/history")
	playerHistory.SetSummary("Player history")
	playerHistory.SetDescription("Returns a player's correct and wrong answers in order. Requires host_session cookie.")
	playerHistory.AddRespStructure(PlayerHistoryResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	playerHistory.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	playerHistory.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(playerHistory)

	// POST /api/host/game/start
	startGame, _ := r.NewOperationContext(http.MethodPost, "/api/host/game/start")
	startGame.SetSummary("Start game")
	startGame.SetDescription("Starts the relay with the current roster and catalog. Calling mid-game restarts from the top of the rotation. Requires host_session cookie.")
	startGame.AddRespStructure(GameStatusResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	startGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	startGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(startGame)

	// POST /api/host/game/stop
	stopGame, _ := r.NewOperationContext(http.MethodPost, "/api/host/game/stop")
	stopGame.SetSummary("Stop game")
	stopGame.SetDescription("Stops the relay. Safe to call when nothing is running. Requires host_session cookie.")
	stopGame.AddRespStructure(GameStatusResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	stopGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(stopGame)

	// POST /api/host/game/answer
	submitAnswer, _ := r.NewOperationContext(http.MethodPost, "/api/host/game/answer")
	submitAnswer.SetSummary("Submit answer")
	submitAnswer.SetDescription("Judges the active player's answer and advances the turn on success. Requires host_session cookie.")
	submitAnswer.AddReqStructure(SubmitAnswerRequest{})
	submitAnswer.AddRespStructure(SubmitAnswerResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	submitAnswer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	submitAnswer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	submitAnswer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(submitAnswer)

	// POST /api/host/game/pass
	passTurn, _ := r.NewOperationContext(http.MethodPost, "/api/host/game/pass")
	passTurn.SetSummary("Pass turn")
	passTurn.SetDescription("Spends one of the active player's passes. Reports passed=false when none remain. Requires host_session cookie.")
	passTurn.AddRespStructure(PassResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	passTurn.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	passTurn.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(passTurn)

	// POST /api/host/game/typing
	typing, _ := r.NewOperationContext(http.MethodPost, "/api/host/game/typing")
	typing.SetSummary("Typing hold")
	typing.SetDescription("Parks the countdown briefly while the host transcribes an answer. Requires host_session cookie.")
	typing.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusNoContent))
	typing.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(typing)

	// POST /api/host/catalog
	uploadCatalog, _ := r.NewOperationContext(http.MethodPost, "/api/host/catalog")
	uploadCatalog.SetSummary("Upload catalog")
	uploadCatalog.SetDescription("Loads CSV content as the working catalog. A name also stores it in the library. Requires host_session cookie.")
	uploadCatalog.AddReqStructure(CatalogUploadRequest{})
	uploadCatalog.AddRespStructure(CatalogResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	uploadCatalog.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	uploadCatalog.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(uploadCatalog)

	// GET /api/host/catalog/export
	exportCatalog, _ := r.NewOperationContext(http.MethodGet, "/api/host/catalog/export")
	exportCatalog.SetSummary("Export catalog")
	exportCatalog.SetDescription("Downloads the working catalog as CSV, answered section included. Requires host_session cookie.")
	exportCatalog.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/csv"))
	exportCatalog.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	exportCatalog.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(exportCatalog)

	// POST /api/host/catalog/save
	saveCatalog, _ := r.NewOperationContext(http.MethodPost, "/api/host/catalog/save")
	saveCatalog.SetSummary("Save catalog")
	saveCatalog.SetDescription("Writes the working catalog back to the stored list it was loaded from. Requires host_session cookie.")
	saveCatalog.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	saveCatalog.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	saveCatalog.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	saveCatalog.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(saveCatalog)

	// POST /api/host/catalog/unmark
	unmarkAnswer, _ := r.NewOperationContext(http.MethodPost, "/api/host/catalog/unmark")
	unmarkAnswer.SetSummary("Unmark answer")
	unmarkAnswer.SetDescription("Returns a consumed entry to the remaining pool, e.g. after a mis-click. Requires host_session cookie.")
	unmarkAnswer.AddReqStructure(UnmarkRequest{})
	unmarkAnswer.AddRespStructure(UnmarkResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	unmarkAnswer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	unmarkAnswer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(unmarkAnswer)

	// GET /api/host/lists
	listLists, _ := r.NewOperationContext(http.MethodGet, "/api/host/lists")
	listLists.SetSummary("List stored answer lists")
	listLists.SetDescription("Returns the answer-list library without content. Requires host_session cookie.")
	listLists.AddRespStructure([]AnswerListSummary{}, openapi.WithHTTPStatus(http.StatusOK))
	listLists.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(listLists)

	// GET /api/host/lists/{id}
	getList, _ := r.NewOperationContext(http.MethodGet, "/api/host/lists/{id}")
	getList.SetSummary("Get stored answer list")
	getList.SetDescription("Returns a stored list including its CSV content. Requires host_session cookie.")
	getList.AddRespStructure(AnswerListDetail{}, openapi.WithHTTPStatus(http.StatusOK))
	getList.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	getList.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getList)

	// POST /api/host/lists/{id}/load
	loadList, _ := r.NewOperationContext(http.MethodPost, "/api/host/lists/{id}/load")
	loadList.SetSummary("Load stored answer list")
	loadList.SetDescription("Makes a stored list the working catalog. Requires host_session cookie.")
	loadList.AddRespStructure(CatalogResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	loadList.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	loadList.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	loadList.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(loadList)

	// DELETE /api/host/lists/{id}
	deleteList, _ := r.NewOperationContext(http.MethodDelete, "/api/host/lists/{id}")
	deleteList.SetSummary("Delete stored answer list")
	deleteList.SetDescription("Removes a list from the library. The working catalog is untouched. Requires host_session cookie.")
	deleteList.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	deleteList.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	deleteList.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(deleteList)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}

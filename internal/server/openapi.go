package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/scorekeep/scorekeep/internal/scoring"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "ScoreKeep API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Backend API for the ScoreKeep match scoring service.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(map[string]struct {
		Status string `json:"status"`
	}{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getHealthz)

	// POST /api/matches
	postMatch, _ := r.NewOperationContext(http.MethodPost, "/api/matches")
	postMatch.SetSummary("Create match")
	postMatch.SetDescription("Creates a match from a template or from inline scoring rules.")
	postMatch.AddReqStructure(CreateMatchRequest{})
	postMatch.AddRespStructure(MatchState{}, openapi.WithHTTPStatus(http.StatusCreated))
	postMatch.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postMatch.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(postMatch)

	// GET /api/matches
	listMatches, _ := r.NewOperationContext(http.MethodGet, "/api/matches")
	listMatches.SetSummary("List matches")
	listMatches.SetDescription("Returns summaries of all stored matches, most recent first.")
	listMatches.AddRespStructure([]MatchSummary{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(listMatches)

	// GET /api/matches/{matchID}
	getMatch, _ := r.NewOperationContext(http.MethodGet, "/api/matches/{matchID}")
	getMatch.SetSummary("Get match")
	getMatch.SetDescription("Returns the full state of a match, including sets, games, and score log.")
	getMatch.AddRespStructure(MatchState{}, openapi.WithHTTPStatus(http.StatusOK))
	getMatch.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getMatch)

	// DELETE /api/matches/{matchID}
	deleteMatch, _ := r.NewOperationContext(http.MethodDelete, "/api/matches/{matchID}")
	deleteMatch.SetSummary("Delete match")
	deleteMatch.SetDescription("Deletes a match and its history. Requires admin_session cookie.")
	deleteMatch.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	deleteMatch.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	deleteMatch.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(deleteMatch)

	// POST /api/matches/{matchID}/score
	postScore, _ := r.NewOperationContext(http.MethodPost, "/api/matches/{matchID}/score")
	postScore.SetSummary("Score a point")
	postScore.SetDescription("Awards a point to a team. Ends the game and set automatically when decided.")
	postScore.AddReqStructure(ScoreRequest{})
	postScore.AddRespStructure(MatchState{}, openapi.WithHTTPStatus(http.StatusOK))
	postScore.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postScore.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	postScore.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postScore)

	// POST /api/matches/{matchID}/games
	startGame, _ := r.NewOperationContext(http.MethodPost, "/api/matches/{matchID}/games")
	startGame.SetSummary("Start next game")
	startGame.SetDescription("Starts the next game, opening a new set when the current one is finished.")
	startGame.AddRespStructure(MatchState{}, openapi.WithHTTPStatus(http.StatusOK))
	startGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	startGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(startGame)

	// POST /api/matches/{matchID}/warmup
	startWarmup, _ := r.NewOperationContext(http.MethodPost, "/api/matches/{matchID}/warmup")
	startWarmup.SetSummary("Start warmup")
	startWarmup.SetDescription("Starts the warmup phase. Only allowed before any game has started.")
	startWarmup.AddRespStructure(MatchState{}, openapi.WithHTTPStatus(http.StatusOK))
	startWarmup.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	startWarmup.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(startWarmup)

	// POST /api/matches/{matchID}/warmup/end
	endWarmup, _ := r.NewOperationContext(http.MethodPost, "/api/matches/{matchID}/warmup/end")
	endWarmup.SetSummary("End warmup")
	endWarmup.SetDescription("Ends the warmup phase without starting play.")
	endWarmup.AddRespStructure(MatchState{}, openapi.WithHTTPStatus(http.StatusOK))
	endWarmup.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	endWarmup.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(endWarmup)

	// POST /api/matches/{matchID}/end
	endMatch, _ := r.NewOperationContext(http.MethodPost, "/api/matches/{matchID}/end")
	endMatch.SetSummary("End match")
	endMatch.SetDescription("Ends the match, closing any open game and set with the same timestamp. Idempotent.")
	endMatch.AddRespStructure(MatchState{}, openapi.WithHTTPStatus(http.StatusOK))
	endMatch.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(endMatch)

	// GET /api/matches/{matchID}/events
	getEvents, _ := r.NewOperationContext(http.MethodGet, "/api/matches/{matchID}/events")
	getEvents.SetSummary("SSE event stream")
	getEvents.SetDescription("Server-Sent Events stream of scoring events for a match.")
	getEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	getEvents.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getEvents)

	// GET /ws/matches/{matchID}
	getWatch, _ := r.NewOperationContext(http.MethodGet, "/ws/matches/{matchID}")
	getWatch.SetSummary("WebSocket match feed")
	getWatch.SetDescription("Upgrades to a WebSocket connection that streams full match state snapshots.")
	getWatch.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusSwitchingProtocols),
		openapi.WithContentType("text/plain"))
	_ = r.AddOperation(getWatch)

	// GET /api/templates
	listTemplates, _ := r.NewOperationContext(http.MethodGet, "/api/templates")
	listTemplates.SetSummary("List templates")
	listTemplates.SetDescription("Returns all match templates, most recently used first.")
	listTemplates.AddRespStructure([]scoring.Template{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(listTemplates)

	// GET /api/templates/{templateID}
	getTemplate, _ := r.NewOperationContext(http.MethodGet, "/api/templates/{templateID}")
	getTemplate.SetSummary("Get template")
	getTemplate.AddRespStructure(scoring.Template{}, openapi.WithHTTPStatus(http.StatusOK))
	getTemplate.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getTemplate)

	// POST /api/templates
	createTemplate, _ := r.NewOperationContext(http.MethodPost, "/api/templates")
	createTemplate.SetSummary("Create template")
	createTemplate.SetDescription("Creates a match template. Requires admin_session cookie.")
	createTemplate.AddReqStructure(TemplateRequest{})
	createTemplate.AddRespStructure(scoring.Template{}, openapi.WithHTTPStatus(http.StatusCreated))
	createTemplate.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	createTemplate.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(createTemplate)

	// PUT /api/templates/{templateID}
	updateTemplate, _ := r.NewOperationContext(http.MethodPut, "/api/templates/{templateID}")
	updateTemplate.SetSummary("Update template")
	updateTemplate.SetDescription("Updates a match template. Requires admin_session cookie.")
	updateTemplate.AddReqStructure(TemplateRequest{})
	updateTemplate.AddRespStructure(scoring.Template{}, openapi.WithHTTPStatus(http.StatusOK))
	updateTemplate.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	updateTemplate.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	updateTemplate.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(updateTemplate)

	// DELETE /api/templates/{templateID}
	deleteTemplate, _ := r.NewOperationContext(http.MethodDelete, "/api/templates/{templateID}")
	deleteTemplate.SetSummary("Delete template")
	deleteTemplate.SetDescription("Deletes a match template. Existing matches keep their rule snapshots. Requires admin_session cookie.")
	deleteTemplate.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	deleteTemplate.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	deleteTemplate.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(deleteTemplate)

	// POST /api/admin/login
	postLogin, _ := r.NewOperationContext(http.MethodPost, "/api/admin/login")
	postLogin.SetSummary("Admin login")
	postLogin.SetDescription("Authenticate with email and password. Sets admin_session cookie.")
	postLogin.AddReqStructure(AdminLoginRequest{})
	postLogin.AddRespStructure(AdminMeResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postLogin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(postLogin)

	// POST /api/admin/logout
	postLogout, _ := r.NewOperationContext(http.MethodPost, "/api/admin/logout")
	postLogout.SetSummary("Admin logout")
	postLogout.SetDescription("Clears admin session and cookie.")
	postLogout.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(postLogout)

	// GET /api/admin/me
	getMe, _ := r.NewOperationContext(http.MethodGet, "/api/admin/me")
	getMe.SetSummary("Current admin")
	getMe.SetDescription("Returns the currently authenticated admin. Requires admin_session cookie.")
	getMe.AddRespStructure(AdminMeResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getMe.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getMe)

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

package api

import (
	"encoding/json"
	"net/http"

	"macrosim/internal/archive"
	"macrosim/internal/game"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"
)

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "macrosim API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Realtime multiplayer macroeconomic policy game.")

	health, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	health.SetSummary("Health check")
	health.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(health)

	ws, _ := r.NewOperationContext(http.MethodGet, "/v1/ws")
	ws.SetSummary("Game socket")
	ws.SetDescription("Upgrades to a WebSocket carrying {type, data} JSON envelopes. " +
		"Inbound: createGame, joinGame, startGame, policyAction, pauseGame, resumeGame, requestScores.")
	ws.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusSwitchingProtocols),
		openapi.WithContentType("text/plain"))
	_ = r.AddOperation(ws)

	countries, _ := r.NewOperationContext(http.MethodGet, "/v1/countries")
	countries.SetSummary("Playable countries")
	countries.SetDescription("Starting indicators, passive and active skill of every country.")
	countries.AddRespStructure([]game.CountryProfile{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(countries)

	games, _ := r.NewOperationContext(http.MethodGet, "/v1/games")
	games.SetSummary("List games")
	games.AddRespStructure([]game.GameSummary{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(games)

	state, _ := r.NewOperationContext(http.MethodGet, "/v1/games/{id}")
	state.SetSummary("Game state")
	state.AddRespStructure(game.GameState{}, openapi.WithHTTPStatus(http.StatusOK))
	state.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(state)

	scores, _ := r.NewOperationContext(http.MethodGet, "/v1/games/{id}/scores")
	scores.SetSummary("Current scoreboard")
	scores.AddRespStructure(game.Scores{}, openapi.WithHTTPStatus(http.StatusOK))
	scores.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(scores)

	board, _ := r.NewOperationContext(http.MethodGet, "/v1/leaderboard")
	board.SetSummary("All-time leaderboard")
	board.SetDescription("Best archived result per player and country. Optional ?limit=N (max 100).")
	board.AddRespStructure([]archive.LeaderboardEntry{}, openapi.WithHTTPStatus(http.StatusOK))
	board.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(board)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}

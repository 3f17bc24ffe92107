package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"macrosim/internal/archive"
	"macrosim/internal/game"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/swaggest/swgui/v5emb"
)

type Server struct {
	log     *slog.Logger
	game    *game.Service
	hub     *Hub
	results archive.Store
	mux     *chi.Mux
}

// New wires the HTTP surface. hub must be the Publisher the service was
// built with so room broadcasts reach the sockets opened here.
func New(logger *slog.Logger, gameSvc *game.Service, hub *Hub, results archive.Store) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if results == nil {
		results = archive.NewMemory()
	}
	s := &Server{
		log:     logger,
		game:    gameSvc,
		hub:     hub,
		results: results,
		mux:     chi.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	r := s.mux
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// Long-lived sockets stay outside the request timeout.
	r.Get("/v1/ws", s.handleWS)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, HealthResponse{OK: true, Games: len(s.game.ListGames())})
		})
		r.Get("/openapi.json", handleOpenAPI())
		r.Mount("/docs", v5emb.New("macrosim API", "/openapi.json", "/docs"))

		r.Route("/v1", func(r chi.Router) {
			r.Get("/countries", s.handleCountries)
			r.Get("/games", s.handleGamesList)
			r.Get("/games/{id}", s.handleGameState)
			r.Get("/games/{id}/scores", s.handleGameScores)
			r.Get("/leaderboard", s.handleLeaderboard)
		})
	})
}

type HealthResponse struct {
	OK    bool `json:"ok"`
	Games int  `json:"games"`
}

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleCountries(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, game.Countries())
}

func (s *Server) handleGamesList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.game.ListGames())
}

func (s *Server) handleGameState(w http.ResponseWriter, r *http.Request) {
	state, err := s.game.Game(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleGameScores(w http.ResponseWriter, r *http.Request) {
	scores, err := s.game.Scores(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scores)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := archive.DefaultLeaderboardLimit
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	entries, err := s.results.Leaderboard(r.Context(), limit)
	if err != nil {
		s.log.Error("leaderboard query failed", "err", err)
		writeError(w, http.StatusInternalServerError, "leaderboard unavailable")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, game.ErrGameNotFound), errors.Is(err, game.ErrPlayerNotFound):
		return http.StatusNotFound
	case errors.Is(err, game.ErrNotHost), errors.Is(err, game.ErrWrongCountry):
		return http.StatusForbidden
	case errors.Is(err, game.ErrDuplicateCountry), errors.Is(err, game.ErrNotRunning):
		return http.StatusConflict
	case errors.Is(err, game.ErrCooldown):
		return http.StatusTooManyRequests
	case errors.Is(err, game.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrNoGameIDs):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeDomainError(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err.Error())
}

func decodeJSON(raw []byte, out any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: strings.TrimSpace(message)})
}

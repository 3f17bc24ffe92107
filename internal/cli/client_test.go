package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"macrosim/internal/api"
	"macrosim/internal/archive"
	"macrosim/internal/game"
)

func newTestAPI(t *testing.T) (*Client, *game.Service) {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	hub := api.NewHub(logger)
	svc := game.NewService(nil, hub, logger, game.Options{Random: game.NewRandom(11)})
	store := archive.NewMemory()
	_ = store.SaveResult(context.Background(), game.GameResult{
		GameID:   "4242",
		Quarters: 8,
		Ended:    time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		Scores:   []game.ScoreEntry{{Rank: 1, PlayerName: "Ada", CountryCode: "JPN", Score: game.Score{Total: 540, Grade: "B"}}},
	})
	ts := httptest.NewServer(api.New(logger, svc, hub, store).Handler())
	t.Cleanup(ts.Close)
	return NewClient(ts.URL + "/"), svc
}

func TestClientReadEndpoints(t *testing.T) {
	client, svc := newTestAPI(t)
	ctx := context.Background()

	health, err := client.Health(ctx)
	if err != nil || !health.OK {
		t.Fatalf("health: %+v %v", health, err)
	}

	countries, err := client.Countries(ctx)
	if err != nil {
		t.Fatalf("countries: %v", err)
	}
	if len(countries) != 7 || countries[5].Code != "SAU" {
		t.Fatalf("unexpected countries %+v", countries)
	}

	created, err := svc.CreateGame("p1", "Ada", "BRA")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	games, err := client.Games(ctx)
	if err != nil || len(games) != 1 || games[0].ID != created.GameID {
		t.Fatalf("games: %+v %v", games, err)
	}

	state, err := client.GameState(ctx, created.GameID)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if state.Players[0].CountryCode != "BRA" || state.OilPrice != game.StartingOilPrice {
		t.Fatalf("unexpected state %+v", state)
	}

	scores, err := client.Scores(ctx, created.GameID)
	if err != nil || len(scores.Scores) != 1 {
		t.Fatalf("scores: %+v %v", scores, err)
	}

	board, err := client.Leaderboard(ctx, 3)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(board) != 1 || board[0].PlayerName != "Ada" || board[0].Rank != 1 {
		t.Fatalf("unexpected leaderboard %+v", board)
	}
}

func TestClientSurfacesAPIErrors(t *testing.T) {
	client, _ := newTestAPI(t)

	_, err := client.GameState(context.Background(), "9999")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusNotFound || apiErr.Message != "game 9999 not found" {
		t.Fatalf("unexpected error %+v", apiErr)
	}
	if apiErr.Error() != "api status 404: game 9999 not found" {
		t.Fatalf("unexpected message %q", apiErr.Error())
	}
}

func TestConnPlaysAGame(t *testing.T) {
	client, svc := newTestAPI(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := client.Dial(ctx)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	env, err := conn.Read(ctx)
	if err != nil || env.Type != game.MsgConnected {
		t.Fatalf("expected connected, got %+v %v", env, err)
	}
	var hello game.Connected
	if err := env.Decode(&hello); err != nil {
		t.Fatal(err)
	}

	if err := conn.CreateGame(ctx, "Ada", "saudi arabia"); err != nil {
		t.Fatalf("create: %v", err)
	}
	env, _ = conn.Read(ctx)
	if env.Type != game.MsgError {
		t.Fatalf("country names are not codes, got %s", env.Type)
	}

	if err := conn.CreateGame(ctx, "Ada", "sau"); err != nil {
		t.Fatalf("create: %v", err)
	}
	env, err = conn.Read(ctx)
	if err != nil || env.Type != game.MsgGameCreated {
		t.Fatalf("expected gameCreated, got %+v %v", env, err)
	}
	var created game.GameCreated
	if err := env.Decode(&created); err != nil {
		t.Fatal(err)
	}
	if created.PlayerData.ID != hello.PlayerID {
		t.Fatalf("unexpected player %+v", created.PlayerData)
	}

	if err := conn.StartGame(ctx); err != nil {
		t.Fatal(err)
	}
	if env, _ = conn.Read(ctx); env.Type != game.MsgGameStarted {
		t.Fatalf("expected gameStarted, got %s", env.Type)
	}

	cmd, err := ParseCommand("oil up", "SAU")
	if err != nil {
		t.Fatal(err)
	}
	if err := conn.Act(ctx, cmd.Action); err != nil {
		t.Fatal(err)
	}
	env, err = conn.Read(ctx)
	if err != nil || env.Type != game.MsgGameUpdate {
		t.Fatalf("expected gameUpdate, got %+v %v", env, err)
	}
	var update game.GameUpdate
	if err := env.Decode(&update); err != nil {
		t.Fatal(err)
	}
	if update.OilPrice == game.StartingOilPrice {
		t.Fatalf("oil control should move the price")
	}

	if err := conn.RequestScores(ctx); err != nil {
		t.Fatal(err)
	}
	if env, _ = conn.Read(ctx); env.Type != game.MsgScores {
		t.Fatalf("expected scores, got %s", env.Type)
	}

	state, err := svc.Game(created.GameID)
	if err != nil || !state.Started {
		t.Fatalf("game should be running: %+v %v", state, err)
	}
}

func TestSocketURL(t *testing.T) {
	tests := []struct {
		in, want string
		wantErr  bool
	}{
		{in: "http://localhost:8080", want: "ws://localhost:8080/v1/ws"},
		{in: "https://macro.example.com/", want: "wss://macro.example.com/v1/ws"},
		{in: "ws://10.0.0.2:9000", want: "ws://10.0.0.2:9000/v1/ws"},
		{in: "localhost:8080", wantErr: true},
	}
	for _, tc := range tests {
		got, err := socketURL(tc.in)
		if (err != nil) != tc.wantErr {
			t.Fatalf("%s: unexpected error %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("%s: got %s want %s", tc.in, got, tc.want)
		}
	}
}

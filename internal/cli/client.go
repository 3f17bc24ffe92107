package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"macrosim/internal/api"
	"macrosim/internal/archive"
	"macrosim/internal/game"
)

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api status %d: %s", e.Status, e.Message)
}

func (c *Client) Health(ctx context.Context) (api.HealthResponse, error) {
	var out api.HealthResponse
	err := c.jsonRequest(ctx, http.MethodGet, "/healthz", &out)
	return out, err
}

func (c *Client) Countries(ctx context.Context) ([]game.CountryProfile, error) {
	var out []game.CountryProfile
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/countries", &out)
	return out, err
}

func (c *Client) Games(ctx context.Context) ([]game.GameSummary, error) {
	var out []game.GameSummary
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/games", &out)
	return out, err
}

func (c *Client) GameState(ctx context.Context, gameID string) (game.GameState, error) {
	var out game.GameState
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/games/"+url.PathEscape(gameID), &out)
	return out, err
}

func (c *Client) Scores(ctx context.Context, gameID string) (game.Scores, error) {
	var out game.Scores
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/games/"+url.PathEscape(gameID)+"/scores", &out)
	return out, err
}

func (c *Client) Leaderboard(ctx context.Context, limit int) ([]archive.LeaderboardEntry, error) {
	path := "/v1/leaderboard"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var out []archive.LeaderboardEntry
	err := c.jsonRequest(ctx, http.MethodGet, path, &out)
	return out, err
}

func (c *Client) jsonRequest(ctx context.Context, method, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		msg := strings.TrimSpace(string(raw))
		var body api.ErrorResponse
		if json.Unmarshal(raw, &body) == nil && body.Error != "" {
			msg = body.Error
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

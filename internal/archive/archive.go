package archive

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"macrosim/internal/game"
)

type LeaderboardEntry struct {
	Rank        int       `json:"rank"`
	PlayerName  string    `json:"playerName"`
	CountryCode string    `json:"countryCode"`
	BestTotal   float64   `json:"bestTotal"`
	Grade       string    `json:"grade"`
	Games       int       `json:"games"`
	LastPlayed  time.Time `json:"lastPlayed"`
}

// Store keeps final standings of finished games.
type Store interface {
	game.ResultSink
	Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error)
	Close()
}

const DefaultLeaderboardLimit = 20

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return DefaultLeaderboardLimit
	}
	return limit
}

// Memory is the Store used when no database is configured.
type Memory struct {
	mu      sync.Mutex
	results []game.GameResult
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) SaveResult(_ context.Context, r game.GameResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.results {
		if existing.GameID == r.GameID && existing.Ended.Equal(r.Ended) {
			return nil
		}
	}
	m.results = append(m.results, r)
	return nil
}

func (m *Memory) Leaderboard(_ context.Context, limit int) ([]LeaderboardEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	type key struct{ name, country string }
	byPlayer := map[key]*LeaderboardEntry{}
	for _, r := range m.results {
		for _, s := range r.Scores {
			k := key{strings.ToLower(s.PlayerName), s.CountryCode}
			e, ok := byPlayer[k]
			if !ok {
				e = &LeaderboardEntry{PlayerName: s.PlayerName, CountryCode: s.CountryCode, BestTotal: s.Total}
				byPlayer[k] = e
			}
			e.Games++
			if s.Total > e.BestTotal {
				e.BestTotal = s.Total
			}
			if r.Ended.After(e.LastPlayed) {
				e.LastPlayed = r.Ended
			}
		}
	}

	out := make([]LeaderboardEntry, 0, len(byPlayer))
	for _, e := range byPlayer {
		e.Grade = game.Grade(e.BestTotal)
		out = append(out, *e)
	}
	sortLeaderboard(out)
	if limit = normalizeLimit(limit); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) Close() {}

func sortLeaderboard(out []LeaderboardEntry) {
	sort.Slice(out, func(i, j int) bool {
		if out[i].BestTotal != out[j].BestTotal {
			return out[i].BestTotal > out[j].BestTotal
		}
		if !out[i].LastPlayed.Equal(out[j].LastPlayed) {
			return out[i].LastPlayed.Before(out[j].LastPlayed)
		}
		return out[i].PlayerName < out[j].PlayerName
	})
	for i := range out {
		out[i].Rank = i + 1
	}
}

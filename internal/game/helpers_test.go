package game

import (
	"math"
	"testing"
	"time"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// seqRandom replays vals in a loop.
type seqRandom struct {
	vals []float64
	i    int
}

func (r *seqRandom) Float64() float64 {
	v := r.vals[r.i%len(r.vals)]
	r.i++
	return v
}

// fixed 0.5 gives zero noise, no global events and no oil drift.
func fixed(v float64) *seqRandom { return &seqRandom{vals: []float64{v}} }

func newTestGame(t *testing.T, rng Random, codes ...string) *Game {
	t.Helper()
	host, err := NewPlayer("p-"+codes[0], "host "+codes[0], codes[0])
	if err != nil {
		t.Fatalf("new host: %v", err)
	}
	g := NewGame("4321", host, GameOptions{Random: rng}, t0)
	for _, code := range codes[1:] {
		p, err := NewPlayer("p-"+code, "player "+code, code)
		if err != nil {
			t.Fatalf("new player %s: %v", code, err)
		}
		if err := g.Join(p, t0); err != nil {
			t.Fatalf("join %s: %v", code, err)
		}
	}
	if err := g.Start(host.ID, t0); err != nil {
		t.Fatalf("start: %v", err)
	}
	return g
}

func econ(t *testing.T, g *Game, code string) *CountryEconomy {
	t.Helper()
	p := g.playerByCountry(code)
	if p == nil {
		t.Fatalf("no player for %s", code)
	}
	return p.Economy
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func ptr(v float64) *float64 { return &v }

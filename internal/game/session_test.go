package game

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNewPlayerValidation(t *testing.T) {
	if _, err := NewPlayer("p1", "   ", "USA"); !errors.Is(err, ErrValidation) {
		t.Fatalf("blank name should fail, got %v", err)
	}
	if _, err := NewPlayer("p1", "Ann", "ATL"); !errors.Is(err, ErrValidation) {
		t.Fatalf("unknown country should fail, got %v", err)
	}
	p, err := NewPlayer("p1", strings.Repeat("x", 40), "jpn")
	if err != nil {
		t.Fatalf("new player: %v", err)
	}
	if len(p.Name) != 32 || p.CountryCode != "JPN" || p.CountryName != "Japan" || !p.Connected {
		t.Fatalf("unexpected player %+v", p)
	}
}

func TestJoinRejectsTakenCountry(t *testing.T) {
	host, _ := NewPlayer("h", "Host", "USA")
	g := NewGame("1000", host, GameOptions{Random: fixed(0.5)}, t0)

	dup, _ := NewPlayer("d", "Dup", "USA")
	err := g.Join(dup, t0)
	var dce *DuplicateCountryError
	if !errors.As(err, &dce) || dce.Country != "USA" {
		t.Fatalf("expected duplicate country, got %v", err)
	}
	if len(g.Players()) != 1 {
		t.Fatalf("roster changed after rejected join")
	}

	again, _ := NewPlayer("h", "Host", "JPN")
	if err := g.Join(again, t0); !errors.Is(err, ErrValidation) {
		t.Fatalf("same player id should fail, got %v", err)
	}
}

func TestOnlyHostControlsTheClock(t *testing.T) {
	host, _ := NewPlayer("h", "Host", "USA")
	g := NewGame("1000", host, GameOptions{Random: fixed(0.5)}, t0)
	guest, _ := NewPlayer("g", "Guest", "CHN")
	if err := g.Join(guest, t0); err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := g.Start("g", t0); !errors.Is(err, ErrNotHost) {
		t.Fatalf("guest start should fail, got %v", err)
	}
	if err := g.Start("h", t0); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := g.Start("h", t0); !errors.Is(err, ErrValidation) {
		t.Fatalf("second start should fail, got %v", err)
	}
	if err := g.Pause("g", t0); !errors.Is(err, ErrNotHost) {
		t.Fatalf("guest pause should fail, got %v", err)
	}
	if err := g.Resume("h", t0); !errors.Is(err, ErrValidation) {
		t.Fatalf("resume of running game should fail, got %v", err)
	}
}

func TestAdvanceQuarterReturnsEmptyList(t *testing.T) {
	g := newTestGame(t, fixed(0.99), "USA", "CHN")
	events := g.AdvanceQuarter(t0.Add(time.Second))
	if events == nil || len(events) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", events)
	}
	s := g.Snapshot()
	if s.Quarter != 2 || !s.QuarterStart.Equal(t0.Add(time.Second)) {
		t.Fatalf("unexpected state quarter %d start %v", s.Quarter, s.QuarterStart)
	}
	if last := s.Log[len(s.Log)-1]; last.Message != "Quarter 2 begins" || last.Quarter != 2 {
		t.Fatalf("unexpected last log %+v", last)
	}
	if got := len(econ(t, g, "USA").History.GDPGrowth); got != 2 {
		t.Fatalf("history should grow each quarter, got %d", got)
	}
}

func TestOilPriceStaysInBand(t *testing.T) {
	g := newTestGame(t, fixed(0.99), "USA")
	g.oilPrice = 149
	g.updateOilPrice()
	if g.oilPrice != MaxOilPrice {
		t.Fatalf("oil should cap at %v, got %v", MaxOilPrice, g.oilPrice)
	}

	g.rng = fixed(0)
	g.oilPrice = 31
	g.updateOilPrice()
	if g.oilPrice != MinOilPrice {
		t.Fatalf("oil should floor at %v, got %v", MinOilPrice, g.oilPrice)
	}
}

func TestGlobalEventHitsEveryPlayer(t *testing.T) {
	cat := &Catalog{GlobalEvents: EventPool{
		Good: []EventTemplate{{Name: "Rate cuts abroad", Description: "Cheap money.", Effects: map[string]float64{EffectConfidence: 4}}},
	}}
	host, _ := NewPlayer("h", "Host", "USA")
	g := NewGame("1000", host, GameOptions{Random: fixed(0.1), Catalog: cat}, t0)
	guest, _ := NewPlayer("g", "Guest", "EUR")
	if err := g.Join(guest, t0); err != nil {
		t.Fatalf("join: %v", err)
	}

	g.mu.Lock()
	events := g.triggerEvents()
	g.mu.Unlock()

	if len(events) != 1 || events[0].Type != EventGlobal || events[0].Name != "Rate cuts abroad" {
		t.Fatalf("unexpected events %+v", events)
	}
	if econ(t, g, "USA").Confidence != 69 || econ(t, g, "EUR").Confidence != 66 {
		t.Fatalf("confidence not applied to everyone")
	}
	if s := g.Snapshot(); len(s.Events) != 1 || !strings.Contains(s.Log[len(s.Log)-1].Message, "Rate cuts abroad") {
		t.Fatalf("event not recorded: %+v", s.Events)
	}
}

func TestCountryEventSpillsGlobalEffects(t *testing.T) {
	cat := &Catalog{CountryEvents: map[string]CountryEvents{
		"TWN": {Events: EventPool{Good: []EventTemplate{{
			Name:          "Chip orders surge",
			Effects:       map[string]float64{EffectConfidence: 5},
			GlobalEffects: map[string]float64{EffectConfidence: 1},
		}}}},
	}}
	host, _ := NewPlayer("h", "Host", "TWN")
	// 0.9 skips the global roll; then TWN rolls 0.1 (event, good, index 0); USA rolls 0.9.
	rng := &seqRandom{vals: []float64{0.9, 0.1, 0.1, 0.1, 0.9}}
	g := NewGame("1000", host, GameOptions{Random: rng, Catalog: cat}, t0)
	guest, _ := NewPlayer("g", "Guest", "USA")
	if err := g.Join(guest, t0); err != nil {
		t.Fatalf("join: %v", err)
	}

	g.mu.Lock()
	events := g.triggerEvents()
	g.mu.Unlock()

	if len(events) != 1 || events[0].Country != "TWN" {
		t.Fatalf("unexpected events %+v", events)
	}
	if econ(t, g, "TWN").Confidence != 77 || econ(t, g, "USA").Confidence != 66 {
		t.Fatalf("got TWN %v USA %v", econ(t, g, "TWN").Confidence, econ(t, g, "USA").Confidence)
	}
}

func TestTickAdvancesOnSchedule(t *testing.T) {
	g := newTestGame(t, fixed(0.5), "USA", "JPN")

	res, ok := g.Tick(t0.Add(10 * time.Second))
	if !ok || res.Quarter != nil {
		t.Fatalf("quarter should not advance yet")
	}
	if !approx(res.Realtime.Progress, 1.0/3) || !approx(res.Realtime.RemainingTime, 20) {
		t.Fatalf("progress %v remaining %v", res.Realtime.Progress, res.Realtime.RemainingTime)
	}
	if len(res.Realtime.Players) != 2 || len(res.Realtime.Cooldowns) != 2 {
		t.Fatalf("realtime update should cover every player")
	}

	res, ok = g.Tick(t0.Add(DefaultQuarterDuration))
	if !ok || res.Quarter == nil {
		t.Fatalf("quarter should advance at the boundary")
	}
	if res.Quarter.Quarter != 2 || res.Realtime.Progress != 0 || res.Realtime.RemainingTime != 30 {
		t.Fatalf("unexpected update %+v", res.Realtime)
	}
	if len(res.Quarter.RecentLog) > 3 || len(res.Quarter.FullLog) < len(res.Quarter.RecentLog) {
		t.Fatalf("log windows wrong: recent %d full %d", len(res.Quarter.RecentLog), len(res.Quarter.FullLog))
	}
}

func TestTickIgnoresIdleGames(t *testing.T) {
	host, _ := NewPlayer("h", "Host", "USA")
	g := NewGame("1000", host, GameOptions{Random: fixed(0.5)}, t0)
	if _, ok := g.Tick(t0.Add(time.Minute)); ok {
		t.Fatalf("unstarted game should not tick")
	}
}

func TestPauseFreezesQuarterProgress(t *testing.T) {
	g := newTestGame(t, fixed(0.5), "USA")
	if err := g.Pause("p-USA", t0.Add(10*time.Second)); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if _, ok := g.Tick(t0.Add(40 * time.Second)); ok {
		t.Fatalf("paused game should not tick")
	}
	if _, err := g.Act("p-USA", Action{Type: ActionInterestRate, Value: ptr(3)}, t0.Add(12*time.Second)); err != nil {
		t.Fatalf("actions stay allowed while paused: %v", err)
	}
	if err := g.Resume("p-USA", t0.Add(25*time.Second)); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if s := g.Snapshot(); !s.QuarterStart.Equal(t0.Add(15 * time.Second)) {
		t.Fatalf("quarter start should shift by the pause, got %v", s.QuarterStart)
	}
	res, _ := g.Tick(t0.Add(40 * time.Second))
	if res.Quarter != nil || !approx(res.Realtime.Progress, 25.0/30) {
		t.Fatalf("progress should resume from the pause point, got %v", res.Realtime.Progress)
	}
	if res, _ = g.Tick(t0.Add(45 * time.Second)); res.Quarter == nil {
		t.Fatalf("quarter should advance 30s of running time after start")
	}
}

func TestDisconnectAndIdleSince(t *testing.T) {
	g := newTestGame(t, fixed(0.5), "USA", "CHN")
	if _, idle := g.IdleSince(); idle {
		t.Fatalf("game with connected players is not idle")
	}
	if !g.Disconnect("p-USA", t0.Add(time.Minute)) {
		t.Fatalf("disconnect should report a change")
	}
	if g.Disconnect("p-USA", t0.Add(time.Minute)) {
		t.Fatalf("second disconnect is a no-op")
	}
	if g.Disconnect("ghost", t0) {
		t.Fatalf("unknown player is a no-op")
	}
	g.Disconnect("p-CHN", t0.Add(2*time.Minute))
	since, idle := g.IdleSince()
	if !idle || !since.Equal(t0.Add(2*time.Minute)) {
		t.Fatalf("idle since %v idle=%v", since, idle)
	}
	for _, p := range g.Players() {
		if p.Connected {
			t.Fatalf("%s still connected", p.ID)
		}
	}
}

func TestSnapshotIsIndependent(t *testing.T) {
	g := newTestGame(t, fixed(0.5), "USA")
	s := g.Snapshot()
	s.Players[0].Economy.GDPGrowth = -8
	s.Log[0].Message = "changed"
	if econ(t, g, "USA").GDPGrowth != 2.8 {
		t.Fatalf("snapshot shares economy")
	}
	if g.Snapshot().Log[0].Message == "changed" {
		t.Fatalf("snapshot shares log")
	}
	sum := g.Summary()
	if sum.ID != "4321" || len(sum.Countries) != 1 || !sum.Started {
		t.Fatalf("unexpected summary %+v", sum)
	}
}

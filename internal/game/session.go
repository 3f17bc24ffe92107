package game

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

type LogEntry struct {
	Quarter   int       `json:"quarter"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type Player struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	CountryCode string          `json:"countryCode"`
	CountryName string          `json:"countryName"`
	Connected   bool            `json:"connected"`
	Economy     *CountryEconomy `json:"countryData"`

	leftAt time.Time
}

func NewPlayer(id, name, countryCode string) (*Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("player name is required")
	}
	if len(name) > 32 {
		name = name[:32]
	}
	profile, ok := LookupCountry(countryCode)
	if !ok {
		return nil, invalid("unknown country %q", countryCode)
	}
	econ, err := NewCountryEconomy(profile.Code)
	if err != nil {
		return nil, err
	}
	return &Player{
		ID:          id,
		Name:        name,
		CountryCode: profile.Code,
		CountryName: profile.Name,
		Connected:   true,
		Economy:     econ,
	}, nil
}

type GameOptions struct {
	QuarterDuration time.Duration
	PolicyCooldown  time.Duration
	Catalog         *Catalog
	Random          Random
}

// Game is one room. Every exported method holds the game's mutex for its
// whole duration, so actions and clock ticks never interleave.
type Game struct {
	mu sync.Mutex

	id              string
	hostID          string
	players         []*Player
	quarter         int
	quarterStart    time.Time
	quarterDuration time.Duration
	policyCooldown  time.Duration
	started         bool
	paused          bool
	pausedAt        time.Time
	oilPrice        float64
	log             []LogEntry
	events          []Event

	catalog   *Catalog
	rng       Random
	createdAt time.Time
	now       time.Time
}

func NewGame(id string, host *Player, opts GameOptions, now time.Time) *Game {
	if opts.QuarterDuration <= 0 {
		opts.QuarterDuration = DefaultQuarterDuration
	}
	if opts.PolicyCooldown <= 0 {
		opts.PolicyCooldown = DefaultPolicyCooldown
	}
	if opts.Catalog == nil {
		opts.Catalog = DefaultCatalog()
	}
	if opts.Random == nil {
		opts.Random = NewRandom(NewSeed())
	}
	g := &Game{
		id:              id,
		hostID:          host.ID,
		players:         []*Player{host},
		quarter:         1,
		quarterDuration: opts.QuarterDuration,
		policyCooldown:  opts.PolicyCooldown,
		oilPrice:        StartingOilPrice,
		catalog:         opts.Catalog,
		rng:             opts.Random,
		createdAt:       now,
		now:             now,
	}
	g.addLog(fmt.Sprintf("%s opened game %s as %s", host.Name, id, host.CountryName))
	return g
}

func (g *Game) ID() string { return g.id }

func (g *Game) addLog(msg string) {
	g.log = append(g.log, LogEntry{Quarter: g.quarter, Message: msg, Timestamp: g.now})
}

func (g *Game) player(id string) *Player {
	for _, p := range g.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (g *Game) playerByCountry(code string) *Player {
	for _, p := range g.players {
		if p.CountryCode == code {
			return p
		}
	}
	return nil
}

// Join adds a player. A taken country leaves the roster untouched.
func (g *Game) Join(p *Player, now time.Time) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.now = now
	if g.player(p.ID) != nil {
		return invalid("player already in game %s", g.id)
	}
	if g.playerByCountry(p.CountryCode) != nil {
		return &DuplicateCountryError{Country: p.CountryCode}
	}
	g.players = append(g.players, p)
	g.addLog(fmt.Sprintf("%s joined as %s", p.Name, p.CountryName))
	return nil
}

func (g *Game) Start(requesterID string, now time.Time) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.now = now
	if requesterID != g.hostID {
		return &NotHostError{PlayerID: requesterID}
	}
	if g.started {
		return invalid("game %s already started", g.id)
	}
	g.started = true
	g.quarterStart = now
	g.addLog(fmt.Sprintf("Game started with %d countries", len(g.players)))
	return nil
}

func (g *Game) Pause(requesterID string, now time.Time) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.now = now
	if requesterID != g.hostID {
		return &NotHostError{PlayerID: requesterID}
	}
	if !g.started || g.paused {
		return ErrNotRunning
	}
	g.paused = true
	g.pausedAt = now
	g.addLog("Game paused")
	return nil
}

// Resume shifts the quarter start by the paused span so progress carries on
// where it stopped.
func (g *Game) Resume(requesterID string, now time.Time) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.now = now
	if requesterID != g.hostID {
		return &NotHostError{PlayerID: requesterID}
	}
	if !g.paused {
		return invalid("game %s is not paused", g.id)
	}
	g.paused = false
	g.quarterStart = g.quarterStart.Add(now.Sub(g.pausedAt))
	g.addLog("Game resumed")
	return nil
}

func (g *Game) Disconnect(playerID string, now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.now = now
	p := g.player(playerID)
	if p == nil || !p.Connected {
		return false
	}
	p.Connected = false
	p.leftAt = now
	g.addLog(fmt.Sprintf("%s disconnected", p.Name))
	return true
}

// IdleSince reports when the last connected player left; ok is false while
// anyone is still connected.
func (g *Game) IdleSince() (time.Time, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	var last time.Time
	for _, p := range g.players {
		if p.Connected {
			return time.Time{}, false
		}
		if p.leftAt.After(last) {
			last = p.leftAt
		}
	}
	if last.IsZero() {
		last = g.createdAt
	}
	return last, true
}

type TickResult struct {
	Realtime RealtimeUpdate
	Quarter  *QuarterUpdate
}

// Tick applies real-time drift and advances the quarter once its duration
// has elapsed. ok is false for games that are not running.
func (g *Game) Tick(now time.Time) (TickResult, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.now = now
	if !g.started || g.paused {
		return TickResult{}, false
	}
	for _, p := range g.players {
		p.Economy.Drift(RealtimeDriftRate)
	}
	var res TickResult
	if now.Sub(g.quarterStart) >= g.quarterDuration {
		events := g.advanceQuarter(now)
		q := g.quarterUpdate(events)
		res.Quarter = &q
	}
	res.Realtime = g.realtimeUpdate(now)
	return res, true
}

// AdvanceQuarter always returns a non-nil slice.
func (g *Game) AdvanceQuarter(now time.Time) []Event {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.now = now
	return g.advanceQuarter(now)
}

func (g *Game) advanceQuarter(now time.Time) []Event {
	g.quarter++
	g.quarterStart = now

	g.updateOilPrice()
	events := g.triggerEvents()
	events = append(events, g.checkBubbles()...)
	for _, p := range g.players {
		p.Economy.EndQuarter(g.rng)
	}
	g.runPassives()
	g.addLog(fmt.Sprintf("Quarter %d begins", g.quarter))
	return events
}

func (g *Game) updateOilPrice() {
	g.oilPrice *= 1 + uniform(g.rng, -0.05, 0.05)
	g.oilPrice = clamp(g.oilPrice, MinOilPrice, MaxOilPrice)
}

func (g *Game) triggerEvents() []Event {
	events := []Event{}
	if chance(g.rng, GlobalEventChance) {
		if ev := g.catalog.PickGlobalEvent(g.rng, g.quarter); ev != nil {
			for _, p := range g.players {
				p.Economy.ApplyEffects(ev.Effects)
			}
			g.addLog(fmt.Sprintf("%s: %s", ev.Name, ev.Description))
			g.events = append(g.events, *ev)
			events = append(events, *ev)
		}
	}
	for _, p := range g.players {
		if !chance(g.rng, CountryEventChance) {
			continue
		}
		profile, _ := LookupCountry(p.CountryCode)
		ev := g.catalog.PickCountryEvent(g.rng, profile, g.quarter)
		if ev == nil {
			continue
		}
		p.Economy.ApplyEffects(ev.Effects)
		if len(ev.GlobalEffects) > 0 {
			for _, o := range g.players {
				if o.ID != p.ID {
					o.Economy.ApplyEffects(ev.GlobalEffects)
				}
			}
		}
		g.addLog(fmt.Sprintf("%s - %s: %s", p.CountryName, ev.Name, ev.Description))
		g.events = append(g.events, *ev)
		events = append(events, *ev)
	}
	return events
}

// Snapshot returns a deep copy safe to use after the lock is released.
func (g *Game) Snapshot() GameState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return GameState{
		ID:              g.id,
		HostID:          g.hostID,
		Quarter:         g.quarter,
		QuarterStart:    g.quarterStart,
		QuarterDuration: g.quarterDuration.Seconds(),
		Started:         g.started,
		Paused:          g.paused,
		OilPrice:        g.oilPrice,
		Players:         g.playerViews(),
		Log:             append([]LogEntry(nil), g.log...),
		Events:          append([]Event(nil), g.events...),
	}
}

func (g *Game) Summary() GameSummary {
	g.mu.Lock()
	defer g.mu.Unlock()
	s := GameSummary{
		ID:       g.id,
		Quarter:  g.quarter,
		Started:  g.started,
		Paused:   g.paused,
		OilPrice: g.oilPrice,
	}
	for _, p := range g.players {
		s.Countries = append(s.Countries, p.CountryCode)
	}
	return s
}

func (g *Game) playerViews() []PlayerView {
	out := make([]PlayerView, 0, len(g.players))
	for _, p := range g.players {
		out = append(out, p.view())
	}
	return out
}

func (p *Player) view() PlayerView {
	return PlayerView{
		ID:          p.ID,
		Name:        p.Name,
		CountryCode: p.CountryCode,
		CountryName: p.CountryName,
		Connected:   p.Connected,
		Economy:     p.Economy.Clone(),
	}
}

func (g *Game) recentLog(n int) []LogEntry {
	if len(g.log) < n {
		n = len(g.log)
	}
	return append([]LogEntry(nil), g.log[len(g.log)-n:]...)
}

func (g *Game) realtimeUpdate(now time.Time) RealtimeUpdate {
	elapsed := now.Sub(g.quarterStart)
	progress := clamp(elapsed.Seconds()/g.quarterDuration.Seconds(), 0, 1)
	remaining := g.quarterDuration - elapsed
	if remaining < 0 {
		remaining = 0
	}
	cooldowns := make(map[string]CooldownStatus, len(g.players))
	for _, p := range g.players {
		e := p.Economy
		left := e.Cooldowns.GlobalPolicy.Sub(now)
		if left < 0 {
			left = 0
		}
		cooldowns[p.ID] = CooldownStatus{
			GlobalSeconds:    left.Seconds(),
			ActiveSkill:      e.Cooldowns.ActiveSkill,
			CashDistribution: e.CashDistributionCooldown,
		}
	}
	return RealtimeUpdate{
		Quarter:       g.quarter,
		Progress:      progress,
		RemainingTime: remaining.Seconds(),
		Cooldowns:     cooldowns,
		Players:       g.playerViews(),
		OilPrice:      g.oilPrice,
	}
}

func (g *Game) quarterUpdate(events []Event) QuarterUpdate {
	return QuarterUpdate{
		Quarter:         g.quarter,
		Players:         g.playerViews(),
		RecentLog:       g.recentLog(3),
		FullLog:         append([]LogEntry(nil), g.log...),
		OilPrice:        g.oilPrice,
		TriggeredEvents: events,
	}
}

func (g *Game) gameUpdate() GameUpdate {
	return GameUpdate{
		Players:   g.playerViews(),
		RecentLog: g.recentLog(5),
		OilPrice:  g.oilPrice,
	}
}

// Update returns the broadcast sent after a successful action.
func (g *Game) Update() GameUpdate {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.gameUpdate()
}

func (g *Game) Scores() []ScoreEntry {
	g.mu.Lock()
	defer g.mu.Unlock()
	return Scoreboard(g.players)
}

func (g *Game) Players() []PlayerView {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.playerViews()
}

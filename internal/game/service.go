package game

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"sync"
	"time"
)

//go:generate go tool mockgen -destination=./mocks/publisher_mock.go -package=mocks . Publisher

// Publisher fans room-scoped messages out to every connection in a game.
type Publisher interface {
	Publish(gameID string, msg Message)
}

// ResultSink receives the final standings of games that are swept.
type ResultSink interface {
	SaveResult(ctx context.Context, r GameResult) error
}

type Options struct {
	QuarterDuration time.Duration
	PolicyCooldown  time.Duration
	IdleTTL         time.Duration
	// Random, when set, is shared by every game. Tests use it to script chance.
	Random Random
	Now    func() time.Time
}

type Service struct {
	log       *slog.Logger
	catalog   *Catalog
	publisher Publisher
	opts      Options

	mu    sync.RWMutex
	games map[string]*Game
	rand  Random
}

func NewService(catalog *Catalog, publisher Publisher, logger *slog.Logger, opts Options) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	if publisher == nil {
		publisher = discardPublisher{}
	}
	if opts.QuarterDuration <= 0 {
		opts.QuarterDuration = DefaultQuarterDuration
	}
	if opts.PolicyCooldown <= 0 {
		opts.PolicyCooldown = DefaultPolicyCooldown
	}
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = 10 * time.Minute
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	rng := opts.Random
	if rng == nil {
		rng = NewRandom(NewSeed())
	}
	return &Service{
		log:       logger,
		catalog:   catalog,
		publisher: publisher,
		opts:      opts,
		games:     map[string]*Game{},
		rand:      rng,
	}
}

type discardPublisher struct{}

func (discardPublisher) Publish(string, Message) {}

func (s *Service) nextFloat() float64 {
	return s.rand.Float64()
}

func (s *Service) gameRandom() Random {
	if s.opts.Random != nil {
		return s.opts.Random
	}
	return NewRandom(NewSeed())
}

func (s *Service) Catalog() *Catalog { return s.catalog }

func (s *Service) game(id string) (*Game, error) {
	s.mu.RLock()
	g, ok := s.games[id]
	s.mu.RUnlock()
	if !ok {
		return nil, &GameNotFoundError{GameID: id}
	}
	return g, nil
}

// CreateGame opens a room with the requester as host and first player.
func (s *Service) CreateGame(playerID, name, country string) (GameCreated, error) {
	host, err := NewPlayer(playerID, name, country)
	if err != nil {
		return GameCreated{}, err
	}
	now := s.opts.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	id := ""
	for range maxGameIDAttempts {
		candidate := strconv.Itoa(MinGameID + int(s.nextFloat()*float64(MaxGameID-MinGameID+1)))
		if _, taken := s.games[candidate]; !taken {
			id = candidate
			break
		}
	}
	if id == "" {
		return GameCreated{}, ErrNoGameIDs
	}
	g := NewGame(id, host, GameOptions{
		QuarterDuration: s.opts.QuarterDuration,
		PolicyCooldown:  s.opts.PolicyCooldown,
		Catalog:         s.catalog,
		Random:          s.gameRandom(),
	}, now)
	s.games[id] = g
	s.log.Info("game created", "game_id", id, "host", playerID, "country", host.CountryCode)
	return GameCreated{GameID: id, PlayerData: host.view()}, nil
}

func (s *Service) JoinGame(gameID, playerID, name, country string) (PlayerJoined, error) {
	g, err := s.game(gameID)
	if err != nil {
		return PlayerJoined{}, err
	}
	p, err := NewPlayer(playerID, name, country)
	if err != nil {
		return PlayerJoined{}, err
	}
	if err := g.Join(p, s.opts.Now()); err != nil {
		return PlayerJoined{}, err
	}
	out := PlayerJoined{PlayerData: p.view(), AllPlayers: g.Players()}
	s.publisher.Publish(gameID, Message{Type: MsgPlayerJoined, Data: out})
	s.log.Info("player joined", "game_id", gameID, "player_id", playerID, "country", p.CountryCode)
	return out, nil
}

func (s *Service) StartGame(gameID, playerID string) error {
	g, err := s.game(gameID)
	if err != nil {
		return err
	}
	if err := g.Start(playerID, s.opts.Now()); err != nil {
		return err
	}
	s.publisher.Publish(gameID, Message{Type: MsgGameStarted, Data: struct{}{}})
	s.log.Info("game started", "game_id", gameID)
	return nil
}

func (s *Service) PauseGame(gameID, playerID string) error {
	g, err := s.game(gameID)
	if err != nil {
		return err
	}
	if err := g.Pause(playerID, s.opts.Now()); err != nil {
		return err
	}
	s.publisher.Publish(gameID, Message{Type: MsgGamePaused, Data: struct{}{}})
	return nil
}

func (s *Service) ResumeGame(gameID, playerID string) error {
	g, err := s.game(gameID)
	if err != nil {
		return err
	}
	if err := g.Resume(playerID, s.opts.Now()); err != nil {
		return err
	}
	s.publisher.Publish(gameID, Message{Type: MsgGameResumed, Data: struct{}{}})
	return nil
}

// Act runs a policy action and broadcasts the resulting state to the room.
func (s *Service) Act(gameID, playerID string, a Action) (string, error) {
	g, err := s.game(gameID)
	if err != nil {
		return "", err
	}
	msg, err := g.Act(playerID, a, s.opts.Now())
	if err != nil {
		return "", err
	}
	s.publisher.Publish(gameID, Message{Type: MsgGameUpdate, Data: g.Update()})
	return msg, nil
}

func (s *Service) Disconnect(gameID, playerID string) {
	g, err := s.game(gameID)
	if err != nil {
		return
	}
	if g.Disconnect(playerID, s.opts.Now()) {
		s.publisher.Publish(gameID, Message{Type: MsgPlayerLeft, Data: PlayerLeft{PlayerID: playerID}})
	}
}

func (s *Service) Game(gameID string) (GameState, error) {
	g, err := s.game(gameID)
	if err != nil {
		return GameState{}, err
	}
	return g.Snapshot(), nil
}

func (s *Service) Scores(gameID string) (Scores, error) {
	g, err := s.game(gameID)
	if err != nil {
		return Scores{}, err
	}
	sum := g.Summary()
	return Scores{GameID: gameID, Quarter: sum.Quarter, Scores: g.Scores()}, nil
}

func (s *Service) ListGames() []GameSummary {
	out := make([]GameSummary, 0)
	for _, g := range s.snapshotGames() {
		out = append(out, g.Summary())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Service) snapshotGames() []*Game {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Game, 0, len(s.games))
	for _, g := range s.games {
		out = append(out, g)
	}
	return out
}

// Tick drives every running game once. A failure in one game is logged and
// never stops the others.
func (s *Service) Tick(now time.Time) {
	for _, g := range s.snapshotGames() {
		if err := s.tickGame(g, now); err != nil {
			s.log.Error("game tick failed", "game_id", g.ID(), "err", err)
		}
	}
}

func (s *Service) tickGame(g *Game, now time.Time) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	res, ok := g.Tick(now)
	if !ok {
		return nil
	}
	if res.Quarter != nil {
		s.publisher.Publish(g.ID(), Message{Type: MsgQuarterAdvanced, Data: *res.Quarter})
		s.log.Info("quarter advanced",
			"game_id", g.ID(),
			"quarter", res.Quarter.Quarter,
			"events", len(res.Quarter.TriggeredEvents),
			"oil_price", res.Quarter.OilPrice,
		)
	}
	s.publisher.Publish(g.ID(), Message{Type: MsgRealtimeUpdate, Data: res.Realtime})
	return nil
}

// RunClock ticks every game on a fixed period until ctx is done.
func (s *Service) RunClock(ctx context.Context, every time.Duration) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Tick(s.opts.Now())
		}
	}
}

// Sweep removes games nobody has been connected to for longer than the idle
// TTL and returns their final standings.
func (s *Service) Sweep(now time.Time) []GameResult {
	var results []GameResult
	for _, g := range s.snapshotGames() {
		since, idle := g.IdleSince()
		if !idle || now.Sub(since) < s.opts.IdleTTL {
			continue
		}
		s.mu.Lock()
		delete(s.games, g.ID())
		s.mu.Unlock()

		sum := g.Summary()
		results = append(results, GameResult{
			GameID:   g.ID(),
			Quarters: sum.Quarter,
			Started:  g.createdAt,
			Ended:    now,
			Scores:   g.Scores(),
		})
		s.log.Info("idle game removed", "game_id", g.ID(), "quarter", sum.Quarter)
	}
	return results
}

// RunJanitor sweeps idle games periodically, archiving started ones.
func (s *Service) RunJanitor(ctx context.Context, every time.Duration, sink ResultSink) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			for _, r := range s.Sweep(s.opts.Now()) {
				if sink == nil || r.Quarters <= 1 {
					continue
				}
				if err := sink.SaveResult(ctx, r); err != nil {
					s.log.Error("archive game result failed", "game_id", r.GameID, "err", err)
				}
			}
		}
	}
}

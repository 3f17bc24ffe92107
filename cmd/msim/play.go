package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"time"

	"macrosim/internal/bot"
	cl "macrosim/internal/cli"
	"macrosim/internal/game"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var errQuit = errors.New("quit")

const autopilotGap = 2 * time.Second

func newPlayCmd(apiBase *string) *cobra.Command {
	var (
		gameID    string
		name      string
		country   string
		autopilot bool
	)
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Create or join a game and steer your economy from the terminal",
		Example: "  msim play --country JPN\n" +
			"  msim play --join 4821 --name Ada --country BRA --autopilot",
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := cl.LoadProfile()
			if err != nil {
				printWarn("Could not read saved profile: " + err.Error())
			}
			if name == "" {
				if name, err = promptWithDefault("Player name", profile.PlayerName); err != nil {
					return err
				}
			}
			if country == "" {
				def := profile.CountryCode
				if def == "" {
					def = "USA"
				}
				if country, err = promptChoice("Country", countryCodes(), def); err != nil {
					return err
				}
			}
			country = strings.ToUpper(strings.TrimSpace(country))
			if _, ok := game.LookupCountry(country); !ok {
				return fmt.Errorf("unknown country %q", country)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			dialCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			conn, err := newClient(apiBase).Dial(dialCtx)
			cancel()
			if err != nil {
				return err
			}
			defer conn.Close()

			s := &playSession{conn: conn, country: country, autopilot: autopilot}
			err = s.run(ctx, strings.TrimSpace(gameID), name)

			profile = cl.Profile{PlayerName: name, CountryCode: country, LastGameID: s.currentGame()}
			if saveErr := cl.SaveProfile(profile); saveErr != nil {
				printWarn("Could not save profile: " + saveErr.Error())
			}
			if errors.Is(err, errQuit) || errors.Is(err, context.Canceled) {
				printInfo("Left the game.")
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&gameID, "join", "", "join an existing game id instead of creating one")
	cmd.Flags().StringVar(&name, "name", "", "player name")
	cmd.Flags().StringVar(&country, "country", "", "country code (USA, CHN, JPN, EUR, BRA, SAU, TWN)")
	cmd.Flags().BoolVar(&autopilot, "autopilot", false, "let the built-in advisor pick policies")
	return cmd
}

func countryCodes() []string {
	out := make([]string, 0, 7)
	for _, c := range game.Countries() {
		out = append(out, c.Code)
	}
	return out
}

type playSession struct {
	conn    *cl.Conn
	country string

	mu        sync.Mutex
	autopilot bool
	playerID  string
	gameID    string
	players   []game.PlayerView
	cooldowns map[string]game.CooldownStatus
	lastAuto  time.Time
}

func (s *playSession) run(ctx context.Context, gameID, name string) error {
	env, err := s.conn.Read(ctx)
	if err != nil {
		return err
	}
	var hello game.Connected
	if env.Type != game.MsgConnected || env.Decode(&hello) != nil {
		return fmt.Errorf("unexpected greeting %q", env.Type)
	}
	s.playerID = hello.PlayerID

	if gameID != "" {
		s.gameID = gameID
		err = s.conn.JoinGame(ctx, gameID, name, s.country)
	} else {
		err = s.conn.CreateGame(ctx, name, s.country)
	}
	if err != nil {
		return err
	}
	printInfo("Type help for commands.")

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			lines <- sc.Text()
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.readLoop(gctx) })
	g.Go(func() error { return s.inputLoop(gctx, lines) })
	return g.Wait()
}

func (s *playSession) currentGame() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gameID
}

func (s *playSession) readLoop(ctx context.Context) error {
	for {
		env, err := s.conn.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("connection closed: %w", err)
		}
		if err := s.handle(ctx, env); err != nil {
			return err
		}
	}
}

func (s *playSession) handle(ctx context.Context, env cl.Envelope) error {
	switch env.Type {
	case game.MsgGameCreated:
		var m game.GameCreated
		if err := env.Decode(&m); err != nil {
			return err
		}
		s.mu.Lock()
		s.gameID = m.GameID
		s.players = []game.PlayerView{m.PlayerData}
		s.mu.Unlock()
		printSuccess(fmt.Sprintf("Game %s created. Share the id, then type start.", m.GameID))

	case game.MsgPlayerJoined:
		var m game.PlayerJoined
		if err := env.Decode(&m); err != nil {
			return err
		}
		s.setPlayers(m.AllPlayers)
		printInfo(fmt.Sprintf("%s joined as %s.", m.PlayerData.Name, m.PlayerData.CountryName))
		fmt.Println(renderPlayers(m.AllPlayers))

	case game.MsgPlayerLeft:
		var m game.PlayerLeft
		if err := env.Decode(&m); err != nil {
			return err
		}
		printWarn(fmt.Sprintf("%s left the game.", s.playerName(m.PlayerID)))

	case game.MsgGameStarted:
		printSuccess("Game started. Quarter 1 is underway.")
	case game.MsgGamePaused:
		printWarn("Game paused.")
	case game.MsgGameResumed:
		printSuccess("Game resumed.")

	case game.MsgGameUpdate:
		var m game.GameUpdate
		if err := env.Decode(&m); err != nil {
			return err
		}
		s.setPlayers(m.Players)
		printLog(m.RecentLog)

	case game.MsgRealtimeUpdate:
		var m game.RealtimeUpdate
		if err := env.Decode(&m); err != nil {
			return err
		}
		s.mu.Lock()
		s.players = m.Players
		s.cooldowns = m.Cooldowns
		s.mu.Unlock()
		return s.autoAct(ctx)

	case game.MsgQuarterAdvanced:
		var m game.QuarterUpdate
		if err := env.Decode(&m); err != nil {
			return err
		}
		s.setPlayers(m.Players)
		accent.Printf("\n== QUARTER %d  oil $%.2f ==\n", m.Quarter, m.OilPrice)
		for _, e := range m.TriggeredEvents {
			printWarn(fmt.Sprintf("%s: %s", e.Name, e.Description))
		}
		printLog(m.RecentLog)
		fmt.Println(renderPlayers(m.Players))

	case game.MsgScores:
		var m game.Scores
		if err := env.Decode(&m); err != nil {
			return err
		}
		accent.Printf("\n== SCORES  quarter %d ==\n", m.Quarter)
		fmt.Println(renderScores(m))

	case game.MsgError:
		var m game.ErrorData
		if err := env.Decode(&m); err != nil {
			return err
		}
		printError(m.Message)
	}
	return nil
}

func (s *playSession) inputLoop(ctx context.Context, lines <-chan string) error {
	for {
		var line string
		select {
		case <-ctx.Done():
			return ctx.Err()
		case l, ok := <-lines:
			if !ok {
				return errQuit
			}
			line = l
		}

		cmd, err := cl.ParseCommand(line, s.country)
		if err != nil {
			printWarn(err.Error())
			continue
		}
		switch cmd.Kind {
		case cl.CmdNothing:
		case cl.CmdQuit:
			return errQuit
		case cl.CmdHelp:
			printInfo(cl.Usage)
		case cl.CmdStatus:
			s.mu.Lock()
			players := s.players
			s.mu.Unlock()
			fmt.Println(renderPlayers(players))
		case cl.CmdAuto:
			s.mu.Lock()
			s.autopilot = !s.autopilot
			on := s.autopilot
			s.mu.Unlock()
			printInfo(fmt.Sprintf("Autopilot %s.", onOff(on)))
		case cl.CmdStart:
			err = s.conn.StartGame(ctx)
		case cl.CmdPause:
			err = s.conn.PauseGame(ctx)
		case cl.CmdResume:
			err = s.conn.ResumeGame(ctx)
		case cl.CmdScores:
			err = s.conn.RequestScores(ctx)
		case cl.CmdAct:
			err = s.conn.Act(ctx, cmd.Action)
		}
		if err != nil {
			return err
		}
	}
}

// autoAct lets the advisor move at most once per autopilotGap.
func (s *playSession) autoAct(ctx context.Context) error {
	s.mu.Lock()
	if !s.autopilot || time.Since(s.lastAuto) < autopilotGap {
		s.mu.Unlock()
		return nil
	}
	var me *game.PlayerView
	for i := range s.players {
		if s.players[i].ID == s.playerID {
			me = &s.players[i]
			break
		}
	}
	if me == nil {
		s.mu.Unlock()
		return nil
	}
	ready := s.cooldowns[s.playerID].GlobalSeconds == 0
	a, ok := bot.DecideWithRivals(*me, s.players, ready)
	if ok {
		s.lastAuto = time.Now()
	}
	s.mu.Unlock()

	if !ok {
		return nil
	}
	printInfo(fmt.Sprintf("autopilot: %s", describeAction(a)))
	return s.conn.Act(ctx, a)
}

func (s *playSession) setPlayers(players []game.PlayerView) {
	s.mu.Lock()
	s.players = players
	s.mu.Unlock()
}

func (s *playSession) playerName(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.players {
		if p.ID == id {
			return p.Name
		}
	}
	return "A player"
}

func describeAction(a game.Action) string {
	parts := []string{string(a.Type)}
	if a.Value != nil {
		parts = append(parts, fmt.Sprintf("%.2f", *a.Value))
	}
	for _, s := range []string{a.PolicyType, a.Direction, a.TargetCountry} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

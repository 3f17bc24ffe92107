package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	cl "macrosim/internal/cli"
	"macrosim/internal/config"
	"macrosim/internal/game"

	"github.com/spf13/cobra"
)

func main() {
	cfg := config.LoadCLIFromEnv()
	apiBase := cfg.APIBaseURL

	root := &cobra.Command{
		Use:          "msim",
		Short:        "macrosim terminal client",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&apiBase, "api", apiBase, "API base URL (env MSIM_API_BASE_URL)")

	root.AddCommand(
		newCountriesCmd(&apiBase),
		newGamesCmd(&apiBase),
		newStateCmd(&apiBase),
		newScoresCmd(&apiBase),
		newLeaderboardCmd(&apiBase),
		newCatalogCmd(),
		newProfileCmd(),
		newPlayCmd(&apiBase),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newClient(apiBase *string) *cl.Client {
	return cl.NewClient(strings.TrimRight(strings.TrimSpace(*apiBase), "/"))
}

func newCountriesCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "countries",
		Short: "List playable countries and their starting economies",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			countries, err := newClient(apiBase).Countries(ctx)
			if err != nil {
				return err
			}
			fmt.Println(renderCountries(countries))
			return nil
		},
	}
}

func newGamesCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "games",
		Short: "List games on the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			games, err := newClient(apiBase).Games(ctx)
			if err != nil {
				return err
			}
			if len(games) == 0 {
				printInfo("No games yet. Start one with `msim play`.")
				return nil
			}
			fmt.Println(renderGames(games))
			return nil
		},
	}
}

func newStateCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "state <game_id>",
		Short: "Show a game's economies and recent log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			state, err := newClient(apiBase).GameState(ctx, args[0])
			if err != nil {
				return err
			}
			accent.Printf("\n== GAME %s  quarter %d  %s  oil $%.2f ==\n",
				state.ID, state.Quarter, gameStatus(state.Started, state.Paused), state.OilPrice)
			fmt.Println(renderPlayers(state.Players))
			log := state.Log
			if len(log) > 10 {
				log = log[len(log)-10:]
			}
			printLog(log)
			return nil
		},
	}
}

func newScoresCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "scores <game_id>",
		Short: "Show the live scoreboard of a game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			scores, err := newClient(apiBase).Scores(ctx, args[0])
			if err != nil {
				return err
			}
			accent.Printf("\n== SCORES  game %s  quarter %d ==\n", scores.GameID, scores.Quarter)
			fmt.Println(renderScores(scores))
			return nil
		},
	}
}

func newLeaderboardCmd(apiBase *string) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "All-time best results",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			entries, err := newClient(apiBase).Leaderboard(ctx, limit)
			if err != nil {
				return err
			}
			accent.Println("\n== LEADERBOARD ==")
			if len(entries) == 0 {
				printInfo("No finished games archived yet.")
				return nil
			}
			fmt.Println(renderLeaderboard(entries))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "number of rows (server default when 0)")
	return cmd
}

func newCatalogCmd() *cobra.Command {
	catalog := &cobra.Command{
		Use:   "catalog",
		Short: "Event catalog tools",
	}
	catalog.AddCommand(&cobra.Command{
		Use:   "check <file>",
		Short: "Validate an event catalog document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := game.LoadCatalog(args[0])
			if err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("%s is valid.", args[0]))
			printInfo(fmt.Sprintf("global events: %d good, %d bad", len(c.GlobalEvents.Good), len(c.GlobalEvents.Bad)))
			for _, p := range game.Countries() {
				good, bad := c.CountryEventCounts(p)
				if good+bad == 0 {
					printWarn(fmt.Sprintf("%s: no country events", p.Code))
					continue
				}
				printInfo(fmt.Sprintf("%s: %d good, %d bad", p.Code, good, bad))
			}
			return nil
		},
	})
	catalog.AddCommand(&cobra.Command{
		Use:   "default",
		Short: "Print the built-in fallback catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := game.DefaultCatalog().MarshalIndent()
			if err != nil {
				return err
			}
			fmt.Println(string(raw))
			return nil
		},
	})
	return catalog
}

func newProfileCmd() *cobra.Command {
	profile := &cobra.Command{
		Use:   "profile",
		Short: "Saved player name and country",
	}
	profile.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the saved profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := cl.LoadProfile()
			if err != nil {
				return err
			}
			if p == (cl.Profile{}) {
				printInfo("No saved profile.")
				return nil
			}
			printInfo(fmt.Sprintf("name: %s\ncountry: %s\nlast game: %s", p.PlayerName, p.CountryCode, orDash(p.LastGameID)))
			return nil
		},
	})
	profile.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Forget the saved profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cl.ClearProfile(); err != nil {
				return err
			}
			printSuccess("Profile cleared.")
			return nil
		},
	})
	return profile
}

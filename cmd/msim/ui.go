package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"macrosim/internal/archive"
	"macrosim/internal/game"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/fatih/color"
)

var (
	stdinReader = bufio.NewReader(os.Stdin)
	accent      = color.New(color.FgCyan, color.Bold)
	success     = color.New(color.FgGreen, color.Bold)
	warn        = color.New(color.FgYellow, color.Bold)
	danger      = color.New(color.FgRed, color.Bold)
	neutral     = color.New(color.FgHiWhite)

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	numberStyle = cellStyle.Align(lipgloss.Right)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func printSuccess(msg string) {
	success.Println(msg)
}

func printWarn(msg string) {
	warn.Println(msg)
}

func printError(msg string) {
	danger.Println(msg)
}

func printInfo(msg string) {
	neutral.Println(msg)
}

func promptRequired(label string) (string, error) {
	for {
		fmt.Printf("%s: ", label)
		text, err := stdinReader.ReadString('\n')
		if err != nil {
			return "", err
		}
		text = strings.TrimSpace(text)
		if text != "" {
			return text, nil
		}
		printWarn(label + " is required.")
	}
}

func promptWithDefault(label, defaultValue string) (string, error) {
	if defaultValue == "" {
		return promptRequired(label)
	}
	fmt.Printf("%s [%s]: ", label, defaultValue)
	text, err := stdinReader.ReadString('\n')
	if err != nil {
		return "", err
	}
	if text = strings.TrimSpace(text); text == "" {
		return defaultValue, nil
	}
	return text, nil
}

func promptChoice(label string, options []string, defaultValue string) (string, error) {
	normalized := make(map[string]struct{}, len(options))
	for _, opt := range options {
		normalized[strings.ToLower(strings.TrimSpace(opt))] = struct{}{}
	}
	for {
		fmt.Printf("%s (%s) [%s]: ", label, strings.Join(options, "/"), defaultValue)
		text, err := stdinReader.ReadString('\n')
		if err != nil {
			return "", err
		}
		text = strings.ToLower(strings.TrimSpace(text))
		if text == "" {
			text = strings.ToLower(strings.TrimSpace(defaultValue))
		}
		if _, ok := normalized[text]; ok {
			return text, nil
		}
		printWarn("Invalid option. Please pick one of the listed values.")
	}
}

func newTable(numeric map[int]bool, headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case numeric[col]:
				return numberStyle
			default:
				return cellStyle
			}
		})
}

func renderCountries(countries []game.CountryProfile) string {
	t := newTable(map[int]bool{2: true, 3: true, 4: true, 5: true},
		"CODE", "COUNTRY", "GDP", "CPI", "UNEMP", "RATE", "PASSIVE", "SKILL")
	for _, c := range countries {
		t.Row(
			c.Code,
			c.Name,
			pct(c.Start.GDPGrowth),
			pct(c.Start.Inflation),
			pct(c.Start.Unemployment),
			pct(c.Start.InterestRate),
			orDash(c.PassiveName),
			orDash(string(c.Skill)),
		)
	}
	return t.String()
}

func renderGames(games []game.GameSummary) string {
	t := newTable(map[int]bool{1: true, 3: true}, "GAME", "QUARTER", "STATUS", "OIL", "COUNTRIES")
	for _, g := range games {
		t.Row(
			g.ID,
			strconv.Itoa(g.Quarter),
			gameStatus(g.Started, g.Paused),
			fmt.Sprintf("$%.2f", g.OilPrice),
			strings.Join(g.Countries, " "),
		)
	}
	return t.String()
}

func renderPlayers(players []game.PlayerView) string {
	t := newTable(map[int]bool{2: true, 3: true, 4: true, 5: true, 6: true, 7: true, 8: true},
		"COUNTRY", "PLAYER", "GDP", "CPI", "UNEMP", "CONF", "STOCKS", "RATE", "DEFICIT")
	for _, p := range players {
		e := p.Economy
		name := truncate(p.Name, 16)
		if !p.Connected {
			name += " (away)"
		}
		t.Row(
			p.CountryCode,
			name,
			colorizePercent(e.GDPGrowth),
			pct(e.Inflation),
			pct(e.Unemployment),
			fmt.Sprintf("%.0f", e.Confidence),
			fmt.Sprintf("%.1f", e.StockIndex),
			pct(e.InterestRate),
			pct(e.FiscalDeficit),
		)
	}
	return t.String()
}

func renderScores(s game.Scores) string {
	t := newTable(map[int]bool{0: true, 3: true, 5: true, 6: true, 7: true},
		"#", "PLAYER", "COUNTRY", "TOTAL", "GRADE", "GDP", "CPI", "BONUS")
	for _, e := range s.Scores {
		t.Row(
			strconv.Itoa(e.Rank),
			truncate(e.PlayerName, 18),
			e.CountryCode,
			fmt.Sprintf("%.1f", e.Total),
			gradeColor(e.Grade),
			fmt.Sprintf("%.1f", e.Details.GDPGrowth),
			fmt.Sprintf("%.1f", e.Details.Inflation),
			fmt.Sprintf("%.1f", e.Details.CountryBonus),
		)
	}
	return t.String()
}

func renderLeaderboard(entries []archive.LeaderboardEntry) string {
	t := newTable(map[int]bool{0: true, 3: true, 5: true}, "RANK", "PLAYER", "COUNTRY", "BEST", "GRADE", "GAMES", "LAST PLAYED")
	for _, e := range entries {
		t.Row(
			strconv.Itoa(e.Rank),
			truncate(e.PlayerName, 18),
			e.CountryCode,
			fmt.Sprintf("%.1f", e.BestTotal),
			gradeColor(e.Grade),
			strconv.Itoa(e.Games),
			e.LastPlayed.Local().Format(time.DateOnly),
		)
	}
	return t.String()
}

func printLog(entries []game.LogEntry) {
	for _, e := range entries {
		fmt.Printf("%s %s\n", neutral.Sprintf("[Q%d]", e.Quarter), e.Message)
	}
}

func gameStatus(started, paused bool) string {
	switch {
	case !started:
		return "lobby"
	case paused:
		return "paused"
	default:
		return "running"
	}
}

func gradeColor(g string) string {
	switch g {
	case "S", "A":
		return success.Sprint(g)
	case "D", "F":
		return danger.Sprint(g)
	default:
		return warn.Sprint(g)
	}
}

func colorizePercent(v float64) string {
	text := fmt.Sprintf("%+.2f%%", v)
	switch {
	case v > 0:
		return success.Sprint(text)
	case v < 0:
		return danger.Sprint(text)
	default:
		return neutral.Sprint(text)
	}
}

func pct(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}

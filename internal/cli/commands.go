package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"macrosim/internal/game"
)

type CommandKind string

const (
	CmdAct     CommandKind = "act"
	CmdStart   CommandKind = "start"
	CmdPause   CommandKind = "pause"
	CmdResume  CommandKind = "resume"
	CmdScores  CommandKind = "scores"
	CmdStatus  CommandKind = "status"
	CmdHelp    CommandKind = "help"
	CmdQuit    CommandKind = "quit"
	CmdAuto    CommandKind = "auto"
	CmdNothing CommandKind = ""
)

// Command is one parsed line typed during an interactive game.
type Command struct {
	Kind   CommandKind
	Action game.Action
}

const Usage = `commands:
  start | pause | resume          host controls
  rate <pct>                      set the policy interest rate
  reserve <pct>                   set the reserve requirement
  fiscal up|down                  raise or cut government spending
  qe ease|tighten                 quantitative easing
  cash                            cash distribution to households
  oil up|down                     Saudi oil output (SAU only)
  skill [target]                  your country's active skill
  auto                            toggle the autopilot
  scores | status | help | quit`

var ErrEmptyValue = errors.New("missing value")

// ParseCommand turns a typed line into a command. country is the caller's
// country code; it picks the skill the "skill" verb maps to.
func ParseCommand(line, country string) (Command, error) {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(line)))
	if len(fields) == 0 {
		return Command{Kind: CmdNothing}, nil
	}
	verb, args := fields[0], fields[1:]

	switch verb {
	case "start":
		return Command{Kind: CmdStart}, nil
	case "pause":
		return Command{Kind: CmdPause}, nil
	case "resume":
		return Command{Kind: CmdResume}, nil
	case "scores":
		return Command{Kind: CmdScores}, nil
	case "status":
		return Command{Kind: CmdStatus}, nil
	case "help", "?":
		return Command{Kind: CmdHelp}, nil
	case "quit", "exit", "q":
		return Command{Kind: CmdQuit}, nil
	case "auto", "autopilot":
		return Command{Kind: CmdAuto}, nil

	case "rate":
		v, err := numberArg(verb, args)
		if err != nil {
			return Command{}, err
		}
		return act(game.Action{Type: game.ActionInterestRate, Value: &v}), nil
	case "reserve":
		v, err := numberArg(verb, args)
		if err != nil {
			return Command{}, err
		}
		return act(game.Action{Type: game.ActionReserveRatio, Value: &v}), nil
	case "fiscal":
		dir, err := choiceArg(verb, args, map[string]string{
			"up": game.FiscalIncreaseSpending, "increase": game.FiscalIncreaseSpending,
			"down": game.FiscalDecreaseSpending, "decrease": game.FiscalDecreaseSpending,
		})
		if err != nil {
			return Command{}, err
		}
		return act(game.Action{Type: game.ActionFiscalPolicy, PolicyType: dir}), nil
	case "qe":
		dir, err := choiceArg(verb, args, map[string]string{
			"ease": game.QEEasing, "easing": game.QEEasing,
			"tighten": game.QETightening, "tightening": game.QETightening,
		})
		if err != nil {
			return Command{}, err
		}
		return act(game.Action{Type: game.ActionQuantitativeEasing, Direction: dir}), nil
	case "cash":
		return act(game.Action{Type: game.ActionCashDistribution}), nil
	case "oil":
		dir, err := choiceArg(verb, args, map[string]string{
			"up": game.OilIncrease, "increase": game.OilIncrease,
			"down": game.OilDecrease, "decrease": game.OilDecrease,
		})
		if err != nil {
			return Command{}, err
		}
		return act(game.Action{Type: game.ActionOilControl, Direction: dir}), nil
	case "skill":
		profile, ok := game.LookupCountry(country)
		if !ok || profile.Skill == "" {
			return Command{}, fmt.Errorf("%s has no active skill", strings.ToUpper(country))
		}
		a := game.Action{Type: profile.Skill}
		if len(args) > 0 {
			a.TargetCountry = strings.ToUpper(args[0])
		}
		return act(a), nil
	}
	return Command{}, fmt.Errorf("unknown command %q (try help)", verb)
}

func act(a game.Action) Command {
	return Command{Kind: CmdAct, Action: a}
}

func numberArg(verb string, args []string) (float64, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("%s: %w", verb, ErrEmptyValue)
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(args[0], "%"), 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number", verb, args[0])
	}
	return v, nil
}

func choiceArg(verb string, args []string, options map[string]string) (string, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("%s: %w", verb, ErrEmptyValue)
	}
	v, ok := options[args[0]]
	if !ok {
		return "", fmt.Errorf("%s: unknown option %q", verb, args[0])
	}
	return v, nil
}

package game

import (
	"errors"
	"testing"
)

func TestTypedErrorsMatchSentinels(t *testing.T) {
	tests := []struct {
		err  error
		want error
	}{
		{err: &ConfigError{Path: "x.json", Err: errors.New("boom")}, want: ErrConfig},
		{err: &GameNotFoundError{GameID: "1234"}, want: ErrGameNotFound},
		{err: &DuplicateCountryError{Country: "USA"}, want: ErrDuplicateCountry},
		{err: &NotHostError{PlayerID: "p"}, want: ErrNotHost},
		{err: &WrongCountryError{Action: ActionOilControl, Country: "SAU"}, want: ErrWrongCountry},
		{err: invalid("bad %d", 1), want: ErrValidation},
		{err: &CooldownError{Action: ActionInterestRate, Seconds: 3}, want: ErrCooldown},
	}
	for _, tc := range tests {
		if !errors.Is(tc.err, tc.want) {
			t.Fatalf("%T does not match %v", tc.err, tc.want)
		}
	}
}

func TestCooldownErrorMessage(t *testing.T) {
	seconds := &CooldownError{Action: ActionInterestRate, Seconds: 4}
	if got := seconds.Error(); got != "policy on cooldown for 4 more second(s)" {
		t.Fatalf("got %q", got)
	}
	quarters := &CooldownError{Action: ActionUSATradeWar, Quarters: 2}
	if got := quarters.Error(); got != "usa_trade_war on cooldown for 2 more quarter(s)" {
		t.Fatalf("got %q", got)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		v, lo, hi float64
		want      float64
	}{
		{v: 5, lo: 0, hi: 10, want: 5},
		{v: -1, lo: 0, hi: 10, want: 0},
		{v: 11, lo: 0, hi: 10, want: 10},
	}
	for _, tc := range tests {
		if got := clamp(tc.v, tc.lo, tc.hi); got != tc.want {
			t.Fatalf("clamp(%v,%v,%v)=%v want %v", tc.v, tc.lo, tc.hi, got, tc.want)
		}
	}
}

func TestLookupCountry(t *testing.T) {
	p, ok := LookupCountry(" twn ")
	if !ok || p.Code != "TWN" {
		t.Fatalf("expected TWN, got %+v ok=%v", p, ok)
	}
	if _, ok := LookupCountry("ATL"); ok {
		t.Fatalf("expected unknown country")
	}
	if got := len(Countries()); got != 7 {
		t.Fatalf("expected 7 countries, got %d", got)
	}
}

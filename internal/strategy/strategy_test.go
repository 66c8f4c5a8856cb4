package strategy

import (
	"testing"

	"github.com/driftline/binancefutures/internal/schema"
)

func validTechnical() Strategy {
	return Strategy{
		Kind:       KindTechnical,
		Contract:   schema.Contract{Symbol: "BTCUSDT"},
		Timeframe:  "15m",
		BalancePct: 10,
		TakeProfit: 2,
		StopLoss:   1,
		Technical:  &TechnicalParams{EMAFast: 12, EMASlow: 26, EMASignal: 9},
		Breakout:   nil,
	}
}

func TestValidateTechnical(t *testing.T) {
	s := validTechnical()
	if err := s.Validate(); err != nil {
		t.Fatalf("valid technical strategy rejected: %v", err)
	}
}

func TestValidateKindPairing(t *testing.T) {
	s := validTechnical()
	s.Technical = nil
	if err := s.Validate(); err == nil {
		t.Fatal("technical kind without technical params accepted")
	}

	s = validTechnical()
	s.Breakout = &BreakoutParams{MinVolume: 100}
	if err := s.Validate(); err == nil {
		t.Fatal("technical kind with breakout params accepted")
	}

	s = validTechnical()
	s.Kind = KindBreakout
	s.Technical = nil
	s.Breakout = &BreakoutParams{MinVolume: 100}
	if err := s.Validate(); err != nil {
		t.Fatalf("valid breakout strategy rejected: %v", err)
	}
}

func TestValidateEMAOrdering(t *testing.T) {
	s := validTechnical()
	s.Technical = &TechnicalParams{EMAFast: 26, EMASlow: 12, EMASignal: 9}
	if err := s.Validate(); err == nil {
		t.Fatal("fast ema longer than slow accepted")
	}
}

func TestValidateCommonFields(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Strategy)
	}{
		{"missing symbol", func(s *Strategy) { s.Contract.Symbol = "" }},
		{"missing timeframe", func(s *Strategy) { s.Timeframe = " " }},
		{"zero balance pct", func(s *Strategy) { s.BalancePct = 0 }},
		{"balance pct over 100", func(s *Strategy) { s.BalancePct = 101 }},
		{"zero take profit", func(s *Strategy) { s.TakeProfit = 0 }},
		{"zero stop loss", func(s *Strategy) { s.StopLoss = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := validTechnical()
			tc.mutate(&s)
			if err := s.Validate(); err == nil {
				t.Fatal("invalid strategy accepted")
			}
		})
	}
}

func TestParseKind(t *testing.T) {
	kind, err := ParseKind(" Technical ")
	if err != nil {
		t.Fatalf("ParseKind: %v", err)
	}
	if kind != KindTechnical {
		t.Fatalf("kind = %q, want %q", kind, KindTechnical)
	}
	if _, err := ParseKind("martingale"); err == nil {
		t.Fatal("unknown kind accepted")
	}
}

// Package strategy describes the trading strategies an operator can attach to
// a contract. A strategy is a tagged variant: the Kind selects which parameter
// block applies, and validation enforces the pairing.
package strategy

import (
	"fmt"
	"strings"

	"github.com/driftline/binancefutures/internal/schema"
)

// Kind identifies a strategy family.
type Kind string

const (
	// KindTechnical trades MACD-style EMA crossovers.
	KindTechnical Kind = "technical"
	// KindBreakout trades range breakouts confirmed by volume.
	KindBreakout Kind = "breakout"
)

// ParseKind normalizes a user-supplied strategy kind.
func ParseKind(raw string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(raw))) {
	case KindTechnical:
		return KindTechnical, nil
	case KindBreakout:
		return KindBreakout, nil
	default:
		return "", fmt.Errorf("unknown strategy kind %q", raw)
	}
}

// TechnicalParams tunes the EMA crossover family.
type TechnicalParams struct {
	EMAFast   int
	EMASlow   int
	EMASignal int
}

// BreakoutParams tunes the volume breakout family.
type BreakoutParams struct {
	MinVolume float64
}

// Strategy binds one strategy configuration to one contract. Exactly one of
// Technical and Breakout is set, matching Kind.
type Strategy struct {
	Kind       Kind
	Contract   schema.Contract
	Timeframe  string
	BalancePct float64
	TakeProfit float64
	StopLoss   float64

	Technical *TechnicalParams
	Breakout  *BreakoutParams
}

// Validate checks the common fields and the kind/parameter pairing.
func (s Strategy) Validate() error {
	if s.Contract.Symbol == "" {
		return fmt.Errorf("strategy: contract symbol required")
	}
	if strings.TrimSpace(s.Timeframe) == "" {
		return fmt.Errorf("strategy: timeframe required")
	}
	if s.BalancePct <= 0 || s.BalancePct > 100 {
		return fmt.Errorf("strategy: balance percentage %v outside (0, 100]", s.BalancePct)
	}
	if s.TakeProfit <= 0 {
		return fmt.Errorf("strategy: take profit must be positive")
	}
	if s.StopLoss <= 0 {
		return fmt.Errorf("strategy: stop loss must be positive")
	}

	switch s.Kind {
	case KindTechnical:
		if s.Technical == nil || s.Breakout != nil {
			return fmt.Errorf("strategy: technical kind requires technical params only")
		}
		if s.Technical.EMAFast <= 0 || s.Technical.EMASlow <= 0 || s.Technical.EMASignal <= 0 {
			return fmt.Errorf("strategy: ema periods must be positive")
		}
		if s.Technical.EMAFast >= s.Technical.EMASlow {
			return fmt.Errorf("strategy: fast ema period %d must be shorter than slow %d",
				s.Technical.EMAFast, s.Technical.EMASlow)
		}
	case KindBreakout:
		if s.Breakout == nil || s.Technical != nil {
			return fmt.Errorf("strategy: breakout kind requires breakout params only")
		}
		if s.Breakout.MinVolume < 0 {
			return fmt.Errorf("strategy: minimum volume must not be negative")
		}
	default:
		return fmt.Errorf("strategy: unknown kind %q", s.Kind)
	}
	return nil
}

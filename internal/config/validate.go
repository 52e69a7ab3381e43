package config

import (
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// symbolPattern constrains instrument symbols to short uppercase tickers.
var symbolPattern = regexp.MustCompile(`^[A-Z][A-Z0-9]{0,11}$`)

func (c *Config) validate() error {
	if !c.Game.StartingCash.IsPositive() {
		return fmt.Errorf("config: starting_cash must be positive, got %s", c.Game.StartingCash)
	}
	if c.Game.RoundSeconds < 0 {
		return fmt.Errorf("config: round_seconds must be >= 0, got %d", c.Game.RoundSeconds)
	}

	for severity, magnitude := range c.Game.ShockMagnitudes {
		if !magnitude.IsPositive() || magnitude.GreaterThanOrEqual(one) {
			return fmt.Errorf("config: shock magnitude for %q must be in (0, 1), got %s",
				severity, magnitude)
		}
	}

	seen := make(map[string]bool, len(c.Instruments))
	for _, inst := range c.Instruments {
		if !symbolPattern.MatchString(inst.Symbol) {
			return fmt.Errorf("config: invalid instrument symbol %q", inst.Symbol)
		}
		if seen[inst.Symbol] {
			return fmt.Errorf("config: duplicate instrument symbol %q", inst.Symbol)
		}
		seen[inst.Symbol] = true
		if !inst.Price.IsPositive() {
			return fmt.Errorf("config: instrument %s price must be positive, got %s",
				inst.Symbol, inst.Price)
		}
	}
	return nil
}

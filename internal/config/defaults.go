package config

import "github.com/shopspring/decimal"

// Default values for optional configuration fields.
const (
	DefaultPort            = "8080"
	DefaultReadTimeoutSec  = 10
	DefaultWriteTimeoutSec = 10
	DefaultIdleTimeoutSec  = 60
	DefaultCacheTTLSec     = 30
	DefaultRoundSeconds    = 600
)

// DefaultStartingCash is the virtual capital granted to every participant.
var DefaultStartingCash = Decimal{decimal.NewFromInt(100000)}

// DefaultInstruments seed the market when no instruments are configured.
var DefaultInstruments = []InstrumentConfig{
	{Symbol: "RELIANCE", Name: "Reliance Industries", Price: Decimal{decimal.NewFromInt(1000)}},
	{Symbol: "TCS", Name: "Tata Consultancy Services", Price: Decimal{decimal.NewFromInt(3500)}},
	{Symbol: "HDFCBANK", Name: "HDFC Bank", Price: Decimal{decimal.NewFromInt(1600)}},
	{Symbol: "INFY", Name: "Infosys", Price: Decimal{decimal.NewFromInt(1450)}},
	{Symbol: "ITC", Name: "ITC Limited", Price: Decimal{decimal.NewFromInt(420)}},
	{Symbol: "TATAMOTORS", Name: "Tata Motors", Price: Decimal{decimal.NewFromInt(950)}},
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = DefaultPort
	}
	if c.Server.ReadTimeoutSec == 0 {
		c.Server.ReadTimeoutSec = DefaultReadTimeoutSec
	}
	if c.Server.WriteTimeoutSec == 0 {
		c.Server.WriteTimeoutSec = DefaultWriteTimeoutSec
	}
	if c.Server.IdleTimeoutSec == 0 {
		c.Server.IdleTimeoutSec = DefaultIdleTimeoutSec
	}
	if c.Database.CacheTTLSec == 0 {
		c.Database.CacheTTLSec = DefaultCacheTTLSec
	}
	if c.Game.StartingCash.IsZero() {
		c.Game.StartingCash = DefaultStartingCash
	}
	if c.Game.RoundSeconds == 0 {
		c.Game.RoundSeconds = DefaultRoundSeconds
	}
	if len(c.Instruments) == 0 {
		c.Instruments = DefaultInstruments
	}
}

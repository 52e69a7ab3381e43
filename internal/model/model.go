// Package model defines the core domain types shared across the trading
// engine. All monetary values use shopspring/decimal, never float64.
// Share quantities are whole integers.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade sides.
const (
	SideBuy  = "BUY"
	SideSell = "SELL"
)

// News severities. Each maps to a volatility magnitude in the shock engine.
const (
	SeverityMild     = "mild"
	SeverityModerate = "moderate"
	SeveritySevere   = "severe"
)

// Instrument is a tradable synthetic stock. Created at market initialization,
// never deleted during a session. Price is mutated only by the shock engine
// or an administrative direct-set.
type Instrument struct {
	Symbol    string          `json:"symbol" db:"symbol"`
	Name      string          `json:"name" db:"name"`
	Price     decimal.Decimal `json:"price" db:"price"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// Account is a participant's cash and share-holdings state. Holdings never
// store zero-quantity entries. Mutated only through the ledger's trade
// protocol; created lazily on first trade with the configured starting
// capital.
type Account struct {
	ID          string           `json:"id" db:"id"`
	DisplayName string           `json:"display_name" db:"display_name"`
	Cash        decimal.Decimal  `json:"cash" db:"cash"`
	Holdings    map[string]int64 `json:"holdings"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
}

// Clone returns a deep copy. Holdings maps are shared state otherwise.
func (a *Account) Clone() *Account {
	cp := *a
	cp.Holdings = make(map[string]int64, len(a.Holdings))
	for sym, qty := range a.Holdings {
		cp.Holdings[sym] = qty
	}
	return &cp
}

// Trade is an immutable record of an executed trade. Once created, these
// are never modified or deleted.
type Trade struct {
	ID        string          `json:"id" db:"id"`
	AccountID string          `json:"account_id" db:"account_id"`
	Round     int             `json:"round" db:"round"`
	Symbol    string          `json:"symbol" db:"symbol"`
	Side      string          `json:"side" db:"side"` // "BUY" or "SELL"
	Quantity  int64           `json:"quantity" db:"quantity"`
	Price     decimal.Decimal `json:"price" db:"price"`           // unit price at execution
	Notional  decimal.Decimal `json:"notional" db:"notional"`     // quantity × price
	CashDelta decimal.Decimal `json:"cash_delta" db:"cash_delta"` // −notional for BUY, +notional for SELL
	Timestamp time.Time       `json:"timestamp" db:"timestamp"`
}

// NewsEvent is an administrator-published market shock. Immutable once
// published. Direction is chosen once per event and applied market-wide.
type NewsEvent struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Severity  string    `json:"severity"`
	Direction int       `json:"direction"` // +1 or -1
	Timestamp time.Time `json:"timestamp"`
}

// LeaderboardEntry is a derived ranking row. Recomputed from Account and
// Instrument state on every read; never persisted as a source of truth.
type LeaderboardEntry struct {
	AccountID      string          `json:"account_id"`
	DisplayName    string          `json:"display_name"`
	PortfolioValue decimal.Decimal `json:"portfolio_value"`
	Rank           int             `json:"rank"`
	Gain           decimal.Decimal `json:"gain"` // vs. starting capital
}

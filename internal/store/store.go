// Package store defines the persistence interface for the trading engine.
// Implementations include PostgreSQL (source of truth), Redis (read-through
// cache), and in-memory (for testing and small events).
package store

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/krishgupta2521/FIC--sub000/internal/model"
)

// ErrNotFound is returned when a requested instrument or account does not
// exist. Callers distinguish it from transport failures with errors.Is.
var ErrNotFound = errors.New("store: not found")

// Store is the persistence interface. Three durable collections:
// instruments (symbol → price), accounts (id → {cash, holdings}), and the
// append-only trade history.
type Store interface {
	// --- Instruments ---

	// CreateInstrument persists a new instrument at market initialization.
	CreateInstrument(ctx context.Context, inst *model.Instrument) error

	// GetInstrument retrieves an instrument by symbol.
	GetInstrument(ctx context.Context, symbol string) (*model.Instrument, error)

	// ListInstruments returns all instruments.
	ListInstruments(ctx context.Context) ([]model.Instrument, error)

	// UpdatePrice replaces one instrument's price. Per-symbol all-or-nothing;
	// no cross-symbol atomicity is offered or required.
	UpdatePrice(ctx context.Context, symbol string, price decimal.Decimal) error

	// --- Accounts ---

	// GetAccount retrieves an account by participant id.
	GetAccount(ctx context.Context, id string) (*model.Account, error)

	// SaveAccount inserts or replaces an account's full state.
	SaveAccount(ctx context.Context, acct *model.Account) error

	// RecordTrade persists the account's post-trade state and appends the
	// trade record as one atomic operation. Either both are visible
	// afterwards or neither is.
	RecordTrade(ctx context.Context, acct *model.Account, trade *model.Trade) error

	// ListAccounts returns all accounts.
	ListAccounts(ctx context.Context) ([]model.Account, error)

	// --- Immutable trade history ---

	// InsertTrade appends an immutable trade record.
	InsertTrade(ctx context.Context, trade *model.Trade) error

	// TradesByAccount returns all trades for an account in execution order.
	TradesByAccount(ctx context.Context, accountID string) ([]model.Trade, error)

	// ListTrades returns all trades in execution order.
	ListTrades(ctx context.Context) ([]model.Trade, error)
}

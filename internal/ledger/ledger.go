// Package ledger implements the account ledger, the core state machine of
// the trading engine. It is the only mutation path for participant cash and
// holdings, and guarantees that a trade is either fully applied or not
// applied at all.
//
// Concurrency control is per-account: a mutex per account id serializes
// read-modify-write cycles on that account's {cash, holdings}, while trades
// on different accounts proceed fully in parallel. The instrument price is
// read exactly once per attempt and used consistently through validation
// and application, so a concurrent market shock cannot split a trade across
// two prices.
//
// All monetary values use shopspring/decimal, never float64.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/krishgupta2521/FIC--sub000/internal/model"
	"github.com/krishgupta2521/FIC--sub000/internal/store"
)

var (
	// ErrMarketFrozen is returned when the round controller has frozen
	// trading. Checked before any price or account read.
	ErrMarketFrozen = errors.New("ledger: market is frozen")

	// ErrInstrumentUnavailable is returned when the instrument is unknown
	// or its price is not a positive number.
	ErrInstrumentUnavailable = errors.New("ledger: instrument unavailable")

	// ErrInvalidQuantity is returned when the requested quantity is not a
	// positive integer after truncation.
	ErrInvalidQuantity = errors.New("ledger: quantity must be a positive integer")

	// ErrInsufficientCash is returned when a BUY would overdraw the account.
	ErrInsufficientCash = errors.New("ledger: insufficient cash")

	// ErrInsufficientShares is returned when a SELL exceeds the owned quantity.
	ErrInsufficientShares = errors.New("ledger: insufficient shares")

	// ErrAccountNotFound is returned by read paths for accounts that have
	// never traded. ApplyTrade never returns it; accounts are created
	// lazily with the starting capital.
	ErrAccountNotFound = errors.New("ledger: account not found")
)

// TradeRequest carries one trade attempt. Round and Frozen are injected by
// the caller per call (the round controller is an external collaborator);
// the ledger never reads ambient round state mid-transaction.
type TradeRequest struct {
	AccountID   string
	DisplayName string
	Symbol      string
	Side        string // model.SideBuy or model.SideSell
	Quantity    decimal.Decimal
	Round       int
	Frozen      bool
}

// Confirmation is returned from a successfully applied trade.
type Confirmation struct {
	TradeID   string          `json:"trade_id"`
	AccountID string          `json:"account_id"`
	Symbol    string          `json:"symbol"`
	Side      string          `json:"side"`
	Quantity  int64           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Notional  decimal.Decimal `json:"notional"`
	CashDelta decimal.Decimal `json:"cash_delta"`
	Cash      decimal.Decimal `json:"cash"` // balance after the trade
	Round     int             `json:"round"`
}

// Position is one holding marked to the current price.
type Position struct {
	Symbol   string          `json:"symbol"`
	Quantity int64           `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Value    decimal.Decimal `json:"value"`
}

// Portfolio is an account snapshot with mark-to-market valuation.
type Portfolio struct {
	AccountID      string          `json:"account_id"`
	DisplayName    string          `json:"display_name"`
	Cash           decimal.Decimal `json:"cash"`
	Positions      []Position      `json:"positions"`
	PortfolioValue decimal.Decimal `json:"portfolio_value"`
	Gain           decimal.Decimal `json:"gain"`
}

// Ledger owns the trade-application protocol over a Store.
type Ledger struct {
	store        store.Store
	startingCash decimal.Decimal

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a ledger. startingCash is the capital granted to each account
// on first observation.
func New(st store.Store, startingCash decimal.Decimal) *Ledger {
	return &Ledger{
		store:        st,
		startingCash: startingCash,
		locks:        make(map[string]*sync.Mutex),
	}
}

// StartingCash returns the configured starting capital.
func (l *Ledger) StartingCash() decimal.Decimal {
	return l.startingCash
}

// lockFor returns the mutex serializing mutations of one account.
func (l *Ledger) lockFor(accountID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.locks[accountID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[accountID] = m
	}
	return m
}

// ApplyTrade executes one trade attempt. On success the account mutation and
// the appended trade record are the only state changes; on any failure no
// state changes at all.
func (l *Ledger) ApplyTrade(ctx context.Context, req TradeRequest) (*Confirmation, error) {
	if req.Frozen {
		return nil, ErrMarketFrozen
	}

	if req.Side != model.SideBuy && req.Side != model.SideSell {
		return nil, fmt.Errorf("ledger: unknown side %q", req.Side)
	}

	// Single price read per attempt. The price used for validation is the
	// price used for application.
	inst, err := l.store.GetInstrument(ctx, req.Symbol)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrInstrumentUnavailable, req.Symbol)
		}
		return nil, fmt.Errorf("ledger: price lookup: %w", err)
	}
	price := inst.Price
	if !price.IsPositive() {
		return nil, fmt.Errorf("%w: %s has price %s", ErrInstrumentUnavailable, req.Symbol, price)
	}

	// Truncate to whole shares; anything below 1 is rejected.
	quantity := req.Quantity.IntPart()
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	notional := price.Mul(decimal.NewFromInt(quantity))

	lock := l.lockFor(req.AccountID)
	lock.Lock()
	defer lock.Unlock()

	acct, err := l.loadOrCreate(ctx, req.AccountID, req.DisplayName)
	if err != nil {
		return nil, err
	}

	var cashDelta decimal.Decimal
	switch req.Side {
	case model.SideBuy:
		if acct.Cash.LessThan(notional) {
			return nil, fmt.Errorf("%w: have %s, need %s",
				ErrInsufficientCash, acct.Cash, notional)
		}
		acct.Cash = acct.Cash.Sub(notional)
		acct.Holdings[req.Symbol] += quantity
		cashDelta = notional.Neg()

	case model.SideSell:
		owned := acct.Holdings[req.Symbol]
		if owned < quantity {
			return nil, fmt.Errorf("%w: own %d, selling %d",
				ErrInsufficientShares, owned, quantity)
		}
		if owned == quantity {
			delete(acct.Holdings, req.Symbol)
		} else {
			acct.Holdings[req.Symbol] = owned - quantity
		}
		acct.Cash = acct.Cash.Add(notional)
		cashDelta = notional
	}

	trade := &model.Trade{
		ID:        uuid.New().String(),
		AccountID: req.AccountID,
		Round:     req.Round,
		Symbol:    req.Symbol,
		Side:      req.Side,
		Quantity:  quantity,
		Price:     price,
		Notional:  notional,
		CashDelta: cashDelta,
		Timestamp: time.Now().UTC(),
	}

	// Account mutation and trade record commit together or not at all.
	if err := l.store.RecordTrade(ctx, acct, trade); err != nil {
		return nil, fmt.Errorf("ledger: record trade: %w", err)
	}

	return &Confirmation{
		TradeID:   trade.ID,
		AccountID: req.AccountID,
		Symbol:    req.Symbol,
		Side:      req.Side,
		Quantity:  quantity,
		Price:     price,
		Notional:  notional,
		CashDelta: cashDelta,
		Cash:      acct.Cash,
		Round:     req.Round,
	}, nil
}

// loadOrCreate fetches the account under the caller-held account lock,
// lazily creating it with the starting capital.
func (l *Ledger) loadOrCreate(ctx context.Context, id, displayName string) (*model.Account, error) {
	acct, err := l.store.GetAccount(ctx, id)
	if err == nil {
		if displayName != "" && acct.DisplayName != displayName {
			acct.DisplayName = displayName
		}
		return acct, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("ledger: load account: %w", err)
	}

	if displayName == "" {
		displayName = id
	}
	return &model.Account{
		ID:          id,
		DisplayName: displayName,
		Cash:        l.startingCash,
		Holdings:    make(map[string]int64),
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// GetPortfolio returns the account's cash and holdings marked to current
// prices. Missing prices value the holding at zero, matching the leaderboard.
func (l *Ledger) GetPortfolio(ctx context.Context, accountID string) (*Portfolio, error) {
	acct, err := l.store.GetAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, accountID)
		}
		return nil, err
	}

	total := acct.Cash
	positions := make([]Position, 0, len(acct.Holdings))
	for symbol, qty := range acct.Holdings {
		pos := Position{Symbol: symbol, Quantity: qty}
		if inst, err := l.store.GetInstrument(ctx, symbol); err == nil {
			pos.Price = inst.Price
			pos.Value = inst.Price.Mul(decimal.NewFromInt(qty))
		}
		total = total.Add(pos.Value)
		positions = append(positions, pos)
	}
	sort.Slice(positions, func(i, j int) bool { return positions[i].Symbol < positions[j].Symbol })

	return &Portfolio{
		AccountID:      acct.ID,
		DisplayName:    acct.DisplayName,
		Cash:           acct.Cash,
		Positions:      positions,
		PortfolioValue: total,
		Gain:           total.Sub(l.startingCash),
	}, nil
}

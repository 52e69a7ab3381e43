package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/krishgupta2521/FIC--sub000/internal/model"
)

// MemoryStore implements Store with in-memory maps. Used for testing and
// single-evening events where durability across restarts is not needed.
type MemoryStore struct {
	mu          sync.RWMutex
	instruments map[string]*model.Instrument
	accounts    map[string]*model.Account
	trades      []model.Trade
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		instruments: make(map[string]*model.Instrument),
		accounts:    make(map[string]*model.Account),
	}
}

func (s *MemoryStore) CreateInstrument(_ context.Context, inst *model.Instrument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.instruments[inst.Symbol]; ok {
		return fmt.Errorf("instrument %s already exists", inst.Symbol)
	}

	// Store a copy to avoid external mutation.
	cp := *inst
	s.instruments[inst.Symbol] = &cp
	return nil
}

func (s *MemoryStore) GetInstrument(_ context.Context, symbol string) (*model.Instrument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inst, ok := s.instruments[symbol]
	if !ok {
		return nil, fmt.Errorf("instrument %s: %w", symbol, ErrNotFound)
	}
	cp := *inst
	return &cp, nil
}

func (s *MemoryStore) ListInstruments(_ context.Context) ([]model.Instrument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	instruments := make([]model.Instrument, 0, len(s.instruments))
	for _, inst := range s.instruments {
		instruments = append(instruments, *inst)
	}
	return instruments, nil
}

func (s *MemoryStore) UpdatePrice(_ context.Context, symbol string, price decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inst, ok := s.instruments[symbol]
	if !ok {
		return fmt.Errorf("instrument %s: %w", symbol, ErrNotFound)
	}
	inst.Price = price
	return nil
}

func (s *MemoryStore) GetAccount(_ context.Context, id string) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acct, ok := s.accounts[id]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", id, ErrNotFound)
	}
	return acct.Clone(), nil
}

func (s *MemoryStore) SaveAccount(_ context.Context, acct *model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts[acct.ID] = acct.Clone()
	return nil
}

// RecordTrade applies the account state and the trade record under one lock
// acquisition, so no reader observes one without the other.
func (s *MemoryStore) RecordTrade(_ context.Context, acct *model.Account, trade *model.Trade) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts[acct.ID] = acct.Clone()
	s.trades = append(s.trades, *trade)
	return nil
}

func (s *MemoryStore) ListAccounts(_ context.Context) ([]model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accounts := make([]model.Account, 0, len(s.accounts))
	for _, acct := range s.accounts {
		accounts = append(accounts, *acct.Clone())
	}
	return accounts, nil
}

func (s *MemoryStore) InsertTrade(_ context.Context, trade *model.Trade) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.trades = append(s.trades, *trade)
	return nil
}

func (s *MemoryStore) TradesByAccount(_ context.Context, accountID string) ([]model.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []model.Trade
	for _, t := range s.trades {
		if t.AccountID == accountID {
			result = append(result, t)
		}
	}
	return result, nil
}

func (s *MemoryStore) ListTrades(_ context.Context) ([]model.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	trades := make([]model.Trade, len(s.trades))
	copy(trades, s.trades)
	return trades, nil
}

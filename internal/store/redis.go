package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/krishgupta2521/FIC--sub000/internal/model"
)

// CachedStore wraps a primary Store (PostgreSQL) with a Redis read-through
// cache for instruments and accounts. Writes go to the primary store and
// invalidate the cache; reads check Redis first then fall back to the
// primary. Trade history is never cached; it is append-only and read in
// bulk.
type CachedStore struct {
	primary Store
	rdb     RedisClient
	ttl     time.Duration
}

// RedisClient is the subset of redis.Cmdable the cache uses. *redis.Client
// satisfies it; tests substitute an in-memory fake.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// NewCachedStore creates a cached wrapper around a primary store.
func NewCachedStore(primary Store, rdb RedisClient, ttl time.Duration) *CachedStore {
	return &CachedStore{
		primary: primary,
		rdb:     rdb,
		ttl:     ttl,
	}
}

// --- Write-through (write to primary, invalidate cache) ---

func (s *CachedStore) CreateInstrument(ctx context.Context, inst *model.Instrument) error {
	if err := s.primary.CreateInstrument(ctx, inst); err != nil {
		return err
	}
	s.cacheInstrument(ctx, inst)
	return nil
}

func (s *CachedStore) UpdatePrice(ctx context.Context, symbol string, price decimal.Decimal) error {
	if err := s.primary.UpdatePrice(ctx, symbol, price); err != nil {
		return err
	}
	// Invalidate; next read re-populates with the new price.
	s.rdb.Del(ctx, instrumentKey(symbol))
	return nil
}

func (s *CachedStore) SaveAccount(ctx context.Context, acct *model.Account) error {
	if err := s.primary.SaveAccount(ctx, acct); err != nil {
		return err
	}
	s.rdb.Del(ctx, accountKey(acct.ID))
	return nil
}

func (s *CachedStore) RecordTrade(ctx context.Context, acct *model.Account, trade *model.Trade) error {
	if err := s.primary.RecordTrade(ctx, acct, trade); err != nil {
		return err
	}
	s.rdb.Del(ctx, accountKey(acct.ID))
	return nil
}

func (s *CachedStore) InsertTrade(ctx context.Context, trade *model.Trade) error {
	return s.primary.InsertTrade(ctx, trade)
}

// --- Read-through (check cache first) ---

func (s *CachedStore) GetInstrument(ctx context.Context, symbol string) (*model.Instrument, error) {
	data, err := s.rdb.Get(ctx, instrumentKey(symbol)).Bytes()
	if err == nil {
		var inst model.Instrument
		if json.Unmarshal(data, &inst) == nil {
			return &inst, nil
		}
	}

	inst, err := s.primary.GetInstrument(ctx, symbol)
	if err != nil {
		return nil, err
	}

	s.cacheInstrument(ctx, inst)
	return inst, nil
}

func (s *CachedStore) GetAccount(ctx context.Context, id string) (*model.Account, error) {
	data, err := s.rdb.Get(ctx, accountKey(id)).Bytes()
	if err == nil {
		var acct model.Account
		if json.Unmarshal(data, &acct) == nil {
			if acct.Holdings == nil {
				acct.Holdings = make(map[string]int64)
			}
			return &acct, nil
		}
	}

	acct, err := s.primary.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(acct); err == nil {
		s.rdb.Set(ctx, accountKey(id), data, s.ttl)
	}
	return acct, nil
}

// --- Passthrough (not cached) ---

func (s *CachedStore) ListInstruments(ctx context.Context) ([]model.Instrument, error) {
	return s.primary.ListInstruments(ctx)
}

func (s *CachedStore) ListAccounts(ctx context.Context) ([]model.Account, error) {
	return s.primary.ListAccounts(ctx)
}

func (s *CachedStore) TradesByAccount(ctx context.Context, accountID string) ([]model.Trade, error) {
	return s.primary.TradesByAccount(ctx, accountID)
}

func (s *CachedStore) ListTrades(ctx context.Context) ([]model.Trade, error) {
	return s.primary.ListTrades(ctx)
}

// --- Cache helpers ---

func (s *CachedStore) cacheInstrument(ctx context.Context, inst *model.Instrument) {
	if data, err := json.Marshal(inst); err == nil {
		s.rdb.Set(ctx, instrumentKey(inst.Symbol), data, s.ttl)
	}
}

func instrumentKey(symbol string) string { return fmt.Sprintf("instrument:%s", symbol) }
func accountKey(id string) string        { return fmt.Sprintf("account:%s", id) }

package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/krishgupta2521/FIC--sub000/internal/model"
	"github.com/krishgupta2521/FIC--sub000/internal/store"
)

func seedInstrument(t *testing.T, ms *store.MemoryStore, symbol string, price int64) {
	t.Helper()
	err := ms.CreateInstrument(context.Background(), &model.Instrument{
		Symbol:    symbol,
		Name:      symbol,
		Price:     decimal.NewFromInt(price),
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("failed to seed instrument: %v", err)
	}
}

func TestMemoryStore_InstrumentLifecycle(t *testing.T) {
	ms := store.NewMemoryStore()
	ctx := context.Background()

	if _, err := ms.GetInstrument(ctx, "TCS"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	seedInstrument(t, ms, "TCS", 3500)

	inst, err := ms.GetInstrument(ctx, "TCS")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !inst.Price.Equal(decimal.NewFromInt(3500)) {
		t.Errorf("unexpected price %s", inst.Price)
	}

	// Duplicate creation is rejected.
	err = ms.CreateInstrument(ctx, &model.Instrument{Symbol: "TCS"})
	if err == nil {
		t.Error("expected duplicate instrument to fail")
	}

	if err := ms.UpdatePrice(ctx, "TCS", decimal.NewFromInt(3600)); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	inst, _ = ms.GetInstrument(ctx, "TCS")
	if !inst.Price.Equal(decimal.NewFromInt(3600)) {
		t.Errorf("read after write should observe 3600, got %s", inst.Price)
	}

	if err := ms.UpdatePrice(ctx, "NOSUCH", decimal.NewFromInt(1)); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown symbol, got %v", err)
	}
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ms := store.NewMemoryStore()
	ctx := context.Background()
	seedInstrument(t, ms, "ITC", 420)

	inst, _ := ms.GetInstrument(ctx, "ITC")
	inst.Price = decimal.NewFromInt(1)

	again, _ := ms.GetInstrument(ctx, "ITC")
	if !again.Price.Equal(decimal.NewFromInt(420)) {
		t.Error("mutating a returned instrument must not affect the store")
	}
}

func TestMemoryStore_AccountRoundTrip(t *testing.T) {
	ms := store.NewMemoryStore()
	ctx := context.Background()

	if _, err := ms.GetAccount(ctx, "alice"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	acct := &model.Account{
		ID:          "alice",
		DisplayName: "Alice",
		Cash:        decimal.NewFromInt(90000),
		Holdings:    map[string]int64{"TCS": 2},
		CreatedAt:   time.Now().UTC(),
	}
	if err := ms.SaveAccount(ctx, acct); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	// The store must hold its own copy of the holdings map.
	acct.Holdings["TCS"] = 99

	loaded, err := ms.GetAccount(ctx, "alice")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if loaded.Holdings["TCS"] != 2 {
		t.Errorf("expected stored holdings isolated from caller, got %d", loaded.Holdings["TCS"])
	}

	accounts, _ := ms.ListAccounts(ctx)
	if len(accounts) != 1 || accounts[0].ID != "alice" {
		t.Errorf("unexpected account listing: %+v", accounts)
	}
}

func TestMemoryStore_RecordTrade(t *testing.T) {
	ms := store.NewMemoryStore()
	ctx := context.Background()

	acct := &model.Account{
		ID:          "alice",
		DisplayName: "alice",
		Cash:        decimal.NewFromInt(90000),
		Holdings:    map[string]int64{"TCS": 10},
		CreatedAt:   time.Now().UTC(),
	}
	trade := &model.Trade{
		ID:        "t1",
		AccountID: "alice",
		Symbol:    "TCS",
		Side:      model.SideBuy,
		Quantity:  10,
		Timestamp: time.Now().UTC(),
	}
	if err := ms.RecordTrade(ctx, acct, trade); err != nil {
		t.Fatalf("record failed: %v", err)
	}

	// Mutating the caller's copy must not leak into the store.
	acct.Holdings["TCS"] = 99

	got, err := ms.GetAccount(ctx, "alice")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Holdings["TCS"] != 10 {
		t.Errorf("expected 10 shares, got %d", got.Holdings["TCS"])
	}

	trades, err := ms.TradesByAccount(ctx, "alice")
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(trades) != 1 || trades[0].ID != "t1" {
		t.Errorf("expected the recorded trade, got %+v", trades)
	}
}

func TestMemoryStore_TradesKeepInsertionOrder(t *testing.T) {
	ms := store.NewMemoryStore()
	ctx := context.Background()

	for i, symbol := range []string{"A", "B", "C"} {
		err := ms.InsertTrade(ctx, &model.Trade{
			ID:        symbol,
			AccountID: "alice",
			Symbol:    symbol,
			Side:      model.SideBuy,
			Quantity:  int64(i + 1),
			Timestamp: time.Now().UTC(),
		})
		if err != nil {
			t.Fatalf("insert failed: %v", err)
		}
	}

	trades, err := ms.TradesByAccount(ctx, "alice")
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(trades) != 3 {
		t.Fatalf("expected 3 trades, got %d", len(trades))
	}
	for i, symbol := range []string{"A", "B", "C"} {
		if trades[i].Symbol != symbol {
			t.Errorf("position %d: expected %s, got %s", i, symbol, trades[i].Symbol)
		}
	}
}

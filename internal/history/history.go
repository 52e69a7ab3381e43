// Package history is the query layer over the append-only trade log.
// Records are appended only by a successful ledger trade; no mutation or
// deletion operation exists anywhere in this package or the store.
package history

import (
	"context"
	"strings"

	"github.com/krishgupta2521/FIC--sub000/internal/model"
	"github.com/krishgupta2521/FIC--sub000/internal/store"
)

// Filter narrows a trade history query. Zero values match everything.
type Filter struct {
	Round  int    // 0 matches any round
	Symbol string // exact symbol match
	Side   string // model.SideBuy or model.SideSell
	Text   string // case-insensitive substring of symbol or side
}

// Recorder exposes per-account trade history queries.
type Recorder struct {
	store store.Store
}

// NewRecorder creates a recorder over a store.
func NewRecorder(st store.Store) *Recorder {
	return &Recorder{store: st}
}

// Query returns the account's matching trades, most recent first. Records
// with equal timestamps keep their relative insertion order reversed, i.e.
// the later append comes first.
func (r *Recorder) Query(ctx context.Context, accountID string, f Filter) ([]model.Trade, error) {
	trades, err := r.store.TradesByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	matched := make([]model.Trade, 0, len(trades))
	// Walk backwards: store order is execution order.
	for i := len(trades) - 1; i >= 0; i-- {
		if f.matches(&trades[i]) {
			matched = append(matched, trades[i])
		}
	}
	return matched, nil
}

func (f *Filter) matches(t *model.Trade) bool {
	if f.Round != 0 && t.Round != f.Round {
		return false
	}
	if f.Symbol != "" && t.Symbol != f.Symbol {
		return false
	}
	if f.Side != "" && t.Side != f.Side {
		return false
	}
	if f.Text != "" {
		needle := strings.ToLower(f.Text)
		if !strings.Contains(strings.ToLower(t.Symbol), needle) &&
			!strings.Contains(strings.ToLower(t.Side), needle) {
			return false
		}
	}
	return true
}

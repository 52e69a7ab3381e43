// Package rank computes the leaderboard: a pure projection of account and
// price state. It holds no state of its own and is recomputed on every read,
// so there is no cached leaderboard to invalidate.
package rank

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/krishgupta2521/FIC--sub000/internal/model"
)

// Compute orders accounts by portfolio value, descending. Ties are broken by
// account id ascending so the ordering is deterministic and reproducible
// across repeated calls with unchanged input. Ranks are the 1-based position:
// a strictly increasing sequence with no gaps, even when values tie.
//
// portfolioValue = cash + Σ holdings (quantity × price); a symbol missing
// from prices values that holding at zero.
func Compute(accounts []model.Account, prices map[string]decimal.Decimal, startingCash decimal.Decimal) []model.LeaderboardEntry {
	entries := make([]model.LeaderboardEntry, 0, len(accounts))

	for _, acct := range accounts {
		value := acct.Cash
		for symbol, qty := range acct.Holdings {
			price, ok := prices[symbol]
			if !ok {
				continue
			}
			value = value.Add(price.Mul(decimal.NewFromInt(qty)))
		}

		entries = append(entries, model.LeaderboardEntry{
			AccountID:      acct.ID,
			DisplayName:    acct.DisplayName,
			PortfolioValue: value,
			Gain:           value.Sub(startingCash),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		cmp := entries[i].PortfolioValue.Cmp(entries[j].PortfolioValue)
		if cmp != 0 {
			return cmp > 0
		}
		return entries[i].AccountID < entries[j].AccountID
	})

	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// PriceIndex builds the symbol → price map Compute consumes from an
// instrument listing.
func PriceIndex(instruments []model.Instrument) map[string]decimal.Decimal {
	prices := make(map[string]decimal.Decimal, len(instruments))
	for _, inst := range instruments {
		prices[inst.Symbol] = inst.Price
	}
	return prices
}

package rank_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krishgupta2521/FIC--sub000/internal/model"
	"github.com/krishgupta2521/FIC--sub000/internal/rank"
)

var startingCash = decimal.NewFromInt(100000)

func acct(id string, cash float64, holdings map[string]int64) model.Account {
	return model.Account{
		ID:          id,
		DisplayName: id,
		Cash:        decimal.NewFromFloat(cash),
		Holdings:    holdings,
	}
}

func prices(m map[string]float64) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(m))
	for symbol, price := range m {
		out[symbol] = decimal.NewFromFloat(price)
	}
	return out
}

func TestCompute_OrderingAndRanks(t *testing.T) {
	accounts := []model.Account{
		acct("zoe", 96000, map[string]int64{"RELIANCE": 5}),  // 96000 + 6000 = 102000
		acct("amy", 100000, nil),                             // 100000
		acct("ben", 50000, map[string]int64{"RELIANCE": 10}), // 50000 + 12000 = 62000
	}
	p := prices(map[string]float64{"RELIANCE": 1200})

	entries := rank.Compute(accounts, p, startingCash)
	require.Len(t, entries, 3)

	assert.Equal(t, "zoe", entries[0].AccountID)
	assert.Equal(t, "amy", entries[1].AccountID)
	assert.Equal(t, "ben", entries[2].AccountID)

	for i, e := range entries {
		assert.Equal(t, i+1, e.Rank)
	}

	assert.True(t, entries[0].PortfolioValue.Equal(decimal.NewFromInt(102000)))
	assert.True(t, entries[0].Gain.Equal(decimal.NewFromInt(2000)))
	assert.True(t, entries[2].Gain.Equal(decimal.NewFromInt(-38000)))
}

func TestCompute_TieBreakByAccountID(t *testing.T) {
	accounts := []model.Account{
		acct("carol", 100000, nil),
		acct("alice", 100000, nil),
		acct("bob", 100000, nil),
	}

	entries := rank.Compute(accounts, nil, startingCash)
	require.Len(t, entries, 3)

	// Equal values: deterministic id order, but ranks stay strictly 1..N.
	assert.Equal(t, []string{"alice", "bob", "carol"},
		[]string{entries[0].AccountID, entries[1].AccountID, entries[2].AccountID})
	assert.Equal(t, []int{1, 2, 3},
		[]int{entries[0].Rank, entries[1].Rank, entries[2].Rank})
}

func TestCompute_Deterministic(t *testing.T) {
	accounts := []model.Account{
		acct("a", 100000, map[string]int64{"TCS": 2}),
		acct("b", 107000, nil),
		acct("c", 100000, map[string]int64{"TCS": 2}),
	}
	p := prices(map[string]float64{"TCS": 3500})

	first := rank.Compute(accounts, p, startingCash)
	for i := 0; i < 10; i++ {
		again := rank.Compute(accounts, p, startingCash)
		assert.Equal(t, first, again, "run %d differs", i)
	}
}

func TestCompute_MissingPriceValuesZero(t *testing.T) {
	accounts := []model.Account{
		acct("dora", 40000, map[string]int64{"DELISTED": 100}),
	}

	entries := rank.Compute(accounts, prices(map[string]float64{"TCS": 3500}), startingCash)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].PortfolioValue.Equal(decimal.NewFromInt(40000)),
		"unknown symbol must value at zero, got %s", entries[0].PortfolioValue)
}

func TestCompute_Empty(t *testing.T) {
	entries := rank.Compute(nil, nil, startingCash)
	assert.Empty(t, entries)
}

func TestPriceIndex(t *testing.T) {
	instruments := []model.Instrument{
		{Symbol: "A", Price: decimal.NewFromInt(10)},
		{Symbol: "B", Price: decimal.NewFromInt(20)},
	}
	idx := rank.PriceIndex(instruments)
	require.Len(t, idx, 2)
	assert.True(t, idx["A"].Equal(decimal.NewFromInt(10)))
	assert.True(t, idx["B"].Equal(decimal.NewFromInt(20)))
}

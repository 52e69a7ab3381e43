package shock_test

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krishgupta2521/FIC--sub000/internal/model"
	"github.com/krishgupta2521/FIC--sub000/internal/shock"
	"github.com/krishgupta2521/FIC--sub000/internal/store"
)

func seedStore(t *testing.T, prices map[string]float64) *store.MemoryStore {
	t.Helper()
	ms := store.NewMemoryStore()
	for symbol, price := range prices {
		require.NoError(t, ms.CreateInstrument(context.Background(), &model.Instrument{
			Symbol:    symbol,
			Name:      symbol,
			Price:     decimal.NewFromFloat(price),
			CreatedAt: time.Now().UTC(),
		}))
	}
	return ms
}

func TestPublish_MagnitudeBounds(t *testing.T) {
	// A moderate shock on price 100 must land within [94, 97] when the
	// direction is down, or [103, 106] when up: magnitude 6% scaled by a
	// factor in [0.5, 1.0].
	for seed := int64(0); seed < 20; seed++ {
		ms := seedStore(t, map[string]float64{"RELIANCE": 100})
		engine := shock.New(ms, nil, rand.New(rand.NewSource(seed)))

		result, err := engine.Publish(context.Background(), "budget announced", model.SeverityModerate)
		require.NoError(t, err)
		require.Len(t, result.Applied, 1)

		newPrice := result.Applied["RELIANCE"]
		if result.Event.Direction == -1 {
			assert.True(t, newPrice.GreaterThanOrEqual(decimal.NewFromInt(94)),
				"seed %d: price %s below 94", seed, newPrice)
			assert.True(t, newPrice.LessThanOrEqual(decimal.NewFromInt(97)),
				"seed %d: price %s above 97", seed, newPrice)
		} else {
			assert.True(t, newPrice.GreaterThanOrEqual(decimal.NewFromInt(103)),
				"seed %d: price %s below 103", seed, newPrice)
			assert.True(t, newPrice.LessThanOrEqual(decimal.NewFromInt(106)),
				"seed %d: price %s above 106", seed, newPrice)
		}
	}
}

func TestPublish_OneDirectionAcrossMarket(t *testing.T) {
	prices := map[string]float64{
		"RELIANCE": 1000, "TCS": 3500, "INFY": 1450, "ITC": 420, "HDFCBANK": 1600,
	}
	ms := seedStore(t, prices)
	engine := shock.New(ms, nil, rand.New(rand.NewSource(7)))

	result, err := engine.Publish(context.Background(), "rate decision", model.SeveritySevere)
	require.NoError(t, err)
	require.Len(t, result.Applied, len(prices))

	dir := decimal.NewFromInt(int64(result.Event.Direction))
	for symbol, newPrice := range result.Applied {
		old := decimal.NewFromFloat(prices[symbol])
		move := newPrice.Sub(old)
		assert.True(t, move.Mul(dir).IsPositive(),
			"%s moved %s against event direction %d", symbol, move, result.Event.Direction)
	}
}

func TestPublish_WritesPriceStore(t *testing.T) {
	ms := seedStore(t, map[string]float64{"TCS": 3500})
	engine := shock.New(ms, nil, rand.New(rand.NewSource(3)))

	result, err := engine.Publish(context.Background(), "earnings beat", model.SeverityMild)
	require.NoError(t, err)

	inst, err := ms.GetInstrument(context.Background(), "TCS")
	require.NoError(t, err)
	assert.True(t, inst.Price.Equal(result.Applied["TCS"]),
		"store price %s != applied %s", inst.Price, result.Applied["TCS"])
	assert.True(t, inst.Price.IsPositive())
}

func TestPublish_UnknownSeverity(t *testing.T) {
	ms := seedStore(t, map[string]float64{"TCS": 3500})
	engine := shock.New(ms, nil, nil)

	_, err := engine.Publish(context.Background(), "??", "catastrophic")
	require.ErrorIs(t, err, shock.ErrUnknownSeverity)

	// The failed publish must not have moved any price.
	inst, err := ms.GetInstrument(context.Background(), "TCS")
	require.NoError(t, err)
	assert.True(t, inst.Price.Equal(decimal.NewFromInt(3500)))
}

func TestPublish_CustomMagnitudeTable(t *testing.T) {
	ms := seedStore(t, map[string]float64{"ITC": 100})
	table := map[string]decimal.Decimal{
		"rumor": decimal.NewFromFloat(0.01),
	}
	engine := shock.New(ms, table, rand.New(rand.NewSource(11)))

	result, err := engine.Publish(context.Background(), "whisper", "rumor")
	require.NoError(t, err)

	newPrice := result.Applied["ITC"]
	move := newPrice.Sub(decimal.NewFromInt(100)).Abs()
	assert.True(t, move.LessThanOrEqual(decimal.NewFromInt(1)),
		"1%% magnitude moved price by %s", move)

	// The default severities are not present in a custom table.
	_, err = engine.Publish(context.Background(), "x", model.SeverityMild)
	require.ErrorIs(t, err, shock.ErrUnknownSeverity)
}

// failingPriceStore wraps a Store and fails UpdatePrice for one symbol.
type failingPriceStore struct {
	store.Store
	failSymbol string
}

func (s *failingPriceStore) UpdatePrice(ctx context.Context, symbol string, price decimal.Decimal) error {
	if symbol == s.failSymbol {
		return fmt.Errorf("write to %s unavailable", symbol)
	}
	return s.Store.UpdatePrice(ctx, symbol, price)
}

func TestPublish_SkipsFailedInstrument(t *testing.T) {
	ms := seedStore(t, map[string]float64{"RELIANCE": 1000, "TCS": 3500, "INFY": 1450})
	engine := shock.New(&failingPriceStore{Store: ms, failSymbol: "TCS"}, nil, rand.New(rand.NewSource(5)))

	result, err := engine.Publish(context.Background(), "flash crash", model.SeveritySevere)
	require.NoError(t, err, "partial application must not fail the event")

	assert.Len(t, result.Applied, 2)
	assert.NotContains(t, result.Applied, "TCS")
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "TCS", result.Skipped[0])

	// The skipped instrument keeps its old price.
	inst, err := ms.GetInstrument(context.Background(), "TCS")
	require.NoError(t, err)
	assert.True(t, inst.Price.Equal(decimal.NewFromInt(3500)))
}

// Package shock implements the news shock engine: an administrator-published
// news event perturbs every instrument's price with a single market-wide
// direction and per-instrument idiosyncratic magnitude.
//
// The engine only writes prices. It never touches accounts; holders' gains
// and losses move solely through the derived portfolio valuation.
package shock

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/krishgupta2521/FIC--sub000/internal/model"
	"github.com/krishgupta2521/FIC--sub000/internal/store"
)

// ErrUnknownSeverity is returned when a severity has no magnitude entry.
var ErrUnknownSeverity = errors.New("shock: unknown severity")

// minPrice floors shocked prices. Multiplicative moves keep prices positive
// on their own; the floor guards against degenerate configured magnitudes.
var minPrice = decimal.NewFromFloat(0.01)

// priceScale is the number of decimal places prices are rounded to.
const priceScale int32 = 2

// DefaultMagnitudes maps severity to the maximum fractional price move.
func DefaultMagnitudes() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		model.SeverityMild:     decimal.NewFromFloat(0.03),
		model.SeverityModerate: decimal.NewFromFloat(0.06),
		model.SeveritySevere:   decimal.NewFromFloat(0.12),
	}
}

// Engine applies news shocks to the instrument collection of a Store.
type Engine struct {
	store      store.Store
	magnitudes map[string]decimal.Decimal
	rng        *rand.Rand
}

// New creates an engine. magnitudes may be nil for the defaults; rng may be
// nil for a time-seeded source (tests inject a fixed seed).
func New(st store.Store, magnitudes map[string]decimal.Decimal, rng *rand.Rand) *Engine {
	if magnitudes == nil {
		magnitudes = DefaultMagnitudes()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{store: st, magnitudes: magnitudes, rng: rng}
}

// Result reports one published event and the prices it applied.
type Result struct {
	Event   model.NewsEvent            `json:"event"`
	Applied map[string]decimal.Decimal `json:"applied"` // symbol → new price
	Skipped []string                   `json:"skipped,omitempty"`
}

// Publish applies one news event across all instruments.
//
// One direction (+1 or -1) is drawn for the whole event; each instrument is
// additionally scaled by an independent factor in [0.5, 1.0] of the severity
// magnitude: newPrice = price × (1 + direction × magnitude × factor).
//
// Instruments whose price write fails are skipped; the event still succeeds
// for the rest. No cross-instrument atomicity is required, unlike the trade
// protocol.
func (e *Engine) Publish(ctx context.Context, text, severity string) (*Result, error) {
	magnitude, ok := e.magnitudes[severity]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSeverity, severity)
	}

	direction := 1
	if e.rng.Intn(2) == 0 {
		direction = -1
	}

	instruments, err := e.store.ListInstruments(ctx)
	if err != nil {
		return nil, err
	}

	event := model.NewsEvent{
		ID:        uuid.New().String(),
		Text:      text,
		Severity:  severity,
		Direction: direction,
		Timestamp: time.Now().UTC(),
	}

	result := &Result{
		Event:   event,
		Applied: make(map[string]decimal.Decimal, len(instruments)),
	}

	dir := decimal.NewFromInt(int64(direction))
	one := decimal.NewFromInt(1)

	for _, inst := range instruments {
		// Idiosyncratic scale factor in [0.5, 1.0].
		factor := decimal.NewFromFloat(0.5 + 0.5*e.rng.Float64())
		move := dir.Mul(magnitude).Mul(factor)
		newPrice := inst.Price.Mul(one.Add(move)).Round(priceScale)
		if newPrice.LessThan(minPrice) {
			newPrice = minPrice
		}

		if err := e.store.UpdatePrice(ctx, inst.Symbol, newPrice); err != nil {
			result.Skipped = append(result.Skipped, inst.Symbol)
			continue
		}
		result.Applied[inst.Symbol] = newPrice
	}

	return result, nil
}

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/krishgupta2521/FIC--sub000/internal/model"
)

// PostgresStore implements Store using PostgreSQL as the source of truth.
// All monetary values are stored as NUMERIC for exact decimal precision.
// Holdings live in a child table keyed by (account_id, symbol); zero-quantity
// rows are never written.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) CreateInstrument(ctx context.Context, inst *model.Instrument) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO instruments (symbol, name, price, created_at)
		 VALUES ($1, $2, $3::NUMERIC, $4)`,
		inst.Symbol, inst.Name, inst.Price.String(), inst.CreatedAt,
	)
	return err
}

func (s *PostgresStore) GetInstrument(ctx context.Context, symbol string) (*model.Instrument, error) {
	var inst model.Instrument
	var price string

	err := s.pool.QueryRow(ctx,
		`SELECT symbol, name, price::TEXT, created_at
		 FROM instruments WHERE symbol = $1`, symbol).
		Scan(&inst.Symbol, &inst.Name, &price, &inst.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("instrument %s: %w", symbol, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get instrument %s: %w", symbol, err)
	}

	inst.Price, _ = decimal.NewFromString(price)
	return &inst, nil
}

func (s *PostgresStore) ListInstruments(ctx context.Context) ([]model.Instrument, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT symbol, name, price::TEXT, created_at
		 FROM instruments ORDER BY symbol`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var instruments []model.Instrument
	for rows.Next() {
		var inst model.Instrument
		var price string
		if err := rows.Scan(&inst.Symbol, &inst.Name, &price, &inst.CreatedAt); err != nil {
			return nil, err
		}
		inst.Price, _ = decimal.NewFromString(price)
		instruments = append(instruments, inst)
	}
	return instruments, rows.Err()
}

func (s *PostgresStore) UpdatePrice(ctx context.Context, symbol string, price decimal.Decimal) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE instruments SET price = $2::NUMERIC WHERE symbol = $1`,
		symbol, price.String(),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("instrument %s: %w", symbol, ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) GetAccount(ctx context.Context, id string) (*model.Account, error) {
	var acct model.Account
	var cash string

	err := s.pool.QueryRow(ctx,
		`SELECT id, display_name, cash::TEXT, created_at
		 FROM accounts WHERE id = $1`, id).
		Scan(&acct.ID, &acct.DisplayName, &cash, &acct.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("account %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get account %s: %w", id, err)
	}
	acct.Cash, _ = decimal.NewFromString(cash)

	acct.Holdings = make(map[string]int64)
	rows, err := s.pool.Query(ctx,
		`SELECT symbol, quantity FROM account_holdings WHERE account_id = $1`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var symbol string
		var qty int64
		if err := rows.Scan(&symbol, &qty); err != nil {
			return nil, err
		}
		acct.Holdings[symbol] = qty
	}
	return &acct, rows.Err()
}

// SaveAccount replaces the account row and its holdings in one transaction,
// so a reader never observes cash from one trade and holdings from another.
func (s *PostgresStore) SaveAccount(ctx context.Context, acct *model.Account) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := saveAccount(ctx, tx, acct); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// RecordTrade writes the account state and the trade record in a single
// transaction. A reader never observes the debited account without its
// trade record, or the record without the account mutation.
func (s *PostgresStore) RecordTrade(ctx context.Context, acct *model.Account, trade *model.Trade) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := saveAccount(ctx, tx, acct); err != nil {
		return err
	}
	if err := insertTrade(ctx, tx, trade); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// execer is satisfied by both *pgxpool.Pool and pgx.Tx.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func saveAccount(ctx context.Context, q execer, acct *model.Account) error {
	_, err := q.Exec(ctx,
		`INSERT INTO accounts (id, display_name, cash, created_at)
		 VALUES ($1, $2, $3::NUMERIC, $4)
		 ON CONFLICT (id) DO UPDATE SET display_name = $2, cash = $3::NUMERIC`,
		acct.ID, acct.DisplayName, acct.Cash.String(), acct.CreatedAt,
	)
	if err != nil {
		return err
	}

	if _, err := q.Exec(ctx,
		`DELETE FROM account_holdings WHERE account_id = $1`, acct.ID); err != nil {
		return err
	}
	for symbol, qty := range acct.Holdings {
		if _, err := q.Exec(ctx,
			`INSERT INTO account_holdings (account_id, symbol, quantity)
			 VALUES ($1, $2, $3)`,
			acct.ID, symbol, qty); err != nil {
			return err
		}
	}
	return nil
}

func (s *PostgresStore) ListAccounts(ctx context.Context) ([]model.Account, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, display_name, cash::TEXT, created_at FROM accounts ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		var acct model.Account
		var cash string
		if err := rows.Scan(&acct.ID, &acct.DisplayName, &cash, &acct.CreatedAt); err != nil {
			return nil, err
		}
		acct.Cash, _ = decimal.NewFromString(cash)
		acct.Holdings = make(map[string]int64)
		accounts = append(accounts, acct)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	hrows, err := s.pool.Query(ctx,
		`SELECT account_id, symbol, quantity FROM account_holdings`)
	if err != nil {
		return nil, err
	}
	defer hrows.Close()

	byID := make(map[string]*model.Account, len(accounts))
	for i := range accounts {
		byID[accounts[i].ID] = &accounts[i]
	}
	for hrows.Next() {
		var accountID, symbol string
		var qty int64
		if err := hrows.Scan(&accountID, &symbol, &qty); err != nil {
			return nil, err
		}
		if acct, ok := byID[accountID]; ok {
			acct.Holdings[symbol] = qty
		}
	}
	return accounts, hrows.Err()
}

func (s *PostgresStore) InsertTrade(ctx context.Context, t *model.Trade) error {
	return insertTrade(ctx, s.pool, t)
}

func insertTrade(ctx context.Context, q execer, t *model.Trade) error {
	_, err := q.Exec(ctx,
		`INSERT INTO trades (id, account_id, round, symbol, side, quantity, price, notional, cash_delta, timestamp)
		 VALUES ($1, $2, $3, $4, $5, $6, $7::NUMERIC, $8::NUMERIC, $9::NUMERIC, $10)`,
		t.ID, t.AccountID, t.Round, t.Symbol, t.Side, t.Quantity,
		t.Price.String(), t.Notional.String(), t.CashDelta.String(),
		t.Timestamp,
	)
	return err
}

func (s *PostgresStore) TradesByAccount(ctx context.Context, accountID string) ([]model.Trade, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, account_id, round, symbol, side, quantity,
		        price::TEXT, notional::TEXT, cash_delta::TEXT, timestamp
		 FROM trades WHERE account_id = $1 ORDER BY timestamp, id`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTrades(rows)
}

func (s *PostgresStore) ListTrades(ctx context.Context) ([]model.Trade, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, account_id, round, symbol, side, quantity,
		        price::TEXT, notional::TEXT, cash_delta::TEXT, timestamp
		 FROM trades ORDER BY timestamp, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTrades(rows)
}

// scanTrades reads pgx rows into Trade slices.
type pgxRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

func scanTrades(rows pgxRows) ([]model.Trade, error) {
	var trades []model.Trade
	for rows.Next() {
		var t model.Trade
		var priceS, notionalS, deltaS string

		if err := rows.Scan(&t.ID, &t.AccountID, &t.Round, &t.Symbol, &t.Side,
			&t.Quantity, &priceS, &notionalS, &deltaS, &t.Timestamp); err != nil {
			return nil, err
		}

		t.Price, _ = decimal.NewFromString(priceS)
		t.Notional, _ = decimal.NewFromString(notionalS)
		t.CashDelta, _ = decimal.NewFromString(deltaS)

		trades = append(trades, t)
	}
	return trades, rows.Err()
}

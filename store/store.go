// Package store keeps the local copy of historical market data: bars per
// instrument and granularity, plus the exchange reference tables the daily
// sync refreshes. Bars are keyed (code, ktype, ts), so re-merging data that
// is already present never duplicates or reorders anything.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/suvanzhou/futu-algo/market"
)

// DefaultBackfillDays bounds the initial fetch for an instrument with no
// local bars at all.
const DefaultBackfillDays = 730

type Store struct {
	db *sql.DB
}

// Open creates or opens the store at path. ":memory:" gives an ephemeral
// store for tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply store schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// UpsertBars merges candles for one instrument/granularity. Existing rows
// with the same bar time are overwritten in place, which makes a forced
// re-fetch of identical data a no-op.
func (s *Store) UpsertBars(ctx context.Context, code market.Code, g market.Granularity, candles []market.Candle) error {
	if len(candles) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("upsert bars %s %s: %w", code, g, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO bars (code, ktype, ts, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(code, ktype, ts) DO UPDATE SET
			open=excluded.open, high=excluded.high, low=excluded.low,
			close=excluded.close, volume=excluded.volume`)
	if err != nil {
		return fmt.Errorf("upsert bars %s %s: %w", code, g, err)
	}
	defer stmt.Close()

	for _, c := range candles {
		if _, err := stmt.ExecContext(ctx, string(code), g.String(), c.Time.UTC(),
			c.Open, c.High, c.Low, c.Close, c.Volume); err != nil {
			return fmt.Errorf("upsert bar %s %s @%s: %w", code, g, c.Time, err)
		}
	}
	return tx.Commit()
}

// Bars returns candles in [from, to] in ascending time order. A zero `to`
// means no upper bound.
func (s *Store) Bars(ctx context.Context, code market.Code, g market.Granularity, from, to time.Time) ([]market.Candle, error) {
	if to.IsZero() {
		to = time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT ts, open, high, low, close, volume FROM bars
		WHERE code = ? AND ktype = ? AND ts >= ? AND ts <= ?
		ORDER BY ts ASC`,
		string(code), g.String(), from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("query bars %s %s: %w", code, g, err)
	}
	defer rows.Close()
	return scanCandles(rows)
}

// LastBars returns the newest n candles in ascending time order.
func (s *Store) LastBars(ctx context.Context, code market.Code, g market.Granularity, n int) ([]market.Candle, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ts, open, high, low, close, volume FROM (
			SELECT * FROM bars WHERE code = ? AND ktype = ? ORDER BY ts DESC LIMIT ?
		) ORDER BY ts ASC`,
		string(code), g.String(), n)
	if err != nil {
		return nil, fmt.Errorf("query last bars %s %s: %w", code, g, err)
	}
	defer rows.Close()
	return scanCandles(rows)
}

func scanCandles(rows *sql.Rows) ([]market.Candle, error) {
	var out []market.Candle
	for rows.Next() {
		var c market.Candle
		if err := rows.Scan(&c.Time, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		c.Time = c.Time.UTC()
		out = append(out, c)
	}
	return out, rows.Err()
}

// LastBarTime returns the newest stored bar time, or the zero time when the
// instrument/granularity has no local data.
func (s *Store) LastBarTime(ctx context.Context, code market.Code, g market.Granularity) (time.Time, error) {
	var ts sql.NullTime
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(ts) FROM bars WHERE code = ? AND ktype = ?`,
		string(code), g.String()).Scan(&ts)
	if err != nil {
		return time.Time{}, fmt.Errorf("last bar time %s %s: %w", code, g, err)
	}
	if !ts.Valid {
		return time.Time{}, nil
	}
	return ts.Time.UTC(), nil
}

// BarCount reports how many bars are stored for one instrument/granularity.
func (s *Store) BarCount(ctx context.Context, code market.Code, g market.Granularity) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bars WHERE code = ? AND ktype = ?`,
		string(code), g.String()).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("bar count %s %s: %w", code, g, err)
	}
	return n, nil
}

// StalenessDays reports whole days elapsed since the instrument's newest
// daily bar, clamped to at least 1. Instruments with no local daily data
// report DefaultBackfillDays so their first sync pulls a full history.
func (s *Store) StalenessDays(ctx context.Context, code market.Code, now time.Time) (int, error) {
	last, err := s.LastBarTime(ctx, code, market.KDay)
	if err != nil {
		return 0, err
	}
	if last.IsZero() {
		return DefaultBackfillDays, nil
	}
	days := int(now.UTC().Sub(last).Hours() / 24)
	if days < 1 {
		days = 1
	}
	return days, nil
}

// KnownCodes lists every instrument with at least one stored bar.
func (s *Store) KnownCodes(ctx context.Context) ([]market.Code, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT code FROM bars ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("known codes: %w", err)
	}
	defer rows.Close()

	var out []market.Code
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan code: %w", err)
		}
		out = append(out, market.Code(c))
	}
	return out, rows.Err()
}

// Package journal persists backtest results: one row per run plus the
// trades and equity curve behind it, keyed by a ULID run id.
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"

	"github.com/suvanzhou/futu-algo/market"
)

// ErrRunNotFound is returned when a run id has no journal entry.
var ErrRunNotFound = errors.New("journal: run not found")

// Run is the persisted outcome of one backtest.
type Run struct {
	ID          string
	Code        market.Code
	Strategy    string
	Granularity market.Granularity
	Start       time.Time
	End         time.Time

	InitialCapital float64
	FinalCapital   float64
	ReturnPct      float64
	MaxDrawdownPct float64

	Trades int
	Wins   int
	Losses int

	// Commission is the total paid across the run.
	Commission float64

	Created time.Time
}

// Trade is one fill inside a run. Seq orders fills within the run.
type Trade struct {
	RunID      string
	Seq        int
	Side       string
	Quantity   float64
	Price      float64
	Time       time.Time
	Commission float64
	Realized   float64
}

// EquityPoint samples total account value after a bar closed.
type EquityPoint struct {
	RunID string
	Time  time.Time
	Value float64
}

// NewRunID allocates a sortable unique run id.
func NewRunID() string {
	return ulid.Make().String()
}

// Journal is a SQLite-backed backtest journal.
type Journal struct {
	db *sql.DB
}

func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init journal schema: %w", err)
	}
	return &Journal{db: db}, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

// Record stores a run with its trades and equity curve in one
// transaction, so a run never appears without its detail rows.
func (j *Journal) Record(ctx context.Context, run Run, trades []Trade, curve []EquityPoint) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record run %s: %w", run.ID, err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(run_id, code, strategy, ktype, start_ts, end_ts, initial_cap, final_cap,
		 return_pct, max_dd_pct, trades, wins, losses, commission, created)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, string(run.Code), run.Strategy, run.Granularity.String(),
		run.Start.UTC(), run.End.UTC(), run.InitialCapital, run.FinalCapital,
		run.ReturnPct, run.MaxDrawdownPct, run.Trades, run.Wins, run.Losses,
		run.Commission, run.Created.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}

	for _, t := range trades {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO trades (run_id, seq, side, qty, price, ts, commission, realized)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, t.Seq, t.Side, t.Quantity, t.Price, t.Time.UTC(), t.Commission, t.Realized,
		)
		if err != nil {
			return fmt.Errorf("insert trade %s/%d: %w", run.ID, t.Seq, err)
		}
	}

	for _, p := range curve {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO equity (run_id, ts, value) VALUES (?, ?, ?)`,
			run.ID, p.Time.UTC(), p.Value,
		)
		if err != nil {
			return fmt.Errorf("insert equity %s: %w", run.ID, err)
		}
	}

	return tx.Commit()
}

// Run loads one run by id.
func (j *Journal) Run(ctx context.Context, id string) (Run, error) {
	row := j.db.QueryRowContext(ctx, `
		SELECT run_id, code, strategy, ktype, start_ts, end_ts, initial_cap, final_cap,
		       return_pct, max_dd_pct, trades, wins, losses, commission, created
		FROM runs WHERE run_id = ?`, id)

	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return r, err
}

// Runs lists an instrument's runs, newest first.
func (j *Journal) Runs(ctx context.Context, code market.Code) ([]Run, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT run_id, code, strategy, ktype, start_ts, end_ts, initial_cap, final_cap,
		       return_pct, max_dd_pct, trades, wins, losses, commission, created
		FROM runs WHERE code = ? ORDER BY created DESC`, string(code))
	if err != nil {
		return nil, fmt.Errorf("list runs %s: %w", code, err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Trades lists a run's fills in execution order.
func (j *Journal) Trades(ctx context.Context, runID string) ([]Trade, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT run_id, seq, side, qty, price, ts, commission, realized
		FROM trades WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("list trades %s: %w", runID, err)
	}
	defer rows.Close()

	var out []Trade
	for rows.Next() {
		var t Trade
		if err := rows.Scan(&t.RunID, &t.Seq, &t.Side, &t.Quantity, &t.Price,
			&t.Time, &t.Commission, &t.Realized); err != nil {
			return nil, err
		}
		t.Time = t.Time.UTC()
		out = append(out, t)
	}
	return out, rows.Err()
}

// EquityCurve lists a run's equity samples in time order.
func (j *Journal) EquityCurve(ctx context.Context, runID string) ([]EquityPoint, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT run_id, ts, value FROM equity WHERE run_id = ? ORDER BY ts`, runID)
	if err != nil {
		return nil, fmt.Errorf("equity curve %s: %w", runID, err)
	}
	defer rows.Close()

	var out []EquityPoint
	for rows.Next() {
		var p EquityPoint
		if err := rows.Scan(&p.RunID, &p.Time, &p.Value); err != nil {
			return nil, err
		}
		p.Time = p.Time.UTC()
		out = append(out, p)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		r     Run
		code  string
		ktype string
	)
	err := row.Scan(&r.ID, &code, &r.Strategy, &ktype, &r.Start, &r.End,
		&r.InitialCapital, &r.FinalCapital, &r.ReturnPct, &r.MaxDrawdownPct,
		&r.Trades, &r.Wins, &r.Losses, &r.Commission, &r.Created)
	if err != nil {
		return Run{}, err
	}
	r.Code = market.Code(code)
	g, err := market.ParseGranularity(ktype)
	if err != nil {
		return Run{}, fmt.Errorf("run %s: %w", r.ID, err)
	}
	r.Granularity = g
	r.Start = r.Start.UTC()
	r.End = r.End.UTC()
	r.Created = r.Created.UTC()
	return r, nil
}

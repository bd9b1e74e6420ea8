package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/suvanzhou/futu-algo/market"
)

// ReplaceInstruments refreshes the tradable-instrument reference list.
// Rows are upserted so repeated daily refreshes stay idempotent; stale
// rows from delisted instruments are left in place, matching the
// append-only behaviour of the exchange list downloads.
func (s *Store) ReplaceInstruments(ctx context.Context, list []market.Instrument) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace instruments: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO instruments (code, name, lot_size, market, sec_type, list_date, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(code) DO UPDATE SET
			name=excluded.name, lot_size=excluded.lot_size, market=excluded.market,
			sec_type=excluded.sec_type, list_date=excluded.list_date,
			updated_at=excluded.updated_at`)
	if err != nil {
		return fmt.Errorf("replace instruments: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, in := range list {
		if _, err := stmt.ExecContext(ctx, string(in.Code), in.Name, in.LotSize,
			string(in.Market), string(in.Type), in.ListDate, now); err != nil {
			return fmt.Errorf("replace instrument %s: %w", in.Code, err)
		}
	}
	return tx.Commit()
}

// Instruments lists the stored reference records for one market and
// security type.
func (s *Store) Instruments(ctx context.Context, m market.Market, st market.SecurityType) ([]market.Instrument, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT code, name, lot_size, market, sec_type, list_date
		FROM instruments WHERE market = ? AND sec_type = ? ORDER BY code`,
		string(m), string(st))
	if err != nil {
		return nil, fmt.Errorf("query instruments %s/%s: %w", m, st, err)
	}
	defer rows.Close()

	var out []market.Instrument
	for rows.Next() {
		var in market.Instrument
		var code, mk, st string
		if err := rows.Scan(&code, &in.Name, &in.LotSize, &mk, &st, &in.ListDate); err != nil {
			return nil, fmt.Errorf("scan instrument: %w", err)
		}
		in.Code = market.Code(code)
		in.Market = market.Market(mk)
		in.Type = market.SecurityType(st)
		out = append(out, in)
	}
	return out, rows.Err()
}

// Instrument returns one reference record, or false when unknown.
func (s *Store) Instrument(ctx context.Context, code market.Code) (market.Instrument, bool, error) {
	var in market.Instrument
	var c, mk, st string
	err := s.db.QueryRowContext(ctx, `
		SELECT code, name, lot_size, market, sec_type, list_date
		FROM instruments WHERE code = ?`, string(code)).
		Scan(&c, &in.Name, &in.LotSize, &mk, &st, &in.ListDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return market.Instrument{}, false, nil
		}
		return market.Instrument{}, false, fmt.Errorf("query instrument %s: %w", code, err)
	}
	in.Code = market.Code(c)
	in.Market = market.Market(mk)
	in.Type = market.SecurityType(st)
	return in, true, nil
}

// ReplacePlates refreshes the plate (sector grouping) reference list.
func (s *Store) ReplacePlates(ctx context.Context, plates []market.Plate) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace plates: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO plates (plate_code, name, market, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(plate_code) DO UPDATE SET
			name=excluded.name, market=excluded.market, updated_at=excluded.updated_at`)
	if err != nil {
		return fmt.Errorf("replace plates: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, p := range plates {
		if _, err := stmt.ExecContext(ctx, p.Code, p.Name, string(p.Market), now); err != nil {
			return fmt.Errorf("replace plate %s: %w", p.Code, err)
		}
	}
	return tx.Commit()
}

// SetOwnerPlates replaces the sector assignment for one instrument.
func (s *Store) SetOwnerPlates(ctx context.Context, code market.Code, plateCodes []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("set owner plates %s: %w", code, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM owner_plates WHERE code = ?`, string(code)); err != nil {
		return fmt.Errorf("set owner plates %s: %w", code, err)
	}
	for _, pc := range plateCodes {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO owner_plates (code, plate_code) VALUES (?, ?)`,
			string(code), pc); err != nil {
			return fmt.Errorf("set owner plate %s/%s: %w", code, pc, err)
		}
	}
	return tx.Commit()
}

// OwnerPlates lists the plate codes an instrument belongs to.
func (s *Store) OwnerPlates(ctx context.Context, code market.Code) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT plate_code FROM owner_plates WHERE code = ? ORDER BY plate_code`,
		string(code))
	if err != nil {
		return nil, fmt.Errorf("query owner plates %s: %w", code, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var pc string
		if err := rows.Scan(&pc); err != nil {
			return nil, fmt.Errorf("scan owner plate: %w", err)
		}
		out = append(out, pc)
	}
	return out, rows.Err()
}

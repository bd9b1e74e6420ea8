package store

const schema = `
CREATE TABLE IF NOT EXISTS bars (
	code TEXT NOT NULL,
	ktype TEXT NOT NULL,
	ts DATETIME NOT NULL,
	open REAL NOT NULL,
	high REAL NOT NULL,
	low REAL NOT NULL,
	close REAL NOT NULL,
	volume REAL NOT NULL,
	PRIMARY KEY (code, ktype, ts)
);

CREATE TABLE IF NOT EXISTS instruments (
	code TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	lot_size INTEGER NOT NULL,
	market TEXT NOT NULL,
	sec_type TEXT NOT NULL,
	list_date TEXT NOT NULL DEFAULT '',
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS plates (
	plate_code TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	market TEXT NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS owner_plates (
	code TEXT NOT NULL,
	plate_code TEXT NOT NULL,
	PRIMARY KEY (code, plate_code)
);

CREATE INDEX IF NOT EXISTS idx_bars_code_ktype ON bars(code, ktype, ts);
CREATE INDEX IF NOT EXISTS idx_instruments_market ON instruments(market, sec_type);
`

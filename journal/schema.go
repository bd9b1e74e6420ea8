package journal

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id       TEXT PRIMARY KEY,
	code         TEXT NOT NULL,
	strategy     TEXT NOT NULL,
	ktype        TEXT NOT NULL,
	start_ts     DATETIME NOT NULL,
	end_ts       DATETIME NOT NULL,
	initial_cap  REAL NOT NULL,
	final_cap    REAL NOT NULL,
	return_pct   REAL NOT NULL,
	max_dd_pct   REAL NOT NULL,
	trades       INTEGER NOT NULL,
	wins         INTEGER NOT NULL,
	losses       INTEGER NOT NULL,
	commission   REAL NOT NULL,
	created      DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS trades (
	run_id     TEXT NOT NULL REFERENCES runs(run_id),
	seq        INTEGER NOT NULL,
	side       TEXT NOT NULL,
	qty        REAL NOT NULL,
	price      REAL NOT NULL,
	ts         DATETIME NOT NULL,
	commission REAL NOT NULL,
	realized   REAL NOT NULL,
	PRIMARY KEY (run_id, seq)
);

CREATE TABLE IF NOT EXISTS equity (
	run_id TEXT NOT NULL REFERENCES runs(run_id),
	ts     DATETIME NOT NULL,
	value  REAL NOT NULL,
	PRIMARY KEY (run_id, ts)
);

CREATE INDEX IF NOT EXISTS idx_runs_code ON runs(code, created);
`

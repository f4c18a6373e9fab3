package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/navillusj/ASX-Share-Monitor/internal/model"
)

// SQLiteRecorder persists fetch history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so external readers don't block the monitor's writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS fetch_cycles (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp  INTEGER NOT NULL,
			generation INTEGER NOT NULL,
			trigger_type TEXT,
			range_text TEXT,
			symbols    INTEGER,
			errors     INTEGER,
			duration_ms INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cycles_ts ON fetch_cycles(timestamp)`,

		`CREATE TABLE IF NOT EXISTS snapshots (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp         INTEGER NOT NULL,
			symbol            TEXT NOT NULL,
			price             REAL,
			open              REAL,
			daily_change_abs  REAL,
			daily_change_pct  REAL,
			hourly_change_abs REAL,
			hourly_change_pct REAL,
			range_text        TEXT,
			errored           INTEGER NOT NULL DEFAULT 0,
			error_msg         TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_ts ON snapshots(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_symbol ON snapshots(symbol, timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordCycle(evt *CycleEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO fetch_cycles
		(timestamp, generation, trigger_type, range_text, symbols, errors, duration_ms)
		VALUES (?,?,?,?,?,?,?)`,
		time.Now().Unix(), evt.Generation, evt.Trigger, evt.Range,
		evt.Symbols, evt.Errors, evt.Duration.Milliseconds(),
	)
	return err
}

func (r *SQLiteRecorder) RecordSnapshots(snaps []model.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO snapshots
		(timestamp, symbol, price, open, daily_change_abs, daily_change_pct,
		 hourly_change_abs, hourly_change_pct, range_text, errored, error_msg)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for i := range snaps {
		s := &snaps[i]
		errored := 0
		if s.Errored() {
			errored = 1
		}
		if _, err := stmt.Exec(
			s.FetchedAt.Unix(), s.Symbol, s.Price, s.Open,
			s.DailyChangeAbs, s.DailyChangePct,
			s.HourlyChangeAbs, s.HourlyChangePct,
			s.Range, errored, s.Err,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert snapshot %s: %w", s.Symbol, err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) PruneBefore(cutoff time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := cutoff.Unix()
	if _, err := r.db.Exec(`DELETE FROM snapshots WHERE timestamp < ?`, ts); err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}
	if _, err := r.db.Exec(`DELETE FROM fetch_cycles WHERE timestamp < ?`, ts); err != nil {
		return fmt.Errorf("prune cycles: %w", err)
	}
	return nil
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}

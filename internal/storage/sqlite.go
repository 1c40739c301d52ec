package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pfrederiksen/econcal/internal/event"
)

// SQLiteStore appends tables to an SQLite database, one batch per run
type SQLiteStore struct {
	db    *sql.DB
	runID string
}

// NewSQLiteStore opens (creating if needed) the database at dbPath
func NewSQLiteStore(dbPath, runID string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Writes are serialized; a single connection avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db, runID: runID}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

// initSchema creates the events table and indexes
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		record_id TEXT NOT NULL,
		starts_at TEXT,
		currency_code TEXT,
		impact TEXT,
		actual TEXT,
		forecast TEXT,
		previous TEXT,
		all_day TEXT,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_events_run ON events(run_id, position);
	CREATE INDEX IF NOT EXISTS idx_events_record ON events(record_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Save inserts every row of the table under the store's run ID in one transaction
func (s *SQLiteStore) Save(ctx context.Context, table *event.Table) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() // nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO events (run_id, position, record_id, starts_at, currency_code, impact, actual, forecast, previous, all_day, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for i, rec := range table.Records() {
		args := []any{s.runID, i, rec.ID()}
		for _, v := range rec.Values() {
			args = append(args, nullable(v))
		}
		args = append(args, now)

		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("inserting row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	return nil
}

// LoadRun reads back the rows saved under runID in their original order
func (s *SQLiteStore) LoadRun(ctx context.Context, runID string) (*event.Table, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT starts_at, currency_code, impact, actual, forecast, previous, all_day
		FROM events WHERE run_id = ? ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying run: %w", err)
	}
	defer rows.Close()

	table := event.NewTable()
	for rows.Next() {
		cols := make([]sql.NullString, len(event.Columns))
		dest := make([]any, len(cols))
		for i := range cols {
			dest[i] = &cols[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		vals := make([]event.Value, len(cols))
		for i, c := range cols {
			if c.Valid {
				vals[i] = event.ParseValue(c.String)
			}
		}
		table.Append(event.Record{
			Date:         vals[0],
			CurrencyCode: vals[1],
			Impact:       vals[2],
			Actual:       vals[3],
			Forecast:     vals[4],
			Previous:     vals[5],
			AllDay:       vals[6],
		})
	}
	return table, rows.Err()
}

// CountRun returns the number of rows saved under runID
func (s *SQLiteStore) CountRun(ctx context.Context, runID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events WHERE run_id = ?`, runID).Scan(&n)
	return n, err
}

func nullable(v event.Value) sql.NullString {
	if v.IsNull() {
		return sql.NullString{}
	}
	return sql.NullString{String: v.String(), Valid: true}
}

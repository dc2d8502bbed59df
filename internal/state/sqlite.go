package state

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

const metaLastCleanup = "last_cleanup"

// SQLiteStore persists the document in SQLite. Each save runs in a single
// transaction, so concurrent process invocations serialize on the database
// lock instead of clobbering each other the way the file store can.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenSQLite creates or opens a SQLite database at the given path and
// applies the schema. Idempotent; safe to call on an existing database.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode
//   - 5-second busy timeout for lock contention
func OpenSQLite(path string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect database: %w", err)
	}

	// SQLite supports one writer at a time; a single connection avoids
	// SQLITE_BUSY churn inside this process.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("execute %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db, logger: logger}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Load reads the complete document. Query failures fail open to a fresh
// empty state, logged, per the Store contract.
func (s *SQLiteStore) Load() *State {
	st, err := s.load()
	if err != nil {
		s.logger.Warn("state load failed, starting empty", "error", err)
		return NewState()
	}
	return st
}

func (s *SQLiteStore) load() (*State, error) {
	st := NewState()

	rows, err := s.db.Query(`
		SELECT id, identifier, parent, timestamp, depth
		FROM calls
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query calls: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rec CallRecord
		var ts int64
		if err := rows.Scan(&rec.ID, &rec.Identifier, &rec.Parent, &ts, &rec.Depth); err != nil {
			return nil, fmt.Errorf("scan call: %w", err)
		}
		rec.Timestamp = time.Unix(0, ts).UTC()
		st.Calls = append(st.Calls, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate calls: %w", err)
	}

	circuits, err := s.db.Query(`SELECT identifier, opened_at FROM open_circuits`)
	if err != nil {
		return nil, fmt.Errorf("query open circuits: %w", err)
	}
	defer circuits.Close()

	for circuits.Next() {
		var identifier string
		var openedAt int64
		if err := circuits.Scan(&identifier, &openedAt); err != nil {
			return nil, fmt.Errorf("scan open circuit: %w", err)
		}
		st.OpenCircuits[identifier] = time.Unix(0, openedAt).UTC()
	}
	if err := circuits.Err(); err != nil {
		return nil, fmt.Errorf("iterate open circuits: %w", err)
	}

	var lastCleanup int64
	err = s.db.QueryRow(`SELECT value FROM meta WHERE key = ?`, metaLastCleanup).Scan(&lastCleanup)
	switch {
	case err == sql.ErrNoRows:
		// Fresh database; lazy creation is the governor's job.
	case err != nil:
		return nil, fmt.Errorf("query last cleanup: %w", err)
	case lastCleanup != 0:
		st.LastCleanup = time.Unix(0, lastCleanup).UTC()
	}

	return st, nil
}

// Save replaces the complete document in one transaction.
func (s *SQLiteStore) Save(st *State) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("save state: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	for _, table := range []string{"calls", "open_circuits", "meta"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("save state: clear %s: %w", table, err)
		}
	}

	for _, rec := range st.Calls {
		_, err := tx.Exec(`
			INSERT INTO calls (id, identifier, parent, timestamp, depth)
			VALUES (?, ?, ?, ?, ?)
		`, rec.ID, rec.Identifier, rec.Parent, rec.Timestamp.UnixNano(), rec.Depth)
		if err != nil {
			return fmt.Errorf("save state: insert call: %w", err)
		}
	}

	for identifier, openedAt := range st.OpenCircuits {
		_, err := tx.Exec(`
			INSERT INTO open_circuits (identifier, opened_at)
			VALUES (?, ?)
		`, identifier, openedAt.UnixNano())
		if err != nil {
			return fmt.Errorf("save state: insert open circuit: %w", err)
		}
	}

	// Zero time has no defined UnixNano; store 0 and skip it on load.
	var lastCleanup int64
	if !st.LastCleanup.IsZero() {
		lastCleanup = st.LastCleanup.UnixNano()
	}
	_, err = tx.Exec(`
		INSERT INTO meta (key, value) VALUES (?, ?)
	`, metaLastCleanup, lastCleanup)
	if err != nil {
		return fmt.Errorf("save state: write last cleanup: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save state: commit: %w", err)
	}
	return nil
}

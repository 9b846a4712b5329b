package storage

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

const recordColumns = "id, title, filename, created_at, updated_at"

// SQLite is the default Index backend
type SQLite struct {
	db   *sql.DB
	opts options
}

// OpenSQLite creates or opens a SQLite index at the given path.
//
// The database is configured with:
//   - WAL journal with FULL synchronous mode, so every commit is durable
//   - 5-second busy timeout
//   - a single connection, held for the lifetime of the index
func OpenSQLite(path string, opts ...Option) (*SQLite, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = FULL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	o.logger.Debug("index opened", "backend", BackendSQLite, "path", path)
	return &SQLite{db: db, opts: o}, nil
}

// Close closes the database connection
func (s *SQLite) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Insert adds a note record
func (s *SQLite) Insert(title, filename string) (int64, error) {
	now := s.opts.timestamp()
	res, err := s.db.Exec(
		"INSERT INTO notes (title, filename, created_at, updated_at) VALUES (?, ?, ?, ?)",
		title, filename, now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: %s", ErrDuplicateFilename, filename)
		}
		return 0, fmt.Errorf("failed to insert note: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read note id: %w", err)
	}
	return id, nil
}

// Get returns the record with the given id, or nil if absent
func (s *SQLite) Get(id int64) (*Record, error) {
	rows, err := s.db.Query("SELECT "+recordColumns+" FROM notes WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("failed to query note: %w", err)
	}
	records, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

// List returns all records, newest first
func (s *SQLite) List() ([]Record, error) {
	rows, err := s.db.Query("SELECT " + recordColumns + " FROM notes ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	return scanRecords(rows)
}

// Search returns records whose title or filename contains query.
// instr() is used instead of LIKE because LIKE folds ASCII case.
func (s *SQLite) Search(query string) ([]Record, error) {
	if query == "" {
		return s.List()
	}
	rows, err := s.db.Query(
		"SELECT "+recordColumns+" FROM notes WHERE instr(title, ?1) > 0 OR instr(filename, ?1) > 0 ORDER BY created_at DESC, id DESC",
		query,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search notes: %w", err)
	}
	return scanRecords(rows)
}

// Delete removes the record with the given id
func (s *SQLite) Delete(id int64) (bool, error) {
	res, err := s.db.Exec("DELETE FROM notes WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete note: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}

// GetOrCreateMeta returns a meta value, creating it on first use
func (s *SQLite) GetOrCreateMeta(key string, create func() ([]byte, error)) ([]byte, error) {
	var value []byte
	err := s.db.QueryRow("SELECT value FROM meta WHERE key = ?", key).Scan(&value)
	if err == nil {
		return value, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to read meta %s: %w", key, err)
	}

	value, err = create()
	if err != nil {
		return nil, err
	}
	if _, err := s.db.Exec("INSERT INTO meta (key, value) VALUES (?, ?)", key, value); err != nil {
		return nil, fmt.Errorf("failed to store meta %s: %w", key, err)
	}
	return value, nil
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			r                Record
			created, updated string
		)
		if err := rows.Scan(&r.ID, &r.Title, &r.Filename, &created, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		var err error
		if r.CreatedAt, err = parseTimestamp(created); err != nil {
			return nil, err
		}
		if r.UpdatedAt, err = parseTimestamp(updated); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notes: %w", err)
	}
	return records, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
)

// Backend names accepted by OpenIndex
const (
	BackendSQLite = "sqlite"
	BackendBolt   = "bolt"
)

// Meta keys
const (
	MetaKDFSalt  = "kdf_salt"
	MetaKDFIters = "kdf_iterations"
	MetaStoreID  = "store_id"
	MetaKeyCheck = "key_check"
)

var (
	ErrDuplicateFilename = errors.New("filename already indexed")
	ErrUnknownBackend    = errors.New("unknown index backend")
)

// Record describes one note. The encrypted content lives in a file named Filename.
type Record struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Filename  string    `json:"filename"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Index is the durable metadata store
type Index interface {
	// Insert adds a record and returns its id. Fails with ErrDuplicateFilename
	// if the filename is already present.
	Insert(title, filename string) (int64, error)
	// Get returns nil, nil when no record has the id.
	Get(id int64) (*Record, error)
	// List returns all records, newest first.
	List() ([]Record, error)
	// Search returns records whose title or filename contains query.
	Search(query string) ([]Record, error)
	// Delete reports whether a record was removed.
	Delete(id int64) (bool, error)
	// GetOrCreateMeta returns the value stored under key, storing create()'s
	// result first if the key is missing.
	GetOrCreateMeta(key string, create func() ([]byte, error)) ([]byte, error)
	Close() error
}

// Option configures an index backend
type Option func(*options)

type options struct {
	logger *slog.Logger
	now    func() time.Time
}

func defaultOptions() options {
	return options{
		logger: slog.Default(),
		now:    time.Now,
	}
}

// WithLogger sets the logger for the index.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithNow sets the time function used for created_at/updated_at.
func WithNow(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// OpenIndex opens the index at path using the named backend
func OpenIndex(backend, path string, opts ...Option) (Index, error) {
	switch backend {
	case "", BackendSQLite:
		return OpenSQLite(path, opts...)
	case BackendBolt:
		return Open(path, opts...)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

// timestamp returns the stored form of now: second resolution, RFC3339
func (o *options) timestamp() string {
	return o.now().Truncate(time.Second).Format(time.RFC3339)
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}

// matches reports whether a record matches a search query
func matches(r *Record, query string) bool {
	return strings.Contains(r.Title, query) || strings.Contains(r.Filename, query)
}

// sortRecords orders records newest first, ties by descending id
func sortRecords(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.After(records[j].CreatedAt)
		}
		return records[i].ID > records[j].ID
	})
}

package storage

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	NotesBucket     = []byte("notes")     // id -> JSON record
	FilenamesBucket = []byte("filenames") // filename -> id, enforces uniqueness
	MetaBucket      = []byte("meta")      // KDF salt, store id
)

const lockTimeout = 5 * time.Second

// Storage is the BBolt-backed Index
type Storage struct {
	db   *bolt.DB
	path string
	opts options
}

// openBolt is swapped in tests to fail a reopen
var openBolt = bolt.Open

// Open opens or creates a BBolt index
func Open(path string, opts ...Option) (*Storage, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}

	// Fail instead of waiting forever when another process holds the file lock
	db, err := openBolt(path, 0600, &bolt.Options{Timeout: lockTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Storage{db: db, path: path, opts: o}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	o.logger.Debug("index opened", "backend", BackendBolt, "path", path)
	return s, nil
}

// Close closes the database
func (s *Storage) Close() error {
	return s.db.Close()
}

// initialize creates the bucket structure
func (s *Storage) initialize() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{NotesBucket, FilenamesBucket, MetaBucket} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})
}

// Insert adds a note record
func (s *Storage) Insert(title, filename string) (int64, error) {
	var id int64
	err := s.db.Update(func(tx *bolt.Tx) error {
		names := tx.Bucket(FilenamesBucket)
		if names.Get([]byte(filename)) != nil {
			return fmt.Errorf("%w: %s", ErrDuplicateFilename, filename)
		}

		notes := tx.Bucket(NotesBucket)
		seq, err := notes.NextSequence()
		if err != nil {
			return fmt.Errorf("failed to allocate id: %w", err)
		}
		id = int64(seq)

		ts, err := parseTimestamp(s.opts.timestamp())
		if err != nil {
			return err
		}
		data, err := json.Marshal(Record{
			ID:        id,
			Title:     title,
			Filename:  filename,
			CreatedAt: ts,
			UpdatedAt: ts,
		})
		if err != nil {
			return err
		}

		if err := notes.Put(idKey(id), data); err != nil {
			return err
		}
		return names.Put([]byte(filename), idKey(id))
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Get returns the record with the given id, or nil if absent
func (s *Storage) Get(id int64) (*Record, error) {
	var record *Record
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(NotesBucket).Get(idKey(id))
		if data == nil {
			return nil
		}
		record = &Record{}
		return json.Unmarshal(data, record)
	})
	return record, err
}

// List returns all records, newest first
func (s *Storage) List() ([]Record, error) {
	return s.collect(func(*Record) bool { return true })
}

// Search returns records whose title or filename contains query
func (s *Storage) Search(query string) ([]Record, error) {
	return s.collect(func(r *Record) bool { return matches(r, query) })
}

func (s *Storage) collect(keep func(*Record) bool) ([]Record, error) {
	var records []Record
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(NotesBucket).ForEach(func(k, v []byte) error {
			var r Record
			if err := json.Unmarshal(v, &r); err != nil {
				return fmt.Errorf("failed to decode note %x: %w", k, err)
			}
			if keep(&r) {
				records = append(records, r)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sortRecords(records)
	return records, nil
}

// Delete removes the record with the given id
func (s *Storage) Delete(id int64) (bool, error) {
	var removed bool
	err := s.db.Update(func(tx *bolt.Tx) error {
		notes := tx.Bucket(NotesBucket)
		data := notes.Get(idKey(id))
		if data == nil {
			return nil
		}

		var r Record
		if err := json.Unmarshal(data, &r); err != nil {
			return err
		}
		if err := notes.Delete(idKey(id)); err != nil {
			return err
		}
		removed = true
		return tx.Bucket(FilenamesBucket).Delete([]byte(r.Filename))
	})
	return removed, err
}

// GetOrCreateMeta returns a meta value, creating it on first use
func (s *Storage) GetOrCreateMeta(key string, create func() ([]byte, error)) ([]byte, error) {
	var value []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(MetaBucket).Get([]byte(key)); v != nil {
			// Make a copy since the slice is only valid during the transaction
			value = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil || value != nil {
		return value, err
	}

	value, err = create()
	if err != nil {
		return nil, err
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(MetaBucket).Put([]byte(key), value)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store meta %s: %w", key, err)
	}
	return value, nil
}

// Compact creates a compacted copy of the database, removing unused space.
// This is useful after deleting notes to reclaim disk space.
func (s *Storage) Compact() error {
	srcPath := s.path
	tmpPath := srcPath + ".compact"

	dst, err := openBolt(tmpPath, 0600, nil)
	if err != nil {
		return fmt.Errorf("failed to create compact database: %w", err)
	}

	// Copy all buckets, keeping sequences so ids are never reused
	err = s.db.View(func(srcTx *bolt.Tx) error {
		return dst.Update(func(dstTx *bolt.Tx) error {
			return srcTx.ForEach(func(name []byte, srcBucket *bolt.Bucket) error {
				dstBucket, err := dstTx.CreateBucketIfNotExists(name)
				if err != nil {
					return err
				}
				if err := dstBucket.SetSequence(srcBucket.Sequence()); err != nil {
					return err
				}
				return srcBucket.ForEach(func(k, v []byte) error {
					return dstBucket.Put(k, v)
				})
			})
		})
	})

	if err != nil {
		dst.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to copy data: %w", err)
	}

	if err := dst.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close compact database: %w", err)
	}

	if err := s.db.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close source database: %w", err)
	}

	// From here on the source is closed; every path reopens it
	if err := replaceFile(srcPath, tmpPath); err != nil {
		if reopenErr := s.reopen(); reopenErr != nil {
			return errors.Join(err, reopenErr)
		}
		return err
	}
	if err := s.reopen(); err != nil {
		return err
	}

	s.opts.logger.Debug("index compacted", "path", srcPath)
	return nil
}

// reopen swaps in a fresh handle on the index file. On failure s.db keeps
// the closed handle, which fails every call with bolt.ErrDatabaseNotOpen.
func (s *Storage) reopen() error {
	db, err := openBolt(s.path, 0600, &bolt.Options{Timeout: lockTimeout})
	if err != nil {
		return fmt.Errorf("failed to reopen database: %w", err)
	}
	s.db = db
	return nil
}

// replaceFile moves tmpPath over srcPath, restoring srcPath on failure
func replaceFile(srcPath, tmpPath string) error {
	backupPath := srcPath + ".backup"
	if err := os.Rename(srcPath, backupPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to backup original: %w", err)
	}
	if err := os.Rename(tmpPath, srcPath); err != nil {
		os.Rename(backupPath, srcPath) // rollback
		return fmt.Errorf("failed to replace database: %w", err)
	}
	os.Remove(backupPath)
	return nil
}

// Path returns the database file path
func (s *Storage) Path() string {
	return s.path
}

// idKey encodes an id big-endian so ForEach visits notes in id order
func idKey(id int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(id))
	return b
}

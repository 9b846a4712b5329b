package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	bolt "go.etcd.io/bbolt"
)

func TestCompact(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "notes.bolt")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	var last int64
	for _, name := range []string{"a", "b", "c"} {
		last, err = db.Insert(name, name+".md")
		if err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}
	if _, err := db.Delete(last); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if err := db.Compact(); err != nil {
		t.Fatalf("Compact failed: %v", err)
	}

	if _, err := os.Stat(dbPath + ".compact"); !os.IsNotExist(err) {
		t.Error("Temporary compact file should be gone")
	}

	records, err := db.List()
	if err != nil {
		t.Fatalf("List after compact failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records after compact, got %d", len(records))
	}

	// Sequence survives compaction so ids are not reused
	id, err := db.Insert("d", "d.md")
	if err != nil {
		t.Fatalf("Insert after compact failed: %v", err)
	}
	if id <= last {
		t.Errorf("Id reused after compact: got %d, last was %d", id, last)
	}
}

func TestCompactReopenFailure(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "notes.bolt")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	if _, err := db.Insert("a", "a.md"); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	orig := openBolt
	t.Cleanup(func() { openBolt = orig })
	openBolt = func(path string, mode os.FileMode, opts *bolt.Options) (*bolt.DB, error) {
		if strings.HasSuffix(path, ".compact") {
			return orig(path, mode, opts)
		}
		return nil, errors.New("disk gone")
	}

	if err := db.Compact(); err == nil {
		t.Fatal("Compact should report the failed reopen")
	}

	// The closed handle fails calls instead of panicking
	if _, err := db.List(); err == nil {
		t.Error("List on a closed index should fail")
	}
	if got := db.Path(); got != dbPath {
		t.Errorf("Path: got %q, want %q", got, dbPath)
	}
	if err := db.Close(); err != nil {
		t.Errorf("Close after failed reopen: %v", err)
	}

	openBolt = orig
	reopened, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer reopened.Close()
	records, err := reopened.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("Expected 1 record, got %d", len(records))
	}
}

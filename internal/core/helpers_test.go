package core

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/illarion/locknote/internal/blobstore"
	"github.com/illarion/locknote/internal/crypto"
	"github.com/illarion/locknote/internal/storage"
)

var testStart = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

// testClock only moves when told to
type testClock struct {
	t time.Time
}

func (c *testClock) Now() time.Time { return c.t }

func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type testEnv struct {
	m        *Manager
	clock    *testClock
	notesDir string
	exports  string
	enc      *crypto.Encryptor
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// noEditor fails the test if an editor is started
func noEditor(t *testing.T) Editor {
	return EditorFunc(func(command, path string) (bool, error) {
		t.Fatalf("editor %q started unexpectedly on %s", command, path)
		return false, nil
	})
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()

	dir := t.TempDir()
	clock := &testClock{t: testStart}

	index, err := storage.OpenSQLite(filepath.Join(dir, "index.db"),
		storage.WithNow(clock.Now),
		storage.WithLogger(discardLogger()),
	)
	require.NoError(t, err)

	notesDir := filepath.Join(dir, "notes")
	blobs, err := blobstore.Open(notesDir)
	require.NoError(t, err)

	enc, err := crypto.NewEncryptor(crypto.DeriveKey([]byte("test-key")))
	require.NoError(t, err)

	base := []Option{
		WithClock(clock.Now),
		WithLogger(discardLogger()),
		WithEditor(noEditor(t)),
		WithGetenv(func(string) string { return "" }),
	}
	settings := Settings{Extension: "md", ExportDir: filepath.Join(dir, "exports")}
	m := New(index, blobs, enc, settings, append(base, opts...)...)
	t.Cleanup(func() { _ = m.Close() })

	return &testEnv{
		m:        m,
		clock:    clock,
		notesDir: notesDir,
		exports:  settings.ExportDir,
		enc:      enc,
	}
}

// create adds a note and moves the clock on by a second
func (e *testEnv) create(t *testing.T, title string) *Record {
	t.Helper()
	rec, err := e.m.Create(title)
	require.NoError(t, err)
	e.clock.Advance(time.Second)
	return rec
}

func (e *testEnv) blobPath(name string) string {
	return filepath.Join(e.notesDir, name)
}

func (e *testEnv) files(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(e.notesDir)
	require.NoError(t, err)
	var names []string
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}

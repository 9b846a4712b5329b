package core

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/illarion/locknote/internal/blobstore"
	"github.com/illarion/locknote/internal/crypto"
	"github.com/illarion/locknote/internal/storage"
)

// DefaultExtension is used when no extension is configured
const DefaultExtension = "md"

// Record is the index entry of one note
type Record = storage.Record

// Settings are the configuration values the Manager consults
type Settings struct {
	Extension string // note file extension, without the dot
	Editor    string // editor command; empty falls back to $VISUAL, $EDITOR
	ExportDir string // default export target
}

// Manager composes the index, the blob store and the encryptor.
// It is not safe for concurrent use.
type Manager struct {
	index    storage.Index
	blobs    *blobstore.Store
	enc      *crypto.Encryptor
	settings Settings
	storeID  string

	now    func() time.Time
	editor Editor
	getenv func(string) string
	logger *slog.Logger
}

// Option configures a Manager
type Option func(*Manager)

// WithClock sets the time source used for generated filenames and headers.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithEditor replaces the process-spawning editor.
func WithEditor(editor Editor) Option {
	return func(m *Manager) {
		if editor != nil {
			m.editor = editor
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithGetenv sets the environment lookup used to find an editor.
func WithGetenv(getenv func(string) string) Option {
	return func(m *Manager) {
		if getenv != nil {
			m.getenv = getenv
		}
	}
}

func newManager(settings Settings, opts []Option) *Manager {
	if settings.Extension == "" {
		settings.Extension = DefaultExtension
	}
	m := &Manager{
		settings: settings,
		now:      time.Now,
		getenv:   os.Getenv,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.editor == nil {
		m.editor = NewExecEditor()
	}
	return m
}

// New creates a Manager over already opened components
func New(index storage.Index, blobs *blobstore.Store, enc *crypto.Encryptor, settings Settings, opts ...Option) *Manager {
	m := newManager(settings, opts)
	m.index = index
	m.blobs = blobs
	m.enc = enc
	return m
}

// Close releases the index, the blob directory and the key
func (m *Manager) Close() error {
	if m.enc != nil {
		m.enc.Destroy()
	}
	var errs []error
	if m.blobs != nil {
		errs = append(errs, m.blobs.Close())
	}
	if m.index != nil {
		errs = append(errs, m.index.Close())
	}
	return errors.Join(errs...)
}

// Index returns the underlying index
func (m *Manager) Index() storage.Index {
	return m.index
}

// Create writes a new encrypted note and indexes it.
// The blob is written before the row so an interruption leaves an orphan
// file rather than a row without a file.
func (m *Manager) Create(title string) (*Record, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, validationError("title cannot be empty")
	}

	now := m.now()
	filename := BlobFilename(now, title, m.settings.Extension)

	exists, err := m.blobs.Exists(filename)
	if err != nil {
		return nil, ioError("cannot check note file", filename, err)
	}
	if exists {
		return nil, ioError("note file already exists", filename, fs.ErrExist)
	}

	content, err := NewContent(title, now)
	if err != nil {
		return nil, validationError(err.Error())
	}

	envelope, err := m.enc.Encrypt(content)
	if err != nil {
		return nil, &Error{Kind: KindCrypto, Msg: "cannot encrypt note", Err: err}
	}

	if err := m.blobs.Write(filename, []byte(envelope)); err != nil {
		return nil, ioError("cannot write note file", filename, err)
	}

	id, err := m.index.Insert(title, filename)
	if err != nil {
		m.logger.Warn("note file left without index entry", "file", filename, "error", err)
		return nil, indexError("insert note", err)
	}

	m.logger.Info("created encrypted note", "id", id, "title", title, "file", filename)

	record, err := m.index.Get(id)
	if err != nil {
		return nil, indexError("read created note", err)
	}
	if record == nil {
		return nil, notFoundError(id)
	}
	return record, nil
}

// Get returns the record with the given id
func (m *Manager) Get(id int64) (*Record, error) {
	return m.lookup(id)
}

// List returns all records, newest first
func (m *Manager) List() ([]Record, error) {
	records, err := m.index.List()
	if err != nil {
		return nil, indexError("list notes", err)
	}
	return records, nil
}

// Search returns records whose title or filename contains query.
// Matching is case-sensitive; an empty query matches every record.
func (m *Manager) Search(query string) ([]Record, error) {
	records, err := m.index.Search(query)
	if err != nil {
		return nil, indexError("search notes", err)
	}
	return records, nil
}

// Read decrypts a note and returns its text
func (m *Manager) Read(id int64) (string, error) {
	record, err := m.lookup(id)
	if err != nil {
		return "", err
	}

	plaintext, err := m.decryptBlob(record)
	if err != nil {
		return "", err
	}

	if !utf8.Valid(plaintext) {
		return "", &Error{Kind: KindValidation, ID: id, Msg: "note content is not valid UTF-8 text"}
	}
	return string(plaintext), nil
}

// Edit opens a decrypted copy of a note in the editor and stores the result.
//
// The editor is resolved before anything is read. The plaintext goes to a
// temp sibling of the blob, and Edit refuses to start while an earlier temp
// file is still there; if the editor fails the temp file is removed and
// the blob is untouched. After a successful session the blob is overwritten
// first and the temp file removed second, so a failure at the very end only
// leaves a stray temp file. updated_at is left as it was.
func (m *Manager) Edit(id int64) (*EditResult, error) {
	command, err := resolveEditor(m.settings.Editor, m.getenv)
	if err != nil {
		return nil, err
	}

	record, err := m.lookup(id)
	if err != nil {
		return nil, err
	}

	plaintext, err := m.decryptBlob(record)
	if err != nil {
		return nil, err
	}
	defer crypto.ClearBytes(plaintext)

	tempName := blobstore.TempName(record.Filename)
	tempPath, err := m.blobs.Path(tempName)
	if err != nil {
		return nil, ioError("invalid temp file name", tempName, err)
	}
	leftover, err := m.blobs.Exists(tempName)
	if err != nil {
		return nil, ioError("cannot check temp file", tempPath, err)
	}
	if leftover {
		// May hold edits from a session that could not be saved
		return nil, ioError("leftover temp file from an earlier edit, recover or remove it first", tempPath, nil)
	}
	if err := m.blobs.Write(tempName, plaintext); err != nil {
		return nil, ioError("cannot write temp file", tempPath, err)
	}

	m.logger.Debug("opening editor", "editor", command, "file", tempPath)

	ok, runErr := m.editor.Edit(command, tempPath)
	if runErr != nil || !ok {
		m.removeTemp(tempName)
		if runErr != nil {
			return nil, &Error{Kind: KindEditor, ID: id, Msg: fmt.Sprintf("cannot run %q", command), Err: runErr}
		}
		return nil, &Error{Kind: KindEditor, ID: id, Msg: "editor exited with non-zero status"}
	}

	edited, err := m.blobs.Read(tempName)
	if err != nil {
		m.removeTemp(tempName)
		return nil, ioError("cannot read edited file", tempPath, err)
	}
	defer crypto.ClearBytes(edited)

	envelope, err := m.enc.Encrypt(edited)
	if err != nil {
		m.removeTemp(tempName)
		return nil, &Error{Kind: KindCrypto, ID: id, Msg: "cannot encrypt note", Err: err}
	}

	if err := m.blobs.Write(record.Filename, []byte(envelope)); err != nil {
		// The temp file still holds the user's edits
		m.logger.Error("note not updated, edits kept in temp file", "id", id, "temp", tempPath, "error", err)
		return nil, ioError("cannot write note file", record.Filename, err)
	}

	m.removeTemp(tempName)

	res := diffLines(plaintext, edited)
	m.logger.Info("edited note", "id", id, "changed", res.Changed, "inserted", res.Inserted, "deleted", res.Deleted)
	return &res, nil
}

// Delete removes a note. It returns false when no record has the id.
// The blob goes first; a missing blob is not an error.
func (m *Manager) Delete(id int64) (bool, error) {
	record, err := m.index.Get(id)
	if err != nil {
		return false, indexError("get note", err)
	}
	if record == nil {
		return false, nil
	}

	if err := m.blobs.Remove(record.Filename); err != nil {
		return false, ioError("cannot remove note file", record.Filename, err)
	}

	if _, err := m.index.Delete(id); err != nil {
		return false, indexError("delete note", err)
	}

	m.logger.Info("deleted note", "id", id, "file", record.Filename)
	return true, nil
}

// lookup fetches a record or fails NotFound
func (m *Manager) lookup(id int64) (*Record, error) {
	record, err := m.index.Get(id)
	if err != nil {
		return nil, indexError("get note", err)
	}
	if record == nil {
		return nil, notFoundError(id)
	}
	return record, nil
}

// decryptBlob reads and decrypts a record's blob. A missing file is an IO
// failure: the row exists but its file does not.
func (m *Manager) decryptBlob(record *Record) ([]byte, error) {
	data, err := m.blobs.Read(record.Filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &Error{Kind: KindIO, ID: record.ID, Msg: "note file is missing", Path: record.Filename, Err: err}
		}
		return nil, ioError("cannot read note file", record.Filename, err)
	}

	plaintext, err := m.enc.Decrypt(string(data))
	if err != nil {
		return nil, cryptoError(record.ID, err)
	}
	return plaintext, nil
}

func (m *Manager) removeTemp(name string) {
	if err := m.blobs.Remove(name); err != nil {
		m.logger.Warn("temp file left behind", "file", name, "error", err)
	}
}

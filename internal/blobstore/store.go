package blobstore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	DirPerm  = 0700 // Directory: owner rwx only
	FilePerm = 0600 // File: owner rw only

	// TempSuffix marks editor working copies. Blob names end in the notes
	// extension, so a temp name never collides with a blob.
	TempSuffix = ".edit"
)

var (
	ErrEmptyName   = errors.New("empty blob name")
	ErrInvalidName = errors.New("blob name must be a single local file name")
)

// Store is a directory of blob files
type Store struct {
	root *os.Root
	dir  string
}

// Open creates the directory if needed and confines all access to it
func Open(dir string) (*Store, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	if err := os.MkdirAll(absDir, DirPerm); err != nil {
		return nil, fmt.Errorf("failed to create notes directory: %w", err)
	}

	root, err := os.OpenRoot(absDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open notes directory: %w", err)
	}

	return &Store{root: root, dir: absDir}, nil
}

// Close releases the directory handle
func (s *Store) Close() error {
	if s.root != nil {
		return s.root.Close()
	}
	return nil
}

// Dir returns the absolute notes directory
func (s *Store) Dir() string {
	return s.dir
}

// ValidateName rejects empty names, absolute paths, traversal and
// anything containing a separator.
func ValidateName(name string) error {
	if name == "" {
		return ErrEmptyName
	}
	if name == "." || !filepath.IsLocal(name) || filepath.Base(name) != name || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %s", ErrInvalidName, name)
	}
	return nil
}

// Path returns the absolute path of a blob, for handing to external programs
func (s *Store) Path(name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, name), nil
}

// TempName returns the editor working-copy name for a blob
func TempName(name string) string {
	return name + TempSuffix
}

// IsTemp reports whether a name is an editor working copy
func IsTemp(name string) bool {
	return strings.HasSuffix(name, TempSuffix)
}

// Write creates or truncates a blob
func (s *Store) Write(name string, data []byte) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	return s.root.WriteFile(name, data, FilePerm)
}

// Read returns a blob's bytes. A missing blob yields an error matching fs.ErrNotExist.
func (s *Store) Read(name string) ([]byte, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	return s.root.ReadFile(name)
}

// Exists reports whether a blob file is present
func (s *Store) Exists(name string) (bool, error) {
	if err := ValidateName(name); err != nil {
		return false, err
	}
	_, err := s.root.Stat(name)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Remove deletes a blob. A missing blob is not an error.
func (s *Store) Remove(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	err := s.root.Remove(name)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Names lists the regular files in the directory, sorted
func (s *Store) Names() ([]string, error) {
	dir, err := s.root.Open(".")
	if err != nil {
		return nil, fmt.Errorf("failed to open notes directory: %w", err)
	}
	defer dir.Close()

	entries, err := dir.ReadDir(-1)
	if err != nil {
		return nil, fmt.Errorf("failed to read notes directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

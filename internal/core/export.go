package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/illarion/locknote/internal/crypto"
)

const (
	ExportDirPerm  = 0700
	ExportFilePerm = 0600
)

// ExportFailure describes one note that could not be exported
type ExportFailure struct {
	ID    int64
	Title string
	Err   error
}

// ExportReport is the outcome of ExportAll
type ExportReport struct {
	Dir       string
	Succeeded int
	Total     int
	Files     []string // paths written, in listing order
	Failures  []ExportFailure
}

// Counts returns (successCount, totalCount)
func (r *ExportReport) Counts() (int, int) {
	return r.Succeeded, r.Total
}

// ExportAll writes a decrypted copy of every note into dir, or the configured
// export directory when dir is empty. A failing note is logged and recorded in
// the report; the batch carries on. With no notes nothing is touched on disk.
// Two notes with the same sanitized title write the same file; the later
// one in listing order wins.
func (m *Manager) ExportAll(dir string) (*ExportReport, error) {
	records, err := m.List()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return &ExportReport{}, nil
	}

	dir, err = m.exportDir(dir)
	if err != nil {
		return nil, err
	}

	report := &ExportReport{Dir: dir, Total: len(records)}
	for i := range records {
		record := &records[i]
		path := filepath.Join(dir, ExportFilename(record.Title, m.settings.Extension))

		if err := m.exportTo(record, path); err != nil {
			m.logger.Error("failed to export note", "id", record.ID, "title", record.Title, "error", err)
			report.Failures = append(report.Failures, ExportFailure{ID: record.ID, Title: record.Title, Err: err})
			continue
		}
		report.Succeeded++
		report.Files = append(report.Files, path)
	}

	m.logger.Info("export finished", "dir", dir, "exported", report.Succeeded, "total", report.Total)
	return report, nil
}

// ExportOne writes a decrypted copy of one note and returns the path written.
// An empty path means the configured export directory; a path naming an
// existing directory gets the note's export filename appended.
func (m *Manager) ExportOne(id int64, path string) (string, error) {
	record, err := m.lookup(id)
	if err != nil {
		return "", err
	}

	name := ExportFilename(record.Title, m.settings.Extension)
	switch {
	case path == "":
		dir, err := m.exportDir("")
		if err != nil {
			return "", err
		}
		path = filepath.Join(dir, name)
	case isDir(path) || strings.HasSuffix(path, string(filepath.Separator)):
		path = filepath.Join(path, name)
	}

	if err := os.MkdirAll(filepath.Dir(path), ExportDirPerm); err != nil {
		return "", &Error{Kind: KindExport, ID: id, Msg: "cannot create export directory", Path: filepath.Dir(path), Err: err}
	}

	if err := m.exportTo(record, path); err != nil {
		return "", err
	}

	m.logger.Info("exported note", "id", id, "path", path)
	return path, nil
}

// exportTo decrypts one note into path
func (m *Manager) exportTo(record *Record, path string) error {
	plaintext, err := m.decryptBlob(record)
	if err != nil {
		return &Error{Kind: KindExport, ID: record.ID, Msg: "cannot decrypt note", Path: path, Err: err}
	}
	defer crypto.ClearBytes(plaintext)

	if err := os.WriteFile(path, plaintext, ExportFilePerm); err != nil {
		return &Error{Kind: KindExport, ID: record.ID, Msg: "cannot write export file", Path: path, Err: err}
	}
	return nil
}

// exportDir resolves and creates the export directory
func (m *Manager) exportDir(dir string) (string, error) {
	if dir == "" {
		dir = m.settings.ExportDir
	}
	if dir == "" {
		return "", validationError("no export directory given and none configured")
	}

	info, err := os.Stat(dir)
	switch {
	case err == nil && !info.IsDir():
		return "", &Error{Kind: KindExport, Msg: "export target is not a directory", Path: dir}
	case err != nil && !errors.Is(err, os.ErrNotExist):
		return "", &Error{Kind: KindExport, Msg: "cannot access export directory", Path: dir, Err: err}
	}

	if err := os.MkdirAll(dir, ExportDirPerm); err != nil {
		return "", &Error{Kind: KindExport, Msg: "cannot create export directory", Path: dir, Err: err}
	}
	return dir, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// String renders a one-line summary, used by the CLI
func (f ExportFailure) String() string {
	return fmt.Sprintf("[%d] %s: %v", f.ID, f.Title, f.Err)
}

package core

import (
	"strings"

	"github.com/illarion/locknote/internal/blobstore"
)

// OrphanReport lists files in the notes directory that no record owns
type OrphanReport struct {
	Blobs []string // note files without an index entry
	Temps []string // editor working copies left behind
}

// Empty reports whether nothing was found
func (r *OrphanReport) Empty() bool {
	return len(r.Blobs) == 0 && len(r.Temps) == 0
}

// Orphans scans the notes directory for files left by interrupted operations.
// Only names carrying the notes extension are considered. The index is only read.
func (m *Manager) Orphans() (*OrphanReport, error) {
	records, err := m.List()
	if err != nil {
		return nil, err
	}
	owned := make(map[string]bool, len(records))
	for _, r := range records {
		owned[r.Filename] = true
	}

	names, err := m.blobs.Names()
	if err != nil {
		return nil, ioError("cannot scan notes directory", m.blobs.Dir(), err)
	}

	suffix := "." + normalizeExt(m.settings.Extension)
	report := &OrphanReport{}
	for _, name := range names {
		switch {
		case owned[name]:
		case blobstore.IsTemp(name) && strings.HasSuffix(strings.TrimSuffix(name, blobstore.TempSuffix), suffix):
			report.Temps = append(report.Temps, name)
		case strings.HasSuffix(name, suffix):
			report.Blobs = append(report.Blobs, name)
		}
	}
	return report, nil
}

// Prune removes the files Orphans reports and returns what was removed
func (m *Manager) Prune() (*OrphanReport, error) {
	report, err := m.Orphans()
	if err != nil {
		return nil, err
	}

	for _, name := range append(append([]string{}, report.Blobs...), report.Temps...) {
		if err := m.blobs.Remove(name); err != nil {
			return nil, ioError("cannot remove orphan file", name, err)
		}
		m.logger.Info("removed orphan file", "file", name)
	}
	return report, nil
}

package git

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// ExportStatus describes how git sees a set of exported files
type ExportStatus struct {
	IsRepo    bool
	Dir       string
	Tracked   []string // Exported files tracked by git (bad)
	Unignored []string // Exported files not ignored (warning)
	Ignored   []string // Exported files ignored (good)
}

// Exposed reports whether any exported file could end up in a commit
func (s *ExportStatus) Exposed() bool {
	return len(s.Tracked) > 0 || len(s.Unignored) > 0
}

// IsGitRepo checks if dir is inside a git work tree
func IsGitRepo(dir string) bool {
	cmd := exec.Command("git", "rev-parse", "--is-inside-work-tree")
	cmd.Dir = dir
	return cmd.Run() == nil
}

// IsTracked checks if a file is tracked by git
func IsTracked(dir, path string) bool {
	cmd := exec.Command("git", "ls-files", "--", path)
	cmd.Dir = dir
	output, err := cmd.Output()
	if err != nil {
		return false
	}
	return len(strings.TrimSpace(string(output))) > 0
}

// IsIgnored checks if a file is ignored by git (handles all .gitignore files)
func IsIgnored(dir, path string) bool {
	cmd := exec.Command("git", "check-ignore", "-q", "--", path)
	cmd.Dir = dir

	// git check-ignore returns exit code 0 if file is ignored
	return cmd.Run() == nil
}

// CheckExport inspects exported files, given as paths. Files are checked
// relative to their own directory so exports spread over several
// directories are handled.
func CheckExport(dir string, files []string) *ExportStatus {
	status := &ExportStatus{Dir: dir}
	if !IsGitRepo(dir) {
		return status
	}
	status.IsRepo = true

	for _, file := range files {
		fileDir, name := filepath.Split(file)
		if fileDir == "" {
			fileDir = dir
		}

		switch {
		case IsTracked(fileDir, name):
			status.Tracked = append(status.Tracked, file)
		case IsIgnored(fileDir, name):
			status.Ignored = append(status.Ignored, file)
		default:
			status.Unignored = append(status.Unignored, file)
		}
	}
	return status
}

// FormatExportStatus formats the status for display; empty when dir is not a repository
func FormatExportStatus(status *ExportStatus) string {
	if !status.IsRepo {
		return ""
	}

	var result strings.Builder
	result.WriteString("\nGit:\n")

	if len(status.Tracked) > 0 {
		result.WriteString(fmt.Sprintf("   error: %d exported note(s) tracked by git:\n", len(status.Tracked)))
		for _, file := range status.Tracked {
			result.WriteString(fmt.Sprintf("      - %s (run: git rm --cached %s)\n", file, file))
		}
	}

	for _, file := range status.Unignored {
		result.WriteString(fmt.Sprintf("   warning: %s is plaintext and not in .gitignore\n", file))
	}

	if !status.Exposed() && len(status.Ignored) > 0 {
		result.WriteString(fmt.Sprintf("   ok: %d exported note(s) in .gitignore\n", len(status.Ignored)))
	}

	return result.String()
}

package core

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Editor runs an interactive editor on path and blocks until it exits.
// ok is false when the editor ran but exited non-zero; err is set when it
// could not be started.
type Editor interface {
	Edit(command, path string) (ok bool, err error)
}

// EditorFunc adapts a function to Editor
type EditorFunc func(command, path string) (bool, error)

func (f EditorFunc) Edit(command, path string) (bool, error) {
	return f(command, path)
}

// ExecEditor starts the editor as a child process attached to the terminal
type ExecEditor struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewExecEditor returns an ExecEditor wired to the process's stdio
func NewExecEditor() *ExecEditor {
	return &ExecEditor{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

// Edit runs command with path as its last argument. The command may carry
// its own flags, e.g. "code --wait".
func (e *ExecEditor) Edit(command, path string) (bool, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return false, fmt.Errorf("empty editor command")
	}

	// Check if editor is available
	if _, err := exec.LookPath(fields[0]); err != nil {
		return false, fmt.Errorf("editor '%s' not found: %w", fields[0], err)
	}

	cmd := exec.Command(fields[0], append(fields[1:], path)...)
	cmd.Stdin = e.Stdin
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr

	err := cmd.Run()
	if err == nil {
		return true, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return false, nil
	}
	return false, err
}

// resolveEditor picks the configured editor, then $VISUAL, then $EDITOR
func resolveEditor(configured string, getenv func(string) string) (string, error) {
	if editor := strings.TrimSpace(configured); editor != "" {
		return editor, nil
	}
	for _, name := range []string{"VISUAL", "EDITOR"} {
		if editor := strings.TrimSpace(getenv(name)); editor != "" {
			return editor, nil
		}
	}
	return "", ErrEditorNotFound
}

package core

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/illarion/locknote/internal/crypto"
)

// ErrNotTerminal is returned when a secret is requested but stdin is not a terminal
var ErrNotTerminal = errors.New("stdin is not a terminal")

// ReadSecret reads a secret from the terminal without echoing
func ReadSecret(prompt string) ([]byte, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, ErrNotTerminal
	}

	fmt.Fprint(os.Stderr, prompt)
	secret, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)

	if err != nil {
		return nil, fmt.Errorf("failed to read encryption key: %w", err)
	}
	return secret, nil
}

// ReadSecretConfirm reads a secret twice and ensures they match
func ReadSecretConfirm() ([]byte, error) {
	first, err := ReadSecret("Encryption key: ")
	if err != nil {
		return nil, err
	}
	defer crypto.ClearBytes(first)

	second, err := ReadSecret("Confirm encryption key: ")
	if err != nil {
		return nil, err
	}
	defer crypto.ClearBytes(second)

	if subtle.ConstantTimeCompare(first, second) != 1 {
		return nil, fmt.Errorf("keys do not match")
	}

	result := make([]byte, len(first))
	copy(result, first)
	return result, nil
}

// Confirm asks a yes/no question, reading a single key in raw mode when
// stdin is a terminal and a whole line otherwise. Anything but y is no.
func Confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N]: ", question)

	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		oldState, err := term.MakeRaw(int(f.Fd()))
		if err == nil {
			defer func() { _ = term.Restore(int(f.Fd()), oldState) }()

			buf := make([]byte, 1)
			if _, err := f.Read(buf); err != nil {
				return false, err
			}
			choice := strings.ToLower(string(buf[0]))
			fmt.Fprintf(out, "%s\r\n", choice)
			return choice == "y", nil
		}
	}

	var line string
	if _, err := fmt.Fscanln(in, &line); err != nil && line == "" {
		return false, nil
	}
	return strings.EqualFold(strings.TrimSpace(line), "y"), nil
}

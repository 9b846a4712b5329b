package core

import (
	"errors"
	"fmt"
)

// Kind classifies a failure
type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindCrypto
	KindIO
	KindEditorNotFound
	KindEditor
	KindExport
	KindIndex
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not found"
	case KindCrypto:
		return "crypto"
	case KindIO:
		return "io"
	case KindEditorNotFound:
		return "editor not found"
	case KindEditor:
		return "editor"
	case KindExport:
		return "export"
	case KindIndex:
		return "index"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is the single error type returned by Manager operations.
// Index backend errors are flattened into Msg and never exposed via Unwrap.
type Error struct {
	Kind Kind
	ID   int64  // note id, when the failure concerns one note
	Path string // file path, when the failure concerns one file
	Msg  string
	Err  error
}

// Sentinels for errors.Is; they match any *Error of the same Kind.
var (
	ErrValidation     = &Error{Kind: KindValidation}
	ErrNotFound       = &Error{Kind: KindNotFound}
	ErrCrypto         = &Error{Kind: KindCrypto}
	ErrIO             = &Error{Kind: KindIO}
	ErrEditorNotFound = &Error{Kind: KindEditorNotFound}
	ErrEditor         = &Error{Kind: KindEditor}
	ErrExport         = &Error{Kind: KindExport}
	ErrIndex          = &Error{Kind: KindIndex}
)

func (e *Error) Error() string {
	var msg string
	switch e.Kind {
	case KindNotFound:
		msg = fmt.Sprintf("note %d not found", e.ID)
	case KindEditorNotFound:
		msg = "no editor configured: set 'editor' in config.toml or the VISUAL/EDITOR environment variable"
	default:
		msg = e.Kind.String() + " error"
	}
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	if e.Path != "" {
		msg += " (" + e.Path + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on Kind so callers can test errors.Is(err, core.ErrNotFound)
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf returns the Kind of err, or 0 if err is not a *Error
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func validationError(msg string) *Error {
	return &Error{Kind: KindValidation, Msg: msg}
}

func notFoundError(id int64) *Error {
	return &Error{Kind: KindNotFound, ID: id}
}

func ioError(msg, path string, err error) *Error {
	return &Error{Kind: KindIO, Msg: msg, Path: path, Err: err}
}

func cryptoError(id int64, err error) *Error {
	return &Error{Kind: KindCrypto, ID: id, Msg: "cannot decrypt note", Err: err}
}

// indexError flattens a backend error so its native type does not escape
func indexError(op string, err error) *Error {
	return &Error{Kind: KindIndex, Msg: fmt.Sprintf("%s: %v", op, err)}
}

package core

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

const (
	// MaxSanitizedLen caps Sanitize output, in characters
	MaxSanitizedLen = 255

	filenameTimeLayout = "20060102-150405"
	fallbackName       = "note"
)

// Sanitize maps a title to a safe file name stem: every rune that is not a
// letter, digit, '-' or '_' becomes '-', leading and trailing '-' are trimmed,
// and the result is capped at MaxSanitizedLen characters.
// A title with nothing left after trimming becomes "note".
func Sanitize(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	for _, r := range title {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('-')
		}
	}

	s := strings.Trim(b.String(), "-")
	if utf8.RuneCountInString(s) > MaxSanitizedLen {
		s = string([]rune(s)[:MaxSanitizedLen])
	}
	if s == "" {
		return fallbackName
	}
	return s
}

// BlobFilename builds {YYYYMMDD-HHMMSS}-{sanitized-title}.{ext}
func BlobFilename(now time.Time, title, ext string) string {
	return now.Format(filenameTimeLayout) + "-" + Sanitize(title) + "." + normalizeExt(ext)
}

// ExportFilename builds {sanitized-title}.{ext}
func ExportFilename(title, ext string) string {
	return Sanitize(title) + "." + normalizeExt(ext)
}

func normalizeExt(ext string) string {
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	if ext == "" {
		return DefaultExtension
	}
	return ext
}

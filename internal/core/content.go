package core

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const headerDateLayout = "2006-01-02 15:04:05"

var (
	frontmatterFence = []byte("---\n")

	errNoClosingFence = errors.New("front matter started but no closing delimiter found")
)

// Header is the YAML front matter written at the top of every new note
type Header struct {
	Title string `yaml:"title"`
	Date  string `yaml:"date"`
}

// Note is decrypted note content split into header and body
type Note struct {
	Header Header
	Body   string
}

// NewContent renders the initial content of a note: front matter with the
// title and creation time, then an empty body.
//
// The title is written as a YAML scalar, so titles YAML would misread
// (`it's: x`, `yes`, `- dash`) appear quoted in the header. ParseNote
// returns the title exactly as given.
func NewContent(title string, created time.Time) ([]byte, error) {
	meta, err := yaml.Marshal(Header{Title: title, Date: created.Format(headerDateLayout)})
	if err != nil {
		return nil, fmt.Errorf("failed to render header: %w", err)
	}

	var buf bytes.Buffer
	buf.Write(frontmatterFence)
	buf.Write(meta)
	buf.Write(frontmatterFence)
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// ParseNote splits content into front matter and body. Content without a
// leading fence is all body.
func ParseNote(content string) (*Note, error) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	if !strings.HasPrefix(content, string(frontmatterFence)) {
		return &Note{Body: content}, nil
	}

	rest := content[len(frontmatterFence):]
	end := strings.Index(rest, "\n---\n")
	var meta, body string
	switch {
	case strings.HasPrefix(rest, string(frontmatterFence)):
		body = rest[len(frontmatterFence):]
	case end >= 0:
		meta = rest[:end+1]
		body = rest[end+len("\n---\n"):]
	case strings.HasSuffix(rest, "\n---"):
		meta = strings.TrimSuffix(rest, "---")
	default:
		return nil, errNoClosingFence
	}

	n := &Note{Body: strings.TrimPrefix(body, "\n")}
	if err := yaml.Unmarshal([]byte(meta), &n.Header); err != nil {
		return nil, fmt.Errorf("failed to parse front matter: %w", err)
	}
	return n, nil
}

package core

import (
	"bytes"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// EditResult summarises what an editor session changed
type EditResult struct {
	Changed  bool
	Inserted int // lines added
	Deleted  int // lines removed
}

// diffLines compares two contents line by line
func diffLines(before, after []byte) EditResult {
	if bytes.Equal(before, after) {
		return EditResult{}
	}

	dmp := diffmatchpatch.New()

	// Line-mode diff
	a, b, lineArray := dmp.DiffLinesToChars(string(before), string(after))
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	res := EditResult{Changed: true}
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			res.Inserted += countLines(d.Text)
		case diffmatchpatch.DiffDelete:
			res.Deleted += countLines(d.Text)
		}
	}
	return res
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	n := strings.Count(s, "\n")
	if !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
}

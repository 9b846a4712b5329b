package cmd

import (
	"bytes"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/illarion/locknote/internal/core"
)

func fixtureRecords() []core.Record {
	base := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	return []core.Record{
		{ID: 3, Title: "Alphabet soup", Filename: "20240301-093002-Alphabet-soup.md", CreatedAt: base.Add(2 * time.Second), UpdatedAt: base.Add(2 * time.Second)},
		{ID: 2, Title: "beta", Filename: "20240301-093001-beta.md", CreatedAt: base.Add(time.Second), UpdatedAt: base.Add(time.Second)},
		{ID: 1, Title: "Alpha", Filename: "20240301-093000-Alpha.md", CreatedAt: base, UpdatedAt: base},
	}
}

func TestPrintRecords_Golden(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	tests := []struct {
		name  string
		flags listFlags
	}{
		{"list_default", listFlags{}},
		{"list_long", listFlags{long: true}},
		{"list_json", listFlags{json: true}},
	}

	g := goldie.New(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, printRecords(&buf, fixtureRecords(), &tt.flags))
			g.Assert(t, tt.name, buf.Bytes())
		})
	}
}

func TestPrintRecords_EmptyJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printRecords(&buf, nil, &listFlags{json: true}))
	require.Equal(t, "[]\n", buf.String())
}

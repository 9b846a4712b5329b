package core

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreate_EmptyTitle(t *testing.T) {
	env := newTestEnv(t)

	for _, title := range []string{"", "   ", "\t\n"} {
		_, err := env.m.Create(title)
		assert.ErrorIs(t, err, ErrValidation, "title %q", title)
	}

	records, err := env.m.List()
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Empty(t, env.files(t))
}

func TestCreate_WritesBlobAndRow(t *testing.T) {
	env := newTestEnv(t)

	rec, err := env.m.Create("Report")
	require.NoError(t, err)

	assert.Equal(t, "Report", rec.Title)
	assert.Equal(t, "20240301-093000-Report.md", rec.Filename)
	assert.True(t, rec.CreatedAt.Equal(testStart))
	assert.True(t, rec.UpdatedAt.Equal(testStart))

	records, err := env.m.List()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, []string{rec.Filename}, env.files(t))

	info, err := os.Stat(env.blobPath(rec.Filename))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	// The blob is ciphertext, not the title
	raw, err := os.ReadFile(env.blobPath(rec.Filename))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "Report")

	text, err := env.m.Read(rec.ID)
	require.NoError(t, err)
	assert.Contains(t, text, "Report")

	note, err := ParseNote(text)
	require.NoError(t, err)
	assert.Equal(t, "Report", note.Header.Title)
	assert.Equal(t, "2024-03-01 09:30:00", note.Header.Date)
	assert.Empty(t, note.Body)
}

func TestCreate_TrimsTitle(t *testing.T) {
	env := newTestEnv(t)

	rec, err := env.m.Create("  Weekly plan  ")
	require.NoError(t, err)
	assert.Equal(t, "Weekly plan", rec.Title)
	assert.Equal(t, "20240301-093000-Weekly-plan.md", rec.Filename)
}

func TestCreate_SameSecondCollision(t *testing.T) {
	env := newTestEnv(t)

	first, err := env.m.Create("Twice")
	require.NoError(t, err)
	before, err := os.ReadFile(env.blobPath(first.Filename))
	require.NoError(t, err)

	_, err = env.m.Create("Twice")
	assert.ErrorIs(t, err, ErrIO)

	records, err := env.m.List()
	require.NoError(t, err)
	assert.Len(t, records, 1)

	after, err := os.ReadFile(env.blobPath(first.Filename))
	require.NoError(t, err)
	assert.Equal(t, before, after, "existing note must not be overwritten")
}

func TestCreateThenRead_RoundTrip(t *testing.T) {
	env := newTestEnv(t)

	titles := []string{"Groceries", "Ünïcödé tïtle", "a/b\\c"}
	for _, title := range titles {
		rec := env.create(t, title)

		text, err := env.m.Read(rec.ID)
		require.NoError(t, err)

		note, err := ParseNote(text)
		require.NoError(t, err)
		assert.Equal(t, title, note.Header.Title)
	}
}

func TestRead_Errors(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.m.Read(42)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Equal(t, KindNotFound, KindOf(err))
	})

	t.Run("missing blob", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.create(t, "gone")
		require.NoError(t, os.Remove(env.blobPath(rec.Filename)))

		_, err := env.m.Read(rec.ID)
		assert.ErrorIs(t, err, ErrIO)
	})

	t.Run("corrupt blob", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.create(t, "broken")
		require.NoError(t, os.WriteFile(env.blobPath(rec.Filename), []byte("not an envelope!"), 0600))

		_, err := env.m.Read(rec.ID)
		assert.ErrorIs(t, err, ErrCrypto)
	})

	t.Run("not utf-8", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.create(t, "binary")
		envelope, err := env.enc.Encrypt([]byte{0xff, 0xfe, 0x00})
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(env.blobPath(rec.Filename), []byte(envelope), 0600))

		_, err = env.m.Read(rec.ID)
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestGet(t *testing.T) {
	env := newTestEnv(t)
	rec := env.create(t, "lookup")

	got, err := env.m.Get(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.Filename, got.Filename)

	_, err = env.m.Get(rec.ID + 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestList_NewestFirst(t *testing.T) {
	env := newTestEnv(t)
	a := env.create(t, "first")
	b := env.create(t, "second")
	c := env.create(t, "third")

	records, err := env.m.List()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []int64{c.ID, b.ID, a.ID}, []int64{records[0].ID, records[1].ID, records[2].ID})
}

func TestSearch(t *testing.T) {
	env := newTestEnv(t)
	env.create(t, "Alpha")
	env.create(t, "beta")
	env.create(t, "Alphabet soup")

	tests := []struct {
		query string
		want  []string
	}{
		{"Alpha", []string{"Alphabet soup", "Alpha"}},
		{"alpha", nil},
		{"soup", []string{"Alphabet soup"}},
		{"-soup.md", []string{"Alphabet soup"}},
		{"20240301-0930", []string{"Alphabet soup", "beta", "Alpha"}},
		{"", []string{"Alphabet soup", "beta", "Alpha"}},
		{"zzz", nil},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			records, err := env.m.Search(tt.query)
			require.NoError(t, err)

			var got []string
			for _, r := range records {
				got = append(got, r.Title)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDelete(t *testing.T) {
	t.Run("unknown id", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.create(t, "keep")

		ok, err := env.m.Delete(rec.ID + 100)
		require.NoError(t, err)
		assert.False(t, ok)

		records, err := env.m.List()
		require.NoError(t, err)
		assert.Len(t, records, 1)
		assert.Equal(t, []string{rec.Filename}, env.files(t))
	})

	t.Run("existing", func(t *testing.T) {
		env := newTestEnv(t)
		keep := env.create(t, "keep")
		drop := env.create(t, "drop")

		ok, err := env.m.Delete(drop.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		_, err = os.Stat(env.blobPath(drop.Filename))
		assert.True(t, errors.Is(err, os.ErrNotExist))

		_, err = env.m.Get(drop.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Equal(t, []string{keep.Filename}, env.files(t))
	})

	t.Run("missing blob", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.create(t, "dangling")
		require.NoError(t, os.Remove(env.blobPath(rec.Filename)))

		ok, err := env.m.Delete(rec.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		records, err := env.m.List()
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}

func TestEdit_Success(t *testing.T) {
	var gotCommand string
	editor := EditorFunc(func(command, path string) (bool, error) {
		gotCommand = command
		data, err := os.ReadFile(path)
		if err != nil {
			return false, err
		}
		return true, os.WriteFile(path, append(data, []byte("buy milk\n")...), 0600)
	})
	env := newTestEnv(t, WithEditor(editor), WithGetenv(func(name string) string {
		if name == "EDITOR" {
			return "vi"
		}
		return ""
	}))

	rec := env.create(t, "Todo")
	env.clock.Advance(time.Hour)

	res, err := env.m.Edit(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "vi", gotCommand)
	assert.Equal(t, EditResult{Changed: true, Inserted: 1}, *res)

	text, err := env.m.Read(rec.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(text, "buy milk\n"))

	// Only the blob remains
	assert.Equal(t, []string{rec.Filename}, env.files(t))

	// Metadata is untouched
	got, err := env.m.Get(rec.ID)
	require.NoError(t, err)
	assert.True(t, got.UpdatedAt.Equal(rec.UpdatedAt))
	assert.Equal(t, rec.Filename, got.Filename)
}

func TestEdit_Unchanged(t *testing.T) {
	editor := EditorFunc(func(string, string) (bool, error) { return true, nil })
	env := newTestEnv(t, WithEditor(editor), WithGetenv(func(string) string { return "ed" }))

	rec := env.create(t, "Same")
	res, err := env.m.Edit(rec.ID)
	require.NoError(t, err)
	assert.False(t, res.Changed)
}

func TestEdit_EditorPrecedence(t *testing.T) {
	var gotCommand string
	editor := EditorFunc(func(command, _ string) (bool, error) {
		gotCommand = command
		return true, nil
	})
	env := map[string]string{"VISUAL": "code --wait", "EDITOR": "vi"}
	getenv := func(k string) string { return env[k] }

	t.Run("visual over editor", func(t *testing.T) {
		te := newTestEnv(t, WithEditor(editor), WithGetenv(getenv))
		rec := te.create(t, "x")
		_, err := te.m.Edit(rec.ID)
		require.NoError(t, err)
		assert.Equal(t, "code --wait", gotCommand)
	})

	t.Run("configured over environment", func(t *testing.T) {
		te := newTestEnv(t, WithEditor(editor), WithGetenv(getenv))
		te.m.settings.Editor = "nano"
		rec := te.create(t, "x")
		_, err := te.m.Edit(rec.ID)
		require.NoError(t, err)
		assert.Equal(t, "nano", gotCommand)
	})
}

func TestEdit_EditorNotFound(t *testing.T) {
	env := newTestEnv(t)
	rec := env.create(t, "No editor")

	_, err := env.m.Edit(rec.ID)
	assert.ErrorIs(t, err, ErrEditorNotFound)

	// Checked before the note is looked up
	_, err = env.m.Edit(999)
	assert.ErrorIs(t, err, ErrEditorNotFound)

	assert.Equal(t, []string{rec.Filename}, env.files(t))
}

func TestEdit_EditorFails(t *testing.T) {
	tests := []struct {
		name   string
		editor EditorFunc
	}{
		{"non-zero exit", func(_, path string) (bool, error) {
			_ = os.WriteFile(path, []byte("half-done"), 0600)
			return false, nil
		}},
		{"cannot start", func(string, string) (bool, error) {
			return false, errors.New("exec: not found")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, WithEditor(tt.editor), WithGetenv(func(string) string { return "ed" }))
			rec := env.create(t, "Draft")

			before, err := os.ReadFile(env.blobPath(rec.Filename))
			require.NoError(t, err)

			_, err = env.m.Edit(rec.ID)
			assert.ErrorIs(t, err, ErrEditor)

			after, err := os.ReadFile(env.blobPath(rec.Filename))
			require.NoError(t, err)
			assert.Equal(t, before, after)

			// Temp file is gone
			assert.Equal(t, []string{rec.Filename}, env.files(t))
		})
	}
}

func TestEdit_NotFound(t *testing.T) {
	env := newTestEnv(t, WithGetenv(func(string) string { return "ed" }))
	_, err := env.m.Edit(7)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEdit_TempFileIsPrivate(t *testing.T) {
	var mode os.FileMode
	editor := EditorFunc(func(_, path string) (bool, error) {
		info, err := os.Stat(path)
		if err != nil {
			return false, err
		}
		mode = info.Mode().Perm()
		return true, nil
	})
	env := newTestEnv(t, WithEditor(editor), WithGetenv(func(string) string { return "ed" }))

	rec := env.create(t, "Private")
	_, err := env.m.Edit(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), mode)
}

func TestEdit_LeftoverTempFileKept(t *testing.T) {
	editor := EditorFunc(func(string, string) (bool, error) {
		t.Fatal("editor started over a leftover temp file")
		return false, nil
	})
	env := newTestEnv(t, WithEditor(editor), WithGetenv(func(string) string { return "ed" }))
	rec := env.create(t, "Unsaved")

	temp := env.blobPath(rec.Filename + ".edit")
	require.NoError(t, os.WriteFile(temp, []byte("edits from last time"), 0600))

	_, err := env.m.Edit(rec.ID)
	require.ErrorIs(t, err, ErrIO)
	assert.Contains(t, err.Error(), temp)

	data, err := os.ReadFile(temp)
	require.NoError(t, err)
	assert.Equal(t, "edits from last time", string(data))
}

package pdf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextDocument(t *testing.T) {
	doc := NewTextDocument("one", "", "three")
	require.Equal(t, 3, doc.NumPages())

	text, ok := doc.Page(0).ExtractText()
	assert.True(t, ok)
	assert.Equal(t, "one", text)

	// blank is present but empty; deciding whether to skip is the caller's job
	text, ok = doc.Page(1).ExtractText()
	assert.True(t, ok)
	assert.Equal(t, "", text)

	_, ok = doc.Page(9).ExtractText()
	assert.False(t, ok)
	assert.NoError(t, doc.Close())
	assert.Nil(t, ExtractionError(doc.Page(0)))
}

func TestTextDocumentFromPages(t *testing.T) {
	pages := []TextPage{{Text: "a"}, {Absent: true}}
	doc := NewTextDocumentFromPages(pages)
	pages[0].Text = "mutated"

	text, ok := doc.Page(0).ExtractText()
	assert.True(t, ok)
	assert.Equal(t, "a", text)

	_, ok = doc.Page(1).ExtractText()
	assert.False(t, ok)
	assert.Equal(t, 1, doc.Page(1).Index())
}

func TestLoadTextFile(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "pages.txt")
	require.NoError(t, os.WriteFile(path, []byte("first\fsecond line\nmore\f\f"), 0644))
	doc, err := LoadTextFile(path)
	require.NoError(t, err)
	require.Equal(t, 3, doc.NumPages())
	text, _ := doc.Page(1).ExtractText()
	assert.Equal(t, "second line\nmore", text)

	empty := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(empty, nil, 0644))
	doc, err = LoadTextFile(empty)
	require.NoError(t, err)
	assert.Equal(t, 0, doc.NumPages())

	_, err = LoadTextFile(filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
}

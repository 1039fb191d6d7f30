package render

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"
	"testing/quick"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/Finnson11-star/pdf-translator/internal/pdf"
	"github.com/Finnson11-star/pdf-translator/internal/pipeline"
	"github.com/Finnson11-star/pdf-translator/internal/types"
)

// quickConfig returns a configuration for property-based tests
func quickConfig() *quick.Config {
	return &quick.Config{
		MaxCount: 100,
		Rand:     rand.New(rand.NewSource(42)),
	}
}

func resultWith(texts ...string) *pipeline.Result {
	pages := make([]pipeline.PageResult, len(texts))
	for i, t := range texts {
		pages[i] = pipeline.PageResult{Index: i, Status: pipeline.StatusTranslated, TranslatedText: t}
	}
	return &pipeline.Result{
		Pages:         pages,
		AggregateText: pipeline.BuildAggregate("Page", pages),
		Termination:   pipeline.Completed,
		TotalPages:    len(texts),
		FinishedAt:    time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestPlainText(t *testing.T) {
	r := resultWith("Hallo wereld", "Tweede pagina — met “aanhalingstekens” en 中文")
	assert.Equal(t, r.AggregateText, PlainText(r))
	assert.Contains(t, PlainText(r), "中文", "plain text is lossless")
	assert.Equal(t, PlainText(r), PlainText(r))
	assert.Equal(t, "", PlainText(nil))
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name        string
		in          string
		placeholder string
		want        string
	}{
		{"ascii", "plain text", "?", "plain text"},
		{"latin1", "café naïve", "?", "café naïve"},
		{"cp1252 extras", "€ “quotes” – dash", "?", "€ “quotes” – dash"},
		{"cjk", "中文", "?", "??"},
		{"emoji", "ok 👍", "?", "ok ?"},
		{"tab and cr", "a\tb\r\nc", "?", "a    b\nc"},
		{"control", "x\x00y", "?", "x?y"},
		{"custom placeholder", "中", "*", "*"},
		{"unencodable placeholder falls back", "中", "文", "?"},
		{"empty placeholder falls back", "中", "", "?"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in, tt.placeholder))
		})
	}
}

// Property: sanitized output always encodes and keeps one rune per input rune on each line
func TestProperty_SanitizeAlwaysEncodable(t *testing.T) {
	f := func(s string) bool {
		out := Sanitize(s, "?")
		if _, err := charmap.Windows1252.NewEncoder().String(out); err != nil {
			return false
		}
		return strings.Count(out, "\n") == strings.Count(s, "\n")
	}
	if err := quick.Check(f, quickConfig()); err != nil {
		t.Error(err)
	}
}

func TestRender_Basic(t *testing.T) {
	r := NewDocumentRenderer(DefaultRenderConfig())
	data, ok := r.Render(resultWith("Hallo wereld\n\nNieuwe alinea", "Tweede pagina"))
	require.True(t, ok)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

	n, err := PageCount(data)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRender_TextIsExtractable(t *testing.T) {
	data, ok := NewDocumentRenderer(DefaultRenderConfig()).Render(resultWith("Hallo wereld"))
	require.True(t, ok)

	doc, err := pdf.NewExtractor().OpenReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	text, found := doc.Page(0).ExtractText()
	require.True(t, found)
	assert.Contains(t, text, "Page 1")
	assert.Contains(t, text, "Hallo wereld")
}

func TestRender_FullyUnencodableStillRenders(t *testing.T) {
	data, ok := NewDocumentRenderer(DefaultRenderConfig()).Render(resultWith("完全无法编码的文本", "😀😀😀"))
	require.True(t, ok)
	assert.NotEmpty(t, data)
}

func TestRender_ZeroPages(t *testing.T) {
	empty := &pipeline.Result{Termination: pipeline.Completed}
	assert.Equal(t, "", PlainText(empty))

	data, ok := NewDocumentRenderer(DefaultRenderConfig()).Render(empty)
	require.True(t, ok)

	n, err := PageCount(data)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "an empty result still yields one blank page")
}

func TestRender_NilResult(t *testing.T) {
	_, ok := NewDocumentRenderer(types.RenderConfig{}).Render(nil)
	assert.True(t, ok)
}

func TestRender_Deterministic(t *testing.T) {
	r := NewDocumentRenderer(DefaultRenderConfig())
	res := resultWith("één", "twee")

	a, ok := r.Render(res)
	require.True(t, ok)
	b, ok := r.Render(res)
	require.True(t, ok)
	assert.Equal(t, a, b)
}

func TestRender_AutomaticPageBreaks(t *testing.T) {
	lines := make([]string, 200)
	for i := range lines {
		lines[i] = strings.Repeat("word ", 30)
	}
	data, ok := NewDocumentRenderer(DefaultRenderConfig()).Render(resultWith(strings.Join(lines, "\n")))
	require.True(t, ok)

	n, err := PageCount(data)
	require.NoError(t, err)
	assert.Greater(t, n, 5)
}

func TestRender_WithoutValidation(t *testing.T) {
	r := NewDocumentRenderer(DefaultRenderConfig())
	r.SetValidation(false)
	data, err := r.RenderText("abc", time.Unix(0, 0))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestNewDocumentRenderer_Defaults(t *testing.T) {
	r := NewDocumentRenderer(types.RenderConfig{BlankGap: -1})
	assert.Equal(t, DefaultRenderConfig(), r.cfg)
}

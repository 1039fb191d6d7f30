package translator

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Finnson11-star/pdf-translator/internal/types"
)

func TestGoogleTranslator_Translate(t *testing.T) {
	var gotQuery atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery.Store(r.URL.Query())
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[[["Hallo wereld. ","Hello world. ",null,null,10],["Tot ziens","Goodbye",null,null,10],[null,null,"xlit"]],null,"en"]`))
	}))
	defer srv.Close()

	g := NewGoogleTranslator(srv.URL, time.Second)
	out, err := g.Translate(context.Background(), "Hello world. Goodbye", SourceAuto, "nl")
	require.NoError(t, err)
	assert.Equal(t, "Hallo wereld. Tot ziens", out)

	q := gotQuery.Load().(url.Values)
	assert.Equal(t, []string{"auto"}, q["sl"])
	assert.Equal(t, []string{"nl"}, q["tl"])
	assert.Equal(t, []string{"Hello world. Goodbye"}, q["q"])
	assert.Equal(t, []string{"gtx"}, q["client"])
}

func TestGoogleTranslator_BlankTextSkipsRequest(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	out, err := NewGoogleTranslator(srv.URL, time.Second).Translate(context.Background(), "  \n", "", "nl")
	require.NoError(t, err)
	assert.Equal(t, "  \n", out)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestGoogleTranslator_HTTPErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		code   types.ErrorCode
	}{
		{"rate limited", http.StatusTooManyRequests, types.ErrAPIRateLimit},
		{"server error", http.StatusServiceUnavailable, types.ErrAPICall},
		{"forbidden", http.StatusForbidden, types.ErrAPICall},
		{"bad request", http.StatusBadRequest, types.ErrAPICall},
		{"teapot", http.StatusTeapot, types.ErrAPICall},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte("nope"))
			}))
			defer srv.Close()

			_, err := NewGoogleTranslator(srv.URL, time.Second).Translate(context.Background(), "text", SourceAuto, "de")
			require.Error(t, err)
			assert.True(t, types.IsCode(err, tt.code), "got %v", err)
		})
	}
}

func TestGoogleTranslator_LongErrorBodyStaysValidUTF8(t *testing.T) {
	body := "x" + strings.Repeat("é", 150)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(body))
	}))
	defer srv.Close()

	_, err := NewGoogleTranslator(srv.URL, time.Second).Translate(context.Background(), "text", SourceAuto, "de")
	require.Error(t, err)
	assert.True(t, utf8.ValidString(err.Error()), "error detail must not split a rune: %q", err.Error())
}

func TestTruncateUTF8(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"abcdef", 3, "abc"},
		{"aé", 2, "a"},
		{"中文", 4, "中"},
		{"中文", 1, ""},
	}
	for _, tt := range tests {
		got := truncateUTF8(tt.in, tt.n)
		assert.Equal(t, tt.want, got, "truncateUTF8(%q, %d)", tt.in, tt.n)
		assert.True(t, utf8.ValidString(got))
	}
}

func TestGoogleTranslator_BadBody(t *testing.T) {
	for _, body := range []string{`not json`, `[]`, `[{"a":1}]`, `[[]]`} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		}))
		_, err := NewGoogleTranslator(srv.URL, time.Second).Translate(context.Background(), "text", SourceAuto, "de")
		srv.Close()
		assert.True(t, types.IsCode(err, types.ErrTranslation), "body %q: %v", body, err)
	}
}

func TestGoogleTranslator_Chunks(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		q := r.URL.Query().Get("q")
		w.Write([]byte(`[[["` + strings.ToUpper(q) + `","` + q + `"]]]`))
	}))
	defer srv.Close()

	g := NewGoogleTranslator(srv.URL, time.Second)
	g.maxChars = 6

	out, err := g.Translate(context.Background(), "abc de\nfgh ij", SourceAuto, "en")
	require.NoError(t, err)
	assert.Equal(t, "ABC DE\nFGH IJ", out)
	assert.Greater(t, atomic.LoadInt32(&calls), int32(1))
}

func TestGoogleTranslator_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[[["x","y"]]]`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewGoogleTranslator(srv.URL, time.Second).Translate(ctx, "text", SourceAuto, "en")
	assert.True(t, types.IsCode(err, types.ErrAPICall))
}

func TestNewGoogleTranslator_Defaults(t *testing.T) {
	g := NewGoogleTranslator("", 0)
	assert.Equal(t, DefaultGoogleEndpoint, g.endpoint)
	assert.Equal(t, DefaultTimeout, g.client.Timeout)
}

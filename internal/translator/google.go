package translator

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Finnson11-star/pdf-translator/internal/logger"
	"github.com/Finnson11-star/pdf-translator/internal/types"
)

// DefaultGoogleEndpoint is the free web translation endpoint
const DefaultGoogleEndpoint = "https://translate.googleapis.com/translate_a/single"

// GoogleTranslator translates through Google's public web endpoint.
// The endpoint is rate limited without documentation; callers pace requests.
type GoogleTranslator struct {
	endpoint string
	client   *http.Client
	maxChars int
}

// NewGoogleTranslator creates a translator for endpoint (DefaultGoogleEndpoint when empty).
func NewGoogleTranslator(endpoint string, timeout time.Duration) *GoogleTranslator {
	if endpoint == "" {
		endpoint = DefaultGoogleEndpoint
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &GoogleTranslator{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		maxChars: MaxChunkSize,
	}
}

// Translate implements Translator.
func (g *GoogleTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}
	if sourceLang == "" {
		sourceLang = SourceAuto
	}
	return translateChunked(ctx, text, g.maxChars, func(ctx context.Context, chunk string) (string, error) {
		return g.call(ctx, chunk, sourceLang, targetLang)
	})
}

func (g *GoogleTranslator) call(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", sourceLang)
	q.Set("tl", targetLang)
	q.Set("dt", "t")
	q.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return "", types.NewAppError(types.ErrAPICall, "failed to create HTTP request", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; pdf-translator)")

	logger.Debug("calling Google translate",
		logger.String("target", targetLang), logger.Int("textLen", len(text)))

	resp, err := g.client.Do(req)
	if err != nil {
		return "", types.NewAppError(types.ErrAPICall, "translation request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", types.NewAppError(types.ErrAPICall, "failed to read translation response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", handleHTTPError(resp.StatusCode, body)
	}

	translated, err := parseGoogleResponse(body)
	if err != nil {
		return "", err
	}
	return translated, nil
}

// parseGoogleResponse extracts the translated sentences from the nested array
// [[["Hallo","Hello",null,null,10],...],null,"en",...].
func parseGoogleResponse(body []byte) (string, error) {
	var root []json.RawMessage
	if err := json.Unmarshal(body, &root); err != nil || len(root) == 0 {
		return "", types.NewAppError(types.ErrTranslation, "failed to parse translation response", err)
	}

	var sentences [][]json.RawMessage
	if err := json.Unmarshal(root[0], &sentences); err != nil {
		return "", types.NewAppError(types.ErrTranslation, "unexpected translation response shape", err)
	}

	var b strings.Builder
	for _, s := range sentences {
		if len(s) == 0 {
			continue
		}
		var part string
		if err := json.Unmarshal(s[0], &part); err != nil {
			// non-string entries carry transliteration data
			continue
		}
		b.WriteString(part)
	}
	if b.Len() == 0 {
		return "", types.NewAppError(types.ErrTranslation, "translation response contained no text", nil)
	}
	return b.String(), nil
}

// handleHTTPError maps an HTTP status to an AppError
func handleHTTPError(statusCode int, body []byte) error {
	details := truncateUTF8(strings.TrimSpace(string(body)), maxErrorDetail)

	switch statusCode {
	case http.StatusTooManyRequests:
		return types.NewAppErrorWithDetails(types.ErrAPIRateLimit, "translation rate limit exceeded", details, nil)
	case http.StatusUnauthorized, http.StatusForbidden:
		return types.NewAppErrorWithDetails(types.ErrAPICall, "translation request rejected", fmt.Sprintf("status %d", statusCode), nil)
	case http.StatusBadRequest:
		return types.NewAppErrorWithDetails(types.ErrAPICall, "invalid translation request", details, nil)
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		return types.NewAppErrorWithDetails(types.ErrAPICall, "translation server error", fmt.Sprintf("status %d: %s", statusCode, details), nil)
	default:
		return types.NewAppErrorWithDetails(types.ErrAPICall, "translation request failed", fmt.Sprintf("status %d: %s", statusCode, details), nil)
	}
}

const maxErrorDetail = 200

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// Package translator provides the translation adapters used by the pipeline:
// a Google web endpoint over plain HTTP and an LLM backend built on eino.
package translator

import (
	"context"
	"strings"
	"time"

	"github.com/Finnson11-star/pdf-translator/internal/logger"
	"github.com/Finnson11-star/pdf-translator/internal/types"
)

const (
	// SourceAuto asks the backend to detect the source language
	SourceAuto = "auto"
	// MaxChunkSize is the largest text, in characters, sent in one backend request
	MaxChunkSize = 5000
	// DefaultTimeout is the default HTTP client timeout for a single request
	DefaultTimeout = 60 * time.Second
)

// Translator translates a text blob into a target language.
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

// Func adapts a plain function to Translator.
type Func func(ctx context.Context, text, sourceLang, targetLang string) (string, error)

// Translate calls f.
func (f Func) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	return f(ctx, text, sourceLang, targetLang)
}

// Language is a selectable target language.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// SupportedLanguages 可选目标语言
var SupportedLanguages = []Language{
	{Code: "nl", Name: "Dutch"},
	{Code: "en", Name: "English"},
	{Code: "de", Name: "German"},
	{Code: "fr", Name: "French"},
	{Code: "es", Name: "Spanish"},
	{Code: "it", Name: "Italian"},
}

// LanguageName returns the English name for code, or code itself when unknown.
func LanguageName(code string) string {
	for _, l := range SupportedLanguages {
		if strings.EqualFold(l.Code, code) {
			return l.Name
		}
	}
	return code
}

// New builds the translator selected by cfg.Backend.
func New(ctx context.Context, cfg *types.Config) (Translator, error) {
	timeout := cfg.RequestTimeout.Std()
	switch cfg.Backend {
	case "", "google":
		logger.Info("using Google translation backend", logger.String("endpoint", cfg.GoogleEndpoint))
		return NewGoogleTranslator(cfg.GoogleEndpoint, timeout), nil
	case "openai":
		logger.Info("using OpenAI translation backend",
			logger.String("model", cfg.OpenAIModel),
			logger.String("baseURL", cfg.OpenAIBaseURL))
		return NewOpenAITranslator(ctx, cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, timeout)
	default:
		return nil, types.NewAppErrorWithDetails(types.ErrConfig, "unknown translation backend", cfg.Backend, nil)
	}
}

// translateChunked splits text into backend-sized chunks, translates each one
// and stitches the results back together with the original separators.
func translateChunked(ctx context.Context, text string, maxChars int, call func(ctx context.Context, chunk string) (string, error)) (string, error) {
	chunks := SplitChunks(text, maxChars)
	if len(chunks) > 1 {
		logger.Debug("text split into chunks", logger.Int("chunks", len(chunks)), logger.Int("chars", len(text)))
	}

	var b strings.Builder
	for _, chunk := range chunks {
		core := strings.TrimRight(chunk, " \t\r\n")
		tail := chunk[len(core):]
		if strings.TrimSpace(core) == "" {
			b.WriteString(chunk)
			continue
		}
		translated, err := call(ctx, core)
		if err != nil {
			return "", err
		}
		b.WriteString(translated)
		b.WriteString(tail)
	}
	return b.String(), nil
}

package translator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/Finnson11-star/pdf-translator/internal/logger"
	"github.com/Finnson11-star/pdf-translator/internal/types"
)

// DefaultLLMModel is used when no model is configured
const DefaultLLMModel = "gpt-4o-mini"

// LLMTranslator translates with a chat model.
type LLMTranslator struct {
	chat        model.BaseChatModel
	maxChars    int
	temperature float32
}

// NewLLMTranslator wraps an existing chat model.
func NewLLMTranslator(chat model.BaseChatModel) *LLMTranslator {
	return &LLMTranslator{
		chat:        chat,
		maxChars:    MaxChunkSize,
		temperature: 0.3,
	}
}

// NewOpenAITranslator creates an LLMTranslator backed by an OpenAI compatible API.
func NewOpenAITranslator(ctx context.Context, apiKey, baseURL, modelName string, timeout time.Duration) (*LLMTranslator, error) {
	if apiKey == "" {
		return nil, types.NewAppError(types.ErrConfig, "OpenAI API key is not configured", nil)
	}
	if modelName == "" {
		modelName = DefaultLLMModel
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	chatModelConfig := &openai.ChatModelConfig{
		Model:   modelName,
		APIKey:  apiKey,
		Timeout: timeout,
	}
	if baseURL != "" {
		chatModelConfig.BaseURL = strings.TrimSuffix(strings.TrimSuffix(baseURL, "/"), "/chat/completions")
	}

	chatModel, err := openai.NewChatModel(ctx, chatModelConfig)
	if err != nil {
		return nil, types.NewAppError(types.ErrConfig, "failed to create chat model", err)
	}
	return NewLLMTranslator(chatModel), nil
}

// Translate implements Translator.
func (t *LLMTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}
	return translateChunked(ctx, text, t.maxChars, func(ctx context.Context, chunk string) (string, error) {
		return t.call(ctx, chunk, sourceLang, targetLang)
	})
}

func (t *LLMTranslator) call(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	logger.Debug("calling chat model",
		logger.String("target", targetLang), logger.Int("textLen", len(text)))

	resp, err := t.chat.Generate(ctx, []*schema.Message{
		schema.SystemMessage(buildSystemPrompt(sourceLang, targetLang)),
		schema.UserMessage(text),
	}, model.WithTemperature(t.temperature))
	if err != nil {
		if strings.Contains(err.Error(), "429") {
			return "", types.NewAppError(types.ErrAPIRateLimit, "chat model rate limit exceeded", err)
		}
		return "", types.NewAppError(types.ErrAPICall, "chat model request failed", err)
	}
	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		return "", types.NewAppError(types.ErrTranslation, "chat model returned an empty translation", nil)
	}
	return resp.Content, nil
}

// buildSystemPrompt creates the system prompt for page translation
func buildSystemPrompt(sourceLang, targetLang string) string {
	source := "Detect the source language automatically."
	if sourceLang != "" && sourceLang != SourceAuto {
		source = fmt.Sprintf("The source language is %s.", LanguageName(sourceLang))
	}
	return fmt.Sprintf(`You are a professional translator.
Translate the text sent by the user into %s. %s

RULES:
1. Output only the translated text, without explanations or notes.
2. Keep the line breaks of the input.
3. Leave numbers, URLs and code unchanged.`, LanguageName(targetLang), source)
}

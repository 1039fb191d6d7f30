// Package types defines core data types and enums for the PDF translator.
package types

import (
	"errors"
	"time"
)

// Config 应用配置
type Config struct {
	// Backend selects the translation adapter: "google" or "openai"
	Backend string `json:"backend" yaml:"backend"`
	// GoogleEndpoint overrides the free Google translate endpoint
	GoogleEndpoint string `json:"google_endpoint" yaml:"google_endpoint"`
	OpenAIAPIKey   string `json:"openai_api_key" yaml:"openai_api_key"`
	OpenAIBaseURL  string `json:"openai_base_url" yaml:"openai_base_url"`
	OpenAIModel    string `json:"openai_model" yaml:"openai_model"`
	// RequestTimeout bounds a single adapter call; the pipeline itself enforces none
	RequestTimeout Duration `json:"request_timeout" yaml:"request_timeout"`

	TargetLanguage string `json:"target_language" yaml:"target_language"`
	// FailurePolicy is "continue" or "abort"
	FailurePolicy string `json:"failure_policy" yaml:"failure_policy"`
	// PacingInterval is the minimum gap between consecutive translation calls
	PacingInterval Duration `json:"pacing_interval" yaml:"pacing_interval"`

	Render RenderConfig `json:"render" yaml:"render"`

	OutputDirectory string `json:"output_directory" yaml:"output_directory"`
	LogLevel        string `json:"log_level" yaml:"log_level"`
	LogFile         string `json:"log_file" yaml:"log_file"`
}

// RenderConfig 渲染参数
type RenderConfig struct {
	FontSize    float64 `json:"font_size" yaml:"font_size"`
	LineHeight  float64 `json:"line_height" yaml:"line_height"`
	BlankGap    float64 `json:"blank_gap" yaml:"blank_gap"`
	Margin      float64 `json:"margin" yaml:"margin"`
	Placeholder string  `json:"placeholder" yaml:"placeholder"`
	MarkerLabel string  `json:"marker_label" yaml:"marker_label"`
}

// Duration is a time.Duration that reads and writes as a Go duration
// string ("1s", "1500ms") in both JSON and YAML config files.
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// ProcessPhase 处理阶段枚举
type ProcessPhase string

const (
	PhaseTranslating ProcessPhase = "translating"
	PhaseComplete    ProcessPhase = "complete"
	PhaseAborted     ProcessPhase = "aborted"
	PhaseError       ProcessPhase = "error"
)

// ErrorCode 错误代码枚举
type ErrorCode string

const (
	ErrConfig        ErrorCode = "CONFIG_ERROR"
	ErrInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrAPICall       ErrorCode = "API_CALL_ERROR"
	ErrAPIRateLimit  ErrorCode = "API_RATE_LIMIT"
	ErrTranslation   ErrorCode = "TRANSLATION_ERROR"
	ErrRender        ErrorCode = "RENDER_ERROR"
	ErrInvalidState  ErrorCode = "INVALID_STATE"
	ErrRunInProgress ErrorCode = "RUN_IN_PROGRESS"
	ErrCancelled     ErrorCode = "CANCELLED"
	ErrInternal      ErrorCode = "INTERNAL_ERROR"
)

// AppError 应用错误
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Cause   error     `json:"-"`
}

// Error implements the error interface for AppError
func (e *AppError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

// Unwrap returns the underlying cause of the error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a new AppError with the given code, message, and optional cause
func NewAppError(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewAppErrorWithDetails creates a new AppError with details
func NewAppErrorWithDetails(code ErrorCode, message, details string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: details,
		Cause:   cause,
	}
}

// IsCode reports whether err (or anything it wraps) is an AppError with the given code.
func IsCode(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// Package config provides configuration management for the PDF translator.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Finnson11-star/pdf-translator/internal/logger"
	"github.com/Finnson11-star/pdf-translator/internal/types"
)

const (
	// DefaultConfigFileName is the default configuration file name
	DefaultConfigFileName = "pdf-translator-config.json"

	// Environment overrides
	EnvBackend        = "PDFTRANSLATOR_BACKEND"
	EnvTargetLanguage = "PDFTRANSLATOR_TARGET_LANG"
	EnvPacing         = "PDFTRANSLATOR_PACING"
	EnvFailurePolicy  = "PDFTRANSLATOR_POLICY"
	EnvOpenAIAPIKey   = "OPENAI_API_KEY"
	EnvOpenAIBaseURL  = "OPENAI_BASE_URL"
	EnvOpenAIModel    = "OPENAI_MODEL"

	BackendGoogle = "google"
	BackendOpenAI = "openai"

	PolicyContinue = "continue"
	PolicyAbort    = "abort"

	DefaultBackend        = BackendGoogle
	DefaultGoogleEndpoint = "https://translate.googleapis.com/translate_a/single"
	DefaultBaseURL        = "https://api.openai.com/v1"
	DefaultModel          = "gpt-4o-mini"
	DefaultRequestTimeout = 60 * time.Second
	DefaultTargetLanguage = "nl"
	DefaultFailurePolicy  = PolicyContinue
	DefaultPacingInterval = time.Second

	DefaultFontSize    = 10.0
	DefaultLineHeight  = 8.0
	DefaultBlankGap    = 5.0
	DefaultMargin      = 15.0
	DefaultPlaceholder = "?"
	DefaultMarkerLabel = "Page"
	DefaultLogLevel    = "info"
)

var languageCode = regexp.MustCompile(`^[a-z]{2,3}(-[A-Za-z]{2,4})?$`)

// ConfigManager manages application configuration
type ConfigManager struct {
	configPath string
	config     *types.Config
}

// NewConfigManager creates a new ConfigManager with the specified config path.
// If configPath is empty, it uses the default path in user's home directory.
func NewConfigManager(configPath string) (*ConfigManager, error) {
	if configPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			logger.Error("failed to get user home directory", err)
			return nil, types.NewAppError(types.ErrConfig, "failed to get user home directory", err)
		}
		configPath = filepath.Join(homeDir, ".config", "pdf-translator", DefaultConfigFileName)
	}

	logger.Debug("ConfigManager initialized", logger.String("configPath", configPath))
	return &ConfigManager{
		configPath: configPath,
		config:     DefaultConfig(),
	}, nil
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *types.Config {
	return &types.Config{
		Backend:        DefaultBackend,
		GoogleEndpoint: DefaultGoogleEndpoint,
		OpenAIBaseURL:  DefaultBaseURL,
		OpenAIModel:    DefaultModel,
		RequestTimeout: types.Duration(DefaultRequestTimeout),
		TargetLanguage: DefaultTargetLanguage,
		FailurePolicy:  DefaultFailurePolicy,
		PacingInterval: types.Duration(DefaultPacingInterval),
		Render: types.RenderConfig{
			FontSize:    DefaultFontSize,
			LineHeight:  DefaultLineHeight,
			BlankGap:    DefaultBlankGap,
			Margin:      DefaultMargin,
			Placeholder: DefaultPlaceholder,
			MarkerLabel: DefaultMarkerLabel,
		},
		LogLevel: DefaultLogLevel,
	}
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Load loads configuration from the config file.
// A missing file yields defaults; an unparseable file is logged and also yields defaults.
// Environment variables are applied last.
func (m *ConfigManager) Load() error {
	logger.Debug("loading configuration", logger.String("path", m.configPath))

	data, err := os.ReadFile(m.configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Error("failed to read config file", err, logger.String("path", m.configPath))
			return types.NewAppError(types.ErrConfig, "failed to read config file", err)
		}
		logger.Info("config file not found, using defaults", logger.String("path", m.configPath))
		m.config = DefaultConfig()
	} else {
		cfg := DefaultConfig()
		if isYAML(m.configPath) {
			err = yaml.Unmarshal(data, cfg)
		} else {
			err = json.Unmarshal(data, cfg)
		}
		if err != nil {
			logger.Warn("invalid config file format, using defaults",
				logger.String("path", m.configPath), logger.Err(err))
			m.config = DefaultConfig()
		} else {
			logger.Info("configuration loaded successfully",
				logger.String("path", m.configPath),
				logger.String("backend", cfg.Backend),
				logger.String("targetLanguage", cfg.TargetLanguage))
			m.config = cfg
		}
	}

	m.applyDefaults()
	m.applyEnv()
	return nil
}

// applyDefaults fills zero-valued fields left empty by a partial config file
func (m *ConfigManager) applyDefaults() {
	c := m.config
	d := DefaultConfig()
	if c.Backend == "" {
		c.Backend = d.Backend
	}
	if c.GoogleEndpoint == "" {
		c.GoogleEndpoint = d.GoogleEndpoint
	}
	if c.OpenAIBaseURL == "" {
		c.OpenAIBaseURL = d.OpenAIBaseURL
	}
	if c.OpenAIModel == "" {
		c.OpenAIModel = d.OpenAIModel
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = d.RequestTimeout
	}
	if c.TargetLanguage == "" {
		c.TargetLanguage = d.TargetLanguage
	}
	if c.FailurePolicy == "" {
		c.FailurePolicy = d.FailurePolicy
	}
	if c.PacingInterval == 0 {
		c.PacingInterval = d.PacingInterval
	}
	if c.Render.FontSize == 0 {
		c.Render.FontSize = d.Render.FontSize
	}
	if c.Render.LineHeight == 0 {
		c.Render.LineHeight = d.Render.LineHeight
	}
	if c.Render.BlankGap == 0 {
		c.Render.BlankGap = d.Render.BlankGap
	}
	if c.Render.Margin == 0 {
		c.Render.Margin = d.Render.Margin
	}
	if c.Render.Placeholder == "" {
		c.Render.Placeholder = d.Render.Placeholder
	}
	if c.Render.MarkerLabel == "" {
		c.Render.MarkerLabel = d.Render.MarkerLabel
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
}

func (m *ConfigManager) applyEnv() {
	c := m.config
	if v := os.Getenv(EnvBackend); v != "" {
		c.Backend = v
	}
	if v := os.Getenv(EnvTargetLanguage); v != "" {
		c.TargetLanguage = v
	}
	if v := os.Getenv(EnvFailurePolicy); v != "" {
		c.FailurePolicy = v
	}
	if v := os.Getenv(EnvPacing); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.PacingInterval = types.Duration(d)
		} else {
			logger.Warn("ignoring invalid pacing override", logger.String("value", v), logger.Err(err))
		}
	}
	// API key and base URL only fall back to the environment when the file leaves them unset
	if c.OpenAIAPIKey == "" {
		c.OpenAIAPIKey = os.Getenv(EnvOpenAIAPIKey)
	}
	if v := os.Getenv(EnvOpenAIBaseURL); v != "" && c.OpenAIBaseURL == DefaultBaseURL {
		c.OpenAIBaseURL = v
	}
	if v := os.Getenv(EnvOpenAIModel); v != "" {
		c.OpenAIModel = v
	}
}

// Save saves the current configuration to the config file, in JSON or YAML
// depending on the file extension.
func (m *ConfigManager) Save() error {
	logger.Debug("saving configuration", logger.String("path", m.configPath))

	dir := filepath.Dir(m.configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		logger.Error("failed to create config directory", err, logger.String("dir", dir))
		return types.NewAppError(types.ErrConfig, "failed to create config directory", err)
	}

	var (
		data []byte
		err  error
	)
	if isYAML(m.configPath) {
		data, err = yaml.Marshal(m.config)
	} else {
		data, err = json.MarshalIndent(m.config, "", "  ")
	}
	if err != nil {
		logger.Error("failed to marshal config", err)
		return types.NewAppError(types.ErrConfig, "failed to marshal config", err)
	}

	// 0600: the file may hold an API key
	if err := os.WriteFile(m.configPath, data, 0600); err != nil {
		logger.Error("failed to write config file", err, logger.String("path", m.configPath))
		return types.NewAppError(types.ErrConfig, "failed to write config file", err)
	}

	logger.Info("configuration saved successfully", logger.String("path", m.configPath))
	return nil
}

// Validate checks the current configuration for values the pipeline cannot run with.
func (m *ConfigManager) Validate() error {
	return Validate(m.GetConfig())
}

// Validate checks cfg for values the pipeline cannot run with.
func Validate(cfg *types.Config) error {
	if cfg == nil {
		return types.NewAppError(types.ErrConfig, "configuration is nil", nil)
	}
	switch cfg.Backend {
	case BackendGoogle:
	case BackendOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return types.NewAppErrorWithDetails(types.ErrConfig, "OpenAI backend selected but no API key configured",
				"set "+EnvOpenAIAPIKey+" or openai_api_key", nil)
		}
	default:
		return types.NewAppErrorWithDetails(types.ErrConfig, "unknown translation backend", cfg.Backend, nil)
	}
	if err := ValidateLanguage(cfg.TargetLanguage); err != nil {
		return err
	}
	if cfg.FailurePolicy != PolicyContinue && cfg.FailurePolicy != PolicyAbort {
		return types.NewAppErrorWithDetails(types.ErrConfig, "unknown failure policy", cfg.FailurePolicy, nil)
	}
	if cfg.PacingInterval <= 0 {
		return types.NewAppErrorWithDetails(types.ErrConfig, "pacing interval must be positive",
			cfg.PacingInterval.Std().String(), nil)
	}
	if cfg.RequestTimeout <= 0 {
		return types.NewAppError(types.ErrConfig, "request timeout must be positive", nil)
	}
	r := cfg.Render
	if r.FontSize <= 0 || r.LineHeight <= 0 || r.BlankGap < 0 || r.Margin < 0 {
		return types.NewAppErrorWithDetails(types.ErrConfig, "invalid render settings",
			fmt.Sprintf("font=%.1f line=%.1f gap=%.1f margin=%.1f", r.FontSize, r.LineHeight, r.BlankGap, r.Margin), nil)
	}
	return nil
}

// ValidateLanguage checks that code looks like an ISO 639 language code ("nl", "pt-BR").
func ValidateLanguage(code string) error {
	if !languageCode.MatchString(code) {
		return types.NewAppErrorWithDetails(types.ErrInvalidInput, "invalid target language code", code, nil)
	}
	return nil
}

// GetConfig returns the current configuration.
func (m *ConfigManager) GetConfig() *types.Config {
	if m.config == nil {
		return DefaultConfig()
	}
	return m.config
}

// SetConfig sets the entire configuration.
func (m *ConfigManager) SetConfig(config *types.Config) {
	m.config = config
}

// GetConfigPath returns the path to the config file.
func (m *ConfigManager) GetConfigPath() string {
	return m.configPath
}


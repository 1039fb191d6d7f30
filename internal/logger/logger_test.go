package logger

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewZapLogger(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "test.log")

	logger, err := NewZapLogger(&Config{
		LogFilePath:   logPath,
		Level:         LevelDebug,
		EnableConsole: false,
	})
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Close()

	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		t.Error("Log file was not created")
	}
}

func TestLogLevels(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "test.log")

	logger, err := NewZapLogger(&Config{
		LogFilePath: logPath,
		Level:       LevelDebug,
	})
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	logger.Debug("debug message", String("key", "value"))
	logger.Info("info message", Int("count", 42))
	logger.Warn("warn message", Bool("flag", true))
	logger.Error("error message", errors.New("test error"), Float64("rate", 3.14))

	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	logContent := string(content)

	for _, want := range []string{
		"DEBUG", "INFO", "WARN", "ERROR",
		"debug message", "info message", "warn message", "error message",
		`"key": "value"`, `"count": 42`, `"flag": true`, `"rate": 3.14`, "test error",
	} {
		if !strings.Contains(logContent, want) {
			t.Errorf("expected log to contain %q", want)
		}
	}
}

func TestLogLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, LevelWarn)

	logger.Debug("hidden debug")
	logger.Info("hidden info")
	logger.Warn("visible warn")
	logger.Error("visible error", nil)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("messages below the level were written: %s", out)
	}
	if !strings.Contains(out, "visible warn") || !strings.Contains(out, "visible error") {
		t.Errorf("expected warn and error messages, got: %s", out)
	}
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, LevelError)

	logger.Info("before")
	logger.SetLevel(LevelDebug)
	logger.Info("after")

	out := buf.String()
	if strings.Contains(out, "before") {
		t.Error("info should be filtered before SetLevel")
	}
	if !strings.Contains(out, "after") {
		t.Error("info should be written after SetLevel(LevelDebug)")
	}
}

func TestFieldTypes(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, LevelDebug)

	logger.Info("fields",
		Int64("big", 1<<40),
		Duration("wait", 1500*time.Millisecond),
		Any("list", []int{1, 2}),
	)

	out := buf.String()
	if !strings.Contains(out, `"big": 1099511627776`) {
		t.Errorf("int64 field missing: %s", out)
	}
	if !strings.Contains(out, `"wait"`) {
		t.Errorf("duration field missing: %s", out)
	}
	if !strings.Contains(out, `"list": [1, 2]`) {
		t.Errorf("any field missing: %s", out)
	}
}

func TestGlobalLogger(t *testing.T) {
	defer SetGlobalLogger(nil)

	var buf bytes.Buffer
	SetGlobalLogger(NewWithWriter(&buf, LevelDebug))

	Info("global info", String("page", "1"))
	Warn("global warn")
	Debug("global debug")
	Error("global error", errors.New("boom"))

	out := buf.String()
	for _, want := range []string{"global info", "global warn", "global debug", "global error", "boom"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in global output", want)
		}
	}
}

func TestNoopLogger(t *testing.T) {
	SetGlobalLogger(nil)
	l := GetLogger()
	if l == nil {
		t.Fatal("GetLogger returned nil")
	}
	// Must not panic
	l.Debug("x")
	l.Info("x")
	l.Warn("x")
	l.Error("x", errors.New("y"))
	l.SetLevel(LevelDebug)
	if err := l.Close(); err != nil {
		t.Errorf("noop Close returned %v", err)
	}
	if err := NewNop().Close(); err != nil {
		t.Errorf("NewNop Close returned %v", err)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Level != LevelInfo {
		t.Errorf("expected LevelInfo, got %v", cfg.Level)
	}
	if !cfg.EnableConsole {
		t.Error("expected console output by default")
	}
}

func TestLevelString(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("Level(%d).String() = %s, want %s", tt.level, got, tt.want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"warning": LevelWarn,
		"error":   LevelError,
		"bogus":   LevelInfo,
		"":        LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestErrFieldWithNil(t *testing.T) {
	f := Err(nil)
	if f.Key != "error" || f.Value != nil {
		t.Errorf("unexpected field for nil error: %+v", f)
	}
}

func TestLogDirectoryCreation(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "nested", "dir", "test.log")

	logger, err := NewZapLogger(&Config{LogFilePath: logPath, Level: LevelInfo})
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Close()

	if _, err := os.Stat(filepath.Dir(logPath)); err != nil {
		t.Errorf("log directory was not created: %v", err)
	}
}

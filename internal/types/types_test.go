package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestAppError(t *testing.T) {
	cause := errors.New("socket closed")
	err := NewAppErrorWithDetails(ErrAPICall, "translate request failed", "page 3", cause)

	assert.Equal(t, "translate request failed: page 3", err.Error())
	assert.ErrorIs(t, err, cause)

	plain := NewAppError(ErrInvalidState, "no result yet", nil)
	assert.Equal(t, "no result yet", plain.Error())
	assert.Nil(t, plain.Unwrap())
}

func TestIsCode(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewAppError(ErrRunInProgress, "busy", nil))

	assert.True(t, IsCode(err, ErrRunInProgress))
	assert.False(t, IsCode(err, ErrConfig))
	assert.False(t, IsCode(errors.New("plain"), ErrRunInProgress))
	assert.False(t, IsCode(nil, ErrRunInProgress))
}

func TestDuration_JSON(t *testing.T) {
	var cfg Config
	require.NoError(t, json.Unmarshal([]byte(`{"pacing_interval":"1500ms"}`), &cfg))
	assert.Equal(t, 1500*time.Millisecond, cfg.PacingInterval.Std())

	out, err := json.Marshal(Config{PacingInterval: Duration(2 * time.Second)})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"pacing_interval":"2s"`)

	assert.Error(t, json.Unmarshal([]byte(`{"pacing_interval":"soon"}`), &cfg))
}

func TestDuration_YAML(t *testing.T) {
	var cfg Config
	require.NoError(t, yaml.Unmarshal([]byte("request_timeout: 30s\n"), &cfg))
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout.Std())
}

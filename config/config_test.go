package config

import (
	nethttp "net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testYAML = `
log:
  level: debug
  pretty: true
retry:
  timeout: 250ms
  methods:
    delete:
      limit: 2
    get:
      limit: 1
`

func TestLoadBytes(t *testing.T) {
	t.Run("defaults only", func(t *testing.T) {
		cfg, err := LoadBytes(nil)
		require.NoError(t, err)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.False(t, cfg.Log.Pretty)
		assert.Equal(t, time.Duration(0), cfg.Retry.Timeout)
		assert.Empty(t, cfg.Retry.Methods)
	})

	t.Run("yaml overrides defaults", func(t *testing.T) {
		cfg, err := LoadBytes([]byte(testYAML))
		require.NoError(t, err)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.True(t, cfg.Log.Pretty)
		assert.Equal(t, 250*time.Millisecond, cfg.Retry.Timeout)
		require.Len(t, cfg.Retry.Methods, 2)
		assert.Equal(t, 2, cfg.Retry.Methods["delete"].Limit)
		assert.Equal(t, 1, cfg.Retry.Methods["get"].Limit)
	})

	t.Run("environment overrides yaml", func(t *testing.T) {
		t.Setenv("REQUEUE_RETRY_TIMEOUT", "1s")
		t.Setenv("REQUEUE_LOG_LEVEL", "warn")

		cfg, err := LoadBytes([]byte(testYAML))
		require.NoError(t, err)
		assert.Equal(t, time.Second, cfg.Retry.Timeout)
		assert.Equal(t, "warn", cfg.Log.Level)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := LoadBytes([]byte("retry: [broken"))
		require.Error(t, err)
	})
}

func TestLoadFile(t *testing.T) {
	t.Run("existing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "requeue.yaml")
		require.NoError(t, os.WriteFile(path, []byte(testYAML), 0o600))

		cfg, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, 250*time.Millisecond, cfg.Retry.Timeout)
	})

	t.Run("missing file falls back to defaults", func(t *testing.T) {
		cfg, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
		require.NoError(t, err)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Empty(t, cfg.Retry.Methods)
	})
}

func TestValidate(t *testing.T) {
	t.Run("unknown verb", func(t *testing.T) {
		_, err := LoadBytes([]byte(`
retry:
  methods:
    fetch:
      limit: 2
`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "http_verb")
	})

	t.Run("negative retry limit", func(t *testing.T) {
		_, err := LoadBytes([]byte(`
retry:
  methods:
    get:
      limit: -1
`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "gte")
	})

	t.Run("negative timeout", func(t *testing.T) {
		_, err := LoadBytes([]byte("retry:\n  timeout: -5s\n"))
		require.Error(t, err)
	})

	t.Run("unknown log level", func(t *testing.T) {
		_, err := LoadBytes([]byte("log:\n  level: verbose\n"))
		require.Error(t, err)
	})

	t.Run("uppercase verbs accepted", func(t *testing.T) {
		cfg, err := LoadBytes([]byte(`
retry:
  methods:
    DELETE:
      limit: 3
`))
		require.NoError(t, err)
		assert.Equal(t, 3, cfg.Retry.Methods["DELETE"].Limit)
	})
}

func TestTransportConfig(t *testing.T) {
	cfg, err := LoadBytes([]byte(testYAML))
	require.NoError(t, err)

	tc := cfg.TransportConfig()
	assert.Equal(t, 250*time.Millisecond, tc.RetryTimeout)
	require.Len(t, tc.Methods, 2)
	assert.Equal(t, 2, tc.Methods["delete"].RetryLimit)
	assert.Equal(t, 1, tc.Methods["get"].RetryLimit)
}

func TestKnownVerbsMatchTransportSet(t *testing.T) {
	expected := []string{
		nethttp.MethodGet,
		nethttp.MethodPost,
		nethttp.MethodPut,
		nethttp.MethodPatch,
		nethttp.MethodDelete,
		nethttp.MethodHead,
		nethttp.MethodOptions,
	}
	assert.Len(t, knownVerbs, len(expected))
	for _, verb := range expected {
		assert.Contains(t, knownVerbs, verb)
	}
}

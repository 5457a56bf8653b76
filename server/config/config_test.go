package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_ValidateConfig(t *testing.T) {
	t.Parallel()

	t.Run("invalid listen address", func(t *testing.T) {
		t.Parallel()

		cfg := DefaultConfig()
		cfg.ListenAddress = "rando-address" // doesn't follow the format

		assert.ErrorIs(t, ValidateConfig(cfg), ErrInvalidListenAddress)
	})

	t.Run("valid configuration", func(t *testing.T) {
		t.Parallel()

		assert.NoError(t, ValidateConfig(DefaultConfig()))
	})
}

func TestConfig_Read(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.toml")

	require.NoError(t, os.WriteFile(path, []byte(`
listen_address = "127.0.0.1:9000"

[cors_config]
allowed_origins = ["https://example.com"]
`), 0o644))

	cfg, err := Read(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.ListenAddress)

	require.NotNil(t, cfg.CORSConfig)
	assert.Equal(t, []string{"https://example.com"}, cfg.CORSConfig.AllowedOrigins)
}

func TestConfig_Read_Invalid(t *testing.T) {
	t.Parallel()

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		cfg, err := Read(filepath.Join(t.TempDir(), "nonexistent.toml"))

		assert.Nil(t, cfg)
		assert.Error(t, err)
	})

	t.Run("malformed TOML", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "config.toml")

		require.NoError(t, os.WriteFile(path, []byte(`listen_address = [`), 0o644))

		cfg, err := Read(path)

		assert.Nil(t, cfg)
		assert.Error(t, err)
	})
}

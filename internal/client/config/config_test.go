package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://localhost:8000", c.ServerURL)
	assert.Equal(t, "console.db", c.DatabaseDSN)
	assert.Equal(t, 30*time.Second, c.HeartbeatInterval)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	cfg := LoadConfig()

	require.NotNil(t, cfg, "LoadConfig must not return nil")
	assert.Equal(t, "http://localhost:8000", cfg.ServerURL)
	assert.Equal(t, "console.db", cfg.DatabaseDSN)
	assert.Equal(t, 30*time.Second, cfg.HeartbeatInterval)
}

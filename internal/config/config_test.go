package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validKey = "4242424242424242424242424242424242424242424242424242424242424242"

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CHARTS_DATA_DIR", dir)
	t.Setenv("DATASET_PAYLOAD_KEY", validKey)
	t.Setenv("GO_PORT", "9100")
	t.Setenv("CANVAS_SETTLE_MS", "40")
	t.Setenv("RENDER_LOG_RETENTION_DAYS", "7")
	t.Setenv("DEV_MODE", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, 9100, cfg.Port)
	assert.True(t, cfg.DevMode)
	assert.Equal(t, 40*time.Millisecond, cfg.CanvasSettle)
	assert.Equal(t, 7*24*time.Hour, cfg.RenderLogRetention)
	assert.Equal(t, "http://localhost:9100", cfg.DatasetServiceURL)
	assert.Equal(t, 15*time.Second, cfg.DatasetTimeout)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
}

func TestLoad_AllowedOrigins(t *testing.T) {
	t.Setenv("CHARTS_DATA_DIR", t.TempDir())
	t.Setenv("DATASET_PAYLOAD_KEY", validKey)
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("CHARTS_DATA_DIR", t.TempDir())
	t.Setenv("DATASET_PAYLOAD_KEY", validKey)
	t.Setenv("GO_PORT", "not-a-port")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8001, cfg.Port)
}

func TestValidate(t *testing.T) {
	base := Config{DatasetPayloadKey: validKey, Port: 8001, RenderLogRetention: time.Hour}
	require.NoError(t, base.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing key", func(c *Config) { c.DatasetPayloadKey = "" }},
		{"non hex key", func(c *Config) { c.DatasetPayloadKey = strings.Repeat("z", 64) }},
		{"short key", func(c *Config) { c.DatasetPayloadKey = "4242" }},
		{"bad port", func(c *Config) { c.Port = 0 }},
		{"no retention", func(c *Config) { c.RenderLogRetention = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

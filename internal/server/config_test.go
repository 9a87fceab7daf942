package server

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "universludique.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.hcl"))
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Server.Address)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Game.SmallBlind)
	assert.Equal(t, 10, cfg.Game.BigBlind)
	assert.Equal(t, 1000, cfg.Game.InitialStack)
	assert.Equal(t, 500, cfg.Game.EquityTrials)
	assert.Equal(t, 0, cfg.Game.TurnTimeoutSeconds)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
server {
  address = "0.0.0.0"
  port    = 9000
}

game {
  small_blind          = 25
  big_blind            = 50
  initial_stack        = 5000
  turn_timeout_seconds = 30
}
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "0.0.0.0:9000", cfg.GetServerAddress())
	assert.Equal(t, 25, cfg.Game.SmallBlind)
	assert.Equal(t, 50, cfg.Game.BigBlind)
	assert.Equal(t, 5000, cfg.Game.InitialStack)
	assert.Equal(t, 30, cfg.Game.TurnTimeoutSeconds)
	// Unset values still get defaults
	assert.Equal(t, 500, cfg.Game.EquityTrials)
}

func TestLoadConfigBigBlindDefaultsToDoubleSmall(t *testing.T) {
	path := writeConfig(t, `
server {}
game {
  small_blind = 50
}
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Game.BigBlind)
}

func TestLoadConfigRejectsBadHCL(t *testing.T) {
	path := writeConfig(t, `server { address = `)
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr string
	}{
		{
			"port out of range",
			func(cfg *Config) { cfg.Server.Port = 70000 },
			"invalid port",
		},
		{
			"big blind below small blind",
			func(cfg *Config) { cfg.Game.BigBlind = 3 },
			"big blind",
		},
		{
			"stack cannot cover big blind",
			func(cfg *Config) { cfg.Game.InitialStack = 5 },
			"initial stack",
		},
		{
			"negative timeout",
			func(cfg *Config) { cfg.Game.TurnTimeoutSeconds = -1 },
			"turn timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.wantErr)
		})
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 60, cfg.Sim.TickRate)
	assert.InDelta(t, 1.0/60, cfg.Sim.Delta(), 1e-12)
	assert.Equal(t, "arena", cfg.Sim.Level)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Ledger.Enabled)
	assert.Equal(t, "robotmasters", cfg.Ledger.Prefix)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
sim:
  tick_rate: 30
  boss: inferno_man
ledger:
  enabled: true
  addr: redis:6379
`), 0o644))
	t.Setenv("ROBOTMASTERS_SIM_SEED", "42")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Sim.TickRate)
	assert.Equal(t, "inferno_man", cfg.Sim.Boss)
	assert.Equal(t, uint64(42), cfg.Sim.Seed)
	assert.Equal(t, "redis:6379", cfg.Ledger.Addr)
	// untouched keys keep their defaults
	assert.Equal(t, 2, cfg.Sim.Substeps)
}

func TestValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
sim:
  tick_rate: 0
audio:
  volume: 3
`), 0o644))

	_, err := Load(path)
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "tick_rate")
	assert.Contains(t, err.Error(), "volume")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

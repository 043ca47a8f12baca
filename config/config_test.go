package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "node", "config.toml")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(filepath.Dir(path), "data"), cfg.DataDir)
	require.Equal(t, filepath.Join(filepath.Dir(path), "genesis.json"), cfg.GenesisFile)
	require.Equal(t, "pifp-local", cfg.NetworkName)
	require.Equal(t, "local", cfg.Environment)
	require.Equal(t, "127.0.0.1:9464", cfg.MetricsAddress)

	_, err = os.Stat(path)
	require.NoError(t, err, "default config should be materialized on disk")

	reloaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, reloaded)
}

func TestLoadExistingConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	doc := `DataDir = "/var/lib/pifp"
GenesisFile = "/etc/pifp/genesis.json"
NetworkName = "pifp-testnet"
Environment = "staging"
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/var/lib/pifp", cfg.DataDir)
	require.Equal(t, "/etc/pifp/genesis.json", cfg.GenesisFile)
	require.Equal(t, "pifp-testnet", cfg.NetworkName)
	require.Equal(t, "staging", cfg.Environment)
}

func TestLoadFillsMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`NetworkName = "pifp-devnet"`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "pifp-devnet", cfg.NetworkName)
	require.Equal(t, filepath.Join(filepath.Dir(path), "data"), cfg.DataDir)
	require.Equal(t, "local", cfg.Environment)
}

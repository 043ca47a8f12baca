package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	DataDir        string `toml:"DataDir"`
	GenesisFile    string `toml:"GenesisFile"`
	NetworkName    string `toml:"NetworkName"`
	Environment    string `toml:"Environment"`
	MetricsAddress string `toml:"MetricsAddress"`
}

// Load loads the configuration from the given path. A missing file is
// materialized with defaults first.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	applyDefaults(path, cfg)
	return cfg, nil
}

func createDefault(path string) (*Config, error) {
	cfg := &Config{}
	applyDefaults(path, cfg)
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create config directory %q: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create config %q: %w", path, err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return nil, fmt.Errorf("write config %q: %w", path, err)
	}
	return cfg, nil
}

func applyDefaults(path string, cfg *Config) {
	base := filepath.Dir(path)
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = filepath.Join(base, "data")
	}
	if strings.TrimSpace(cfg.GenesisFile) == "" {
		cfg.GenesisFile = filepath.Join(base, "genesis.json")
	}
	if strings.TrimSpace(cfg.NetworkName) == "" {
		cfg.NetworkName = "pifp-local"
	}
	if strings.TrimSpace(cfg.Environment) == "" {
		cfg.Environment = "local"
	}
	if strings.TrimSpace(cfg.MetricsAddress) == "" {
		cfg.MetricsAddress = "127.0.0.1:9464"
	}
}

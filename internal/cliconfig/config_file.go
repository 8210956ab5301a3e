package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	StartBalance    *int   `toml:"start_balance"`
	StoreDriver     string `toml:"store_driver"`
	StorePath       string `toml:"store_path"`
	LogLevel        string `toml:"log_level"`
	MetricsAddr     string `toml:"metrics_addr"`
	ShutdownTimeout string `toml:"shutdown_timeout"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.walletd/config.toml, or "" if there is no home
// directory.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".walletd", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("host", fc.Host, &cfg.Host)
	s.setInt("port", fc.Port, &cfg.Port)
	s.setIntPtr("start-balance", fc.StartBalance, &cfg.StartBalance)
	s.setString("store", fc.StoreDriver, &cfg.StoreDriver)
	s.setString("db", fc.StorePath, &cfg.StorePath)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setString("metrics-addr", fc.MetricsAddr, &cfg.MetricsAddr)

	return s.setDuration("shutdown-timeout", fc.ShutdownTimeout, &cfg.ShutdownTimeout)
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

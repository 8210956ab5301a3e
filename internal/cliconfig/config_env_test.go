package cliconfig

import (
	"testing"
	"time"
)

func TestApplyEnvConfig(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		changed  map[string]bool
		initial  Config
		expected Config
		wantErr  bool
	}{
		{
			name: "applies all valid env vars",
			envVars: map[string]string{
				"WALLETD_HOST":             "10.0.0.1",
				"WALLETD_PORT":             "7000",
				"WALLETD_START_BALANCE":    "250",
				"WALLETD_STORE":            "memory",
				"WALLETD_DB":               "ignored.db",
				"WALLETD_LOG_LEVEL":        "warn",
				"WALLETD_METRICS_ADDR":     "127.0.0.1:9100",
				"WALLETD_SHUTDOWN_TIMEOUT": "1m",
			},
			changed: map[string]bool{},
			initial: Config{},
			expected: Config{
				Host:            "10.0.0.1",
				Port:            7000,
				StartBalance:    250,
				StoreDriver:     "memory",
				StorePath:       "ignored.db",
				LogLevel:        "warn",
				MetricsAddr:     "127.0.0.1:9100",
				ShutdownTimeout: time.Minute,
			},
		},
		{
			name:     "respects changed flags",
			envVars:  map[string]string{"WALLETD_PORT": "7000", "WALLETD_HOST": "10.0.0.1"},
			changed:  map[string]bool{"port": true},
			initial:  Config{Port: 5555},
			expected: Config{Port: 5555, Host: "10.0.0.1"},
		},
		{
			name:     "zero start balance overrides file value",
			envVars:  map[string]string{"WALLETD_START_BALANCE": "0"},
			changed:  map[string]bool{},
			initial:  Config{StartBalance: 90},
			expected: Config{StartBalance: 0},
		},
		{
			name:    "returns error for invalid int",
			envVars: map[string]string{"WALLETD_PORT": "not-a-number"},
			changed: map[string]bool{},
			wantErr: true,
		},
		{
			name:    "returns error for invalid duration",
			envVars: map[string]string{"WALLETD_SHUTDOWN_TIMEOUT": "forever"},
			changed: map[string]bool{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg := tt.initial
			err := ApplyEnvConfig(&cfg, tt.changed)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ApplyEnvConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && cfg != tt.expected {
				t.Errorf("config = %+v, want %+v", cfg, tt.expected)
			}
		})
	}
}

// Precedence: flags > env > file > defaults.
func TestConfigPrecedence(t *testing.T) {
	start := 100
	fileConf := FileConfig{
		Host:         "file-host",
		Port:         6000,
		StartBalance: &start,
		StorePath:    "file.db",
	}

	t.Setenv("WALLETD_PORT", "6500")
	t.Setenv("WALLETD_DB", "env.db")

	changed := map[string]bool{"db": true}
	cfg := DefaultConfig()
	cfg.StorePath = "flag.db"

	if err := ApplyFileConfig(&cfg, fileConf, changed); err != nil {
		t.Fatalf("ApplyFileConfig failed: %v", err)
	}
	if err := ApplyEnvConfig(&cfg, changed); err != nil {
		t.Fatalf("ApplyEnvConfig failed: %v", err)
	}

	if cfg.StorePath != "flag.db" {
		t.Errorf("StorePath = %v, want flag.db (flag should win)", cfg.StorePath)
	}
	if cfg.Port != 6500 {
		t.Errorf("Port = %v, want 6500 (env should override file)", cfg.Port)
	}
	if cfg.Host != "file-host" {
		t.Errorf("Host = %v, want file-host (file should set)", cfg.Host)
	}
	if cfg.StartBalance != 100 {
		t.Errorf("StartBalance = %v, want 100 (file should set)", cfg.StartBalance)
	}
	if cfg.LogLevel != DefaultLogLevel {
		t.Errorf("LogLevel = %v, want default", cfg.LogLevel)
	}
}

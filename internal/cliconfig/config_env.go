package cliconfig

import "os"

// ApplyEnvConfig applies WALLETD_* environment variables. They override the
// config file but not explicitly set flags.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("host", os.Getenv("WALLETD_HOST"), &cfg.Host)
	s.setString("store", os.Getenv("WALLETD_STORE"), &cfg.StoreDriver)
	s.setString("db", os.Getenv("WALLETD_DB"), &cfg.StorePath)
	s.setString("log-level", os.Getenv("WALLETD_LOG_LEVEL"), &cfg.LogLevel)
	s.setString("metrics-addr", os.Getenv("WALLETD_METRICS_ADDR"), &cfg.MetricsAddr)

	if err := s.setIntFromString("port", os.Getenv("WALLETD_PORT"), &cfg.Port); err != nil {
		return err
	}
	if err := s.setIntFromString("start-balance", os.Getenv("WALLETD_START_BALANCE"), &cfg.StartBalance); err != nil {
		return err
	}
	return s.setDuration("shutdown-timeout", os.Getenv("WALLETD_SHUTDOWN_TIMEOUT"), &cfg.ShutdownTimeout)
}

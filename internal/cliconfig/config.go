package cliconfig

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/bft-labs/walletd/internal/adapters"
	"github.com/bft-labs/walletd/internal/domain"
	"github.com/bft-labs/walletd/pkg/log"
)

// Defaults.
const (
	DefaultHost            = "0.0.0.0"
	DefaultPort            = 5555
	DefaultStorePath       = "wallet.db"
	DefaultLogLevel        = "info"
	DefaultShutdownTimeout = 30 * time.Second
)

// Config holds CLI configuration for walletd.
type Config struct {
	Host string
	Port int

	// StartBalance seeds the store the first time it is opened.
	StartBalance int

	StoreDriver string
	StorePath   string

	LogLevel        string
	MetricsAddr     string
	ShutdownTimeout time.Duration
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Host:            DefaultHost,
		Port:            DefaultPort,
		StoreDriver:     adapters.DriverBolt,
		StorePath:       DefaultStorePath,
		LogLevel:        DefaultLogLevel,
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}

// Addr returns the listen address as host:port.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Validate checks the configuration for errors. Returned errors wrap
// domain.ErrInvalidConfig.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return invalid("port %d out of range", c.Port)
	}
	if c.StartBalance < 0 || c.StartBalance > domain.MaxBalance {
		return invalid("start balance %d out of range 0..%d", c.StartBalance, domain.MaxBalance)
	}
	if !adapters.KnownDriver(c.StoreDriver) {
		return invalid("unknown store driver %q (want one of %v)", c.StoreDriver, adapters.Drivers)
	}
	if c.StoreDriver != adapters.DriverMemory && c.StorePath == "" {
		return invalid("store path is required for driver %s", c.StoreDriver)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return invalid("%v", err)
	}
	if c.ShutdownTimeout <= 0 {
		return invalid("shutdown timeout must be positive")
	}
	return nil
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setIntPtr sets an int from a pointer, so an explicit zero still applies.
func (s *configSetter) setIntPtr(flag string, value *int, dst *int) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setIntFromString parses a string to int and sets the destination. Zero is
// a valid value here; range checks are left to Validate.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = i
	return nil
}

package walletd

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bft-labs/walletd/internal/adapters"
	"github.com/bft-labs/walletd/internal/app"
	"github.com/bft-labs/walletd/internal/domain"
	"github.com/bft-labs/walletd/internal/ports"
	"github.com/bft-labs/walletd/pkg/log"
	"github.com/bft-labs/walletd/pkg/wire"
)

// Errors returned by Server.
var (
	ErrAlreadyRunning  = domain.ErrAlreadyRunning
	ErrNotRunning      = domain.ErrNotRunning
	ErrShutdownTimeout = domain.ErrShutdownTimeout
	ErrInvalidConfig   = domain.ErrInvalidConfig
	ErrStoreClosed     = domain.ErrStoreClosed
)

// Defaults applied by Config.SetDefaults.
const (
	DefaultAddr            = "0.0.0.0:5555"
	DefaultShutdownTimeout = app.DefaultShutdownTimeout
)

// Config holds the server configuration.
type Config struct {
	// Addr is the TCP host:port to listen on. Port 0 picks a free port.
	Addr string

	// StartBalance seeds a store that has never held a balance.
	StartBalance uint16

	// StoreDriver is one of "bolt", "file" or "memory". Ignored when
	// WithStore is used.
	StoreDriver string

	// StorePath is the bolt database file or the file driver's directory.
	StorePath string

	// MetricsAddr, when set, serves Prometheus metrics at /metrics.
	MetricsAddr string

	// ShutdownTimeout bounds how long Stop waits for open connections.
	ShutdownTimeout time.Duration
}

// SetDefaults fills zero fields.
func (c *Config) SetDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.StoreDriver == "" {
		c.StoreDriver = adapters.DriverBolt
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = DefaultShutdownTimeout
	}
}

// Validate checks the configuration. It does not check StorePath when a
// store has been injected.
func (c *Config) Validate() error {
	if _, _, err := net.SplitHostPort(c.Addr); err != nil {
		return fmt.Errorf("%w: addr %q: %v", ErrInvalidConfig, c.Addr, err)
	}
	if !adapters.KnownDriver(c.StoreDriver) {
		return fmt.Errorf("%w: unknown store driver %q", ErrInvalidConfig, c.StoreDriver)
	}
	return nil
}

// Server is a balance server that can be embedded in other applications.
// Use New to create one, then Start to begin accepting connections.
type Server struct {
	config    Config
	store     ports.BalanceStore
	ownsStore bool
	ledger    *app.Ledger
	server    *app.Server
	logger    ports.Logger

	mu     sync.Mutex
	closed bool
}

// New opens the store, seeds it with cfg.StartBalance if it is empty and
// returns a server in StateStopped.
func New(cfg Config, opts ...Option) (*Server, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := validateModuleVersions(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	store := o.store
	ownsStore := false
	if store == nil {
		if cfg.StoreDriver != adapters.DriverMemory && cfg.StorePath == "" {
			return nil, fmt.Errorf("%w: store path is required for driver %s", ErrInvalidConfig, cfg.StoreDriver)
		}
		s, err := adapters.OpenStore(cfg.StoreDriver, cfg.StorePath)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		store = s
		ownsStore = true
	}

	registry := o.registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	metrics, err := app.NewMetrics(registry)
	if err != nil {
		closeOwned(store, ownsStore)
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	ledger, err := app.OpenLedger(context.Background(), store, cfg.StartBalance, metrics)
	if err != nil {
		closeOwned(store, ownsStore)
		return nil, err
	}

	var emitter app.EventEmitter
	if o.eventHandler != nil {
		emitter = &eventEmitterWrapper{handler: o.eventHandler}
	}

	server := app.NewServer(app.ServerConfig{
		Addr:            cfg.Addr,
		ShutdownTimeout: cfg.ShutdownTimeout,
		MetricsAddr:     cfg.MetricsAddr,
	}, ledger, o.logger, emitter, metrics, registry)

	return &Server{
		config:    cfg,
		store:     store,
		ownsStore: ownsStore,
		ledger:    ledger,
		server:    server,
		logger:    o.logger,
	}, nil
}

func closeOwned(store ports.BalanceStore, owned bool) {
	if owned {
		_ = store.Close()
	}
}

// Start binds the listener and accepts connections in the background. It
// returns once the server is accepting or binding has failed. A stopped
// server can be started again; after Close, Start returns ErrStoreClosed.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	return s.server.Start(ctx)
}

// Stop stops accepting and waits for open connections to close. The store
// stays open so the server can be started again; call Close to release it.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.server.Stop()
}

// Close releases a store opened by New. It fails with ErrAlreadyRunning
// while the server is starting, running or stopping. A store injected with
// WithStore is left to the caller.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.server.State() {
	case app.StateStarting, app.StateRunning, app.StateStopping:
		return ErrAlreadyRunning
	}
	if s.closed {
		return nil
	}
	s.closed = true

	if !s.ownsStore {
		return nil
	}
	if err := s.store.Close(); err != nil {
		s.logger.Error("close store failed", log.Err(err))
		return fmt.Errorf("close store: %w", err)
	}
	return nil
}

// Status returns the current lifecycle state.
// Safe to call concurrently from any goroutine.
func (s *Server) Status() State {
	return convertState(s.server.State())
}

// Addr returns the bound listener address, or nil before Start.
func (s *Server) Addr() net.Addr {
	return s.server.Addr()
}

// ActiveConnections returns the number of open client connections.
func (s *Server) ActiveConnections() int {
	return s.server.ActiveConnections()
}

// Balance reads the committed balance under the same lock that serializes
// client instructions.
func (s *Server) Balance(ctx context.Context) (uint16, error) {
	return s.ledger.Balance(ctx)
}

// eventEmitterWrapper adapts EventHandler to the internal emitter interface.
type eventEmitterWrapper struct {
	handler EventHandler
}

func (e *eventEmitterWrapper) OnStateChange(previous, current app.State, reason string) {
	e.handler.OnStateChange(StateChangeEvent{
		Previous: convertState(previous),
		Current:  convertState(current),
		Reason:   reason,
	})
}

func convertState(s app.State) State {
	switch s {
	case app.StateStopped:
		return StateStopped
	case app.StateStarting:
		return StateStarting
	case app.StateRunning:
		return StateRunning
	case app.StateStopping:
		return StateStopping
	case app.StateCrashed:
		return StateCrashed
	default:
		return StateStopped
	}
}

// validateModuleVersions checks that the wire and log modules are at least
// at their minimum compatible versions.
func validateModuleVersions() error {
	modules := map[string]struct {
		version    string
		minVersion string
	}{
		"wire": {wire.Version, wire.MinCompatibleVersion},
		"log":  {log.Version, log.MinCompatibleVersion},
	}

	for name, m := range modules {
		if !isVersionCompatible(m.version, m.minVersion) {
			return fmt.Errorf("module %s version %s is below minimum compatible version %s",
				name, m.version, m.minVersion)
		}
	}
	return nil
}

// isVersionCompatible reports whether version >= minVersion. Both are
// "major.minor.patch".
func isVersionCompatible(version, minVersion string) bool {
	var vMajor, vMinor, vPatch int
	var mMajor, mMinor, mPatch int

	_, _ = fmt.Sscanf(version, "%d.%d.%d", &vMajor, &vMinor, &vPatch)
	_, _ = fmt.Sscanf(minVersion, "%d.%d.%d", &mMajor, &mMinor, &mPatch)

	if vMajor != mMajor {
		return vMajor > mMajor
	}
	if vMinor != mMinor {
		return vMinor > mMinor
	}
	return vPatch >= mPatch
}

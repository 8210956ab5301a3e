package walletd

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/bft-labs/walletd/internal/ports"
	"github.com/bft-labs/walletd/pkg/log"
)

// Logger is the structured logging interface used by the server.
type Logger = log.Logger

// Store persists the balance. Implementations must be safe for use by one
// caller at a time; the server serializes every access.
type Store = ports.BalanceStore

// Option configures optional behavior of Server.
type Option func(*options)

type options struct {
	logger       ports.Logger
	store        ports.BalanceStore
	eventHandler EventHandler
	registry     *prometheus.Registry
}

func defaultOptions() options {
	return options{logger: log.Discard}
}

// WithLogger sets a custom logger. If not provided, nothing is logged.
func WithLogger(logger Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithStore uses store instead of opening one from Config. The caller keeps
// ownership and must close it after Stop.
func WithStore(store Store) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithEventHandler sets a handler for lifecycle events.
// Events are called synchronously from Start and Stop.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

// WithMetricsRegistry registers the server's collectors with reg instead of
// a private registry. Config.MetricsAddr serves whatever reg gathers.
func WithMetricsRegistry(reg *prometheus.Registry) Option {
	return func(o *options) {
		o.registry = reg
	}
}

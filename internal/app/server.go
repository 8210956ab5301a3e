package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bft-labs/walletd/internal/domain"
	"github.com/bft-labs/walletd/internal/ports"
	"github.com/bft-labs/walletd/pkg/log"
)

const metricsShutdownTimeout = 5 * time.Second

// ServerConfig contains configuration for the listener.
type ServerConfig struct {
	// Addr is the TCP host:port to listen on.
	Addr string

	// ShutdownTimeout bounds how long Stop waits for open connections to
	// close on their own.
	ShutdownTimeout time.Duration

	// MetricsAddr, when set, serves /metrics on a separate HTTP listener.
	MetricsAddr string
}

// Server accepts client connections and runs one handler goroutine per
// connection. Handlers share nothing except the Ledger.
type Server struct {
	config    ServerConfig
	ledger    *Ledger
	logger    ports.Logger
	lifecycle *Lifecycle
	metrics   *Metrics
	gatherer  prometheus.Gatherer

	mu         sync.Mutex
	listener   net.Listener
	metricsSrv *http.Server
	cancel     context.CancelFunc
	acceptDone chan struct{}
}

// NewServer creates a stopped server. metrics and gatherer may be nil.
func NewServer(
	config ServerConfig,
	ledger *Ledger,
	logger ports.Logger,
	emitter EventEmitter,
	metrics *Metrics,
	gatherer prometheus.Gatherer,
) *Server {
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = DefaultShutdownTimeout
	}
	return &Server{
		config:    config,
		ledger:    ledger,
		logger:    logger,
		lifecycle: NewLifecycle(logger, emitter),
		metrics:   metrics,
		gatherer:  gatherer,
	}
}

// Start binds the listener and begins accepting in the background. It
// returns once the server is accepting or binding has failed.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.lifecycle.CanStart() {
		return domain.ErrAlreadyRunning
	}
	if err := s.lifecycle.TransitionTo(StateStarting, "Start() called"); err != nil {
		return err
	}

	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		_ = s.lifecycle.TransitionTo(StateCrashed, "listen failed")
		return fmt.Errorf("listen %s: %w", s.config.Addr, err)
	}

	if err := s.startMetrics(); err != nil {
		_ = ln.Close()
		_ = s.lifecycle.TransitionTo(StateCrashed, "metrics listen failed")
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.listener = ln
	s.cancel = cancel
	s.acceptDone = make(chan struct{})

	go s.acceptLoop(runCtx, ln, s.acceptDone)

	s.logger.Info("listening", log.String("addr", ln.Addr().String()))
	return s.lifecycle.TransitionTo(StateRunning, "listening")
}

// Stop closes the listener and waits for open connections to finish. Open
// connections are not interrupted; if they outlive ShutdownTimeout, Stop
// returns domain.ErrShutdownTimeout and leaves them running.
func (s *Server) Stop() error {
	s.mu.Lock()
	if !s.lifecycle.CanStop() {
		s.mu.Unlock()
		return domain.ErrNotRunning
	}
	if err := s.lifecycle.TransitionTo(StateStopping, "Stop() called"); err != nil {
		s.mu.Unlock()
		return err
	}

	s.cancel()
	_ = s.listener.Close()
	acceptDone := s.acceptDone
	metricsSrv := s.metricsSrv
	s.metricsSrv = nil
	s.mu.Unlock()

	<-acceptDone

	if metricsSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		if err := metricsSrv.Shutdown(ctx); err != nil {
			s.logger.Warn("metrics shutdown failed", log.Err(err))
		}
		cancel()
	}

	err := s.lifecycle.Drain(s.config.ShutdownTimeout)
	if err != nil {
		_ = s.lifecycle.TransitionTo(StateCrashed, "shutdown timeout")
		return err
	}
	return s.lifecycle.TransitionTo(StateStopped, "graceful shutdown")
}

// State returns the current lifecycle state.
func (s *Server) State() State {
	return s.lifecycle.State()
}

// Addr returns the bound listener address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// ActiveConnections returns the number of open client connections.
func (s *Server) ActiveConnections() int {
	return s.lifecycle.Active()
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener, done chan<- struct{}) {
	defer close(done)

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	// Handlers outlive Stop, so their store calls must not see its cancel.
	handlerCtx := context.WithoutCancel(ctx)
	retry := newBackoff(acceptBackoffInitial, acceptBackoffMax)

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warn("accept failed",
				log.Err(err),
				log.Duration("retry_in", retry.Current()),
			)
			if !retry.Wait(ctx) {
				return
			}
			continue
		}
		retry.Reset()

		s.lifecycle.AddWorker()
		go s.serveConn(handlerCtx, conn)
	}
}

func (s *Server) startMetrics() error {
	if s.config.MetricsAddr == "" || s.gatherer == nil {
		return nil
	}

	ln, err := net.Listen("tcp", s.config.MetricsAddr)
	if err != nil {
		return fmt.Errorf("listen metrics %s: %w", s.config.MetricsAddr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	s.metricsSrv = srv

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("metrics server failed", log.Err(err))
		}
	}()
	s.logger.Info("serving metrics", log.String("addr", ln.Addr().String()))
	return nil
}

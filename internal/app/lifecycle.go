package app

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/bft-labs/walletd/internal/domain"
	"github.com/bft-labs/walletd/internal/ports"
	"github.com/bft-labs/walletd/pkg/log"
)

// DefaultShutdownTimeout bounds how long Stop waits for open connections.
const DefaultShutdownTimeout = 30 * time.Second

// State represents the lifecycle state of the server.
type State int

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
	StateCrashed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "Stopped"
	case StateStarting:
		return "Starting"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateCrashed:
		return "Crashed"
	default:
		return "Unknown"
	}
}

// EventEmitter is called when lifecycle state changes.
type EventEmitter interface {
	OnStateChange(previous, current State, reason string)
}

// Lifecycle is the server state machine. It also counts connection handlers
// so Stop can wait for them to drain.
type Lifecycle struct {
	mu      sync.RWMutex
	state   State
	logger  ports.Logger
	emitter EventEmitter

	wg     sync.WaitGroup
	active atomic.Int64
}

// NewLifecycle creates a lifecycle in StateStopped.
func NewLifecycle(logger ports.Logger, emitter EventEmitter) *Lifecycle {
	return &Lifecycle{
		state:   StateStopped,
		logger:  logger,
		emitter: emitter,
	}
}

// State returns the current lifecycle state.
func (l *Lifecycle) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// TransitionTo moves to newState, rejecting transitions the state machine
// does not allow.
func (l *Lifecycle) TransitionTo(newState State, reason string) error {
	l.mu.Lock()
	oldState := l.state
	if err := checkTransition(oldState, newState); err != nil {
		l.mu.Unlock()
		return err
	}
	l.state = newState
	l.mu.Unlock()

	if l.emitter != nil {
		l.emitter.OnStateChange(oldState, newState, reason)
	}

	l.logger.Info("state transition",
		log.String("from", oldState.String()),
		log.String("to", newState.String()),
		log.String("reason", reason),
	)
	return nil
}

func checkTransition(from, to State) error {
	switch from {
	case StateStopped, StateCrashed:
		if to != StateStarting {
			return domain.ErrNotRunning
		}
	case StateStarting:
		if to != StateRunning && to != StateStopping && to != StateCrashed {
			return domain.ErrAlreadyRunning
		}
	case StateRunning:
		if to != StateStopping && to != StateCrashed {
			return domain.ErrAlreadyRunning
		}
	case StateStopping:
		if to != StateStopped && to != StateCrashed {
			return domain.ErrAlreadyRunning
		}
	}
	return nil
}

// CanStart returns true if Start() can be called.
func (l *Lifecycle) CanStart() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state == StateStopped || l.state == StateCrashed
}

// CanStop returns true if Stop() can be called.
func (l *Lifecycle) CanStop() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state == StateRunning || l.state == StateStarting
}

// AddWorker registers a connection handler.
func (l *Lifecycle) AddWorker() {
	l.wg.Add(1)
	l.active.Add(1)
}

// WorkerDone unregisters a connection handler.
func (l *Lifecycle) WorkerDone() {
	l.active.Add(-1)
	l.wg.Done()
}

// Active returns the number of running handlers.
func (l *Lifecycle) Active() int {
	return int(l.active.Load())
}

// Drain waits for every handler to return. Handlers are never interrupted;
// if they are still running after timeout, Drain gives up and returns
// domain.ErrShutdownTimeout.
func (l *Lifecycle) Drain(timeout time.Duration) error {
	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		l.logger.Warn("connections still open after shutdown timeout",
			log.Duration("timeout", timeout),
			log.Int("active", l.Active()),
		)
		return domain.ErrShutdownTimeout
	}
}

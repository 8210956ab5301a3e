// Package memory provides an in-process balance store for tests and
// ephemeral servers. Nothing survives process exit.
package memory

import (
	"context"
	"sync"

	"github.com/bft-labs/walletd/internal/domain"
)

// Store implements ports.BalanceStore in memory.
type Store struct {
	mu      sync.Mutex
	balance uint16
	set     bool
	closed  bool

	// failLoad and failSave, when non-nil, are returned instead of touching
	// the value. See SetFaults.
	failLoad error
	failSave error
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

// Init seeds the store with start unless it already holds a balance.
func (s *Store) Init(ctx context.Context, start uint16) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrStoreClosed
	}
	if !s.set {
		s.balance = start
		s.set = true
	}
	return nil
}

// Load returns the balance, or domain.ErrNoBalance before Init.
func (s *Store) Load(ctx context.Context) (uint16, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.closed:
		return 0, domain.ErrStoreClosed
	case s.failLoad != nil:
		return 0, s.failLoad
	case !s.set:
		return 0, domain.ErrNoBalance
	}
	return s.balance, nil
}

// Save replaces the balance.
func (s *Store) Save(ctx context.Context, balance uint16) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.closed:
		return domain.ErrStoreClosed
	case s.failSave != nil:
		return s.failSave
	}
	s.balance = balance
	s.set = true
	return nil
}

// Close marks the store closed; later calls return domain.ErrStoreClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// SetFaults makes Load and Save return load and save instead of touching
// the value. nil clears a fault.
func (s *Store) SetFaults(load, save error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failLoad = load
	s.failSave = save
}

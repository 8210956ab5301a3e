package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/bft-labs/walletd/internal/domain"
	"github.com/bft-labs/walletd/internal/ports"
)

// Ledger is the single entry point to the balance. Every read-modify-write
// runs under one process-wide mutex, so no two instructions ever act on the
// same pre-mutation balance. The store's own locking is not relied on.
type Ledger struct {
	mu      sync.Mutex
	store   ports.BalanceStore
	metrics *Metrics
}

// OpenLedger initializes store with start (only if it holds no balance yet)
// and verifies the stored balance is readable.
func OpenLedger(ctx context.Context, store ports.BalanceStore, start uint16, metrics *Metrics) (*Ledger, error) {
	if err := store.Init(ctx, start); err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	current, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load balance: %w", err)
	}
	metrics.setBalance(current)
	return &Ledger{store: store, metrics: metrics}, nil
}

// Execute applies instr to the stored balance. The new balance is persisted
// only when the instruction succeeds. On a storage error the result is
// domain.Rejected and the persisted value is whatever it was before.
func (l *Ledger) Execute(ctx context.Context, instr domain.Instruction) (domain.Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	current, err := l.store.Load(ctx)
	if err != nil {
		return domain.Rejected, fmt.Errorf("load balance: %w", err)
	}

	res := domain.Apply(current, instr)
	if !res.OK() {
		return res, nil
	}

	if err := l.store.Save(ctx, res.Value); err != nil {
		return domain.Rejected, fmt.Errorf("save balance: %w", err)
	}
	l.metrics.setBalance(res.Value)
	return res, nil
}

// Balance returns the current balance without mutating it.
func (l *Ledger) Balance(ctx context.Context) (uint16, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.Load(ctx)
}

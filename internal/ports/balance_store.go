package ports

import "context"

// BalanceStore persists the account balance.
//
// Load and Save are individually atomic with respect to storage but carry no
// cross-call concurrency guarantee. Callers serialize read-modify-write
// sequences themselves.
type BalanceStore interface {
	// Init stores start if no balance has ever been persisted. An existing
	// balance is left untouched.
	Init(ctx context.Context, start uint16) error

	// Load returns the most recently saved balance.
	Load(ctx context.Context) (uint16, error)

	// Save persists balance.
	Save(ctx context.Context, balance uint16) error

	// Close releases the underlying storage.
	Close() error
}

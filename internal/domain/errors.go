package domain

import "errors"

// Domain errors represent error conditions in the walletd domain.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrAlreadyRunning is returned when Start() is called on a running server.
	ErrAlreadyRunning = errors.New("walletd: already running")

	// ErrNotRunning is returned when Stop() is called on a stopped server.
	ErrNotRunning = errors.New("walletd: not running")

	// ErrShutdownTimeout is returned when connection handlers do not drain in time.
	ErrShutdownTimeout = errors.New("walletd: shutdown timeout")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("walletd: invalid configuration")

	// ErrStoreClosed is returned by balance stores used after Close.
	ErrStoreClosed = errors.New("walletd: store closed")

	// ErrNoBalance is returned by Load when nothing has been persisted yet.
	ErrNoBalance = errors.New("walletd: no persisted balance")

	// ErrCorruptBalance is returned when a persisted balance cannot be decoded.
	ErrCorruptBalance = errors.New("walletd: corrupt persisted balance")
)

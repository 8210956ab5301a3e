// Package ports defines the interfaces that connect the application layer to
// infrastructure adapters.
//
// # Port Interfaces
//
//   - [BalanceStore]: durable holder of the single account balance
//   - [Logger]: structured logging abstraction
//
// The application layer (internal/app) depends only on these interfaces.
// Adapters under internal/adapters implement them with bbolt, the file
// system, or plain memory.
package ports

// Package domain contains the core domain entities and value objects for walletd.
//
// This package is the innermost layer. It has no dependencies on
// infrastructure concerns (network, storage, logging) and contains only the
// balance rules.
//
// # Entities
//
//   - [Balance]: the single account value, always within [0, MaxBalance]
//   - [Instruction]: a decoded credit or debit request
//   - [Result]: the outcome of applying an instruction
//
// # Mutation
//
// [Apply] is the mutation engine. It is a pure function: it never touches
// storage and never panics. Persisting the new balance is the caller's job.
package domain

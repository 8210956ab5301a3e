package ports

import "github.com/bft-labs/walletd/pkg/log"

// Logger is the structured logger used by the application layer.
type Logger = log.Logger

// Field is a structured log field.
type Field = log.Field

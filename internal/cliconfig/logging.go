package cliconfig

import (
	"github.com/rs/zerolog"

	"github.com/bft-labs/walletd/pkg/log"
)

var logger = zerolog.New(log.ConsoleOutput()).With().Timestamp().Logger()

// Logger returns the console logger used by the binaries.
func Logger() zerolog.Logger {
	return logger
}

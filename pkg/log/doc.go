// Package log provides the logging abstraction used across walletd.
//
// Components depend on the Logger interface only. Two implementations ship
// with the package: a zerolog adapter for production and a no-op logger that
// library users get when they do not configure one.
//
//	logger := log.NewZerologAdapter(log.ConsoleOutput())
//	logger.Info("listening", log.String("addr", addr))
//
// Levels are global, following zerolog; use SetLevel to change them at
// runtime (the config watcher does this when log_level is edited).
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package log

// Package walletd serves a single durable balance over TCP.
//
// Example usage:
//
//	cfg := walletd.Config{
//	    Addr:      ":5555",
//	    StorePath: "/var/lib/walletd/wallet.db",
//	}
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer stop()
//	if err := walletd.Run(ctx, cfg); err != nil {
//	    log.Fatal(err)
//	}
//
// For finer control over the lifecycle use package
// github.com/bft-labs/walletd/pkg/walletd directly.
package walletd

import (
	"context"

	"github.com/bft-labs/walletd/pkg/walletd"
)

// Config holds the server configuration.
type Config = walletd.Config

// Option configures optional behavior of the server.
type Option = walletd.Option

// Run starts a server and blocks until ctx is canceled, then stops it and
// closes its store.
// Connections still open after cfg.ShutdownTimeout are reported as
// walletd.ErrShutdownTimeout.
func Run(ctx context.Context, cfg Config, opts ...Option) error {
	srv, err := walletd.New(cfg, opts...)
	if err != nil {
		return err
	}
	if err := srv.Start(ctx); err != nil {
		_ = srv.Close()
		return err
	}

	<-ctx.Done()
	if err := srv.Stop(); err != nil {
		return err
	}
	return srv.Close()
}

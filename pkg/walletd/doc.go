// Package walletd provides an embeddable balance server.
//
// walletd keeps a single unsigned 16-bit balance in a durable store and
// serves credit and debit instructions over TCP using the fixed 4-byte frame
// format described in package wire. It can be run as the walletd binary or
// embedded in another Go program.
//
// # Basic Usage
//
//	cfg := walletd.Config{
//	    Addr:      "127.0.0.1:5555",
//	    StorePath: "/var/lib/walletd/wallet.db",
//	}
//
//	srv, err := walletd.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := srv.Start(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//
//	// ... run until shutdown signal ...
//
//	if err := srv.Stop(); err != nil {
//	    log.Printf("shutdown error: %v", err)
//	}
//	if err := srv.Close(); err != nil {
//	    log.Printf("close store: %v", err)
//	}
//
// # Storage
//
// The balance lives in a bbolt database by default. Config.StoreDriver
// selects "file" (a JSON document in a directory) or "memory" instead, and
// [WithStore] injects any other implementation of [Store].
//
// StartBalance only seeds an empty store. A store that already holds a
// balance keeps it.
//
// # Lifecycle States
//
// A server is in one of five states: [StateStopped], [StateStarting],
// [StateRunning], [StateStopping], or [StateCrashed]. Stop never interrupts
// open connections; if they outlive Config.ShutdownTimeout, Stop returns
// ErrShutdownTimeout and the server reports [StateCrashed].
//
// Stop leaves the store open, so a stopped server can be started again.
// Close releases the store; after Close the server cannot be restarted.
package walletd

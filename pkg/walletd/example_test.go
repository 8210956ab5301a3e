package walletd_test

import (
	"context"
	"fmt"

	"github.com/bft-labs/walletd/pkg/client"
	"github.com/bft-labs/walletd/pkg/walletd"
)

// ExampleNew demonstrates how to embed walletd in your application.
func ExampleNew() {
	cfg := walletd.Config{
		Addr:         "127.0.0.1:0",
		StoreDriver:  "memory",
		StartBalance: 100,
	}

	srv, err := walletd.New(cfg)
	if err != nil {
		fmt.Printf("failed to create server: %v\n", err)
		return
	}
	if err := srv.Start(context.Background()); err != nil {
		fmt.Printf("failed to start: %v\n", err)
		return
	}

	c, err := client.Dial(context.Background(), srv.Addr().String())
	if err != nil {
		fmt.Printf("dial: %v\n", err)
		return
	}
	balance, _ := c.Debit(40)
	_ = c.Close()
	fmt.Printf("balance: %d\n", balance)

	_ = srv.Stop()
	_ = srv.Close()

	// Output: balance: 60
}

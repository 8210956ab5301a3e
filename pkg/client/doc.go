// Package client talks to a walletd server.
//
// A Client holds one connection and sends one instruction at a time:
//
//	c, err := client.Dial(ctx, "127.0.0.1:5555")
//	if err != nil {
//	    return err
//	}
//	defer c.Close()
//
//	balance, err := c.Credit(200)
//	switch {
//	case errors.Is(err, client.ErrRejected):
//	    // business rule: insufficient funds, overflow, unknown instruction
//	case err != nil:
//	    // network problem
//	}
//
// A rejection never closes the connection; a network error leaves the
// Client unusable.
package client

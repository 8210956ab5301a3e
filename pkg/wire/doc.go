// Package wire implements the walletd frame format.
//
// Every message, request or response, is exactly four bytes: a two-byte
// ASCII tag followed by a big-endian uint16. There is no length prefix,
// checksum or version field.
//
//	request:  "CR" | "DB"  amount
//	response: "BA" | "ER"  balance (0 for "ER")
//
// # Usage
//
//	if err := wire.WriteFrame(conn, wire.Frame{Tag: wire.TagCredit, Value: 200}); err != nil {
//	    return err
//	}
//	resp, err := wire.ReadFrame(conn)
//	if errors.Is(err, wire.ErrConnectionClosed) {
//	    // peer went away
//	}
//
// ReadFrame never rejects a tag; deciding whether a tag is meaningful is left
// to the caller.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package wire

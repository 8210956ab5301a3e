package main

import (
	"errors"
	"fmt"

	"github.com/bft-labs/walletd/pkg/client"
)

// Exit codes.
const (
	exitUsage    = 1
	exitRejected = 2
	exitNetwork  = 3
)

var (
	errRejected = errors.New("rejected by server")
	errNetwork  = errors.New("network error")
)

// describe separates server rejections from transport failures so scripts
// can tell them apart by exit code.
func describe(err error) error {
	if errors.Is(err, client.ErrRejected) {
		return errRejected
	}
	return fmt.Errorf("%w: %v", errNetwork, err)
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, errRejected):
		return exitRejected
	case errors.Is(err, errNetwork):
		return exitNetwork
	default:
		return exitUsage
	}
}

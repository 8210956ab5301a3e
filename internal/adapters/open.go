// Package adapters selects a BalanceStore implementation by driver name.
package adapters

import (
	"fmt"

	"github.com/bft-labs/walletd/internal/adapters/bolt"
	"github.com/bft-labs/walletd/internal/adapters/fs"
	"github.com/bft-labs/walletd/internal/adapters/memory"
	"github.com/bft-labs/walletd/internal/ports"
)

// Store drivers.
const (
	DriverBolt   = "bolt"
	DriverFile   = "file"
	DriverMemory = "memory"
)

// Drivers lists every supported driver name.
var Drivers = []string{DriverBolt, DriverFile, DriverMemory}

// KnownDriver reports whether name is a supported driver.
func KnownDriver(name string) bool {
	for _, d := range Drivers {
		if d == name {
			return true
		}
	}
	return false
}

// OpenStore opens the store for driver at location. For bolt the location is
// a database file, for file it is a directory, and memory ignores it.
func OpenStore(driver, location string) (ports.BalanceStore, error) {
	switch driver {
	case DriverBolt:
		s, err := bolt.Open(location)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverFile:
		return fs.NewBalanceFileStore(location), nil
	case DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}

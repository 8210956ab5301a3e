package walletd

import (
	"github.com/bft-labs/walletd/pkg/log"
	"github.com/bft-labs/walletd/pkg/wire"
)

// Version information for the walletd module.
const (
	Version              = "1.0.0"
	MinCompatibleVersion = "1.0.0"
)

// ModuleVersions returns the version of each sub-module.
func ModuleVersions() map[string]string {
	return map[string]string{
		"walletd": Version,
		"wire":    wire.Version,
		"log":     log.Version,
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/walletd/internal/cliconfig"
	"github.com/bft-labs/walletd/pkg/log"
	"github.com/bft-labs/walletd/pkg/walletd"
)

const helpDescription = `
Serve a single durable balance over TCP.

Clients send 4-byte frames: a 2-byte tag (CR to credit, DB to debit) and a
big-endian 16-bit amount. Every reply is BA with the new balance, or ER
with zero when the instruction was rejected. CR 0 reads the balance.

Configure via $HOME/.walletd/config.toml, WALLETD_* environment variables,
or flags. Flags win over the environment, which wins over the file.
`

var exampleUsage = strings.TrimSpace(`
  walletd --port 5555 --db /var/lib/walletd/wallet.db
  walletd --store memory --start-balance 1000 --log-level debug
  walletd --config /etc/walletd/config.toml --metrics-addr :9100
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	logger := cliconfig.Logger()

	root := &cobra.Command{
		Use:     "walletd",
		Short:   "Serve a single durable balance over TCP",
		Long:    strings.TrimSpace(helpDescription),
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := log.SetLevel(cfg.LogLevel); err != nil {
				return err
			}

			logger.Info().Interface("config", cfg).Msg("configuration")

			adapter := log.NewZerologAdapterWithLogger(logger)
			srv, err := walletd.New(walletd.Config{
				Addr:            cfg.Addr(),
				StartBalance:    uint16(cfg.StartBalance),
				StoreDriver:     cfg.StoreDriver,
				StorePath:       cfg.StorePath,
				MetricsAddr:     cfg.MetricsAddr,
				ShutdownTimeout: cfg.ShutdownTimeout,
			}, walletd.WithLogger(adapter))
			if err != nil {
				return fmt.Errorf("create server: %w", err)
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			if cfgFile != "" && cliconfig.FileExists(cfgFile) && !changed["log-level"] {
				watcher := cliconfig.NewWatcher(cfgFile, adapter, func(fc cliconfig.FileConfig) {
					applyLogLevel(adapter, fc.LogLevel)
				})
				go func() {
					if err := watcher.Run(ctx); err != nil {
						adapter.Warn("config watcher stopped", log.Err(err))
					}
				}()
			}

			if err := srv.Start(ctx); err != nil {
				_ = srv.Close()
				return fmt.Errorf("start server: %w", err)
			}

			sig := <-sigCh
			logger.Info().Str("signal", sig.String()).Msg("received signal, stopping...")

			if err := srv.Stop(); err != nil {
				if errors.Is(err, walletd.ErrShutdownTimeout) {
					logger.Error().Int("connections", srv.ActiveConnections()).Msg("connections still open at shutdown")
				}
				return fmt.Errorf("stop server: %w", err)
			}
			return srv.Close()
		},
	}

	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.walletd/config.toml)")
	root.Flags().StringVar(&cfg.Host, "host", cfg.Host, "interface to listen on")
	root.Flags().IntVar(&cfg.Port, "port", cfg.Port, "TCP port to listen on (0 picks a free port)")
	root.Flags().IntVar(&cfg.StartBalance, "start-balance", cfg.StartBalance, "balance written to an empty store on first start")
	root.Flags().StringVar(&cfg.StoreDriver, "store", cfg.StoreDriver, "store driver: bolt, file or memory")
	root.Flags().StringVar(&cfg.StorePath, "db", cfg.StorePath, "bolt database file, or directory for the file driver")
	root.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: trace, debug, info, warn, error or disabled")
	root.Flags().StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "serve Prometheus metrics on this address (disabled when empty)")
	root.Flags().DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "how long to wait for open connections on shutdown")

	if err := root.Execute(); err != nil {
		logger.Error().Err(err).Msg("walletd")
		os.Exit(1)
	}
}

// applyLogLevel changes the global level. An empty or invalid value leaves
// the current level in place.
func applyLogLevel(logger log.Logger, level string) {
	if level == "" {
		return
	}
	if err := log.SetLevel(level); err != nil {
		logger.Warn("ignoring log_level from config", log.String("level", level), log.Err(err))
		return
	}
	logger.Info("log level changed", log.String("level", level))
}

package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/bft-labs/walletd/internal/cliconfig"
	"github.com/bft-labs/walletd/pkg/client"
	"github.com/bft-labs/walletd/pkg/wire"
)

type globalOptions struct {
	host    string
	port    int
	timeout time.Duration
}

func (o globalOptions) addr() string {
	return net.JoinHostPort(o.host, strconv.Itoa(o.port))
}

func main() {
	opts := globalOptions{
		host:    "127.0.0.1",
		port:    cliconfig.DefaultPort,
		timeout: 5 * time.Second,
	}

	root := &cobra.Command{
		Use:           "walletctl",
		Short:         "Send instructions to a walletd server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.host, "host", opts.host, "server host")
	root.PersistentFlags().IntVar(&opts.port, "port", opts.port, "server port")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", opts.timeout, "per-request timeout")

	root.AddCommand(
		oneShotCommand(&opts, "credit <amount>", "Add amount to the balance", wire.TagCredit),
		oneShotCommand(&opts, "debit <amount>", "Subtract amount from the balance", wire.TagDebit),
		balanceCommand(&opts),
		shellCommand(&opts),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "walletctl:", err)
		os.Exit(exitCode(err))
	}
}

func oneShotCommand(opts *globalOptions, use, short string, tag wire.Tag) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			return send(cmd, opts, tag, amount)
		},
	}
}

func balanceCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Print the current balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return send(cmd, opts, wire.TagCredit, 0)
		},
	}
}

func send(cmd *cobra.Command, opts *globalOptions, tag wire.Tag, amount uint16) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
	defer cancel()

	balance, err := client.Send(ctx, opts.addr(), tag, amount, client.WithTimeout(opts.timeout))
	if err != nil {
		return describe(err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), balance)
	return nil
}

func parseAmount(raw string) (uint16, error) {
	v, err := strconv.ParseUint(raw, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("amount %q must be an integer between 0 and 65535", raw)
	}
	return uint16(v), nil
}

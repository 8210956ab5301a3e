package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bft-labs/walletd/pkg/client"
	"github.com/bft-labs/walletd/pkg/wire"
)

const shellHelp = `commands:
  credit <n> | cr <n>   add n to the balance
  debit <n>  | db <n>   subtract n from the balance
  balance    | b        print the balance
  raw <tag> <n>         send any two-character tag, e.g. raw XX 1
  quit       | exit     close the connection`

func shellCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Open one connection and send instructions interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.Dial(cmd.Context(), opts.addr(), client.WithTimeout(opts.timeout))
			if err != nil {
				return describe(err)
			}
			defer c.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "connected to %s, type help for commands\n", opts.addr())
			return runShell(cmd.InOrStdin(), cmd.OutOrStdout(), c)
		},
	}
}

// runShell reads commands from in until EOF or quit. Rejections are printed
// and the session continues; transport errors end it.
func runShell(in io.Reader, out io.Writer, c *client.Client) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		tag, amount, quit, err := parseShellLine(fields)
		switch {
		case quit:
			return nil
		case err != nil:
			fmt.Fprintln(out, err)
			continue
		}

		balance, err := c.Do(tag, amount)
		switch {
		case errors.Is(err, client.ErrRejected):
			fmt.Fprintln(out, "rejected")
		case err != nil:
			return describe(err)
		default:
			fmt.Fprintln(out, balance)
		}
	}
}

var errShellHelp = errors.New(shellHelp)

func parseShellLine(fields []string) (tag wire.Tag, amount uint16, quit bool, err error) {
	cmd := strings.ToLower(fields[0])
	switch cmd {
	case "quit", "exit", "q":
		return tag, 0, true, nil
	case "help", "?":
		return tag, 0, false, errShellHelp
	case "balance", "b":
		if len(fields) != 1 {
			return tag, 0, false, fmt.Errorf("usage: %s", cmd)
		}
		return wire.TagCredit, 0, false, nil
	case "raw":
		if len(fields) != 3 {
			return tag, 0, false, fmt.Errorf("usage: raw <tag> <amount>")
		}
		if tag, err = wire.ParseTag(fields[1]); err != nil {
			return tag, 0, false, err
		}
		amount, err = parseAmount(fields[2])
		return tag, amount, false, err
	case "credit", "cr":
		tag = wire.TagCredit
	case "debit", "db":
		tag = wire.TagDebit
	default:
		return tag, 0, false, fmt.Errorf("unknown command %q, type help", fields[0])
	}

	if len(fields) != 2 {
		return tag, 0, false, fmt.Errorf("usage: %s <amount>", cmd)
	}
	amount, err = parseAmount(fields[1])
	return tag, amount, false, err
}

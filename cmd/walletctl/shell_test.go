package main

import (
	"bytes"
	"errors"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/walletd/pkg/client"
	"github.com/bft-labs/walletd/pkg/wire"
)

func TestParseShellLine(t *testing.T) {
	tests := []struct {
		line    string
		tag     wire.Tag
		amount  uint16
		quit    bool
		wantErr bool
	}{
		{line: "credit 10", tag: wire.TagCredit, amount: 10},
		{line: "CR 65535", tag: wire.TagCredit, amount: 65535},
		{line: "db 3", tag: wire.TagDebit, amount: 3},
		{line: "balance", tag: wire.TagCredit, amount: 0},
		{line: "quit", quit: true},
		{line: "raw XX 7", tag: wire.Tag{'X', 'X'}, amount: 7},
		{line: "raw DB 2", tag: wire.TagDebit, amount: 2},
		{line: "raw XXX 7", wantErr: true},
		{line: "raw XX", wantErr: true},
		{line: "debit", wantErr: true},
		{line: "debit 65536", wantErr: true},
		{line: "debit -1", wantErr: true},
		{line: "balance 4", wantErr: true},
		{line: "transfer 4", wantErr: true},
		{line: "help", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			tag, amount, quit, err := parseShellLine(strings.Fields(tt.line))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.quit, quit)
			if !tt.quit {
				assert.Equal(t, tt.tag, tag)
				assert.Equal(t, tt.amount, amount)
			}
		})
	}
}

// scriptedServer answers each frame from a fixed list of responses.
func scriptedServer(t *testing.T, conn net.Conn, responses []wire.Frame) {
	t.Helper()
	go func() {
		defer conn.Close()
		for _, resp := range responses {
			if _, err := wire.ReadFrame(conn); err != nil {
				return
			}
			if err := wire.WriteFrame(conn, resp); err != nil {
				return
			}
		}
	}()
}

func TestRunShell(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	scriptedServer(t, serverConn, []wire.Frame{
		{Tag: wire.TagBalance, Value: 10},
		{Tag: wire.TagError, Value: 0},
		{Tag: wire.TagError, Value: 0},
		{Tag: wire.TagBalance, Value: 10},
	})
	c := client.New(clientConn)
	defer c.Close()

	in := strings.NewReader("credit 10\n\nbogus\ndebit 50\nraw XX 1\nbalance\nquit\ncredit 1\n")
	var out bytes.Buffer
	require.NoError(t, runShell(in, &out, c))

	text := out.String()
	assert.Contains(t, text, "10\n")
	assert.Contains(t, text, "unknown command")
	assert.Contains(t, text, "rejected\n")
}

func TestRunShell_TransportError(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	require.NoError(t, serverConn.Close())
	c := client.New(clientConn)
	defer c.Close()

	err := runShell(strings.NewReader("balance\n"), &bytes.Buffer{}, c)
	assert.True(t, errors.Is(err, errNetwork), "got %v", err)
	assert.Equal(t, exitNetwork, exitCode(err))
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, exitRejected, exitCode(describe(client.ErrRejected)))
	assert.Equal(t, exitNetwork, exitCode(describe(errors.New("connection refused"))))
	assert.Equal(t, exitUsage, exitCode(errors.New("bad amount")))
}

package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/walletd/internal/adapters/bolt"
	"github.com/bft-labs/walletd/internal/adapters/memory"
	"github.com/bft-labs/walletd/internal/domain"
	"github.com/bft-labs/walletd/internal/ports"
	"github.com/bft-labs/walletd/pkg/client"
	"github.com/bft-labs/walletd/pkg/log"
	"github.com/bft-labs/walletd/pkg/wire"
)

// testLogger records messages by level.
type testLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *testLogger) Debug(msg string, fields ...log.Field) { l.log("DEBUG", msg) }
func (l *testLogger) Info(msg string, fields ...log.Field)  { l.log("INFO", msg) }
func (l *testLogger) Warn(msg string, fields ...log.Field)  { l.log("WARN", msg) }
func (l *testLogger) Error(msg string, fields ...log.Field) { l.log("ERROR", msg) }

func (l *testLogger) log(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, fmt.Sprintf("[%s] %s", level, msg))
}

func (l *testLogger) Has(entry string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, m := range l.messages {
		if m == entry {
			return true
		}
	}
	return false
}

func startServer(t *testing.T, store ports.BalanceStore, logger ports.Logger) *Server {
	t.Helper()
	ledger, err := OpenLedger(context.Background(), store, 0, nil)
	require.NoError(t, err)

	srv := NewServer(ServerConfig{Addr: "127.0.0.1:0", ShutdownTimeout: time.Second}, ledger, logger, nil, nil, nil)
	require.NoError(t, srv.Start(context.Background()))
	t.Cleanup(func() {
		if srv.State() == StateRunning {
			_ = srv.Stop()
		}
	})
	return srv
}

func dial(t *testing.T, srv *Server) *client.Client {
	t.Helper()
	c, err := client.Dial(context.Background(), srv.Addr().String(), client.WithTimeout(5*time.Second))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestServer_Scenario(t *testing.T) {
	srv := startServer(t, memory.New(), log.Discard)
	c := dial(t, srv)

	got, err := c.Credit(200)
	require.NoError(t, err)
	assert.Equal(t, uint16(200), got)

	got, err = c.Debit(50)
	require.NoError(t, err)
	assert.Equal(t, uint16(150), got)

	_, err = c.Debit(151)
	assert.ErrorIs(t, err, client.ErrRejected)

	_, err = c.Credit(65400)
	assert.ErrorIs(t, err, client.ErrRejected)

	got, err = c.Balance()
	require.NoError(t, err)
	assert.Equal(t, uint16(150), got)
}

func TestServer_UnknownInstructionKeepsConnection(t *testing.T) {
	logger := &testLogger{}
	srv := startServer(t, memory.New(), logger)

	conn, err := net.Dial("tcp", srv.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte{'C', 'R', 0x00, 0x0A})
	require.NoError(t, err)
	resp, err := wire.ReadFrame(conn)
	require.NoError(t, err)
	assert.Equal(t, wire.Frame{Tag: wire.TagBalance, Value: 10}, resp)

	_, err = conn.Write([]byte{'X', 'X', 0x12, 0x34})
	require.NoError(t, err)
	resp, err = wire.ReadFrame(conn)
	require.NoError(t, err)
	assert.Equal(t, wire.Frame{Tag: wire.TagError, Value: 0}, resp)

	_, err = conn.Write([]byte{'C', 'R', 0x00, 0x00})
	require.NoError(t, err)
	resp, err = wire.ReadFrame(conn)
	require.NoError(t, err)
	assert.Equal(t, wire.Frame{Tag: wire.TagBalance, Value: 10}, resp)

	assert.True(t, logger.Has("[WARN] invalid instruction"))
}

func TestServer_PartialFrameAcrossWrites(t *testing.T) {
	srv := startServer(t, memory.New(), log.Discard)

	conn, err := net.Dial("tcp", srv.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	for _, b := range []byte{'C', 'R', 0x01, 0x00} {
		_, err := conn.Write([]byte{b})
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)
	}
	resp, err := wire.ReadFrame(conn)
	require.NoError(t, err)
	assert.Equal(t, wire.Frame{Tag: wire.TagBalance, Value: 256}, resp)
}

func TestServer_MidFrameCloseSendsNothing(t *testing.T) {
	logger := &testLogger{}
	store := memory.New()
	srv := startServer(t, store, logger)

	conn, err := net.Dial("tcp", srv.Addr().String())
	require.NoError(t, err)
	_, err = conn.Write([]byte{'C', 'R', 0x00})
	require.NoError(t, err)
	require.NoError(t, conn.(*net.TCPConn).CloseWrite())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	n, err := conn.Read(make([]byte, 4))
	assert.Equal(t, 0, n)
	assert.ErrorIs(t, err, io.EOF)
	conn.Close()

	got, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint16(0), got)
	assert.Eventually(t, func() bool { return logger.Has("[INFO] client disconnected") }, time.Second, 10*time.Millisecond)
}

func TestServer_ConcurrentClientsSerialize(t *testing.T) {
	store := memory.New()
	srv := startServer(t, store, log.Discard)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := client.Send(context.Background(), srv.Addr().String(), wire.TagCredit, 1, client.WithTimeout(5*time.Second))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint16(n), got)
}

func TestServer_StorageFailureAnswersError(t *testing.T) {
	logger := &testLogger{}
	store := memory.New()
	srv := startServer(t, store, logger)
	c := dial(t, srv)

	_, err := c.Credit(40)
	require.NoError(t, err)

	store.SetFaults(nil, errors.New("disk full"))
	_, err = c.Credit(1)
	assert.ErrorIs(t, err, client.ErrRejected)
	assert.True(t, logger.Has("[ERROR] balance store failure"))

	store.SetFaults(nil, nil)
	got, err := c.Balance()
	require.NoError(t, err)
	assert.Equal(t, uint16(40), got)
}

func TestServer_BalanceSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallet.db")

	store, err := bolt.Open(path)
	require.NoError(t, err)
	srv := startServer(t, store, log.Discard)
	c := dial(t, srv)
	_, err = c.Credit(300)
	require.NoError(t, err)
	require.NoError(t, c.Close())
	require.NoError(t, srv.Stop())
	require.NoError(t, store.Close())

	store, err = bolt.Open(path)
	require.NoError(t, err)
	defer store.Close()
	ledger, err := OpenLedger(context.Background(), store, 5000, nil)
	require.NoError(t, err)
	srv = NewServer(ServerConfig{Addr: "127.0.0.1:0", ShutdownTimeout: time.Second}, ledger, log.Discard, nil, nil, nil)
	require.NoError(t, srv.Start(context.Background()))

	c = dial(t, srv)
	got, err := c.Balance()
	require.NoError(t, err)
	assert.Equal(t, uint16(300), got)

	require.NoError(t, c.Close())
	require.NoError(t, srv.Stop())
}

func TestServer_StartStop(t *testing.T) {
	emitter := &mockEmitter{}
	ledger, err := OpenLedger(context.Background(), memory.New(), 0, nil)
	require.NoError(t, err)
	srv := NewServer(ServerConfig{Addr: "127.0.0.1:0"}, ledger, log.Discard, emitter, nil, nil)

	assert.Nil(t, srv.Addr())
	assert.ErrorIs(t, srv.Stop(), domain.ErrNotRunning)

	require.NoError(t, srv.Start(context.Background()))
	assert.Equal(t, StateRunning, srv.State())
	assert.ErrorIs(t, srv.Start(context.Background()), domain.ErrAlreadyRunning)

	addr := srv.Addr().String()
	require.NoError(t, srv.Stop())
	assert.Equal(t, StateStopped, srv.State())

	_, err = net.DialTimeout("tcp", addr, 200*time.Millisecond)
	assert.Error(t, err)

	events := emitter.Events()
	require.Len(t, events, 4)
	assert.Equal(t, StateStopped, events[3].current)
}

func TestServer_StopDoesNotKillOpenConnections(t *testing.T) {
	ledger, err := OpenLedger(context.Background(), memory.New(), 0, nil)
	require.NoError(t, err)
	srv := NewServer(ServerConfig{Addr: "127.0.0.1:0", ShutdownTimeout: 50 * time.Millisecond}, ledger, log.Discard, nil, nil, nil)
	require.NoError(t, srv.Start(context.Background()))

	c, err := client.Dial(context.Background(), srv.Addr().String(), client.WithTimeout(5*time.Second))
	require.NoError(t, err)
	defer c.Close()
	_, err = c.Credit(1)
	require.NoError(t, err)

	assert.ErrorIs(t, srv.Stop(), domain.ErrShutdownTimeout)
	assert.Equal(t, StateCrashed, srv.State())

	// The handler is still serving after the listener is gone.
	got, err := c.Credit(1)
	require.NoError(t, err)
	assert.Equal(t, uint16(2), got)

	require.NoError(t, c.Close())
	assert.Eventually(t, func() bool { return srv.ActiveConnections() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestServer_ListenFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	ledger, err := OpenLedger(context.Background(), memory.New(), 0, nil)
	require.NoError(t, err)
	srv := NewServer(ServerConfig{Addr: ln.Addr().String()}, ledger, log.Discard, nil, nil, nil)

	assert.Error(t, srv.Start(context.Background()))
	assert.Equal(t, StateCrashed, srv.State())
}

func TestServer_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := NewMetrics(reg)
	require.NoError(t, err)

	ledger, err := OpenLedger(context.Background(), memory.New(), 7, metrics)
	require.NoError(t, err)

	probe, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	metricsAddr := probe.Addr().String()
	require.NoError(t, probe.Close())

	srv := NewServer(ServerConfig{Addr: "127.0.0.1:0", MetricsAddr: metricsAddr, ShutdownTimeout: time.Second}, ledger, log.Discard, nil, metrics, reg)
	require.NoError(t, srv.Start(context.Background()))
	t.Cleanup(func() { _ = srv.Stop() })

	c := dial(t, srv)
	_, err = c.Credit(3)
	require.NoError(t, err)
	_, err = c.Debit(100)
	require.ErrorIs(t, err, client.ErrRejected)

	resp, err := http.Get("http://" + metricsAddr + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(body)
	assert.True(t, strings.Contains(text, `walletd_instructions_total{kind="credit",outcome="ok"} 1`), text)
	assert.True(t, strings.Contains(text, `walletd_instructions_total{kind="debit",outcome="rejected"} 1`), text)
	assert.True(t, strings.Contains(text, "walletd_balance 10"), text)
	assert.True(t, strings.Contains(text, "walletd_connections_active 1"), text)
}

package app

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/walletd/internal/adapters/memory"
	"github.com/bft-labs/walletd/internal/domain"
)

func newTestLedger(t *testing.T, start uint16) (*Ledger, *memory.Store) {
	t.Helper()
	store := memory.New()
	l, err := OpenLedger(context.Background(), store, start, nil)
	require.NoError(t, err)
	return l, store
}

func TestLedger_Scenario(t *testing.T) {
	ctx := context.Background()
	l, store := newTestLedger(t, 0)

	steps := []struct {
		instr domain.Instruction
		want  domain.Result
		after uint16
	}{
		{domain.Credit(200), domain.Result{Code: domain.CodeBalance, Value: 200}, 200},
		{domain.Debit(50), domain.Result{Code: domain.CodeBalance, Value: 150}, 150},
		{domain.Debit(151), domain.Rejected, 150},
		{domain.Credit(65400), domain.Rejected, 150},
		{domain.Instruction{Tag: [2]byte{'X', 'X'}, Amount: 3}, domain.Rejected, 150},
		{domain.Credit(0), domain.Result{Code: domain.CodeBalance, Value: 150}, 150},
	}

	for i, step := range steps {
		res, err := l.Execute(ctx, step.instr)
		require.NoError(t, err, "step %d", i)
		assert.Equal(t, step.want, res, "step %d", i)

		stored, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, step.after, stored, "step %d stored balance", i)
	}
}

func TestLedger_StartBalanceOnlyOnFirstOpen(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	l, err := OpenLedger(ctx, store, 10, nil)
	require.NoError(t, err)
	_, err = l.Execute(ctx, domain.Credit(5))
	require.NoError(t, err)

	l, err = OpenLedger(ctx, store, 1000, nil)
	require.NoError(t, err)
	got, err := l.Balance(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint16(15), got)
}

func TestLedger_ConcurrentCreditsSerialize(t *testing.T) {
	ctx := context.Background()
	l, store := newTestLedger(t, 0)

	const n = 200
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := l.Execute(ctx, domain.Credit(1))
			assert.NoError(t, err)
			assert.True(t, res.OK())
		}()
	}
	wg.Wait()

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint16(n), got)
}

func TestLedger_StoreFailureFailsClosed(t *testing.T) {
	ctx := context.Background()
	l, store := newTestLedger(t, 100)

	boom := errors.New("disk full")
	store.SetFaults(nil, boom)

	res, err := l.Execute(ctx, domain.Credit(5))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, domain.Rejected, res)

	store.SetFaults(nil, nil)
	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint16(100), got)

	store.SetFaults(boom, nil)
	res, err = l.Execute(ctx, domain.Debit(1))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, domain.Rejected, res)
}

func TestOpenLedger_InitFailure(t *testing.T) {
	store := memory.New()
	require.NoError(t, store.Close())

	_, err := OpenLedger(context.Background(), store, 0, nil)
	assert.ErrorIs(t, err, domain.ErrStoreClosed)
}

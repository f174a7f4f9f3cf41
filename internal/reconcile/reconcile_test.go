package reconcile

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playward/walletcheck/internal/money"
	"github.com/playward/walletcheck/internal/wallet"
)

// scriptedFetcher plays back a fixed sequence of balances, one per
// FreshBalance call.
type scriptedFetcher struct {
	balances []string
	calls    int
}

func (f *scriptedFetcher) FreshBalance(_ context.Context) (decimal.Decimal, error) {
	if f.calls >= len(f.balances) {
		return decimal.Decimal{}, fmt.Errorf("unexpected balance query %d", f.calls+1)
	}
	b := money.MustParse(f.balances[f.calls])
	f.calls++
	return b, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newEngine(fetcher BalanceFetcher, verifyOnDeposit bool) *Engine {
	return NewEngine(fetcher, verifyOnDeposit, discardLogger())
}

func TestVerifyDebit(t *testing.T) {
	fetcher := &scriptedFetcher{balances: []string{"99.90"}}
	e := newEngine(fetcher, false)

	got, err := e.VerifyDebit(context.Background(),
		money.MustParse("100.00"), money.MustParse("0.1"), money.MustParse("99.9"))
	require.NoError(t, err)
	assert.True(t, got.Equal(money.MustParse("99.9")))
	assert.Equal(t, 1, fetcher.calls)
}

func TestVerifyDebit_ResponseDisagreesWithQuery(t *testing.T) {
	fetcher := &scriptedFetcher{balances: []string{"100.00"}}
	e := newEngine(fetcher, false)

	_, err := e.VerifyDebit(context.Background(),
		money.MustParse("100.00"), money.MustParse("0.1"), money.MustParse("99.9"))
	require.ErrorIs(t, err, ErrMismatch)
	assert.Contains(t, err.Error(), "Balance After Txn and Get Balance Does Not Match")
}

func TestVerifyDebit_UnexpectedBalance(t *testing.T) {
	// Response and fresh query agree with each other but not with the
	// locally computed expectation.
	fetcher := &scriptedFetcher{balances: []string{"99.80"}}
	e := newEngine(fetcher, false)

	_, err := e.VerifyDebit(context.Background(),
		money.MustParse("100"), money.MustParse("0.1"), money.MustParse("99.8"))
	require.ErrorIs(t, err, ErrMismatch)
	assert.Contains(t, err.Error(), "Balance After Txn Is Not Expected: Expected: 99.9 Actual: 99.8")
}

func TestVerifyCredit_Settled(t *testing.T) {
	fetcher := &scriptedFetcher{balances: []string{"100.10"}}
	e := newEngine(fetcher, false)

	got, err := e.VerifyCredit(context.Background(),
		money.MustParse("100.00"), money.MustParse("0.1"), money.MustParse("100.1"), true)
	require.NoError(t, err)
	assert.True(t, got.Equal(money.MustParse("100.1")))
	assert.Equal(t, 1, fetcher.calls)
}

func TestVerifyCredit_PendingSkipsQuery(t *testing.T) {
	// A pending credit may not be reflected in the authoritative balance
	// yet, so no independent query is issued.
	fetcher := &scriptedFetcher{}
	e := newEngine(fetcher, false)

	_, err := e.VerifyCredit(context.Background(),
		money.MustParse("100.00"), money.MustParse("0.1"), money.MustParse("100.1"), false)
	require.NoError(t, err)
	assert.Zero(t, fetcher.calls)
}

func TestVerifyCredit_PendingQueriedWhenConfigured(t *testing.T) {
	fetcher := &scriptedFetcher{balances: []string{"100.10"}}
	e := newEngine(fetcher, true)

	_, err := e.VerifyCredit(context.Background(),
		money.MustParse("100.00"), money.MustParse("0.1"), money.MustParse("100.1"), false)
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.calls)
}

func TestVerifyCredit_Mismatch(t *testing.T) {
	fetcher := &scriptedFetcher{balances: []string{"100.20"}}
	e := newEngine(fetcher, false)

	_, err := e.VerifyCredit(context.Background(),
		money.MustParse("100.00"), money.MustParse("0.1"), money.MustParse("100.2"), true)
	assert.ErrorIs(t, err, ErrMismatch)
}

func TestMatchPair(t *testing.T) {
	e := newEngine(&scriptedFetcher{}, false)

	first := &wallet.Result{Balance: money.MustParse("95"), ReferenceID: "ref-1"}
	second := &wallet.Result{Balance: money.MustParse("95"), ReferenceID: "ref-1"}
	assert.NoError(t, e.MatchPair(first, second))

	t.Run("balance moved", func(t *testing.T) {
		moved := &wallet.Result{Balance: money.MustParse("90"), ReferenceID: "ref-1"}
		err := e.MatchPair(first, moved)
		require.ErrorIs(t, err, ErrMismatch)
		assert.Contains(t, err.Error(), "balance do not match 95 != 90")
	})

	t.Run("reference changed", func(t *testing.T) {
		renamed := &wallet.Result{Balance: money.MustParse("95"), ReferenceID: "ref-2"}
		err := e.MatchPair(first, renamed)
		require.ErrorIs(t, err, ErrMismatch)
		assert.Contains(t, err.Error(), "reference id do not match ref-1 != ref-2")
	})
}

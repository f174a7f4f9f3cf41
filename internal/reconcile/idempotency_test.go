package reconcile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playward/walletcheck/internal/money"
	"github.com/playward/walletcheck/internal/wallet"
)

// scriptedOp plays back a fixed sequence of results, one per send.
type scriptedOp struct {
	results []*wallet.Result
	calls   int
}

func (o *scriptedOp) do(_ context.Context) (*wallet.Result, error) {
	r := o.results[o.calls]
	o.calls++
	return r, nil
}

func debitResult(balance, ref string) *wallet.Result {
	return &wallet.Result{
		Operation:   wallet.OpWithdrawal,
		Status:      200,
		Balance:     money.MustParse(balance),
		ReferenceID: ref,
	}
}

func TestReplayDebit_Idempotent(t *testing.T) {
	// Original 100, debit 5; the replay must leave the balance at 95 and
	// answer with the same reference.
	fetcher := &scriptedFetcher{balances: []string{"100", "95", "95"}}
	op := &scriptedOp{results: []*wallet.Result{
		debitResult("95", "ref-1"),
		debitResult("95", "ref-1"),
	}}
	v := NewVerifier(newEngine(fetcher, false), discardLogger())

	res, err := v.ReplayDebit(context.Background(), op.do, money.MustParse("5"))
	require.NoError(t, err)
	assert.Equal(t, "ref-1", res.ReferenceID)
	assert.Equal(t, 2, op.calls)
	assert.Equal(t, 3, fetcher.calls)
}

func TestReplayDebit_AppliedTwice(t *testing.T) {
	// A wallet that debits again on the replay fails the post-replay check.
	fetcher := &scriptedFetcher{balances: []string{"100", "95", "90"}}
	op := &scriptedOp{results: []*wallet.Result{
		debitResult("95", "ref-1"),
		debitResult("90", "ref-1"),
	}}
	v := NewVerifier(newEngine(fetcher, false), discardLogger())

	_, err := v.ReplayDebit(context.Background(), op.do, money.MustParse("5"))
	require.ErrorIs(t, err, ErrMismatch)
	assert.Contains(t, err.Error(), "Expected: 95 Actual: 90")
}

func TestReplayDebit_NewReferenceOnReplay(t *testing.T) {
	fetcher := &scriptedFetcher{balances: []string{"100", "95", "95"}}
	op := &scriptedOp{results: []*wallet.Result{
		debitResult("95", "ref-1"),
		debitResult("95", "ref-2"),
	}}
	v := NewVerifier(newEngine(fetcher, false), discardLogger())

	_, err := v.ReplayDebit(context.Background(), op.do, money.MustParse("5"))
	require.ErrorIs(t, err, ErrMismatch)
	assert.Contains(t, err.Error(), "reference id do not match")
}

func TestReplayCredit_Idempotent(t *testing.T) {
	// Credit replays query once after the first send; the second response is
	// checked against that same observation.
	fetcher := &scriptedFetcher{balances: []string{"95", "100"}}
	op := &scriptedOp{results: []*wallet.Result{
		debitResult("100", "ref-1"),
		debitResult("100", "ref-1"),
	}}
	v := NewVerifier(newEngine(fetcher, false), discardLogger())

	_, err := v.ReplayCredit(context.Background(), op.do, money.MustParse("5"))
	require.NoError(t, err)
	assert.Equal(t, 2, fetcher.calls)
}

func TestReplayCreditFresh_QueriesAfterBothSends(t *testing.T) {
	fetcher := &scriptedFetcher{balances: []string{"95", "100", "100"}}
	op := &scriptedOp{results: []*wallet.Result{
		debitResult("100", "ref-1"),
		debitResult("100", "ref-1"),
	}}
	v := NewVerifier(newEngine(fetcher, false), discardLogger())

	_, err := v.ReplayCreditFresh(context.Background(), op.do, money.MustParse("5"))
	require.NoError(t, err)
	assert.Equal(t, 3, fetcher.calls)
}

func TestReplayCreditFresh_AppliedTwice(t *testing.T) {
	fetcher := &scriptedFetcher{balances: []string{"95", "100", "105"}}
	op := &scriptedOp{results: []*wallet.Result{
		debitResult("100", "ref-1"),
		debitResult("105", "ref-1"),
	}}
	v := NewVerifier(newEngine(fetcher, false), discardLogger())

	_, err := v.ReplayCreditFresh(context.Background(), op.do, money.MustParse("5"))
	assert.ErrorIs(t, err, ErrMismatch)
}

func TestReplayPair(t *testing.T) {
	op := &scriptedOp{results: []*wallet.Result{
		debitResult("100", "ref-1"),
		debitResult("100", "ref-1"),
	}}
	v := NewVerifier(newEngine(&scriptedFetcher{}, false), discardLogger())

	res, err := v.ReplayPair(context.Background(), op.do)
	require.NoError(t, err)
	assert.Equal(t, "ref-1", res.ReferenceID)
	assert.Equal(t, 2, op.calls)
}

func TestReplayPair_Mismatch(t *testing.T) {
	op := &scriptedOp{results: []*wallet.Result{
		debitResult("100", "ref-1"),
		debitResult("95", "ref-1"),
	}}
	v := NewVerifier(newEngine(&scriptedFetcher{}, false), discardLogger())

	_, err := v.ReplayPair(context.Background(), op.do)
	assert.ErrorIs(t, err, ErrMismatch)
}

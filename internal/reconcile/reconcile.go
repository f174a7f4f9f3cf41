// Package reconcile verifies that wallet balances evolve consistently across
// sequences of financial operations.
//
// After every write the engine compares three values: the balance embedded
// in the operation's own response, the balance an independent get-balance
// call returns, and the balance the harness computed locally. Any
// disagreement is a correctness bug in the wallet under test, so mismatches
// are returned as errors for the driver to escalate; the engine itself never
// terminates the process.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/playward/walletcheck/internal/wallet"
	"github.com/shopspring/decimal"
)

// ErrMismatch marks every reconciliation failure.
var ErrMismatch = fmt.Errorf("reconciliation mismatch")

// BalanceFetcher returns the authoritative balance via an independent
// get-balance call.
type BalanceFetcher interface {
	FreshBalance(ctx context.Context) (decimal.Decimal, error)
}

// Engine computes expected post-operation balances and reconciles them
// against observed ones.
type Engine struct {
	fetcher         BalanceFetcher
	verifyOnDeposit bool // re-fetch the balance on every credit, settled or not
	logger          *slog.Logger
}

// NewEngine creates a reconciliation engine.
func NewEngine(fetcher BalanceFetcher, verifyOnDeposit bool, logger *slog.Logger) *Engine {
	return &Engine{
		fetcher:         fetcher,
		verifyOnDeposit: verifyOnDeposit,
		logger:          logger,
	}
}

// VerifyDebit checks a successful debit: the response balance and a fresh
// balance query must both equal original − amount. It returns the new
// authoritative balance for chaining into the next step.
func (e *Engine) VerifyDebit(ctx context.Context, original, amount, balanceAfterTxn decimal.Decimal) (decimal.Decimal, error) {
	fresh, err := e.fetcher.FreshBalance(ctx)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if err := e.equalBalance(balanceAfterTxn, fresh, original.Sub(amount)); err != nil {
		return decimal.Decimal{}, err
	}
	return balanceAfterTxn, nil
}

// VerifyCredit checks a successful credit: the balance must equal
// original + amount. The independent balance query only runs when the
// platform is configured to verify every deposit or the credit is settled;
// for pending credits the response balance stands in for the fresh one,
// since uncommitted credits may not be reflected in the authoritative
// balance until settlement.
func (e *Engine) VerifyCredit(ctx context.Context, original, amount, balanceAfterTxn decimal.Decimal, completed bool) (decimal.Decimal, error) {
	fresh := balanceAfterTxn
	if e.verifyOnDeposit || completed {
		var err error
		fresh, err = e.fetcher.FreshBalance(ctx)
		if err != nil {
			return decimal.Decimal{}, err
		}
	}
	if err := e.equalBalance(balanceAfterTxn, fresh, original.Add(amount)); err != nil {
		return decimal.Decimal{}, err
	}
	return balanceAfterTxn, nil
}

// VerifyAgainst checks a response balance against a known fresh balance and
// expectation without issuing a query of its own. Idempotency replays use it
// to prove the second application did not move the balance again.
func (e *Engine) VerifyAgainst(balanceAfterTxn, fresh, expected decimal.Decimal) error {
	return e.equalBalance(balanceAfterTxn, fresh, expected)
}

// equalBalance applies the two-stage comparison: response balance against
// the fresh query first, then against the locally computed expectation.
func (e *Engine) equalBalance(balanceAfterTxn, fresh, expected decimal.Decimal) error {
	if !balanceAfterTxn.Equal(fresh) {
		checksTotal.WithLabelValues("balance", "mismatch").Inc()
		return fmt.Errorf("%w: Balance After Txn and Get Balance Does Not Match %s != %s",
			ErrMismatch, balanceAfterTxn, fresh)
	}
	if !balanceAfterTxn.Equal(expected) {
		checksTotal.WithLabelValues("balance", "mismatch").Inc()
		return fmt.Errorf("%w: Balance After Txn Is Not Expected: Expected: %s Actual: %s",
			ErrMismatch, expected, balanceAfterTxn)
	}
	checksTotal.WithLabelValues("balance", "ok").Inc()
	return nil
}

// MatchPair asserts that two responses to the same logical operation agree
// on balance and reference id, the contract for an idempotent replay.
func (e *Engine) MatchPair(first, second *wallet.Result) error {
	var mismatch string
	if !first.Balance.Equal(second.Balance) {
		mismatch += fmt.Sprintf("balance do not match %s != %s ", first.Balance, second.Balance)
	}
	if first.ReferenceID != second.ReferenceID {
		mismatch += fmt.Sprintf("reference id do not match %s != %s", first.ReferenceID, second.ReferenceID)
	}
	if mismatch != "" {
		checksTotal.WithLabelValues("pair", "mismatch").Inc()
		return fmt.Errorf("%w: %s", ErrMismatch, mismatch)
	}
	checksTotal.WithLabelValues("pair", "ok").Inc()
	return nil
}

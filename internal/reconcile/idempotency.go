package reconcile

import (
	"context"
	"log/slog"

	"github.com/playward/walletcheck/internal/wallet"
	"github.com/shopspring/decimal"
)

// Op issues one wallet operation with fixed logical inputs, including a
// fixed transaction id. Calling it twice models a client-side retry.
type Op func(ctx context.Context) (*wallet.Result, error)

// Verifier replays operations and asserts at-most-once application: the
// second response must carry the same balance and reference id as the
// first, and the balance must not move a second time.
type Verifier struct {
	engine *Engine
	logger *slog.Logger
}

// NewVerifier creates an idempotency verifier backed by the engine's
// balance fetcher.
func NewVerifier(engine *Engine, logger *slog.Logger) *Verifier {
	return &Verifier{engine: engine, logger: logger}
}

// ReplayDebit sends a debit twice. After each send the balance must equal
// original − amount, verified against a fresh query both times.
func (v *Verifier) ReplayDebit(ctx context.Context, op Op, amount decimal.Decimal) (*wallet.Result, error) {
	original, err := v.engine.fetcher.FreshBalance(ctx)
	if err != nil {
		return nil, err
	}
	expected := original.Sub(amount)

	v.logger.Info("performing a withdrawal against the wallet platform")
	first, err := op(ctx)
	if err != nil {
		return nil, err
	}
	fresh, err := v.engine.fetcher.FreshBalance(ctx)
	if err != nil {
		return nil, err
	}
	if err := v.engine.VerifyAgainst(first.Balance, fresh, expected); err != nil {
		return nil, err
	}

	v.logger.Info("re-sending the withdrawal with the same transaction ID")
	second, err := op(ctx)
	if err != nil {
		return nil, err
	}
	fresh, err = v.engine.fetcher.FreshBalance(ctx)
	if err != nil {
		return nil, err
	}
	if err := v.engine.VerifyAgainst(second.Balance, fresh, expected); err != nil {
		return nil, err
	}

	if err := v.engine.MatchPair(first, second); err != nil {
		return nil, err
	}
	return first, nil
}

// ReplayCredit sends a credit twice. The expected balance is
// original + amount; the second response is checked against the balance
// observed after the first application, proving the amount was not applied
// twice.
func (v *Verifier) ReplayCredit(ctx context.Context, op Op, amount decimal.Decimal) (*wallet.Result, error) {
	original, err := v.engine.fetcher.FreshBalance(ctx)
	if err != nil {
		return nil, err
	}
	expected := original.Add(amount)

	v.logger.Info("performing a deposit against the wallet platform")
	first, err := op(ctx)
	if err != nil {
		return nil, err
	}
	fresh, err := v.engine.fetcher.FreshBalance(ctx)
	if err != nil {
		return nil, err
	}
	if err := v.engine.VerifyAgainst(first.Balance, fresh, expected); err != nil {
		return nil, err
	}

	v.logger.Info("re-sending the deposit with the same transaction ID")
	second, err := op(ctx)
	if err != nil {
		return nil, err
	}
	if err := v.engine.VerifyAgainst(second.Balance, fresh, expected); err != nil {
		return nil, err
	}

	if err := v.engine.MatchPair(first, second); err != nil {
		return nil, err
	}
	return first, nil
}

// ReplayCreditFresh is ReplayCredit with an additional fresh query after the
// second send. Rollback-v2 and reward replays use it.
func (v *Verifier) ReplayCreditFresh(ctx context.Context, op Op, amount decimal.Decimal) (*wallet.Result, error) {
	original, err := v.engine.fetcher.FreshBalance(ctx)
	if err != nil {
		return nil, err
	}
	expected := original.Add(amount)

	first, err := op(ctx)
	if err != nil {
		return nil, err
	}
	fresh, err := v.engine.fetcher.FreshBalance(ctx)
	if err != nil {
		return nil, err
	}
	if err := v.engine.VerifyAgainst(first.Balance, fresh, expected); err != nil {
		return nil, err
	}

	v.logger.Info("re-sending with the same transaction ID")
	second, err := op(ctx)
	if err != nil {
		return nil, err
	}
	fresh, err = v.engine.fetcher.FreshBalance(ctx)
	if err != nil {
		return nil, err
	}
	if err := v.engine.VerifyAgainst(second.Balance, fresh, expected); err != nil {
		return nil, err
	}

	if err := v.engine.MatchPair(first, second); err != nil {
		return nil, err
	}
	return first, nil
}

// ReplayPair sends the operation twice and checks only response-pair
// equality. The legacy rollback endpoint is verified this way.
func (v *Verifier) ReplayPair(ctx context.Context, op Op) (*wallet.Result, error) {
	first, err := op(ctx)
	if err != nil {
		return nil, err
	}
	v.logger.Info("re-sending with the same transaction ID")
	second, err := op(ctx)
	if err != nil {
		return nil, err
	}
	if err := v.engine.MatchPair(first, second); err != nil {
		return nil, err
	}
	return first, nil
}

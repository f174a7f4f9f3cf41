package scenario

import (
	"context"

	"github.com/playward/walletcheck/internal/idgen"
	"github.com/playward/walletcheck/internal/reconcile"
	"github.com/playward/walletcheck/internal/wallet"
)

// Idempotency replays every financial operation with an unchanged
// transaction identifier and asserts the second application is a no-op:
// identical balance, identical reference id, no double-applied amount.
func (d *Driver) Idempotency(ctx context.Context) error {
	if err := d.VerifySession(ctx); err != nil {
		return err
	}
	if _, err := d.client.Balance(ctx); err != nil {
		return err
	}

	amount := d.amount
	roundID := idgen.Token()
	clientRoundID := idgen.Token()
	withdrawalTxnID := idgen.TxnID()

	// The withdrawal body is rebuilt per send (fresh created timestamp) but
	// the transaction id stays fixed; that id is the idempotency key.
	withdrawOp := func(ctx context.Context) (*wallet.Result, error) {
		return d.client.Withdraw(ctx, d.debitReq(amount, withdrawalTxnID, roundID, clientRoundID, false))
	}
	first, err := d.idem.ReplayDebit(ctx, withdrawOp, amount)
	if err != nil {
		return err
	}

	if d.cfg.HasRollbackV2() {
		d.logger.Info("testing rollback v2 idempotency")
		rollbackTxnID := idgen.TxnID()
		op := func(ctx context.Context) (*wallet.Result, error) {
			return d.client.RollbackV2(ctx, d.rollbackV2Req(amount, withdrawalTxnID, rollbackTxnID, roundID, clientRoundID, "true", false))
		}
		if _, err := d.idem.ReplayCreditFresh(ctx, op, amount); err != nil {
			return err
		}
	} else {
		d.logger.Info("testing rollback idempotency")
		referenceID := first.ReferenceID
		// Legacy rollback idempotency is keyed by the server-issued
		// reference id; the body transaction id is fresh on each send.
		op := func(ctx context.Context) (*wallet.Result, error) {
			return d.client.Rollback(ctx, referenceID, d.rollbackReq(amount, idgen.TxnID(), roundID, clientRoundID, false))
		}
		if _, err := d.idem.ReplayPair(ctx, op); err != nil {
			return err
		}
	}

	if err := d.depositIdempotency(ctx); err != nil {
		return err
	}

	if d.cfg.HasReward() {
		d.logger.Info("testing reward idempotency")
		rewardTxnID := idgen.TxnID()
		op := func(ctx context.Context) (*wallet.Result, error) {
			return d.client.Reward(ctx, d.rewardReq(amount, rewardTxnID, false))
		}
		if _, err := d.idem.ReplayCreditFresh(ctx, op, amount); err != nil {
			return err
		}
	}

	return nil
}

func (d *Driver) depositIdempotency(ctx context.Context) error {
	d.logger.Info("testing deposit idempotency")
	amount := d.amount
	roundID := idgen.Token()
	clientRoundID := idgen.Token()
	withdrawalTxnID := idgen.TxnID()
	depositTxnID := idgen.TxnID()

	// Open a bet first so the replayed credit settles a real debit.
	if _, err := d.client.Withdraw(ctx, d.debitReq(amount, withdrawalTxnID, roundID, clientRoundID, false)); err != nil {
		return err
	}

	var op reconcile.Op = func(ctx context.Context) (*wallet.Result, error) {
		return d.client.Deposit(ctx, d.creditReq(amount, depositTxnID, roundID, withdrawalTxnID, clientRoundID, "true", false))
	}
	_, err := d.idem.ReplayCredit(ctx, op, amount)
	return err
}

package scenario

import (
	"context"

	"github.com/playward/walletcheck/internal/idgen"
	"github.com/playward/walletcheck/internal/wallet"
	"github.com/shopspring/decimal"
)

func randomExtra() string {
	return idgen.Token()
}

// VerifySession checks that the wallet returns the player's currency and
// balance for a valid session.
func (d *Driver) VerifySession(ctx context.Context) error {
	d.logger.Info("testing verify session")
	_, err := d.client.VerifySession(ctx)
	return err
}

// GetBalance exercises the three read variants: with a valid session, with
// no session header at all, and with an expired session. All must succeed;
// balance reads are not gated on session liveness.
func (d *Driver) GetBalance(ctx context.Context) error {
	d.logger.Info("testing get balance")
	if _, err := d.client.Balance(ctx); err != nil {
		return err
	}

	d.logger.Info("testing get balance without wallet session and game id")
	if _, err := d.client.Balance(ctx, wallet.WithoutSession(), wallet.WithoutGameID()); err != nil {
		return err
	}

	if d.cfg.WalletSessionExpired == "" {
		d.warn("no expired wallet session configured, skipping expired-session balance check")
		return nil
	}
	d.logger.Info("testing get balance with expired wallet session")
	_, err := d.client.Balance(ctx, wallet.WithSession(d.cfg.WalletSessionExpired))
	return err
}

// Withdrawal performs a single reconciled debit of the configured amount.
func (d *Driver) Withdrawal(ctx context.Context, future bool) error {
	original, err := d.freshBalance(ctx)
	if err != nil {
		return err
	}
	_, _, err = d.verifiedDebit(ctx, original, d.amount, idgen.Token(), idgen.Token(), idgen.Token(), future)
	return err
}

// Deposit covers the credit paths: a settled credit after a debit, a credit
// submitted under an expired session (verified as pending — the wallet may
// defer it until settlement), and the zero-amount payout edge case.
func (d *Driver) Deposit(ctx context.Context, future bool) error {
	amount := d.amount
	roundID := idgen.Token()
	clientRoundID := idgen.Token()
	betID := idgen.Token()

	original, err := d.freshBalance(ctx)
	if err != nil {
		return err
	}
	_, original, err = d.verifiedDebit(ctx, original, amount, betID, roundID, clientRoundID, future)
	if err != nil {
		return err
	}
	if _, err := d.verifiedCredit(ctx, original, amount, idgen.Token(), roundID, betID, clientRoundID, "true", true, future); err != nil {
		return err
	}

	if d.cfg.WalletSessionExpired == "" {
		d.warn("no expired wallet session configured, skipping expired-session deposit check")
	} else {
		d.logger.Info("testing deposit with expired wallet session")
		roundID = idgen.Token()
		clientRoundID = idgen.Token()
		betID = idgen.Token()

		original, err = d.freshBalance(ctx)
		if err != nil {
			return err
		}
		_, original, err = d.verifiedDebit(ctx, original, amount, betID, roundID, clientRoundID, false)
		if err != nil {
			return err
		}
		res, err := d.client.Deposit(ctx,
			d.creditReq(amount, idgen.Token(), roundID, betID, clientRoundID, "true", false),
			wallet.WithSession(d.cfg.WalletSessionExpired))
		if err != nil {
			return err
		}
		if _, err := d.engine.VerifyCredit(ctx, original, amount, res.Balance, false); err != nil {
			return err
		}
	}

	return d.depositZeroPayout(ctx)
}

// depositZeroPayout models a round that settles with a zero-amount,
// bet-less payout: two debits, a pending credit for one of them, then a
// completed credit of 0 with no betId. The zero credit must not move the
// balance.
func (d *Driver) depositZeroPayout(ctx context.Context) error {
	d.logger.Info("testing payout of zero amount with completed=true and no bet id")
	amount := d.amount
	roundID := idgen.Token()
	clientRoundID := idgen.Token()
	betID1 := idgen.Token()
	betID2 := idgen.Token()

	original, err := d.freshBalance(ctx)
	if err != nil {
		return err
	}
	_, original, err = d.verifiedDebit(ctx, original, amount, betID1, roundID, clientRoundID, false)
	if err != nil {
		return err
	}
	_, original, err = d.verifiedDebit(ctx, original, amount, betID2, roundID, clientRoundID, false)
	if err != nil {
		return err
	}

	// Pending credit: the running expectation advances by amount, but
	// original is deliberately not advanced — the zero payout below settles
	// the same expectation.
	if _, err := d.verifiedCredit(ctx, original, amount, idgen.Token(), roundID, betID2, clientRoundID, "false", false, true); err != nil {
		return err
	}

	res, err := d.client.Deposit(ctx, d.creditReq(decimal.Zero, idgen.Token(), roundID, "", clientRoundID, "true", true))
	if err != nil {
		return err
	}
	_, err = d.engine.VerifyCredit(ctx, original, amount, res.Balance, false)
	return err
}

// RollbackScenario cancels a debit and checks the balance is restored
// exactly, through the v2 endpoint when configured and the legacy one
// otherwise.
func (d *Driver) RollbackScenario(ctx context.Context, future bool) error {
	if d.cfg.HasRollbackV2() {
		return d.rollbackV2Cycle(ctx, future)
	}
	return d.rollbackLegacyCycle(ctx, future)
}

func (d *Driver) rollbackLegacyCycle(ctx context.Context, future bool) error {
	d.logger.Info("testing rollback")
	amount := d.amount
	roundID := idgen.Token()
	clientRoundID := idgen.Token()

	original, err := d.freshBalance(ctx)
	if err != nil {
		return err
	}
	res, afterDebit, err := d.verifiedDebit(ctx, original, amount, idgen.Token(), roundID, clientRoundID, false)
	if err != nil {
		return err
	}

	d.logger.Info("rolling back", "reference_id", res.ReferenceID, "amount", amount)
	rb, err := d.client.Rollback(ctx, res.ReferenceID, d.rollbackReq(amount, idgen.Token(), roundID, clientRoundID, future))
	if err != nil {
		return err
	}
	// Net delta across debit+rollback must be zero.
	_, err = d.engine.VerifyCredit(ctx, afterDebit, amount, rb.Balance, true)
	return err
}

func (d *Driver) rollbackV2Cycle(ctx context.Context, future bool) error {
	d.logger.Info("testing rollback v2")
	if err := d.rollbackV2Leg(ctx, future, ""); err != nil {
		return err
	}

	if d.cfg.WalletSessionExpired == "" {
		d.warn("no expired wallet session configured, skipping expired-session rollback check")
		return nil
	}
	d.logger.Info("testing rollback v2 with expired wallet session")
	return d.rollbackV2Leg(ctx, future, d.cfg.WalletSessionExpired)
}

// rollbackV2Leg debits and immediately rolls the bet back; the rollback
// response balance must match the pre-debit balance (a zero-delta credit).
func (d *Driver) rollbackV2Leg(ctx context.Context, future bool, session string) error {
	amount := d.amount
	roundID := idgen.Token()
	clientRoundID := idgen.Token()
	betID := idgen.Token()

	original, err := d.freshBalance(ctx)
	if err != nil {
		return err
	}
	if _, err := d.client.Withdraw(ctx, d.debitReq(amount, betID, roundID, clientRoundID, false)); err != nil {
		return err
	}

	opts := []wallet.CallOption{}
	if session != "" {
		opts = append(opts, wallet.WithSession(session))
	}
	d.logger.Info("rolling back", "bet_id", betID, "amount", amount)
	res, err := d.client.RollbackV2(ctx, d.rollbackV2Req(amount, betID, idgen.Token(), roundID, clientRoundID, "true", future), opts...)
	if err != nil {
		return err
	}
	_, err = d.engine.VerifyCredit(ctx, original, decimal.Zero, res.Balance, false)
	return err
}

// Reward credits an out-of-round prize and reconciles the balance.
func (d *Driver) Reward(ctx context.Context, future bool) error {
	if !d.cfg.HasReward() {
		d.warn("no reward endpoint configured, skipping reward check")
		return nil
	}
	d.logger.Info("testing reward")
	amount := d.amount

	original, err := d.freshBalance(ctx)
	if err != nil {
		return err
	}
	res, err := d.client.Reward(ctx, d.rewardReq(amount, idgen.Token(), future))
	if err != nil {
		return err
	}
	_, err = d.engine.VerifyCredit(ctx, original, amount, res.Balance, false)
	return err
}

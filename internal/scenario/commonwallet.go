package scenario

import (
	"context"

	"github.com/playward/walletcheck/internal/idgen"
	"github.com/playward/walletcheck/internal/money"
)

// CommonWallet runs the full cycle — session check, wagers, settlement,
// rollback, reward — followed by the aggregate round shapes real game
// clients produce.
func (d *Driver) CommonWallet(ctx context.Context) error {
	original, err := d.freshBalance(ctx)
	if err != nil {
		return err
	}
	if err := d.VerifySession(ctx); err != nil {
		return err
	}

	amount := d.amount
	roundID := idgen.Token()
	clientRoundID := idgen.Token()
	betID1 := idgen.Token()
	betID2 := idgen.Token()

	_, original, err = d.verifiedDebit(ctx, original, amount, betID1, roundID, clientRoundID, false)
	if err != nil {
		return err
	}
	_, original, err = d.verifiedDebit(ctx, original, amount, betID2, roundID, clientRoundID, false)
	if err != nil {
		return err
	}

	// Settle the second bet; the extra payload field rides along here to
	// prove additive schema changes are tolerated on the happy path too.
	if _, err := d.verifiedCredit(ctx, original, amount, idgen.Token(), roundID, betID2, clientRoundID, "true", true, true); err != nil {
		return err
	}

	if err := d.RollbackScenario(ctx, false); err != nil {
		return err
	}
	if err := d.Reward(ctx, false); err != nil {
		return err
	}

	if err := d.threeWithdrawalsOneDeposit(ctx); err != nil {
		return err
	}
	if err := d.threeWithdrawalsThreeDeposits(ctx); err != nil {
		return err
	}
	if err := d.oneWithdrawalThreeDeposits(ctx); err != nil {
		return err
	}
	return d.multipleTransactions(ctx)
}

// threeWithdrawalsOneDeposit aggregates three bets into one settlement: the
// single credit carries completed=true and references the final bet.
func (d *Driver) threeWithdrawalsOneDeposit(ctx context.Context) error {
	d.logger.Info("testing 3 withdrawals then 1 deposit")
	amount := money.MustParse("0.1")
	roundID := idgen.Token()
	clientRoundID := idgen.Token()
	betIDs := []string{idgen.Token(), idgen.Token(), idgen.Token()}

	original, err := d.freshBalance(ctx)
	if err != nil {
		return err
	}
	for _, betID := range betIDs {
		_, original, err = d.verifiedDebit(ctx, original, amount, betID, roundID, clientRoundID, false)
		if err != nil {
			return err
		}
	}

	_, err = d.verifiedCredit(ctx, original, amount, idgen.Token(), roundID, betIDs[2], clientRoundID, "true", true, true)
	return err
}

// threeWithdrawalsThreeDeposits settles each bet separately; only the final
// credit is marked completed, the first two stay pending.
func (d *Driver) threeWithdrawalsThreeDeposits(ctx context.Context) error {
	d.logger.Info("testing 3 withdrawals then 3 deposits")
	amount := money.MustParse("0.1")
	roundID := idgen.Token()
	clientRoundID := idgen.Token()
	betIDs := []string{idgen.Token(), idgen.Token(), idgen.Token()}

	original, err := d.freshBalance(ctx)
	if err != nil {
		return err
	}
	for _, betID := range betIDs {
		_, original, err = d.verifiedDebit(ctx, original, amount, betID, roundID, clientRoundID, false)
		if err != nil {
			return err
		}
	}

	for i, betID := range betIDs {
		completed := "false"
		settled := false
		if i == len(betIDs)-1 {
			completed = "true"
			settled = true
		}
		original, err = d.verifiedCredit(ctx, original, amount, idgen.Token(), roundID, betID, clientRoundID, completed, settled, true)
		if err != nil {
			return err
		}
	}
	return nil
}

// oneWithdrawalThreeDeposits pays the same bet out in three installments:
// pending, pending, then completed.
func (d *Driver) oneWithdrawalThreeDeposits(ctx context.Context) error {
	d.logger.Info("testing 1 withdrawal then 3 deposits")
	amount := money.MustParse("0.1")
	roundID := idgen.Token()
	clientRoundID := idgen.Token()
	betID := idgen.Token()

	original, err := d.freshBalance(ctx)
	if err != nil {
		return err
	}
	_, original, err = d.verifiedDebit(ctx, original, amount, betID, roundID, clientRoundID, false)
	if err != nil {
		return err
	}

	for _, step := range []struct {
		completed string
		settled   bool
	}{
		{"false", false},
		{"false", false},
		{"true", true},
	} {
		original, err = d.verifiedCredit(ctx, original, amount, idgen.Token(), roundID, betID, clientRoundID, step.completed, step.settled, true)
		if err != nil {
			return err
		}
	}
	return nil
}

// multipleTransactions mixes a cancellation into a round: two bets, the
// second rolled back, then two credits against the surviving bet. Requires
// the v2 rollback endpoint.
func (d *Driver) multipleTransactions(ctx context.Context) error {
	if !d.cfg.HasRollbackV2() {
		d.warn("no rollback v2 endpoint configured, skipping multiple-transactions check")
		return nil
	}
	d.logger.Info("testing multiple transactions: 2 withdrawals, 1 rollback, 2 deposits")
	amount := money.MustParse("0.1")
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

	// The second debit is intentionally not reconciled on its own; the
	// rollback right after must cancel it out against the running balance.
	if _, err := d.client.Withdraw(ctx, d.debitReq(amount, betID2, roundID, clientRoundID, false)); err != nil {
		return err
	}
	rb, err := d.client.RollbackV2(ctx, d.rollbackV2Req(amount, betID2, idgen.Token(), roundID, clientRoundID, "false", false))
	if err != nil {
		return err
	}
	original, err = d.engine.VerifyCredit(ctx, original, money.MustParse("0"), rb.Balance, false)
	if err != nil {
		return err
	}

	original, err = d.verifiedCredit(ctx, original, amount, idgen.Token(), roundID, betID1, clientRoundID, "false", false, true)
	if err != nil {
		return err
	}
	_, err = d.verifiedCredit(ctx, original, amount, idgen.Token(), roundID, betID1, clientRoundID, "true", true, true)
	return err
}

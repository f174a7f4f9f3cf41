package scenario

import (
	"context"

	"github.com/playward/walletcheck/internal/idgen"
	"github.com/playward/walletcheck/internal/money"
	"github.com/playward/walletcheck/internal/wallet"
)

// Errors drives every negative path and asserts the wallet answers each
// with exactly the tabulated (HTTP status, error code) pair.
func (d *Driver) Errors(ctx context.Context) error {
	d.logger.Info("testing get balance login failed")
	if _, err := d.client.Balance(ctx,
		wallet.WithPassKey(idgen.Token()),
		wallet.WithoutSession(),
		wallet.Expect(wallet.CategoryLoginFailed)); err != nil {
		return err
	}

	d.logger.Info("testing verify session login failed")
	if _, err := d.client.VerifySession(ctx,
		wallet.WithPassKey(idgen.Token()),
		wallet.Expect(wallet.CategoryLoginFailed)); err != nil {
		return err
	}

	d.logger.Info("testing verify session invalid token")
	if _, err := d.client.VerifySession(ctx,
		wallet.WithSession(idgen.Token()),
		wallet.Expect(wallet.CategoryInvalidToken)); err != nil {
		return err
	}

	if d.cfg.HasBlockedPlayer() {
		d.logger.Info("testing verify session account blocked")
		if _, err := d.client.VerifySession(ctx,
			wallet.WithPlayer(d.cfg.BlockedPlayerID),
			wallet.WithSession(d.cfg.BlockedWalletSession),
			wallet.Expect(wallet.CategoryAccountBlocked)); err != nil {
			return err
		}
	} else {
		d.warn("no blocked player configured, skipping account-blocked checks")
	}

	if err := d.withdrawalErrors(ctx); err != nil {
		return err
	}

	d.logger.Info("testing deposit login failed")
	if _, err := d.client.Deposit(ctx,
		d.creditReq(d.amount, idgen.TxnID(), idgen.Token(), "", idgen.Token(), "true", false),
		wallet.WithPassKey(idgen.Token()),
		wallet.Expect(wallet.CategoryLoginFailed)); err != nil {
		return err
	}

	if err := d.rollbackErrors(ctx); err != nil {
		return err
	}
	return d.rewardErrors(ctx)
}

func (d *Driver) withdrawalErrors(ctx context.Context) error {
	one := money.MustParse("1")

	d.logger.Info("testing withdrawal invalid token")
	if _, err := d.client.Withdraw(ctx,
		d.debitReq(one, idgen.TxnID(), idgen.Token(), idgen.Token(), false),
		wallet.WithSession(idgen.Token()),
		wallet.Expect(wallet.CategoryInvalidToken)); err != nil {
		return err
	}

	if d.cfg.WalletSessionExpired != "" {
		d.logger.Info("testing withdrawal expired wallet session")
		if _, err := d.client.Withdraw(ctx,
			d.debitReq(one, idgen.TxnID(), idgen.Token(), idgen.Token(), false),
			wallet.WithSession(d.cfg.WalletSessionExpired),
			wallet.Expect(wallet.CategoryInvalidToken)); err != nil {
			return err
		}
	} else {
		d.warn("no expired wallet session configured, skipping expired-session withdrawal check")
	}

	d.logger.Info("testing withdrawal insufficient funds", "amount", d.insufficientAmnt)
	if _, err := d.client.Withdraw(ctx,
		d.debitReq(d.insufficientAmnt, idgen.TxnID(), idgen.Token(), idgen.Token(), false),
		wallet.Expect(wallet.CategoryInsufficientFunds)); err != nil {
		return err
	}

	if d.cfg.HasBlockedPlayer() {
		d.logger.Info("testing withdrawal account blocked")
		req := d.debitReq(one, idgen.TxnID(), idgen.Token(), idgen.Token(), false)
		req.PlayerID = d.cfg.BlockedPlayerID
		if _, err := d.client.Withdraw(ctx, req,
			wallet.WithSession(d.cfg.BlockedWalletSession),
			wallet.Expect(wallet.CategoryAccountBlocked)); err != nil {
			return err
		}
	}

	d.logger.Info("testing withdrawal login failed")
	_, err := d.client.Withdraw(ctx,
		d.debitReq(one, idgen.TxnID(), idgen.Token(), idgen.Token(), false),
		wallet.WithPassKey(idgen.Token()),
		wallet.Expect(wallet.CategoryLoginFailed))
	return err
}

func (d *Driver) rollbackErrors(ctx context.Context) error {
	amount := d.amount
	roundID := idgen.Token()
	clientRoundID := idgen.Token()

	if d.cfg.HasRollbackV2() {
		d.logger.Info("testing rollback v2 login failed")
		betID := idgen.Token()
		if _, err := d.client.Withdraw(ctx, d.debitReq(money.MustParse("0.1"), betID, roundID, clientRoundID, false)); err != nil {
			return err
		}
		if _, err := d.client.RollbackV2(ctx,
			d.rollbackV2Req(money.MustParse("0.1"), betID, idgen.TxnID(), roundID, clientRoundID, "true", false),
			wallet.WithPassKey(idgen.Token()),
			wallet.Expect(wallet.CategoryLoginFailed)); err != nil {
			return err
		}

		d.logger.Info("testing rollback v2 transaction not found")
		_, err := d.client.RollbackV2(ctx,
			d.rollbackV2Req(amount, idgen.Token(), idgen.TxnID(), idgen.Token(), idgen.Token(), "true", false),
			wallet.Expect(wallet.CategoryTransactionNotFound))
		return err
	}

	d.logger.Info("testing rollback login failed")
	res, err := d.client.Withdraw(ctx, d.debitReq(amount, idgen.TxnID(), roundID, clientRoundID, false))
	if err != nil {
		return err
	}
	if _, err := d.client.Rollback(ctx, res.ReferenceID,
		d.rollbackReq(amount, idgen.TxnID(), roundID, clientRoundID, false),
		wallet.WithPassKey(idgen.Token()),
		wallet.WithoutSession(),
		wallet.Expect(wallet.CategoryLoginFailed)); err != nil {
		return err
	}

	d.logger.Info("testing rollback transaction not found")
	_, err = d.client.Rollback(ctx, idgen.Token(),
		d.rollbackReq(amount, idgen.TxnID(), idgen.Token(), clientRoundID, false),
		wallet.Expect(wallet.CategoryTransactionNotFound))
	return err
}

func (d *Driver) rewardErrors(ctx context.Context) error {
	if !d.cfg.HasReward() {
		d.warn("no reward endpoint configured, skipping reward error checks")
		return nil
	}

	d.logger.Info("testing reward login failed")
	if _, err := d.client.Reward(ctx,
		d.rewardReq(money.MustParse("4"), idgen.TxnID(), false),
		wallet.WithPassKey(""),
		wallet.WithoutSession(),
		wallet.Expect(wallet.CategoryLoginFailed)); err != nil {
		return err
	}

	d.logger.Info("testing reward request declined: required field missing")
	req := d.rewardReq(money.MustParse("100"), idgen.TxnID(), false)
	req.RewardType = "" // required field deliberately missing
	_, err := d.client.Reward(ctx, req, wallet.Expect(wallet.CategoryRequestDeclined))
	return err
}

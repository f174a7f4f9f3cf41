// Package scenario composes wallet operations into named conformance
// scenarios and reports aggregate pass/fail.
package scenario

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/playward/walletcheck/internal/config"
	"github.com/playward/walletcheck/internal/money"
	"github.com/playward/walletcheck/internal/reconcile"
	"github.com/playward/walletcheck/internal/wallet"
	"github.com/shopspring/decimal"
)

// ErrUnknownScenario is returned for a scenario name Run does not recognize.
var ErrUnknownScenario = fmt.Errorf("unknown scenario")

// Driver owns the per-run collaborators and the expected-balance tracking.
// It is strictly sequential: one wallet call is in flight at a time, and the
// ordering between a write and the read that verifies it comes from that
// alone.
type Driver struct {
	cfg    *config.Config
	client *wallet.Client
	engine *reconcile.Engine
	idem   *reconcile.Verifier
	logger *slog.Logger

	amount           decimal.Decimal
	insufficientAmnt decimal.Decimal

	warnings int
}

// New wires a driver from configuration. The reconciliation engine fetches
// authoritative balances through the same client the scenarios use.
func New(cfg *config.Config, logger *slog.Logger) (*Driver, error) {
	amount, err := money.Parse(cfg.Amount)
	if err != nil {
		return nil, fmt.Errorf("AMOUNT: %w", err)
	}
	insufficient, err := money.Parse(cfg.InsufficientFundsAmount)
	if err != nil {
		return nil, fmt.Errorf("INSUFFICIENT_FUNDS_AMOUNT: %w", err)
	}

	client := wallet.New(cfg, logger)
	engine := reconcile.NewEngine(balanceFetcher{client: client}, cfg.VerifyBalanceOnDeposit, logger)

	return &Driver{
		cfg:              cfg,
		client:           client,
		engine:           engine,
		idem:             reconcile.NewVerifier(engine, logger),
		logger:           logger,
		amount:           amount,
		insufficientAmnt: insufficient,
	}, nil
}

// balanceFetcher adapts the wallet client to the reconciliation engine.
type balanceFetcher struct {
	client *wallet.Client
}

func (f balanceFetcher) FreshBalance(ctx context.Context) (decimal.Decimal, error) {
	res, err := f.client.Balance(ctx)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return res.Balance, nil
}

// Names lists the scenarios in the order the usage text presents them.
func Names() []string {
	return []string{
		"commonwallet",
		"verifysession",
		"getbalance",
		"withdrawal",
		"deposit",
		"rollback",
		"reward",
		"idempotency",
		"errors",
		"future",
		"all",
	}
}

// Run executes one named scenario. The first fatal condition aborts the
// whole run; there is no partial-result reporting.
func (d *Driver) Run(ctx context.Context, name string) error {
	d.logger.Info("performing test", "scenario", name)
	switch name {
	case "commonwallet":
		return d.CommonWallet(ctx)
	case "verifysession":
		return d.VerifySession(ctx)
	case "getbalance":
		return d.GetBalance(ctx)
	case "withdrawal":
		return d.Withdrawal(ctx, false)
	case "deposit":
		return d.Deposit(ctx, false)
	case "rollback":
		return d.RollbackScenario(ctx, false)
	case "reward":
		return d.Reward(ctx, false)
	case "idempotency":
		return d.Idempotency(ctx)
	case "errors":
		return d.Errors(ctx)
	case "future":
		return d.Future(ctx)
	case "all":
		return d.All(ctx)
	}
	return fmt.Errorf("%w: %q", ErrUnknownScenario, name)
}

// Warnings reports how many checks were skipped because optional
// configuration (blocked player, reward or v2 rollback endpoint) is absent.
func (d *Driver) Warnings() int {
	return d.warnings
}

func (d *Driver) warn(msg string, args ...any) {
	d.warnings++
	d.logger.Warn(msg, args...)
}

// created renders the transaction timestamp: ISO-8601 with milliseconds
// plus a bracketed zone name, the format the wallet family expects.
func created() string {
	t := time.Now()
	return fmt.Sprintf("%s[%s]", t.Format("2006-01-02T15:04:05.000-07:00"), t.Location())
}

func (d *Driver) freshBalance(ctx context.Context) (decimal.Decimal, error) {
	res, err := d.client.Balance(ctx)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return res.Balance, nil
}

// debitReq builds a withdrawal body. The transaction id doubles as the bet
// id later credits and rollbacks refer to.
func (d *Driver) debitReq(amount decimal.Decimal, txnID, roundID, clientRoundID string, future bool) wallet.DebitRequest {
	req := wallet.DebitRequest{
		TxnType:       "DEBIT",
		TxnID:         txnID,
		PlayerID:      d.cfg.PlayerID,
		RoundID:       roundID,
		ClientRoundID: clientRoundID,
		Amount:        money.Number(amount),
		Currency:      d.cfg.Currency,
		GameID:        d.cfg.GameID,
		Device:        d.cfg.Device,
		ClientType:    d.cfg.ClientType,
		Category:      d.cfg.Category,
		Completed:     d.cfg.Completed,
		Created:       created(),
	}
	if future {
		req.Extra = randomExtra()
	}
	return req
}

func (d *Driver) creditReq(amount decimal.Decimal, txnID, roundID, betID, clientRoundID, completed string, future bool) wallet.CreditRequest {
	req := wallet.CreditRequest{
		TxnType:       "CREDIT",
		TxnID:         txnID,
		PlayerID:      d.cfg.PlayerID,
		RoundID:       roundID,
		ClientRoundID: clientRoundID,
		BetID:         betID,
		Amount:        money.Number(amount),
		Currency:      d.cfg.Currency,
		GameID:        d.cfg.GameID,
		Device:        d.cfg.Device,
		ClientType:    d.cfg.ClientType,
		Category:      d.cfg.Category,
		Completed:     completed,
		Created:       created(),
	}
	if future {
		req.Extra = randomExtra()
	}
	return req
}

func (d *Driver) rollbackReq(amount decimal.Decimal, txnID, roundID, clientRoundID string, future bool) wallet.RollbackRequest {
	req := wallet.RollbackRequest{
		TxnID:         txnID,
		PlayerID:      d.cfg.PlayerID,
		RoundID:       roundID,
		ClientRoundID: clientRoundID,
		Amount:        money.Number(amount),
		Currency:      d.cfg.Currency,
		GameID:        d.cfg.GameID,
		Device:        d.cfg.Device,
		ClientType:    d.cfg.ClientType,
		Category:      d.cfg.Category,
		Completed:     "true",
		Created:       created(),
	}
	if future {
		req.Extra = randomExtra()
	}
	return req
}

func (d *Driver) rollbackV2Req(amount decimal.Decimal, betID, txnID, roundID, clientRoundID, completed string, future bool) wallet.RollbackV2Request {
	req := wallet.RollbackV2Request{
		BetID:         betID,
		TxnID:         txnID,
		PlayerID:      d.cfg.PlayerID,
		RoundID:       roundID,
		ClientRoundID: clientRoundID,
		Amount:        money.Number(amount),
		Currency:      d.cfg.Currency,
		GameID:        d.cfg.GameID,
		Device:        d.cfg.Device,
		ClientType:    d.cfg.ClientType,
		Category:      d.cfg.Category,
		Completed:     completed,
		Created:       created(),
	}
	if future {
		req.Extra = randomExtra()
	}
	return req
}

func (d *Driver) rewardReq(amount decimal.Decimal, txnID string, future bool) wallet.RewardRequest {
	req := wallet.RewardRequest{
		RewardType:  "TOURNAMENT_REWARD",
		RewardTitle: "Championship",
		TxnID:       txnID,
		PlayerID:    d.cfg.PlayerID,
		Amount:      money.Number(amount),
		Currency:    d.cfg.Currency,
		Created:     created(),
	}
	if future {
		req.Extra = randomExtra()
	}
	return req
}

// verifiedDebit performs a debit and reconciles it: response balance and a
// fresh query must both equal original − amount. Returns the debit result
// and the new authoritative balance.
func (d *Driver) verifiedDebit(ctx context.Context, original, amount decimal.Decimal, txnID, roundID, clientRoundID string, future bool) (*wallet.Result, decimal.Decimal, error) {
	d.logger.Info("testing withdrawal", "amount", amount, "txn_id", txnID, "round_id", roundID)
	res, err := d.client.Withdraw(ctx, d.debitReq(amount, txnID, roundID, clientRoundID, future))
	if err != nil {
		return nil, decimal.Decimal{}, err
	}
	balance, err := d.engine.VerifyDebit(ctx, original, amount, res.Balance)
	if err != nil {
		return nil, decimal.Decimal{}, err
	}
	return res, balance, nil
}

// verifiedCredit performs a deposit and reconciles it against
// original + amount. The wire `completed` flag and the reconciliation
// settled-ness are passed separately: an expired-session settlement is sent
// completed but verified as pending, because the wallet may defer it.
func (d *Driver) verifiedCredit(ctx context.Context, original, amount decimal.Decimal, txnID, roundID, betID, clientRoundID, completed string, settled, future bool) (decimal.Decimal, error) {
	d.logger.Info("testing deposit", "amount", amount, "completed", completed)
	res, err := d.client.Deposit(ctx, d.creditReq(amount, txnID, roundID, betID, clientRoundID, completed, future))
	if err != nil {
		return decimal.Decimal{}, err
	}
	return d.engine.VerifyCredit(ctx, original, amount, res.Balance, settled)
}

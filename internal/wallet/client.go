package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/playward/walletcheck/internal/config"
)

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/89.0.4389.90 Safari/537.36"

// Client drives the common wallet REST contract. One call is in flight at a
// time; the harness never pipelines requests.
type Client struct {
	httpClient *http.Client
	cfg        *config.Config
	logger     *slog.Logger
}

// New creates a wallet client for the configured endpoints.
func New(cfg *config.Config, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		cfg:    cfg,
		logger: logger,
	}
}

// callConfig carries per-call overrides. The defaults reproduce a
// well-formed call from the configured player; negative-path scenarios
// replace credentials to provoke specific error categories.
type callConfig struct {
	passKey     string
	session     string
	playerID    string
	omitSession bool
	omitGameID  bool
	expect      ErrorCategory
}

// CallOption customizes a single wallet call.
type CallOption func(*callConfig)

// WithPassKey overrides the configured pass key.
func WithPassKey(key string) CallOption {
	return func(c *callConfig) { c.passKey = key }
}

// WithSession overrides the configured wallet session token.
func WithSession(session string) CallOption {
	return func(c *callConfig) { c.session = session }
}

// WithoutSession omits the Wallet-Session header entirely.
func WithoutSession() CallOption {
	return func(c *callConfig) { c.omitSession = true }
}

// WithPlayer overrides the configured player id.
func WithPlayer(playerID string) CallOption {
	return func(c *callConfig) { c.playerID = playerID }
}

// WithoutGameID omits the gameId query parameter on read calls.
func WithoutGameID() CallOption {
	return func(c *callConfig) { c.omitGameID = true }
}

// Expect declares the error category the call must produce. The default is
// CategoryNone, which requires a success response.
func Expect(cat ErrorCategory) CallOption {
	return func(c *callConfig) { c.expect = cat }
}

func (c *Client) newCallConfig(opts []CallOption) *callConfig {
	cc := &callConfig{
		passKey:  c.cfg.PassKey,
		session:  c.cfg.WalletSession,
		playerID: c.cfg.PlayerID,
	}
	for _, opt := range opts {
		opt(cc)
	}
	return cc
}

// VerifySession performs the session-verification read.
func (c *Client) VerifySession(ctx context.Context, opts ...CallOption) (*Result, error) {
	cc := c.newCallConfig(opts)
	u := c.accountURL(cc, "session")
	return c.do(ctx, OpVerifySession, http.MethodGet, u, nil, cc)
}

// Balance performs the authoritative balance read.
func (c *Client) Balance(ctx context.Context, opts ...CallOption) (*Result, error) {
	cc := c.newCallConfig(opts)
	u := c.accountURL(cc, "balance")
	return c.do(ctx, OpGetBalance, http.MethodGet, u, nil, cc)
}

// Withdraw performs a debit.
func (c *Client) Withdraw(ctx context.Context, req DebitRequest, opts ...CallOption) (*Result, error) {
	cc := c.newCallConfig(opts)
	return c.do(ctx, OpWithdrawal, http.MethodPost, c.cfg.WithdrawURL, req, cc)
}

// Deposit performs a credit.
func (c *Client) Deposit(ctx context.Context, req CreditRequest, opts ...CallOption) (*Result, error) {
	cc := c.newCallConfig(opts)
	return c.do(ctx, OpDeposit, http.MethodPost, c.cfg.DepositURL, req, cc)
}

// Rollback reverses a debit through the legacy endpoint, addressed by the
// server-issued referenceId.
func (c *Client) Rollback(ctx context.Context, referenceID string, req RollbackRequest, opts ...CallOption) (*Result, error) {
	cc := c.newCallConfig(opts)
	u := joinURL(c.cfg.WalletURL, "transactions/"+url.PathEscape(referenceID)+"/rollback")
	return c.do(ctx, OpRollback, http.MethodPost, u, req, cc)
}

// RollbackV2 reverses a debit through the betId-keyed endpoint.
func (c *Client) RollbackV2(ctx context.Context, req RollbackV2Request, opts ...CallOption) (*Result, error) {
	cc := c.newCallConfig(opts)
	return c.do(ctx, OpRollbackV2, http.MethodPost, c.cfg.RollbackURL, req, cc)
}

// Reward performs an out-of-round reward credit.
func (c *Client) Reward(ctx context.Context, req RewardRequest, opts ...CallOption) (*Result, error) {
	cc := c.newCallConfig(opts)
	return c.do(ctx, OpReward, http.MethodPost, c.cfg.RewardURL, req, cc)
}

func (c *Client) accountURL(cc *callConfig, leaf string) string {
	u := joinURL(c.cfg.WalletURL, "accounts/"+url.PathEscape(cc.playerID)+"/"+leaf)
	if !cc.omitGameID {
		u += "?gameId=" + url.QueryEscape(c.cfg.GameID)
	}
	return u
}

func joinURL(base, path string) string {
	return strings.TrimSuffix(base, "/") + "/" + path
}

// do executes one HTTP round-trip and hands the raw response to the
// validator. Transport-level failures abort the run; there is nothing the
// harness can conclude about the wallet from a connection it never made.
func (c *Client) do(ctx context.Context, op Operation, method, u string, body any, cc *callConfig) (*Result, error) {
	var reader io.Reader
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%w: marshal %s body: %v", ErrTransport, op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("%w: build %s request: %v", ErrTransport, op, err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if cc.passKey != "" {
		req.Header.Set("Pass-Key", cc.passKey)
	}
	if !cc.omitSession && cc.session != "" {
		req.Header.Set("Wallet-Session", cc.session)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Info("request", "operation", string(op), "method", method, "url", u, "body", string(payload))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrTransport, method, u, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s response: %v", ErrTransport, op, err)
	}

	c.logger.Info("response", "operation", string(op), "status", resp.StatusCode, "body", string(raw))
	requestsTotal.WithLabelValues(string(op), fmt.Sprintf("%d", resp.StatusCode)).Inc()

	return Validate(op, resp.StatusCode, resp.Header.Get("Content-Type"), raw, cc.expect)
}

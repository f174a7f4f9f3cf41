// Package wallettest provides an in-memory common wallet implementing the
// REST contract the harness verifies: pass-key and session auth, debits with
// idempotent replay, credits, both rollback generations, and rewards. Tests
// point the harness at it through httptest.
package wallettest

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Defaults used when no option overrides them.
const (
	DefaultPassKey         = "pass-key-1"
	DefaultSession         = "session-valid"
	DefaultExpiredSession  = "session-expired"
	DefaultBlockedSession  = "session-blocked"
	DefaultPlayerID        = "player-1"
	DefaultBlockedPlayerID = "player-blocked"
	DefaultCurrency        = "EUR"
	DefaultBalance         = "100.00"
)

// storedTxn is the response of an applied financial operation, kept so a
// replay with the same key returns byte-identical balance and reference id.
type storedTxn struct {
	balance     decimal.Decimal
	referenceID string
}

// debit tracks an open bet so credits and rollbacks can address it.
type debit struct {
	amount      decimal.Decimal
	referenceID string
	rolledBack  bool
}

// Server is the in-memory wallet. The mutex is for gin's sake; the harness
// itself never issues overlapping calls.
type Server struct {
	mu sync.Mutex

	passKey         string
	session         string
	expiredSession  string
	blockedSession  string
	playerID        string
	blockedPlayerID string
	currency        string

	balance decimal.Decimal

	txns           map[string]storedTxn // txnId → applied result
	debitsByBet    map[string]*debit    // debit txnId (the bet id) → open bet
	debitsByRef    map[string]*debit    // server reference id → open bet
	rollbacksByRef map[string]storedTxn // legacy rollback replay store
	rollbacksByBet map[string]storedTxn // v2 rollback replay store
}

// Option customizes the fake wallet.
type Option func(*Server)

// WithBalance sets the starting balance.
func WithBalance(balance string) Option {
	return func(s *Server) { s.balance = decimal.RequireFromString(balance) }
}

// WithCurrency sets the account currency.
func WithCurrency(currency string) Option {
	return func(s *Server) { s.currency = currency }
}

// New creates a fake wallet with the default credentials and balance.
func New(opts ...Option) *Server {
	s := &Server{
		passKey:         DefaultPassKey,
		session:         DefaultSession,
		expiredSession:  DefaultExpiredSession,
		blockedSession:  DefaultBlockedSession,
		playerID:        DefaultPlayerID,
		blockedPlayerID: DefaultBlockedPlayerID,
		currency:        DefaultCurrency,
		balance:         decimal.RequireFromString(DefaultBalance),
		txns:            make(map[string]storedTxn),
		debitsByBet:     make(map[string]*debit),
		debitsByRef:     make(map[string]*debit),
		rollbacksByRef:  make(map[string]storedTxn),
		rollbacksByBet:  make(map[string]storedTxn),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Balance returns the current account balance.
func (s *Server) Balance() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balance
}

// Handler builds the gin router for the wallet surface.
func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	r.GET("/accounts/:playerId/balance", s.getBalance)
	r.GET("/accounts/:playerId/session", s.verifySession)
	r.POST("/withdraw", s.withdraw)
	r.POST("/deposit", s.deposit)
	r.POST("/transactions/:referenceId/rollback", s.rollbackLegacy)
	r.POST("/rollback", s.rollbackV2)
	r.POST("/reward", s.reward)

	return r
}

func errorBody(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{"code": code, "message": message})
}

// checkPassKey enforces the shared secret. Reported as LOGIN_FAILED, the
// category for bad platform credentials.
func (s *Server) checkPassKey(c *gin.Context) bool {
	if c.GetHeader("Pass-Key") != s.passKey {
		errorBody(c, http.StatusUnauthorized, "LOGIN_FAILED", "invalid pass key")
		return false
	}
	return true
}

// checkLiveSession enforces a non-expired player session, required for
// session verification and wagers but not for reads or settlements.
func (s *Server) checkLiveSession(c *gin.Context) bool {
	switch c.GetHeader("Wallet-Session") {
	case s.session:
		return true
	case s.blockedSession:
		errorBody(c, http.StatusForbidden, "ACCOUNT_BLOCKED", "account is blocked")
		return false
	default:
		errorBody(c, http.StatusBadRequest, "INVALID_TOKEN", "session invalid or expired")
		return false
	}
}

func (s *Server) balanceBody() gin.H {
	return gin.H{
		"balance":  json.Number(s.balance.String()),
		"currency": s.currency,
	}
}

func txnBody(t storedTxn) gin.H {
	return gin.H{
		"balance":     json.Number(t.balance.String()),
		"referenceId": t.referenceID,
	}
}

func (s *Server) getBalance(c *gin.Context) {
	if !s.checkPassKey(c) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, s.balanceBody())
}

func (s *Server) verifySession(c *gin.Context) {
	if !s.checkPassKey(c) {
		return
	}
	if c.Param("playerId") == s.blockedPlayerID {
		errorBody(c, http.StatusForbidden, "ACCOUNT_BLOCKED", "account is blocked")
		return
	}
	if !s.checkLiveSession(c) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, s.balanceBody())
}

// txnRequest covers the fields the fake needs from any financial body.
// Amounts stay json.Number so the arithmetic is exact.
type txnRequest struct {
	TxnID    string      `json:"txnId"`
	PlayerID string      `json:"playerId"`
	BetID    string      `json:"betId"`
	Amount   json.Number `json:"amount"`
}

func bindTxn(c *gin.Context) (*txnRequest, decimal.Decimal, bool) {
	var req txnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorBody(c, http.StatusBadRequest, "REQUEST_DECLINED", "malformed body")
		return nil, decimal.Decimal{}, false
	}
	amount := decimal.Zero
	if req.Amount != "" {
		var err error
		amount, err = decimal.NewFromString(req.Amount.String())
		if err != nil {
			errorBody(c, http.StatusBadRequest, "REQUEST_DECLINED", "invalid amount")
			return nil, decimal.Decimal{}, false
		}
	}
	return &req, amount, true
}

func (s *Server) withdraw(c *gin.Context) {
	if !s.checkPassKey(c) {
		return
	}
	req, amount, ok := bindTxn(c)
	if !ok {
		return
	}
	if req.PlayerID == s.blockedPlayerID {
		errorBody(c, http.StatusForbidden, "ACCOUNT_BLOCKED", "account is blocked")
		return
	}
	if !s.checkLiveSession(c) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.txns[req.TxnID]; ok {
		c.JSON(http.StatusOK, txnBody(prev))
		return
	}
	if amount.GreaterThan(s.balance) {
		errorBody(c, http.StatusBadRequest, "INSUFFICIENT_FUNDS", "balance too low")
		return
	}

	s.balance = s.balance.Sub(amount)
	stored := storedTxn{balance: s.balance, referenceID: uuid.NewString()}
	s.txns[req.TxnID] = stored
	d := &debit{amount: amount, referenceID: stored.referenceID}
	s.debitsByBet[req.TxnID] = d
	s.debitsByRef[stored.referenceID] = d
	c.JSON(http.StatusOK, txnBody(stored))
}

// deposit settles a credit. Expired sessions are accepted: wallets must
// honor settlements after the player session ends.
func (s *Server) deposit(c *gin.Context) {
	if !s.checkPassKey(c) {
		return
	}
	req, amount, ok := bindTxn(c)
	if !ok {
		return
	}
	if req.PlayerID == s.blockedPlayerID {
		errorBody(c, http.StatusForbidden, "ACCOUNT_BLOCKED", "account is blocked")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.txns[req.TxnID]; ok {
		c.JSON(http.StatusOK, txnBody(prev))
		return
	}

	s.balance = s.balance.Add(amount)
	stored := storedTxn{balance: s.balance, referenceID: uuid.NewString()}
	s.txns[req.TxnID] = stored
	c.JSON(http.StatusOK, txnBody(stored))
}

func (s *Server) rollbackLegacy(c *gin.Context) {
	if !s.checkPassKey(c) {
		return
	}
	referenceID := c.Param("referenceId")

	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.rollbacksByRef[referenceID]; ok {
		c.JSON(http.StatusOK, txnBody(prev))
		return
	}
	d, ok := s.debitsByRef[referenceID]
	if !ok {
		errorBody(c, http.StatusNotFound, "TRANSACTION_NOT_FOUND", "unknown transaction")
		return
	}

	d.rolledBack = true
	s.balance = s.balance.Add(d.amount)
	stored := storedTxn{balance: s.balance, referenceID: uuid.NewString()}
	s.rollbacksByRef[referenceID] = stored
	c.JSON(http.StatusOK, txnBody(stored))
}

func (s *Server) rollbackV2(c *gin.Context) {
	if !s.checkPassKey(c) {
		return
	}
	req, _, ok := bindTxn(c)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.rollbacksByBet[req.BetID]; ok {
		c.JSON(http.StatusOK, txnBody(prev))
		return
	}
	d, ok := s.debitsByBet[req.BetID]
	if !ok {
		errorBody(c, http.StatusNotFound, "TRANSACTION_NOT_FOUND", "unknown bet")
		return
	}

	d.rolledBack = true
	s.balance = s.balance.Add(d.amount)
	stored := storedTxn{balance: s.balance, referenceID: uuid.NewString()}
	s.rollbacksByBet[req.BetID] = stored
	c.JSON(http.StatusOK, txnBody(stored))
}

type rewardRequest struct {
	RewardType string      `json:"rewardType"`
	TxnID      string      `json:"txnId"`
	Amount     json.Number `json:"amount"`
}

func (s *Server) reward(c *gin.Context) {
	if !s.checkPassKey(c) {
		return
	}
	var req rewardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorBody(c, http.StatusBadRequest, "REQUEST_DECLINED", "malformed body")
		return
	}
	if req.RewardType == "" {
		errorBody(c, http.StatusBadRequest, "REQUEST_DECLINED", "rewardType is required")
		return
	}
	amount, err := decimal.NewFromString(req.Amount.String())
	if err != nil {
		errorBody(c, http.StatusBadRequest, "REQUEST_DECLINED", "invalid amount")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.txns[req.TxnID]; ok {
		c.JSON(http.StatusOK, txnBody(prev))
		return
	}

	s.balance = s.balance.Add(amount)
	stored := storedTxn{balance: s.balance, referenceID: uuid.NewString()}
	s.txns[req.TxnID] = stored
	c.JSON(http.StatusOK, txnBody(stored))
}

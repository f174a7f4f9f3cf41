package wallet

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Operation identifies one kind of wallet call.
type Operation string

const (
	OpVerifySession Operation = "verifysession"
	OpGetBalance    Operation = "getbalance"
	OpWithdrawal    Operation = "withdrawal"
	OpDeposit       Operation = "deposit"
	OpRollback      Operation = "rollback"
	OpRollbackV2    Operation = "rollback_v2"
	OpReward        Operation = "reward"
)

// ErrorCategory is the closed set of negative-path outcomes a scenario can
// expect from a call. CategoryNone means the call must succeed.
type ErrorCategory int

const (
	CategoryNone ErrorCategory = iota
	CategoryLoginFailed
	CategoryInvalidToken
	CategoryAccountBlocked
	CategoryInsufficientFunds
	CategoryRequestDeclined
	CategoryTransactionNotFound
)

// Expected returns the (HTTP status, error code) pair the wallet contract
// mandates for the category. Exhaustive over all non-None categories.
func (c ErrorCategory) Expected() (status int, code string) {
	switch c {
	case CategoryLoginFailed:
		return 401, "LOGIN_FAILED"
	case CategoryInvalidToken:
		return 400, "INVALID_TOKEN"
	case CategoryAccountBlocked:
		return 403, "ACCOUNT_BLOCKED"
	case CategoryInsufficientFunds:
		return 400, "INSUFFICIENT_FUNDS"
	case CategoryRequestDeclined:
		return 400, "REQUEST_DECLINED"
	case CategoryTransactionNotFound:
		return 404, "TRANSACTION_NOT_FOUND"
	}
	return 0, ""
}

func (c ErrorCategory) String() string {
	if c == CategoryNone {
		return "none"
	}
	_, code := c.Expected()
	return code
}

// Result is the parsed outcome of one wallet call. It is constructed once
// per round-trip by the validator and never mutated afterwards.
type Result struct {
	Operation   Operation
	Status      int
	Balance     decimal.Decimal
	Currency    string
	ReferenceID string // server-assigned correlation id
	ErrorCode   string // uppercase symbolic code on failure responses
	ErrorMsg    string
}

// DebitRequest is the body of a withdrawal call.
type DebitRequest struct {
	TxnType       string      `json:"txnType"` // always "DEBIT"
	TxnID         string      `json:"txnId"`
	PlayerID      string      `json:"playerId"`
	RoundID       string      `json:"roundId"`
	ClientRoundID string      `json:"clientRoundId,omitempty"`
	Amount        json.Number `json:"amount"`
	Currency      string      `json:"currency"`
	GameID        string      `json:"gameId"`
	Device        string      `json:"device"`
	ClientType    string      `json:"clientType"`
	Category      string      `json:"category"`
	Completed     string      `json:"completed"`
	Created       string      `json:"created"`
	Extra         string      `json:"dummy,omitempty"` // forward-compatibility slot
}

// CreditRequest is the body of a deposit call. BetID links the credit back
// to the debit that opened the bet; it is omitted for the zero-amount
// bonus-payout variant.
type CreditRequest struct {
	TxnType       string      `json:"txnType"` // always "CREDIT"
	TxnID         string      `json:"txnId"`
	PlayerID      string      `json:"playerId"`
	RoundID       string      `json:"roundId"`
	ClientRoundID string      `json:"clientRoundId,omitempty"`
	BetID         string      `json:"betId,omitempty"`
	Amount        json.Number `json:"amount"`
	Currency      string      `json:"currency"`
	GameID        string      `json:"gameId"`
	Device        string      `json:"device"`
	ClientType    string      `json:"clientType"`
	Category      string      `json:"category"`
	Completed     string      `json:"completed"`
	Created       string      `json:"created"`
	Extra         string      `json:"dummy,omitempty"`
}

// RollbackRequest is the body of a legacy rollback call. The rollback target
// is addressed by the server-issued referenceId in the URL, not the body.
type RollbackRequest struct {
	TxnID         string      `json:"txnId"`
	PlayerID      string      `json:"playerId"`
	RoundID       string      `json:"roundId"`
	ClientRoundID string      `json:"clientRoundId,omitempty"`
	Amount        json.Number `json:"amount"`
	Currency      string      `json:"currency"`
	GameID        string      `json:"gameId"`
	Device        string      `json:"device"`
	ClientType    string      `json:"clientType"`
	Category      string      `json:"category"`
	Completed     string      `json:"completed"`
	Created       string      `json:"created"`
	Extra         string      `json:"dummy,omitempty"`
}

// RollbackV2Request is the body of a v2 rollback call, keyed by the
// client-chosen betId instead of the server-issued reference.
type RollbackV2Request struct {
	BetID         string      `json:"betId"`
	TxnID         string      `json:"txnId"`
	PlayerID      string      `json:"playerId"`
	RoundID       string      `json:"roundId"`
	ClientRoundID string      `json:"clientRoundId,omitempty"`
	Amount        json.Number `json:"amount"`
	Currency      string      `json:"currency"`
	GameID        string      `json:"gameId"`
	Device        string      `json:"device"`
	ClientType    string      `json:"clientType"`
	Category      string      `json:"category"`
	Completed     string      `json:"completed"`
	Created       string      `json:"created"`
	Extra         string      `json:"dummy,omitempty"`
}

// RewardRequest is the body of an out-of-round reward credit.
type RewardRequest struct {
	RewardType  string      `json:"rewardType,omitempty"`
	RewardTitle string      `json:"rewardTitle"`
	TxnID       string      `json:"txnId"`
	PlayerID    string      `json:"playerId"`
	Amount      json.Number `json:"amount"`
	Currency    string      `json:"currency"`
	Created     string      `json:"created"`
	Extra       string      `json:"dummy,omitempty"`
}

// Failure kinds. Every error the package returns wraps exactly one of these
// so the driver can report which part of the taxonomy tripped.
var (
	ErrSchema         = fmt.Errorf("schema violation")
	ErrClassification = fmt.Errorf("error classification mismatch")
	ErrTransport      = fmt.Errorf("transport failure")
)

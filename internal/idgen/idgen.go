// Package idgen provides random identifiers for wallet transactions.
package idgen

import (
	"crypto/rand"
	"math/big"

	"github.com/google/uuid"
)

const tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// TxnID generates a unique transaction identifier. Reusing the same value on
// a replay is what exercises the wallet's idempotency guarantee, so callers
// hold on to it when a scenario needs to resend.
func TxnID() string {
	return uuid.NewString()
}

// Token generates a 12-character uppercase token, used for round, bet and
// client-round identifiers.
func Token() string {
	b := make([]byte, 12)
	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(tokenAlphabet))))
		if err != nil {
			panic("crypto/rand failed: " + err.Error())
		}
		b[i] = tokenAlphabet[n.Int64()]
	}
	return string(b)
}

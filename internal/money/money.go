// Package money provides exact decimal helpers for balance arithmetic.
//
// Every numeric field the wallet returns is converted through this package
// before it participates in a comparison. Balances must never touch binary
// floating point: a platform that debits 0.1 three times has to reconcile
// exactly against a single 0.3 credit.
package money

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Parse converts a decimal string (e.g. "99.90") to an exact decimal value.
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid decimal %q: %w", s, err)
	}
	return d, nil
}

// MustParse is Parse for trusted literals. It panics on invalid input and is
// intended for constants and tests only.
func MustParse(s string) decimal.Decimal {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// FromNumber converts a json.Number, preserving the exact textual
// representation of the wire value. Response bodies are decoded with
// UseNumber so balances reach this function untouched by float64.
func FromNumber(n json.Number) (decimal.Decimal, error) {
	return Parse(n.String())
}

// Number renders a decimal as a json.Number so request bodies carry the
// amount as a raw JSON number rather than a quoted string.
func Number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

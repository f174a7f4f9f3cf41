package wallet

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/playward/walletcheck/internal/money"
)

// Validate turns a raw HTTP response into a Result, enforcing the wallet
// contract for the operation and the expected error category.
//
// It fails on an unparseable body, a wrong Content-Type, a missing or
// mistyped required field, a success where expect demands an error, an error
// where expect demands success, and an error whose (status, code) pair does
// not match the category table.
func Validate(op Operation, status int, contentType string, body []byte, expect ErrorCategory) (*Result, error) {
	if !strings.Contains(contentType, "application/json") {
		return nil, fmt.Errorf("%w: Content-Type header must be application/json, actual: %q", ErrSchema, contentType)
	}

	fields, err := decodeBody(body)
	if err != nil {
		return nil, err
	}

	res := &Result{Operation: op, Status: status}

	if status >= 400 {
		return res, validateError(res, fields, expect)
	}

	if status <= 299 && expect != CategoryNone {
		// Not-found rollbacks are allowed to succeed: some wallets treat a
		// rollback of an unknown transaction as a no-op and answer 2xx with
		// the untouched balance.
		if expect == CategoryTransactionNotFound && (op == OpRollback || op == OpRollbackV2) {
			return res, requireFields(res, fields, true, false)
		}
		return nil, fmt.Errorf("%w: expected error is %s but actual is no error", ErrClassification, expect)
	}

	return res, validateSuccess(res, op, fields)
}

// decodeBody parses the body keeping numerics as json.Number, so balances
// reach the decimal helper with their exact wire text.
func decodeBody(body []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("%w: failed to parse response JSON: %v", ErrSchema, err)
	}
	return fields, nil
}

func validateSuccess(res *Result, op Operation, fields map[string]any) error {
	switch op {
	case OpVerifySession, OpGetBalance:
		if err := requireBalance(res, fields); err != nil {
			return err
		}
		currency, err := requireString(fields, "currency")
		if err != nil {
			return err
		}
		res.Currency = currency
		return nil
	case OpWithdrawal, OpDeposit, OpRollback, OpRollbackV2, OpReward:
		return requireFields(res, fields, true, true)
	}
	return nil
}

// requireFields checks the balance and, when wantReference is set, the
// referenceId field.
func requireFields(res *Result, fields map[string]any, wantBalance, wantReference bool) error {
	if wantBalance {
		if err := requireBalance(res, fields); err != nil {
			return err
		}
	}
	if wantReference {
		ref, err := requireString(fields, "referenceId")
		if err != nil {
			return err
		}
		res.ReferenceID = ref
	} else if ref, ok := fields["referenceId"].(string); ok {
		res.ReferenceID = ref
	}
	return nil
}

func validateError(res *Result, fields map[string]any, expect ErrorCategory) error {
	if expect == CategoryNone {
		return fmt.Errorf("%w: unexpected error response: status=%d body=%v", ErrClassification, res.Status, fields)
	}

	code, err := requireString(fields, "code")
	if err != nil {
		return err
	}
	res.ErrorCode = strings.ToUpper(code)
	if msg, ok := fields["message"].(string); ok {
		res.ErrorMsg = msg
	}

	wantStatus, wantCode := expect.Expected()
	var mismatch string
	if res.Status != wantStatus {
		mismatch += fmt.Sprintf("expected http code is %d but actual is %d ", wantStatus, res.Status)
	}
	if res.ErrorCode != wantCode {
		mismatch += fmt.Sprintf("expected error code is %s but actual is %s", wantCode, res.ErrorCode)
	}
	if mismatch != "" {
		return fmt.Errorf("%w: %s", ErrClassification, strings.TrimSpace(mismatch))
	}
	return nil
}

// requireBalance extracts the decimal balance field. Integer and decimal
// representations are both accepted; strings and anything else are not.
func requireBalance(res *Result, fields map[string]any) error {
	v, ok := fields["balance"]
	if !ok {
		return fmt.Errorf("%w: field %q not present", ErrSchema, "balance")
	}
	n, ok := v.(json.Number)
	if !ok {
		return fmt.Errorf("%w: invalid data type for field %q, expected number, actual %T", ErrSchema, "balance", v)
	}
	d, err := money.FromNumber(n)
	if err != nil {
		return fmt.Errorf("%w: field %q: %v", ErrSchema, "balance", err)
	}
	res.Balance = d
	return nil
}

func requireString(fields map[string]any, key string) (string, error) {
	v, ok := fields[key]
	if !ok {
		return "", fmt.Errorf("%w: field %q not present", ErrSchema, key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: invalid data type for field %q, expected string, actual %T", ErrSchema, key, v)
	}
	return s, nil
}

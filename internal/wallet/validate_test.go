package wallet

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playward/walletcheck/internal/money"
)

const jsonCT = "application/json; charset=utf-8"

func TestValidate_BalanceSuccess(t *testing.T) {
	body := []byte(`{"balance": 99.90, "currency": "EUR"}`)

	res, err := Validate(OpGetBalance, 200, jsonCT, body, CategoryNone)
	require.NoError(t, err)
	assert.Equal(t, OpGetBalance, res.Operation)
	assert.Equal(t, 200, res.Status)
	assert.True(t, res.Balance.Equal(money.MustParse("99.9")))
	assert.Equal(t, "EUR", res.Currency)
}

func TestValidate_WithdrawalSuccess(t *testing.T) {
	body := []byte(`{"balance": 95, "referenceId": "ref-123"}`)

	res, err := Validate(OpWithdrawal, 200, jsonCT, body, CategoryNone)
	require.NoError(t, err)
	assert.True(t, res.Balance.Equal(money.MustParse("95")))
	assert.Equal(t, "ref-123", res.ReferenceID)
}

func TestValidate_WrongContentType(t *testing.T) {
	_, err := Validate(OpGetBalance, 200, "text/html", []byte(`{"balance": 1, "currency": "EUR"}`), CategoryNone)
	require.ErrorIs(t, err, ErrSchema)
	assert.Contains(t, err.Error(), "Content-Type")
}

func TestValidate_UnparseableBody(t *testing.T) {
	_, err := Validate(OpGetBalance, 200, jsonCT, []byte(`not json`), CategoryNone)
	assert.ErrorIs(t, err, ErrSchema)
}

func TestValidate_SchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		op   Operation
		body string
	}{
		{"missing balance", OpGetBalance, `{"currency": "EUR"}`},
		{"balance as string", OpGetBalance, `{"balance": "99.90", "currency": "EUR"}`},
		{"missing currency", OpVerifySession, `{"balance": 99.90}`},
		{"currency as number", OpVerifySession, `{"balance": 99.90, "currency": 978}`},
		{"missing referenceId", OpWithdrawal, `{"balance": 95}`},
		{"referenceId as number", OpDeposit, `{"balance": 95, "referenceId": 123}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(tt.op, 200, jsonCT, []byte(tt.body), CategoryNone)
			assert.ErrorIs(t, err, ErrSchema)
		})
	}
}

func TestValidate_ErrorCategories(t *testing.T) {
	categories := []ErrorCategory{
		CategoryLoginFailed,
		CategoryInvalidToken,
		CategoryAccountBlocked,
		CategoryInsufficientFunds,
		CategoryRequestDeclined,
		CategoryTransactionNotFound,
	}
	for _, cat := range categories {
		t.Run(cat.String(), func(t *testing.T) {
			status, code := cat.Expected()
			body := []byte(fmt.Sprintf(`{"code": "%s", "message": "boom"}`, code))

			res, err := Validate(OpWithdrawal, status, jsonCT, body, cat)
			require.NoError(t, err)
			assert.Equal(t, code, res.ErrorCode)
			assert.Equal(t, "boom", res.ErrorMsg)
		})
	}
}

func TestValidate_ErrorCodeCaseInsensitive(t *testing.T) {
	res, err := Validate(OpGetBalance, 401, jsonCT, []byte(`{"code": "login_failed"}`), CategoryLoginFailed)
	require.NoError(t, err)
	assert.Equal(t, "LOGIN_FAILED", res.ErrorCode)
}

func TestValidate_ClassificationMismatch(t *testing.T) {
	t.Run("wrong status", func(t *testing.T) {
		_, err := Validate(OpWithdrawal, 400, jsonCT, []byte(`{"code": "LOGIN_FAILED"}`), CategoryLoginFailed)
		require.ErrorIs(t, err, ErrClassification)
		assert.Contains(t, err.Error(), "expected http code is 401 but actual is 400")
	})

	t.Run("wrong code", func(t *testing.T) {
		_, err := Validate(OpWithdrawal, 401, jsonCT, []byte(`{"code": "INVALID_TOKEN"}`), CategoryLoginFailed)
		require.ErrorIs(t, err, ErrClassification)
		assert.Contains(t, err.Error(), "expected error code is LOGIN_FAILED but actual is INVALID_TOKEN")
	})

	t.Run("success where error expected", func(t *testing.T) {
		_, err := Validate(OpWithdrawal, 200, jsonCT, []byte(`{"balance": 95, "referenceId": "r"}`), CategoryInsufficientFunds)
		assert.ErrorIs(t, err, ErrClassification)
	})

	t.Run("error where success expected", func(t *testing.T) {
		_, err := Validate(OpWithdrawal, 500, jsonCT, []byte(`{"code": "OOPS"}`), CategoryNone)
		assert.ErrorIs(t, err, ErrClassification)
	})

	t.Run("error body without code", func(t *testing.T) {
		_, err := Validate(OpWithdrawal, 401, jsonCT, []byte(`{"message": "no"}`), CategoryLoginFailed)
		assert.ErrorIs(t, err, ErrSchema)
	})
}

func TestValidate_NotFoundRollbackMayNoOp(t *testing.T) {
	// A 2xx with the untouched balance is an accepted answer to rolling back
	// an unknown transaction, but only for rollback operations.
	for _, op := range []Operation{OpRollback, OpRollbackV2} {
		res, err := Validate(op, 200, jsonCT, []byte(`{"balance": 100.00}`), CategoryTransactionNotFound)
		require.NoError(t, err, "op %s", op)
		assert.True(t, res.Balance.Equal(money.MustParse("100")))
	}

	_, err := Validate(OpWithdrawal, 200, jsonCT, []byte(`{"balance": 100.00}`), CategoryTransactionNotFound)
	assert.ErrorIs(t, err, ErrClassification)
}

func TestErrorCategory_Expected(t *testing.T) {
	status, code := CategoryLoginFailed.Expected()
	assert.Equal(t, 401, status)
	assert.Equal(t, "LOGIN_FAILED", code)

	status, code = CategoryNone.Expected()
	assert.Zero(t, status)
	assert.Empty(t, code)

	assert.Equal(t, "none", CategoryNone.String())
	assert.Equal(t, "TRANSACTION_NOT_FOUND", CategoryTransactionNotFound.String())
}

package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	old, had := os.LookupEnv(key)
	require.NoError(t, os.Setenv(key, value))
	t.Cleanup(func() {
		if had {
			os.Setenv(key, old)
		} else {
			os.Unsetenv(key)
		}
	})
}

func setRequiredEnv(t *testing.T) {
	t.Helper()
	setEnv(t, "WALLET_URL", "http://wallet.example.com")
	setEnv(t, "WITHDRAW_URL", "http://wallet.example.com/withdraw")
	setEnv(t, "DEPOSIT_URL", "http://wallet.example.com/deposit")
	setEnv(t, "PASS_KEY", "pass-key-1")
	setEnv(t, "WALLET_SESSION", "session-1")
	setEnv(t, "PLAYER_ID", "player-1")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)
	for _, key := range []string{
		"ROLLBACK_URL", "REWARD_URL", "BLOCKED_PLAYER_ID",
		"CURRENCY", "DEVICE", "CLIENT_TYPE", "CATEGORY", "COMPLETED",
		"AMOUNT", "INSUFFICIENT_FUNDS_AMOUNT", "VERIFY_BALANCE_ON_DEPOSIT", "LOG_LEVEL",
	} {
		setEnv(t, key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultCurrency, cfg.Currency)
	assert.Equal(t, DefaultDevice, cfg.Device)
	assert.Equal(t, DefaultClientType, cfg.ClientType)
	assert.Equal(t, DefaultCategory, cfg.Category)
	assert.Equal(t, "true", cfg.Completed)
	assert.Equal(t, DefaultAmount, cfg.Amount)
	assert.Equal(t, "100000000", cfg.InsufficientFundsAmount)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.False(t, cfg.VerifyBalanceOnDeposit)

	assert.False(t, cfg.HasRollbackV2())
	assert.False(t, cfg.HasReward())
	assert.False(t, cfg.HasBlockedPlayer())
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	setEnv(t, "ROLLBACK_URL", "http://wallet.example.com/rollback")
	setEnv(t, "REWARD_URL", "http://wallet.example.com/reward")
	setEnv(t, "BLOCKED_PLAYER_ID", "player-blocked")
	setEnv(t, "CURRENCY", "USD")
	setEnv(t, "AMOUNT", "0.1")
	setEnv(t, "VERIFY_BALANCE_ON_DEPOSIT", "true")
	setEnv(t, "COMPLETED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "USD", cfg.Currency)
	assert.Equal(t, "0.1", cfg.Amount)
	assert.Equal(t, "false", cfg.Completed)
	assert.True(t, cfg.VerifyBalanceOnDeposit)
	assert.True(t, cfg.HasRollbackV2())
	assert.True(t, cfg.HasReward())
	assert.True(t, cfg.HasBlockedPlayer())
}

func TestLoad_MissingRequired(t *testing.T) {
	tests := []struct {
		missing string
	}{
		{"WALLET_URL"},
		{"WITHDRAW_URL"},
		{"DEPOSIT_URL"},
		{"PASS_KEY"},
		{"WALLET_SESSION"},
		{"PLAYER_ID"},
	}
	for _, tt := range tests {
		t.Run(tt.missing, func(t *testing.T) {
			setRequiredEnv(t)
			setEnv(t, tt.missing, "")

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.missing)
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	for _, v := range []string{"1", "true", "TRUE", "yes", "on"} {
		setEnv(t, "WALLETCHECK_TEST_BOOL", v)
		assert.True(t, getEnvBool("WALLETCHECK_TEST_BOOL"), "value %q", v)
	}
	for _, v := range []string{"", "0", "false", "off", "nope"} {
		setEnv(t, "WALLETCHECK_TEST_BOOL", v)
		assert.False(t, getEnvBool("WALLETCHECK_TEST_BOOL"), "value %q", v)
	}
}

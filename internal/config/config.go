// Package config handles harness configuration from environment variables
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all harness configuration. It is loaded once at startup and
// never mutated afterwards; every collaborator receives it by reference.
type Config struct {
	// Endpoints of the wallet under test
	WalletURL   string // base URL for balance/session/legacy rollback
	WithdrawURL string
	DepositURL  string
	RollbackURL string // empty means the wallet only supports legacy rollback
	RewardURL   string // empty means the wallet has no reward endpoint

	// Credentials
	PassKey              string
	WalletSession        string
	WalletSessionExpired string
	BlockedWalletSession string

	// Players
	PlayerID        string
	BlockedPlayerID string // empty skips account-blocked checks

	// Transaction metadata sent on every financial operation
	Currency   string
	GameID     string
	Device     string
	ClientType string
	Category   string
	Completed  string // default completed flag on debit bodies

	// Amounts (decimal strings)
	Amount                  string
	InsufficientFundsAmount string

	// Behavior toggles
	VerifyBalanceOnDeposit bool
	LogLevel               string
}

const (
	DefaultCurrency   = "EUR"
	DefaultDevice     = "desktop"
	DefaultClientType = "casino"
	DefaultCategory   = "slots"
	DefaultAmount     = "1"
	DefaultLogLevel   = "info"
)

// Load reads configuration from environment variables.
// It loads a .env file if present (for local runs).
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		WalletURL:               os.Getenv("WALLET_URL"),
		WithdrawURL:             os.Getenv("WITHDRAW_URL"),
		DepositURL:              os.Getenv("DEPOSIT_URL"),
		RollbackURL:             os.Getenv("ROLLBACK_URL"),
		RewardURL:               os.Getenv("REWARD_URL"),
		PassKey:                 os.Getenv("PASS_KEY"),
		WalletSession:           os.Getenv("WALLET_SESSION"),
		WalletSessionExpired:    os.Getenv("WALLET_SESSION_EXPIRED"),
		BlockedWalletSession:    os.Getenv("BLOCKED_WALLET_SESSION"),
		PlayerID:                os.Getenv("PLAYER_ID"),
		BlockedPlayerID:         os.Getenv("BLOCKED_PLAYER_ID"),
		Currency:                getEnv("CURRENCY", DefaultCurrency),
		GameID:                  os.Getenv("GAME_ID"),
		Device:                  getEnv("DEVICE", DefaultDevice),
		ClientType:              getEnv("CLIENT_TYPE", DefaultClientType),
		Category:                getEnv("CATEGORY", DefaultCategory),
		Completed:               getEnv("COMPLETED", "true"),
		Amount:                  getEnv("AMOUNT", DefaultAmount),
		InsufficientFundsAmount: getEnv("INSUFFICIENT_FUNDS_AMOUNT", "100000000"),
		VerifyBalanceOnDeposit:  getEnvBool("VERIFY_BALANCE_ON_DEPOSIT"),
		LogLevel:                getEnv("LOG_LEVEL", DefaultLogLevel),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all required configuration is present.
func (c *Config) Validate() error {
	if c.WalletURL == "" {
		return fmt.Errorf("WALLET_URL is required")
	}
	if c.WithdrawURL == "" {
		return fmt.Errorf("WITHDRAW_URL is required")
	}
	if c.DepositURL == "" {
		return fmt.Errorf("DEPOSIT_URL is required")
	}
	if c.PassKey == "" {
		return fmt.Errorf("PASS_KEY is required")
	}
	if c.WalletSession == "" {
		return fmt.Errorf("WALLET_SESSION is required")
	}
	if c.PlayerID == "" {
		return fmt.Errorf("PLAYER_ID is required")
	}
	return nil
}

// HasRollbackV2 reports whether the wallet exposes the betId-keyed rollback
// endpoint. Without it the harness falls back to the legacy
// referenceId-addressed rollback.
func (c *Config) HasRollbackV2() bool {
	return c.RollbackURL != ""
}

// HasReward reports whether the wallet exposes the reward endpoint.
func (c *Config) HasReward() bool {
	return c.RewardURL != ""
}

// HasBlockedPlayer reports whether account-blocked checks can run.
func (c *Config) HasBlockedPlayer() bool {
	return c.BlockedPlayerID != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

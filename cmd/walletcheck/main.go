// walletcheck - conformance tester for common wallet platforms
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/playward/walletcheck/internal/config"
	"github.com/playward/walletcheck/internal/logging"
	"github.com/playward/walletcheck/internal/metrics"
	"github.com/playward/walletcheck/internal/scenario"
)

func usage() {
	fmt.Printf("Usage: %s <scenario>\n", os.Args[0])
	fmt.Println(" commonwallet:\tPerforms a full cycle common wallet run")
	fmt.Println(" verifysession:\tPerforms a verify session request")
	fmt.Println(" getbalance:\tPerforms the get balance requests")
	fmt.Println(" withdrawal:\tPerforms a withdrawal request")
	fmt.Println(" deposit:\tPerforms the deposit requests")
	fmt.Println(" rollback:\tPerforms a withdrawal and rolls it back")
	fmt.Println(" reward:\tPerforms a reward request")
	fmt.Println(" idempotency:\tResends transactions to see that idempotency is working")
	fmt.Println(" errors:\tTests the error cases to verify the returned error codes")
	fmt.Println(" future:\tTests withdrawal, deposit and rollback for future compatibility")
	fmt.Println(" all:\t\tPerforms a thorough run")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	cfg, err := config.Load()
	if err != nil {
		logging.New(config.DefaultLogLevel).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting walletcheck",
		"wallet_url", cfg.WalletURL,
		"player_id", cfg.PlayerID,
	)

	driver, err := scenario.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create driver", "error", err)
		os.Exit(1)
	}

	start := time.Now()
	err = driver.Run(context.Background(), os.Args[1])
	elapsed := time.Since(start).Round(time.Second)

	if errors.Is(err, scenario.ErrUnknownScenario) {
		usage()
		return
	}

	metrics.LogSummary(logger)

	switch {
	case err != nil:
		logger.Error("Test NOT successful!", "error", err)
		os.Exit(1)
	case driver.Warnings() > 0:
		logger.Warn(fmt.Sprintf("Test completed with warnings! Completed in %s", elapsed),
			"warnings", driver.Warnings())
	default:
		logger.Info(fmt.Sprintf("Test successful! Completed in %s", elapsed))
	}
}

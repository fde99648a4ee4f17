package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"hubcoin/internal/config"
	"hubcoin/internal/db"
	"hubcoin/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()
	logger.Init(os.Getenv("LOG_LEVEL"), false)

	root := &cobra.Command{
		Use:          "hubctl",
		Short:        "HubCoin operator tools",
		SilenceUsage: true,
	}

	root.AddCommand(
		newMigrateCmd(),
		newSeedAccountCmd(),
		newFeeCmd(),
		newWithdrawalsCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// connect opens the database named by the environment
func connect(ctx context.Context) (*pgxpool.Pool, *config.Config, error) {
	cfg, err := config.LoadFrom(os.Getenv)
	if err != nil {
		return nil, nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	return pool, cfg, nil
}

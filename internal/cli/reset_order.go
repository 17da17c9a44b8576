package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/harrydhillon-synapse/cosmosToDb/internal/core/config"
	"github.com/harrydhillon-synapse/cosmosToDb/internal/infra/storage/postgres"
)

var resetOrderCmd = &cobra.Command{
	Use:   "reset-order [order_id]",
	Short: "Delete one order row and its failure history so it can be re-reconciled from scratch",
	Args:  cobra.ExactArgs(1),
	Run:   runResetOrder,
}

func init() {
	rootCmd.AddCommand(resetOrderCmd)
}

func runResetOrder(cmd *cobra.Command, args []string) {
	orderID := args[0]

	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = db.Close()
	}()

	// Failure rows reference the order row, so they go first.
	if err := postgres.NewFailureRepo(db).DeleteByOrder(ctx, orderID); err != nil {
		slog.Error("Failed to delete failure history", "order", orderID, "error", err)
		os.Exit(1)
	}
	if err := postgres.NewOrderRepo(db).Delete(ctx, orderID); err != nil {
		slog.Error("Failed to delete order", "order", orderID, "error", err)
		os.Exit(1)
	}

	fmt.Printf("Order %s reset. The next run will rebuild it from the log.\n", orderID)
}

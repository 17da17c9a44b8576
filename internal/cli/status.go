package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harrydhillon-synapse/cosmosToDb/internal/core/config"
	"github.com/harrydhillon-synapse/cosmosToDb/internal/infra/storage/postgres"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show an overview of the reconciled order store",
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
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

	stats, err := postgres.NewOrderRepo(db).Stats(ctx)
	if err != nil {
		slog.Error("Failed to query order stats", "error", err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "ORDERS\tCOMPLETED\tFAILURE EVENTS")
	_, _ = fmt.Fprintf(w, "%d\t%d\t%d\n", stats.Orders, stats.Completed, stats.Failures)
	_ = w.Flush()
}

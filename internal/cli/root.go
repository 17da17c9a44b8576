package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/vietddude/stylelog"

	"github.com/harrydhillon-synapse/cosmosToDb/internal/control"
	"github.com/harrydhillon-synapse/cosmosToDb/internal/core/config"
)

var (
	cfgPath string
	isDebug bool
	runOnce bool
)

var rootCmd = &cobra.Command{
	Use:   "reconciler",
	Short: "Order-submission log reconciler",
	Long:  `Reconciler pulls the remote order-submission log and reconciles it into the relational order store.`,
	Run:   runReconciler,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "config file (default is config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&isDebug, "debug", false, "enable debug logging")
	rootCmd.Flags().BoolVar(&runOnce, "once", false, "perform a single reconciliation run and exit")
}

func runReconciler(cmd *cobra.Command, args []string) {
	_ = godotenv.Load()

	// Load Configuration
	cfg, err := config.Load(cfgPath)
	if err != nil {
		stylelog.InitDefault()
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup logging
	slogLevel := slog.LevelInfo
	if isDebug || cfg.Logging.Level == "debug" {
		slogLevel = slog.LevelDebug
	}

	stylelog.InitDefault(&tint.Options{
		Level:      slogLevel,
		TimeFormat: time.RFC3339,
	})

	// Transform config
	controlCfg := control.Config{
		Port:      cfg.Server.Port,
		Reconcile: cfg.Reconcile,
		Source:    cfg.Source,
		Redis:     cfg.Redis,
		Database:  cfg.Database,
	}

	// Initialize Reconciler
	app, err := control.NewReconciler(controlCfg)
	if err != nil {
		slog.Error("Failed to initialize Reconciler", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if runOnce {
		summary, err := app.RunOnce(ctx)
		if err != nil {
			slog.Error("Reconciliation run failed", "error", err)
			_ = app.Stop(context.Background())
			os.Exit(1)
		}
		slog.Info("Run complete",
			"fetched", summary.Fetched,
			"applied", summary.Applied,
			"failed", summary.Failed,
			"skipped", summary.Skipped,
		)
		if err := app.Stop(context.Background()); err != nil {
			slog.Error("Error during shutdown", "error", err)
			os.Exit(1)
		}
		return
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	if err := app.Start(ctx); err != nil {
		slog.Error("Failed to start Reconciler", "error", err)
		os.Exit(1)
	}

	slog.Info("Reconciler started", "config", cfgPath)

	sig := <-sigChan
	slog.Info("Received signal, shutting down...", "signal", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := app.Stop(shutdownCtx); err != nil {
		slog.Error("Error during shutdown", "error", err)
		os.Exit(1)
	}
}

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/vietddude/stylelog"

	"github.com/vietddude/dispatcher/internal/control"
	"github.com/vietddude/dispatcher/internal/core/config"
	"github.com/vietddude/dispatcher/internal/core/domain"
	"github.com/vietddude/dispatcher/internal/core/session"
)

var (
	cfgPath  string
	isDebug  bool
	runCount int
	runHours float64
	rule     int
)

var rootCmd = &cobra.Command{
	Use:   "dispatcher",
	Short: "Warehouse move-task dispatch runner",
	Long: `Dispatcher submits warehouse move tasks (lift-to-zone and
region-pickup) to the remote dispatch service, unattended, until a
task count or duration target is reached, the circuit breaker trips,
or the run is interrupted.`,
	Run: runDispatcher,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "config file (default is config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&isDebug, "debug", false, "enable debug logging")
	rootCmd.Flags().IntVar(&runCount, "count", 0, "override run.count (submissions target)")
	rootCmd.Flags().Float64Var(&runHours, "hours", 0, "override run.hours (wall-clock budget)")
	rootCmd.Flags().IntVar(&rule, "rule", 0, "override task.rule for region pickup")
}

func runDispatcher(cmd *cobra.Command, args []string) {
	_ = godotenv.Load()

	// Load Configuration
	cfg, err := config.Load(cfgPath)
	if err != nil {
		stylelog.InitDefault()
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	// Flags override config
	if runCount > 0 {
		cfg.Run.Count = runCount
		cfg.Run.Hours = 0
	}
	if runHours > 0 {
		cfg.Run.Hours = runHours
		cfg.Run.Count = 0
	}
	if rule > 0 {
		cfg.Task.Rule = rule
	}
	if err := cfg.Validate(); err != nil {
		stylelog.InitDefault()
		slog.Error("Invalid configuration", "error", err)
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner, err := control.NewRunner(ctx, cfg, slog.Default())
	if err != nil {
		slog.Error("Failed to initialize runner", "error", err)
		os.Exit(1)
	}

	// First signal interrupts gracefully, second one forces exit.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		slog.Info("Received signal, finishing current submission...", "signal", sig)
		runner.Interrupt()

		sig = <-sigChan
		slog.Warn("Received second signal, exiting", "signal", sig)
		os.Exit(1)
	}()

	stats, err := runner.Run(ctx)
	if err != nil {
		slog.Error("Run failed", "error", err)
		os.Exit(1)
	}

	fmt.Print(session.RenderReport(stats))

	if stats.Reason == domain.TerminationCircuitTripped {
		os.Exit(2)
	}
}

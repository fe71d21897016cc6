package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/vietddude/dispatcher/internal/core/config"
	redisclient "github.com/vietddude/dispatcher/internal/infra/redis"
)

var (
	failuresRunID string
	failuresLimit int64
)

var failuresCmd = &cobra.Command{
	Use:   "failures",
	Short: "Show a run's failed submissions from the failed-task sink",
	Run:   runFailures,
}

func init() {
	failuresCmd.Flags().StringVar(&failuresRunID, "run", "", "run id to inspect (required)")
	failuresCmd.Flags().Int64Var(&failuresLimit, "limit", 50, "number of failures to show")
	_ = failuresCmd.MarkFlagRequired("run")
	rootCmd.AddCommand(failuresCmd)
}

func runFailures(cmd *cobra.Command, args []string) {
	cfg, err := config.Read(cfgPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.Redis.URL == "" {
		slog.Error("No redis configured, failed-task sink is unavailable")
		os.Exit(1)
	}

	client, err := redisclient.NewClient(cfg.Redis)
	if err != nil {
		slog.Error("Failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = client.Close()
	}()

	ctx := context.Background()
	failures, err := redisclient.NewFailedTaskRepo(client, failuresRunID).List(ctx, failuresLimit)
	if err != nil {
		slog.Error("Failed to list failures", "error", err)
		os.Exit(1)
	}
	if len(failures) == 0 {
		fmt.Println("no recorded failures for run", failuresRunID)
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "FAILED AT\tTYPE\tSOURCE\tDESTINATION\tOUTCOME")

	for _, f := range failures {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			f.FailedAt.Format(time.DateTime),
			f.TaskType, f.Source, f.Destination, f.Outcome)
	}
	_ = w.Flush()
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pipeline",
		Short: "Run tasks concurrently on the shared pipeline",
		Long: `pipeline submits demo tasks to the process-wide task pipeline, reports
the completed count while they run and can expose Prometheus metrics.

Settings come from the environment (PIPELINE_NAME, LOG_LEVEL, LOG_DEV,
METRICS_ADDR, METRICS_NAMESPACE, STATUS_INTERVAL, POLL_INTERVAL); flags override them.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pipeline version %s\n", version)
		},
	})

	return rootCmd
}

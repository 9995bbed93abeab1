package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "heatmapctl",
		Short:         "Ingest and query bucketed metric rows",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("db", "", "database path (default: $DB_PATH or ./data/metrics/heatmap.db)")
	root.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	addCommands(root)
	return root
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

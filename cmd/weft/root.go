package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/weftlabs/weft/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "weft",
	Short: "Weft is an agent-state workflow engine",
	Long: `Weft runs directed graphs of LLM and retrieval steps over a typed
shared state, declared as YAML pipelines or built in code.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("pipeline", "p", "pipeline.yaml", "Path to the pipeline definition")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable debug logging")
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return logging.New(level)
}

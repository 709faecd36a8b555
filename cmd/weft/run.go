package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/weftlabs/weft"
	"github.com/weftlabs/weft/pkg/domain"
	"github.com/weftlabs/weft/pkg/ports"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute a pipeline and print the result as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRun(cmd)
	},
}

func init() {
	runCmd.Flags().String("input", "{}", "Initial state as a JSON object, or @file")
	runCmd.Flags().Duration("node-timeout", 2*time.Minute, "Timeout per node execution")
	runCmd.Flags().Bool("quiet", false, "Suppress progress output")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command) error {
	logger := newLogger(cmd)
	path, _ := cmd.Flags().GetString("pipeline")
	nodeTimeout, _ := cmd.Flags().GetDuration("node-timeout")
	quiet, _ := cmd.Flags().GetBool("quiet")

	initial, err := readInput(cmd)
	if err != nil {
		return err
	}

	opts := []weft.Option{weft.WithNodeTimeout(nodeTimeout)}
	if !quiet {
		opts = append(opts, weft.WithProgressSink(ports.ProgressFunc(func(e domain.ProgressEvent) {
			fmt.Fprintf(os.Stderr, "[%d/%d] %s\n", e.Step, e.Total, e.Label)
		})))
	}

	eng, _, err := buildEngine(path, logger, opts...)
	if err != nil {
		return err
	}

	// Ctrl-C lands the run in Cancelled instead of killing the process.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := eng.Run(ctx, initial)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return err
	}

	if result.Status != domain.StatusCompleted {
		// Non-zero exit for degraded or cancelled runs, result already printed.
		os.Exit(2)
	}
	return nil
}

func readInput(cmd *cobra.Command) (domain.Update, error) {
	raw, _ := cmd.Flags().GetString("input")
	if len(raw) > 0 && raw[0] == '@' {
		data, err := os.ReadFile(raw[1:])
		if err != nil {
			return nil, fmt.Errorf("failed to read input file: %w", err)
		}
		raw = string(data)
	}
	var initial domain.Update
	if err := json.Unmarshal([]byte(raw), &initial); err != nil {
		return nil, fmt.Errorf("invalid input JSON: %w", err)
	}
	return initial, nil
}

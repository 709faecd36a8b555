package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/weftlabs/weft/pkg/ports"
	"github.com/weftlabs/weft/pkg/registry"
	"github.com/weftlabs/weft/pkg/schema"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a pipeline definition for consistency",
	Long:  `Parses the pipeline, resolves node kinds against the registry and validates the graph, without running anything.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("pipeline")

		pipeline, err := schema.Load(path)
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}

		// Stub collaborators so node factories validate params without
		// needing live credentials.
		stubs := ports.Collaborators{
			LLM:      stubLLM{},
			Search:   stubSearch{},
			Notifier: stubNotifier{},
		}
		if _, err := pipeline.Compile(registry.Default(), stubs); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		if _, _, _, err := pipeline.ReportSpec(); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}

		fmt.Printf("Pipeline %q is valid (%d nodes, %d edges)\n", pipeline.Name, len(pipeline.Nodes), len(pipeline.Edges))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

type stubLLM struct{}

func (stubLLM) Complete(context.Context, ports.CompletionRequest) (ports.Completion, error) {
	return ports.Completion{}, nil
}

type stubSearch struct{}

func (stubSearch) Search(context.Context, string, int) ([]ports.SearchResult, error) {
	return nil, nil
}

type stubNotifier struct{}

func (stubNotifier) Notify(context.Context, ports.Notification) error {
	return nil
}

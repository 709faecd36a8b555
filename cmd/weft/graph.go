package main

import (
	"fmt"

	"github.com/spf13/cobra"
	presentation "github.com/weftlabs/weft/internal/presentation/graph"
	"github.com/weftlabs/weft/pkg/ports"
	"github.com/weftlabs/weft/pkg/registry"
	"github.com/weftlabs/weft/pkg/schema"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Render the pipeline graph as Mermaid",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("pipeline")

		pipeline, err := schema.Load(path)
		if err != nil {
			return err
		}

		stubs := ports.Collaborators{LLM: stubLLM{}, Search: stubSearch{}, Notifier: stubNotifier{}}
		g, err := pipeline.Compile(registry.Default(), stubs)
		if err != nil {
			return err
		}

		fmt.Print(presentation.GenerateMermaid(g))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}

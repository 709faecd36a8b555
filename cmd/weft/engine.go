package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/weftlabs/weft"
	"github.com/weftlabs/weft/pkg/adapters/openai"
	"github.com/weftlabs/weft/pkg/adapters/webhook"
	"github.com/weftlabs/weft/pkg/ports"
	"github.com/weftlabs/weft/pkg/registry"
	"github.com/weftlabs/weft/pkg/schema"
)

// buildCollaborators assembles the collaborator bundle from the
// environment. Missing collaborators stay nil; a pipeline node that needs
// one fails at compile time with a clear message.
func buildCollaborators(logger *slog.Logger) ports.Collaborators {
	var c ports.Collaborators

	if os.Getenv("OPENAI_API_KEY") != "" {
		llm, err := openai.NewFromEnv()
		if err != nil {
			logger.Warn("openai client unavailable", "err", err)
		} else {
			c.LLM = llm
			logger.Debug("openai client configured", "model", llm.Model())
		}
	}

	if url := os.Getenv("WEFT_WEBHOOK_URL"); url != "" {
		notifier, err := webhook.New(url)
		if err != nil {
			logger.Warn("webhook notifier unavailable", "err", err)
		} else {
			c.Notifier = notifier
		}
	}

	return c
}

// buildEngine loads a pipeline file and compiles it into a ready engine.
func buildEngine(path string, logger *slog.Logger, extra ...weft.Option) (*weft.Engine, *schema.Pipeline, error) {
	pipeline, err := schema.Load(path)
	if err != nil {
		return nil, nil, err
	}

	collaborators := buildCollaborators(logger)
	graph, err := pipeline.Compile(registry.Default(), collaborators)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to compile pipeline %q: %w", pipeline.Name, err)
	}

	opts := []weft.Option{
		weft.WithName(pipeline.Name),
		weft.WithLogger(logger),
	}
	if spec, field, found, err := pipeline.ReportSpec(); err != nil {
		return nil, nil, err
	} else if found {
		opts = append(opts, weft.WithReportSpec(spec), weft.WithReportField(field))
	}
	opts = append(opts, extra...)

	eng, err := weft.New(pipeline.Schema(), graph, opts...)
	if err != nil {
		return nil, nil, err
	}
	return eng, pipeline, nil
}

package weft

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/weftlabs/weft/internal/runtime"
	"github.com/weftlabs/weft/pkg/domain"
	"github.com/weftlabs/weft/pkg/ports"
	"github.com/weftlabs/weft/pkg/report"
)

// Engine is the high-level entry point: one validated (schema, graph) pair
// plus the ambient configuration shared by its runs.
type Engine struct {
	executor *runtime.Executor
	store    ports.RunStore
	logger   *slog.Logger
	name     string

	runtimeOpts []runtime.Option
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithName labels the engine's runs (pipeline name in results and logs).
func WithName(name string) Option {
	return func(e *Engine) {
		e.name = name
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithHooks registers lifecycle callbacks (logging, metrics, UIs).
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithHooks(hooks))
	}
}

// WithProgressSink sets the sink receiving one event per executed node.
func WithProgressSink(sink ports.ProgressSink) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithSink(sink))
	}
}

// WithNodeTimeout bounds every node invocation; a timeout degrades the run
// exactly like any other node failure.
func WithNodeTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithNodeTimeout(d))
	}
}

// WithReportSpec installs the aggregator spec used both to surface the
// terminal report and to synthesize degraded reports on failure.
func WithReportSpec(spec report.Spec) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithReporter(spec))
	}
}

// WithReportField names the state field holding the terminal report.
func WithReportField(field string) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithReportField(field))
	}
}

// WithMetadataField names the state field whose value is attached to
// degraded reports as caller-supplied metadata.
func WithMetadataField(field string) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithMetadataField(field))
	}
}

// WithRunStore persists finished results.
func WithRunStore(store ports.RunStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// New validates the graph against the schema and builds an engine.
// Construction errors (unknown nodes, write sets outside the schema) are
// returned here, before any node can execute.
func New(schema *domain.Schema, graph *domain.Graph, opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if eng.name != "" {
		eng.logger = eng.logger.With("pipeline", eng.name)
	}

	runtimeOpts := append([]runtime.Option{runtime.WithLogger(eng.logger)}, eng.runtimeOpts...)
	executor, err := runtime.New(schema, graph, runtimeOpts...)
	if err != nil {
		return nil, err
	}
	eng.executor = executor

	return eng, nil
}

// Run executes one workflow run with the given initial state. The run is
// assigned a fresh ID; the result is persisted when a store is configured.
// Node failures come back as a StatusFailed result with a degraded report,
// never as an error.
func (e *Engine) Run(ctx context.Context, initial domain.Update) (*domain.Result, error) {
	runID := uuid.NewString()
	result, err := e.executor.Run(ctx, runID, initial)
	if err != nil {
		return nil, err
	}
	result.Pipeline = e.name

	if e.store != nil {
		if serr := e.store.Save(ctx, result); serr != nil {
			// Persistence failures do not invalidate the run result.
			e.logger.Warn("failed to persist run result", "run_id", runID, "err", serr)
		}
	}
	return result, nil
}

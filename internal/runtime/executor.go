// Package runtime contains the core executor: a single-threaded cooperative
// scheduler that walks the graph, applies node updates to the shared state
// under the declared merge policies, and emits progress events.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/weftlabs/weft/pkg/domain"
	"github.com/weftlabs/weft/pkg/ports"
)

// DegradedReporter synthesizes a structurally valid, error-flagged report
// when a node fails. Satisfied by report.Spec.
type DegradedReporter interface {
	Degraded(msg string, metadata map[string]any) *domain.Report
}

// Executor runs one graph against one schema. It is stateless across runs;
// each Run owns its own state container.
type Executor struct {
	schema      *domain.Schema
	graph       *domain.Graph
	logger      *slog.Logger
	hooks       domain.LifecycleHooks
	sink        ports.ProgressSink
	reporter    DegradedReporter
	nodeTimeout time.Duration
	reportField string
	metaField   string
}

// Option configures the executor.
type Option func(*Executor)

// WithLogger sets a structured logger. Defaults to a no-op logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithHooks registers lifecycle callbacks.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Executor) {
		e.hooks = hooks
	}
}

// WithSink sets the progress event sink.
func WithSink(sink ports.ProgressSink) Option {
	return func(e *Executor) {
		e.sink = sink
	}
}

// WithNodeTimeout bounds each node invocation. Zero means no timeout.
func WithNodeTimeout(d time.Duration) Option {
	return func(e *Executor) {
		e.nodeTimeout = d
	}
}

// WithReporter sets the degraded-report builder used when a node fails.
func WithReporter(r DegradedReporter) Option {
	return func(e *Executor) {
		e.reporter = r
	}
}

// WithReportField names the state field the terminal node writes its report
// to; a completed run surfaces that value as Result.Report.
func WithReportField(field string) Option {
	return func(e *Executor) {
		e.reportField = field
	}
}

// WithMetadataField names the state field carried into degraded reports as
// caller-supplied metadata.
func WithMetadataField(field string) Option {
	return func(e *Executor) {
		e.metaField = field
	}
}

// New validates the graph against the schema and builds an executor.
// Construction-time errors (unknown nodes, write sets outside the schema)
// fail here, before any node executes.
func New(schema *domain.Schema, graph *domain.Graph, opts ...Option) (*Executor, error) {
	if schema == nil {
		return nil, fmt.Errorf("nil schema")
	}
	if graph == nil {
		return nil, fmt.Errorf("nil graph")
	}
	if err := graph.Validate(schema); err != nil {
		return nil, err
	}
	e := &Executor{
		schema: schema,
		graph:  graph,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Run executes the graph to its terminal edge. The returned error covers
// only invalid initial state; node failures never surface as errors — they
// produce a StatusFailed result carrying a degraded report and the partial
// state accumulated so far.
func (e *Executor) Run(ctx context.Context, runID string, initial domain.Update) (*domain.Result, error) {
	state, err := domain.NewState(e.schema, initial)
	if err != nil {
		return nil, err
	}

	result := &domain.Result{
		RunID:     runID,
		Status:    domain.StatusRunning,
		StartedAt: time.Now().UTC(),
	}
	logger := e.logger.With("run_id", runID)

	total := e.graph.Len()
	budget := e.graph.MaxSteps()
	if budget <= 0 {
		// Uncapped graphs are bounded by their node count so an
		// accidental cycle degrades instead of spinning.
		budget = total
	}

	current := e.graph.Entry()
	for current != domain.End {
		// Cooperative cancellation, checked between node executions.
		select {
		case <-ctx.Done():
			logger.Info("run cancelled", "node", current, "steps", result.Steps)
			return e.finish(ctx, result, state, domain.StatusCancelled, ctx.Err().Error()), nil
		default:
		}

		if result.Steps >= budget {
			err := &domain.NodeExecutionError{Node: current, Err: domain.ErrStepBudgetExceeded}
			logger.Warn("step budget exceeded", "node", current, "budget", budget)
			return e.degrade(ctx, result, state, err), nil
		}

		node, ok := e.graph.Node(current)
		if !ok {
			// Unreachable after construction validation.
			err := &domain.NodeExecutionError{Node: current, Err: &domain.UnknownNodeError{Node: current, Referrer: "executor"}}
			return e.degrade(ctx, result, state, err), nil
		}

		result.Steps++
		step := result.Steps
		startEvent := &domain.NodeEvent{RunID: runID, Node: node.ID, Label: node.DisplayLabel(), Step: step}
		if e.hooks.OnNodeStart != nil {
			e.hooks.OnNodeStart(ctx, startEvent)
		}
		logger.Debug("executing node", "node", node.ID, "step", step)

		started := time.Now()
		update, execErr := e.execNode(ctx, node, state.Snapshot())
		elapsed := time.Since(started)

		if execErr == nil {
			if werr := node.CheckWrites(update); werr != nil {
				execErr = fmt.Errorf("update outside declared write set: %w", werr)
			} else if aerr := state.Apply(update); aerr != nil {
				execErr = aerr
			}
		}

		endEvent := &domain.NodeEvent{RunID: runID, Node: node.ID, Label: node.DisplayLabel(), Step: step, Duration: elapsed, Err: execErr}
		if e.hooks.OnNodeEnd != nil {
			e.hooks.OnNodeEnd(ctx, endEvent)
		}

		if execErr != nil {
			if ctx.Err() != nil {
				// The caller cancelled mid-node; land in Cancelled
				// rather than reporting a degraded failure.
				logger.Info("run cancelled during node", "node", node.ID, "steps", result.Steps)
				return e.finish(ctx, result, state, domain.StatusCancelled, ctx.Err().Error()), nil
			}
			nodeErr := &domain.NodeExecutionError{Node: node.ID, Err: execErr}
			logger.Warn("node failed", "node", node.ID, "step", step, "err", execErr)
			return e.degrade(ctx, result, state, nodeErr), nil
		}

		// The update is fully applied before the event is observable and
		// before the next node is resolved.
		e.emitProgress(result, domain.ProgressEvent{
			RunID:     runID,
			Step:      step,
			Total:     total,
			Node:      node.ID,
			Label:     node.DisplayLabel(),
			Timestamp: time.Now().UTC(),
		})

		current = e.graph.Next(current, state.Snapshot())
	}

	logger.Info("run completed", "steps", result.Steps)
	res := e.finish(ctx, result, state, domain.StatusCompleted, "")
	if e.reportField != "" {
		if rep, ok := res.State[e.reportField].(*domain.Report); ok {
			res.Report = rep
		}
	}
	return res, nil
}

// execNode invokes the node body with the configured timeout, converting
// panics and deadline hits into plain errors. A node must not crash the
// process.
func (e *Executor) execNode(ctx context.Context, node domain.Node, snap domain.Snapshot) (update domain.Update, err error) {
	nctx := ctx
	if e.nodeTimeout > 0 {
		var cancel context.CancelFunc
		nctx, cancel = context.WithTimeout(ctx, e.nodeTimeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	update, err = node.Func(nctx, snap)
	if err != nil && errors.Is(nctx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		err = fmt.Errorf("%w after %s: %v", domain.ErrNodeTimeout, e.nodeTimeout, err)
	}
	return update, err
}

func (e *Executor) emitProgress(result *domain.Result, event domain.ProgressEvent) {
	result.Events = append(result.Events, event)
	if e.sink != nil {
		e.sink.Publish(event)
	}
}

// degrade finalizes a failed run: the partial state stays visible and the
// report is a structurally valid, error-flagged shell.
func (e *Executor) degrade(ctx context.Context, result *domain.Result, state *domain.State, nodeErr *domain.NodeExecutionError) *domain.Result {
	res := e.finish(ctx, result, state, domain.StatusFailed, nodeErr.Error())
	var metadata map[string]any
	if e.metaField != "" {
		metadata = res.State.Map(e.metaField)
	}
	if e.reporter != nil {
		res.Report = e.reporter.Degraded(nodeErr.Error(), metadata)
	} else {
		res.Report = &domain.Report{
			SourceScores:    map[string]float64{},
			Recommendations: []domain.Recommendation{},
			Metadata:        metadata,
			GeneratedAt:     time.Now().UTC(),
			Error:           nodeErr.Error(),
		}
	}
	return res
}

func (e *Executor) finish(ctx context.Context, result *domain.Result, state *domain.State, status domain.RunStatus, errMsg string) *domain.Result {
	result.Status = status
	result.Error = errMsg
	result.State = state.Snapshot()
	result.FinishedAt = time.Now().UTC()
	if e.hooks.OnRunEnd != nil {
		e.hooks.OnRunEnd(ctx, result)
	}
	return result
}

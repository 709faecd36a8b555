package runtime

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weftlabs/weft/pkg/adapters/memory"
	"github.com/weftlabs/weft/pkg/domain"
	"github.com/weftlabs/weft/pkg/ports"
	"github.com/weftlabs/weft/pkg/report"
)

func testSchema() *domain.Schema {
	return domain.NewSchema().
		Overwrite("plan", "draft", "report").
		Append("findings")
}

func writerNode(id, field string, value any) domain.Node {
	return domain.Node{
		ID:     id,
		Writes: []string{field},
		Func: func(ctx context.Context, state domain.Snapshot) (domain.Update, error) {
			return domain.Update{field: value}, nil
		},
	}
}

func linearGraph(t *testing.T, nodes []domain.Node) *domain.Graph {
	t.Helper()
	edges := make([]domain.Edge, 0, len(nodes))
	for i := 0; i < len(nodes)-1; i++ {
		edges = append(edges, domain.Edge{From: nodes[i].ID, To: nodes[i+1].ID})
	}
	g, err := domain.NewGraph(nodes[0].ID, nodes, edges)
	require.NoError(t, err)
	return g
}

func TestRunCompletesLinearGraph(t *testing.T) {
	nodes := []domain.Node{
		writerNode("plan", "plan", "outline"),
		writerNode("draft", "draft", "text"),
		writerNode("finalize", "report", "done"),
	}
	recorder := memory.NewRecorder()
	exec, err := New(testSchema(), linearGraph(t, nodes), WithSink(recorder))
	require.NoError(t, err)

	result, err := exec.Run(context.Background(), "run-1", nil)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCompleted, result.Status)
	assert.Equal(t, 3, result.Steps)
	assert.Equal(t, "outline", result.State.String("plan"))
	assert.Equal(t, "done", result.State.String("report"))
	assert.Empty(t, result.Error)
	assert.False(t, result.FinishedAt.Before(result.StartedAt))

	// One event per executed node, 1-based and strictly increasing, with
	// the final step equal to the total on a linear graph.
	events := recorder.ForRun("run-1")
	require.Len(t, events, 3)
	for i, e := range events {
		assert.Equal(t, i+1, e.Step)
		assert.Equal(t, 3, e.Total)
		assert.Equal(t, nodes[i].ID, e.Node)
		assert.Equal(t, "run-1", e.RunID)
	}
	assert.Equal(t, events, result.Events)
}

func TestRunEventEmittedAfterUpdateApplied(t *testing.T) {
	var observed string
	sink := func(e domain.ProgressEvent) {
		// By the time the event for "plan" is observable, its update must
		// already be in the state the next node will see.
		observed = e.Node
	}
	nodes := []domain.Node{
		writerNode("plan", "plan", "outline"),
		{
			ID:     "check",
			Writes: []string{"draft"},
			Func: func(ctx context.Context, state domain.Snapshot) (domain.Update, error) {
				if observed != "plan" {
					return nil, errors.New("event for previous node not yet published")
				}
				if state.String("plan") != "outline" {
					return nil, errors.New("previous update not visible")
				}
				return domain.Update{"draft": "ok"}, nil
			},
		},
	}
	exec, err := New(testSchema(), linearGraph(t, nodes), WithSink(ports.ProgressFunc(sink)))
	require.NoError(t, err)

	result, err := exec.Run(context.Background(), "run-order", nil)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, result.Status)
}

func TestRunNodeFailureDegradesInsteadOfErroring(t *testing.T) {
	boom := errors.New("model unavailable")
	nodes := []domain.Node{
		writerNode("plan", "plan", "outline"),
		{
			ID:     "draft",
			Writes: []string{"draft"},
			Func: func(ctx context.Context, state domain.Snapshot) (domain.Update, error) {
				return nil, boom
			},
		},
		writerNode("finalize", "report", "unreached"),
	}
	spec := report.Spec{Sources: []report.Source{{Name: "draft", Weight: 1.0}}}
	exec, err := New(testSchema(), linearGraph(t, nodes), WithReporter(spec))
	require.NoError(t, err)

	result, err := exec.Run(context.Background(), "run-fail", nil)
	require.NoError(t, err, "node failures must not surface as errors")

	assert.Equal(t, domain.StatusFailed, result.Status)
	assert.Contains(t, result.Error, `node "draft" failed`)
	assert.Contains(t, result.Error, "model unavailable")
	assert.Equal(t, 2, result.Steps)

	// Partial state survives the failure.
	assert.Equal(t, "outline", result.State.String("plan"))
	assert.Empty(t, result.State.String("report"))

	// The report is structurally valid with zeroed scores and the error.
	require.NotNil(t, result.Report)
	assert.True(t, result.Report.Degraded())
	assert.Contains(t, result.Report.Error, "model unavailable")
	assert.Equal(t, 0.0, result.Report.SourceScores["draft"])
	assert.NotNil(t, result.Report.Recommendations)
}

func TestRunPanicBecomesDegradedResult(t *testing.T) {
	nodes := []domain.Node{
		{
			ID: "explode",
			Func: func(ctx context.Context, state domain.Snapshot) (domain.Update, error) {
				panic("nil map write")
			},
		},
	}
	exec, err := New(testSchema(), linearGraph(t, nodes))
	require.NoError(t, err)

	result, err := exec.Run(context.Background(), "run-panic", nil)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusFailed, result.Status)
	assert.Contains(t, result.Error, "panic: nil map write")
	require.NotNil(t, result.Report)
	assert.True(t, result.Report.Degraded())
}

func TestRunWriteSetViolationDegradesBeforeApply(t *testing.T) {
	nodes := []domain.Node{
		{
			ID:     "sneaky",
			Writes: []string{"plan"},
			Func: func(ctx context.Context, state domain.Snapshot) (domain.Update, error) {
				return domain.Update{"plan": "ok", "draft": "outside write set"}, nil
			},
		},
	}
	exec, err := New(testSchema(), linearGraph(t, nodes))
	require.NoError(t, err)

	result, err := exec.Run(context.Background(), "run-writes", nil)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusFailed, result.Status)
	assert.Contains(t, result.Error, "write set")
	assert.Empty(t, result.State.String("plan"), "rejected update is dropped whole")
}

func TestRunNodeTimeout(t *testing.T) {
	nodes := []domain.Node{
		{
			ID: "slow",
			Func: func(ctx context.Context, state domain.Snapshot) (domain.Update, error) {
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(time.Second):
					return domain.Update{}, nil
				}
			},
		},
	}
	exec, err := New(testSchema(), linearGraph(t, nodes), WithNodeTimeout(10*time.Millisecond))
	require.NoError(t, err)

	result, err := exec.Run(context.Background(), "run-timeout", nil)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusFailed, result.Status)
	assert.Contains(t, result.Error, `node "slow" failed`)
	assert.Contains(t, result.Error, "timed out")
}

func TestRunCancellationBetweenNodes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	nodes := []domain.Node{
		{
			ID:     "first",
			Writes: []string{"plan"},
			Func: func(c context.Context, state domain.Snapshot) (domain.Update, error) {
				cancel() // Requested while a node is mid-flight; honored at the next boundary.
				return domain.Update{"plan": "outline"}, nil
			},
		},
		writerNode("second", "draft", "unreached"),
	}
	exec, err := New(testSchema(), linearGraph(t, nodes))
	require.NoError(t, err)

	result, err := exec.Run(ctx, "run-cancel", nil)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCancelled, result.Status)
	assert.Equal(t, 1, result.Steps, "the in-flight node completes, the next never starts")
	assert.Equal(t, "outline", result.State.String("plan"), "completed updates are retained")
	assert.Empty(t, result.State.String("draft"))
	assert.Nil(t, result.Report, "no report is fabricated for a cancelled run")
}

func TestRunCancellationDuringNode(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	nodes := []domain.Node{
		{
			ID: "blocked",
			Func: func(c context.Context, state domain.Snapshot) (domain.Update, error) {
				cancel()
				<-c.Done()
				return nil, c.Err()
			},
		},
	}
	exec, err := New(testSchema(), linearGraph(t, nodes))
	require.NoError(t, err)

	result, err := exec.Run(ctx, "run-cancel-mid", nil)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCancelled, result.Status, "caller cancellation is not a node failure")
	assert.Nil(t, result.Report)
}

func TestRunCycleWithMaxSteps(t *testing.T) {
	var passes int
	nodes := []domain.Node{
		{
			ID:     "refine",
			Writes: []string{"findings"},
			Func: func(ctx context.Context, state domain.Snapshot) (domain.Update, error) {
				passes++
				return domain.Update{"findings": fmt.Sprintf("pass-%d", passes)}, nil
			},
		},
		writerNode("publish", "report", "done"),
	}
	edges := []domain.Edge{
		{From: "refine", To: "refine", When: func(s domain.Snapshot) bool { return len(s.List("findings")) < 3 }},
		{From: "refine", To: "publish"},
	}
	g, err := domain.NewGraph("refine", nodes, edges, domain.WithMaxSteps(10))
	require.NoError(t, err)

	exec, err := New(testSchema(), g)
	require.NoError(t, err)

	result, err := exec.Run(context.Background(), "run-loop", nil)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCompleted, result.Status)
	assert.Equal(t, 4, result.Steps, "three refine passes then publish")
	assert.Equal(t, []any{"pass-1", "pass-2", "pass-3"}, result.State.List("findings"))
}

func TestRunUncappedCycleHitsNodeCountBudget(t *testing.T) {
	nodes := []domain.Node{
		{
			ID: "spin",
			Func: func(ctx context.Context, state domain.Snapshot) (domain.Update, error) {
				return domain.Update{}, nil
			},
		},
	}
	edges := []domain.Edge{{From: "spin", To: "spin"}}
	g, err := domain.NewGraph("spin", nodes, edges)
	require.NoError(t, err)

	exec, err := New(testSchema(), g)
	require.NoError(t, err)

	result, err := exec.Run(context.Background(), "run-spin", nil)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusFailed, result.Status)
	assert.Contains(t, result.Error, "step budget exceeded")
	assert.Equal(t, 1, result.Steps, "budget defaults to the declared node count")
}

func TestRunExplicitBudgetExceededDegrades(t *testing.T) {
	nodes := []domain.Node{
		{
			ID: "spin",
			Func: func(ctx context.Context, state domain.Snapshot) (domain.Update, error) {
				return domain.Update{}, nil
			},
		},
	}
	edges := []domain.Edge{{From: "spin", To: "spin"}}
	g, err := domain.NewGraph("spin", nodes, edges, domain.WithMaxSteps(5))
	require.NoError(t, err)

	exec, err := New(testSchema(), g)
	require.NoError(t, err)

	result, err := exec.Run(context.Background(), "run-budget", nil)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusFailed, result.Status)
	assert.Equal(t, 5, result.Steps)
	require.NotNil(t, result.Report)
	assert.True(t, result.Report.Degraded())
}

func TestRunInvalidInitialStateIsAnError(t *testing.T) {
	exec, err := New(testSchema(), linearGraph(t, []domain.Node{writerNode("plan", "plan", "x")}))
	require.NoError(t, err)

	result, err := exec.Run(context.Background(), "run-bad-init", domain.Update{"bogus": 1})
	require.Error(t, err, "configuration errors are the one thing Run rejects")
	assert.Nil(t, result)

	var ufe *domain.UnknownFieldError
	assert.ErrorAs(t, err, &ufe)
}

func TestRunReportFieldSurfacedOnCompletion(t *testing.T) {
	rep := &domain.Report{OverallScore: 64.3}
	nodes := []domain.Node{
		{
			ID:     "aggregate",
			Writes: []string{"report"},
			Func: func(ctx context.Context, state domain.Snapshot) (domain.Update, error) {
				return domain.Update{"report": rep}, nil
			},
		},
	}
	exec, err := New(testSchema(), linearGraph(t, nodes), WithReportField("report"))
	require.NoError(t, err)

	result, err := exec.Run(context.Background(), "run-report", nil)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCompleted, result.Status)
	assert.Same(t, rep, result.Report)
}

func TestRunConditionalRouting(t *testing.T) {
	nodes := []domain.Node{
		writerNode("score", "plan", "low"),
		writerNode("revise", "draft", "revised"),
		writerNode("publish", "report", "published"),
	}
	edges := []domain.Edge{
		{From: "score", To: "revise", When: func(s domain.Snapshot) bool { return s.String("plan") == "low" }},
		{From: "score", To: "publish"},
		{From: "revise", To: "publish"},
	}
	g, err := domain.NewGraph("score", nodes, edges)
	require.NoError(t, err)

	exec, err := New(testSchema(), g)
	require.NoError(t, err)

	result, err := exec.Run(context.Background(), "run-branch", nil)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCompleted, result.Status)
	assert.Equal(t, "revised", result.State.String("draft"), "conditional edge taken on post-update state")
	assert.Equal(t, "published", result.State.String("report"))
	assert.Equal(t, 3, result.Steps)
}

func TestRunLifecycleHooks(t *testing.T) {
	var starts, ends []string
	var finished *domain.Result
	hooks := domain.LifecycleHooks{
		OnNodeStart: func(ctx context.Context, e *domain.NodeEvent) { starts = append(starts, e.Node) },
		OnNodeEnd:   func(ctx context.Context, e *domain.NodeEvent) { ends = append(ends, e.Node) },
		OnRunEnd:    func(ctx context.Context, r *domain.Result) { finished = r },
	}
	nodes := []domain.Node{
		writerNode("plan", "plan", "x"),
		writerNode("draft", "draft", "y"),
	}
	exec, err := New(testSchema(), linearGraph(t, nodes), WithHooks(hooks))
	require.NoError(t, err)

	_, err = exec.Run(context.Background(), "run-hooks", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"plan", "draft"}, starts)
	assert.Equal(t, []string{"plan", "draft"}, ends)
	require.NotNil(t, finished)
	assert.Equal(t, domain.StatusCompleted, finished.Status)
}

func TestNewRejectsMisdeclaredWriteSet(t *testing.T) {
	nodes := []domain.Node{{ID: "a", Writes: []string{"nope"}, Func: func(ctx context.Context, s domain.Snapshot) (domain.Update, error) {
		return domain.Update{}, nil
	}}}
	g, err := domain.NewGraph("a", nodes, nil)
	require.NoError(t, err)

	_, err = New(testSchema(), g)
	require.Error(t, err)
	var ufe *domain.UnknownFieldError
	assert.ErrorAs(t, err, &ufe)
}

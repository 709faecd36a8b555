package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weftlabs/weft/pkg/domain"
)

func evalCondition(t *testing.T, expr string, state domain.Snapshot) bool {
	t.Helper()
	pred, err := CompileCondition(expr)
	require.NoError(t, err)
	return pred(state)
}

func TestCompileConditionComparisons(t *testing.T) {
	state := domain.Snapshot{"score": 72, "severity": "high", "approved": true}

	assert.True(t, evalCondition(t, "score >= 70", state))
	assert.False(t, evalCondition(t, "score < 50", state))
	assert.True(t, evalCondition(t, "score != 100", state))
	assert.True(t, evalCondition(t, "score == 72", state))

	assert.True(t, evalCondition(t, `severity == "high"`, state))
	assert.True(t, evalCondition(t, "severity == high", state), "bare word literal")
	assert.False(t, evalCondition(t, "severity == 'low'", state))

	assert.True(t, evalCondition(t, "approved == true", state))
	assert.False(t, evalCondition(t, "approved == false", state))
}

func TestCompileConditionOrderedNonNumericIsFalse(t *testing.T) {
	state := domain.Snapshot{"severity": "high"}
	assert.False(t, evalCondition(t, "severity > 3", state))
	assert.False(t, evalCondition(t, "missing > 3", state))
}

func TestCompileConditionDefined(t *testing.T) {
	assert.True(t, evalCondition(t, "defined(plan)", domain.Snapshot{"plan": "x"}))
	assert.False(t, evalCondition(t, "defined(plan)", domain.Snapshot{}))
	assert.False(t, evalCondition(t, "defined(plan)", domain.Snapshot{"plan": nil}))
}

func TestCompileConditionEmpty(t *testing.T) {
	assert.True(t, evalCondition(t, "empty(findings)", domain.Snapshot{}))
	assert.True(t, evalCondition(t, "empty(findings)", domain.Snapshot{"findings": []any{}}))
	assert.True(t, evalCondition(t, "empty(findings)", domain.Snapshot{"findings": ""}))
	assert.False(t, evalCondition(t, "empty(findings)", domain.Snapshot{"findings": []any{"f"}}))
	assert.False(t, evalCondition(t, "empty(findings)", domain.Snapshot{"findings": 7}))
}

func TestCompileConditionRejectsMalformed(t *testing.T) {
	for _, expr := range []string{"", "   ", "score", "== 5", "score =="} {
		_, err := CompileCondition(expr)
		assert.Error(t, err, "expr %q", expr)
	}
}

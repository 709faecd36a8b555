package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/weftlabs/weft/pkg/domain"
)

func TestRecorderCollectsInOrder(t *testing.T) {
	r := NewRecorder()
	r.Publish(domain.ProgressEvent{RunID: "a", Step: 1, Node: "plan"})
	r.Publish(domain.ProgressEvent{RunID: "b", Step: 1, Node: "other"})
	r.Publish(domain.ProgressEvent{RunID: "a", Step: 2, Node: "draft"})

	all := r.Events()
	assert.Len(t, all, 3)
	assert.Equal(t, "plan", all[0].Node)

	forA := r.ForRun("a")
	assert.Len(t, forA, 2)
	assert.Equal(t, 1, forA[0].Step)
	assert.Equal(t, 2, forA[1].Step)

	assert.Empty(t, r.ForRun("missing"))

	r.Reset()
	assert.Empty(t, r.Events())
}

package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weftlabs/weft/pkg/domain"
)

// RunRunStoreContract runs a suite of tests to verify that a RunStore
// implementation adheres to the defined interface contract.
func RunRunStoreContract(t *testing.T, store RunStore) {
	ctx := context.Background()
	runID := "contract-test-run-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		result := &domain.Result{
			RunID:  runID,
			Status: domain.StatusCompleted,
			State:  domain.Snapshot{"plan": "outline", "findings": []any{"f1"}},
			Steps:  3,
		}

		err := store.Save(ctx, result)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, runID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, result.RunID, loaded.RunID)
		assert.Equal(t, domain.StatusCompleted, loaded.Status)
		assert.Equal(t, "outline", loaded.State.String("plan"))
		// JSON persistence may widen numeric types; only require presence.
		assert.Equal(t, 3, loaded.Steps)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+runID)
		assert.ErrorIs(t, err, domain.ErrRunNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, &domain.Result{RunID: runID, Status: domain.StatusCompleted})
		require.NoError(t, err)

		err = store.Delete(ctx, runID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, runID)
		assert.ErrorIs(t, err, domain.ErrRunNotFound, "Load after Delete should return ErrRunNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := runID + "-1"
		id2 := runID + "-2"
		_ = store.Save(ctx, &domain.Result{RunID: id1, Status: domain.StatusCompleted})
		_ = store.Save(ctx, &domain.Result{RunID: id2, Status: domain.StatusFailed})

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		runs, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, runs, id1)
		assert.Contains(t, runs, id2)
	})
}

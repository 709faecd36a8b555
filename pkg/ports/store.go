package ports

import (
	"context"

	"github.com/weftlabs/weft/pkg/domain"
)

// RunStore persists finished run results so callers (HTTP API, CLI) can
// fetch them later. The engine itself owns no long-lived storage; a store is
// optional downstream persistence.
type RunStore interface {
	// Save persists a result keyed by its RunID.
	Save(ctx context.Context, result *domain.Result) error

	// Load retrieves a result by run ID.
	// Returns domain.ErrRunNotFound if the run does not exist.
	Load(ctx context.Context, runID string) (*domain.Result, error)

	// Delete removes a result.
	Delete(ctx context.Context, runID string) error

	// List returns the stored run IDs.
	List(ctx context.Context) ([]string, error)
}

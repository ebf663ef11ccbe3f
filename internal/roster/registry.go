package roster

import (
	"context"

	"github.com/google/uuid"
)

// Registry is the person store the reconciler reads and conditionally
// writes. The engine never deletes records and never overwrites a populated
// field; Update receives only the fields the reconciler decided to fill.
type Registry interface {
	// FindByEmail looks up a person by lower-cased email. Returns
	// (nil, nil) when no record matches.
	FindByEmail(ctx context.Context, email string) (*Person, error)

	// Create persists a new person and returns the stored record.
	Create(ctx context.Context, p Person) (*Person, error)

	// Update applies a partial update and returns the stored record.
	Update(ctx context.Context, id uuid.UUID, upd PersonUpdate) (*Person, error)
}

// CacheInvalidator drops cached roster views after an import completes, so
// screens that display the registry pick up the new records.
type CacheInvalidator interface {
	InvalidateRoster(ctx context.Context) error
}

// RunStore records import run summaries for the history view.
type RunStore interface {
	RecordRun(ctx context.Context, run ImportRun) error
	ListRuns(ctx context.Context, limit int) ([]ImportRun, error)
}

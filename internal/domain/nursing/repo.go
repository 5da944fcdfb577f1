package nursing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/clinicore/internal/domain/workflow"
)

// Repository is the persistence boundary for nurse assignments.
type Repository interface {
	Create(ctx context.Context, a *Assignment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Assignment, error)
	ListByVisit(ctx context.Context, visitID uuid.UUID) ([]*Assignment, error)
	// StatusesByVisit returns just the status column for a visit's
	// assignments, for workflow snapshots.
	StatusesByVisit(ctx context.Context, visitID uuid.UUID) ([]workflow.AssignmentStatus, error)
	// Complete flips a pending assignment to completed, recording notes
	// and the completion time in the same statement. It returns
	// ConcurrentModificationError when the assignment is no longer
	// pending.
	Complete(ctx context.Context, id uuid.UUID, notes string, at time.Time) error
	// Cancel marks a pending assignment cancelled.
	Cancel(ctx context.Context, id uuid.UUID) error
}

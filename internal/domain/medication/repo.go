package medication

import (
	"context"

	"github.com/google/uuid"

	"github.com/clinicore/clinicore/internal/domain/workflow"
)

// Repository is the persistence boundary for medication orders.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	ListByVisit(ctx context.Context, visitID uuid.UUID) ([]*Order, error)
	// CountByVisit reports whether the visit has any prescriptions, for
	// the completion branch into pharmacy.
	CountByVisit(ctx context.Context, visitID uuid.UUID) (int, error)
}

// BatchSource exposes the diagnostic batches the gate evaluates.
// Implemented by the order repository.
type BatchSource interface {
	BatchInfos(ctx context.Context, visitID uuid.UUID) ([]workflow.BatchInfo, error)
}

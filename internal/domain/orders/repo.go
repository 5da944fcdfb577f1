package orders

import (
	"context"

	"github.com/google/uuid"

	"github.com/clinicore/clinicore/internal/domain/visit"
	"github.com/clinicore/clinicore/internal/domain/workflow"
)

// Repository is the persistence port for batch orders and order lines.
type Repository interface {
	CreateBatch(ctx context.Context, b *BatchOrder) error
	GetBatch(ctx context.Context, id uuid.UUID) (*BatchOrder, error)
	// GetBatchByLine loads the whole batch owning the given line, so a
	// line update and its aggregate recompute read the same row set.
	GetBatchByLine(ctx context.Context, lineID uuid.UUID) (*BatchOrder, error)
	ListByVisit(ctx context.Context, visitID uuid.UUID) ([]*BatchOrder, error)
	// UpdateLine writes a line's status/result only while the stored row
	// is still non-terminal; a lost race returns ConcurrentModificationError.
	UpdateLine(ctx context.Context, l *OrderLine) error
	// BatchInfos computes the aggregate of every batch on the visit.
	BatchInfos(ctx context.Context, visitID uuid.UUID) ([]workflow.BatchInfo, error)
}

// VisitWorkflow is the slice of the visit service the order flow drives.
type VisitWorkflow interface {
	EnsureOrderable(ctx context.Context, visitID uuid.UUID) (*visit.Visit, error)
	RecomputeAfterOrders(ctx context.Context, visitID uuid.UUID) (*visit.Visit, error)
}

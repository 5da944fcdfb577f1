package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicore/clinicore/internal/domain/workflow"
	"github.com/clinicore/clinicore/internal/platform/db"
)

// Service mutates batch orders and order lines. Each mutation, the
// aggregate recompute and the resulting visit transition run as one
// serializable transaction.
type Service struct {
	repo   Repository
	visits VisitWorkflow
	pool   *pgxpool.Pool
}

func NewService(repo Repository, visits VisitWorkflow, pool *pgxpool.Pool) *Service {
	return &Service{repo: repo, visits: visits, pool: pool}
}

func (s *Service) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.pool == nil {
		return fn(ctx)
	}
	return db.InTx(ctx, s.pool, fn)
}

// LineInput is one requested service in a new batch.
type LineInput struct {
	ServiceID    uuid.UUID `json:"service_id"`
	Instructions *string   `json:"instructions,omitempty"`
}

// CreateBatch issues a new batch order for a visit and raises the
// corresponding pending flag on it.
func (s *Service) CreateBatch(ctx context.Context, visitID, orderedByID uuid.UUID, typ workflow.OrderType, lines []LineInput, instructions *string) (*BatchOrder, error) {
	if !workflow.ValidOrderType(typ) {
		return nil, fmt.Errorf("invalid order type %q", typ)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("a batch order needs at least one line")
	}
	for _, l := range lines {
		if l.ServiceID == uuid.Nil {
			return nil, fmt.Errorf("service_id is required on every line")
		}
	}

	var out *BatchOrder
	err := s.inTx(ctx, func(ctx context.Context) error {
		if _, err := s.visits.EnsureOrderable(ctx, visitID); err != nil {
			return err
		}
		b := &BatchOrder{
			VisitID:      visitID,
			OrderedByID:  orderedByID,
			Type:         typ,
			Instructions: instructions,
		}
		for _, in := range lines {
			b.Lines = append(b.Lines, &OrderLine{ServiceID: in.ServiceID, Instructions: in.Instructions})
		}
		if err := s.repo.CreateBatch(ctx, b); err != nil {
			return err
		}
		if _, err := s.visits.RecomputeAfterOrders(ctx, visitID); err != nil {
			return err
		}
		out = b
		return nil
	})
	return out, err
}

// UpdateLineStatus moves one order line along its progression and returns
// the batch with its recomputed aggregate. The line write, the aggregate
// recompute and any visit transition commit together.
func (s *Service) UpdateLineStatus(ctx context.Context, lineID uuid.UUID, newStatus workflow.LineStatus, result *string) (*BatchOrder, error) {
	if !workflow.ValidLineStatus(newStatus) {
		return nil, fmt.Errorf("invalid order line status %q", newStatus)
	}

	var out *BatchOrder
	err := s.inTx(ctx, func(ctx context.Context) error {
		b, err := s.repo.GetBatchByLine(ctx, lineID)
		if err != nil {
			return err
		}
		var line *OrderLine
		for _, l := range b.Lines {
			if l.ID == lineID {
				line = l
				break
			}
		}
		if line == nil {
			return fmt.Errorf("order line %s not in its own batch", lineID)
		}
		if err := workflow.ValidateLineTransition(line.Status, newStatus); err != nil {
			return err
		}
		line.Status = newStatus
		if result != nil {
			line.Result = result
		}
		if newStatus == workflow.LineCompleted {
			now := time.Now()
			line.CompletedAt = &now
		}
		if err := s.repo.UpdateLine(ctx, line); err != nil {
			return err
		}
		if _, err := s.visits.RecomputeAfterOrders(ctx, b.VisitID); err != nil {
			return err
		}
		out = b
		return nil
	})
	return out, err
}

// CancelLine administratively cancels a single non-terminal line.
func (s *Service) CancelLine(ctx context.Context, lineID uuid.UUID) (*BatchOrder, error) {
	return s.UpdateLineStatus(ctx, lineID, workflow.LineCancelled, nil)
}

// GetBatch returns a batch with its lines and computed aggregate.
func (s *Service) GetBatch(ctx context.Context, id uuid.UUID) (*BatchOrder, error) {
	return s.repo.GetBatch(ctx, id)
}

// ListByVisit returns all batches on a visit in creation order.
func (s *Service) ListByVisit(ctx context.Context, visitID uuid.UUID) ([]*BatchOrder, error) {
	return s.repo.ListByVisit(ctx, visitID)
}

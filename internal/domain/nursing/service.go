package nursing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicore/clinicore/internal/domain/visit"
	"github.com/clinicore/clinicore/internal/domain/workflow"
	"github.com/clinicore/clinicore/internal/platform/db"
)

// VisitWorkflow is the slice of the visit service the nursing flow drives.
type VisitWorkflow interface {
	EnsureOrderable(ctx context.Context, visitID uuid.UUID) (*visit.Visit, error)
	RecomputeAfterOrders(ctx context.Context, visitID uuid.UUID) (*visit.Visit, error)
}

// Service creates and completes nurse assignments. Completing the last
// open assignment on a visit transitions the visit in the same
// transaction as the assignment write.
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

// Assign issues nurse work on a visit and raises its nurse pending flag.
func (s *Service) Assign(ctx context.Context, visitID, serviceID, nurseID, orderedByID uuid.UUID, instructions *string) (*Assignment, error) {
	if serviceID == uuid.Nil {
		return nil, fmt.Errorf("service_id is required")
	}
	if nurseID == uuid.Nil {
		return nil, fmt.Errorf("assigned_nurse_id is required")
	}

	var out *Assignment
	err := s.inTx(ctx, func(ctx context.Context) error {
		if _, err := s.visits.EnsureOrderable(ctx, visitID); err != nil {
			return err
		}
		a := &Assignment{
			VisitID:         visitID,
			ServiceID:       serviceID,
			AssignedNurseID: nurseID,
			OrderedByID:     orderedByID,
			Instructions:    instructions,
		}
		if err := s.repo.Create(ctx, a); err != nil {
			return err
		}
		if _, err := s.visits.RecomputeAfterOrders(ctx, visitID); err != nil {
			return err
		}
		out = a
		return nil
	})
	return out, err
}

// Complete records the outcome of an assignment. Only the assigned nurse
// may complete it unless override is set (charge nurse or admin acting
// on their behalf). Notes are mandatory and land atomically with the
// status flip and completion time. The returned visit reflects any
// transition triggered by this being the last open work item.
func (s *Service) Complete(ctx context.Context, assignmentID, actorID uuid.UUID, notes string, override bool) (*Assignment, *visit.Visit, error) {
	if strings.TrimSpace(notes) == "" {
		return nil, nil, fmt.Errorf("completion notes are required")
	}

	var (
		a *Assignment
		v *visit.Visit
	)
	err := s.inTx(ctx, func(ctx context.Context) error {
		var err error
		a, err = s.repo.GetByID(ctx, assignmentID)
		if err != nil {
			return err
		}
		if a.AssignedNurseID != actorID && !override {
			return &workflow.NotAssignedError{ActorID: actorID.String(), AssigneeID: a.AssignedNurseID.String()}
		}
		if a.Status.Terminal() {
			return &workflow.InvalidTransitionError{Entity: "nurse assignment", From: string(a.Status), To: string(workflow.AssignmentCompleted)}
		}
		now := time.Now()
		if err := s.repo.Complete(ctx, a.ID, notes, now); err != nil {
			return err
		}
		a.Status = workflow.AssignmentCompleted
		a.CompletionNotes = &notes
		a.CompletedAt = &now
		v, err = s.visits.RecomputeAfterOrders(ctx, a.VisitID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return a, v, nil
}

// Cancel administratively withdraws a pending assignment.
func (s *Service) Cancel(ctx context.Context, assignmentID uuid.UUID) (*Assignment, error) {
	var a *Assignment
	err := s.inTx(ctx, func(ctx context.Context) error {
		var err error
		a, err = s.repo.GetByID(ctx, assignmentID)
		if err != nil {
			return err
		}
		if a.Status.Terminal() {
			return &workflow.InvalidTransitionError{Entity: "nurse assignment", From: string(a.Status), To: string(workflow.AssignmentCancelled)}
		}
		if err := s.repo.Cancel(ctx, a.ID); err != nil {
			return err
		}
		a.Status = workflow.AssignmentCancelled
		_, err = s.visits.RecomputeAfterOrders(ctx, a.VisitID)
		return err
	})
	return a, err
}

// Get returns one assignment.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Assignment, error) {
	return s.repo.GetByID(ctx, id)
}

// ListByVisit returns a visit's assignments in creation order.
func (s *Service) ListByVisit(ctx context.Context, visitID uuid.UUID) ([]*Assignment, error) {
	return s.repo.ListByVisit(ctx, visitID)
}

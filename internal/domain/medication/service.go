package medication

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicore/clinicore/internal/domain/visit"
	"github.com/clinicore/clinicore/internal/domain/workflow"
	"github.com/clinicore/clinicore/internal/platform/db"
	"github.com/clinicore/clinicore/internal/platform/metrics"
)

// VisitSource is the slice of the visit service prescribing needs.
type VisitSource interface {
	EnsureOrderable(ctx context.Context, visitID uuid.UUID) (*visit.Visit, error)
}

// Service evaluates the medication gate and writes prescriptions. The
// gate endpoint is advisory; Prescribe re-evaluates inside its
// transaction, so a gate that closed between check and write rejects
// the order instead of trusting the stale answer.
type Service struct {
	repo    Repository
	batches BatchSource
	visits  VisitSource
	pool    *pgxpool.Pool
	metrics *metrics.Metrics
}

func NewService(repo Repository, batches BatchSource, visits VisitSource, pool *pgxpool.Pool, m *metrics.Metrics) *Service {
	return &Service{repo: repo, batches: batches, visits: visits, pool: pool, metrics: m}
}

func (s *Service) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.pool == nil {
		return fn(ctx)
	}
	return db.InTx(ctx, s.pool, fn)
}

// CheckGate answers whether prescribing is currently allowed on the
// visit. It always returns a decision, never a business error.
func (s *Service) CheckGate(ctx context.Context, visitID uuid.UUID) (workflow.GateDecision, error) {
	batches, err := s.batches.BatchInfos(ctx, visitID)
	if err != nil {
		return workflow.GateDecision{}, err
	}
	return workflow.EvaluateGate(batches), nil
}

// OrderInput is one requested prescription.
type OrderInput struct {
	DrugName  string  `json:"drug_name"`
	Dosage    string  `json:"dosage"`
	Frequency string  `json:"frequency"`
	Duration  *string `json:"duration,omitempty"`
	Notes     *string `json:"notes,omitempty"`
}

func (in OrderInput) validate() error {
	if strings.TrimSpace(in.DrugName) == "" {
		return fmt.Errorf("drug_name is required")
	}
	if strings.TrimSpace(in.Dosage) == "" {
		return fmt.Errorf("dosage is required")
	}
	if strings.TrimSpace(in.Frequency) == "" {
		return fmt.Errorf("frequency is required")
	}
	return nil
}

// Prescribe writes a medication order. The visit state check, the gate
// re-evaluation and the insert commit together, so a diagnostic order
// placed concurrently closes the gate before this order lands.
func (s *Service) Prescribe(ctx context.Context, visitID, prescribedByID uuid.UUID, in OrderInput) (*Order, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var out *Order
	err := s.inTx(ctx, func(ctx context.Context) error {
		if _, err := s.visits.EnsureOrderable(ctx, visitID); err != nil {
			return err
		}
		batches, err := s.batches.BatchInfos(ctx, visitID)
		if err != nil {
			return err
		}
		if decision := workflow.EvaluateGate(batches); !decision.Allowed {
			s.recordDenials(batches)
			return &workflow.StaleGateDecisionError{Reason: decision.Reason}
		}
		o := &Order{
			VisitID:        visitID,
			PrescribedByID: prescribedByID,
			DrugName:       in.DrugName,
			Dosage:         in.Dosage,
			Frequency:      in.Frequency,
			Duration:       in.Duration,
			Notes:          in.Notes,
		}
		if err := s.repo.Create(ctx, o); err != nil {
			return err
		}
		out = o
		return nil
	})
	return out, err
}

func (s *Service) recordDenials(batches []workflow.BatchInfo) {
	if s.metrics == nil {
		return
	}
	seen := map[workflow.OrderType]bool{}
	for _, b := range batches {
		if b.Type.Diagnostic() && !b.Status.Resolved() && !seen[b.Type] {
			seen[b.Type] = true
			s.metrics.RecordGateDenial(string(b.Type))
		}
	}
}

// HasPrescriptions reports whether a visit carries any medication
// orders. Completion uses it to route through pharmacy.
func (s *Service) HasPrescriptions(ctx context.Context, visitID uuid.UUID) (bool, error) {
	n, err := s.repo.CountByVisit(ctx, visitID)
	return n > 0, err
}

// Get returns one medication order.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Order, error) {
	return s.repo.GetByID(ctx, id)
}

// ListByVisit returns a visit's prescriptions in creation order.
func (s *Service) ListByVisit(ctx context.Context, visitID uuid.UUID) ([]*Order, error) {
	return s.repo.ListByVisit(ctx, visitID)
}

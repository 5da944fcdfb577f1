package visit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicore/clinicore/internal/domain/workflow"
	"github.com/clinicore/clinicore/internal/platform/db"
	"github.com/clinicore/clinicore/internal/platform/metrics"
)

// Service is the only writer of visit status. Every mutation runs as one
// serializable read-modify-write transaction; the state machine decides,
// the repository applies the result under an optimistic version check.
type Service struct {
	visits        Repository
	snapshots     SnapshotSource
	prescriptions PrescriptionSource
	pool          *pgxpool.Pool
	metrics       *metrics.Metrics
}

func NewService(visits Repository, snapshots SnapshotSource, pool *pgxpool.Pool, m *metrics.Metrics) *Service {
	return &Service{visits: visits, snapshots: snapshots, pool: pool, metrics: m}
}

// SetPrescriptionSource wires the medication store in after construction.
// The medication service itself depends on this service, so the hookup
// cannot happen in NewService.
func (s *Service) SetPrescriptionSource(src PrescriptionSource) {
	s.prescriptions = src
}

func (s *Service) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	var err error
	if s.pool == nil {
		err = fn(ctx)
	} else {
		err = db.InTx(ctx, s.pool, fn)
	}
	var conflict *workflow.ConcurrentModificationError
	if errors.As(err, &conflict) {
		s.metrics.RecordConflict()
	}
	return err
}

func (s *Service) recordTransition(from, to workflow.VisitStatus) {
	if from != to {
		s.metrics.RecordTransition(string(from), string(to))
	}
}

// Intake registers a new encounter; the visit starts waiting for triage.
func (s *Service) Intake(ctx context.Context, patientID uuid.UUID, urgent bool) (*Visit, error) {
	if patientID == uuid.Nil {
		return nil, fmt.Errorf("patient_id is required")
	}
	v := &Visit{PatientID: patientID, Urgent: urgent}
	if err := s.visits.Create(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// VitalsInput is the triage measurement set.
type VitalsInput struct {
	Condition   workflow.Condition `json:"condition"`
	Temperature *float64           `json:"temperature,omitempty"`
	Pulse       *int               `json:"pulse,omitempty"`
	RespRate    *int               `json:"resp_rate,omitempty"`
	SystolicBP  *int               `json:"systolic_bp,omitempty"`
	DiastolicBP *int               `json:"diastolic_bp,omitempty"`
	SpO2        *int               `json:"spo2,omitempty"`
	Notes       *string            `json:"notes,omitempty"`
}

// Triage records the triage vitals and moves the visit on to the doctor
// queue. The vitals insert and the status change commit together.
func (s *Service) Triage(ctx context.Context, visitID, recordedByID uuid.UUID, in VitalsInput) (*Visit, error) {
	if !workflow.ValidCondition(in.Condition) {
		return nil, fmt.Errorf("invalid condition %q", in.Condition)
	}
	var out *Visit
	err := s.inTx(ctx, func(ctx context.Context) error {
		v, err := s.visits.GetByID(ctx, visitID)
		if err != nil {
			return err
		}
		next, err := workflow.Triage(v.Status)
		if err != nil {
			return err
		}
		vs := &VitalsSnapshot{
			VisitID:      v.ID,
			RecordedByID: recordedByID,
			Condition:    in.Condition,
			Temperature:  in.Temperature,
			Pulse:        in.Pulse,
			RespRate:     in.RespRate,
			SystolicBP:   in.SystolicBP,
			DiastolicBP:  in.DiastolicBP,
			SpO2:         in.SpO2,
			Notes:        in.Notes,
		}
		if err := s.visits.AddVitals(ctx, vs); err != nil {
			return err
		}
		prev := v.Status
		v.Status = next
		if in.Condition == workflow.ConditionCritical {
			v.Urgent = true
		}
		if err := s.visits.UpdateState(ctx, v); err != nil {
			return err
		}
		s.recordTransition(prev, v.Status)
		v.LatestVitals = vs
		out = v
		return nil
	})
	return out, err
}

// RecordVitals attaches a fresh snapshot without a status change.
func (s *Service) RecordVitals(ctx context.Context, visitID, recordedByID uuid.UUID, in VitalsInput) (*VitalsSnapshot, error) {
	if !workflow.ValidCondition(in.Condition) {
		return nil, fmt.Errorf("invalid condition %q", in.Condition)
	}
	v, err := s.visits.GetByID(ctx, visitID)
	if err != nil {
		return nil, err
	}
	if v.Status.Terminal() {
		return nil, &workflow.InvalidVisitStateError{Op: "record vitals", Status: v.Status}
	}
	vs := &VitalsSnapshot{
		VisitID:      v.ID,
		RecordedByID: recordedByID,
		Condition:    in.Condition,
		Temperature:  in.Temperature,
		Pulse:        in.Pulse,
		RespRate:     in.RespRate,
		SystolicBP:   in.SystolicBP,
		DiastolicBP:  in.DiastolicBP,
		SpO2:         in.SpO2,
		Notes:        in.Notes,
	}
	if err := s.visits.AddVitals(ctx, vs); err != nil {
		return nil, err
	}
	return vs, nil
}

// Open puts the visit under doctor review and stamps the first doctor
// interaction, which removes it from the new-consultation worklist tier.
func (s *Service) Open(ctx context.Context, visitID uuid.UUID) (*Visit, error) {
	var out *Visit
	err := s.inTx(ctx, func(ctx context.Context) error {
		v, err := s.visits.GetByID(ctx, visitID)
		if err != nil {
			return err
		}
		next, err := workflow.Open(v.Status)
		if err != nil {
			return err
		}
		prev := v.Status
		v.Status = next
		if v.DoctorOpenedAt == nil {
			now := time.Now()
			v.DoctorOpenedAt = &now
		}
		if err := s.visits.UpdateState(ctx, v); err != nil {
			return err
		}
		s.recordTransition(prev, v.Status)
		out = v
		return nil
	})
	return out, err
}

// RecomputeAfterOrders re-derives the visit's base status and pending
// flags from the current order snapshot. It must run inside the caller's
// transaction: order mutation, aggregate recompute and visit transition
// commit as one unit or not at all.
func (s *Service) RecomputeAfterOrders(ctx context.Context, visitID uuid.UUID) (*Visit, error) {
	v, err := s.visits.GetByID(ctx, visitID)
	if err != nil {
		return nil, err
	}
	snap, err := s.snapshots.Snapshot(ctx, visitID)
	if err != nil {
		return nil, err
	}
	next, pending := workflow.Recompute(v.Status, snap)
	if next == v.Status && pending == v.Pending {
		return v, nil
	}
	prev := v.Status
	v.Status = next
	v.Pending = pending
	if err := s.visits.UpdateState(ctx, v); err != nil {
		return nil, err
	}
	s.recordTransition(prev, v.Status)
	return v, nil
}

// EnsureOrderable verifies new work may be attached to the visit.
func (s *Service) EnsureOrderable(ctx context.Context, visitID uuid.UUID) (*Visit, error) {
	v, err := s.visits.GetByID(ctx, visitID)
	if err != nil {
		return nil, err
	}
	if err := workflow.AllowOrdering(v.Status); err != nil {
		return nil, err
	}
	return v, nil
}

// Complete finalizes the visit after diagnosis. It fails while any batch
// order or nurse assignment is non-terminal; a visit with prescriptions
// routes through pharmacy instead of closing outright.
func (s *Service) Complete(ctx context.Context, visitID uuid.UUID, diagnosisSummary string) (*Visit, error) {
	if diagnosisSummary == "" {
		return nil, fmt.Errorf("diagnosis summary is required")
	}
	var out *Visit
	err := s.inTx(ctx, func(ctx context.Context) error {
		v, err := s.visits.GetByID(ctx, visitID)
		if err != nil {
			return err
		}
		snap, err := s.snapshots.Snapshot(ctx, visitID)
		if err != nil {
			return err
		}
		hasPrescriptions := false
		if s.prescriptions != nil {
			hasPrescriptions, err = s.prescriptions.HasPrescriptions(ctx, visitID)
			if err != nil {
				return err
			}
		}
		next, err := workflow.Complete(v.Status, snap, hasPrescriptions)
		if err != nil {
			return err
		}
		prev := v.Status
		v.Status = next
		v.DiagnosisSummary = &diagnosisSummary
		if err := s.visits.UpdateState(ctx, v); err != nil {
			return err
		}
		s.recordTransition(prev, v.Status)
		out = v
		return nil
	})
	return out, err
}

// Dispense records the pharmacy collaborator's dispensation-done event and
// completes the visit.
func (s *Service) Dispense(ctx context.Context, visitID uuid.UUID) (*Visit, error) {
	var out *Visit
	err := s.inTx(ctx, func(ctx context.Context) error {
		v, err := s.visits.GetByID(ctx, visitID)
		if err != nil {
			return err
		}
		next, err := workflow.Dispense(v.Status)
		if err != nil {
			return err
		}
		prev := v.Status
		v.Status = next
		if err := s.visits.UpdateState(ctx, v); err != nil {
			return err
		}
		s.recordTransition(prev, v.Status)
		out = v
		return nil
	})
	return out, err
}

// Cancel administratively cancels the visit from any non-terminal state.
func (s *Service) Cancel(ctx context.Context, visitID uuid.UUID) (*Visit, error) {
	var out *Visit
	err := s.inTx(ctx, func(ctx context.Context) error {
		v, err := s.visits.GetByID(ctx, visitID)
		if err != nil {
			return err
		}
		next, err := workflow.Cancel(v.Status)
		if err != nil {
			return err
		}
		prev := v.Status
		v.Status = next
		v.Pending = 0
		if err := s.visits.UpdateState(ctx, v); err != nil {
			return err
		}
		s.recordTransition(prev, v.Status)
		out = v
		return nil
	})
	return out, err
}

// Get returns the visit with its latest vitals.
func (s *Service) Get(ctx context.Context, visitID uuid.UUID) (*Visit, error) {
	return s.visits.GetByID(ctx, visitID)
}

// List returns visits, newest first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]*Visit, int, error) {
	return s.visits.List(ctx, limit, offset)
}

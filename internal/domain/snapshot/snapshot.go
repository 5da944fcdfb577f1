// Package snapshot assembles the outstanding-work view of a visit from
// the batch-order and nurse-assignment stores.
package snapshot

import (
	"context"

	"github.com/google/uuid"

	"github.com/clinicore/clinicore/internal/domain/workflow"
)

// BatchSource yields the aggregate status of each batch on a visit.
type BatchSource interface {
	BatchInfos(ctx context.Context, visitID uuid.UUID) ([]workflow.BatchInfo, error)
}

// AssignmentSource yields the status of each nurse assignment on a visit.
type AssignmentSource interface {
	StatusesByVisit(ctx context.Context, visitID uuid.UUID) ([]workflow.AssignmentStatus, error)
}

// Source combines both stores behind the visit service's snapshot port.
type Source struct {
	batches     BatchSource
	assignments AssignmentSource
}

func New(batches BatchSource, assignments AssignmentSource) *Source {
	return &Source{batches: batches, assignments: assignments}
}

// Snapshot reads both stores through the caller's connection, so inside a
// transaction it sees exactly the rows the transaction sees.
func (s *Source) Snapshot(ctx context.Context, visitID uuid.UUID) (workflow.OrderSnapshot, error) {
	batches, err := s.batches.BatchInfos(ctx, visitID)
	if err != nil {
		return workflow.OrderSnapshot{}, err
	}
	assignments, err := s.assignments.StatusesByVisit(ctx, visitID)
	if err != nil {
		return workflow.OrderSnapshot{}, err
	}
	return workflow.OrderSnapshot{Batches: batches, Assignments: assignments}, nil
}

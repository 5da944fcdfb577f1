// Package orders owns batch orders and their order lines. A batch order's
// status is always computed from its lines; nothing stores it, so nothing
// can drift from the line data.
package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/clinicore/internal/domain/workflow"
)

// BatchOrder maps to the batch_order table: a group of services a
// clinician ordered together for one visit.
type BatchOrder struct {
	ID           uuid.UUID          `db:"id" json:"id"`
	VisitID      uuid.UUID          `db:"visit_id" json:"visit_id"`
	OrderedByID  uuid.UUID          `db:"ordered_by_id" json:"ordered_by_id"`
	Type         workflow.OrderType `db:"type" json:"type"`
	Instructions *string            `db:"instructions" json:"instructions,omitempty"`
	CreatedAt    time.Time          `db:"created_at" json:"created_at"`

	// Lines in insertion order. Order matters for display only.
	Lines []*OrderLine `db:"-" json:"lines"`
}

// Status computes the batch aggregate from the current lines.
func (b *BatchOrder) Status() workflow.BatchStatus {
	statuses := make([]workflow.LineStatus, len(b.Lines))
	for i, l := range b.Lines {
		statuses[i] = l.Status
	}
	return workflow.AggregateLines(statuses)
}

// Info returns the slice of the batch the state machine and the gate read.
func (b *BatchOrder) Info() workflow.BatchInfo {
	return workflow.BatchInfo{Type: b.Type, Status: b.Status()}
}

// OrderLine maps to the order_line table: one requested service within a
// batch order. Terminal lines are immutable.
type OrderLine struct {
	ID           uuid.UUID           `db:"id" json:"id"`
	BatchOrderID uuid.UUID           `db:"batch_order_id" json:"batch_order_id"`
	ServiceID    uuid.UUID           `db:"service_id" json:"service_id"`
	Status       workflow.LineStatus `db:"status" json:"status"`
	Instructions *string             `db:"instructions" json:"instructions,omitempty"`
	Result       *string             `db:"result" json:"result,omitempty"`
	Position     int                 `db:"position" json:"position"`
	CompletedAt  *time.Time          `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt    time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time           `db:"updated_at" json:"updated_at"`
}

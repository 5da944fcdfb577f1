// Package nursing owns nurse service assignments: bedside work issued by
// a clinician to a specific nurse, completed with notes.
package nursing

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/clinicore/internal/domain/workflow"
)

// Assignment maps to the nurse_assignment table. Completion requires
// notes and a timestamp, written atomically with the status flip.
type Assignment struct {
	ID              uuid.UUID                 `db:"id" json:"id"`
	VisitID         uuid.UUID                 `db:"visit_id" json:"visit_id"`
	ServiceID       uuid.UUID                 `db:"service_id" json:"service_id"`
	AssignedNurseID uuid.UUID                 `db:"assigned_nurse_id" json:"assigned_nurse_id"`
	OrderedByID     uuid.UUID                 `db:"ordered_by_id" json:"ordered_by_id"`
	Status          workflow.AssignmentStatus `db:"status" json:"status"`
	Instructions    *string                   `db:"instructions" json:"instructions,omitempty"`
	CompletionNotes *string                   `db:"completion_notes" json:"completion_notes,omitempty"`
	CompletedAt     *time.Time                `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt       time.Time                 `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time                 `db:"updated_at" json:"updated_at"`
}

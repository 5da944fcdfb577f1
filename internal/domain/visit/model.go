// Package visit owns the Visit aggregate and is the only writer of its
// status. All other packages request transitions through the visit
// service; none of them set status directly.
package visit

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/clinicore/internal/domain/workflow"
)

// Visit maps to the visit table: one clinical encounter, tracked
// end-to-end by status. The stored status is the base lifecycle state;
// concurrent lab/radiology/nurse work lives in the Pending flags and only
// surfaces in the derived display status.
type Visit struct {
	ID               uuid.UUID                `db:"id" json:"id"`
	PatientID        uuid.UUID                `db:"patient_id" json:"patient_id"`
	Status           workflow.VisitStatus     `db:"status" json:"status"`
	Pending          workflow.PendingReasons  `db:"pending_reasons" json:"-"`
	Urgent           bool                     `db:"urgent" json:"urgent"`
	DiagnosisSummary *string                  `db:"diagnosis_summary" json:"diagnosis_summary,omitempty"`
	DoctorOpenedAt   *time.Time               `db:"doctor_opened_at" json:"doctor_opened_at,omitempty"`
	VersionID        int                      `db:"version_id" json:"version_id"`
	CreatedAt        time.Time                `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time                `db:"updated_at" json:"updated_at"`

	// LatestVitals is the most recent snapshot, loaded with the visit.
	LatestVitals *VitalsSnapshot `db:"-" json:"latest_vitals,omitempty"`
}

// GetVersionID returns the current version.
func (v *Visit) GetVersionID() int { return v.VersionID }

// SetVersionID sets the current version.
func (v *Visit) SetVersionID(ver int) { v.VersionID = ver }

// DisplayStatus derives the status shown to staff from the base status
// and the pending flags.
func (v *Visit) DisplayStatus() workflow.VisitStatus {
	return workflow.DisplayStatus(v.Status, v.Pending)
}

// PendingReasonNames lists the open pending flags for API payloads.
func (v *Visit) PendingReasonNames() []string {
	var names []string
	if v.Pending.Has(workflow.PendingNurse) {
		names = append(names, "nurse")
	}
	if v.Pending.Has(workflow.PendingLab) {
		names = append(names, "lab")
	}
	if v.Pending.Has(workflow.PendingRadiology) {
		names = append(names, "radiology")
	}
	return names
}

// VitalsSnapshot maps to the vitals_snapshot table. Condition is the
// discrete severity tag the worklist tiers on.
type VitalsSnapshot struct {
	ID           uuid.UUID          `db:"id" json:"id"`
	VisitID      uuid.UUID          `db:"visit_id" json:"visit_id"`
	RecordedByID uuid.UUID          `db:"recorded_by_id" json:"recorded_by_id"`
	Condition    workflow.Condition `db:"condition" json:"condition"`
	Temperature  *float64           `db:"temperature" json:"temperature,omitempty"`
	Pulse        *int               `db:"pulse" json:"pulse,omitempty"`
	RespRate     *int               `db:"resp_rate" json:"resp_rate,omitempty"`
	SystolicBP   *int               `db:"systolic_bp" json:"systolic_bp,omitempty"`
	DiastolicBP  *int               `db:"diastolic_bp" json:"diastolic_bp,omitempty"`
	SpO2         *int               `db:"spo2" json:"spo2,omitempty"`
	Notes        *string            `db:"notes" json:"notes,omitempty"`
	RecordedAt   time.Time          `db:"recorded_at" json:"recorded_at"`
}

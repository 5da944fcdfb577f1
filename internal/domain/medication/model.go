// Package medication guards prescription writes behind the diagnostic
// gate: no medication order lands while lab or radiology work on the
// visit is unresolved.
package medication

import (
	"time"

	"github.com/google/uuid"
)

// Order maps to the medication_order table. Orders are immutable once
// written; pharmacy state lives on the visit.
type Order struct {
	ID             uuid.UUID `db:"id" json:"id"`
	VisitID        uuid.UUID `db:"visit_id" json:"visit_id"`
	PrescribedByID uuid.UUID `db:"prescribed_by_id" json:"prescribed_by_id"`
	DrugName       string    `db:"drug_name" json:"drug_name"`
	Dosage         string    `db:"dosage" json:"dosage"`
	Frequency      string    `db:"frequency" json:"frequency"`
	Duration       *string   `db:"duration" json:"duration,omitempty"`
	Notes          *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

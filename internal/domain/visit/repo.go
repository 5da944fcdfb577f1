package visit

import (
	"context"

	"github.com/google/uuid"

	"github.com/clinicore/clinicore/internal/domain/workflow"
)

// Repository is the persistence port for visits.
type Repository interface {
	Create(ctx context.Context, v *Visit) error
	GetByID(ctx context.Context, id uuid.UUID) (*Visit, error)
	List(ctx context.Context, limit, offset int) ([]*Visit, int, error)

	// UpdateState writes the mutable lifecycle fields guarded by the
	// visit's version: status, pending flags, diagnosis, doctor-opened
	// marker. The write applies only if the stored version still matches
	// v.VersionID; otherwise it returns ConcurrentModificationError. On
	// success v.VersionID is advanced.
	UpdateState(ctx context.Context, v *Visit) error

	AddVitals(ctx context.Context, vs *VitalsSnapshot) error
	LatestVitals(ctx context.Context, visitID uuid.UUID) (*VitalsSnapshot, error)
}

// SnapshotSource assembles the outstanding-work snapshot for a visit from
// whatever stores hold its batch orders and nurse assignments. It must be
// queried inside the same transaction as the state write that consumes it.
type SnapshotSource interface {
	Snapshot(ctx context.Context, visitID uuid.UUID) (workflow.OrderSnapshot, error)
}

// PrescriptionSource reports whether a visit carries medication orders.
// Completion reads it in-transaction to decide whether the visit routes
// through pharmacy.
type PrescriptionSource interface {
	HasPrescriptions(ctx context.Context, visitID uuid.UUID) (bool, error)
}

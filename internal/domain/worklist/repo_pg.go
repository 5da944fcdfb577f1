package worklist

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicore/clinicore/internal/domain/workflow"
	"github.com/clinicore/clinicore/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

// NewRepoPG creates the PostgreSQL worklist repository.
func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

func (r *repoPG) Candidates(ctx context.Context) ([]workflow.QueueEntry, error) {
	// One row per candidate visit with its latest recorded condition.
	// Pending department work keeps a visit out of the queue unless the
	// condition is critical.
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT v.id, v.patient_id, v.status, v.pending_reasons, v.created_at,
			v.doctor_opened_at IS NOT NULL,
			COALESCE(lv.condition, '')
		FROM visit v
		LEFT JOIN LATERAL (
			SELECT condition FROM vitals_snapshot
			WHERE visit_id = v.id
			ORDER BY recorded_at DESC LIMIT 1
		) lv ON true
		WHERE v.status NOT IN ($1, $2)
		  AND (
			(v.pending_reasons = 0 AND v.status IN ($3, $4, $5))
			OR lv.condition = $6
		  )
		ORDER BY v.created_at`,
		workflow.VisitCompleted, workflow.VisitCancelled,
		workflow.VisitWaitingForDoctor, workflow.VisitAwaitingResults, workflow.VisitNurseCompleted,
		workflow.ConditionCritical)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []workflow.QueueEntry
	for rows.Next() {
		var (
			e       workflow.QueueEntry
			base    workflow.VisitStatus
			pending int16
		)
		if err := rows.Scan(&e.VisitID, &e.PatientID, &base, &pending,
			&e.CreatedAt, &e.HasDoctorInteraction, &e.Condition); err != nil {
			return nil, err
		}
		e.DisplayStatus = workflow.DisplayStatus(base, workflow.PendingReasons(pending))
		out = append(out, e)
	}
	return out, rows.Err()
}

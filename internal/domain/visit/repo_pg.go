package visit

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicore/clinicore/internal/domain/workflow"
	"github.com/clinicore/clinicore/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

// NewRepoPG creates the PostgreSQL visit repository.
func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const visitCols = `id, patient_id, status, pending_reasons, urgent,
	diagnosis_summary, doctor_opened_at, version_id, created_at, updated_at`

func scanVisit(row pgx.Row) (*Visit, error) {
	var v Visit
	var pending int16
	err := row.Scan(&v.ID, &v.PatientID, &v.Status, &pending, &v.Urgent,
		&v.DiagnosisSummary, &v.DoctorOpenedAt, &v.VersionID, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	v.Pending = workflow.PendingReasons(pending)
	return &v, nil
}

func (r *repoPG) Create(ctx context.Context, v *Visit) error {
	v.ID = uuid.New()
	v.Status = workflow.VisitWaitingForTriage
	v.VersionID = 1
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO visit (id, patient_id, status, pending_reasons, urgent, version_id)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		v.ID, v.PatientID, v.Status, int16(v.Pending), v.Urgent, v.VersionID)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Visit, error) {
	v, err := scanVisit(r.conn(ctx).QueryRow(ctx, `SELECT `+visitCols+` FROM visit WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	vs, err := r.LatestVitals(ctx, id)
	if err == nil {
		v.LatestVitals = vs
	} else if err != pgx.ErrNoRows {
		return nil, err
	}
	return v, nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Visit, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM visit`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+visitCols+` FROM visit ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Visit
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, v)
	}
	return items, total, rows.Err()
}

func (r *repoPG) UpdateState(ctx context.Context, v *Visit) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE visit SET status = $2, pending_reasons = $3, diagnosis_summary = $4,
			doctor_opened_at = $5, urgent = $6, version_id = version_id + 1, updated_at = NOW()
		WHERE id = $1 AND version_id = $7`,
		v.ID, v.Status, int16(v.Pending), v.DiagnosisSummary,
		v.DoctorOpenedAt, v.Urgent, v.VersionID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &workflow.ConcurrentModificationError{Entity: "visit", ID: v.ID.String()}
	}
	v.VersionID++
	return nil
}

func (r *repoPG) AddVitals(ctx context.Context, vs *VitalsSnapshot) error {
	vs.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO vitals_snapshot (id, visit_id, recorded_by_id, condition,
			temperature, pulse, resp_rate, systolic_bp, diastolic_bp, spo2, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		vs.ID, vs.VisitID, vs.RecordedByID, vs.Condition,
		vs.Temperature, vs.Pulse, vs.RespRate, vs.SystolicBP, vs.DiastolicBP, vs.SpO2, vs.Notes)
	return err
}

func (r *repoPG) LatestVitals(ctx context.Context, visitID uuid.UUID) (*VitalsSnapshot, error) {
	var vs VitalsSnapshot
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, visit_id, recorded_by_id, condition, temperature, pulse,
			resp_rate, systolic_bp, diastolic_bp, spo2, notes, recorded_at
		FROM vitals_snapshot WHERE visit_id = $1
		ORDER BY recorded_at DESC LIMIT 1`, visitID).
		Scan(&vs.ID, &vs.VisitID, &vs.RecordedByID, &vs.Condition, &vs.Temperature, &vs.Pulse,
			&vs.RespRate, &vs.SystolicBP, &vs.DiastolicBP, &vs.SpO2, &vs.Notes, &vs.RecordedAt)
	if err != nil {
		return nil, err
	}
	return &vs, nil
}

package nursing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicore/clinicore/internal/domain/workflow"
	"github.com/clinicore/clinicore/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

// NewRepoPG creates the PostgreSQL nurse-assignment repository.
func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const assignmentCols = `id, visit_id, service_id, assigned_nurse_id, ordered_by_id, status,
	instructions, completion_notes, completed_at, created_at, updated_at`

func scanAssignment(row pgx.Row) (*Assignment, error) {
	var a Assignment
	err := row.Scan(&a.ID, &a.VisitID, &a.ServiceID, &a.AssignedNurseID, &a.OrderedByID,
		&a.Status, &a.Instructions, &a.CompletionNotes, &a.CompletedAt, &a.CreatedAt, &a.UpdatedAt)
	return &a, err
}

func (r *repoPG) Create(ctx context.Context, a *Assignment) error {
	a.ID = uuid.New()
	a.Status = workflow.AssignmentPending
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO nurse_assignment (id, visit_id, service_id, assigned_nurse_id, ordered_by_id, status, instructions)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.VisitID, a.ServiceID, a.AssignedNurseID, a.OrderedByID, a.Status, a.Instructions)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Assignment, error) {
	row := r.conn(ctx).QueryRow(ctx,
		`SELECT `+assignmentCols+` FROM nurse_assignment WHERE id = $1`, id)
	return scanAssignment(row)
}

func (r *repoPG) ListByVisit(ctx context.Context, visitID uuid.UUID) ([]*Assignment, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+assignmentCols+` FROM nurse_assignment WHERE visit_id = $1 ORDER BY created_at`, visitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *repoPG) StatusesByVisit(ctx context.Context, visitID uuid.UUID) ([]workflow.AssignmentStatus, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT status FROM nurse_assignment WHERE visit_id = $1`, visitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []workflow.AssignmentStatus
	for rows.Next() {
		var s workflow.AssignmentStatus
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *repoPG) Complete(ctx context.Context, id uuid.UUID, notes string, at time.Time) error {
	// The status guard makes completion single-shot: a concurrent
	// complete or cancel wins and this statement matches zero rows.
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE nurse_assignment
		SET status = $2, completion_notes = $3, completed_at = $4, updated_at = now()
		WHERE id = $1 AND status = $5`,
		id, workflow.AssignmentCompleted, notes, at, workflow.AssignmentPending)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &workflow.ConcurrentModificationError{Entity: "nurse_assignment", ID: id.String()}
	}
	return nil
}

func (r *repoPG) Cancel(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE nurse_assignment
		SET status = $2, updated_at = now()
		WHERE id = $1 AND status = $3`,
		id, workflow.AssignmentCancelled, workflow.AssignmentPending)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &workflow.ConcurrentModificationError{Entity: "nurse_assignment", ID: id.String()}
	}
	return nil
}

package medication

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicore/clinicore/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

// NewRepoPG creates the PostgreSQL medication-order repository.
func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const orderCols = `id, visit_id, prescribed_by_id, drug_name, dosage, frequency, duration, notes, created_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.VisitID, &o.PrescribedByID, &o.DrugName, &o.Dosage,
		&o.Frequency, &o.Duration, &o.Notes, &o.CreatedAt)
	return &o, err
}

func (r *repoPG) Create(ctx context.Context, o *Order) error {
	o.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO medication_order (id, visit_id, prescribed_by_id, drug_name, dosage, frequency, duration, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		o.ID, o.VisitID, o.PrescribedByID, o.DrugName, o.Dosage, o.Frequency, o.Duration, o.Notes)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	row := r.conn(ctx).QueryRow(ctx,
		`SELECT `+orderCols+` FROM medication_order WHERE id = $1`, id)
	return scanOrder(row)
}

func (r *repoPG) ListByVisit(ctx context.Context, visitID uuid.UUID) ([]*Order, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+orderCols+` FROM medication_order WHERE visit_id = $1 ORDER BY created_at`, visitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *repoPG) CountByVisit(ctx context.Context, visitID uuid.UUID) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT count(*) FROM medication_order WHERE visit_id = $1`, visitID).Scan(&n)
	return n, err
}

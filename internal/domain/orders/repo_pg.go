package orders

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicore/clinicore/internal/domain/workflow"
	"github.com/clinicore/clinicore/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

// NewRepoPG creates the PostgreSQL batch-order repository.
func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const batchCols = `id, visit_id, ordered_by_id, type, instructions, created_at`
const lineCols = `id, batch_order_id, service_id, status, instructions, result, position, completed_at, created_at, updated_at`

func scanBatch(row pgx.Row) (*BatchOrder, error) {
	var b BatchOrder
	err := row.Scan(&b.ID, &b.VisitID, &b.OrderedByID, &b.Type, &b.Instructions, &b.CreatedAt)
	return &b, err
}

func scanLine(row pgx.Row) (*OrderLine, error) {
	var l OrderLine
	err := row.Scan(&l.ID, &l.BatchOrderID, &l.ServiceID, &l.Status, &l.Instructions,
		&l.Result, &l.Position, &l.CompletedAt, &l.CreatedAt, &l.UpdatedAt)
	return &l, err
}

func (r *repoPG) CreateBatch(ctx context.Context, b *BatchOrder) error {
	b.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO batch_order (id, visit_id, ordered_by_id, type, instructions)
		VALUES ($1, $2, $3, $4, $5)`,
		b.ID, b.VisitID, b.OrderedByID, b.Type, b.Instructions)
	if err != nil {
		return err
	}
	for i, l := range b.Lines {
		l.ID = uuid.New()
		l.BatchOrderID = b.ID
		l.Status = workflow.LinePending
		l.Position = i
		_, err := r.conn(ctx).Exec(ctx, `
			INSERT INTO order_line (id, batch_order_id, service_id, status, instructions, position)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			l.ID, l.BatchOrderID, l.ServiceID, l.Status, l.Instructions, l.Position)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *repoPG) loadLines(ctx context.Context, batchID uuid.UUID) ([]*OrderLine, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+lineCols+` FROM order_line WHERE batch_order_id = $1 ORDER BY position`, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var lines []*OrderLine
	for rows.Next() {
		l, err := scanLine(rows)
		if err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *repoPG) GetBatch(ctx context.Context, id uuid.UUID) (*BatchOrder, error) {
	b, err := scanBatch(r.conn(ctx).QueryRow(ctx, `SELECT `+batchCols+` FROM batch_order WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	b.Lines, err = r.loadLines(ctx, b.ID)
	return b, err
}

func (r *repoPG) GetBatchByLine(ctx context.Context, lineID uuid.UUID) (*BatchOrder, error) {
	b, err := scanBatch(r.conn(ctx).QueryRow(ctx, `
		SELECT `+batchCols+` FROM batch_order
		WHERE id = (SELECT batch_order_id FROM order_line WHERE id = $1)`, lineID))
	if err != nil {
		return nil, err
	}
	b.Lines, err = r.loadLines(ctx, b.ID)
	return b, err
}

func (r *repoPG) ListByVisit(ctx context.Context, visitID uuid.UUID) ([]*BatchOrder, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+batchCols+` FROM batch_order WHERE visit_id = $1 ORDER BY created_at`, visitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var batches []*BatchOrder
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, b := range batches {
		if b.Lines, err = r.loadLines(ctx, b.ID); err != nil {
			return nil, err
		}
	}
	return batches, nil
}

func (r *repoPG) UpdateLine(ctx context.Context, l *OrderLine) error {
	// Guarded on the previous status: terminal rows are immutable and a
	// racing writer loses here rather than overwriting.
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE order_line SET status = $2, result = $3, completed_at = $4, updated_at = NOW()
		WHERE id = $1 AND status NOT IN ('completed', 'cancelled')`,
		l.ID, l.Status, l.Result, l.CompletedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &workflow.ConcurrentModificationError{Entity: "order line", ID: l.ID.String()}
	}
	return nil
}

func (r *repoPG) BatchInfos(ctx context.Context, visitID uuid.UUID) ([]workflow.BatchInfo, error) {
	batches, err := r.ListByVisit(ctx, visitID)
	if err != nil {
		return nil, err
	}
	infos := make([]workflow.BatchInfo, len(batches))
	for i, b := range batches {
		infos[i] = b.Info()
	}
	return infos, nil
}

package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pharmd/pharmd/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.QuerierFor(ctx, r.pool)
}

const cols = `id, name, stock_quantity, unit_price, description, created_at, updated_at`

func scanMedication(row pgx.Row) (*Medication, error) {
	var m Medication
	err := row.Scan(&m.ID, &m.Name, &m.StockQuantity, &m.UnitPrice, &m.Description, &m.CreatedAt, &m.UpdatedAt)
	return &m, err
}

func (r *repoPG) Create(ctx context.Context, m *Medication) error {
	m.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO medications (id, name, stock_quantity, unit_price, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`,
		m.ID, m.Name, m.StockQuantity, m.UnitPrice, m.Description).Scan(&m.CreatedAt, &m.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Medication, error) {
	m, err := scanMedication(r.conn(ctx).QueryRow(ctx, `SELECT `+cols+` FROM medications WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return m, err
}

func (r *repoPG) GetByName(ctx context.Context, name string) (*Medication, error) {
	m, err := scanMedication(r.conn(ctx).QueryRow(ctx, `SELECT `+cols+` FROM medications WHERE name = $1`, name))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return m, err
}

func (r *repoPG) Update(ctx context.Context, m *Medication) error {
	return r.conn(ctx).QueryRow(ctx, `
		UPDATE medications SET name = $2, stock_quantity = $3, unit_price = $4, description = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		m.ID, m.Name, m.StockQuantity, m.UnitPrice, m.Description).Scan(&m.UpdatedAt)
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM medications WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, search string, limit, offset int) ([]*Medication, int, error) {
	where := `WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')`

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM medications `+where, search).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+cols+` FROM medications `+where+` ORDER BY name ASC LIMIT $2 OFFSET $3`,
		search, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collect(rows, total)
}

func (r *repoPG) ListLowStock(ctx context.Context, threshold, limit, offset int) ([]*Medication, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM medications WHERE stock_quantity < $1`, threshold).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+cols+` FROM medications WHERE stock_quantity < $1 ORDER BY stock_quantity ASC LIMIT $2 OFFSET $3`,
		threshold, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collect(rows, total)
}

func (r *repoPG) SetStock(ctx context.Context, id uuid.UUID, quantity int) (*Medication, error) {
	m, err := scanMedication(r.conn(ctx).QueryRow(ctx, `
		UPDATE medications SET stock_quantity = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+cols, id, quantity))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return m, err
}

func (r *repoPG) AddStock(ctx context.Context, id uuid.UUID, delta int) (*Medication, error) {
	m, err := scanMedication(r.conn(ctx).QueryRow(ctx, `
		UPDATE medications SET stock_quantity = stock_quantity + $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+cols, id, delta))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return m, err
}

// DecrementStock is a compare-and-set: the WHERE clause re-checks remaining
// stock so concurrent fulfillments cannot drive it negative.
func (r *repoPG) DecrementStock(ctx context.Context, id uuid.UUID, quantity int) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE medications SET stock_quantity = stock_quantity - $2, updated_at = NOW()
		WHERE id = $1 AND stock_quantity >= $2`, id, quantity)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func collect(rows pgx.Rows, total int) ([]*Medication, int, error) {
	var items []*Medication
	for rows.Next() {
		m, err := scanMedication(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, m)
	}
	return items, total, rows.Err()
}

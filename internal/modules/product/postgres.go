package product

import (
	"context"
	"database/sql"

	"github.com/georgemunganga/suby-backend/internal/platform/database"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const selectProduct = `
	SELECT id, product_name, price, category, best_seller, description, image, firm_id, created_at, updated_at
	FROM products`

func (r *postgresRepo) conn(ctx context.Context) database.DBTX {
	return database.Conn(ctx, r.db)
}

func scanProduct(scan func(...interface{}) error) (*Product, error) {
	p := &Product{}
	var (
		category pq.StringArray
		firmID   uuid.NullUUID
	)
	err := scan(&p.ID, &p.Name, &p.Price, &category, &p.BestSeller, &p.Description,
		&p.Image, &firmID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, database.MapError(err)
	}
	p.Category = []string(category)
	if p.Category == nil {
		p.Category = []string{}
	}
	if firmID.Valid {
		id := firmID.UUID
		p.FirmID = &id
	}
	return p, nil
}

func (r *postgresRepo) CreateProduct(ctx context.Context, p *Product) error {
	category := p.Category
	if category == nil {
		category = []string{}
	}
	var firmID uuid.NullUUID
	if p.FirmID != nil {
		firmID = uuid.NullUUID{UUID: *p.FirmID, Valid: true}
	}
	err := r.conn(ctx).QueryRowContext(ctx, `
		INSERT INTO products (id, product_name, price, category, best_seller, description, image, firm_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING created_at, updated_at`,
		p.ID, p.Name, p.Price, pq.Array(category), p.BestSeller, p.Description, p.Image, firmID).
		Scan(&p.CreatedAt, &p.UpdatedAt)
	return database.MapError(err)
}

func (r *postgresRepo) GetProductByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	row := r.conn(ctx).QueryRowContext(ctx, selectProduct+` WHERE id = $1`, id)
	return scanProduct(row.Scan)
}

func (r *postgresRepo) ListProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]*Product, error) {
	products := []*Product{}
	if len(ids) == 0 {
		return products, nil
	}

	rows, err := r.conn(ctx).QueryContext(ctx,
		selectProduct+` WHERE id = ANY($1::uuid[]) ORDER BY created_at, id`,
		pq.Array(database.UUIDStrings(ids)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProduct(rows.Scan)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *postgresRepo) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	res, err := r.conn(ctx).ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return database.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) DeleteProductsByFirm(ctx context.Context, firmID uuid.UUID) (int64, error) {
	res, err := r.conn(ctx).ExecContext(ctx, `DELETE FROM products WHERE firm_id = $1`, firmID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

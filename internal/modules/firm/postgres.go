package firm

import (
	"context"
	"database/sql"

	"github.com/georgemunganga/suby-backend/internal/platform/database"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) conn(ctx context.Context) database.DBTX {
	return database.Conn(ctx, r.db)
}

func (r *postgresRepo) CreateFirm(ctx context.Context, f *Firm) error {
	err := r.conn(ctx).QueryRowContext(ctx, `
		INSERT INTO firms (id, firm_name, area, category, region, offer, image, vendor_id, products)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING created_at, updated_at`,
		f.ID, f.Name, f.Area, pq.Array(nonNil(f.Category)), pq.Array(nonNil(f.Region)),
		f.Offer, f.Image, nullUUID(f.VendorID), pq.Array(database.UUIDStrings(f.Products))).
		Scan(&f.CreatedAt, &f.UpdatedAt)
	return database.MapError(err)
}

func (r *postgresRepo) GetFirmByID(ctx context.Context, id uuid.UUID) (*Firm, error) {
	f := &Firm{}
	var (
		category, region, products pq.StringArray
		vendorID                   uuid.NullUUID
	)
	err := r.conn(ctx).QueryRowContext(ctx, `
		SELECT id, firm_name, area, category, region, offer, image, vendor_id, products, created_at, updated_at
		FROM firms WHERE id = $1`, id).
		Scan(&f.ID, &f.Name, &f.Area, &category, &region, &f.Offer, &f.Image,
			&vendorID, &products, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, database.MapError(err)
	}

	f.Category = nonNil(category)
	f.Region = nonNil(region)
	if vendorID.Valid {
		v := vendorID.UUID
		f.VendorID = &v
	}
	if f.Products, err = database.ParseUUIDs(products); err != nil {
		return nil, err
	}
	return f, nil
}

func (r *postgresRepo) DeleteFirm(ctx context.Context, id uuid.UUID) error {
	res, err := r.conn(ctx).ExecContext(ctx, `DELETE FROM firms WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *postgresRepo) AddProduct(ctx context.Context, firmID, productID uuid.UUID) error {
	res, err := r.conn(ctx).ExecContext(ctx, `
		UPDATE firms
		SET products = CASE WHEN $2::uuid = ANY(products) THEN products ELSE array_append(products, $2::uuid) END,
		    updated_at = NOW()
		WHERE id = $1`, firmID, productID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *postgresRepo) RemoveProduct(ctx context.Context, firmID, productID uuid.UUID) error {
	res, err := r.conn(ctx).ExecContext(ctx, `
		UPDATE firms SET products = array_remove(products, $2::uuid), updated_at = NOW()
		WHERE id = $1`, firmID, productID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return database.ErrNotFound
	}
	return nil
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

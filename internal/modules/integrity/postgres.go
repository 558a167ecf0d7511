package integrity

import (
	"context"
	"database/sql"

	"github.com/georgemunganga/suby-backend/internal/platform/database"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const (
	clearDanglingVendorLinks = `
		UPDATE vendors v SET firm_id = NULL, updated_at = NOW()
		WHERE v.firm_id IS NOT NULL
		  AND NOT EXISTS (SELECT 1 FROM firms f WHERE f.id = v.firm_id)`

	relinkVendors = `
		UPDATE vendors v SET firm_id = owned.id, updated_at = NOW()
		FROM (
			SELECT DISTINCT ON (f.vendor_id) f.id, f.vendor_id
			FROM firms f
			WHERE f.vendor_id IS NOT NULL
			  AND NOT EXISTS (SELECT 1 FROM vendors o WHERE o.firm_id = f.id)
			ORDER BY f.vendor_id, f.created_at, f.id
		) owned
		WHERE v.id = owned.vendor_id AND v.firm_id IS NULL`

	pruneFirmProducts = `
		UPDATE firms f SET
			products = COALESCE((
				SELECT array_agg(u.pid ORDER BY u.ord)
				FROM unnest(f.products) WITH ORDINALITY AS u(pid, ord)
				JOIN products p ON p.id = u.pid AND p.firm_id = f.id
			), '{}'),
			updated_at = NOW()
		WHERE EXISTS (
			SELECT 1 FROM unnest(f.products) AS u(pid)
			WHERE NOT EXISTS (SELECT 1 FROM products p WHERE p.id = u.pid AND p.firm_id = f.id)
		)`

	fillFirmProducts = `
		UPDATE firms f SET products = f.products || missing.ids, updated_at = NOW()
		FROM (
			SELECT p.firm_id, array_agg(p.id ORDER BY p.created_at, p.id) AS ids
			FROM products p
			JOIN firms owner ON owner.id = p.firm_id
			WHERE NOT (p.id = ANY(owner.products))
			GROUP BY p.firm_id
		) missing
		WHERE f.id = missing.firm_id`

	clearDanglingProductLinks = `
		UPDATE products p SET firm_id = NULL, updated_at = NOW()
		WHERE p.firm_id IS NOT NULL
		  AND NOT EXISTS (SELECT 1 FROM firms f WHERE f.id = p.firm_id)`
)

func (r *postgresRepo) exec(ctx context.Context, query string) (int64, error) {
	res, err := database.Conn(ctx, r.db).ExecContext(ctx, query)
	if err != nil {
		return 0, database.MapError(err)
	}
	return res.RowsAffected()
}

func (r *postgresRepo) ClearDanglingVendorLinks(ctx context.Context) (int64, error) {
	return r.exec(ctx, clearDanglingVendorLinks)
}

func (r *postgresRepo) RelinkVendors(ctx context.Context) (int64, error) {
	return r.exec(ctx, relinkVendors)
}

func (r *postgresRepo) PruneFirmProducts(ctx context.Context) (int64, error) {
	return r.exec(ctx, pruneFirmProducts)
}

func (r *postgresRepo) FillFirmProducts(ctx context.Context) (int64, error) {
	return r.exec(ctx, fillFirmProducts)
}

func (r *postgresRepo) ClearDanglingProductLinks(ctx context.Context) (int64, error) {
	return r.exec(ctx, clearDanglingProductLinks)
}

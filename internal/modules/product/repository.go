package product

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines product data storage.
type Repository interface {
	CreateProduct(ctx context.Context, p *Product) error
	GetProductByID(ctx context.Context, id uuid.UUID) (*Product, error)
	ListProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]*Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	DeleteProductsByFirm(ctx context.Context, firmID uuid.UUID) (int64, error)
}

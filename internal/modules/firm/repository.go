package firm

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines firm data storage.
type Repository interface {
	CreateFirm(ctx context.Context, f *Firm) error
	GetFirmByID(ctx context.Context, id uuid.UUID) (*Firm, error)
	DeleteFirm(ctx context.Context, id uuid.UUID) error

	// AddProduct adds productID to the firm's product set in one statement.
	// Adding an id that is already present is a no-op.
	AddProduct(ctx context.Context, firmID, productID uuid.UUID) error

	// RemoveProduct removes productID from the firm's product set in one
	// statement. Removing an absent id is a no-op.
	RemoveProduct(ctx context.Context, firmID, productID uuid.UUID) error
}

// ProductRemover deletes every product owned by a firm.
type ProductRemover interface {
	DeleteProductsByFirm(ctx context.Context, firmID uuid.UUID) (int64, error)
}

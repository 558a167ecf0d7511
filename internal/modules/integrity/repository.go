package integrity

import "context"

// Repository repairs reference drift between vendors, firms and products.
// Each method is one set-based statement and returns the rows it changed.
type Repository interface {
	// ClearDanglingVendorLinks clears vendor firm references to missing firms.
	ClearDanglingVendorLinks(ctx context.Context) (int64, error)

	// RelinkVendors points a firm-less vendor back at the earliest firm that
	// names it as owner, unless another vendor already claims that firm.
	RelinkVendors(ctx context.Context) (int64, error)

	// PruneFirmProducts drops ids from firm product sets that are missing or
	// owned by another firm.
	PruneFirmProducts(ctx context.Context) (int64, error)

	// FillFirmProducts adds products to the set of the existing firm they
	// reference when the set lacks them.
	FillFirmProducts(ctx context.Context) (int64, error)

	// ClearDanglingProductLinks clears product firm references to missing firms.
	ClearDanglingProductLinks(ctx context.Context) (int64, error)
}

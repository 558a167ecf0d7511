package product

import (
	"context"
	"errors"
	"strings"

	"github.com/georgemunganga/suby-backend/internal/modules/auth"
	"github.com/georgemunganga/suby-backend/internal/modules/firm"
	"github.com/georgemunganga/suby-backend/internal/platform/apperr"
	"github.com/georgemunganga/suby-backend/internal/platform/database"
	"github.com/georgemunganga/suby-backend/internal/platform/validation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service keeps firm product sets and product firm references consistent.
type Service interface {
	// CreateProduct persists a product for the firm and adds it to the firm's product set.
	CreateProduct(ctx context.Context, firmID string, req CreateProductRequest) (*Product, error)

	// GetProductsByFirm returns the firm's name and its products.
	GetProductsByFirm(ctx context.Context, firmID string) (*FirmProducts, error)

	// DeleteProduct removes the product from its firm's set and deletes it.
	DeleteProduct(ctx context.Context, productID string) error
}

// CreateProductRequest holds the data for creating a product.
type CreateProductRequest struct {
	ProductName string   `json:"productName" validate:"required,max=200"`
	Price       string   `json:"price" validate:"required"`
	Category    []string `json:"category" validate:"dive,oneof=veg non-veg"`
	BestSeller  bool     `json:"bestSeller"`
	Description string   `json:"description" validate:"max=2000"`
	Image       string   `json:"image"`
}

type service struct {
	products Repository
	firms    firm.Repository
	tx       database.TxRunner
}

func NewService(products Repository, firms firm.Repository, tx database.TxRunner) Service {
	return &service{products: products, firms: firms, tx: tx}
}

func (s *service) CreateProduct(ctx context.Context, firmID string, req CreateProductRequest) (*Product, error) {
	fid, err := validation.ParseID(firmID, "firm id")
	if err != nil {
		return nil, err
	}
	req.ProductName = strings.TrimSpace(req.ProductName)
	req.Price = strings.TrimSpace(req.Price)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		return nil, apperr.Validation("price must be a non-negative number")
	}

	category := req.Category
	if category == nil {
		category = []string{}
	}
	p := &Product{
		ID:          uuid.New(),
		Name:        req.ProductName,
		Price:       price,
		Category:    category,
		BestSeller:  req.BestSeller,
		Description: strings.TrimSpace(req.Description),
		Image:       req.Image,
		FirmID:      &fid,
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		f, err := s.firms.GetFirmByID(ctx, fid)
		if errors.Is(err, database.ErrNotFound) {
			return apperr.NotFound("Firm not found")
		}
		if err != nil {
			return apperr.Internal(err)
		}
		if err := auth.CheckOwner(ctx, f.VendorID); err != nil {
			return err
		}
		if err := s.products.CreateProduct(ctx, p); err != nil {
			return apperr.Internal(err)
		}
		if err := s.firms.AddProduct(ctx, fid, p.ID); err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return apperr.NotFound("Firm not found")
			}
			return apperr.Internal(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) GetProductsByFirm(ctx context.Context, firmID string) (*FirmProducts, error) {
	fid, err := validation.ParseID(firmID, "firm id")
	if err != nil {
		return nil, err
	}

	f, err := s.firms.GetFirmByID(ctx, fid)
	if errors.Is(err, database.ErrNotFound) {
		return nil, apperr.NotFound("Firm not found")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}

	products, err := s.products.ListProductsByIDs(ctx, f.Products)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &FirmProducts{FirmName: f.Name, Products: products}, nil
}

func (s *service) DeleteProduct(ctx context.Context, productID string) error {
	pid, err := validation.ParseID(productID, "product id")
	if err != nil {
		return err
	}

	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		p, err := s.products.GetProductByID(ctx, pid)
		if errors.Is(err, database.ErrNotFound) {
			return apperr.NotFound("Product not found")
		}
		if err != nil {
			return apperr.Internal(err)
		}
		if err := s.checkFirmOwner(ctx, p.FirmID); err != nil {
			return err
		}

		// A missing firm only means there is no set left to clean up.
		if p.FirmID != nil {
			if err := s.firms.RemoveProduct(ctx, *p.FirmID, pid); err != nil && !errors.Is(err, database.ErrNotFound) {
				return apperr.Internal(err)
			}
		}

		if err := s.products.DeleteProduct(ctx, pid); err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return apperr.NotFound("Product not found")
			}
			return apperr.Internal(err)
		}
		return nil
	})
}

// checkFirmOwner resolves the vendor owning the product's firm and checks it
// against the authenticated vendor. A product without a live firm has no
// owner, so only unauthenticated callers may delete it.
func (s *service) checkFirmOwner(ctx context.Context, firmID *uuid.UUID) error {
	if _, ok := auth.VendorIDFromContext(ctx); !ok {
		return nil
	}
	var owner *uuid.UUID
	if firmID != nil {
		f, err := s.firms.GetFirmByID(ctx, *firmID)
		switch {
		case err == nil:
			owner = f.VendorID
		case !errors.Is(err, database.ErrNotFound):
			return apperr.Internal(err)
		}
	}
	return auth.CheckOwner(ctx, owner)
}

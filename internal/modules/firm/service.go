package firm

import (
	"context"
	"errors"
	"strings"

	"github.com/georgemunganga/suby-backend/internal/modules/auth"
	"github.com/georgemunganga/suby-backend/internal/modules/vendor"
	"github.com/georgemunganga/suby-backend/internal/platform/apperr"
	"github.com/georgemunganga/suby-backend/internal/platform/database"
	"github.com/georgemunganga/suby-backend/internal/platform/validation"
	"github.com/google/uuid"
)

// Service keeps the vendor and firm references consistent while firms are
// created and deleted.
type Service interface {
	// CreateFirm persists a firm for the vendor and links the vendor to it.
	// A vendor owns at most one firm.
	CreateFirm(ctx context.Context, vendorID string, req CreateFirmRequest) (*Firm, error)

	// DeleteFirm unlinks every vendor pointing at the firm, deletes the
	// firm's products and then the firm itself.
	DeleteFirm(ctx context.Context, firmID string) error
}

// CreateFirmRequest holds the data for creating a firm.
type CreateFirmRequest struct {
	FirmName string   `json:"firmName" validate:"required,max=200"`
	Area     string   `json:"area" validate:"required,max=200"`
	Category []string `json:"category" validate:"dive,max=50"`
	Region   []string `json:"region" validate:"dive,max=50"`
	Offer    string   `json:"offer" validate:"max=500"`
	Image    string   `json:"image"`
}

type service struct {
	firms    Repository
	vendors  vendor.Repository
	products ProductRemover
	tx       database.TxRunner
}

func NewService(firms Repository, vendors vendor.Repository, products ProductRemover, tx database.TxRunner) Service {
	return &service{firms: firms, vendors: vendors, products: products, tx: tx}
}

func (s *service) CreateFirm(ctx context.Context, vendorID string, req CreateFirmRequest) (*Firm, error) {
	vid, err := validation.ParseID(vendorID, "vendor id")
	if err != nil {
		return nil, err
	}
	req.FirmName = strings.TrimSpace(req.FirmName)
	req.Area = strings.TrimSpace(req.Area)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	f := &Firm{
		ID:       uuid.New(),
		Name:     req.FirmName,
		Area:     req.Area,
		Category: orEmpty(req.Category),
		Region:   orEmpty(req.Region),
		Offer:    strings.TrimSpace(req.Offer),
		Image:    req.Image,
		VendorID: &vid,
		Products: []uuid.UUID{},
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		v, err := s.vendors.GetVendorByID(ctx, vid)
		if errors.Is(err, database.ErrNotFound) {
			return apperr.NotFound("Vendor not found")
		}
		if err != nil {
			return apperr.Internal(err)
		}
		if v.HasFirm() {
			return apperr.Conflict("Vendor can have only one firm")
		}

		if err := s.firms.CreateFirm(ctx, f); err != nil {
			if errors.Is(err, database.ErrDuplicate) {
				return apperr.Conflict("Firm name already exists")
			}
			return apperr.Internal(err)
		}

		// Compare-and-set: a concurrent CreateFirm for the same vendor that
		// linked first leaves zero rows to update here.
		linked, err := s.vendors.LinkFirm(ctx, vid, f.ID)
		if err != nil {
			return apperr.Internal(err)
		}
		if !linked {
			return apperr.Conflict("Vendor can have only one firm")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (s *service) DeleteFirm(ctx context.Context, firmID string) error {
	fid, err := validation.ParseID(firmID, "firm id")
	if err != nil {
		return err
	}

	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
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

		// Look vendors up by their reference rather than the firm's stored
		// vendor so drifted links are cleared too.
		if _, err := s.vendors.UnlinkFirm(ctx, fid); err != nil {
			return apperr.Internal(err)
		}
		if _, err := s.products.DeleteProductsByFirm(ctx, fid); err != nil {
			return apperr.Internal(err)
		}
		if err := s.firms.DeleteFirm(ctx, fid); err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return apperr.NotFound("Firm not found")
			}
			return apperr.Internal(err)
		}
		return nil
	})
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

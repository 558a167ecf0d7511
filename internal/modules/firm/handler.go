package firm

import (
	"context"
	"net/http"

	"github.com/georgemunganga/suby-backend/internal/modules/auth"
	"github.com/georgemunganga/suby-backend/internal/modules/upload"
	"github.com/georgemunganga/suby-backend/internal/platform/apperr"
	"github.com/georgemunganga/suby-backend/internal/platform/form"
	"github.com/georgemunganga/suby-backend/internal/platform/logger"
	"github.com/georgemunganga/suby-backend/internal/platform/respond"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler exposes firm HTTP endpoints.
type Handler struct {
	service        Service
	uploads        upload.Store
	maxUploadBytes int64
}

func NewHandler(service Service, uploads upload.Store, maxUploadBytes int64) *Handler {
	return &Handler{service: service, uploads: uploads, maxUploadBytes: maxUploadBytes}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/firm/{vendorId}", h.createFirm)
	r.Delete("/firm/{firmId}", h.deleteFirm)
}

func (h *Handler) createFirm(w http.ResponseWriter, r *http.Request) {
	vendorID := chi.URLParam(r, "vendorId")
	if authed, ok := auth.VendorIDFromContext(r.Context()); ok && authed.String() != vendorID {
		respond.Error(w, r, apperr.Unauthorized("Token does not belong to this vendor"))
		return
	}

	values, err := form.Parse(w, r, h.maxUploadBytes, "image")
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	req := CreateFirmRequest{
		FirmName: values.String("firmName"),
		Area:     values.String("area"),
		Category: values.Strings("category"),
		Region:   values.Strings("region"),
		Offer:    values.String("offer"),
	}
	if fh := values.File(); fh != nil {
		if req.Image, err = h.uploads.Save(r.Context(), fh); err != nil {
			respond.Error(w, r, err)
			return
		}
	}

	f, err := h.service.CreateFirm(r.Context(), vendorID, req)
	if err != nil {
		h.discardImage(r.Context(), req.Image)
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, "Firm added successfully", respond.Payload{
		"firmId":         f.ID,
		"vendorFirmName": f.Name,
		"firm":           f,
	})
}

func (h *Handler) deleteFirm(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteFirm(r.Context(), chi.URLParam(r, "firmId")); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "Firm deleted successfully", nil)
}

func (h *Handler) discardImage(ctx context.Context, token string) {
	if token == "" {
		return
	}
	if err := h.uploads.Delete(ctx, token); err != nil {
		logger.FromContext(ctx).Warn("discard uploaded image", zap.String("token", token), zap.Error(err))
	}
}

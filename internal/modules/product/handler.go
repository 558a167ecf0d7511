package product

import (
	"net/http"

	"github.com/georgemunganga/suby-backend/internal/modules/upload"
	"github.com/georgemunganga/suby-backend/internal/platform/form"
	"github.com/georgemunganga/suby-backend/internal/platform/logger"
	"github.com/georgemunganga/suby-backend/internal/platform/respond"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler exposes product HTTP endpoints.
type Handler struct {
	service        Service
	uploads        upload.Store
	maxUploadBytes int64
}

func NewHandler(service Service, uploads upload.Store, maxUploadBytes int64) *Handler {
	return &Handler{service: service, uploads: uploads, maxUploadBytes: maxUploadBytes}
}

// RegisterRoutes mounts the mutating routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/product/{firmId}", h.createProduct)
	r.Delete("/product/{productId}", h.deleteProduct)
}

// RegisterPublicRoutes mounts the read-only routes.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/product/{firmId}", h.getProductsByFirm)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	values, err := form.Parse(w, r, h.maxUploadBytes, "image")
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	req := CreateProductRequest{
		ProductName: values.String("productName"),
		Price:       values.String("price"),
		Category:    values.Strings("category"),
		BestSeller:  values.Bool("bestSeller"),
		Description: values.String("description"),
	}
	if fh := values.File(); fh != nil {
		if req.Image, err = h.uploads.Save(r.Context(), fh); err != nil {
			respond.Error(w, r, err)
			return
		}
	}

	p, err := h.service.CreateProduct(r.Context(), chi.URLParam(r, "firmId"), req)
	if err != nil {
		if req.Image != "" {
			if derr := h.uploads.Delete(r.Context(), req.Image); derr != nil {
				logger.FromContext(r.Context()).Warn("discard uploaded image", zap.String("token", req.Image), zap.Error(derr))
			}
		}
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, "Product added successfully", respond.Payload{"product": p})
}

func (h *Handler) getProductsByFirm(w http.ResponseWriter, r *http.Request) {
	listing, err := h.service.GetProductsByFirm(r.Context(), chi.URLParam(r, "firmId"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "", respond.Payload{
		"restaurantName": listing.FirmName,
		"products":       listing.Products,
	})
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteProduct(r.Context(), chi.URLParam(r, "productId")); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "Product deleted successfully", nil)
}

package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/georgemunganga/suby-backend/internal/platform/apperr"
	"github.com/georgemunganga/suby-backend/internal/platform/respond"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type vendorIDKey struct{}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/vendor/login", h.login)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, apperr.Validation("invalid request body"))
		return
	}

	session, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "Login successful", respond.Payload{
		"token":     session.Token,
		"vendorId":  session.VendorID,
		"expiresAt": session.ExpiresAt,
	})
}

// RequireVendor rejects requests without a valid vendor token. The token is
// read from "Authorization: Bearer <token>" or from the "token" header.
func (h *Handler) RequireVendor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			respond.Error(w, r, apperr.Unauthorized("Token is required"))
			return
		}
		vendorID, err := h.service.ParseToken(token)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), vendorIDKey{}, vendorID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// VendorIDFromContext returns the authenticated vendor set by RequireVendor.
func VendorIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(vendorIDKey{}).(uuid.UUID)
	return id, ok
}

// CheckOwner rejects an authenticated vendor acting on a resource owned by
// another vendor. Requests without an authenticated vendor pass.
func CheckOwner(ctx context.Context, owner *uuid.UUID) error {
	authed, ok := VendorIDFromContext(ctx)
	if !ok {
		return nil
	}
	if owner == nil || *owner != authed {
		return apperr.Unauthorized("Token does not belong to this vendor")
	}
	return nil
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
			return strings.TrimSpace(h[7:])
		}
		return ""
	}
	return strings.TrimSpace(r.Header.Get("token"))
}

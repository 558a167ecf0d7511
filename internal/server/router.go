// Package server assembles the HTTP router.
package server

import (
	"io"
	"net/http"

	"github.com/georgemunganga/suby-backend/internal/modules/auth"
	"github.com/georgemunganga/suby-backend/internal/modules/firm"
	"github.com/georgemunganga/suby-backend/internal/modules/product"
	"github.com/georgemunganga/suby-backend/internal/modules/upload"
	"github.com/georgemunganga/suby-backend/internal/modules/vendor"
	"github.com/georgemunganga/suby-backend/internal/platform/logger"
	"github.com/georgemunganga/suby-backend/internal/platform/respond"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

const uploadsPrefix = "/uploads"

// Options controls router behaviour that depends on configuration.
type Options struct {
	CORSOrigins []string
	RequireAuth bool
}

// Handlers are the module handlers mounted on the router.
type Handlers struct {
	Vendor  *vendor.Handler
	Auth    *auth.Handler
	Firm    *firm.Handler
	Product *product.Handler
	Uploads upload.Store
}

func NewRouter(log *zap.Logger, h Handlers, opts Options) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(logger.Middleware(log))
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "token"},
		MaxAge:         300,
	}))

	h.Vendor.RegisterRoutes(router)
	h.Auth.RegisterRoutes(router)
	h.Product.RegisterPublicRoutes(router)

	router.Group(func(r chi.Router) {
		if opts.RequireAuth {
			r.Use(h.Auth.RequireVendor)
		}
		h.Firm.RegisterRoutes(r)
		h.Product.RegisterRoutes(r)
	})

	router.Get(uploadsPrefix+"/*", h.Uploads.Handler(uploadsPrefix).ServeHTTP)
	router.Get("/", welcome)
	router.NotFound(notFound)
	router.MethodNotAllowed(notFound)
	return router
}

func welcome(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, "<h1> Welcome to SUBY</h1>")
}

func notFound(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusNotFound, "API route not found", nil)
}

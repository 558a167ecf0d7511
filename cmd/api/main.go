package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/georgemunganga/suby-backend/internal/config"
	"github.com/georgemunganga/suby-backend/internal/modules/auth"
	"github.com/georgemunganga/suby-backend/internal/modules/firm"
	"github.com/georgemunganga/suby-backend/internal/modules/integrity"
	"github.com/georgemunganga/suby-backend/internal/modules/product"
	"github.com/georgemunganga/suby-backend/internal/modules/upload"
	"github.com/georgemunganga/suby-backend/internal/modules/vendor"
	"github.com/georgemunganga/suby-backend/internal/platform/database"
	"github.com/georgemunganga/suby-backend/internal/platform/logger"
	"github.com/georgemunganga/suby-backend/internal/server"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	_ "github.com/lib/pq"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	zl, err := logger.New(cfg.IsProduction())
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer zl.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ── Database ────────────────────────────────────────────
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()
	zl.Info("connected to database")

	if cfg.Database.MigrateOnStart {
		migrator, err := database.NewMigrator(db, zl)
		if err != nil {
			return err
		}
		if err := migrator.Up(); err != nil {
			return err
		}
	}
	tx := database.NewTxRunner(db)

	// ── Uploads ─────────────────────────────────────────────
	var uploads upload.Store
	switch cfg.Upload.Backend {
	case config.UploadBackendS3:
		uploads, err = upload.NewS3Store(ctx, cfg.Upload.S3)
	default:
		uploads, err = upload.NewDiskStore(cfg.Upload.Dir)
	}
	if err != nil {
		return fmt.Errorf("init upload store: %w", err)
	}

	// ── Vendors & Auth ──────────────────────────────────────
	vendorRepo := vendor.NewPostgresRepository(db)
	vendorService := vendor.NewService(vendorRepo)
	authService := auth.NewService(vendorRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	// ── Firms & Products ────────────────────────────────────
	firmRepo := firm.NewPostgresRepository(db)
	productRepo := product.NewPostgresRepository(db)
	firmService := firm.NewService(firmRepo, vendorRepo, productRepo, tx)
	productService := product.NewService(productRepo, firmRepo, tx)

	reconciler := integrity.NewReconciler(integrity.NewPostgresRepository(db), tx, zl)

	// ── Router ──────────────────────────────────────────────
	router := server.NewRouter(zl, server.Handlers{
		Vendor:  vendor.NewHandler(vendorService),
		Auth:    auth.NewHandler(authService),
		Firm:    firm.NewHandler(firmService, uploads, cfg.Upload.MaxBytes),
		Product: product.NewHandler(productService, uploads, cfg.Upload.MaxBytes),
		Uploads: uploads,
	}, server.Options{CORSOrigins: cfg.CORSOrigins, RequireAuth: cfg.Auth.RequireAuth})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// ── Start Server ────────────────────────────────────────
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zl.Info("SUBY API server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return reconciler.Run(gctx, cfg.ReconcileInterval)
	})
	g.Go(func() error {
		<-gctx.Done()
		zl.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Package integrity repairs vendor, firm and product references that drifted
// apart, for example after a crash between two writes of an older release or
// a manual edit of the database.
package integrity

import (
	"context"
	"fmt"
	"time"

	"github.com/georgemunganga/suby-backend/internal/platform/database"
	"go.uber.org/zap"
)

// Report counts the rows each sweep step changed.
type Report struct {
	VendorLinksCleared  int64 `json:"vendorLinksCleared"`
	VendorsRelinked     int64 `json:"vendorsRelinked"`
	FirmSetsPruned      int64 `json:"firmSetsPruned"`
	FirmSetsFilled      int64 `json:"firmSetsFilled"`
	ProductLinksCleared int64 `json:"productLinksCleared"`
}

// Total is the number of rows changed across all steps.
func (r Report) Total() int64 {
	return r.VendorLinksCleared + r.VendorsRelinked + r.FirmSetsPruned + r.FirmSetsFilled + r.ProductLinksCleared
}

type Reconciler struct {
	repo   Repository
	tx     database.TxRunner
	logger *zap.Logger
}

func NewReconciler(repo Repository, tx database.TxRunner, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{repo: repo, tx: tx, logger: logger.Named("integrity")}
}

// Sweep runs the repair steps in order inside one transaction.
func (r *Reconciler) Sweep(ctx context.Context) (Report, error) {
	var report Report
	steps := []struct {
		name  string
		run   func(context.Context) (int64, error)
		count *int64
	}{
		{"clear vendor links", r.repo.ClearDanglingVendorLinks, &report.VendorLinksCleared},
		{"relink vendors", r.repo.RelinkVendors, &report.VendorsRelinked},
		{"prune firm products", r.repo.PruneFirmProducts, &report.FirmSetsPruned},
		{"fill firm products", r.repo.FillFirmProducts, &report.FirmSetsFilled},
		{"clear product links", r.repo.ClearDanglingProductLinks, &report.ProductLinksCleared},
	}

	err := r.tx.WithinTx(ctx, func(ctx context.Context) error {
		for _, step := range steps {
			n, err := step.run(ctx)
			if err != nil {
				return fmt.Errorf("%s: %w", step.name, err)
			}
			*step.count = n
		}
		return nil
	})
	if err != nil {
		return Report{}, err
	}

	if report.Total() > 0 {
		r.logger.Warn("repaired reference drift",
			zap.Int64("vendor_links_cleared", report.VendorLinksCleared),
			zap.Int64("vendors_relinked", report.VendorsRelinked),
			zap.Int64("firm_sets_pruned", report.FirmSetsPruned),
			zap.Int64("firm_sets_filled", report.FirmSetsFilled),
			zap.Int64("product_links_cleared", report.ProductLinksCleared),
		)
	} else {
		r.logger.Debug("no reference drift found")
	}
	return report, nil
}

// Run sweeps once immediately and then every interval until ctx is done.
// Sweep failures are logged and do not stop the loop.
func (r *Reconciler) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := r.Sweep(ctx); err != nil && ctx.Err() == nil {
			r.logger.Error("reconciliation sweep failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

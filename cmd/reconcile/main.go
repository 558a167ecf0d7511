// Command reconcile runs one integrity sweep and prints its report.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/georgemunganga/suby-backend/internal/config"
	"github.com/georgemunganga/suby-backend/internal/modules/integrity"
	"github.com/georgemunganga/suby-backend/internal/platform/database"
	"github.com/georgemunganga/suby-backend/internal/platform/logger"

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
		return err
	}
	defer zl.Sync()

	ctx := context.Background()
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	r := integrity.NewReconciler(integrity.NewPostgresRepository(db), database.NewTxRunner(db), zl)
	report, err := r.Sweep(ctx)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

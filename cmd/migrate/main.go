// Command migrate applies or rolls back the database schema.
//
//	migrate up | down | steps N | version
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/georgemunganga/suby-backend/internal/config"
	"github.com/georgemunganga/suby-backend/internal/platform/database"
	"github.com/georgemunganga/suby-backend/internal/platform/logger"
	"go.uber.org/zap"

	_ "github.com/lib/pq"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: migrate up | down | steps N | version")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	zl, err := logger.New(cfg.IsProduction())
	if err != nil {
		return err
	}
	defer zl.Sync()

	db, err := database.Open(context.Background(), cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	m, err := database.NewMigrator(db, zl)
	if err != nil {
		return err
	}

	switch args[0] {
	case "up":
		return m.Up()
	case "down":
		return m.Down()
	case "steps":
		if len(args) < 2 {
			return fmt.Errorf("steps requires a count")
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid step count %q", args[1])
		}
		return m.Steps(n)
	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			return err
		}
		zl.Info("schema version", zap.Uint("version", version), zap.Bool("dirty", dirty))
		return nil
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

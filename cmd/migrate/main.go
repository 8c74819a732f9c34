package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/jassiaa29/pos-ventas-simple/internal/app"
	"github.com/jassiaa29/pos-ventas-simple/internal/platform/db"
	"github.com/jassiaa29/pos-ventas-simple/migrations"
)

func main() {
	if app.InTestMode() {
		return
	}
	down := flag.Int("down", 0, "revert the given number of migrations instead of applying")
	showVersion := flag.Bool("version", false, "print the current schema version and exit")
	flag.Parse()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg).With(slog.String("component", "migrate"))

	switch {
	case *showVersion:
		version, dirty, err := db.MigrationVersion(migrations.Files, ".", cfg.PGDSN)
		if err != nil {
			logger.Error("read version", slog.Any("error", err))
			os.Exit(1)
		}
		fmt.Printf("version=%d dirty=%t\n", version, dirty)
	case *down > 0:
		if err := db.MigrateDown(migrations.Files, ".", cfg.PGDSN, *down); err != nil {
			logger.Error("migrate down", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("reverted migrations", slog.Int("steps", *down))
	default:
		if err := db.Migrate(migrations.Files, ".", cfg.PGDSN); err != nil {
			logger.Error("migrate up", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("schema up to date")
	}
}

// Command reconcile backfills missing seller ids on catalog records. Run it
// with -dry-run first; the pass is idempotent either way.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"karigari/internal/catalog/resolver"
	catalogstore "karigari/internal/catalog/store"
	identitystore "karigari/internal/identity/store"
	"karigari/internal/platform/config"
	"karigari/internal/platform/logger"
	"karigari/internal/platform/postgres"
	"karigari/internal/reconcile"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "report what would change without writing")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.FromEnv()
	log := logger.New()

	if cfg.PostgresDSN == "" {
		log.Error("POSTGRES_DSN is required")
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Error("postgres connect failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	rec, err := reconcile.New(
		catalogstore.NewPostgres(pool),
		resolver.New(identitystore.NewPostgres(pool)),
		reconcile.WithLogger(log),
	)
	if err != nil {
		log.Error("reconciler init failed", "error", err)
		os.Exit(1)
	}

	report, err := rec.Run(ctx, *dryRun)
	if err != nil {
		log.Error("reconcile pass failed", "error", err)
		os.Exit(1)
	}

	mode := "applied"
	if report.DryRun {
		mode = "dry run"
	}
	fmt.Printf("reconcile (%s): inspected=%d already_attributed=%d fixed=%d unfixable=%d\n",
		mode, report.Inspected, report.AlreadyAttributed, report.Fixed, report.Unfixable)
}

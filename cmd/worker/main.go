package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/inklinehq/roi-backend/config"
	"github.com/inklinehq/roi-backend/internal/bootstrap"
	"github.com/inklinehq/roi-backend/internal/observability"
	"github.com/inklinehq/roi-backend/internal/scenarios/repository"
	"github.com/inklinehq/roi-backend/internal/worker"
)

// The worker owns the nightly reconcile pass over stored scenarios.
// Run with "once" to do a single pass and exit, useful after deploys
// that change the calculation.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Database.Driver != "postgres" {
		log.Fatalf("reconcile worker requires the postgres store, got %q", cfg.Database.Driver)
	}

	ctx := context.Background()
	pool, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{DSN: cfg.Database.DSN()})
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	metrics := observability.NewCollector(nil)
	rec := worker.NewReconciler(repository.NewPG(pool), metrics)

	if len(os.Args) > 1 && os.Args[1] == "once" {
		fixed, err := rec.Run(ctx)
		if err != nil {
			log.Fatalf("reconcile: %v", err)
		}
		log.Printf("reconcile: %d rows rewritten", fixed)
		return
	}

	c := rec.Start()
	defer c.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down")
}

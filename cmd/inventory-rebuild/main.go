// inventory-rebuild recomputes the per-(vendor, item) running balances and the
// transaction serial counter from the transaction log.
//
// Usage (from backend directory):
//
//	DATABASE_URL=... go run ./cmd/inventory-rebuild -dry-run
//
// Stop the API first; the rebuild assumes nothing else writes transactions.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mmdatafocus/inout_backend/config"
	"github.com/mmdatafocus/inout_backend/models"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "Report drift without rewriting balances")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	config.SetLogLevel(cfg.LogLevel)

	db, err := config.ConnectDatabaseWithRetry(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect database: %v\n", err)
		os.Exit(1)
	}
	store := models.NewStore(db, models.WithLogger(config.GetLogger()))
	defer store.Close()

	drifts, err := store.RebuildBalances(ctx, *dryRun)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rebuild failed: %v\n", err)
		os.Exit(1)
	}

	for _, d := range drifts {
		status := "drift"
		if d.MissingBalance {
			status = "missing"
		}
		fmt.Printf("%-7s vendor=%d item=%d stored(out=%s in=%s) computed(out=%s in=%s)\n",
			status, d.VendorId, d.ItemId, d.StoredOut, d.StoredIn, d.ComputedOut, d.ComputedIn)
	}
	switch {
	case *dryRun:
		fmt.Printf("dry run: %d pair(s) out of step, nothing written\n", len(drifts))
	default:
		fmt.Printf("rebuilt balances; %d pair(s) were out of step\n", len(drifts))
	}
}

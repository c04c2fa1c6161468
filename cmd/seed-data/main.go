// seed-data loads the default payal price chart and/or the sample vendors,
// items, transactions and payments.
//
// Usage (from backend directory):
//
//	DATABASE_URL=... go run ./cmd/seed-data -price-chart -sample
//
// Seeding the price chart replaces the whole chart. Sample data is
// probe-then-skip: existing vendors and items are reused and vendors that
// already have activity get no new movements.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mmdatafocus/inout_backend/config"
	"github.com/mmdatafocus/inout_backend/models"
)

func main() {
	priceChart := flag.Bool("price-chart", false, "Replace the payal price chart with the defaults")
	sample := flag.Bool("sample", false, "Load the sample vendors, items, transactions and payments")
	flag.Parse()

	if !*priceChart && !*sample {
		fmt.Fprintln(os.Stderr, "nothing to do: pass -price-chart and/or -sample")
		os.Exit(2)
	}

	ctx := context.Background()
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

	if err := store.Migrate(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}

	if *priceChart {
		entries, err := store.SeedPriceChart(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "seed price chart: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("price chart seeded: %d entries\n", len(entries))
	}

	if *sample {
		report, err := store.SeedSampleData(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "seed sample data: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("sample data: %d vendor(s), %d item(s), %d transaction(s), %d payment(s) added\n",
			report.Vendors, report.Items, report.Transactions, report.Payments)
	}
}

// Command seed-db loads the catalog and a starter set of promotions into
// PostgreSQL. With no --products-file flag it uses the embedded catalog.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/ecopack/cartengine/db"
	"github.com/ecopack/cartengine/internal/domain/product"
	"github.com/ecopack/cartengine/internal/domain/promotion"
	"github.com/ecopack/cartengine/internal/storage/postgres"
)

func main() {
	var (
		databaseURL  string
		productsFile string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "", "path to products JSON file (default: embedded catalog)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedProducts(ctx, postgres.NewProductRepository(pool), productsFile); err != nil {
		return errors.Wrap(err, "seed products")
	}

	if err := seedPromotions(ctx, postgres.NewPromotionRepository(pool)); err != nil {
		return errors.Wrap(err, "seed promotions")
	}

	return nil
}

func seedProducts(ctx context.Context, repo *postgres.ProductRepository, productsFile string) error {
	data := db.SeedProducts
	if productsFile != "" {
		slog.Info("reading products file", slog.String("path", productsFile))
		var err error
		data, err = os.ReadFile(productsFile)
		if err != nil {
			return errors.Wrap(err, "read products file")
		}
	}

	var products []product.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return errors.Wrap(err, "parse products JSON")
	}

	slog.Info("upserting products", slog.Int("count", len(products)))

	for _, p := range products {
		if err := repo.Upsert(ctx, &p); err != nil {
			return errors.Wrapf(err, "upsert product %s", p.ID)
		}
		slog.Info("upserted product", slog.String("id", p.ID), slog.String("title", p.Title))
	}

	return nil
}

func seedPromotions(ctx context.Context, repo *postgres.PromotionRepository) error {
	until := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	rules := []promotion.Rule{
		{Code: "ECO10", Type: promotion.TypePercentage, Value: decimal.NewFromInt(10), Description: "10% off your order"},
		{Code: "HAPPYHRS", Type: promotion.TypePercentage, Value: decimal.NewFromInt(18), Description: "Happy Hours: 18% off"},
		{Code: "FIFTYOFF", Type: promotion.TypePercentage, Value: decimal.NewFromInt(50), MinItems: 10, Description: "50% off bulk orders"},
		{Code: "FLAT5", Type: promotion.TypeFixed, Value: decimal.NewFromInt(5), Currency: "USD", Description: "$5 off your order"},
		{Code: "LAUNCH25", Type: promotion.TypePercentage, Value: decimal.NewFromInt(25), ValidUntil: &until, MaxUses: 1000, Description: "Launch special: 25% off"},
	}

	slog.Info("upserting promotions", slog.Int("count", len(rules)))

	for _, r := range rules {
		if err := repo.Upsert(ctx, &r); err != nil {
			return errors.Wrapf(err, "upsert promotion %s", r.Code)
		}
	}

	return nil
}

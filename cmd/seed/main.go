// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/carterperez-dev/ascend-api/internal/config"
	"github.com/carterperez-dev/ascend-api/internal/core"
	"github.com/carterperez-dev/ascend-api/internal/promo"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	catalogPath := flag.String("catalog", "", "YAML promo catalog (default catalog when empty)")
	reset := flag.Bool("reset", false, "delete existing promo codes before seeding")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	if err := run(*configPath, *catalogPath, *reset); err != nil {
		slog.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath, catalogPath string, reset bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cfg, err := config.LoadStore(configPath)
	if err != nil {
		return err
	}

	codes := promo.DefaultCatalog()
	if catalogPath != "" {
		codes, err = promo.LoadCatalogFile(catalogPath)
		if err != nil {
			return err
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Mongo)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(context.Background()); err != nil {
			slog.Error("mongo close error", "error", err)
		}
	}()

	repo := promo.NewRepository(db.Collection(promo.CollectionName), db.QueryTimeout)
	if err := repo.EnsureIndexes(ctx); err != nil {
		return err
	}

	res, err := promo.Seed(ctx, repo, codes, reset)
	if err != nil {
		return err
	}

	slog.Info("promo catalog seeded",
		"database", cfg.Mongo.Database,
		"created", res.Created,
		"updated", res.Updated,
		"deleted", res.Deleted,
	)

	for _, c := range codes {
		slog.Info("promo code",
			"code", c.Code,
			"reward_kind", c.Kind(),
			"amount", valueOrZero(c.Amount),
			"max_uses", valueOrZero(c.MaxUses),
		)
	}

	return nil
}

func valueOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

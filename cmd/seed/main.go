// Package main implements a standalone seed script that populates the
// storefront catalog with the BrewHaven menu. Runs are idempotent: categories
// and products are upserted by slug, so re-seeding refreshes rather than
// duplicates.
package main

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/Dheeraj-pilakkat/BrewHaven/internal/config"
	"github.com/Dheeraj-pilakkat/BrewHaven/internal/domain"
	"github.com/Dheeraj-pilakkat/BrewHaven/internal/repository"
	postgresrepo "github.com/Dheeraj-pilakkat/BrewHaven/internal/repository/postgres"
	"github.com/Dheeraj-pilakkat/BrewHaven/pkg/database"
	"github.com/Dheeraj-pilakkat/BrewHaven/pkg/logger"
	"github.com/Dheeraj-pilakkat/BrewHaven/pkg/slug"
)

type categoryDef struct {
	name  string
	image string
}

type productDef struct {
	name        string
	price       int64 // cents
	category    string
	image       string
	description string
}

var categoryDefs = []categoryDef{
	{"Espresso", "/images/espresso.png"},
	{"Brewed", "/images/hero.png"},
	{"Cold", "/images/cold_brew.png"},
	{"Pastries", "/images/pastries.png"},
	{"Merchandise", "/images/merchandise.png"},
}

var productDefs = []productDef{
	{"Classic Espresso", 299, "Espresso", "/images/espresso.png", "Rich, bold, and perfectly extracted."},
	{"Double Macchiato", 349, "Espresso", "/images/espresso.png", "Espresso with a dash of foamy milk."},
	{"Vanilla Latte", 499, "Espresso", "/images/espresso.png", "Smooth espresso with steamed milk and vanilla syrup."},
	{"Caramel Macchiato", 549, "Espresso", "/images/espresso.png", "Sweet and creamy with a caramel drizzle."},
	{"Cortado", 399, "Espresso", "/images/espresso.png", "Equal parts espresso and warm milk."},

	{"House Blend", 249, "Brewed", "/images/hero.png", "Our signature medium roast."},
	{"Dark Roast", 249, "Brewed", "/images/hero.png", "Bold and intense flavor profile."},
	{"Pour Over (Origin Selection)", 450, "Brewed", "/images/hero.png", "Single-origin beans brewed to perfection."},
	{"French Press", 500, "Brewed", "/images/hero.png", "Classic full-bodied brewing method."},

	{"Cold Brew", 449, "Cold", "/images/cold_brew.png", "Steeped for 20 hours for maximum smoothness."},
	{"Nitro Cold Brew", 549, "Cold", "/images/cold_brew.png", "Infused with nitrogen for a creamy head."},
	{"Iced Americano", 349, "Cold", "/images/cold_brew.png", "Espresso shots topped with cold water and ice."},
	{"Peach Iced Tea", 399, "Cold", "/images/cold_brew.png", "Refreshing brewed tea with peach notes."},
	{"Cold Brew Latte", 499, "Cold", "/images/cold_brew.png", "Smooth cold brew with your choice of milk."},

	{"Butter Croissant", 325, "Pastries", "/images/pastries.png", "Flaky, buttery, and golden brown."},
	{"Chocolate Croissant", 375, "Pastries", "/images/pastries.png", "Danish pastry filled with rich chocolate."},
	{"Blueberry Muffin", 299, "Pastries", "/images/pastries.png", "Bursting with fresh blueberries."},
	{"Almond Danish", 425, "Pastries", "/images/pastries.png", "Sweet almond filling with toasted almonds."},
	{"Cinnamon Roll", 399, "Pastries", "/images/pastries.png", "Warm and gooey with cream cheese icing."},

	{"BrewHaven Ceramic Mug", 1299, "Merchandise", "/images/merchandise.png", "12oz ceramic mug with matte finish."},
	{"Travel Tumbler", 1899, "Merchandise", "/images/merchandise.png", "Insulated stainless steel tumbler."},
	{"Signature Bean Bag (250g)", 1499, "Merchandise", "/images/merchandise.png", "Our house blend whole beans."},
	{"Coffee Scoop", 899, "Merchandise", "/images/merchandise.png", "Brass coffee scoop for perfect measurement."},
	{"Canvas Tote Bag", 999, "Merchandise", "/images/merchandise.png", "Eco-friendly tote for your coffee runs."},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.New("brewhaven-seed", cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pgCfg := database.DefaultPostgresConfig()
	pgCfg.Host = cfg.PostgresHost
	pgCfg.Port = cfg.PostgresPort
	pgCfg.User = cfg.PostgresUser
	pgCfg.Password = cfg.PostgresPass
	pgCfg.DBName = cfg.PostgresDB
	pgCfg.SSLMode = cfg.PostgresSSL

	pool, err := database.NewPostgresPool(ctx, &pgCfg, log)
	if err != nil {
		log.Error("failed to connect to postgres", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool, postgresrepo.Migrations, postgresrepo.MigrationsDir, log); err != nil {
		log.Error("failed to run migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	repo := postgresrepo.NewCatalogRepository(pool)

	if err := seed(ctx, repo, cfg.DefaultCurrency, log); err != nil {
		log.Error("seeding failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("seeding finished",
		slog.Int("categories", len(categoryDefs)),
		slog.Int("products", len(productDefs)),
	)
}

func seed(ctx context.Context, repo repository.CatalogRepository, currency string, log *slog.Logger) error {
	now := time.Now().UTC()
	categoryIDs := make(map[string]string, len(categoryDefs))

	for _, def := range categoryDefs {
		id, err := repo.UpsertCategory(ctx, &domain.Category{
			ID:        uuid.NewString(),
			Name:      def.name,
			Slug:      slug.Generate(def.name),
			ImageURL:  def.image,
			CreatedAt: now,
		})
		if err != nil {
			return err
		}
		categoryIDs[def.name] = id
		log.Info("seeded category", slog.String("name", def.name), slog.String("id", id))
	}

	for _, def := range productDefs {
		product := &domain.Product{
			ID:          uuid.NewString(),
			Name:        def.name,
			Slug:        slug.Generate(def.name),
			Description: def.description,
			Price:       def.price,
			Currency:    currency,
			CategoryID:  categoryIDs[def.category],
			ImageURL:    def.image,
			Stock:       rand.IntN(100) + 10, // #nosec G404 -- demo stock levels
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := repo.UpsertProduct(ctx, product); err != nil {
			return err
		}
		log.Info("seeded product",
			slog.String("name", def.name),
			slog.Int64("price", def.price),
		)
	}

	return nil
}

// Command seed populates an empty database with the regions, collections and
// product types the storefront header and the admin detail pages read. Rows
// that already exist are skipped, so the command can be run repeatedly.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/shubhamchoudhary-2003/fullstack/internal/auth"
	"github.com/shubhamchoudhary-2003/fullstack/internal/config"
	"github.com/shubhamchoudhary-2003/fullstack/internal/domain"
	"github.com/shubhamchoudhary-2003/fullstack/internal/repository/postgres"
	"github.com/shubhamchoudhary-2003/fullstack/pkg/database"
	apperrors "github.com/shubhamchoudhary-2003/fullstack/pkg/errors"
	"github.com/shubhamchoudhary-2003/fullstack/pkg/logger"
	"github.com/shubhamchoudhary-2003/fullstack/pkg/slug"
)

type regionDef struct {
	name      string
	currency  string
	countries []domain.Country
}

var regions = []regionDef{
	{
		name:     "Europe",
		currency: "eur",
		countries: []domain.Country{
			{ISO2: "dk", DisplayName: "Denmark"},
			{ISO2: "fr", DisplayName: "France"},
			{ISO2: "de", DisplayName: "Germany"},
			{ISO2: "it", DisplayName: "Italy"},
			{ISO2: "es", DisplayName: "Spain"},
			{ISO2: "se", DisplayName: "Sweden"},
		},
	},
	{
		name:     "United Kingdom",
		currency: "gbp",
		countries: []domain.Country{
			{ISO2: "gb", DisplayName: "United Kingdom"},
		},
	},
	{
		name:     "Croatia",
		currency: "eur",
		countries: []domain.Country{
			{ISO2: "hr", DisplayName: "Croatia"},
		},
	},
}

var collections = []struct {
	title    string
	metadata map[string]any
}{
	{"Scandinavian Simplicity", map[string]any{
		"description":             "Minimalistic designs, neutral colors, and high-quality textures",
		"collection_page_heading": "Scandinavian Simplicity",
	}},
	{"Modern Luxe", map[string]any{
		"description":             "Sophisticated and sleek, mixing comfort with elegance",
		"collection_page_heading": "Modern Luxe",
	}},
	{"Boho Chic", map[string]any{
		"description":             "Relaxed, eclectic, and full of personality",
		"collection_page_heading": "Boho Chic",
	}},
	{"Timeless Classics", map[string]any{
		"description":             "Elegant shapes and rich materials that never go out of style",
		"collection_page_heading": "Timeless Classics",
	}},
}

var productTypes = []string{"Sofas", "Arm Chairs"}

func main() {
	printToken := flag.Bool("admin-token", false, "print an admin access token after seeding")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log := logger.New("fashion-seed", cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if *printToken {
		token, err := auth.NewJWTManager(cfg.JWTSecret, 24*time.Hour).
			Issue("usr_seed_admin", "admin@medusa-test.com", auth.RoleAdmin)
		if err != nil {
			log.Error("issue admin token", slog.String("error", err.Error()))
			os.Exit(1)
		}
		fmt.Println(token)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	pool, err := database.Connect(ctx, cfg.Postgres(), log)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool, postgres.Migrations(), log); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	now := time.Now().UTC()

	regionRepo := postgres.NewRegionRepository(pool)
	existing, err := regionRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("list regions: %w", err)
	}
	if len(existing) > 0 {
		log.Info("regions already seeded", slog.Int("count", len(existing)))
	} else {
		for _, def := range regions {
			region := domain.NewRegion(def.name, def.currency, def.countries, now)
			if err := regionRepo.Create(ctx, region); err != nil {
				return fmt.Errorf("create region %q: %w", def.name, err)
			}
			log.Info("region created", slog.String("id", region.ID), slog.String("name", region.Name))
		}
	}

	collectionRepo := postgres.NewCollectionRepository(pool)
	for _, def := range collections {
		c := &domain.ProductCollection{
			ID:        domain.NewID(domain.CollectionIDPrefix),
			Title:     def.title,
			Handle:    slug.Generate(def.title),
			Metadata:  def.metadata,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := skipExisting(collectionRepo.Create(ctx, c)); err != nil {
			return fmt.Errorf("create collection %q: %w", def.title, err)
		}
		log.Info("collection seeded", slog.String("handle", c.Handle))
	}

	productTypeRepo := postgres.NewProductTypeRepository(pool)
	for _, value := range productTypes {
		pt := &domain.ProductType{
			ID:        domain.NewID(domain.ProductTypeIDPrefix),
			Value:     value,
			Metadata:  map[string]any{},
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := skipExisting(productTypeRepo.Create(ctx, pt)); err != nil {
			return fmt.Errorf("create product type %q: %w", value, err)
		}
		log.Info("product type seeded", slog.String("value", value))
	}

	return nil
}

func skipExisting(err error) error {
	if errors.Is(err, apperrors.ErrAlreadyExists) {
		return nil
	}
	return err
}

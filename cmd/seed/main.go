// Package main implements a standalone seed script that populates the
// storefront database with test accounts and a small antique catalog.
// It connects directly to PostgreSQL and writes through the repositories,
// so the data matches exactly what the server would produce.
package main

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/castrogabe/antiquepox/pkg/database"
	apperrors "github.com/castrogabe/antiquepox/pkg/errors"
	"github.com/castrogabe/antiquepox/pkg/logger"
	"github.com/castrogabe/antiquepox/pkg/slug"

	"github.com/castrogabe/antiquepox/internal/config"
	"github.com/castrogabe/antiquepox/internal/domain"
	postgresrepo "github.com/castrogabe/antiquepox/internal/repository/postgres"
	"github.com/castrogabe/antiquepox/migrations"
)

type userDef struct {
	name     string
	email    string
	password string
	isAdmin  bool
}

type productDef struct {
	name        string
	category    string
	origin      string
	finish      string
	description string
	price       int64 // cents
	stock       int
	image       string
}

var users = []userDef{
	{"Admin", "admin@example.com", "Adm1n!pass", true},
	{"Jane Buyer", "jane@example.com", "J4ne!pass2", false},
	{"Gabe Castro", "gabe@example.com", "G4be!pass2", false},
}

var products = []productDef{
	{"Victorian Oak Mirror", "mirrors", "England", "oak", "Hand-carved oak frame with original beveled glass, circa 1880.", 24500, 1, "/uploads/victorian-oak-mirror.jpg"},
	{"Art Deco Table Lamp", "lighting", "France", "brass", "Stepped brass base with a frosted glass shade, rewired for modern bulbs.", 18900, 2, "/uploads/art-deco-table-lamp.jpg"},
	{"Ming Style Porcelain Vase", "porcelain", "China", "glazed", "Blue and white underglaze vase in the Ming style, early 20th century.", 32000, 1, "/uploads/ming-style-vase.jpg"},
	{"Walnut Writing Desk", "furniture", "United States", "walnut", "Slant-front writing desk with dovetailed drawers and original hardware.", 89500, 1, "/uploads/walnut-writing-desk.jpg"},
	{"Brass Ship's Compass", "nautical", "England", "brass", "Gimbaled ship's compass in a mahogany box, fully functional.", 15500, 3, "/uploads/brass-ships-compass.jpg"},
	{"Tiffany Style Stained Glass Panel", "glass", "United States", "leaded", "Leaded glass panel with a dragonfly motif, suitable for hanging.", 42000, 1, "/uploads/stained-glass-panel.jpg"},
	{"Edwardian Silver Tea Set", "silver", "England", "sterling", "Four-piece sterling tea service with hallmarks, Sheffield 1905.", 67500, 1, "/uploads/edwardian-tea-set.jpg"},
	{"Cast Iron Mechanical Bank", "toys", "United States", "painted", "Working cast iron mechanical bank, repainted in period colors.", 9800, 4, "/uploads/mechanical-bank.jpg"},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	slogger := logger.New("antiquepox-seed", cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	pgCfg := cfg.Postgres()
	pool, err := database.NewPostgresPool(ctx, &pgCfg)
	if err != nil {
		log.Fatalf("connect to postgres: %v", err)
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool, migrations.FS, slogger); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	userRepo := postgresrepo.NewUserRepository(pool)
	productRepo := postgresrepo.NewProductRepository(pool)

	now := time.Now().UTC()

	for _, u := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), 12)
		if err != nil {
			log.Fatalf("hash password for %s: %v", u.email, err)
		}
		user := &domain.User{
			ID:           uuid.New().String(),
			Name:         u.name,
			Email:        u.email,
			PasswordHash: string(hash),
			IsAdmin:      u.isAdmin,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := userRepo.Create(ctx, user); err != nil {
			if errors.Is(err, apperrors.ErrAlreadyExists) {
				log.Printf("user %s already exists, skipping", u.email)
				continue
			}
			log.Fatalf("create user %s: %v", u.email, err)
		}
		log.Printf("created user %s (admin=%v)", u.email, u.isAdmin)
	}

	for _, p := range products {
		product := &domain.Product{
			ID:           uuid.New().String(),
			Name:         p.name,
			Slug:         slug.Generate(p.name),
			Category:     p.category,
			Image:        p.image,
			Images:       []string{p.image},
			Origin:       p.origin,
			Finish:       p.finish,
			Description:  p.description,
			Price:        p.price,
			CountInStock: p.stock,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := productRepo.Create(ctx, product); err != nil {
			if errors.Is(err, apperrors.ErrAlreadyExists) {
				log.Printf("product %q already exists, skipping", p.name)
				continue
			}
			log.Fatalf("create product %q: %v", p.name, err)
		}
		log.Printf("created product %q at $%.2f", p.name, float64(p.price)/100)
	}

	log.Println("seed complete")
}

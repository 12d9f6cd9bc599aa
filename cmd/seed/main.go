// seed crea el usuario administrador inicial si no existe.
//
// Uso: go run ./cmd/seed <email> <password>
// Lee la configuración (DB, hasher, política) de las mismas env vars que el API.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/identity-api/internal/domain/entity"
	"github.com/jhoicas/identity-api/internal/domain/password"
	"github.com/jhoicas/identity-api/internal/infrastructure/crypto"
	"github.com/jhoicas/identity-api/internal/infrastructure/postgres"
	"github.com/jhoicas/identity-api/pkg/config"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintln(os.Stderr, "uso: seed <email> <password>")
		os.Exit(1)
	}
	email, plain := os.Args[1], os.Args[2]

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}

	policy := password.Policy{
		MinLength:      cfg.Password.MinLength,
		MaxLength:      cfg.Password.MaxLength,
		RequireUpper:   cfg.Password.RequireUpper,
		RequireLower:   cfg.Password.RequireLower,
		RequireDigit:   cfg.Password.RequireDigit,
		RequireSpecial: cfg.Password.RequireSpecial,
	}
	if ok, reason := policy.Validate(plain); !ok {
		fmt.Fprintf(os.Stderr, "password rechazado: %s\n", reason)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "conexión a PostgreSQL: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	repo := postgres.NewUserRepository(pool)
	existing, err := repo.FindByEmail(email)
	if err != nil {
		fmt.Fprintf(os.Stderr, "buscar admin: %v\n", err)
		os.Exit(1)
	}
	if existing != nil {
		fmt.Printf("el usuario %s ya existe, nada que hacer\n", email)
		return
	}

	hash, err := crypto.NewHasher(cfg.Hash).Hash(plain)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hashear password: %v\n", err)
		os.Exit(1)
	}

	now := time.Now().UTC()
	roleAdmin := entity.RoleAdmin
	admin := &entity.User{
		ID:           uuid.New().String(),
		Name:         "admin",
		Email:        email,
		PasswordHash: hash,
		RoleID:       &roleAdmin,
		IsEnabled:    true,
		IsVerified:   true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := repo.Create(admin); err != nil {
		fmt.Fprintf(os.Stderr, "crear admin: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("admin creado: %s (%s)\n", admin.Email, admin.ID)
}

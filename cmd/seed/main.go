package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/kenfuse/kenfuse-api/config"
	"github.com/kenfuse/kenfuse-api/internal/domain/entity"
	"github.com/kenfuse/kenfuse-api/internal/domain/repository"
	pginfra "github.com/kenfuse/kenfuse-api/internal/infrastructure/postgres"
	"github.com/kenfuse/kenfuse-api/pkg/helpers"
)

// seed creates the bootstrap admin account when it does not exist yet.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), 2, 1, time.Minute)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	users := pginfra.NewUserRepository(pool)
	existing, err := users.GetByEmail(ctx, cfg.AdminEmail)
	switch {
	case err == nil:
		fmt.Printf("admin already present: id=%s email=%s role=%s\n", existing.ID, existing.Email, existing.Role)
		return
	case !errors.Is(err, repository.ErrNotFound):
		log.Fatalf("failed to look up admin: %v", err)
	}

	if !helpers.StrongPassword(cfg.AdminPassword) {
		log.Fatalf("ADMIN_PASSWORD must be at least %d characters with a letter and a digit", helpers.MinPasswordLength)
	}
	hash, err := helpers.HashPassword(cfg.AdminPassword)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	admin := &entity.User{
		Email:            cfg.AdminEmail,
		Phone:            cfg.AdminPhone,
		FirstName:        "Kenfuse",
		LastName:         "Admin",
		PasswordHash:     hash,
		Role:             entity.RoleAdmin,
		SubscriptionPlan: entity.PlanPremium,
		IsVerified:       true,
		IsActive:         true,
	}
	if err := users.Create(ctx, admin); err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}
	fmt.Printf("seeded admin: id=%s email=%s\n", admin.ID, admin.Email)
}

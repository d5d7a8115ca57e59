package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/Apurer/food-marketplace-api/internal/app/api"
	userpostgres "github.com/Apurer/food-marketplace-api/internal/domains/users/adapters/persistence/postgres"
	userapp "github.com/Apurer/food-marketplace-api/internal/domains/users/application"
	"github.com/Apurer/food-marketplace-api/internal/domains/users/domain"
	"github.com/Apurer/food-marketplace-api/internal/domains/users/ports"
	"github.com/Apurer/food-marketplace-api/internal/platform/migrations"
	platformpostgres "github.com/Apurer/food-marketplace-api/internal/platform/postgres"
)

// create-admin provisions an administrator and prints its first session token.
// Re-registering the subject over HTTP requires that token.
func main() {
	subject := flag.String("subject", "", "identity provider subject of the admin")
	email := flag.String("email", "", "admin email address")
	flag.Parse()
	if *subject == "" || *email == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	db, cleanup := platformpostgres.ConnectOrFallback(ctx, cfg.PostgresDSN, logger, migrations.Run)
	defer cleanup()
	if db == nil {
		log.Fatal("POSTGRES_DSN not set or connection failed; cannot create admin")
	}

	user, err := domain.NewUser(uuid.NewString(), *subject, *email, domain.RoleAdmin, time.Now().UTC())
	if err != nil {
		log.Fatalf("invalid admin: %v", err)
	}
	repo := userpostgres.NewRepository(db)
	saved, err := repo.Create(ctx, user)
	if errors.Is(err, ports.ErrAlreadyExists) {
		log.Fatalf("a user with subject %q already exists", *subject)
	}
	if err != nil {
		log.Fatalf("failed to create admin: %v", err)
	}
	token, err := userapp.NewService(repo, userpostgres.NewSessionStore(db, cfg.SessionTTL)).IssueSession(ctx, saved.ID)
	if err != nil {
		log.Fatalf("failed to issue admin session: %v", err)
	}
	logger.Info("admin created", slog.String("userId", saved.ID), slog.String("email", saved.Email))
	fmt.Println(token)
}

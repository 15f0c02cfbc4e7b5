package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-ddd-filevault/config"
	"github.com/oksasatya/go-ddd-filevault/internal/application"
	"github.com/oksasatya/go-ddd-filevault/internal/infrastructure/mongodb"
	"github.com/oksasatya/go-ddd-filevault/pkg/helpers"
)

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	mc, err := mongodb.NewClient(ctx, cfg.MongoURI, cfg.MongoConnectTimeout)
	if err != nil {
		log.Fatalf("failed to connect to mongodb: %v", err)
	}
	defer func() { _ = mc.Disconnect(context.Background()) }()

	users := mongodb.NewUserRepository(mc.Database(cfg.MongoDB))
	if err := users.EnsureIndexes(ctx); err != nil {
		log.Fatalf("failed to ensure indexes: %v", err)
	}

	svc := application.NewUserService(users, helpers.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL()), logger)
	in := application.RegisterInput{
		Name:     getenv("SEED_NAME", "Demo User"),
		Email:    getenv("SEED_EMAIL", "demo@filevault.local"),
		Password: getenv("SEED_PASSWORD", "password123"),
		Role:     getenv("SEED_ROLE", "cliente"),
	}

	res, err := svc.Register(ctx, in)
	if err != nil {
		var ae *application.Error
		if errors.As(err, &ae) && ae.Message == application.MsgEmailTaken {
			fmt.Printf("seed user already exists: email=%s\n", in.Email)
			return
		}
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("seeded user: id=%s email=%s role=%s\n", res.User.ID, res.User.Email, res.User.Role)
}

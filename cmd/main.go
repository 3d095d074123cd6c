package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/SirapobM/Api-test/config"
	"github.com/SirapobM/Api-test/db"
	"github.com/SirapobM/Api-test/internal/auth/handler"
	repo "github.com/SirapobM/Api-test/internal/auth/repository/postgres"
	"github.com/SirapobM/Api-test/internal/auth/service"
	"github.com/SirapobM/Api-test/internal/logging"
	"github.com/gofiber/fiber/v2"
)

func main() {
	cfg := config.Load()
	log := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	ctx := context.Background()

	dbPool, err := db.NewPostgresPool(ctx, cfg.DBURL)
	if err != nil {
		log.Error(ctx, "failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	userRepo := repo.NewPostgresRepository(dbPool)
	tokenService := service.NewTokenService(cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	userService := service.NewUserService(userRepo, tokenService, log)
	authHandler := handler.NewAuthHandler(userService, log)

	app := fiber.New()
	handler.RegisterRoutes(app, authHandler)

	log.Info(ctx, "listening", "port", cfg.Port, "env", cfg.Env)

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Error(ctx, "server stopped", "error", err)
		os.Exit(1)
	}
}

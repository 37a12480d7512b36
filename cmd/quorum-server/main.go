package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/quorum/pkg/quorum/auth"
	"github.com/mikepea/quorum/pkg/quorum/config"
	"github.com/mikepea/quorum/pkg/quorum/database"
	"github.com/mikepea/quorum/pkg/quorum/logging"
	"github.com/mikepea/quorum/pkg/quorum/models"
	"github.com/mikepea/quorum/pkg/quorum/repository"
	"github.com/mikepea/quorum/pkg/quorum/server"

	_ "github.com/mikepea/quorum/api/swagger"
)

// @title Quorum API
// @version 1.0
// @description A question and answer forum backend.

// @contact.name Quorum Maintainers
// @contact.url https://github.com/mikepea/quorum

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT access token. Format: "Bearer {token}"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "quorum-server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}

	logger, err := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	// Connect to database
	db, err := database.Open(cfg.DatabaseURL, logger)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer database.Close(db)

	// Run auto-migrations
	if err := models.AutoMigrate(db); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	gin.SetMode(cfg.GinMode)
	router := server.NewRouter(server.Options{
		Store:      repository.New(db),
		Issuer:     auth.NewTokenIssuer(cfg.SecretKey, cfg.TokenTTL),
		BcryptCost: cfg.BcryptCost,
		Logger:     logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.Run(ctx, cfg.Addr(), router, logger)
}

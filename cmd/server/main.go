// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/marketplace-catalog/internal/config"
	"github.com/javajoker/marketplace-catalog/internal/database"
	"github.com/javajoker/marketplace-catalog/internal/i18n"
	"github.com/javajoker/marketplace-catalog/internal/logger"
	"github.com/javajoker/marketplace-catalog/internal/repository"
	"github.com/javajoker/marketplace-catalog/internal/repository/memory"
	"github.com/javajoker/marketplace-catalog/internal/repository/postgres"
	"github.com/javajoker/marketplace-catalog/internal/router"
	"github.com/javajoker/marketplace-catalog/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	log := logger.New(cfg.Log)

	// Initialize i18n
	if err := i18n.Initialize(); err != nil {
		log.WithError(err).Fatal("failed to initialize i18n")
	}

	repos, health, cleanup := openRepositories(cfg, log)
	defer cleanup()

	storageService, err := services.NewStorageService(cfg.AWS, cfg.Catalog.MaxUploadBytes, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize storage")
	}

	notificationService := services.NewNotificationService(repos.Notifications, log)
	svc := router.Services{
		Vendors:  services.NewVendorService(repos, log),
		Products: services.NewProductService(repos, storageService, cfg.Catalog, log),
		Reviews:  services.NewReviewService(repos, nil, log),
		Admin:    services.NewAdminService(repos, notificationService, log),
	}

	// Set Gin mode
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := router.Initialize(cfg, svc, health, log)
	defer r.Stop()

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      r.Engine,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Server.Port).Info("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("server forced to shutdown")
		return
	}

	log.Info("server exited")
}

// openRepositories selects the storage driver. The returned cleanup closes
// whatever connection was opened.
func openRepositories(cfg *config.Config, log *logrus.Logger) (*repository.Repositories, router.HealthCheck, func()) {
	if cfg.Database.Driver == "memory" {
		log.Warn("using in-memory storage; data is lost on restart")
		return memory.NewStore().Repositories(), nil, func() {}
	}

	db, err := database.Initialize(cfg.Database, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize database")
	}

	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(db, log); err != nil {
			log.WithError(err).Fatal("failed to run migrations")
		}
	}

	return postgres.NewRepositories(db), pingHealth(db), func() { database.Close(db, log) }
}

func pingHealth(db *gorm.DB) router.HealthCheck {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}

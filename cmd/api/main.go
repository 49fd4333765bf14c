// cmd/api/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rubybelly/lechon-cart/internal/config"
	"github.com/rubybelly/lechon-cart/internal/domain/cart"
	"github.com/rubybelly/lechon-cart/internal/domain/catalog"
	"github.com/rubybelly/lechon-cart/internal/infrastructure/database/postgres"
	"github.com/rubybelly/lechon-cart/internal/infrastructure/database/redis"
	"github.com/rubybelly/lechon-cart/internal/interfaces/http"
	"github.com/rubybelly/lechon-cart/internal/interfaces/http/routes"
	"github.com/rubybelly/lechon-cart/internal/interfaces/http/session"
	"github.com/rubybelly/lechon-cart/internal/pkg/auth"
	"github.com/rubybelly/lechon-cart/internal/pkg/logger"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLog := logger.New(cfg)
	appLog.WithFields(logrus.Fields{
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	}).Infof("Starting %s", cfg.App.Name)

	deps := routes.Dependencies{
		Config: cfg,
		Tokens: auth.NewJWTManager(cfg),
	}
	checks := map[string]http.HealthChecker{}
	var limiter goredis.Cmdable

	// Cart storage: one Redis namespace per session, or process memory
	var storageFactory session.StorageFactory = session.NewMemoryStorages().Storage
	if cfg.UsesRedis() {
		redisClient, err := redis.NewConnection(cfg, logger.Component(appLog, "redis"))
		if err != nil {
			appLog.WithError(err).Fatal("Failed to connect to Redis")
		}
		defer redisClient.Close()

		rdb := redisClient.GetClient()
		storageFactory = func(sessionID string) cart.LocalStorage {
			return redis.NewSessionStorage(rdb, sessionID, cfg.Cart.EntryExpiry)
		}
		limiter = rdb
		checks["redis"] = redisClient
	} else {
		appLog.Warn("Cart storage is in memory; carts are lost on restart")
	}

	// Catalog database is optional; without it add requests carry the product
	if cfg.Database.Enabled {
		db, err := postgres.NewConnection(cfg, logger.Component(appLog, "database"))
		if err != nil {
			appLog.WithError(err).Fatal("Failed to connect to database")
		}
		defer db.Close()

		migration := postgres.NewMigration(db.GetDB(), logger.Component(appLog, "migration"))
		if err := migration.RunAutoMigrations(); err != nil {
			appLog.WithError(err).Fatal("Database migration failed")
		}
		if err := migration.CreateIndexes(); err != nil {
			appLog.WithError(err).Warn("Index creation failed")
		}

		if cfg.IsDevelopment() {
			if err := migration.SeedInitialData(); err != nil {
				appLog.WithError(err).Warn("Data seeding failed")
			}
			if err := migration.GetTableInfo(); err != nil {
				appLog.WithError(err).Warn("Failed to read table info")
			}
		}

		deps.Catalog = catalog.NewService(db.GetDB())
		checks["database"] = db
	}

	storeOpts := []cart.Option{
		cart.WithStorageKey(cfg.Cart.StorageKey),
		cart.WithPersistTimeout(cfg.Cart.PersistTimeout),
	}
	if cfg.Cart.WriteBehind {
		storeOpts = append(storeOpts, cart.WithWriteBehind())
	}
	sessions := session.NewRegistry(cfg.Cart.SessionTTL, storageFactory, logger.Component(appLog, "session"), storeOpts...)
	deps.Sessions = sessions

	server := http.NewServer(cfg, appLog, deps, limiter, checks)

	go func() {
		if err := server.Start(); err != nil {
			appLog.WithError(err).Fatal("Failed to start HTTP server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLog.Info("Shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		appLog.WithError(err).Error("Failed to shutdown HTTP server gracefully")
	}

	// Flush pending cart writes before the stores' backends close
	sessions.Close()

	appLog.Info("Server shutdown completed")
}

package main

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/vendora/catalog-service/config"
	"github.com/vendora/catalog-service/internal/category"
	catRepoPkg "github.com/vendora/catalog-service/internal/category/repository"
	catUCPkg "github.com/vendora/catalog-service/internal/category/usecase"
	"github.com/vendora/catalog-service/internal/importer"
	"github.com/vendora/catalog-service/internal/metrics"
	"github.com/vendora/catalog-service/internal/product"
	prodRepoPkg "github.com/vendora/catalog-service/internal/product/repository"
	prodUCPkg "github.com/vendora/catalog-service/internal/product/usecase"
	listenerPkg "github.com/vendora/catalog-service/internal/stock/listener"
	transport "github.com/vendora/catalog-service/internal/transport/http"
	"github.com/vendora/catalog-service/internal/verification"
	"github.com/vendora/catalog-service/pkg/broker"
	"github.com/vendora/catalog-service/pkg/cache"
	"github.com/vendora/catalog-service/pkg/logger"
	"github.com/vendora/catalog-service/pkg/postgres"
	"github.com/vendora/catalog-service/pkg/search"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load()
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	appLogger := logger.New(&logger.Config{
		IsDevelopment:     cfg.Server.AppEnv == "dev" || cfg.Server.AppEnv == "development",
		Level:             cfg.Logger.Level,
		Encoding:          cfg.Logger.Encoding,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	})
	defer appLogger.Sync()

	// 3. Connect to Database
	db, err := postgres.New(&postgres.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))

	// 3.5 Run migrations
	if err := runMigrations(cfg); err != nil {
		appLogger.Fatal("Could not run migrations", zap.Error(err))
	}
	appLogger.Info("Database migrations applied")

	// 4. Initialize Repositories
	var catRepo category.Repository = catRepoPkg.NewPGRepository(db)
	var prodRepo product.Repository = prodRepoPkg.NewPGRepository(db)

	// 5. Initialize Redis
	redisClient, err := cache.NewRedisClient(&cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))

	verifyStore := verification.NewStore(redisClient.Client, time.Duration(cfg.Verification.CodeTTLSeconds)*time.Second)

	// 5.5 Initialize Kafka Consumer
	kafkaConsumer := broker.NewConsumer(&broker.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
		GroupID: cfg.Kafka.GroupID,
	})
	defer kafkaConsumer.Close()
	appLogger.Info("Connected to Kafka Consumer", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))

	// 5.8 Initialize Elasticsearch
	esClient, err := search.NewClient(&search.Config{
		Addresses: cfg.Elastic.Addresses,
		Username:  cfg.Elastic.Username,
		Password:  cfg.Elastic.Password,
	})
	if err != nil {
		appLogger.Warn("Could not connect to Elasticsearch (search features limited)", zap.Error(err))
		esClient = nil
	} else {
		appLogger.Info("Connected to Elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
	}

	// 6. Initialize UseCases
	catUC := catUCPkg.NewCategoryUseCase(catRepo, appLogger)
	prodUC := prodUCPkg.NewProductUseCase(prodRepo, redisClient, esClient, appLogger)
	importPipeline := importer.NewPipeline(prodUC, prodRepo, catRepo, appLogger)

	// 6.5 Start the order-event stock listener
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stockListener := listenerPkg.New(kafkaConsumer, prodUC, appLogger)
	go func() {
		if err := stockListener.Run(ctx); err != nil {
			appLogger.Error("stock listener stopped", zap.Error(err))
		}
	}()

	// 6.8 Metrics endpoint on its own listener
	if cfg.Metrics.Enabled {
		go func() {
			mux := nethttp.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			appLogger.Info("Starting metrics server", zap.String("addr", cfg.Metrics.Addr))
			if err := nethttp.ListenAndServe(cfg.Metrics.Addr, mux); err != nil {
				appLogger.Error("metrics server stopped", zap.Error(err))
			}
		}()
	}

	// 7. Start HTTP Server
	app := transport.NewApp("Vendora Catalog Service", appLogger)
	transport.SetupRoutes(app, &transport.Handlers{
		Products:     transport.NewProductHandler(prodUC, appLogger),
		Categories:   transport.NewCategoryHandler(catUC, appLogger),
		Import:       transport.NewImportHandler(importPipeline, cfg.Uploads.Dir, appLogger),
		Verification: transport.NewVerificationHandler(verifyStore, appLogger),
	})

	port := cfg.Server.HTTPPort
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	go func() {
		appLogger.Info("Starting HTTP server", zap.String("port", port))
		if err := app.Listen(port); err != nil {
			appLogger.Fatal("failed to serve", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	cancel()
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		appLogger.Error("shutdown error", zap.Error(err))
	}
	appLogger.Info("Server stopped")
}

func runMigrations(cfg *config.Config) error {
	url := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.Postgres.User, cfg.Postgres.Password,
		cfg.Postgres.Host, cfg.Postgres.Port,
		cfg.Postgres.DBName, cfg.Postgres.SSLMode,
	)
	m, err := migrate.New("file://"+cfg.Postgres.MigrationsPath, url)
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

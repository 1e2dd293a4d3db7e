package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fekuna/omnipos-restaurant-service/config"
	"github.com/fekuna/omnipos-restaurant-service/internal/events"
	"github.com/fekuna/omnipos-restaurant-service/internal/middleware"
	"github.com/fekuna/omnipos-restaurant-service/pkg/broker"
	"github.com/fekuna/omnipos-restaurant-service/pkg/cache"
	"github.com/fekuna/omnipos-restaurant-service/pkg/logger"
	"github.com/fekuna/omnipos-restaurant-service/pkg/postgres"
	"github.com/fekuna/omnipos-restaurant-service/pkg/search"

	billH "github.com/fekuna/omnipos-restaurant-service/internal/bill/handler"
	billRepoPkg "github.com/fekuna/omnipos-restaurant-service/internal/bill/repository"
	billUCPkg "github.com/fekuna/omnipos-restaurant-service/internal/bill/usecase"

	catalogH "github.com/fekuna/omnipos-restaurant-service/internal/catalog/handler"
	catalogRepoPkg "github.com/fekuna/omnipos-restaurant-service/internal/catalog/repository"
	catalogUCPkg "github.com/fekuna/omnipos-restaurant-service/internal/catalog/usecase"

	orderH "github.com/fekuna/omnipos-restaurant-service/internal/order/handler"
	orderRepoPkg "github.com/fekuna/omnipos-restaurant-service/internal/order/repository"
	orderUCPkg "github.com/fekuna/omnipos-restaurant-service/internal/order/usecase"

	saleH "github.com/fekuna/omnipos-restaurant-service/internal/sale/handler"
	saleRepoPkg "github.com/fekuna/omnipos-restaurant-service/internal/sale/repository"
	saleUCPkg "github.com/fekuna/omnipos-restaurant-service/internal/sale/usecase"

	tableH "github.com/fekuna/omnipos-restaurant-service/internal/table/handler"
	tableRepoPkg "github.com/fekuna/omnipos-restaurant-service/internal/table/repository"
	tableUCPkg "github.com/fekuna/omnipos-restaurant-service/internal/table/usecase"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load() // Load .env file if it exists
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          "json",
		Level:             "info",
		DisableCaller:     false,
		DisableStacktrace: false,
	}

	if cfg.Server.AppEnv == "dev" || cfg.Server.AppEnv == "development" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = "console"
		logConfig.Level = "debug"
	}

	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	// 3. Connect to Database
	db, err := postgres.NewPostgres(&postgres.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Postgres.ConnMaxIdleTime,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))

	txm := postgres.NewTxManager(db)

	// 4. Initialize Redis
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

	// 5. Initialize Kafka Producer
	producer := broker.NewProducer(&broker.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
	})
	defer producer.Close()
	publisher := events.NewKafkaPublisher(producer)
	appLogger.Info("Connected to Kafka", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))

	// 6. Initialize Elasticsearch
	esClient, err := search.NewClient(&search.Config{
		Addresses: cfg.Elastic.Addresses,
		Username:  cfg.Elastic.Username,
		Password:  cfg.Elastic.Password,
	})
	if err != nil {
		appLogger.Warn("Could not connect to Elasticsearch (search falls back to the database)", zap.Error(err))
		esClient = nil
	} else {
		appLogger.Info("Connected to Elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
	}

	// 7. Initialize Repositories
	tableRepo := tableRepoPkg.NewPGRepository(db)
	orderRepo := orderRepoPkg.NewPGRepository(db)
	saleRepo := saleRepoPkg.NewPGRepository(db)
	billRepo := billRepoPkg.NewPGRepository(db)
	catalogRepo := catalogRepoPkg.NewPGRepository(db)

	// 8. Initialize UseCases
	catalogUC := catalogUCPkg.NewCatalogUseCase(catalogRepo, redisClient, esClient, appLogger)
	tableUC := tableUCPkg.NewTableUseCase(tableRepo, saleRepo, txm, publisher, appLogger)
	orderUC := orderUCPkg.NewOrderUseCase(orderRepo, tableRepo, catalogRepo, publisher, appLogger)
	saleUC := saleUCPkg.NewSaleUseCase(saleRepo, tableRepo, orderRepo, catalogRepo, txm, publisher, appLogger)
	billUC := billUCPkg.NewBillUseCase(billRepo, saleRepo, tableRepo, txm, publisher, appLogger)

	if esClient != nil {
		indexCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := catalogUC.ReindexAll(indexCtx); err != nil {
			appLogger.Warn("Could not rebuild product search index", zap.Error(err))
		}
		cancel()
	}

	// 9. Initialize Handlers and Routes
	if !logConfig.IsDevelopment {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(appLogger))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	v1 := router.Group("/api/v1")
	tableH.NewTableHandler(tableUC, appLogger).MapRoutes(v1.Group("/restaurant-tables"))
	orderH.NewOrderHandler(orderUC, appLogger).MapRoutes(v1.Group("/orders"))
	saleH.NewSaleHandler(saleUC, appLogger).MapRoutes(v1.Group("/sales"))
	billH.NewBillHandler(billUC, appLogger).MapRoutes(v1.Group("/bills"))
	catalogH.NewCatalogHandler(catalogUC, appLogger).MapRoutes(v1.Group("/catalog"))

	// 10. Start HTTP Server
	port := cfg.Server.HTTPPort
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	srv := &http.Server{
		Addr:         port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	appLogger.Info("Starting HTTP server", zap.String("port", port))

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("failed to serve", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("forced shutdown", zap.Error(err))
	}
	appLogger.Info("Server stopped")
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/shenikar/incident_reporting_system/internal/config"
	v1 "github.com/shenikar/incident_reporting_system/internal/handler/http/v1"
	"github.com/shenikar/incident_reporting_system/internal/identity"
	"github.com/shenikar/incident_reporting_system/internal/metrics"
	"github.com/shenikar/incident_reporting_system/internal/repository"
	"github.com/shenikar/incident_reporting_system/internal/repository/memory"
	"github.com/shenikar/incident_reporting_system/internal/service"
	"github.com/shenikar/incident_reporting_system/internal/webhook"
	"github.com/shenikar/incident_reporting_system/pkg/logger"
	"github.com/shenikar/incident_reporting_system/pkg/postgres"
	redisclient "github.com/shenikar/incident_reporting_system/pkg/redis"
	"github.com/sirupsen/logrus"

	_ "github.com/shenikar/incident_reporting_system/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type repositories struct {
	incidents service.IncidentRepository
	accounts  service.AccountRepository
	contacts  service.EmergencyContactRepository
}

// @title Incident Reporting System API
// @version 1.0
// @description Citizens report incidents, departments claim and resolve them.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	log := logger.New(cfg.LogLevel)

	// Контекст для graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Инициализация Redis клиента: кэш и очередь вебхуков
	var (
		redisClient *redis.Client
		checks      []v1.HealthCheck
	)
	if cfg.RequiresRedis() {
		redisClient, err = redisclient.NewRedisClient(ctx, redisclient.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		log.Info("Successfully connected to Redis")
		checks = append(checks, redisclient.HealthCheck{Client: redisClient})
	} else {
		log.Info("Redis is not required for memory storage with kafka events, skipping")
	}

	// Инициализация хранилища
	var repos repositories
	switch cfg.StorageDriver {
	case config.StorageDriverPostgres:
		log.Info("Running database migrations...")
		if err := postgres.RunMigrations(cfg.DatabaseURL, "file://migrations"); err != nil {
			log.Fatalf("Failed to run database migrations: %v", err)
		}
		log.Info("Database migrations applied successfully")

		dbpool, err := postgres.NewPostgresDB(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to PostgreSQL: %v", err)
		}
		defer dbpool.Close()
		log.Info("Successfully connected to PostgreSQL")

		repos = repositories{
			incidents: repository.NewIncidentRepository(dbpool, redisClient, cfg.IncidentCacheTTL),
			accounts:  repository.NewAccountRepository(dbpool),
			contacts:  repository.NewEmergencyContactRepository(dbpool, redisClient, cfg.IncidentCacheTTL),
		}
		checks = append(checks, postgres.HealthCheck{Pool: dbpool})
	case config.StorageDriverMemory:
		log.Warn("Using in-memory storage, data is lost on restart")
		store := memory.New()
		repos = repositories{incidents: store, accounts: store, contacts: store}
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	// Инициализация издателя событий
	publisher, closePublisher, err := newPublisher(cfg, redisClient)
	if err != nil {
		log.Fatalf("Failed to create event publisher: %v", err)
	}

	// Воркер доставки вебхуков читает очередь Redis
	var webhookWorker *webhook.WebhookWorker
	if cfg.EventsBackend == config.EventsBackendRedis {
		webhookWorker = webhook.NewWebhookWorker(redisClient, log, cfg, m)
		webhookWorker.Start(ctx)
	}

	// Инициализация сервисов
	tokens := identity.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.TokenTTL)
	services := v1.Services{
		Incidents: service.NewIncidentService(repos.incidents, repos.accounts, log, cfg, publisher, m),
		Accounts:  service.NewAccountService(repos.accounts, log),
		Auth:      service.NewAuthService(repos.accounts, tokens, log, publisher, m),
		Contacts:  service.NewEmergencyContactService(repos.contacts, log),
	}

	if cfg.EmergencyContactsFile != "" {
		n, err := services.Contacts.Seed(ctx, cfg.EmergencyContactsFile)
		if err != nil {
			log.Fatalf("Failed to seed emergency contacts: %v", err)
		}
		log.Infof("Seeded %d emergency contacts", n)
	}

	// Инициализация хэндлеров
	handler := v1.NewHandler(services, tokens, log, checks...)

	// Настройка Gin роутера
	router := gin.New()
	router.Use(gin.Recovery(), v1.RequestLogger(log), v1.RequestMetrics(m))
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	// Добавление маршрута для Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Запуск HTTP-сервера
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Запуск сервера в горутине
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Error starting HTTP server: %v", err)
		}
	}()
	log.Infof("HTTP server started on port %s", cfg.HTTPPort)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Received shutdown signal, shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}

	cancel()
	if webhookWorker != nil {
		select {
		case <-webhookWorker.Done():
		case <-shutdownCtx.Done():
			log.Warn("Webhook worker did not stop in time")
		}
	}
	if err := closePublisher(shutdownCtx); err != nil {
		log.WithError(err).Error("Failed to close event publisher")
	}

	log.Info("Server gracefully stopped")
}

// newPublisher выбирает транспорт событий по EVENTS_BACKEND
func newPublisher(cfg *config.Config, redisClient *redis.Client) (webhook.WebhookPublisher, func(context.Context) error, error) {
	switch cfg.EventsBackend {
	case config.EventsBackendKafka:
		p, err := webhook.NewKafkaWebhookPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			return nil, nil, err
		}
		return p, p.Close, nil
	default:
		return webhook.NewRedisWebhookPublisher(redisClient), func(context.Context) error { return nil }, nil
	}
}

package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"ms-registration/internal/analytics"
	analytics_api "ms-registration/internal/analytics/api"
	"ms-registration/internal/auth"
	"ms-registration/internal/cache"
	"ms-registration/internal/checkin/qr"
	"ms-registration/internal/config"
	"ms-registration/internal/database/migrations"
	"ms-registration/internal/datastore"
	"ms-registration/internal/kafka"
	"ms-registration/internal/logger"
	"ms-registration/internal/reconciliation"
	"ms-registration/internal/reconciliation/reconciliation_api"
	"ms-registration/internal/registration"
	"ms-registration/internal/registration/registration_api"
	"ms-registration/internal/sse"
	"ms-registration/internal/utils"
	"ms-registration/internal/webhook"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

func connectDatabase(cfg config.DatabaseConfig, logger *logger.Logger) *sql.DB {
	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		logger.Info("DATABASE", fmt.Sprintf("Attempting to connect to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb, err = sql.Open("postgres", cfg.DSN())
		if err != nil {
			logger.Error("DATABASE", fmt.Sprintf("Failed to open PostgreSQL: %v", err))
			time.Sleep(2 * time.Second)
			continue
		}

		err = sqldb.Ping()
		if err == nil {
			break
		}

		logger.Error("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
		sqldb.Close()
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}

	if err != nil {
		logger.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL after %d attempts: %v", maxRetries, err))
	}

	sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.MaxLifetime)

	logger.Info("DATABASE", "✅ PostgreSQL connection successful")
	return sqldb
}

func runMigrations(sqldb *sql.DB, logger *logger.Logger) {
	runner := migrations.NewRunner(sqldb, migrations.DefaultOptions(), logger)
	if err := runner.RunMigrations(); err != nil {
		logger.Fatal("MIGRATE", fmt.Sprintf("Database migration failed: %v", err))
	}
	logger.Info("MIGRATE", "✅ Database migrations applied")
}

// setupKafka returns a no-op publisher when Kafka is disabled.
func setupKafka(cfg config.KafkaConfig, logger *logger.Logger) (kafka.Publisher, *kafka.Producer) {
	if !cfg.Enabled {
		logger.Info("KAFKA", "Kafka disabled, domain events will not be published")
		return kafka.NopPublisher{}, nil
	}

	logger.Info("KAFKA", fmt.Sprintf("Using Kafka brokers %v", cfg.Brokers))
	if err := kafka.EnsureTopicsExist(cfg.Brokers, cfg.Topics.All(), logger); err != nil {
		logger.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
	} else {
		logger.Info("KAFKA", "Required topics ensured successfully")
	}

	producer := kafka.NewProducer(cfg.Brokers, cfg.Topics, logger)
	logger.Info("KAFKA", "Kafka producer initialized successfully")
	return producer, producer
}

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println(".env file not found, using environment variables")
	}
	cfg := config.Load()

	log := logger.NewLoggerWithOptions(logger.Options{
		Dir:     cfg.Log.Dir,
		Service: "registration-service",
		Level:   cfg.Log.Level,
	})
	defer log.Close()

	log.Info("APP", "Starting Registration Service initialization")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sqldb := connectDatabase(cfg.Database, log)
	if cfg.Database.AutoMigrate {
		runMigrations(sqldb, log)
	}
	bunDB := bun.NewDB(sqldb, pgdialect.New())
	defer bunDB.Close()

	store := datastore.New(bunDB, log)

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		client, err := cache.Connect(cfg.Redis, log)
		if err != nil {
			log.Warn("REDIS", "Continuing without Redis caches")
		} else {
			redisClient = client
			defer redisClient.Close()
		}
	}

	var checkIns reconciliation.CheckInStore = store
	if cfg.Dashboard.CheckInStore == config.CheckInStoreRedis {
		if redisClient == nil {
			log.Fatal("CONFIG", "CHECKIN_STORE=redis requires a reachable Redis")
		}
		checkIns = cache.NewCheckInSet(redisClient)
		log.Info("CHECKIN", "Check-ins are kept in Redis")
	} else {
		log.Info("CHECKIN", "Check-ins are kept on payment orders")
	}

	publisher, producer := setupKafka(cfg.Kafka, log)
	if producer != nil {
		defer producer.Close()
	}

	notifier := webhook.NewNotifier(cfg.Webhook.URL, cfg.Webhook.Timeout, log)
	if !notifier.Enabled() {
		log.Warn("WEBHOOK", "WEBHOOK_URL not set, registration notifications are disabled")
	}

	if err := cfg.CheckQRSecret(); err != nil {
		log.Fatal("CONFIG", err.Error())
	}
	if cfg.QRSecret == config.DefaultQRSecret {
		log.Warn("CONFIG", "QR_SECRET not set, check-in codes use the placeholder secret")
	}
	qrGenerator, err := qr.NewGenerator(cfg.QRSecret)
	if err != nil {
		log.Fatal("CONFIG", fmt.Sprintf("Invalid QR secret: %v", err))
	}

	verifier, err := auth.NewVerifier(ctx, cfg.Auth)
	if err != nil {
		log.Fatal("AUTH", fmt.Sprintf("Failed to set up operator auth: %v", err))
	}
	if verifier == nil {
		log.Warn("AUTH", "Operator auth disabled, dashboard routes are open")
	}

	registrationService := registration.NewRegistrationService(store, store, notifier, publisher, log)

	dashboardEvents := sse.NewDashboardEventEmitter()
	view := reconciliation.NewView(store, checkIns, publisher, log, cfg.Dashboard.RefreshInterval)
	view.Events = dashboardEvents
	if redisClient != nil {
		registrationService.Cache = cache.NewEventCache(redisClient, cfg.Redis.EventCacheTTL)
		view.Cache = cache.NewSnapshotCache(redisClient, cfg.Dashboard.RefreshInterval)
	}

	analyticsService := analytics.NewService(store, checkIns, cfg.Reports.Location(), log)

	registrationHandler := registration_api.NewHandler(registrationService, log)
	dashboardHandler := reconciliation_api.NewHandler(view, qrGenerator, dashboardEvents, cfg.Dashboard.DefaultActor, log)
	analyticsHandler := analytics_api.NewHandler(analyticsService, log)

	log.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(logger.Middleware(log))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := store.Ping(r.Context()); err != nil {
			utils.WriteJSON(w, http.StatusServiceUnavailable, utils.ErrorResponse("database unavailable", "system"))
			return
		}
		utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("ok", nil))
	})

	// --- Public Routes ---
	registrationHandler.Routes(r)
	log.Info("ROUTER", "Registration routes registered under /api")

	// --- Operator Routes ---
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(verifier, cfg.Dashboard.DefaultActor, log))

		dashboardHandler.Routes(r)
		log.Info("ROUTER", "Dashboard routes registered under /api/dashboard")

		analyticsHandler.RegisterRoutes(r)
		log.Info("ROUTER", "Report routes registered under /api/reports")
	})

	poller := reconciliation.NewPoller(view, cfg.Dashboard.EventCodes, cfg.Dashboard.RefreshInterval, log)
	go poller.Run(ctx)

	if cfg.Kafka.Enabled {
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topics.RegistrationCreated, cfg.Kafka.GroupID, log)
		defer consumer.Close()
		go consumer.Start(ctx, func(ctx context.Context, evt kafka.RegistrationCreated) {
			if !view.IsActive(evt.EventCode) && !slices.Contains(cfg.Dashboard.EventCodes, evt.EventCode) {
				return
			}
			if _, err := view.Refresh(ctx, evt.EventCode); err != nil {
				log.Warn("RECONCILE", fmt.Sprintf("refresh after %s failed: %v", evt.OrderNumber, err))
			}
		})
	}

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("🚀 Registration Service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	log.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-ctx.Done()

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		log.Info("HTTP", "✅ Registration Service shutdown complete")
	}
}

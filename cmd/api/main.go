package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmbondo/kitanda-backend/internal/config"
	"github.com/jmbondo/kitanda-backend/internal/modules/catalog"
	"github.com/jmbondo/kitanda-backend/internal/modules/mailer"
	"github.com/jmbondo/kitanda-backend/internal/modules/order"
	"github.com/jmbondo/kitanda-backend/internal/modules/partner"
	"github.com/jmbondo/kitanda-backend/internal/modules/payment"
	"github.com/jmbondo/kitanda-backend/internal/modules/pricing"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	db, err := sql.Open("postgres", cfg.Server.DatabaseURL)
	if err != nil {
		logger.Fatal("opening database", zap.Error(err))
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatal("pinging database", zap.Error(err))
	}
	logger.Info("connected to database")

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		logger.Fatal("pinging redis", zap.Error(err))
	}
	defer rdb.Close()

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)

	auth := partner.Authenticator(cfg.JWT.Secret)

	// ── Partners ────────────────────────────────────────────
	partnerRepo := partner.NewPostgresRepository(db)
	partnerService := partner.NewService(partnerRepo, cfg.JWT.Secret)
	partner.NewHandler(partnerService, cfg.JWT.Secret, cfg.Server.AdminAPIKey).RegisterRoutes(router)

	// ── Pricing & stock overrides ───────────────────────────
	pricingRepo := pricing.NewPostgresRepository(db)
	ingestor := pricing.NewIngestor(pricingRepo, logger)

	// ── Catalog ─────────────────────────────────────────────
	catalogClient := catalog.NewClient(cfg.Catalog.BaseURL, cfg.Catalog.ConsumerKey, cfg.Catalog.ConsumerSecret, logger)
	pageCache := catalog.NewRedisPageCache(rdb, time.Duration(cfg.Catalog.CacheTTLSecs)*time.Second, logger)
	catalogService := catalog.NewService(catalogClient, pageCache, pricingRepo, logger)
	mirrorRepo := catalog.NewPostgresMirrorRepository(db)
	syncer := catalog.NewSyncer(catalogClient, mirrorRepo, pageCache, logger)
	catalog.NewHandler(catalogService, syncer, partnerService, auth).RegisterRoutes(router)

	pricing.NewHandler(ingestor, pageCache, auth, logger).RegisterRoutes(router)

	// ── Orders & payments ───────────────────────────────────
	mail := mailer.New(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.Username, cfg.Mail.Password, cfg.Mail.From, logger)

	orderRepo := order.NewPostgresRepository(db)
	tokenCache := payment.NewRedisTokenCache(rdb, logger)
	gateway := payment.NewAppyPayGateway(
		cfg.AppyPay.BaseURL,
		cfg.AppyPay.TokenURL,
		cfg.AppyPay.ClientID,
		cfg.AppyPay.ClientSecret,
		cfg.AppyPay.Resource,
		tokenCache,
		logger,
	)
	chargeWorker := payment.NewWorker(gateway, orderRepo, partnerRepo, mail, cfg.Mail.AdminEmail, cfg.AppyPay.ChargeWorkers, logger)

	orderService := order.NewService(orderRepo, chargeWorker, logger)
	order.NewHandler(orderService, auth).RegisterRoutes(router)

	paymentService := payment.NewService(orderRepo, pricingRepo, mirrorRepo, logger)
	payment.NewHandler(paymentService).RegisterRoutes(router)

	// ── Start server ────────────────────────────────────────
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	chargeWorker.Start(workerCtx)

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		logger.Info("api server starting", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	chargeWorker.Stop()
	stopWorkers()
}

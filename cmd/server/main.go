package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"etuitions-server/config"
	"etuitions-server/internal/api"
	"etuitions-server/internal/auth"
	"etuitions-server/internal/broker"
	"etuitions-server/internal/payments"
	"etuitions-server/internal/redisclient"
	"etuitions-server/internal/service"
	"etuitions-server/internal/store"
	"etuitions-server/internal/util"

	"github.com/gin-gonic/gin"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting etuitions server")

	tp, err := util.InitTracer("etuitions-server", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Database connected")

	verifier, err := auth.NewFirebaseVerifier(context.Background(), cfg.Firebase.ServiceKey)
	if err != nil {
		log.Fatalf("Failed to initialize identity verifier: %v", err)
	}

	// The listing cache is an optimization; run without it if Redis is down.
	var cache service.ListingCache
	redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Printf("Redis unavailable, listings served from database only: %v", err)
	} else {
		defer redisClient.Close()
		cache = redisClient
		log.Println("Redis connected")
	}

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicEvents)
	defer producer.Close()
	log.Println("Kafka producer initialized")

	eventPublisher := broker.NewEventPublisher(producer)

	provider := payments.NewStripeProvider(cfg.Stripe.SecretKey)

	providerTimeout := time.Duration(cfg.Business.ProviderTimeoutSeconds) * time.Second
	storeTimeout := time.Duration(cfg.Business.StoreTimeoutSeconds) * time.Second
	cacheTTL := time.Duration(cfg.Business.CacheTTLSeconds) * time.Second

	userService := service.NewUserService(db, eventPublisher)
	catalogService := service.NewCatalogService(db, db, cache, cacheTTL)
	paymentService := service.NewPaymentService(
		provider, db, db, eventPublisher,
		cfg.Client.Origin, providerTimeout, storeTimeout)

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(userService, catalogService, paymentService, verifier)
	handler.SetupRoutes(router, cfg.Client.Origin)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/auth"
	"github.com/junaidrashid-git/storefront-api/checkout"
	"github.com/junaidrashid-git/storefront-api/config"
	orderControllers "github.com/junaidrashid-git/storefront-api/controllers/order"
	"github.com/junaidrashid-git/storefront-api/events"
	"github.com/junaidrashid-git/storefront-api/logging"
	"github.com/junaidrashid-git/storefront-api/metrics"
	"github.com/junaidrashid-git/storefront-api/routes"
	"github.com/junaidrashid-git/storefront-api/storage"
	"github.com/junaidrashid-git/storefront-api/store"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	log.SetFlags(0)
	logging.Log(logging.Fields{Step: "startup", Status: "starting"})

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := store.Migrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	st := store.New(db, store.Options{
		Timeout:   cfg.StoreTimeout,
		Isolation: cfg.CheckoutIsolation,
		Topic:     cfg.KafkaTopic,
	})

	authSvc := auth.NewService(
		st.Users,
		auth.BcryptHasher{Cost: bcrypt.DefaultCost},
		auth.NewJWTIssuer(cfg.JWTSecret, cfg.TokenTTL),
		cfg.AllowAdminSignup,
	)

	serverMetrics := metrics.NewServerMetrics(logging.Service)
	hub := orderControllers.NewHub()
	engine := checkout.NewEngine(checkout.Deps{
		Tx:       st.Tx,
		Carts:    st.Carts,
		Stock:    st.Catalog,
		Orders:   st.Orders,
		Events:   st.Outbox,
		Notifier: hub,
		Observer: serverMetrics,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var publisher events.Publisher = events.LogPublisher{}
	if brokers := events.ParseBrokers(cfg.KafkaBrokers); len(brokers) > 0 {
		publisher = events.NewKafkaPublisher(brokers, cfg.KafkaTopic)
	}
	defer publisher.Close()
	relay := events.NewRelay(st.Outbox, publisher, cfg.OutboxPollInterval, cfg.OutboxBatch)
	go relay.Run(ctx)

	productDir := filepath.Join(cfg.UploadDir, "products")
	if cfg.BackupDir != "" {
		go storage.StartDailyBackup(ctx, cfg.UploadDir, cfg.BackupDir, cfg.BackupRetention, cfg.BackupHour, 0)
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.MaxMultipartMemory = cfg.MaxMultipartMemory
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
		ExposeHeaders:    []string{"Content-Length", "Idempotent-Replayed"},
		AllowCredentials: !allowsAny(cfg.CORSOrigins),
		MaxAge:           12 * time.Hour,
	}))
	r.Static("/uploads", cfg.UploadDir)

	routes.SetupRoutes(r, routes.Deps{
		Store:   st,
		Auth:    authSvc,
		Engine:  engine,
		Images:  storage.NewLocalImageStore(productDir, "/uploads/products"),
		Hub:     hub,
		Metrics: serverMetrics,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logging.Log(logging.Fields{Step: "startup", Status: "listening", Message: srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	<-ctx.Done()
	logging.Log(logging.Fields{Step: "shutdown", Status: "draining"})
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Log(logging.Fields{Step: "shutdown", Status: "error", Error: err.Error()})
	}
	if _, err := relay.Flush(shutdownCtx); err != nil {
		logging.Log(logging.Fields{Step: "shutdown", Status: "error", Error: err.Error()})
	}
}

// Browsers reject credentialed responses for a wildcard origin.
func allowsAny(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}

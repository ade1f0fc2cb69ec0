package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/ec-storefront/internal/analytics"
	"github.com/example/ec-storefront/internal/api"
	"github.com/example/ec-storefront/internal/auth"
	"github.com/example/ec-storefront/internal/config"
	"github.com/example/ec-storefront/internal/domain/category"
	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/example/ec-storefront/internal/domain/review"
	"github.com/example/ec-storefront/internal/domain/setting"
	"github.com/example/ec-storefront/internal/domain/user"
	"github.com/example/ec-storefront/internal/email"
	"github.com/example/ec-storefront/internal/infrastructure/kafka"
	"github.com/example/ec-storefront/internal/infrastructure/mongo"
	"github.com/example/ec-storefront/internal/infrastructure/store"
	"github.com/example/ec-storefront/internal/notification"
	"github.com/example/ec-storefront/internal/payment"
	"github.com/example/ec-storefront/internal/realtime"
	"github.com/example/ec-storefront/internal/reporting"
)

const (
	accessTokenExpiry = 30 * 24 * time.Hour
	shutdownTimeout   = 10 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[API] %v", err)
	}

	log.Println("[API] ========================================")
	log.Println("[API] Storefront API")
	log.Println("[API] ========================================")
	log.Printf("[API] Env: %s", cfg.Env)
	log.Printf("[API] Kafka: %v (topic %s)", cfg.KafkaBrokers, cfg.KafkaTopic)

	// Initialize PostgreSQL connection
	db, err := store.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[API] Failed to connect to PostgreSQL: %v", err)
	}
	defer db.Close()
	if err := store.Migrate(ctx, db); err != nil {
		log.Fatalf("[API] Failed to migrate schema: %v", err)
	}
	log.Println("[API] Connected to PostgreSQL")

	// Initialize MongoDB for the analytics logs
	mongoDB, err := mongo.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatalf("[API] Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := mongoDB.Client().Disconnect(context.Background()); err != nil {
			log.Printf("[API] MongoDB disconnect: %v", err)
		}
	}()
	analyticsStore := mongo.NewAnalyticsStore(mongoDB)
	if err := analyticsStore.EnsureIndexes(ctx); err != nil {
		log.Printf("[API] Failed to create analytics indexes: %v", err)
	}

	// Initialize stores
	orderStore := store.NewPostgresOrderStore(db)
	userStore := store.NewPostgresUserStore(db)
	productStore := store.NewPostgresProductStore(db)
	categoryStore := store.NewPostgresCategoryStore(db)
	reviewStore := store.NewPostgresReviewStore(db)
	settingStore := store.NewPostgresSettingStore(db)
	reportStore := store.NewPostgresReportStore(db)

	// Notifications fan out to WebSocket listeners and the event bus
	hub := realtime.NewHub(cfg.AllowedOrigins)
	defer hub.Close()
	publisher := kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	defer publisher.Close()
	notifier := notification.Multi{hub, publisher}

	var mailer order.StatusMailer
	if cfg.SMTPConfigured() {
		mailer = email.NewService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)
	} else {
		log.Println("[API] SMTP not configured, status emails disabled")
	}

	// Initialize domain services
	aggregator := reporting.NewAggregator(reportStore, userStore, productStore)
	orderSvc := order.NewService(orderStore, userStore, productStore, notifier, mailer)
	productSvc := product.NewService(productStore, categoryStore)
	categorySvc := category.NewService(categoryStore, productStore)
	reviewSvc := review.NewService(reviewStore, productStore, aggregator, notifier)
	settingSvc := setting.NewService(settingStore, notifier)
	userSvc := user.NewService(userStore)
	analyticsSvc := analytics.NewService(analyticsStore, productStore)

	if cfg.StripeSecretKey == "" {
		log.Println("[API] STRIPE_SECRET_KEY not set, payment calls will fail")
	}
	if cfg.StripeWebhookSecret == "" {
		log.Println("[API] STRIPE_WEBHOOK_SECRET not set, webhooks will be rejected")
	}
	paymentSvc := payment.NewService(payment.NewStripeProvider(cfg.StripeSecretKey), orderSvc, userStore)
	reconciler := payment.NewReconciler(cfg.StripeWebhookSecret, orderSvc)

	jwtService := auth.NewJWTService(cfg.JWTSecret, accessTokenExpiry)

	// Initialize API
	prod := cfg.IsProduction()
	router := api.NewRouter(api.RouterConfig{
		Orders:     api.NewOrderHandlers(orderSvc, aggregator, prod),
		Products:   api.NewProductHandlers(productSvc, aggregator, prod),
		Categories: api.NewCategoryHandlers(categorySvc, prod),
		Reviews:    api.NewReviewHandlers(reviewSvc, prod),
		Settings:   api.NewSettingHandlers(settingSvc, prod),
		Payments:   api.NewPaymentHandlers(paymentSvc, reconciler, prod),
		Analytics:  api.NewAnalyticsHandlers(analyticsSvc, prod),
		Auth:       api.NewAuthHandlers(userSvc, jwtService, prod),
		Users:      api.NewUserHandlers(userSvc, prod),
		JWTService: jwtService,
		RealTime:   hub,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[API] Server started on :%s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[API] Server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Println("[API] Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("[API] Shutdown error: %v", err)
	}
}

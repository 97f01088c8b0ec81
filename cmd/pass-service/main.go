package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"

	"festpass/internal/auth"
	"festpass/internal/bulk"
	"festpass/internal/bulk/bulk_api"
	"festpass/internal/checkin"
	"festpass/internal/checkin/scan_api"
	"festpass/internal/checkout"
	"festpass/internal/checkout/checkout_api"
	"festpass/internal/config"
	"festpass/internal/dashboard"
	"festpass/internal/dashboard/dashboard_api"
	"festpass/internal/kafka"
	"festpass/internal/logger"
	"festpass/internal/passes"
	"festpass/internal/passes/pass_api"
	"festpass/internal/qr"
	"festpass/internal/store"
	"festpass/internal/token"
)

func main() {
	_ = godotenv.Load() // Loads .env file if present

	cfg := config.Load()
	appLogger := logger.NewLogger()
	defer appLogger.Close()

	ctx := context.Background()

	st, err := store.Connect(ctx, cfg.Mongo)
	if err != nil {
		log.Fatalf("[Database] Failed to connect to MongoDB: %v", err)
	}
	defer st.Close(ctx)
	appLogger.Info("DATABASE", "MongoDB connection successful")

	if os.Getenv("ENSURE_INDEXES") == "true" {
		if err := st.EnsureIndexes(ctx); err != nil {
			log.Fatalf("[Database] Failed to ensure indexes: %v", err)
		}
		appLogger.Info("DATABASE", "Indexes ensured")
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		appLogger.Warn("REDIS", "Redis unreachable, metrics caching disabled: "+err.Error())
		redisClient = nil
	}

	producer := kafka.NewProducer(cfg.Kafka, appLogger)
	defer producer.Close()

	codec := token.NewCodec(cfg.Token.Secret, time.Duration(cfg.Token.ExpiryDays)*24*time.Hour)
	qrGen := qr.NewGenerator()
	verifier := auth.NewVerifier(cfg.Auth.JWTSecret)

	passService := passes.NewPassService(st, st, st, codec, qrGen, producer, appLogger)
	scanVerifier := checkin.NewVerifier(codec, st, st, appLogger)
	attendance := checkin.NewAttendance(st, appLogger)

	var gateway checkout.Gateway = checkout.NoopGateway{}
	if cfg.Stripe.Enabled && cfg.Stripe.SecretKey != "" {
		gateway = checkout.NewStripeGateway(cfg.Stripe.SecretKey)
	}
	checkoutService := checkout.NewService(st, st, st, st, codec, qrGen, gateway, nil, appLogger)

	resolver := dashboard.NewResolver(st, appLogger)
	metrics := dashboard.NewMetrics(st, redisClient, cfg.Venue.Timezone, appLogger)
	planner := dashboard.NewPlanner(st, resolver, metrics, appLogger)

	bulkProcessor := bulk.NewProcessor(passService, producer, appLogger)

	scanHandler := scan_api.NewHandler(scanVerifier, passService, attendance, appLogger)
	passHandler := pass_api.NewHandler(passService, appLogger)
	dashboardHandler := dashboard_api.NewHandler(planner, st, appLogger)
	bulkHandler := bulk_api.NewHandler(bulkProcessor, appLogger)
	checkoutHandler := checkout_api.NewHandler(checkoutService, appLogger)

	r := chi.NewRouter()

	r.Route("/scan", func(r chi.Router) {
		r.With(verifier.Middleware(auth.RoleViewer)).Post("/", scanHandler.Scan)
		r.With(verifier.Middleware(auth.RoleManager)).Post("/confirm/{passID}", scanHandler.Confirm)
	})

	r.Route("/teams", func(r chi.Router) {
		r.With(verifier.Middleware(auth.RoleManager)).Post("/{teamID}/attendance", scanHandler.MemberAttendance)
	})

	r.Route("/passes", func(r chi.Router) {
		r.Use(verifier.Middleware(auth.RoleManager))
		r.Get("/{passID}", passHandler.ViewPass)
		r.Post("/{passID}/mark-used", passHandler.MarkUsed)
		r.Post("/{passID}/revert-used", passHandler.RevertUsed)
		r.Post("/{passID}/archive", passHandler.Archive)
		r.Post("/{passID}/unarchive", passHandler.Unarchive)
		r.Post("/{passID}/regenerate", passHandler.Regenerate)
		r.With(verifier.Middleware(auth.RoleSuperadmin)).Delete("/{passID}", passHandler.HardDelete)
	})

	r.With(verifier.Middleware(auth.RoleViewer)).Get("/dashboard", dashboardHandler.Query)
	r.With(verifier.Middleware(auth.RoleManager)).Get("/audit", dashboardHandler.AuditList)
	r.With(verifier.Middleware(auth.RoleManager)).Post("/bulk", bulkHandler.Apply)
	r.Get("/events", dashboardHandler.ListEvents)

	r.Route("/checkout", func(r chi.Router) {
		r.Post("/", checkoutHandler.Checkout)
		r.With(verifier.Middleware(auth.RoleManager)).Post("/onspot", checkoutHandler.OnSpot)
		r.Post("/confirm/{paymentID}", checkoutHandler.Confirm)
	})

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		appLogger.Info("SERVER", "🚀 Pass service on "+cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_ = server.Shutdown(ctxShutdown)
	appLogger.Info("SERVER", "✅ Pass service shutdown complete")
}

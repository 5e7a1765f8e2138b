package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/storefront-api/internal/application/notification"
	"github.com/storefront-api/internal/application/verification"
	"github.com/storefront-api/internal/config"
	"github.com/storefront-api/internal/infrastructure/dynamo"
	"github.com/storefront-api/internal/infrastructure/google"
	jwtinfra "github.com/storefront-api/internal/infrastructure/jwt"
	"github.com/storefront-api/internal/infrastructure/mail"
	"github.com/storefront-api/internal/infrastructure/mongodb"
	s3infra "github.com/storefront-api/internal/infrastructure/s3"
	"github.com/storefront-api/internal/infrastructure/sns"
	"github.com/storefront-api/internal/pkg/logger"
	transporthttp "github.com/storefront-api/internal/transport/http"
	appmiddleware "github.com/storefront-api/internal/transport/http/middleware"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := logger.Init(cfg.LogLevel, cfg.IsDevelopment()); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	lg := logger.WithModule("main")
	if envErr != nil {
		lg.Info("no .env file found, reading from environment")
	}

	ctx := context.Background()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient, err := dynamo.NewClient(ctx, cfg)
	if err != nil {
		lg.Fatal("dynamodb client", zap.Error(err))
	}
	if err := dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables); err != nil {
		lg.Fatal("bootstrap tables", zap.Error(err))
	}

	store, closeStore, err := verificationStore(ctx, cfg, dynamoClient)
	if err != nil {
		lg.Fatal("verification store", zap.Error(err))
	}
	defer closeStore()

	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		lg.Fatal("jwt provider", zap.Error(err))
	}

	var sender notification.Sender
	if cfg.MailConfigured() {
		s, err := mail.NewSender(cfg)
		if err != nil {
			lg.Fatal("mail sender", zap.Error(err))
		}
		sender = s
	} else {
		lg.Warn("SMTP not configured, verification links will be logged")
	}
	dispatcher := notification.NewDispatcher(notification.DispatcherConfig{
		FrontendURL: cfg.FrontendURL,
		From:        cfg.EmailFrom,
		SiteName:    cfg.SiteName,
		TokenTTL:    cfg.Verification.TokenTTL,
	}, sender)

	trustedProxies, err := appmiddleware.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		lg.Fatal("trusted proxies", zap.Error(err))
	}

	deps := &transporthttp.Deps{
		UserRepo:    dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		ProductRepo: dynamo.NewProductRepo(dynamoClient, cfg.DynamoTables.Products),
		CartRepo:    dynamo.NewCartRepo(dynamoClient, cfg.DynamoTables.Carts),
		OrderRepo: dynamo.NewOrderRepo(dynamoClient, dynamo.OrderTables{
			Orders:   cfg.DynamoTables.Orders,
			Products: cfg.DynamoTables.Products,
			Carts:    cfg.DynamoTables.Carts,
		}),
		VerificationStore: store,
		Dispatcher:        dispatcher,
		JWTProvider:       jwtProvider,
		SiteName:          cfg.SiteName,
		TokenTTL:          cfg.Verification.TokenTTL,
		RequireProof:      cfg.Verification.RequireProof,
		TrustedProxies:    trustedProxies,
	}

	// S3 store (optional, image uploads are rejected without it).
	if s3Client, err := s3infra.NewClient(ctx, cfg); err == nil {
		deps.Images = s3infra.NewStore(s3Client, cfg)
	} else {
		lg.Warn("S3 store not available", zap.Error(err))
	}

	if cfg.SMSEnabled {
		if smsSender, err := sns.NewSender(ctx, cfg); err == nil {
			deps.SMS = smsSender
		} else {
			lg.Warn("SNS sender not available", zap.Error(err))
		}
	}

	if cfg.GoogleClientID != "" {
		deps.Google = google.NewVerifier(cfg.GoogleClientID)
	}

	sweeper := verification.NewSweeper([]verification.Store{store},
		verification.WithSchedule(cfg.Verification.SweepSchedule))
	if err := sweeper.Start(); err != nil {
		lg.Fatal("start token sweeper", zap.Error(err))
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      transporthttp.NewRouter(cfg, deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		lg.Info("server starting", zap.String("port", cfg.AppPort), zap.String("env", cfg.AppEnv),
			zap.String("verification_store", cfg.Verification.Store))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	lg.Info("shutting down server")
	<-sweeper.Stop().Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error("forced shutdown", zap.Error(err))
	}
	lg.Info("server stopped")
}

// verificationStore selects the token backend named by VERIFICATION_STORE.
func verificationStore(ctx context.Context, cfg *config.Config, client *dynamodb.Client) (verification.Store, func(), error) {
	switch cfg.Verification.Store {
	case "", "dynamo":
		return dynamo.NewVerificationRepo(client, cfg.DynamoTables.VerificationTokens), func() {}, nil
	case "mongo":
		mc, err := mongodb.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, err
		}
		s := mongodb.NewVerificationStore(mc.Database(cfg.MongoDatabase), "")
		if err := s.EnsureIndexes(ctx); err != nil {
			_ = mc.Disconnect(ctx)
			return nil, nil, err
		}
		return s, func() { disconnect(mc) }, nil
	default:
		return nil, nil, fmt.Errorf("unknown verification store %q", cfg.Verification.Store)
	}
}

func disconnect(mc *mongo.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = mc.Disconnect(ctx)
}

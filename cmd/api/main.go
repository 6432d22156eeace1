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

	"github.com/go-watchlist-api/internal/config"
	"github.com/go-watchlist-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-watchlist-api/internal/infrastructure/jwt"
	s3infra "github.com/go-watchlist-api/internal/infrastructure/s3"
	"github.com/go-watchlist-api/internal/infrastructure/smtp"
	transporthttp "github.com/go-watchlist-api/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	// Every route policy depends on token verification, so a missing secret
	// is fatal.
	jwtProvider, err := jwtinfra.NewProvider(cfg.JWTSecret, cfg.SessionTokenTTL)
	if err != nil {
		log.Fatalf("JWT provider: %v", err)
	}

	// S3 store for movie posters.
	s3Client := s3infra.NewClient(cfg)
	s3Store := s3infra.NewStore(s3Client, cfg.S3BucketName)

	// SMTP mailer for verification links and login codes.
	mailer := smtp.NewMailer(cfg)

	deps := &transporthttp.Deps{
		UserRepo:         dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		VerificationRepo: dynamo.NewVerificationRepo(dynamoClient, cfg.DynamoTables.EmailVerifications, cfg.DynamoTables.Users),
		TwoFactorRepo:    dynamo.NewTwoFactorRepo(dynamoClient, cfg.DynamoTables.TwoFactorCodes),
		MovieRepo:        dynamo.NewMovieRepo(dynamoClient, cfg.DynamoTables.Movies),
		WatchlistRepo:    dynamo.NewWatchlistRepo(dynamoClient, cfg.DynamoTables.Watchlist),
		S3Store:          s3Store,
		Mailer:           mailer,
		JWTProvider:      jwtProvider,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}

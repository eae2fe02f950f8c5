package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/livepoll/api/internal/adapters/broadcast"
	"github.com/livepoll/api/internal/adapters/handler/http"
	"github.com/livepoll/api/internal/adapters/oauth/google"
	"github.com/livepoll/api/internal/adapters/repository/postgres"
	"github.com/livepoll/api/internal/core/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	db, err := sql.Open("postgres", dbConnString())
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}

	hub := broadcast.NewHub(logger)

	pollRepo := postgres.NewPollRepository(db)
	voteLedger := postgres.NewVoteRepository(db)
	analyticsRepo := postgres.NewAnalyticsRepository(db)
	userRepo := postgres.NewUserRepository(db)
	authRepo := postgres.NewAuthRepository(db)

	pollService := services.NewPollService(pollRepo)
	voteService := services.NewVoteService(pollRepo, voteLedger, hub, hub, logger)
	analyticsService := services.NewAnalyticsService(analyticsRepo)
	userService := services.NewUserService(userRepo)
	authService := services.NewAuthService(
		userRepo,
		authRepo,
		google.NewVerifier(),
		os.Getenv("JWT_SECRET"),
		os.Getenv("GOOGLE_CLIENT_ID"),
	)

	authMiddleware := http.NewAuthMiddleware(authService)
	handler := http.NewHandler(http.Handlers{
		Poll:      http.NewPollHandler(pollService),
		Vote:      http.NewVoteHandler(voteService),
		Stream:    http.NewStreamHandler(voteService, hub),
		Dashboard: http.NewDashboardHandler(analyticsService),
		User:      http.NewUserHandler(userService),
		Auth: http.NewAuthHandler(
			authService,
			os.Getenv("LOGIN_REDIRECT_URL"),
			os.Getenv("COOKIE_DOMAIN"),
			stdhttp.SameSiteLaxMode,
		),
	}, authMiddleware)

	server := &stdhttp.Server{Addr: "0.0.0.0:8080", Handler: handler}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	logger.Info("gracefully shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal(err)
	}
}

func dbConnString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		os.Getenv("POSTGRES_USER"),
		os.Getenv("POSTGRES_PASSWORD"),
		os.Getenv("POSTGRES_HOST"),
		os.Getenv("POSTGRES_PORT"),
		os.Getenv("POSTGRES_DB"),
	)
}

package integration

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	stdhttp "net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/livepoll/api/internal/adapters/broadcast"
	"github.com/livepoll/api/internal/adapters/handler/http"
	postgresrepo "github.com/livepoll/api/internal/adapters/repository/postgres"
	"github.com/livepoll/api/internal/core/ports"
	"github.com/livepoll/api/internal/core/services"
)

const testJWTSecret = "test-secret"

type TestApp struct {
	DB       *sql.DB
	Hub      *broadcast.Hub
	Server   *httptest.Server
	Client   *stdhttp.Client
	Teardown func(t *testing.T)
}

// stubVerifier stands in for Google ID token validation; the raw token
// string is treated as the user's email.
type stubVerifier struct{}

func (stubVerifier) Verify(ctx context.Context, token string, clientID string) (*ports.TokenPayload, error) {
	if token == "" {
		return nil, fmt.Errorf("empty credential")
	}
	return &ports.TokenPayload{Email: token, Name: "Test User"}, nil
}

func setupTestApp(t *testing.T) *TestApp {
	t.Helper()
	ctx := context.Background()

	pgContainer, connStr, err := setupPostgresContainer(ctx)
	require.NoError(t, err)

	db, err := sql.Open("postgres", connStr)
	require.NoError(t, err)
	require.NoError(t, db.Ping())
	require.NoError(t, applyMigrations(db))

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	hub := broadcast.NewHub(logger)

	pollRepo := postgresrepo.NewPollRepository(db)
	voteLedger := postgresrepo.NewVoteRepository(db)
	analyticsRepo := postgresrepo.NewAnalyticsRepository(db)
	userRepo := postgresrepo.NewUserRepository(db)
	authRepo := postgresrepo.NewAuthRepository(db)

	pollService := services.NewPollService(pollRepo)
	voteService := services.NewVoteService(pollRepo, voteLedger, hub, hub, logger)
	analyticsService := services.NewAnalyticsService(analyticsRepo)
	userService := services.NewUserService(userRepo)
	authService := services.NewAuthService(userRepo, authRepo, stubVerifier{}, testJWTSecret, "test-client-id")

	authMiddleware := http.NewAuthMiddleware(authService)
	handler := http.NewHandler(http.Handlers{
		Poll:      http.NewPollHandler(pollService),
		Vote:      http.NewVoteHandler(voteService),
		Stream:    http.NewStreamHandler(voteService, hub),
		Dashboard: http.NewDashboardHandler(analyticsService),
		User:      http.NewUserHandler(userService),
		Auth:      http.NewAuthHandler(authService, "/", "", stdhttp.SameSiteLaxMode),
	}, authMiddleware)

	server := httptest.NewServer(handler)

	return &TestApp{
		DB:     db,
		Hub:    hub,
		Server: server,
		Client: server.Client(),
		Teardown: func(t *testing.T) {
			server.Close()
			db.Close()
			if err := pgContainer.Terminate(ctx); err != nil {
				t.Logf("failed to terminate container: %v", err)
			}
		},
	}
}

func setupPostgresContainer(ctx context.Context) (testcontainers.Container, string, error) {
	dbName := "testdb"
	user := "user"
	password := "password"

	pgContainer, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(user),
		postgres.WithPassword(password),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second),
		),
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", err
	}

	return pgContainer, connStr, nil
}

func applyMigrations(db *sql.DB) error {
	dirPath := "../../internal/adapters/repository/postgres/migrations"

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		if !strings.HasSuffix(entry.Name(), "up.sql") {
			continue
		}

		fullPath := filepath.Join(dirPath, entry.Name())
		content, err := os.ReadFile(fullPath)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", entry.Name(), err)
		}

		_, err = db.Exec(string(content))
		if err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", entry.Name(), err)
		}
	}

	return nil
}

func createUserAndToken(t *testing.T, db *sql.DB) string {
	t.Helper()

	userID := uuid.New()
	email := fmt.Sprintf("user-%s@example.com", userID)
	name := fmt.Sprintf("User %s", userID)
	_, err := db.Exec("INSERT INTO users (id, email, name) VALUES ($1, $2, $3)", userID, email, name)
	require.NoError(t, err)

	return signToken(t, userID)
}

func signToken(t *testing.T, userID uuid.UUID) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub": userID.String(),
		"exp": time.Now().Add(15 * time.Minute).Unix(),
		"iat": time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return signedToken
}

package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/livepoll/api/internal/core/domain"
)

type AuthRepository interface {
	StoreRefreshToken(ctx context.Context, token *domain.RefreshToken) error
	GetRefreshTokenByHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, id string) error
}

type TokenPayload struct {
	Email string
	Name  string
}

// TokenVerifier validates an external identity-provider token and
// extracts the subject's profile.
type TokenVerifier interface {
	Verify(ctx context.Context, token string, clientID string) (*TokenPayload, error)
}

type AuthService interface {
	// LoginWithGoogle exchanges a Google ID token for an access token and
	// a refresh token.
	LoginWithGoogle(ctx context.Context, googleToken string) (string, string, error)
	// RefreshAccessToken rotates the refresh token and issues a new
	// access token.
	RefreshAccessToken(ctx context.Context, refreshToken string) (string, string, error)
	Logout(ctx context.Context, refreshToken string) error
	// ParseAccessToken verifies the access token signature and expiry
	// and returns the authenticated user id.
	ParseAccessToken(token string) (uuid.UUID, error)
}

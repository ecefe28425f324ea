// filepath: internal/services/auth/interfaces.go
package auth

import (
	"context"

	"adreel/internal/models"
)

// TokenService defines the contract for JWT operations.
type TokenService interface {
	GenerateTokens(ctx context.Context, user *models.User) (accessToken string, refreshToken string, err error)
	ValidateAccessToken(ctx context.Context, tokenString string) (*models.User, error)
	ValidateRefreshToken(ctx context.Context, tokenString string) (*models.User, error)
	Logout(ctx context.Context, refreshToken string) error
}

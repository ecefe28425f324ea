// filepath: internal/services/auth/tokenservice.go
package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"adreel/internal/config"
	"adreel/internal/models"
	"adreel/internal/repository"
	"adreel/internal/services"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "adreel"

// accessClaims defines the custom claims for our short-lived access token.
type accessClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// refreshClaims defines the claims for our long-lived, stateful refresh token.
type refreshClaims struct {
	jwt.RegisteredClaims
}

// Compile-time check to ensure tokenService implements the TokenService interface.
var _ TokenService = (*tokenService)(nil)

// tokenService implements the TokenService interface.
type tokenService struct {
	cfg     *config.Config
	userSvc services.UserService
	repo    *repository.Repository
}

// NewTokenService creates a new instance of the tokenService.
func NewTokenService(cfg *config.Config, userSvc services.UserService, repo *repository.Repository) TokenService {
	return &tokenService{cfg: cfg, userSvc: userSvc, repo: repo}
}

// hashToken hashes a token string (SHA-256) for database storage.
func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

func (s *tokenService) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return []byte(s.cfg.JWTSecret), nil
}

// GenerateTokens creates, signs, and stores a new token pair.
func (s *tokenService) GenerateTokens(ctx context.Context, user *models.User) (string, string, error) {
	accessExpiry := time.Now().Add(time.Minute * time.Duration(s.cfg.JWT.AccessDurationMin))
	access := jwt.NewWithClaims(jwt.SigningMethodHS256, &accessClaims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(accessExpiry),
			Issuer:    issuer,
			Subject:   user.ID,
		},
	})
	signedAccess, err := access.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", "", fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshExpiry := time.Now().Add(time.Hour * time.Duration(s.cfg.JWT.RefreshDurationHours))
	jtiBytes := make([]byte, 16)
	if _, err := rand.Read(jtiBytes); err != nil {
		return "", "", fmt.Errorf("failed to generate token id: %w", err)
	}
	refresh := jwt.NewWithClaims(jwt.SigningMethodHS256, &refreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(refreshExpiry),
			Issuer:    issuer,
			Subject:   user.ID,
			ID:        hex.EncodeToString(jtiBytes),
		},
	})
	signedRefresh, err := refresh.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", "", fmt.Errorf("failed to sign refresh token: %w", err)
	}

	if err := s.repo.StoreRefreshToken(ctx, user.ID, hashToken(signedRefresh), refreshExpiry); err != nil {
		return "", "", fmt.Errorf("failed to store refresh token: %w", err)
	}
	return signedAccess, signedRefresh, nil
}

// ValidateAccessToken verifies signature and expiry, then loads the subject.
func (s *tokenService) ValidateAccessToken(ctx context.Context, tokenString string) (*models.User, error) {
	claims := &accessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, s.keyFunc, jwt.WithIssuer(issuer))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid access token")
	}

	user, err := s.userSvc.GetUserByID(ctx, claims.Subject)
	if err != nil {
		return nil, errors.New("user not found for token")
	}
	return user, nil
}

// ValidateRefreshToken verifies the signature and checks the token has not been revoked.
func (s *tokenService) ValidateRefreshToken(ctx context.Context, tokenString string) (*models.User, error) {
	claims := &refreshClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, s.keyFunc, jwt.WithIssuer(issuer))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid refresh token signature or claims")
	}

	userID, err := s.repo.ValidateRefreshToken(ctx, hashToken(tokenString))
	if err != nil {
		return nil, fmt.Errorf("token not found in database (revoked or expired): %w", err)
	}

	user, err := s.userSvc.GetUserByID(ctx, userID)
	if err != nil {
		return nil, errors.New("user not found for valid token")
	}
	return user, nil
}

// Logout invalidates a refresh token by deleting its hash from the database.
func (s *tokenService) Logout(ctx context.Context, refreshToken string) error {
	return s.repo.DeleteRefreshToken(ctx, hashToken(refreshToken))
}

// filepath: internal/repository/token_repo.go
package repository

import (
	"context"
	"time"
)

// StoreRefreshToken saves the hash of a refresh token to the database.
func (s *Repository) StoreRefreshToken(ctx context.Context, userID, tokenHash string, expiry time.Time) error {
	query, args, err := s.Builder.Insert("refresh_tokens").
		Columns("user_id", "token_hash", "expiry").
		Values(userID, tokenHash, toMillis(expiry)).
		ToSql()
	if err != nil {
		return err
	}
	_, err = s.DB.ExecContext(ctx, query, args...)
	return err
}

// ValidateRefreshToken checks if a token hash exists and is not expired, returning the user ID.
func (s *Repository) ValidateRefreshToken(ctx context.Context, tokenHash string) (string, error) {
	query, args, err := s.Builder.Select("user_id").From("refresh_tokens").
		Where("token_hash = ? AND expiry > ?", tokenHash, toMillis(time.Now())).
		ToSql()
	if err != nil {
		return "", err
	}
	var userID string
	if err := s.DB.QueryRowContext(ctx, query, args...).Scan(&userID); err != nil {
		return "", mapError(err)
	}
	return userID, nil
}

// DeleteRefreshToken removes a specific refresh token hash from the database.
func (s *Repository) DeleteRefreshToken(ctx context.Context, tokenHash string) error {
	query, args, err := s.Builder.Delete("refresh_tokens").Where("token_hash = ?", tokenHash).ToSql()
	if err != nil {
		return err
	}
	_, err = s.DB.ExecContext(ctx, query, args...)
	return err
}

// DeleteExpiredRefreshTokens prunes tokens past their expiry and returns how many were removed.
func (s *Repository) DeleteExpiredRefreshTokens(ctx context.Context) (int64, error) {
	query, args, err := s.Builder.Delete("refresh_tokens").Where("expiry <= ?", toMillis(time.Now())).ToSql()
	if err != nil {
		return 0, err
	}
	res, err := s.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// filepath: internal/services/user_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"adreel/internal/logging"
	"adreel/internal/models"
	"adreel/internal/repository"
)

var _ UserService = (*userService)(nil)

// MinPasswordLength is enforced when accounts are created or passwords changed.
const MinPasswordLength = 8

// userService handles business logic for local accounts.
type userService struct {
	Repo *repository.Repository
}

// NewUserService creates a new UserService.
func NewUserService(repo *repository.Repository) *userService {
	return &userService{Repo: repo}
}

// GetUserByEmail retrieves a user by email (case-insensitive).
func (s *userService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.Repo.GetUserByEmail(ctx, email)
	return user, translate(err)
}

// GetUserByID retrieves a user by id.
func (s *userService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.Repo.GetUserByID(ctx, id)
	return user, translate(err)
}

// GetUsers retrieves all users.
func (s *userService) GetUsers(ctx context.Context) ([]models.User, error) {
	return s.Repo.GetUsers(ctx)
}

// CreateUser validates and creates an account.
func (s *userService) CreateUser(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if _, err := mail.ParseAddress(email); err != nil || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: '%s' is not a valid email address", ErrValidation, email)
	}
	if len(password) < MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, MinPasswordLength)
	}

	logging.Log.Debugf("UserService: Attempting to create user '%s'", email)
	user, err := s.Repo.CreateUser(ctx, email, password)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%w: user '%s' already exists", ErrConflict, email)
		}
		logging.Log.Errorf("UserService: Failed to create user '%s': %v", email, err)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// UpdateUserPassword changes a user's password.
func (s *userService) UpdateUserPassword(ctx context.Context, id, password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, MinPasswordLength)
	}
	return translate(s.Repo.UpdateUserPassword(ctx, id, password))
}

// DeleteUser removes an account and signs it out everywhere.
func (s *userService) DeleteUser(ctx context.Context, id string) error {
	if err := s.Repo.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: user %s", ErrNotFound, id)
		}
		logging.Log.Errorf("UserService: Failed to delete user %s: %v", id, err)
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

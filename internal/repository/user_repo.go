// filepath: internal/repository/user_repo.go
package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"adreel/internal/logging"
	"adreel/internal/models"

	"golang.org/x/crypto/bcrypt"
)

var userColumns = []string{"id", "email", "password_hash", "created_at"}

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var (
		user      models.User
		createdAt int64
	)
	if err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &createdAt); err != nil {
		return nil, mapError(err)
	}
	user.CreatedAt = fromMillis(createdAt)
	return &user, nil
}

func (s *Repository) cacheUser(user *models.User) {
	s.Cache.Set(fmt.Sprintf("user_by_email_%s", user.Email), user, 5*time.Minute)
	s.Cache.Set(fmt.Sprintf("user_by_id_%s", user.ID), user, 5*time.Minute)
}

func (s *Repository) forgetUser(user *models.User) {
	s.Cache.Delete(fmt.Sprintf("user_by_email_%s", user.Email))
	s.Cache.Delete(fmt.Sprintf("user_by_id_%s", user.ID))
}

// GetUserByEmail retrieves a user by email, using a cache for performance.
func (s *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	cacheKey := fmt.Sprintf("user_by_email_%s", email)
	if user, found := s.Cache.Get(cacheKey); found {
		return user.(*models.User), nil
	}

	logging.Log.Debugf("GetUserByEmail: CACHE MISS for '%s'. Querying DB.", email)
	query, args, err := s.Builder.Select(userColumns...).From("users").Where("email = ?", email).ToSql()
	if err != nil {
		return nil, err
	}
	user, err := scanUser(s.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, err
	}
	s.cacheUser(user)
	return user, nil
}

// GetUserByID retrieves a user by id, using a cache for performance.
func (s *Repository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	cacheKey := fmt.Sprintf("user_by_id_%s", id)
	if user, found := s.Cache.Get(cacheKey); found {
		return user.(*models.User), nil
	}

	logging.Log.Debugf("GetUserByID: CACHE MISS for ID %s. Querying DB.", id)
	query, args, err := s.Builder.Select(userColumns...).From("users").Where("id = ?", id).ToSql()
	if err != nil {
		return nil, err
	}
	user, err := scanUser(s.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, err
	}
	s.cacheUser(user)
	return user, nil
}

// CreateUser hashes the password and inserts a new account.
func (s *Repository) CreateUser(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           newID(),
		Email:        email,
		PasswordHash: string(hashed),
		CreatedAt:    now(),
	}
	query, args, err := s.Builder.Insert("users").
		Columns(userColumns...).
		Values(user.ID, user.Email, user.PasswordHash, toMillis(user.CreatedAt)).
		ToSql()
	if err != nil {
		return nil, err
	}
	if _, err := s.DB.ExecContext(ctx, query, args...); err != nil {
		return nil, mapError(err)
	}

	logging.Log.Debugf("CreateUser: User '%s' created with ID %s", user.Email, user.ID)
	return user, nil
}

// UpdateUserPassword re-hashes and stores a user's password.
func (s *Repository) UpdateUserPassword(ctx context.Context, id, password string) error {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	query, args, err := s.Builder.Update("users").Set("password_hash", string(hashed)).Where("id = ?", id).ToSql()
	if err != nil {
		return err
	}
	if _, err := s.DB.ExecContext(ctx, query, args...); err != nil {
		return err
	}
	s.forgetUser(user)
	return nil
}

// GetUsers lists every account ordered by creation.
func (s *Repository) GetUsers(ctx context.Context) ([]models.User, error) {
	query, args, err := s.Builder.Select(userColumns...).From("users").OrderBy("created_at", "id").ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

// DeleteUser removes an account together with its refresh tokens and
// organization memberships. Organizations and their projects are kept.
func (s *Repository) DeleteUser(ctx context.Context, id string) error {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return err
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"refresh_tokens", "organization_members"} {
		query, args, err := s.Builder.Delete(table).Where("user_id = ?", id).ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	query, args, err := s.Builder.Delete("users").Where("id = ?", id).ToSql()
	if err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if err := expectAffected(res); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	s.forgetUser(user)
	logging.Log.Debugf("DeleteUser: User '%s' (ID %s) deleted", user.Email, id)
	return nil
}

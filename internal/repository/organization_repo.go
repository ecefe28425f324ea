package repository

import (
	"context"
	"database/sql"
	"fmt"

	"adreel/internal/models"
)

// FirstOrganizationForUser returns the id of the user's oldest membership.
// ErrNotFound means the user belongs to no organization.
func (s *Repository) FirstOrganizationForUser(ctx context.Context, userID string) (string, error) {
	query, args, err := s.Builder.Select("organization_id").From("organization_members").
		Where("user_id = ?", userID).
		OrderBy("created_at", "organization_id").
		Limit(1).
		ToSql()
	if err != nil {
		return "", err
	}
	var orgID string
	if err := s.DB.QueryRowContext(ctx, query, args...).Scan(&orgID); err != nil {
		return "", mapError(err)
	}
	return orgID, nil
}

// CreateOrganizationWithOwner inserts an organization and its owner membership atomically.
func (s *Repository) CreateOrganizationWithOwner(ctx context.Context, name, slug, ownerID string) (*models.Organization, error) {
	org := &models.Organization{
		ID:        newID(),
		Name:      name,
		Slug:      slug,
		CreatedAt: now(),
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.insertOrganization(ctx, tx, org); err != nil {
		return nil, err
	}
	member := models.OrganizationMember{
		OrganizationID: org.ID,
		UserID:         ownerID,
		Role:           models.RoleOwner,
		CreatedAt:      org.CreatedAt,
	}
	if err := s.insertMember(ctx, tx, member); err != nil {
		return nil, fmt.Errorf("failed to add owner: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return org, nil
}

func (s *Repository) insertOrganization(ctx context.Context, tx *sql.Tx, org *models.Organization) error {
	query, args, err := s.Builder.Insert("organizations").
		Columns("id", "name", "slug", "created_at").
		Values(org.ID, org.Name, org.Slug, toMillis(org.CreatedAt)).
		ToSql()
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, query, args...)
	return mapError(err)
}

func (s *Repository) insertMember(ctx context.Context, tx *sql.Tx, m models.OrganizationMember) error {
	query, args, err := s.Builder.Insert("organization_members").
		Columns("organization_id", "user_id", "role", "created_at").
		Values(m.OrganizationID, m.UserID, m.Role, toMillis(m.CreatedAt)).
		ToSql()
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, query, args...)
	return mapError(err)
}

// GetOrganization fetches one organization by id.
func (s *Repository) GetOrganization(ctx context.Context, id string) (*models.Organization, error) {
	query, args, err := s.Builder.Select("id", "name", "slug", "created_at").From("organizations").
		Where("id = ?", id).ToSql()
	if err != nil {
		return nil, err
	}
	var (
		org       models.Organization
		createdAt int64
	)
	if err := s.DB.QueryRowContext(ctx, query, args...).Scan(&org.ID, &org.Name, &org.Slug, &createdAt); err != nil {
		return nil, mapError(err)
	}
	org.CreatedAt = fromMillis(createdAt)
	return &org, nil
}

// ListMembers returns the memberships of an organization.
func (s *Repository) ListMembers(ctx context.Context, orgID string) ([]models.OrganizationMember, error) {
	query, args, err := s.Builder.Select("organization_id", "user_id", "role", "created_at").
		From("organization_members").
		Where("organization_id = ?", orgID).
		OrderBy("created_at", "user_id").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]models.OrganizationMember, 0)
	for rows.Next() {
		var (
			m         models.OrganizationMember
			createdAt int64
		)
		if err := rows.Scan(&m.OrganizationID, &m.UserID, &m.Role, &createdAt); err != nil {
			return nil, err
		}
		m.CreatedAt = fromMillis(createdAt)
		members = append(members, m)
	}
	return members, rows.Err()
}

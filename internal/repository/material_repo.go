package repository

import (
	"context"

	"adreel/internal/models"

	"github.com/Masterminds/squirrel"
)

var materialColumns = []string{
	"id", "project_id", "name", "type", "file_url", "file_key", "file_size_bytes", "mime_type", "status", "created_at",
}

func scanMaterial(row interface{ Scan(...any) error }) (*models.Material, error) {
	var (
		m         models.Material
		createdAt int64
	)
	if err := row.Scan(&m.ID, &m.ProjectID, &m.Name, &m.Type, &m.FileURL, &m.FileKey, &m.FileSizeBytes,
		&m.MimeType, &m.Status, &createdAt); err != nil {
		return nil, mapError(err)
	}
	m.CreatedAt = fromMillis(createdAt)
	return &m, nil
}

// CreateMaterial inserts m, assigning its id and timestamp.
func (s *Repository) CreateMaterial(ctx context.Context, m *models.Material) error {
	m.ID = newID()
	m.CreatedAt = now()
	if m.Status == "" {
		m.Status = models.MaterialReady
	}

	query, args, err := s.Builder.Insert("project_materials").
		Columns(materialColumns...).
		Values(m.ID, m.ProjectID, m.Name, m.Type, m.FileURL, m.FileKey, m.FileSizeBytes, m.MimeType, m.Status, toMillis(m.CreatedAt)).
		ToSql()
	if err != nil {
		return err
	}
	_, err = s.DB.ExecContext(ctx, query, args...)
	return mapError(err)
}

// GetMaterial fetches one material by id.
func (s *Repository) GetMaterial(ctx context.Context, id string) (*models.Material, error) {
	query, args, err := s.Builder.Select(materialColumns...).From("project_materials").Where("id = ?", id).ToSql()
	if err != nil {
		return nil, err
	}
	return scanMaterial(s.DB.QueryRowContext(ctx, query, args...))
}

// ListMaterials returns a project's materials, oldest first.
func (s *Repository) ListMaterials(ctx context.Context, projectID string) ([]models.Material, error) {
	query, args, err := s.Builder.Select(materialColumns...).From("project_materials").
		Where("project_id = ?", projectID).
		OrderBy("created_at", "id").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	materials := make([]models.Material, 0)
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, err
		}
		materials = append(materials, *m)
	}
	return materials, rows.Err()
}

// DeleteMaterial removes a material row.
func (s *Repository) DeleteMaterial(ctx context.Context, id string) error {
	query, args, err := s.Builder.Delete("project_materials").Where("id = ?", id).ToSql()
	if err != nil {
		return err
	}
	res, err := s.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

// ReferencedMaterialKeys returns which of keys belong to a material row.
func (s *Repository) ReferencedMaterialKeys(ctx context.Context, keys []string) (map[string]bool, error) {
	return s.referencedKeys(ctx, "project_materials", "file_key", keys)
}

func (s *Repository) referencedKeys(ctx context.Context, table, column string, keys []string) (map[string]bool, error) {
	found := make(map[string]bool, len(keys))
	if len(keys) == 0 {
		return found, nil
	}
	query, args, err := s.Builder.Select(column).From(table).Where(squirrel.Eq{column: keys}).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		found[key] = true
	}
	return found, rows.Err()
}

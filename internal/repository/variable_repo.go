package repository

import (
	"context"

	"adreel/internal/models"
)

// CreateVariables bulk-inserts content-pool rows in a single statement.
// Ids and timestamps are assigned in place.
func (s *Repository) CreateVariables(ctx context.Context, vars []models.Variable) error {
	if len(vars) == 0 {
		return nil
	}

	created := now()
	q := s.Builder.Insert("project_variables").
		Columns("id", "project_id", "variable_type", "name", "content", "position", "created_at")
	for i := range vars {
		vars[i].ID = newID()
		vars[i].CreatedAt = created
		q = q.Values(vars[i].ID, vars[i].ProjectID, vars[i].VariableType, vars[i].Name, vars[i].Content, vars[i].Position, toMillis(created))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return err
	}
	_, err = s.DB.ExecContext(ctx, query, args...)
	return mapError(err)
}

// ListVariables returns a project's content pool in insertion order.
func (s *Repository) ListVariables(ctx context.Context, projectID string) ([]models.Variable, error) {
	query, args, err := s.Builder.
		Select("id", "project_id", "variable_type", "name", "content", "position", "created_at").
		From("project_variables").
		Where("project_id = ?", projectID).
		OrderBy("created_at", "position", "id").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	vars := make([]models.Variable, 0)
	for rows.Next() {
		var (
			v         models.Variable
			createdAt int64
		)
		if err := rows.Scan(&v.ID, &v.ProjectID, &v.VariableType, &v.Name, &v.Content, &v.Position, &createdAt); err != nil {
			return nil, err
		}
		v.CreatedAt = fromMillis(createdAt)
		vars = append(vars, v)
	}
	return vars, rows.Err()
}

package repository

import (
	"context"

	"adreel/internal/models"

	"github.com/Masterminds/squirrel"
)

// ListExperiments returns a project's experiments with their variants attached.
// Experiments and variants are authored elsewhere; this service only reads them.
func (s *Repository) ListExperiments(ctx context.Context, projectID string) ([]models.Experiment, error) {
	query, args, err := s.Builder.
		Select("id", "project_id", "name", "status", "variable_type", "created_at").
		From("experiments").
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

	experiments := make([]models.Experiment, 0)
	index := make(map[string]int)
	ids := make([]string, 0)
	for rows.Next() {
		var (
			e         models.Experiment
			createdAt int64
		)
		if err := rows.Scan(&e.ID, &e.ProjectID, &e.Name, &e.Status, &e.VariableType, &createdAt); err != nil {
			rows.Close()
			return nil, err
		}
		e.CreatedAt = fromMillis(createdAt)
		e.Variants = make([]models.Variant, 0)
		index[e.ID] = len(experiments)
		ids = append(ids, e.ID)
		experiments = append(experiments, e)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return experiments, nil
	}

	variants, err := s.listVariants(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, v := range variants {
		i := index[v.ExperimentID]
		experiments[i].Variants = append(experiments[i].Variants, v)
	}
	return experiments, nil
}

func (s *Repository) listVariants(ctx context.Context, experimentIDs []string) ([]models.Variant, error) {
	query, args, err := s.Builder.
		Select("id", "experiment_id", "name", "utm_content", "impressions", "clicks", "conversions",
			"spend", "revenue", "roas", "created_at").
		From("variants").
		Where(squirrel.Eq{"experiment_id": experimentIDs}).
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

	variants := make([]models.Variant, 0)
	for rows.Next() {
		var (
			v         models.Variant
			createdAt int64
		)
		if err := rows.Scan(&v.ID, &v.ExperimentID, &v.Name, &v.UTMContent, &v.Impressions, &v.Clicks,
			&v.Conversions, &v.Spend, &v.Revenue, &v.ROAS, &createdAt); err != nil {
			return nil, err
		}
		v.CreatedAt = fromMillis(createdAt)
		variants = append(variants, v)
	}
	return variants, rows.Err()
}

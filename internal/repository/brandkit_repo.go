package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"adreel/internal/models"

	"github.com/Masterminds/squirrel"
)

var brandKitColumns = []string{
	"id", "project_id", "logo_url", "logo_key", "primary_color", "secondary_color", "text_color",
	"font_family", "font_weight", "subtitle_style", "cta_style", "created_at", "updated_at",
}

func scanBrandKit(row interface{ Scan(...any) error }) (*models.BrandKit, error) {
	var (
		k                    models.BrandKit
		subtitle, cta        string
		createdAt, updatedAt int64
	)
	if err := row.Scan(&k.ID, &k.ProjectID, &k.LogoURL, &k.LogoKey, &k.PrimaryColor, &k.SecondaryColor, &k.TextColor,
		&k.FontFamily, &k.FontWeight, &subtitle, &cta, &createdAt, &updatedAt); err != nil {
		return nil, mapError(err)
	}
	if err := json.Unmarshal([]byte(subtitle), &k.SubtitleStyle); err != nil {
		return nil, fmt.Errorf("corrupt subtitle_style for brand kit %s: %w", k.ID, err)
	}
	if err := json.Unmarshal([]byte(cta), &k.CTAStyle); err != nil {
		return nil, fmt.Errorf("corrupt cta_style for brand kit %s: %w", k.ID, err)
	}
	k.CreatedAt = fromMillis(createdAt)
	k.UpdatedAt = fromMillis(updatedAt)
	return &k, nil
}

// CreateBrandKit inserts k, assigning its id and timestamps.
func (s *Repository) CreateBrandKit(ctx context.Context, k *models.BrandKit) error {
	subtitle, err := json.Marshal(k.SubtitleStyle)
	if err != nil {
		return err
	}
	cta, err := json.Marshal(k.CTAStyle)
	if err != nil {
		return err
	}

	k.ID = newID()
	k.CreatedAt = now()
	k.UpdatedAt = k.CreatedAt

	query, args, err := s.Builder.Insert("project_brandkits").
		Columns(brandKitColumns...).
		Values(k.ID, k.ProjectID, k.LogoURL, k.LogoKey, k.PrimaryColor, k.SecondaryColor, k.TextColor,
			k.FontFamily, k.FontWeight, string(subtitle), string(cta), toMillis(k.CreatedAt), toMillis(k.UpdatedAt)).
		ToSql()
	if err != nil {
		return err
	}
	_, err = s.DB.ExecContext(ctx, query, args...)
	return mapError(err)
}

// ListBrandKits returns a project's brand kits, oldest first.
func (s *Repository) ListBrandKits(ctx context.Context, projectID string) ([]models.BrandKit, error) {
	query, args, err := s.Builder.Select(brandKitColumns...).From("project_brandkits").
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

	kits := make([]models.BrandKit, 0)
	for rows.Next() {
		k, err := scanBrandKit(rows)
		if err != nil {
			return nil, err
		}
		kits = append(kits, *k)
	}
	return kits, rows.Err()
}

// PrimaryBrandKit returns the first brand kit of a project, which is the one edits apply to.
func (s *Repository) PrimaryBrandKit(ctx context.Context, projectID string) (*models.BrandKit, error) {
	query, args, err := s.Builder.Select(brandKitColumns...).From("project_brandkits").
		Where("project_id = ?", projectID).
		OrderBy("created_at", "id").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, err
	}
	return scanBrandKit(s.DB.QueryRowContext(ctx, query, args...))
}

// SaveBrandKit overwrites the mutable fields of an existing brand kit.
func (s *Repository) SaveBrandKit(ctx context.Context, k *models.BrandKit) error {
	subtitle, err := json.Marshal(k.SubtitleStyle)
	if err != nil {
		return err
	}
	cta, err := json.Marshal(k.CTAStyle)
	if err != nil {
		return err
	}
	k.UpdatedAt = now()

	query, args, err := s.Builder.Update("project_brandkits").
		SetMap(map[string]interface{}{
			"logo_url":        k.LogoURL,
			"logo_key":        k.LogoKey,
			"primary_color":   k.PrimaryColor,
			"secondary_color": k.SecondaryColor,
			"text_color":      k.TextColor,
			"font_family":     k.FontFamily,
			"font_weight":     k.FontWeight,
			"subtitle_style":  string(subtitle),
			"cta_style":       string(cta),
			"updated_at":      toMillis(k.UpdatedAt),
		}).
		Where("id = ?", k.ID).
		ToSql()
	if err != nil {
		return err
	}
	res, err := s.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

// brandKitSummaries loads list-view brand kit fields for many projects at once.
func (s *Repository) brandKitSummaries(ctx context.Context, projectIDs []string) (map[string][]models.BrandKitSummary, error) {
	query, args, err := s.Builder.
		Select("id", "project_id", "logo_url", "primary_color", "secondary_color").
		From("project_brandkits").
		Where(squirrel.Eq{"project_id": projectIDs}).
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

	out := make(map[string][]models.BrandKitSummary)
	for rows.Next() {
		var (
			k         models.BrandKitSummary
			projectID string
		)
		if err := rows.Scan(&k.ID, &projectID, &k.LogoURL, &k.PrimaryColor, &k.SecondaryColor); err != nil {
			return nil, err
		}
		out[projectID] = append(out[projectID], k)
	}
	return out, rows.Err()
}

// ReferencedLogoKeys returns which of keys are used as a brand kit logo.
func (s *Repository) ReferencedLogoKeys(ctx context.Context, keys []string) (map[string]bool, error) {
	return s.referencedKeys(ctx, "project_brandkits", "logo_key", keys)
}

// ProjectsWithoutBrandKit lists the ids of projects that have no brand kit row,
// which happens when the best-effort kit step of project creation failed.
func (s *Repository) ProjectsWithoutBrandKit(ctx context.Context) ([]string, error) {
	query, args, err := s.Builder.Select("p.id").From("projects p").
		LeftJoin("project_brandkits k ON k.project_id = p.id").
		Where(squirrel.Eq{"k.id": nil}).
		OrderBy("p.id").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"adreel/internal/models"

	"github.com/Masterminds/squirrel"
)

var projectColumns = []string{
	"id", "organization_id", "name", "description", "platform", "test_goal", "target_audience",
	"campaign_name", "utm_source", "utm_medium", "utm_campaign", "utm_content", "landing_page_url",
	"tracking_pixel_id", "status", "created_by", "output_config", "metadata", "created_at", "updated_at",
}

// UpdatableProjectColumns is the closed set of columns a partial update may touch.
var UpdatableProjectColumns = map[string]bool{
	"name": true, "description": true, "platform": true, "test_goal": true, "target_audience": true,
	"campaign_name": true, "utm_source": true, "utm_medium": true, "utm_campaign": true,
	"utm_content": true, "landing_page_url": true, "tracking_pixel_id": true, "status": true,
	"metadata": true,
}

// ProjectFilter scopes a project listing. Exactly one field is expected to be set.
type ProjectFilter struct {
	OrganizationID string
	MemberUserID   string
}

func prefixed(alias string, cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = alias + "." + c
	}
	return out
}

func scanProject(row interface{ Scan(...any) error }, extra ...any) (*models.Project, error) {
	var (
		p                    models.Project
		outputCfg, metadata  string
		createdAt, updatedAt int64
	)
	dest := []any{
		&p.ID, &p.OrganizationID, &p.Name, &p.Description, &p.Platform, &p.TestGoal, &p.TargetAudience,
		&p.CampaignName, &p.UTMSource, &p.UTMMedium, &p.UTMCampaign, &p.UTMContent, &p.LandingPageURL,
		&p.TrackingPixelID, &p.Status, &p.CreatedBy, &outputCfg, &metadata, &createdAt, &updatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, mapError(err)
	}
	if err := json.Unmarshal([]byte(outputCfg), &p.OutputConfig); err != nil {
		return nil, fmt.Errorf("corrupt output_config for project %s: %w", p.ID, err)
	}
	if metadata == "" {
		metadata = "{}"
	}
	p.Metadata = json.RawMessage(metadata)
	p.CreatedAt = fromMillis(createdAt)
	p.UpdatedAt = fromMillis(updatedAt)
	return &p, nil
}

// CreateProject inserts p, assigning its id and timestamps.
func (s *Repository) CreateProject(ctx context.Context, p *models.Project) error {
	outputCfg, err := json.Marshal(p.OutputConfig)
	if err != nil {
		return err
	}
	if len(p.Metadata) == 0 {
		p.Metadata = json.RawMessage("{}")
	}

	p.ID = newID()
	p.CreatedAt = now()
	p.UpdatedAt = p.CreatedAt

	query, args, err := s.Builder.Insert("projects").
		Columns(projectColumns...).
		Values(
			p.ID, p.OrganizationID, p.Name, p.Description, p.Platform, p.TestGoal, p.TargetAudience,
			p.CampaignName, p.UTMSource, p.UTMMedium, p.UTMCampaign, p.UTMContent, p.LandingPageURL,
			p.TrackingPixelID, p.Status, p.CreatedBy, string(outputCfg), string(p.Metadata),
			toMillis(p.CreatedAt), toMillis(p.UpdatedAt),
		).
		ToSql()
	if err != nil {
		return err
	}
	_, err = s.DB.ExecContext(ctx, query, args...)
	return mapError(err)
}

// GetProject fetches a single project row without relations.
func (s *Repository) GetProject(ctx context.Context, id string) (*models.Project, error) {
	query, args, err := s.Builder.Select(projectColumns...).From("projects").Where("id = ?", id).ToSql()
	if err != nil {
		return nil, err
	}
	return scanProject(s.DB.QueryRowContext(ctx, query, args...))
}

// GetProjectDetail fetches a project with brand kits, materials, variables and experiments.
func (s *Repository) GetProjectDetail(ctx context.Context, id string) (*models.ProjectDetail, error) {
	p, err := s.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := &models.ProjectDetail{Project: *p}

	if detail.BrandKits, err = s.ListBrandKits(ctx, id); err != nil {
		return nil, fmt.Errorf("brand kits: %w", err)
	}
	if detail.Materials, err = s.ListMaterials(ctx, id); err != nil {
		return nil, fmt.Errorf("materials: %w", err)
	}
	if detail.Variables, err = s.ListVariables(ctx, id); err != nil {
		return nil, fmt.Errorf("variables: %w", err)
	}
	if detail.Experiments, err = s.ListExperiments(ctx, id); err != nil {
		return nil, fmt.Errorf("experiments: %w", err)
	}
	return detail, nil
}

// ListProjects returns projects newest first, with brand kit summaries and relation counts.
func (s *Repository) ListProjects(ctx context.Context, f ProjectFilter) ([]models.ProjectSummary, error) {
	q := s.Builder.Select(prefixed("p", projectColumns)...).
		Column("(SELECT count(*) FROM experiments e WHERE e.project_id = p.id)").
		Column("(SELECT count(*) FROM project_materials m WHERE m.project_id = p.id)").
		From("projects p").
		OrderBy("p.created_at DESC", "p.id DESC")

	switch {
	case f.OrganizationID != "":
		q = q.Where(squirrel.Eq{"p.organization_id": f.OrganizationID})
	case f.MemberUserID != "":
		q = q.Where("p.organization_id IN (SELECT organization_id FROM organization_members WHERE user_id = ?)", f.MemberUserID)
	default:
		return nil, fmt.Errorf("project listing requires an organization or member filter")
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	projects := make([]models.ProjectSummary, 0)
	index := make(map[string]int)
	ids := make([]string, 0)
	for rows.Next() {
		var summary models.ProjectSummary
		p, err := scanProject(rows, &summary.ExperimentCount, &summary.MaterialCount)
		if err != nil {
			rows.Close()
			return nil, err
		}
		summary.Project = *p
		summary.BrandKits = make([]models.BrandKitSummary, 0)
		index[p.ID] = len(projects)
		ids = append(ids, p.ID)
		projects = append(projects, summary)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return projects, nil
	}

	kits, err := s.brandKitSummaries(ctx, ids)
	if err != nil {
		return nil, err
	}
	for projectID, list := range kits {
		projects[index[projectID]].BrandKits = list
	}
	return projects, nil
}

// UpdateProject applies a partial update. Keys must be in UpdatableProjectColumns.
func (s *Repository) UpdateProject(ctx context.Context, id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return fmt.Errorf("no fields to update")
	}
	set := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		if !UpdatableProjectColumns[k] {
			return fmt.Errorf("column %q is not updatable", k)
		}
		set[k] = v
	}
	set["updated_at"] = toMillis(now())

	query, args, err := s.Builder.Update("projects").SetMap(set).Where("id = ?", id).ToSql()
	if err != nil {
		return err
	}
	res, err := s.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return mapError(err)
	}
	return expectAffected(res)
}

// DeleteProject removes a project; dependent rows go with it via ON DELETE CASCADE.
func (s *Repository) DeleteProject(ctx context.Context, id string) error {
	query, args, err := s.Builder.Delete("projects").Where("id = ?", id).ToSql()
	if err != nil {
		return err
	}
	res, err := s.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

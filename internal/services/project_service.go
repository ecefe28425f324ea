// filepath: internal/services/project_service.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"adreel/internal/logging"
	"adreel/internal/models"
	"adreel/internal/repository"

	"golang.org/x/sync/singleflight"
)

var _ ProjectService = (*projectService)(nil)

// Workflow steps whose failure aborts project creation.
const (
	StepOrganization = "organization"
	StepProject      = "project"
)

// WorkflowError reports which mandatory creation step failed.
type WorkflowError struct {
	Step string
	Err  error
}

func (e *WorkflowError) Error() string {
	return fmt.Sprintf("%s step failed: %v", e.Step, e.Err)
}

func (e *WorkflowError) Unwrap() error { return e.Err }

var validPlatforms = map[string]bool{"tiktok": true, "reels": true, "shorts": true}

var validStatuses = map[string]bool{
	models.StatusDraft: true, models.StatusActive: true, models.StatusTesting: true,
	models.StatusPaused: true, models.StatusCompleted: true, models.StatusArchived: true,
}

var variableLabels = map[string]string{
	models.VariableHook:    "Hook",
	models.VariableBenefit: "Benefit",
	models.VariableCTA:     "CTA",
	models.VariableMusic:   "Music",
}

// projectService owns the project lifecycle, including the multi-step creation workflow.
type projectService struct {
	Store   Store
	Auditor Auditor

	orgs singleflight.Group
	now  func() time.Time
}

// NewProjectService creates a new ProjectService.
func NewProjectService(store Store, auditor Auditor) *projectService {
	return &projectService{Store: store, Auditor: auditor, now: time.Now}
}

func actorName(actor *models.User, fallback string) string {
	if actor != nil {
		return actor.Email
	}
	if fallback != "" {
		return fallback
	}
	return "anonymous"
}

func validateCreate(p models.ProjectCreatePayload) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if p.Platform != "" && !validPlatforms[p.Platform] {
		return fmt.Errorf("%w: platform must be one of tiktok, reels, shorts", ErrValidation)
	}
	return nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// CreateProject runs the creation workflow. Organization resolution and the project
// insert are mandatory; variables, brand kit and legal metadata are best effort and
// reported through the result's Provisioning block.
func (s *projectService) CreateProject(ctx context.Context, actor *models.User, p models.ProjectCreatePayload) (*models.CreateProjectResult, error) {
	if err := validateCreate(p); err != nil {
		return nil, err
	}

	memberID, createdBy := p.UserID, p.UserID
	if actor != nil {
		memberID = actor.ID
		if createdBy == "" {
			createdBy = actor.ID
		}
	}
	who := actorName(actor, p.UserID)

	orgID := p.OrganizationID
	if orgID == "" {
		if memberID == "" {
			return nil, fmt.Errorf("%w: a session or userId is required", ErrUnauthorized)
		}
		resolved, err := s.resolveOrganization(ctx, memberID, actor)
		if err != nil {
			logging.Log.Errorf("ProjectService: organization resolution for user '%s' failed: %v", memberID, err)
			return nil, &WorkflowError{Step: StepOrganization, Err: err}
		}
		orgID = resolved
	} else if _, err := s.Store.GetOrganization(ctx, orgID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: organization %s", ErrNotFound, orgID)
		}
		return nil, &WorkflowError{Step: StepOrganization, Err: err}
	}

	project := &models.Project{
		OrganizationID:  orgID,
		Name:            strings.TrimSpace(p.Name),
		Description:     p.Description,
		Platform:        p.Platform,
		TestGoal:        p.TestGoal,
		TargetAudience:  p.TargetAudience,
		CampaignName:    p.CampaignObjective,
		UTMSource:       orDefault(p.UTMSource, p.Platform),
		UTMMedium:       orDefault(p.UTMMedium, "video"),
		UTMCampaign:     p.UTMCampaign,
		UTMContent:      p.UTMContent,
		LandingPageURL:  p.LandingPageURL,
		TrackingPixelID: p.TrackingPixelID,
		Status:          models.StatusDraft,
		CreatedBy:       createdBy,
		OutputConfig:    models.DefaultOutputConfig(),
		Metadata:        json.RawMessage(`{}`),
	}
	if err := s.Store.CreateProject(ctx, project); err != nil {
		logging.Log.Errorf("ProjectService: insert of project '%s' failed: %v", project.Name, err)
		return nil, &WorkflowError{Step: StepProject, Err: err}
	}
	logging.Log.Infof("ProjectService: created project '%s' (%s) in organization %s", project.Name, project.ID, orgID)

	result := &models.CreateProjectResult{
		Project: models.ProjectRef{
			ID:       project.ID,
			Name:     project.Name,
			Platform: project.Platform,
			Status:   project.Status,
		},
		OrganizationID: orgID,
	}

	result.Provisioning.Variables = s.createVariables(ctx, project.ID, p)
	kitID, kitStep := s.createDefaultBrandKit(ctx, project.ID)
	result.Provisioning.BrandKit = kitStep
	result.Project.BrandKitID = kitID
	result.Provisioning.Legal = s.storeLegal(ctx, project, p.Legal())

	details := map[string]interface{}{
		"organization_id": orgID,
		"complete":        result.Provisioning.Complete(),
	}
	if !result.Provisioning.Complete() {
		details["provisioning"] = result.Provisioning
	}
	s.Auditor.Log(ctx, "project.create", who, "Project:"+project.ID, details)

	return result, nil
}

// resolveOrganization returns the user's first organization, creating one on first use.
// Concurrent calls for the same user share a single lookup-or-create, which
// outlives any one caller; each caller stops waiting when its own ctx ends.
func (s *projectService) resolveOrganization(ctx context.Context, userID string, actor *models.User) (string, error) {
	ch := s.orgs.DoChan(userID, func() (interface{}, error) {
		ctx := context.WithoutCancel(ctx)
		orgID, err := s.Store.FirstOrganizationForUser(ctx, userID)
		if err == nil {
			return orgID, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return "", err
		}

		name := fmt.Sprintf("%s's Organization", s.emailLocalPart(ctx, userID, actor))
		slug := fmt.Sprintf("org-%d", s.now().UnixMilli())
		org, err := s.Store.CreateOrganizationWithOwner(ctx, name, slug, userID)
		if errors.Is(err, repository.ErrConflict) {
			// Another user claimed the same millisecond slug.
			org, err = s.Store.CreateOrganizationWithOwner(ctx, name, slug+"-"+strings.ToLower(userID[max(0, len(userID)-6):]), userID)
		}
		if err != nil {
			return "", err
		}

		logging.Log.Infof("ProjectService: created organization '%s' (%s) for user %s", org.Name, org.ID, userID)
		s.Auditor.Log(ctx, "organization.create", actorName(actor, userID), "Organization:"+org.ID, map[string]interface{}{
			"slug":  org.Slug,
			"owner": userID,
		})
		return org.ID, nil
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (s *projectService) emailLocalPart(ctx context.Context, userID string, actor *models.User) string {
	email := ""
	if actor != nil && actor.ID == userID {
		email = actor.Email
	} else if u, err := s.Store.GetUserByID(ctx, userID); err == nil {
		email = u.Email
	}
	local, _, _ := strings.Cut(email, "@")
	if local == "" {
		return "User"
	}
	return local
}

// buildVariables expands the content pools into rows named "{Label} {n}", n counted per type.
func buildVariables(projectID string, p models.ProjectCreatePayload) []models.Variable {
	pools := []struct {
		kind  string
		items []string
	}{
		{models.VariableHook, p.Hooks},
		{models.VariableBenefit, p.Benefits},
		{models.VariableCTA, p.CTAs},
		{models.VariableMusic, p.MusicTracks},
	}

	var vars []models.Variable
	for _, pool := range pools {
		n := 0
		for _, content := range pool.items {
			n++
			vars = append(vars, models.Variable{
				ProjectID:    projectID,
				VariableType: pool.kind,
				Name:         fmt.Sprintf("%s %d", variableLabels[pool.kind], n),
				Content:      content,
				Position:     len(vars),
			})
		}
	}
	return vars
}

func (s *projectService) createVariables(ctx context.Context, projectID string, p models.ProjectCreatePayload) models.StepResult {
	vars := buildVariables(projectID, p)
	if len(vars) == 0 {
		return models.StepResult{OK: true, Skipped: true}
	}
	if err := s.Store.CreateVariables(ctx, vars); err != nil {
		logging.Log.Errorf("ProjectService: variables for project %s were not created: %v", projectID, err)
		return models.StepResult{Error: err.Error()}
	}
	return models.StepResult{OK: true, Count: len(vars)}
}

func (s *projectService) createDefaultBrandKit(ctx context.Context, projectID string) (string, models.StepResult) {
	kit := models.DefaultBrandKit(projectID)
	if err := s.Store.CreateBrandKit(ctx, &kit); err != nil {
		logging.Log.Errorf("ProjectService: default brand kit for project %s was not created: %v", projectID, err)
		return "", models.StepResult{Error: err.Error()}
	}
	return kit.ID, models.StepResult{OK: true}
}

func (s *projectService) storeLegal(ctx context.Context, project *models.Project, legal models.LegalAuthorizations) models.StepResult {
	if !legal.Any() {
		return models.StepResult{OK: true, Skipped: true}
	}
	merged, err := mergeMetadata(project.Metadata, map[string]interface{}{"legal_authorizations": legal})
	if err == nil {
		err = s.Store.UpdateProject(ctx, project.ID, map[string]interface{}{"metadata": string(merged)})
	}
	if err != nil {
		logging.Log.Errorf("ProjectService: legal metadata for project %s was not stored: %v", project.ID, err)
		return models.StepResult{Error: err.Error()}
	}
	project.Metadata = merged
	return models.StepResult{OK: true}
}

// mergeMetadata sets top-level keys on a JSON object, keeping the rest.
func mergeMetadata(current json.RawMessage, set map[string]interface{}) (json.RawMessage, error) {
	doc := map[string]json.RawMessage{}
	if len(current) > 0 {
		if err := json.Unmarshal(current, &doc); err != nil {
			return nil, fmt.Errorf("metadata is not a JSON object: %w", err)
		}
	}
	for k, v := range set {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		doc[k] = b
	}
	return json.Marshal(doc)
}

// GetProject returns a project with every relation expanded and experiment winners marked.
func (s *projectService) GetProject(ctx context.Context, id string) (*models.ProjectDetail, error) {
	detail, err := s.Store.GetProjectDetail(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	markWinners(detail.Experiments)
	return detail, nil
}

// ListProjects lists an organization's projects, or every project visible to actor when
// no organization is given.
func (s *projectService) ListProjects(ctx context.Context, actor *models.User, organizationID string) ([]models.ProjectSummary, error) {
	filter := repository.ProjectFilter{OrganizationID: organizationID}
	if organizationID == "" {
		if actor == nil {
			return nil, fmt.Errorf("%w: listing without organizationId requires a session", ErrUnauthorized)
		}
		filter.MemberUserID = actor.ID
	} else {
		// Membership is not checked for an explicit organization.
		logging.Log.Debugf("ProjectService: %s listing organization %s", actorName(actor, "anonymous"), organizationID)
	}
	return s.Store.ListProjects(ctx, filter)
}

// updateFields converts a patch into column assignments.
func updateFields(p models.ProjectUpdatePayload) (map[string]interface{}, error) {
	fields := map[string]interface{}{}
	str := map[string]*string{
		"name": p.Name, "description": p.Description, "platform": p.Platform,
		"test_goal": p.TestGoal, "target_audience": p.TargetAudience, "campaign_name": p.CampaignName,
		"utm_source": p.UTMSource, "utm_medium": p.UTMMedium, "utm_campaign": p.UTMCampaign,
		"utm_content": p.UTMContent, "landing_page_url": p.LandingPageURL,
		"tracking_pixel_id": p.TrackingPixelID, "status": p.Status,
	}
	for col, v := range str {
		if v != nil {
			fields[col] = *v
		}
	}

	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrValidation)
	}
	if p.Platform != nil && *p.Platform != "" && !validPlatforms[*p.Platform] {
		return nil, fmt.Errorf("%w: platform must be one of tiktok, reels, shorts", ErrValidation)
	}
	if p.Status != nil && !validStatuses[*p.Status] {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, *p.Status)
	}
	if p.Metadata != nil {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(*p.Metadata, &obj); err != nil || obj == nil {
			return nil, fmt.Errorf("%w: metadata must be a JSON object", ErrValidation)
		}
		fields["metadata"] = string(*p.Metadata)
	}

	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no fields to update", ErrValidation)
	}
	return fields, nil
}

// UpdateProject applies a validated partial update and returns the stored row.
func (s *projectService) UpdateProject(ctx context.Context, id string, p models.ProjectUpdatePayload) (*models.Project, error) {
	fields, err := updateFields(p)
	if err != nil {
		return nil, err
	}
	logging.Log.Debugf("ProjectService: updating project %s (%d fields)", id, len(fields))
	if err := s.Store.UpdateProject(ctx, id, fields); err != nil {
		return nil, translate(err)
	}
	project, err := s.Store.GetProject(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	return project, nil
}

// DeleteProject removes a project and, through cascades, everything attached to it.
// Stored objects are left for the orphan sweeper.
func (s *projectService) DeleteProject(ctx context.Context, id string) error {
	if err := s.Store.DeleteProject(ctx, id); err != nil {
		return translate(err)
	}
	logging.Log.Infof("ProjectService: deleted project %s", id)
	return nil
}

// BuildUTMLink builds the project's tracked landing-page link.
func (s *projectService) BuildUTMLink(ctx context.Context, id, content, term string) (string, error) {
	project, err := s.Store.GetProject(ctx, id)
	if err != nil {
		return "", translate(err)
	}
	if project.LandingPageURL == "" {
		return "", fmt.Errorf("%w: project has no landing page URL", ErrValidation)
	}
	return BuildUTMURL(project.LandingPageURL, UTMParams{
		Source:   project.UTMSource,
		Medium:   project.UTMMedium,
		Campaign: orDefault(project.UTMCampaign, project.CampaignName),
		Content:  orDefault(content, project.UTMContent),
		Term:     term,
	}), nil
}

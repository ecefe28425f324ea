// filepath: internal/services/project_service_test.go
package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"adreel/internal/config"
	"adreel/internal/models"
	"adreel/internal/repository"
	"adreel/internal/services"
	"adreel/internal/services/mocks"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupRepo(t *testing.T) *repository.Repository {
	t.Helper()
	cfg := &config.Config{Database: config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "services.db"),
	}}
	repo, err := repository.NewRepository(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	require.NoError(t, repo.Migrate("up"))
	return repo
}

func quietAuditor() *mocks.MockAuditor {
	a := new(mocks.MockAuditor)
	a.On("Log", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Maybe()
	return a
}

func createUser(t *testing.T, repo *repository.Repository, email string) *models.User {
	t.Helper()
	user, err := repo.CreateUser(context.Background(), email, "password123")
	require.NoError(t, err)
	return user
}

// failingStore wraps the real repository and fails selected writes.
type failingStore struct {
	services.Store
	failProject   bool
	failVariables bool
	failBrandKit  bool
	failUpdate    bool
	failMaterial  bool
}

var errInjected = errors.New("injected failure")

func (f *failingStore) CreateProject(ctx context.Context, p *models.Project) error {
	if f.failProject {
		return errInjected
	}
	return f.Store.CreateProject(ctx, p)
}

func (f *failingStore) CreateVariables(ctx context.Context, vars []models.Variable) error {
	if f.failVariables {
		return errInjected
	}
	return f.Store.CreateVariables(ctx, vars)
}

func (f *failingStore) CreateBrandKit(ctx context.Context, k *models.BrandKit) error {
	if f.failBrandKit {
		return errInjected
	}
	return f.Store.CreateBrandKit(ctx, k)
}

func (f *failingStore) UpdateProject(ctx context.Context, id string, fields map[string]interface{}) error {
	if f.failUpdate {
		return errInjected
	}
	return f.Store.UpdateProject(ctx, id, fields)
}

func (f *failingStore) CreateMaterial(ctx context.Context, m *models.Material) error {
	if f.failMaterial {
		return errInjected
	}
	return f.Store.CreateMaterial(ctx, m)
}

func countRows(t *testing.T, repo *repository.Repository, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, repo.DB.QueryRow(query, args...).Scan(&n))
	return n
}

func TestCreateProject_NewUserGetsOrganization(t *testing.T) {
	repo := setupRepo(t)
	svc := services.NewProjectService(repo, quietAuditor())
	ctx := context.Background()
	alice := createUser(t, repo, "alice@example.com")

	res, err := svc.CreateProject(ctx, alice, models.ProjectCreatePayload{
		Name:                      "Summer Launch",
		Platform:                  "tiktok",
		Hooks:                     []string{"A", "B"},
		CTAs:                      []string{"Buy now"},
		ContentUsageAuthorization: true,
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusDraft, res.Project.Status)
	assert.Equal(t, "tiktok", res.Project.Platform)
	assert.NotEmpty(t, res.Project.BrandKitID)
	assert.True(t, res.Provisioning.Complete())
	assert.Equal(t, 3, res.Provisioning.Variables.Count)

	org, err := repo.GetOrganization(ctx, res.OrganizationID)
	require.NoError(t, err)
	assert.Equal(t, "alice's Organization", org.Name)
	assert.Regexp(t, `^org-\d+$`, org.Slug)

	members, err := repo.ListMembers(ctx, org.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, alice.ID, members[0].UserID)
	assert.Equal(t, models.RoleOwner, members[0].Role)

	detail, err := svc.GetProject(ctx, res.Project.ID)
	require.NoError(t, err)
	assert.Equal(t, org.ID, detail.OrganizationID)
	assert.Equal(t, alice.ID, detail.CreatedBy)
	assert.Equal(t, "tiktok", detail.UTMSource)
	assert.Equal(t, "video", detail.UTMMedium)
	require.Len(t, detail.BrandKits, 1)
	assert.Equal(t, "#000000", detail.BrandKits[0].PrimaryColor)

	var hooks []models.Variable
	for _, v := range detail.Variables {
		if v.VariableType == models.VariableHook {
			hooks = append(hooks, v)
		}
	}
	require.Len(t, hooks, 2)
	assert.Equal(t, "Hook 1", hooks[0].Name)
	assert.Equal(t, "A", hooks[0].Content)
	assert.Equal(t, "Hook 2", hooks[1].Name)
	assert.Equal(t, "B", hooks[1].Content)

	var meta map[string]map[string]bool
	require.NoError(t, json.Unmarshal(detail.Metadata, &meta))
	assert.True(t, meta["legal_authorizations"]["content_usage"])
	assert.False(t, meta["legal_authorizations"]["model_releases"])

	// A second project reuses the organization.
	res2, err := svc.CreateProject(ctx, alice, models.ProjectCreatePayload{Name: "Autumn"})
	require.NoError(t, err)
	assert.Equal(t, org.ID, res2.OrganizationID)
	assert.True(t, res2.Provisioning.Variables.Skipped)
	assert.True(t, res2.Provisioning.Legal.Skipped)
	assert.Equal(t, 1, countRows(t, repo, "SELECT COUNT(*) FROM organizations"))
}

func TestCreateProject_ConcurrentFirstRequests(t *testing.T) {
	repo := setupRepo(t)
	svc := services.NewProjectService(repo, quietAuditor())
	bob := createUser(t, repo, "bob@example.com")

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreateProject(context.Background(), bob, models.ProjectCreatePayload{Name: "Race"})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	assert.Equal(t, 1, countRows(t, repo, "SELECT COUNT(*) FROM organizations"))
	assert.Equal(t, 8, countRows(t, repo, "SELECT COUNT(*) FROM projects"))
}

// gatedStore holds the first organization lookup until release is closed,
// then reports the lookup's context error the way a driver would.
type gatedStore struct {
	services.Store
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedStore) FirstOrganizationForUser(ctx context.Context, userID string) (string, error) {
	first := false
	g.once.Do(func() { first = true })
	if first {
		close(g.entered)
		<-g.release
		if err := ctx.Err(); err != nil {
			return "", err
		}
	}
	return g.Store.FirstOrganizationForUser(ctx, userID)
}

func TestCreateProject_CancelledFirstCallerDoesNotFailOthers(t *testing.T) {
	repo := setupRepo(t)
	store := &gatedStore{Store: repo, entered: make(chan struct{}), release: make(chan struct{})}
	svc := services.NewProjectService(store, quietAuditor())
	carol := createUser(t, repo, "carol@example.com")

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := svc.CreateProject(ctxA, carol, models.ProjectCreatePayload{Name: "A"})
		errA <- err
	}()
	<-store.entered

	errB := make(chan error, 1)
	go func() {
		_, err := svc.CreateProject(context.Background(), carol, models.ProjectCreatePayload{Name: "B"})
		errB <- err
	}()
	// Let B join the in-flight lookup.
	time.Sleep(50 * time.Millisecond)

	cancelA()
	assert.ErrorIs(t, <-errA, context.Canceled)

	close(store.release)
	require.NoError(t, <-errB)

	assert.Equal(t, 1, countRows(t, repo, "SELECT COUNT(*) FROM organizations"))
	assert.Equal(t, 1, countRows(t, repo, "SELECT COUNT(*) FROM projects"))
}

func TestCreateProject_Identity(t *testing.T) {
	repo := setupRepo(t)
	svc := services.NewProjectService(repo, quietAuditor())
	ctx := context.Background()

	t.Run("Body userId without session", func(t *testing.T) {
		userID := ulid.Make().String()
		res, err := svc.CreateProject(ctx, nil, models.ProjectCreatePayload{Name: "Anon", UserID: userID})
		require.NoError(t, err)

		org, err := repo.GetOrganization(ctx, res.OrganizationID)
		require.NoError(t, err)
		assert.Equal(t, "User's Organization", org.Name)

		p, err := repo.GetProject(ctx, res.Project.ID)
		require.NoError(t, err)
		assert.Equal(t, userID, p.CreatedBy)
	})

	t.Run("No identity and no organization", func(t *testing.T) {
		_, err := svc.CreateProject(ctx, nil, models.ProjectCreatePayload{Name: "Nobody"})
		assert.ErrorIs(t, err, services.ErrUnauthorized)
	})

	t.Run("Explicit organization", func(t *testing.T) {
		org, err := repo.CreateOrganizationWithOwner(ctx, "Acme", "acme", ulid.Make().String())
		require.NoError(t, err)
		res, err := svc.CreateProject(ctx, nil, models.ProjectCreatePayload{Name: "Scoped", OrganizationID: org.ID})
		require.NoError(t, err)
		assert.Equal(t, org.ID, res.OrganizationID)
	})

	t.Run("Unknown organization", func(t *testing.T) {
		_, err := svc.CreateProject(ctx, nil, models.ProjectCreatePayload{Name: "Lost", OrganizationID: "missing"})
		assert.ErrorIs(t, err, services.ErrNotFound)
	})
}

func TestCreateProject_Validation(t *testing.T) {
	repo := setupRepo(t)
	svc := services.NewProjectService(repo, quietAuditor())
	user := createUser(t, repo, "val@example.com")

	_, err := svc.CreateProject(context.Background(), user, models.ProjectCreatePayload{Name: "  "})
	assert.ErrorIs(t, err, services.ErrValidation)

	_, err = svc.CreateProject(context.Background(), user, models.ProjectCreatePayload{Name: "X", Platform: "myspace"})
	assert.ErrorIs(t, err, services.ErrValidation)

	assert.Equal(t, 0, countRows(t, repo, "SELECT COUNT(*) FROM organizations"), "validation runs before any write")
}

func TestCreateProject_BestEffortSteps(t *testing.T) {
	repo := setupRepo(t)
	user := createUser(t, repo, "carol@example.com")
	store := &failingStore{Store: repo, failVariables: true, failBrandKit: true, failUpdate: true}

	auditor := new(mocks.MockAuditor)
	auditor.On("Log", mock.Anything, "organization.create", mock.Anything, mock.Anything, mock.Anything).Once()
	auditor.On("Log", mock.Anything, "project.create", user.Email, mock.Anything, mock.MatchedBy(func(d map[string]interface{}) bool {
		return d["complete"] == false
	})).Once()

	svc := services.NewProjectService(store, auditor)
	res, err := svc.CreateProject(context.Background(), user, models.ProjectCreatePayload{
		Name:          "Partial",
		Hooks:         []string{"Stop scrolling"},
		ModelReleases: true,
	})
	require.NoError(t, err, "optional step failures must not fail creation")

	assert.False(t, res.Provisioning.Complete())
	assert.False(t, res.Provisioning.Variables.OK)
	assert.False(t, res.Provisioning.BrandKit.OK)
	assert.False(t, res.Provisioning.Legal.OK)
	assert.Contains(t, res.Provisioning.BrandKit.Error, "injected")
	assert.Empty(t, res.Project.BrandKitID)

	_, err = repo.GetProject(context.Background(), res.Project.ID)
	assert.NoError(t, err, "project is retained")
	auditor.AssertExpectations(t)
}

func TestCreateProject_InsertFailureAborts(t *testing.T) {
	repo := setupRepo(t)
	user := createUser(t, repo, "dave@example.com")
	svc := services.NewProjectService(&failingStore{Store: repo, failProject: true}, quietAuditor())

	_, err := svc.CreateProject(context.Background(), user, models.ProjectCreatePayload{Name: "Doomed"})
	var wfErr *services.WorkflowError
	require.ErrorAs(t, err, &wfErr)
	assert.Equal(t, services.StepProject, wfErr.Step)
	assert.ErrorIs(t, err, errInjected)

	assert.Equal(t, 0, countRows(t, repo, "SELECT COUNT(*) FROM projects"))
	assert.Equal(t, 1, countRows(t, repo, "SELECT COUNT(*) FROM organizations"), "the organization may already exist")
}

func TestGetProject_WinnerAndNotFound(t *testing.T) {
	repo := setupRepo(t)
	svc := services.NewProjectService(repo, quietAuditor())
	ctx := context.Background()
	user := createUser(t, repo, "erin@example.com")

	res, err := svc.CreateProject(ctx, user, models.ProjectCreatePayload{Name: "With experiments"})
	require.NoError(t, err)

	_, err = repo.DB.Exec(`INSERT INTO experiments (id, project_id, name, status, variable_type, created_at) VALUES (?, ?, 'Hooks', 'running', 'hook', 1)`, "exp1", res.Project.ID)
	require.NoError(t, err)
	_, err = repo.DB.Exec(`INSERT INTO experiments (id, project_id, name, status, variable_type, created_at) VALUES (?, ?, 'Empty', 'draft', 'cta', 2)`, "exp2", res.Project.ID)
	require.NoError(t, err)
	for _, v := range []struct {
		id   string
		roas float64
		at   int64
	}{{"v1", 1.5, 1}, {"v2", 3.2, 2}, {"v3", 3.2, 3}, {"v4", 0.4, 4}} {
		_, err = repo.DB.Exec(`INSERT INTO variants (id, experiment_id, name, roas, created_at) VALUES (?, 'exp1', ?, ?, ?)`, v.id, v.id, v.roas, v.at)
		require.NoError(t, err)
	}

	detail, err := svc.GetProject(ctx, res.Project.ID)
	require.NoError(t, err)
	require.Len(t, detail.Experiments, 2)
	assert.Equal(t, "v3", detail.Experiments[0].WinnerVariantID, "ties go to the later variant")
	assert.Empty(t, detail.Experiments[1].WinnerVariantID)

	first, err := json.Marshal(detail)
	require.NoError(t, err)
	again, err := svc.GetProject(ctx, res.Project.ID)
	require.NoError(t, err)
	second, err := json.Marshal(again)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))

	_, err = svc.GetProject(ctx, "does-not-exist")
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestListProjects(t *testing.T) {
	repo := setupRepo(t)
	svc := services.NewProjectService(repo, quietAuditor())
	ctx := context.Background()
	user := createUser(t, repo, "frank@example.com")
	other := createUser(t, repo, "grace@example.com")

	mine, err := svc.CreateProject(ctx, user, models.ProjectCreatePayload{Name: "Mine"})
	require.NoError(t, err)
	_, err = svc.CreateProject(ctx, other, models.ProjectCreatePayload{Name: "Theirs"})
	require.NoError(t, err)

	_, err = svc.ListProjects(ctx, nil, "")
	assert.ErrorIs(t, err, services.ErrUnauthorized)

	list, err := svc.ListProjects(ctx, user, "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Mine", list[0].Name)
	require.Len(t, list[0].BrandKits, 1)

	// An explicit organization filter is not checked against the caller.
	scoped, err := svc.ListProjects(ctx, nil, mine.OrganizationID)
	require.NoError(t, err)
	assert.Len(t, scoped, 1)
}

func TestUpdateProject(t *testing.T) {
	repo := setupRepo(t)
	svc := services.NewProjectService(repo, quietAuditor())
	ctx := context.Background()
	user := createUser(t, repo, "heidi@example.com")
	res, err := svc.CreateProject(ctx, user, models.ProjectCreatePayload{Name: "Before"})
	require.NoError(t, err)

	str := func(s string) *string { return &s }

	_, err = svc.UpdateProject(ctx, res.Project.ID, models.ProjectUpdatePayload{})
	assert.ErrorIs(t, err, services.ErrValidation, "empty patch")

	_, err = svc.UpdateProject(ctx, res.Project.ID, models.ProjectUpdatePayload{Status: str("launched")})
	assert.ErrorIs(t, err, services.ErrValidation)

	bad := json.RawMessage(`[1,2]`)
	_, err = svc.UpdateProject(ctx, res.Project.ID, models.ProjectUpdatePayload{Metadata: &bad})
	assert.ErrorIs(t, err, services.ErrValidation)

	_, err = svc.UpdateProject(ctx, "missing", models.ProjectUpdatePayload{Name: str("x")})
	assert.ErrorIs(t, err, services.ErrNotFound)

	meta := json.RawMessage(`{"note":"hi"}`)
	updated, err := svc.UpdateProject(ctx, res.Project.ID, models.ProjectUpdatePayload{
		Name:     str("After"),
		Status:   str(models.StatusActive),
		Metadata: &meta,
	})
	require.NoError(t, err)
	assert.Equal(t, "After", updated.Name)
	assert.Equal(t, models.StatusActive, updated.Status)
	assert.JSONEq(t, `{"note":"hi"}`, string(updated.Metadata))
	assert.False(t, updated.UpdatedAt.Before(updated.CreatedAt))
}

func TestDeleteProject(t *testing.T) {
	repo := setupRepo(t)
	svc := services.NewProjectService(repo, quietAuditor())
	ctx := context.Background()
	user := createUser(t, repo, "ivan@example.com")
	res, err := svc.CreateProject(ctx, user, models.ProjectCreatePayload{Name: "Short lived", Hooks: []string{"x"}})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProject(ctx, res.Project.ID))
	_, err = svc.GetProject(ctx, res.Project.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)
	assert.Equal(t, 0, countRows(t, repo, "SELECT COUNT(*) FROM project_variables"), "dependents cascade")
	assert.Equal(t, 0, countRows(t, repo, "SELECT COUNT(*) FROM project_brandkits"))

	assert.ErrorIs(t, svc.DeleteProject(ctx, res.Project.ID), services.ErrNotFound)
}

func TestBuildUTMLink(t *testing.T) {
	repo := setupRepo(t)
	svc := services.NewProjectService(repo, quietAuditor())
	ctx := context.Background()
	user := createUser(t, repo, "judy@example.com")

	withLanding, err := svc.CreateProject(ctx, user, models.ProjectCreatePayload{
		Name:              "Tracked",
		Platform:          "reels",
		CampaignObjective: "spring sale",
		LandingPageURL:    "https://shop.example.com/p?ref=ad",
	})
	require.NoError(t, err)

	link, err := svc.BuildUTMLink(ctx, withLanding.Project.ID, "hook-1", "")
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example.com/p?ref=ad&utm_source=reels&utm_medium=video&utm_campaign=spring+sale&utm_content=hook-1", link)

	without, err := svc.CreateProject(ctx, user, models.ProjectCreatePayload{Name: "Untracked"})
	require.NoError(t, err)
	_, err = svc.BuildUTMLink(ctx, without.Project.ID, "", "")
	assert.ErrorIs(t, err, services.ErrValidation)

	_, err = svc.BuildUTMLink(ctx, "missing", "", "")
	assert.ErrorIs(t, err, services.ErrNotFound)
}

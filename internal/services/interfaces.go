// filepath: internal/services/interfaces.go
package services

import (
	"context"
	"io"
	"time"

	"adreel/internal/models"
	"adreel/internal/repository"
)

// Auditor defines the interface for recording security-relevant events.
type Auditor interface {
	// Log records an event.
	// ctx: context to trace request IDs (if available)
	// action: what happened (e.g., "project.create", "material.delete")
	// actor: who did it (user email, or the body userId for anonymous callers)
	// resource: what was affected (e.g., "Project:01J...", "Material:01J...")
	// details: structured metadata about the event
	Log(ctx context.Context, action string, actor string, resource string, details map[string]interface{})
}

// Store is the subset of the persistence gateway the services depend on.
// *repository.Repository satisfies it; tests substitute wrappers to inject failures.
type Store interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	FirstOrganizationForUser(ctx context.Context, userID string) (string, error)
	CreateOrganizationWithOwner(ctx context.Context, name, slug, ownerID string) (*models.Organization, error)
	GetOrganization(ctx context.Context, id string) (*models.Organization, error)

	CreateProject(ctx context.Context, p *models.Project) error
	GetProject(ctx context.Context, id string) (*models.Project, error)
	GetProjectDetail(ctx context.Context, id string) (*models.ProjectDetail, error)
	ListProjects(ctx context.Context, f repository.ProjectFilter) ([]models.ProjectSummary, error)
	UpdateProject(ctx context.Context, id string, fields map[string]interface{}) error
	DeleteProject(ctx context.Context, id string) error

	CreateVariables(ctx context.Context, vars []models.Variable) error

	CreateBrandKit(ctx context.Context, k *models.BrandKit) error
	PrimaryBrandKit(ctx context.Context, projectID string) (*models.BrandKit, error)
	SaveBrandKit(ctx context.Context, k *models.BrandKit) error
	ReferencedLogoKeys(ctx context.Context, keys []string) (map[string]bool, error)

	CreateMaterial(ctx context.Context, m *models.Material) error
	GetMaterial(ctx context.Context, id string) (*models.Material, error)
	DeleteMaterial(ctx context.Context, id string) error
	ReferencedMaterialKeys(ctx context.Context, keys []string) (map[string]bool, error)
}

var _ Store = (*repository.Repository)(nil)

// UploadOptions describes one object written through the storage gateway.
type UploadOptions struct {
	Name        string
	Folder      string
	ContentType string
	Size        int64
}

// UploadResult is the storage gateway's upload outcome. Error is set when Success is false.
type UploadResult struct {
	Success bool
	Key     string
	URL     string
	Error   string
}

// ObjectInfo is one listed object.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// ObjectStore defines the storage gateway.
type ObjectStore interface {
	Enabled() bool
	Bucket() string
	PublicURL(key string) string
	Upload(ctx context.Context, body io.Reader, opts UploadOptions) UploadResult
	UploadBrandAsset(ctx context.Context, projectID string, body io.Reader, opts UploadOptions) UploadResult
	UploadExportedVideo(ctx context.Context, projectID string, body io.Reader, name string, size int64) UploadResult
	PresignUpload(ctx context.Context, name, folder, contentType string) (*models.PresignedUpload, error)
	PresignDownload(ctx context.Context, key string, expiry time.Duration) (string, error)
	Delete(ctx context.Context, key string) bool
	List(ctx context.Context, prefix string, fn func(ObjectInfo) error) error
}

// InfoService defines the interface for the info service.
type InfoService interface {
	GetInfo() models.Info
}

// UserService defines the interface for the user service.
type UserService interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUsers(ctx context.Context) ([]models.User, error)
	CreateUser(ctx context.Context, email, password string) (*models.User, error)
	UpdateUserPassword(ctx context.Context, id, password string) error
	DeleteUser(ctx context.Context, id string) error
}

// ProjectService defines the interface for the project service.
type ProjectService interface {
	CreateProject(ctx context.Context, actor *models.User, payload models.ProjectCreatePayload) (*models.CreateProjectResult, error)
	GetProject(ctx context.Context, id string) (*models.ProjectDetail, error)
	ListProjects(ctx context.Context, actor *models.User, organizationID string) ([]models.ProjectSummary, error)
	UpdateProject(ctx context.Context, id string, payload models.ProjectUpdatePayload) (*models.Project, error)
	DeleteProject(ctx context.Context, id string) error
	BuildUTMLink(ctx context.Context, id, content, term string) (string, error)
}

// MaterialUpload is one server-proxied file upload.
type MaterialUpload struct {
	ProjectID   string
	Type        string
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// MaterialService defines the interface for the material service.
type MaterialService interface {
	UploadMaterial(ctx context.Context, upload MaterialUpload) (*models.UploadedMaterial, error)
	PresignUpload(ctx context.Context, projectID, materialType, fileName string) (*models.PresignedUpload, error)
	RegisterMaterial(ctx context.Context, payload models.MaterialRegisterPayload) (*models.Material, error)
	DownloadURL(ctx context.Context, id string, expiry time.Duration) (string, error)
	DeleteMaterial(ctx context.Context, id string) (storageDeleted bool, err error)
}

// BrandKitService defines the interface for the brand kit service.
type BrandKitService interface {
	UpdateBrandKit(ctx context.Context, projectID string, payload models.BrandKitUpdatePayload) (*models.BrandKit, error)
	UploadLogo(ctx context.Context, projectID string, upload MaterialUpload) (*models.BrandKit, error)
}

// SweeperService defines the interface for the orphan-object sweeper.
type SweeperService interface {
	Start()
	Stop()
	Sweep(ctx context.Context) (*models.SweepReport, error)
}

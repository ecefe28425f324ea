// filepath: internal/services/material_service.go
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"adreel/internal/logging"
	"adreel/internal/models"
	"adreel/internal/storage"

	"github.com/dustin/go-humanize"
)

var _ MaterialService = (*materialService)(nil)

// MaxPresignExpiry caps caller-requested download URL lifetimes.
const MaxPresignExpiry = 7 * 24 * time.Hour

var validMaterialTypes = map[string]bool{
	models.MaterialVideo:   true,
	models.MaterialImage:   true,
	models.MaterialAudio:   true,
	models.MaterialOverlay: true,
}

// ValidMaterialType reports whether t is one of video, image, audio or overlay.
func ValidMaterialType(t string) bool {
	return validMaterialTypes[t]
}

// materialService moves material bytes through the storage gateway and records them.
type materialService struct {
	Store   Store
	Objects ObjectStore
	Auditor Auditor
}

// NewMaterialService creates a new MaterialService.
func NewMaterialService(store Store, objects ObjectStore, auditor Auditor) *materialService {
	return &materialService{Store: store, Objects: objects, Auditor: auditor}
}

func normalizeType(t string) (string, error) {
	if t == "" {
		return models.MaterialVideo, nil
	}
	if !ValidMaterialType(t) {
		return "", fmt.Errorf("%w: type must be one of video, image, audio, overlay", ErrValidation)
	}
	return t, nil
}

// UploadMaterial stores the file, then records a ready material row. A failed row insert
// leaves the object in storage; its key is logged for the sweeper.
func (s *materialService) UploadMaterial(ctx context.Context, u MaterialUpload) (*models.UploadedMaterial, error) {
	if u.ProjectID == "" || u.Body == nil {
		return nil, fmt.Errorf("%w: file and projectId are required", ErrValidation)
	}
	kind, err := normalizeType(u.Type)
	if err != nil {
		return nil, err
	}
	if _, err := s.Store.GetProject(ctx, u.ProjectID); err != nil {
		return nil, translate(err)
	}

	res := s.Objects.Upload(ctx, u.Body, UploadOptions{
		Name:        u.Name,
		Folder:      storage.MaterialFolder(u.ProjectID, kind),
		ContentType: u.ContentType,
		Size:        u.Size,
	})
	if !res.Success {
		return nil, fmt.Errorf("%w: %s", ErrDependency, res.Error)
	}

	material := &models.Material{
		ProjectID:     u.ProjectID,
		Name:          u.Name,
		Type:          kind,
		FileURL:       res.URL,
		FileKey:       res.Key,
		FileSizeBytes: u.Size,
		MimeType:      contentTypeFor(u.Name, u.ContentType),
		Status:        models.MaterialReady,
	}
	if err := s.Store.CreateMaterial(ctx, material); err != nil {
		logging.Log.Errorf("MaterialService: material row for object '%s' was not saved, object is orphaned: %v", res.Key, err)
		return nil, fmt.Errorf("failed to save file metadata: %w", err)
	}

	logging.Log.Infof("MaterialService: stored %s '%s' for project %s (%s)", kind, u.Name, u.ProjectID, humanize.IBytes(uint64(max(u.Size, 0))))
	return &models.UploadedMaterial{ID: material.ID, URL: material.FileURL, Key: material.FileKey, Name: material.Name}, nil
}

// PresignUpload issues a direct-upload URL into the project's material folder.
// Nothing is written to the database.
func (s *materialService) PresignUpload(ctx context.Context, projectID, materialType, fileName string) (*models.PresignedUpload, error) {
	if projectID == "" || fileName == "" {
		return nil, fmt.Errorf("%w: fileName and projectId are required", ErrValidation)
	}
	kind, err := normalizeType(materialType)
	if err != nil {
		return nil, err
	}
	return s.Objects.PresignUpload(ctx, fileName, storage.MaterialFolder(projectID, kind), "")
}

// RegisterMaterial records an object the browser uploaded with a presigned URL.
func (s *materialService) RegisterMaterial(ctx context.Context, p models.MaterialRegisterPayload) (*models.Material, error) {
	if p.ProjectID == "" || p.Key == "" || p.Name == "" {
		return nil, fmt.Errorf("%w: projectId, key and name are required", ErrValidation)
	}
	kind, err := normalizeType(p.Type)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(p.Key, storage.ProjectPrefix(p.ProjectID)) {
		return nil, fmt.Errorf("%w: key does not belong to project %s", ErrValidation, p.ProjectID)
	}
	if p.FileSizeBytes < 0 {
		return nil, fmt.Errorf("%w: fileSizeBytes cannot be negative", ErrValidation)
	}
	if _, err := s.Store.GetProject(ctx, p.ProjectID); err != nil {
		return nil, translate(err)
	}

	material := &models.Material{
		ProjectID:     p.ProjectID,
		Name:          p.Name,
		Type:          kind,
		FileURL:       s.Objects.PublicURL(p.Key),
		FileKey:       p.Key,
		FileSizeBytes: p.FileSizeBytes,
		MimeType:      contentTypeFor(p.Name, p.MimeType),
		Status:        models.MaterialReady,
	}
	if err := s.Store.CreateMaterial(ctx, material); err != nil {
		return nil, translate(err)
	}
	return material, nil
}

// DownloadURL presigns a GET for a material. Expiry is clamped to MaxPresignExpiry.
func (s *materialService) DownloadURL(ctx context.Context, id string, expiry time.Duration) (string, error) {
	m, err := s.Store.GetMaterial(ctx, id)
	if err != nil {
		return "", translate(err)
	}
	if expiry > MaxPresignExpiry {
		expiry = MaxPresignExpiry
	}
	return s.Objects.PresignDownload(ctx, m.FileKey, expiry)
}

// DeleteMaterial removes the row, then the object on a best-effort basis.
func (s *materialService) DeleteMaterial(ctx context.Context, id string) (bool, error) {
	m, err := s.Store.GetMaterial(ctx, id)
	if err != nil {
		return false, translate(err)
	}
	if err := s.Store.DeleteMaterial(ctx, id); err != nil {
		return false, translate(err)
	}

	deleted := s.Objects.Delete(ctx, m.FileKey)
	if !deleted {
		logging.Log.Warnf("MaterialService: object '%s' of material %s was not deleted", m.FileKey, id)
	}
	s.Auditor.Log(ctx, "material.delete", "api", "Material:"+id, map[string]interface{}{
		"project_id":      m.ProjectID,
		"key":             m.FileKey,
		"storage_deleted": deleted,
	})
	return deleted, nil
}

// filepath: internal/services/brandkit_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"adreel/internal/logging"
	"adreel/internal/models"
	"adreel/internal/repository"
)

var _ BrandKitService = (*brandKitService)(nil)

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

type brandKitService struct {
	Store   Store
	Objects ObjectStore
	Auditor Auditor
}

// NewBrandKitService creates a new BrandKitService.
func NewBrandKitService(store Store, objects ObjectStore, auditor Auditor) *brandKitService {
	return &brandKitService{Store: store, Objects: objects, Auditor: auditor}
}

// primaryKit returns the project's first brand kit, recreating the default one when the
// best-effort creation step never produced it.
func (s *brandKitService) primaryKit(ctx context.Context, projectID string) (*models.BrandKit, error) {
	if _, err := s.Store.GetProject(ctx, projectID); err != nil {
		return nil, translate(err)
	}
	kit, err := s.Store.PrimaryBrandKit(ctx, projectID)
	if err == nil {
		return kit, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	logging.Log.Infof("BrandKitService: project %s has no brand kit, creating the default", projectID)
	def := models.DefaultBrandKit(projectID)
	if err := s.Store.CreateBrandKit(ctx, &def); err != nil {
		return nil, err
	}
	return &def, nil
}

func checkColor(field string, v *string) error {
	if v != nil && !hexColor.MatchString(*v) {
		return fmt.Errorf("%w: %s must be #RRGGBB", ErrValidation, field)
	}
	return nil
}

func applyBrandKitPatch(kit *models.BrandKit, p models.BrandKitUpdatePayload) error {
	for field, v := range map[string]*string{
		"primary_color":   p.PrimaryColor,
		"secondary_color": p.SecondaryColor,
		"text_color":      p.TextColor,
	} {
		if err := checkColor(field, v); err != nil {
			return err
		}
	}
	if p.FontWeight != nil && (*p.FontWeight < 100 || *p.FontWeight > 900) {
		return fmt.Errorf("%w: font_weight must be between 100 and 900", ErrValidation)
	}
	if p.FontFamily != nil && strings.TrimSpace(*p.FontFamily) == "" {
		return fmt.Errorf("%w: font_family cannot be empty", ErrValidation)
	}

	if p.LogoURL != nil {
		kit.LogoURL = *p.LogoURL
		kit.LogoKey = ""
	}
	if p.PrimaryColor != nil {
		kit.PrimaryColor = strings.ToUpper(*p.PrimaryColor)
	}
	if p.SecondaryColor != nil {
		kit.SecondaryColor = strings.ToUpper(*p.SecondaryColor)
	}
	if p.TextColor != nil {
		kit.TextColor = strings.ToUpper(*p.TextColor)
	}
	if p.FontFamily != nil {
		kit.FontFamily = strings.TrimSpace(*p.FontFamily)
	}
	if p.FontWeight != nil {
		kit.FontWeight = *p.FontWeight
	}
	if p.SubtitleStyle != nil {
		kit.SubtitleStyle = *p.SubtitleStyle
	}
	if p.CTAStyle != nil {
		kit.CTAStyle = *p.CTAStyle
	}
	return nil
}

// UpdateBrandKit patches the project's primary brand kit.
func (s *brandKitService) UpdateBrandKit(ctx context.Context, projectID string, p models.BrandKitUpdatePayload) (*models.BrandKit, error) {
	kit, err := s.primaryKit(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := applyBrandKitPatch(kit, p); err != nil {
		return nil, err
	}
	if err := s.Store.SaveBrandKit(ctx, kit); err != nil {
		return nil, translate(err)
	}
	return kit, nil
}

// UploadLogo stores a logo under the project's brand folder and points the brand kit at it.
// The previous uploaded logo, if any, becomes an orphan.
func (s *brandKitService) UploadLogo(ctx context.Context, projectID string, u MaterialUpload) (*models.BrandKit, error) {
	if u.Body == nil {
		return nil, fmt.Errorf("%w: file is required", ErrValidation)
	}
	kit, err := s.primaryKit(ctx, projectID)
	if err != nil {
		return nil, err
	}

	res := s.Objects.UploadBrandAsset(ctx, projectID, u.Body, UploadOptions{
		Name:        u.Name,
		ContentType: u.ContentType,
		Size:        u.Size,
	})
	if !res.Success {
		return nil, fmt.Errorf("%w: %s", ErrDependency, res.Error)
	}

	previous := kit.LogoKey
	kit.LogoURL = res.URL
	kit.LogoKey = res.Key
	if err := s.Store.SaveBrandKit(ctx, kit); err != nil {
		logging.Log.Errorf("BrandKitService: logo '%s' uploaded but brand kit %s not updated: %v", res.Key, kit.ID, err)
		return nil, translate(err)
	}

	s.Auditor.Log(ctx, "brandkit.logo", "api", "BrandKit:"+kit.ID, map[string]interface{}{
		"project_id":   projectID,
		"key":          res.Key,
		"previous_key": previous,
	})
	return kit, nil
}

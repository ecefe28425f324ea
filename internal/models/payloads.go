package models

import "encoding/json"

// ProjectCreatePayload is the body of POST /api/projects.
type ProjectCreatePayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Platform    string `json:"platform"`

	TestGoal          string `json:"testGoal"`
	TargetAudience    string `json:"targetAudience"`
	CampaignObjective string `json:"campaignObjective"`

	UTMSource       string `json:"utmSource"`
	UTMMedium       string `json:"utmMedium"`
	UTMCampaign     string `json:"utmCampaign"`
	UTMContent      string `json:"utmContent"`
	LandingPageURL  string `json:"landingPageUrl"`
	TrackingPixelID string `json:"trackingPixelId"`

	Hooks       []string `json:"hooks"`
	Benefits    []string `json:"benefits"`
	CTAs        []string `json:"ctas"`
	MusicTracks []string `json:"musicTracks"`

	ContentUsageAuthorization bool `json:"contentUsageAuthorization"`
	ModelReleases             bool `json:"modelReleases"`
	MusicLicensing            bool `json:"musicLicensing"`
	BrandAssetRights          bool `json:"brandAssetRights"`

	OrganizationID string `json:"organizationId"`
	UserID         string `json:"userId"`
}

// Legal extracts the authorization flags.
func (p ProjectCreatePayload) Legal() LegalAuthorizations {
	return LegalAuthorizations{
		ContentUsage:     p.ContentUsageAuthorization,
		ModelReleases:    p.ModelReleases,
		MusicLicensing:   p.MusicLicensing,
		BrandAssetRights: p.BrandAssetRights,
	}
}

// ProjectUpdatePayload is the body of PATCH /api/projects/{id}.
// Nil fields are left untouched.
type ProjectUpdatePayload struct {
	Name            *string          `json:"name"`
	Description     *string          `json:"description"`
	Platform        *string          `json:"platform"`
	TestGoal        *string          `json:"test_goal"`
	TargetAudience  *string          `json:"target_audience"`
	CampaignName    *string          `json:"campaign_name"`
	UTMSource       *string          `json:"utm_source"`
	UTMMedium       *string          `json:"utm_medium"`
	UTMCampaign     *string          `json:"utm_campaign"`
	UTMContent      *string          `json:"utm_content"`
	LandingPageURL  *string          `json:"landing_page_url"`
	TrackingPixelID *string          `json:"tracking_pixel_id"`
	Status          *string          `json:"status"`
	Metadata        *json.RawMessage `json:"metadata"`
}

// BrandKitUpdatePayload is the body of PATCH /api/projects/{id}/brandkit.
type BrandKitUpdatePayload struct {
	LogoURL        *string        `json:"logo_url"`
	PrimaryColor   *string        `json:"primary_color"`
	SecondaryColor *string        `json:"secondary_color"`
	TextColor      *string        `json:"text_color"`
	FontFamily     *string        `json:"font_family"`
	FontWeight     *int           `json:"font_weight"`
	SubtitleStyle  *SubtitleStyle `json:"subtitle_style"`
	CTAStyle       *CTAStyle      `json:"cta_style"`
}

// MaterialRegisterPayload records an object the browser uploaded with a presigned URL.
type MaterialRegisterPayload struct {
	ProjectID     string `json:"projectId"`
	Key           string `json:"key"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	FileSizeBytes int64  `json:"fileSizeBytes"`
	MimeType      string `json:"mimeType"`
}

// ProjectRef is the trimmed projection returned by project creation.
type ProjectRef struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Platform   string `json:"platform"`
	Status     string `json:"status"`
	BrandKitID string `json:"brandKitId,omitempty"`
}

// StepResult reports the outcome of one optional provisioning step.
type StepResult struct {
	OK      bool   `json:"ok"`
	Skipped bool   `json:"skipped,omitempty"`
	Count   int    `json:"count,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Provisioning lists the optional steps run after the project insert.
type Provisioning struct {
	Variables StepResult `json:"variables"`
	BrandKit  StepResult `json:"brandKit"`
	Legal     StepResult `json:"legal"`
}

// Complete reports whether every optional step succeeded or was skipped.
func (p Provisioning) Complete() bool {
	return p.Variables.OK && p.BrandKit.OK && p.Legal.OK
}

// CreateProjectResult is returned by the creation workflow.
type CreateProjectResult struct {
	Project        ProjectRef   `json:"project"`
	OrganizationID string       `json:"organizationId"`
	Provisioning   Provisioning `json:"provisioning"`
}

// UploadedMaterial is the material projection returned by uploads.
type UploadedMaterial struct {
	ID   string `json:"id"`
	URL  string `json:"url"`
	Key  string `json:"key"`
	Name string `json:"name"`
}

// PresignedUpload is returned by GET /api/upload.
type PresignedUpload struct {
	UploadURL string `json:"uploadUrl"`
	Key       string `json:"key"`
	PublicURL string `json:"publicUrl"`
}

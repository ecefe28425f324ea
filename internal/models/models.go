// filepath: internal/models/models.go
// Package models contains the core data structures for the application.
package models

import (
	"encoding/json"
	"time"
)

// Project lifecycle states.
const (
	StatusDraft     = "draft"
	StatusActive    = "active"
	StatusTesting   = "testing"
	StatusPaused    = "paused"
	StatusCompleted = "completed"
	StatusArchived  = "archived"
)

// Content-pool variable types.
const (
	VariableHook    = "hook"
	VariableBenefit = "benefit"
	VariableCTA     = "cta"
	VariableMusic   = "music"
)

// Material types accepted by the upload paths.
const (
	MaterialVideo   = "video"
	MaterialImage   = "image"
	MaterialAudio   = "audio"
	MaterialOverlay = "overlay"
)

// MaterialReady is the only material status; there is no transcoding step.
const MaterialReady = "ready"

// RoleOwner is granted to the user who causes an organization to be created.
const RoleOwner = "owner"

// Info represents general information about the service.
type Info struct {
	ServiceName    string    `json:"service_name"`
	Version        string    `json:"version"`
	UptimeSince    time.Time `json:"uptime_since"`
	DatabaseDriver string    `json:"database_driver"`
	StorageBucket  string    `json:"storage_bucket"`
	StorageEnabled bool      `json:"storage_enabled"`
}

// User is a local account able to obtain a session.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Organization owns projects.
type Organization struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

// OrganizationMember links a user to an organization.
type OrganizationMember struct {
	OrganizationID string    `json:"organization_id"`
	UserID         string    `json:"user_id"`
	Role           string    `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
}

// OutputConfig is the render target every project is created with.
type OutputConfig struct {
	Format      string `json:"format"`
	Codec       string `json:"codec"`
	FrameRate   int    `json:"frame_rate"`
	AspectRatio string `json:"aspect_ratio"`
	Resolution  string `json:"resolution"`
}

// DefaultOutputConfig is fixed: vertical 1080p H.264 at 30fps.
func DefaultOutputConfig() OutputConfig {
	return OutputConfig{
		Format:      "MP4",
		Codec:       "H.264",
		FrameRate:   30,
		AspectRatio: "9:16",
		Resolution:  "1080x1920",
	}
}

// Project is a campaign-level container.
type Project struct {
	ID              string          `json:"id"`
	OrganizationID  string          `json:"organization_id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Platform        string          `json:"platform"`
	TestGoal        string          `json:"test_goal"`
	TargetAudience  string          `json:"target_audience"`
	CampaignName    string          `json:"campaign_name"`
	UTMSource       string          `json:"utm_source"`
	UTMMedium       string          `json:"utm_medium"`
	UTMCampaign     string          `json:"utm_campaign"`
	UTMContent      string          `json:"utm_content"`
	LandingPageURL  string          `json:"landing_page_url"`
	TrackingPixelID string          `json:"tracking_pixel_id"`
	Status          string          `json:"status"`
	CreatedBy       string          `json:"created_by"`
	OutputConfig    OutputConfig    `json:"output_config"`
	Metadata        json.RawMessage `json:"metadata"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ProjectSummary is a list row: the project plus a brand kit summary and counts.
type ProjectSummary struct {
	Project
	BrandKits       []BrandKitSummary `json:"brand_kits"`
	ExperimentCount int               `json:"experiment_count"`
	MaterialCount   int               `json:"material_count"`
}

// ProjectDetail is a project with every relation expanded.
type ProjectDetail struct {
	Project
	BrandKits   []BrandKit   `json:"brand_kits"`
	Materials   []Material   `json:"materials"`
	Variables   []Variable   `json:"variables"`
	Experiments []Experiment `json:"experiments"`
}

// Variable is one content-pool entry (a hook line, CTA text, music choice...).
type Variable struct {
	ID           string    `json:"id"`
	ProjectID    string    `json:"project_id"`
	VariableType string    `json:"variable_type"`
	Name         string    `json:"name"`
	Content      string    `json:"content"`
	Position     int       `json:"position"`
	CreatedAt    time.Time `json:"created_at"`
}

// SubtitleStyle controls burned-in subtitle rendering.
type SubtitleStyle struct {
	Background   string `json:"background"`
	TextColor    string `json:"text_color"`
	OutlineColor string `json:"outline_color"`
	OutlineWidth int    `json:"outline_width"`
	Position     string `json:"position"`
	MarginBottom int    `json:"margin_bottom"`
}

// CTAStyle controls the call-to-action overlay.
type CTAStyle struct {
	Type            string `json:"type"`
	Position        string `json:"position"`
	BackgroundColor string `json:"background_color"`
	TextColor       string `json:"text_color"`
	Animation       string `json:"animation"`
}

// BrandKit is the visual styling applied to a project's videos.
type BrandKit struct {
	ID             string        `json:"id"`
	ProjectID      string        `json:"project_id"`
	LogoURL        string        `json:"logo_url"`
	LogoKey        string        `json:"logo_key"`
	PrimaryColor   string        `json:"primary_color"`
	SecondaryColor string        `json:"secondary_color"`
	TextColor      string        `json:"text_color"`
	FontFamily     string        `json:"font_family"`
	FontWeight     int           `json:"font_weight"`
	SubtitleStyle  SubtitleStyle `json:"subtitle_style"`
	CTAStyle       CTAStyle      `json:"cta_style"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// BrandKitSummary is the subset of a brand kit shown in project lists.
type BrandKitSummary struct {
	ID             string `json:"id"`
	LogoURL        string `json:"logo_url"`
	PrimaryColor   string `json:"primary_color"`
	SecondaryColor string `json:"secondary_color"`
}

// DefaultBrandKit returns the styling every new project starts with.
func DefaultBrandKit(projectID string) BrandKit {
	return BrandKit{
		ProjectID:      projectID,
		PrimaryColor:   "#000000",
		SecondaryColor: "#FFFFFF",
		TextColor:      "#FFFFFF",
		FontFamily:     "Inter",
		FontWeight:     500,
		SubtitleStyle: SubtitleStyle{
			Background:   "semi-transparent",
			TextColor:    "#FFFFFF",
			OutlineColor: "#000000",
			OutlineWidth: 2,
			Position:     "bottom-center",
			MarginBottom: 100,
		},
		CTAStyle: CTAStyle{
			Type:            "button",
			Position:        "bottom-center",
			BackgroundColor: "primary",
			TextColor:       "#FFFFFF",
			Animation:       "pulse",
		},
	}
}

// Material is an uploaded media asset.
type Material struct {
	ID            string    `json:"id"`
	ProjectID     string    `json:"project_id"`
	Name          string    `json:"name"`
	Type          string    `json:"type"`
	FileURL       string    `json:"file_url"`
	FileKey       string    `json:"file_key"`
	FileSizeBytes int64     `json:"file_size_bytes"`
	MimeType      string    `json:"mime_type"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

// Experiment groups variants tested against each other.
type Experiment struct {
	ID              string    `json:"id"`
	ProjectID       string    `json:"project_id"`
	Name            string    `json:"name"`
	Status          string    `json:"status"`
	VariableType    string    `json:"variable_type"`
	CreatedAt       time.Time `json:"created_at"`
	Variants        []Variant `json:"variants"`
	WinnerVariantID string    `json:"winner_variant_id,omitempty"`
}

// Variant is one rendered version of a video with its performance numbers.
type Variant struct {
	ID           string    `json:"id"`
	ExperimentID string    `json:"experiment_id"`
	Name         string    `json:"name"`
	UTMContent   string    `json:"utm_content"`
	Impressions  int64     `json:"impressions"`
	Clicks       int64     `json:"clicks"`
	Conversions  int64     `json:"conversions"`
	Spend        float64   `json:"spend"`
	Revenue      float64   `json:"revenue"`
	ROAS         float64   `json:"roas"`
	CreatedAt    time.Time `json:"created_at"`
}

// LegalAuthorizations is stored under metadata.legal_authorizations.
type LegalAuthorizations struct {
	ContentUsage     bool `json:"content_usage"`
	ModelReleases    bool `json:"model_releases"`
	MusicLicensing   bool `json:"music_licensing"`
	BrandAssetRights bool `json:"brand_asset_rights"`
}

// Any reports whether at least one authorization was granted.
func (l LegalAuthorizations) Any() bool {
	return l.ContentUsage || l.ModelReleases || l.MusicLicensing || l.BrandAssetRights
}

// SweepReport summarizes one orphan-object sweep.
type SweepReport struct {
	Scanned  int `json:"scanned"`
	Orphaned int `json:"orphaned"`
	Deleted  int `json:"deleted"`
	Failed   int `json:"failed"`

	// BytesFreed sums the listed sizes of successfully deleted objects.
	BytesFreed int64 `json:"bytes_freed"`

	// Keys are the orphaned keys, deleted or not.
	Keys []string `json:"keys,omitempty"`
}

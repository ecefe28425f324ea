// filepath: internal/api/handlers/main.go
package handlers

import (
	"context"
	"time"

	"adreel/internal/config"
	"adreel/internal/services"
	"adreel/internal/services/auth"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers provides a struct to hold shared dependencies for API handlers.
type Handlers struct {
	Info      services.InfoService
	User      services.UserService
	Token     auth.TokenService
	Projects  services.ProjectService
	Materials services.MaterialService
	BrandKits services.BrandKitService
	Sweeper   services.SweeperService
	Auditor   services.Auditor
	DB        Pinger

	Cfg       *config.Config
	Version   string
	StartTime time.Time
}

// Deps groups the services NewHandlers wires together.
type Deps struct {
	Info      services.InfoService
	User      services.UserService
	Token     auth.TokenService
	Projects  services.ProjectService
	Materials services.MaterialService
	BrandKits services.BrandKitService
	Sweeper   services.SweeperService
	Auditor   services.Auditor
	DB        Pinger
}

// NewHandlers creates a new instance of Handlers with its dependencies.
func NewHandlers(deps Deps, cfg *config.Config) *Handlers {
	info := deps.Info.GetInfo()
	return &Handlers{
		Info:      deps.Info,
		User:      deps.User,
		Token:     deps.Token,
		Projects:  deps.Projects,
		Materials: deps.Materials,
		BrandKits: deps.BrandKits,
		Sweeper:   deps.Sweeper,
		Auditor:   deps.Auditor,
		DB:        deps.DB,
		Cfg:       cfg,
		Version:   info.Version,
		StartTime: info.UptimeSince,
	}
}

// maxUploadBytes is the request body cap for multipart uploads.
func (h *Handlers) maxUploadBytes() int64 {
	if h.Cfg == nil || h.Cfg.MaxUploadSizeBytes <= 0 {
		return 100 << 20
	}
	return h.Cfg.MaxUploadSizeBytes
}

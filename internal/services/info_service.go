// filepath: internal/services/info_service.go
package services

import (
	"time"

	"adreel/internal/models"
)

var _ InfoService = (*infoService)(nil)

type infoService struct {
	Version        string
	StartTime      time.Time
	DatabaseDriver string
	Objects        ObjectStore
}

// NewInfoService creates a new InfoService.
func NewInfoService(version string, startTime time.Time, databaseDriver string, objects ObjectStore) *infoService {
	return &infoService{
		Version:        version,
		StartTime:      startTime,
		DatabaseDriver: databaseDriver,
		Objects:        objects,
	}
}

// GetInfo retrieves the application information.
func (s *infoService) GetInfo() models.Info {
	info := models.Info{
		ServiceName:    "adreel API",
		Version:        s.Version,
		UptimeSince:    s.StartTime,
		DatabaseDriver: s.DatabaseDriver,
	}
	if s.Objects != nil {
		info.StorageBucket = s.Objects.Bucket()
		info.StorageEnabled = s.Objects.Enabled()
	}
	return info
}

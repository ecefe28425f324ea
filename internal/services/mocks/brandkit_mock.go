// filepath: internal/services/mocks/brandkit_mock.go
package mocks

import (
	"context"

	"adreel/internal/models"
	"adreel/internal/services"

	"github.com/stretchr/testify/mock"
)

// MockBrandKitService is a mock implementation of services.BrandKitService
type MockBrandKitService struct {
	mock.Mock
}

var _ services.BrandKitService = (*MockBrandKitService)(nil)

func (m *MockBrandKitService) UpdateBrandKit(ctx context.Context, projectID string, payload models.BrandKitUpdatePayload) (*models.BrandKit, error) {
	args := m.Called(ctx, projectID, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BrandKit), args.Error(1)
}

func (m *MockBrandKitService) UploadLogo(ctx context.Context, projectID string, upload services.MaterialUpload) (*models.BrandKit, error) {
	args := m.Called(ctx, projectID, upload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BrandKit), args.Error(1)
}

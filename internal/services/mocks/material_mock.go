// filepath: internal/services/mocks/material_mock.go
package mocks

import (
	"context"
	"time"

	"adreel/internal/models"
	"adreel/internal/services"

	"github.com/stretchr/testify/mock"
)

// MockMaterialService is a mock implementation of services.MaterialService
type MockMaterialService struct {
	mock.Mock
}

var _ services.MaterialService = (*MockMaterialService)(nil)

func (m *MockMaterialService) UploadMaterial(ctx context.Context, upload services.MaterialUpload) (*models.UploadedMaterial, error) {
	args := m.Called(ctx, upload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UploadedMaterial), args.Error(1)
}

func (m *MockMaterialService) PresignUpload(ctx context.Context, projectID, materialType, fileName string) (*models.PresignedUpload, error) {
	args := m.Called(ctx, projectID, materialType, fileName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PresignedUpload), args.Error(1)
}

func (m *MockMaterialService) RegisterMaterial(ctx context.Context, payload models.MaterialRegisterPayload) (*models.Material, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Material), args.Error(1)
}

func (m *MockMaterialService) DownloadURL(ctx context.Context, id string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, id, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockMaterialService) DeleteMaterial(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

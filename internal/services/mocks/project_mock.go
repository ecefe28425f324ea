// filepath: internal/services/mocks/project_mock.go
package mocks

import (
	"context"

	"adreel/internal/models"
	"adreel/internal/services"

	"github.com/stretchr/testify/mock"
)

// MockProjectService is a mock implementation of services.ProjectService
type MockProjectService struct {
	mock.Mock
}

var _ services.ProjectService = (*MockProjectService)(nil)

func (m *MockProjectService) CreateProject(ctx context.Context, actor *models.User, payload models.ProjectCreatePayload) (*models.CreateProjectResult, error) {
	args := m.Called(ctx, actor, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CreateProjectResult), args.Error(1)
}

func (m *MockProjectService) GetProject(ctx context.Context, id string) (*models.ProjectDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProjectDetail), args.Error(1)
}

func (m *MockProjectService) ListProjects(ctx context.Context, actor *models.User, organizationID string) ([]models.ProjectSummary, error) {
	args := m.Called(ctx, actor, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ProjectSummary), args.Error(1)
}

func (m *MockProjectService) UpdateProject(ctx context.Context, id string, payload models.ProjectUpdatePayload) (*models.Project, error) {
	args := m.Called(ctx, id, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockProjectService) DeleteProject(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProjectService) BuildUTMLink(ctx context.Context, id, content, term string) (string, error) {
	args := m.Called(ctx, id, content, term)
	return args.String(0), args.Error(1)
}

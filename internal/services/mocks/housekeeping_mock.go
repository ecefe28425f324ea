// filepath: internal/services/mocks/housekeeping_mock.go
package mocks

import (
	"context"

	"adreel/internal/models"
	"adreel/internal/services"

	"github.com/stretchr/testify/mock"
)

// MockSweeperService is a mock implementation of services.SweeperService
type MockSweeperService struct {
	mock.Mock
}

var _ services.SweeperService = (*MockSweeperService)(nil)

func (m *MockSweeperService) Start() {
	m.Called()
}

func (m *MockSweeperService) Stop() {
	m.Called()
}

func (m *MockSweeperService) Sweep(ctx context.Context) (*models.SweepReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SweepReport), args.Error(1)
}

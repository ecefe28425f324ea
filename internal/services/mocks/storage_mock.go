// filepath: internal/services/mocks/storage_mock.go
package mocks

import (
	"context"
	"io"
	"time"

	"adreel/internal/models"
	"adreel/internal/services"

	"github.com/stretchr/testify/mock"
)

// MockObjectStore mocks the storage gateway.
type MockObjectStore struct {
	mock.Mock
}

var _ services.ObjectStore = (*MockObjectStore)(nil)

func (m *MockObjectStore) Enabled() bool {
	return m.Called().Bool(0)
}

func (m *MockObjectStore) Bucket() string {
	return m.Called().String(0)
}

func (m *MockObjectStore) PublicURL(key string) string {
	return m.Called(key).String(0)
}

func (m *MockObjectStore) Upload(ctx context.Context, body io.Reader, opts services.UploadOptions) services.UploadResult {
	args := m.Called(ctx, body, opts)
	return args.Get(0).(services.UploadResult)
}

func (m *MockObjectStore) UploadBrandAsset(ctx context.Context, projectID string, body io.Reader, opts services.UploadOptions) services.UploadResult {
	args := m.Called(ctx, projectID, body, opts)
	return args.Get(0).(services.UploadResult)
}

func (m *MockObjectStore) UploadExportedVideo(ctx context.Context, projectID string, body io.Reader, name string, size int64) services.UploadResult {
	args := m.Called(ctx, projectID, body, name, size)
	return args.Get(0).(services.UploadResult)
}

func (m *MockObjectStore) PresignUpload(ctx context.Context, name, folder, contentType string) (*models.PresignedUpload, error) {
	args := m.Called(ctx, name, folder, contentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PresignedUpload), args.Error(1)
}

func (m *MockObjectStore) PresignDownload(ctx context.Context, key string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, key, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockObjectStore) Delete(ctx context.Context, key string) bool {
	return m.Called(ctx, key).Bool(0)
}

// List replays the []services.ObjectInfo given as the first return value through fn.
func (m *MockObjectStore) List(ctx context.Context, prefix string, fn func(services.ObjectInfo) error) error {
	args := m.Called(ctx, prefix, fn)
	if objs, ok := args.Get(0).([]services.ObjectInfo); ok {
		for _, o := range objs {
			if err := fn(o); err != nil {
				return err
			}
		}
	}
	return args.Error(1)
}

// filepath: internal/housekeeping/service_test.go
package housekeeping

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"adreel/internal/services"
	"adreel/internal/services/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// MockDB is a mock implementation of the DBTX interface for testing.
type MockDB struct {
	mock.Mock
}

func (m *MockDB) ReferencedMaterialKeys(ctx context.Context, keys []string) (map[string]bool, error) {
	args := m.Called(ctx, keys)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]bool), args.Error(1)
}

func (m *MockDB) ReferencedLogoKeys(ctx context.Context, keys []string) (map[string]bool, error) {
	args := m.Called(ctx, keys)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]bool), args.Error(1)
}

func (m *MockDB) DeleteExpiredRefreshTokens(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func keyAt(folder string, t time.Time, name string) string {
	return fmt.Sprintf("%s/%d_abcdef_%s", folder, t.UnixMilli(), name)
}

// setupTest creates a new service with mock dependencies for testing.
func setupTest(interval time.Duration) (*Service, *MockDB, *mocks.MockObjectStore) {
	db := new(MockDB)
	objects := new(mocks.MockObjectStore)
	svc := NewService(Dependencies{DB: db, Objects: objects}, interval, 24*time.Hour)
	svc.now = func() time.Time { return now }
	return svc, db, objects
}

func TestSweep(t *testing.T) {
	old := now.Add(-48 * time.Hour)
	referenced := keyAt("projects/p1/videos", old, "kept.mp4")
	logo := keyAt("projects/p1/brand", old, "logo.png")
	orphan := keyAt("projects/p1/images", old, "lost.png")
	stuck := keyAt("projects/p2/audios", old, "stuck.mp3")
	fresh := keyAt("projects/p1/videos", now.Add(-time.Hour), "new.mp4")
	export := keyAt("projects/p1/exports", old, "variant.mp4")

	svc, db, objects := setupTest(0)
	objects.On("Enabled").Return(true)
	objects.On("List", mock.Anything, SweepPrefix, mock.Anything).Return([]services.ObjectInfo{
		{Key: referenced, Size: 10},
		{Key: logo, Size: 20},
		{Key: orphan, Size: 300},
		{Key: stuck, Size: 4000},
		{Key: fresh, Size: 5},
		{Key: export, Size: 6},
		{Key: "projects/p3/legacy.bin", Size: 7, LastModified: now.Add(-72 * time.Hour)},
		{Key: "projects/p3/recent.bin", Size: 8, LastModified: now.Add(-time.Minute)},
	}, nil)

	candidates := []string{referenced, logo, orphan, stuck, "projects/p3/legacy.bin"}
	db.On("ReferencedMaterialKeys", mock.Anything, candidates).Return(map[string]bool{referenced: true}, nil).Once()
	db.On("ReferencedLogoKeys", mock.Anything, candidates).Return(map[string]bool{logo: true}, nil).Once()
	objects.On("Delete", mock.Anything, orphan).Return(true).Once()
	objects.On("Delete", mock.Anything, stuck).Return(false).Once()
	objects.On("Delete", mock.Anything, "projects/p3/legacy.bin").Return(true).Once()

	report, err := svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8, report.Scanned)
	assert.Equal(t, 3, report.Orphaned)
	assert.Equal(t, 2, report.Deleted)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, int64(307), report.BytesFreed)
	assert.ElementsMatch(t, []string{orphan, stuck, "projects/p3/legacy.bin"}, report.Keys)

	objects.AssertNotCalled(t, "Delete", mock.Anything, export)
	objects.AssertNotCalled(t, "Delete", mock.Anything, fresh)
	db.AssertExpectations(t)
	objects.AssertExpectations(t)
}

func TestSweep_Batches(t *testing.T) {
	svc, db, objects := setupTest(0)
	old := now.Add(-48 * time.Hour)
	var listed []services.ObjectInfo
	for i := 0; i < batchSize+5; i++ {
		listed = append(listed, services.ObjectInfo{Key: keyAt("projects/p1/videos", old, fmt.Sprintf("%d.mp4", i))})
	}
	objects.On("Enabled").Return(true)
	objects.On("List", mock.Anything, SweepPrefix, mock.Anything).Return(listed, nil)
	everything := func(keys []string) map[string]bool {
		out := map[string]bool{}
		for _, k := range keys {
			out[k] = true
		}
		return out
	}
	db.On("ReferencedMaterialKeys", mock.Anything, mock.MatchedBy(func(k []string) bool { return len(k) == batchSize })).
		Return(everything(keysOf(listed[:batchSize])), nil).Once()
	db.On("ReferencedMaterialKeys", mock.Anything, mock.MatchedBy(func(k []string) bool { return len(k) == 5 })).
		Return(everything(keysOf(listed[batchSize:])), nil).Once()
	db.On("ReferencedLogoKeys", mock.Anything, mock.Anything).Return(map[string]bool{}, nil).Twice()

	report, err := svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, batchSize+5, report.Scanned)
	assert.Zero(t, report.Orphaned)
	objects.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	db.AssertExpectations(t)
}

func keysOf(objs []services.ObjectInfo) []string {
	out := make([]string, len(objs))
	for i, o := range objs {
		out[i] = o.Key
	}
	return out
}

func TestSweep_Errors(t *testing.T) {
	t.Run("Storage disabled", func(t *testing.T) {
		svc, _, objects := setupTest(0)
		objects.On("Enabled").Return(false)
		_, err := svc.Sweep(context.Background())
		assert.ErrorIs(t, err, services.ErrDependency)
		objects.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Lookup failure deletes nothing", func(t *testing.T) {
		svc, db, objects := setupTest(0)
		objects.On("Enabled").Return(true)
		objects.On("List", mock.Anything, SweepPrefix, mock.Anything).
			Return([]services.ObjectInfo{{Key: keyAt("projects/p1/videos", now.Add(-48*time.Hour), "a.mp4")}}, nil)
		db.On("ReferencedMaterialKeys", mock.Anything, mock.Anything).Return(nil, errors.New("database is locked"))

		report, err := svc.Sweep(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database is locked")
		assert.Equal(t, 1, report.Scanned)
		objects.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("List failure", func(t *testing.T) {
		svc, _, objects := setupTest(0)
		objects.On("Enabled").Return(true)
		objects.On("List", mock.Anything, SweepPrefix, mock.Anything).Return(nil, errors.New("NoSuchBucket"))
		_, err := svc.Sweep(context.Background())
		assert.ErrorContains(t, err, "NoSuchBucket")
	})
}

func TestService_StartStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	svc, db, objects := setupTest(5 * time.Millisecond)
	swept := make(chan struct{}, 1)
	objects.On("Enabled").Return(true)
	objects.On("List", mock.Anything, SweepPrefix, mock.Anything).Return([]services.ObjectInfo{}, nil).
		Run(func(mock.Arguments) {
			select {
			case swept <- struct{}{}:
			default:
			}
		})
	db.On("DeleteExpiredRefreshTokens", mock.Anything).Return(int64(2), nil).Maybe()

	svc.Start()
	select {
	case <-swept:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper never ran")
	}
	svc.Stop()
	svc.Stop()
}

func TestService_Disabled(t *testing.T) {
	defer goleak.VerifyNone(t)

	svc, _, objects := setupTest(0)
	svc.Start()
	svc.Stop()
	objects.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)

	svc, _, objects = setupTest(time.Minute)
	objects.On("Enabled").Return(false)
	svc.Start()
	svc.Stop()
	objects.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
}

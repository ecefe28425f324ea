// filepath: internal/api/handlers/main_test.go
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"adreel/internal/config"
	"adreel/internal/models"
	"adreel/internal/services/auth"
	"adreel/internal/services/mocks"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPinger struct {
	mock.Mock
}

func (m *mockPinger) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type testAPI struct {
	h         *Handlers
	router    *mux.Router
	info      *mocks.MockInfoService
	users     *mocks.MockUserService
	tokens    *mocks.MockTokenService
	projects  *mocks.MockProjectService
	materials *mocks.MockMaterialService
	brandKits *mocks.MockBrandKitService
	sweeper   *mocks.MockSweeperService
	auditor   *mocks.MockAuditor
	db        *mockPinger
}

var testUser = &models.User{ID: "01HUSER", Email: "user@example.com"}

// setupTestAPI wires every handler to fresh mocks. When user is non-nil it is placed in
// the request context the way the Identify middleware would.
func setupTestAPI(t *testing.T, user *models.User) *testAPI {
	t.Helper()

	api := &testAPI{
		info:      new(mocks.MockInfoService),
		users:     new(mocks.MockUserService),
		tokens:    new(mocks.MockTokenService),
		projects:  new(mocks.MockProjectService),
		materials: new(mocks.MockMaterialService),
		brandKits: new(mocks.MockBrandKitService),
		sweeper:   new(mocks.MockSweeperService),
		auditor:   new(mocks.MockAuditor),
		db:        new(mockPinger),
	}
	api.info.On("GetInfo").Return(models.Info{ServiceName: "adreel API", Version: "test", UptimeSince: time.Now()})
	api.auditor.On("Log", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Maybe()

	api.h = NewHandlers(Deps{
		Info:      api.info,
		User:      api.users,
		Token:     api.tokens,
		Projects:  api.projects,
		Materials: api.materials,
		BrandKits: api.brandKits,
		Sweeper:   api.sweeper,
		Auditor:   api.auditor,
		DB:        api.db,
	}, &config.Config{MaxUploadSizeBytes: 1 << 20, JWT: config.JWTConfig{AccessDurationMin: 15}})

	r := mux.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if user != nil {
				req = req.WithContext(auth.WithUser(req.Context(), user))
			}
			next.ServeHTTP(w, req)
		})
	})
	h := api.h
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/api/info", h.GetInfo).Methods("GET")
	r.HandleFunc("/api/token", h.GetToken).Methods("POST")
	r.HandleFunc("/api/token/refresh", h.RefreshToken).Methods("POST")
	r.HandleFunc("/api/logout", h.Logout).Methods("POST")
	r.HandleFunc("/api/me", h.GetUserMe).Methods("GET")
	r.HandleFunc("/api/me", h.UpdateUserMe).Methods("PATCH")
	r.HandleFunc("/api/projects", h.CreateProject).Methods("POST")
	r.HandleFunc("/api/projects", h.ListProjects).Methods("GET")
	r.HandleFunc("/api/projects/{id}", h.GetProject).Methods("GET")
	r.HandleFunc("/api/projects/{id}", h.UpdateProject).Methods("PATCH")
	r.HandleFunc("/api/projects/{id}", h.DeleteProject).Methods("DELETE")
	r.HandleFunc("/api/projects/{id}/utm", h.GetUTMLink).Methods("GET")
	r.HandleFunc("/api/projects/{id}/brandkit", h.UpdateBrandKit).Methods("PATCH")
	r.HandleFunc("/api/projects/{id}/brandkit/assets", h.UploadBrandAsset).Methods("POST")
	r.HandleFunc("/api/upload", h.UploadMaterial).Methods("POST")
	r.HandleFunc("/api/upload", h.PresignUpload).Methods("GET")
	r.HandleFunc("/api/materials", h.RegisterMaterial).Methods("POST")
	r.HandleFunc("/api/materials/{id}/download", h.DownloadMaterial).Methods("GET")
	r.HandleFunc("/api/materials/{id}", h.DeleteMaterial).Methods("DELETE")
	r.HandleFunc("/api/sweep", h.TriggerSweep).Methods("POST")
	r.HandleFunc("/api/users", h.GetUsers).Methods("GET")
	r.HandleFunc("/api/users", h.CreateUser).Methods("POST")
	r.HandleFunc("/api/users/{id}", h.UpdateUser).Methods("PATCH")
	r.HandleFunc("/api/users/{id}", h.DeleteUser).Methods("DELETE")
	api.router = r
	return api
}

func (a *testAPI) do(method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func (a *testAPI) doJSON(method, target, body string) *httptest.ResponseRecorder {
	return a.do(method, target, bytes.NewBufferString(body), "application/json")
}

// multipartBody builds a form with the given fields and, when fileName is set, a "file" part.
func multipartBody(t *testing.T, fields map[string]string, fileName string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileName != "" {
		part, err := mw.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

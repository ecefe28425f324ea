// filepath: internal/api/handlers/upload_handler_test.go
package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"testing"

	"adreel/internal/models"
	"adreel/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestUploadMaterial(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		api := setupTestAPI(t, nil)
		api.materials.On("UploadMaterial", mock.Anything, mock.MatchedBy(func(u services.MaterialUpload) bool {
			return u.ProjectID == "p1" && u.Type == "image" && u.Name == "hero.png" && u.Size == 4 && u.Body != nil
		})).Return(&models.UploadedMaterial{ID: "m1", URL: "https://cdn/x", Key: "projects/p1/images/x", Name: "hero.png"}, nil).Once()

		body, ct := multipartBody(t, map[string]string{"projectId": "p1", "type": "image"}, "hero.png", []byte("\x89PNG"))
		rr := api.do("POST", "/api/upload", body, ct)
		assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.JSONEq(t, `{"success":true,"material":{"id":"m1","url":"https://cdn/x","key":"projects/p1/images/x","name":"hero.png"}}`, rr.Body.String())
		api.materials.AssertExpectations(t)
	})

	t.Run("Name field overrides file name", func(t *testing.T) {
		api := setupTestAPI(t, nil)
		api.materials.On("UploadMaterial", mock.Anything, mock.MatchedBy(func(u services.MaterialUpload) bool {
			return u.Name == "Intro clip" && u.Type == ""
		})).Return(&models.UploadedMaterial{ID: "m2"}, nil).Once()

		body, ct := multipartBody(t, map[string]string{"projectId": "p1", "name": "Intro clip"}, "a.mp4", []byte("v"))
		rr := api.do("POST", "/api/upload", body, ct)
		assert.Equal(t, http.StatusOK, rr.Code)
		api.materials.AssertExpectations(t)
	})

	t.Run("Missing required fields", func(t *testing.T) {
		api := setupTestAPI(t, nil)
		noProject, ct := multipartBody(t, nil, "a.mp4", []byte("v"))
		rr := api.do("POST", "/api/upload", noProject, ct)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.JSONEq(t, `{"error":"Missing required fields"}`, rr.Body.String())

		noFile, ct := multipartBody(t, map[string]string{"projectId": "p1"}, "", nil)
		rr = api.do("POST", "/api/upload", noFile, ct)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.JSONEq(t, `{"error":"Missing required fields"}`, rr.Body.String())

		api.materials.AssertNotCalled(t, "UploadMaterial", mock.Anything, mock.Anything)
	})

	t.Run("Too large", func(t *testing.T) {
		api := setupTestAPI(t, nil)
		api.h.Cfg.MaxUploadSizeBytes = 512
		body, ct := multipartBody(t, map[string]string{"projectId": "p1"}, "big.mp4", bytes.Repeat([]byte("x"), 4096))
		rr := api.do("POST", "/api/upload", body, ct)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.JSONEq(t, `{"error":"File too large"}`, rr.Body.String())
		api.materials.AssertNotCalled(t, "UploadMaterial", mock.Anything, mock.Anything)
	})

	tests := []struct {
		name     string
		err      error
		status   int
		body     string
		contains string
	}{
		{"Storage failure", errors.Join(services.ErrDependency, errors.New("AccessDenied")), 500, "", "AccessDenied"},
		{"Row failure", errors.New("failed to save file metadata: disk full"), 500, `{"error":"Failed to save file metadata"}`, ""},
		{"Unknown project", services.ErrNotFound, 404, `{"error":"Project not found"}`, ""},
		{"Bad type", errors.Join(services.ErrValidation, errors.New("type must be one of video, image, audio, overlay")), 400, "", "type must be one of"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			api := setupTestAPI(t, nil)
			api.materials.On("UploadMaterial", mock.Anything, mock.Anything).Return(nil, tc.err).Once()
			body, ct := multipartBody(t, map[string]string{"projectId": "p1"}, "a.mp4", []byte("v"))
			rr := api.do("POST", "/api/upload", body, ct)
			assert.Equal(t, tc.status, rr.Code)
			if tc.body != "" {
				assert.JSONEq(t, tc.body, rr.Body.String())
			} else {
				assert.Contains(t, rr.Body.String(), tc.contains)
			}
		})
	}
}

func TestPresignUpload(t *testing.T) {
	api := setupTestAPI(t, nil)
	api.materials.On("PresignUpload", mock.Anything, "p1", "audio", "song.mp3").Return(&models.PresignedUpload{
		UploadURL: "https://signed", Key: "projects/p1/audios/1_abcdef_song.mp3", PublicURL: "https://cdn/x",
	}, nil).Once()

	rr := api.do("GET", "/api/upload?fileName=song.mp3&projectId=p1&type=audio", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"uploadUrl":"https://signed","key":"projects/p1/audios/1_abcdef_song.mp3","publicUrl":"https://cdn/x"}`, rr.Body.String())

	rr = api.do("GET", "/api/upload?projectId=p1", nil, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"Missing required parameters"}`, rr.Body.String())

	api.materials.On("PresignUpload", mock.Anything, "p1", "", "x.mp4").Return(nil, services.ErrDependency).Once()
	rr = api.do("GET", "/api/upload?projectId=p1&fileName=x.mp4", nil, "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	api.materials.AssertExpectations(t)
}

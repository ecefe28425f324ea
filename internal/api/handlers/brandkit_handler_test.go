// filepath: internal/api/handlers/brandkit_handler_test.go
package handlers

import (
	"errors"
	"net/http"
	"testing"

	"adreel/internal/models"
	"adreel/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestUpdateBrandKit(t *testing.T) {
	api := setupTestAPI(t, nil)
	api.brandKits.On("UpdateBrandKit", mock.Anything, "p1", mock.MatchedBy(func(p models.BrandKitUpdatePayload) bool {
		return p.PrimaryColor != nil && *p.PrimaryColor == "#FF5500"
	})).Return(&models.BrandKit{ID: "bk1", PrimaryColor: "#FF5500"}, nil).Once()
	api.brandKits.On("UpdateBrandKit", mock.Anything, "p1", mock.Anything).
		Return(nil, errors.Join(services.ErrValidation, errors.New("primary_color must be #RRGGBB"))).Once()

	rr := api.doJSON("PATCH", "/api/projects/p1/brandkit", `{"primary_color":"#FF5500"}`)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "#FF5500", decodeBody(t, rr)["brandKit"].(map[string]interface{})["primary_color"])

	rr = api.doJSON("PATCH", "/api/projects/p1/brandkit", `{"primary_color":"red"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "#RRGGBB")

	rr = api.doJSON("PATCH", "/api/projects/p1/brandkit", `{"watermark":true}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	api.brandKits.AssertExpectations(t)
}

func TestUploadBrandAsset(t *testing.T) {
	api := setupTestAPI(t, nil)
	api.brandKits.On("UploadLogo", mock.Anything, "p1", mock.MatchedBy(func(u services.MaterialUpload) bool {
		return u.Name == "logo.png" && u.Size == 3
	})).Return(&models.BrandKit{ID: "bk1", LogoURL: "https://cdn/logo.png"}, nil).Once()

	body, ct := multipartBody(t, nil, "logo.png", []byte("png"))
	rr := api.do("POST", "/api/projects/p1/brandkit/assets", body, ct)
	assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "https://cdn/logo.png", decodeBody(t, rr)["brandKit"].(map[string]interface{})["logo_url"])

	empty, ct := multipartBody(t, map[string]string{"note": "x"}, "", nil)
	rr = api.do("POST", "/api/projects/p1/brandkit/assets", empty, ct)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	api.brandKits.On("UploadLogo", mock.Anything, "gone", mock.Anything).Return(nil, services.ErrNotFound).Once()
	body, ct = multipartBody(t, nil, "logo.png", []byte("png"))
	rr = api.do("POST", "/api/projects/gone/brandkit/assets", body, ct)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	api.brandKits.AssertExpectations(t)
}

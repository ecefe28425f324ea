// filepath: internal/api/handlers/user_handler_test.go
package handlers

import (
	"errors"
	"net/http"
	"testing"

	"adreel/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestGetUserMe(t *testing.T) {
	user := hashedUser(t, "secret-password")
	api := setupTestAPI(t, user)

	rr := api.do("GET", "/api/me", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, "user@example.com", body["email"])
	assert.NotContains(t, rr.Body.String(), "$2a$", "the password hash never leaves the server")
	assert.NotContains(t, body, "PasswordHash")

	anon := setupTestAPI(t, nil)
	assert.Equal(t, http.StatusUnauthorized, anon.do("GET", "/api/me", nil, "").Code)
}

func TestUpdateUserMe(t *testing.T) {
	api := setupTestAPI(t, testUser)
	api.users.On("UpdateUserPassword", mock.Anything, testUser.ID, "a-long-password").Return(nil).Once()
	api.users.On("UpdateUserPassword", mock.Anything, testUser.ID, "short").
		Return(errors.Join(services.ErrValidation, errors.New("password must be at least 8 characters"))).Once()

	rr := api.doJSON("PATCH", "/api/me", `{"password":"a-long-password"}`)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = api.doJSON("PATCH", "/api/me", `{"password":"short"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "at least 8")

	rr = api.doJSON("PATCH", "/api/me", `not json`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	api.users.AssertExpectations(t)
}

// filepath: internal/api/handlers/admin_handler.go
package handlers

import (
	"errors"
	"net/http"

	"adreel/internal/logging"
	"adreel/internal/services"

	"github.com/gorilla/mux"
)

// UserCreateRequest is a DTO for creating a new account.
type UserCreateRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserUpdateRequest is a DTO for resetting another account's password.
type UserUpdateRequest struct {
	Password string `json:"password"`
}

// @Summary Get all users
// @Description Retrieves every account, oldest first.
// @Tags Admin
// @Produce json
// @Success 200 {array} models.User
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /users [get]
// @Security BearerAuth
func (h *Handlers) GetUsers(w http.ResponseWriter, r *http.Request) {
	logging.Log.Debug("GetUsers: Handler started.")
	users, err := h.User.GetUsers(r.Context())
	if err != nil {
		logging.Log.Errorf("GetUsers: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to get users")
		return
	}
	respondWithJSON(w, http.StatusOK, users)
}

// @Summary Create a new user
// @Description Creates a new account with an email and password.
// @Tags Admin
// @Accept json
// @Produce json
// @Param user body UserCreateRequest true "User creation request"
// @Success 201 {object} models.User
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /users [post]
// @Security BearerAuth
func (h *Handlers) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req UserCreateRequest
	if err := decodeStrict(w, r, &req); err != nil {
		respondBadBody(w, err)
		return
	}

	logging.Log.Debugf("CreateUser: Handler: Calling UserService for '%s'", req.Email)
	created, err := h.User.CreateUser(r.Context(), req.Email, req.Password)
	if err != nil {
		switch code := statusFor(err); code {
		case http.StatusBadRequest, http.StatusConflict:
			respondWithError(w, code, err.Error())
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to create user")
		}
		return
	}

	h.Auditor.Log(r.Context(), "user.create", actorName(r), "User:"+created.ID, map[string]interface{}{
		"email": created.Email,
	})
	respondWithJSON(w, http.StatusCreated, created)
}

// @Summary Reset a user's password
// @Description Sets a new password for another account.
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param user body UserUpdateRequest true "User update request"
// @Success 200 {object} models.User
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /users/{id} [patch]
// @Security BearerAuth
func (h *Handlers) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req UserUpdateRequest
	if err := decodeStrict(w, r, &req); err != nil {
		respondBadBody(w, err)
		return
	}

	logging.Log.Debugf("UpdateUser: Handler started for user ID %s", id)
	if err := h.User.UpdateUserPassword(r.Context(), id, req.Password); err != nil {
		switch code := statusFor(err); code {
		case http.StatusBadRequest, http.StatusNotFound:
			respondWithError(w, code, err.Error())
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to update user")
		}
		return
	}

	updated, err := h.User.GetUserByID(r.Context(), id)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load updated user")
		return
	}

	h.Auditor.Log(r.Context(), "user.password_reset", actorName(r), "User:"+id, nil)
	respondWithJSON(w, http.StatusOK, updated)
}

// @Summary Delete a user
// @Description Deletes an account, its refresh tokens and its memberships. Callers cannot delete themselves.
// @Tags Admin
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} MessageResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /users/{id} [delete]
// @Security BearerAuth
func (h *Handlers) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if u := currentUser(r); u != nil && u.ID == id {
		respondWithError(w, http.StatusConflict, "cannot delete your own account")
		return
	}

	logging.Log.Debugf("DeleteUser: Handler: Calling UserService for ID %s", id)
	if err := h.User.DeleteUser(r.Context(), id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "User not found")
		} else {
			respondWithError(w, http.StatusInternalServerError, "Failed to delete user")
		}
		return
	}

	h.Auditor.Log(r.Context(), "user.delete", actorName(r), "User:"+id, nil)
	respondWithJSON(w, http.StatusOK, MessageResponse{Message: "User deleted successfully."})
}

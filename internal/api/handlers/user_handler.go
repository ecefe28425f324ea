// filepath: internal/api/handlers/user_handler.go
package handlers

import (
	"errors"
	"net/http"

	"adreel/internal/logging"
	"adreel/internal/services"
)

// PasswordUpdateRequest is a DTO for updating a user's password.
type PasswordUpdateRequest struct {
	Password string `json:"password"`
}

// @Summary Get current user
// @Description Get the currently authenticated user's details.
// @Tags Users
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} ErrorResponse
// @Router /me [get]
// @Security BearerAuth
func (h *Handlers) GetUserMe(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if user == nil {
		respondWithError(w, http.StatusUnauthorized, "No user found in context")
		return
	}
	logging.Log.Debugf("GetUserMe: Handler started for user '%s' (ID: %s)", user.Email, user.ID)

	// PasswordHash is tagged json:"-", so the cached user can be sent as is.
	respondWithJSON(w, http.StatusOK, user)
}

// @Summary Update current user's password
// @Description Allows a user to change their own password.
// @Tags Users
// @Accept json
// @Produce json
// @Param password body PasswordUpdateRequest true "Password update request"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /me [patch]
// @Security BearerAuth
func (h *Handlers) UpdateUserMe(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if user == nil {
		respondWithError(w, http.StatusUnauthorized, "No user found in context")
		return
	}

	var req PasswordUpdateRequest
	if err := decodeStrict(w, r, &req); err != nil {
		respondBadBody(w, err)
		return
	}

	if err := h.User.UpdateUserPassword(r.Context(), user.ID, req.Password); err != nil {
		if errors.Is(err, services.ErrValidation) {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		logging.Log.Errorf("UpdateUserMe: failed for '%s': %v", user.Email, err)
		respondWithError(w, http.StatusInternalServerError, "Failed to update password")
		return
	}

	h.Auditor.Log(r.Context(), "user.password", user.Email, "User:"+user.ID, nil)
	respondWithJSON(w, http.StatusOK, MessageResponse{Message: "Password updated successfully."})
}

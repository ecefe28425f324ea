// filepath: internal/api/handlers/token_handler.go
package handlers

import (
	"errors"
	"net/http"

	"adreel/internal/logging"
	"adreel/internal/models"

	"golang.org/x/crypto/bcrypt"
)

// tokenRequest is the JSON body for refresh and logout endpoints.
type tokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// tokenResponse is the JSON body returned on successful token generation.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"` // access token lifetime in seconds
}

var errMissingRefreshToken = errors.New("refresh_token is required")

// readRefreshToken decodes a tokenRequest and insists on a non-empty token.
func readRefreshToken(w http.ResponseWriter, r *http.Request) (string, error) {
	var req tokenRequest
	if err := decodeStrict(w, r, &req); err != nil {
		return "", err
	}
	if req.RefreshToken == "" {
		return "", errMissingRefreshToken
	}
	return req.RefreshToken, nil
}

// issueTokens mints a fresh pair for user and writes it as the response.
func (h *Handlers) issueTokens(w http.ResponseWriter, r *http.Request, user *models.User) {
	accessToken, refreshToken, err := h.Token.GenerateTokens(r.Context(), user)
	if err != nil {
		logging.Log.Errorf("Token generation failed for %s: %v", user.Email, err)
		respondWithError(w, http.StatusInternalServerError, "Could not generate tokens")
		return
	}

	expiresIn := 0
	if h.Cfg != nil {
		expiresIn = h.Cfg.JWT.AccessDurationMin * 60
	}
	respondWithJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    expiresIn,
	})
}

// @Summary Get JWT tokens
// @Description Authenticate with Basic Auth (email and password) to receive an access and refresh token.
// @Tags Auth
// @Produce  json
// @Success 200 {object} tokenResponse
// @Failure 401 {object} ErrorResponse "Authentication failed"
// @Failure 500 {object} ErrorResponse "Token generation failed"
// @Security BasicAuth
// @Router /token [post]
func (h *Handlers) GetToken(w http.ResponseWriter, r *http.Request) {
	email, password, ok := r.BasicAuth()
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication failed: Missing Basic Auth")
		return
	}

	user, err := h.User.GetUserByEmail(r.Context(), email)
	if err == nil {
		err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	}
	if err != nil {
		// One message for unknown accounts and bad passwords.
		h.Auditor.Log(r.Context(), "auth.login_failed", email, "Session", nil)
		respondWithError(w, http.StatusUnauthorized, "Authentication failed")
		return
	}

	h.Auditor.Log(r.Context(), "auth.login", user.Email, "User:"+user.ID, nil)
	h.issueTokens(w, r, user)
}

// @Summary Refresh JWT tokens
// @Description Exchange a refresh token for a new token pair. The presented refresh token is revoked.
// @Tags Auth
// @Accept   json
// @Produce  json
// @Param   token  body  tokenRequest  true  "Refresh Token"
// @Success 200 {object} tokenResponse
// @Failure 400 {object} ErrorResponse "Invalid request body"
// @Failure 401 {object} ErrorResponse "Invalid or expired token"
// @Failure 500 {object} ErrorResponse "Token generation failed"
// @Router /token/refresh [post]
func (h *Handlers) RefreshToken(w http.ResponseWriter, r *http.Request) {
	token, err := readRefreshToken(w, r)
	if err != nil {
		respondBadBody(w, err)
		return
	}

	user, err := h.Token.ValidateRefreshToken(r.Context(), token)
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, "Invalid or expired refresh token")
		return
	}

	// Rotation: a refresh token is single use.
	if err := h.Token.Logout(r.Context(), token); err != nil {
		logging.Log.Warnf("Failed to revoke refresh token during rotation for %s: %v", user.Email, err)
	}
	h.issueTokens(w, r, user)
}

// @Summary Logout
// @Description Revokes a refresh token. Requires a session.
// @Tags Auth
// @Accept   json
// @Produce  json
// @Param   token  body  tokenRequest  true  "Refresh Token to revoke"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse "Invalid request body"
// @Failure 401 {object} ErrorResponse "Authentication required"
// @Failure 500 {object} ErrorResponse "Could not process token"
// @Security BearerAuth
// @Router /logout [post]
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	token, err := readRefreshToken(w, r)
	if err != nil {
		respondBadBody(w, err)
		return
	}

	if err := h.Token.Logout(r.Context(), token); err != nil {
		logging.Log.Errorf("Logout failed for %s: %v", actorName(r), err)
		respondWithError(w, http.StatusInternalServerError, "Failed to logout")
		return
	}

	h.Auditor.Log(r.Context(), "auth.logout", actorName(r), "Session", nil)
	respondWithJSON(w, http.StatusOK, MessageResponse{Message: "Logged out successfully."})
}

// filepath: internal/api/handlers/brandkit_handler.go
package handlers

import (
	"errors"
	"net/http"

	"adreel/internal/logging"
	"adreel/internal/models"
	"adreel/internal/services"

	"github.com/gorilla/mux"
)

type brandKitResponse struct {
	Success  bool             `json:"success"`
	BrandKit *models.BrandKit `json:"brandKit"`
}

func respondBrandKitError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "Project not found")
	case errors.Is(err, services.ErrDependency):
		respondWithError(w, http.StatusInternalServerError, err.Error())
	default:
		logging.Log.Errorf("%s: %v", op, err)
		respondWithError(w, http.StatusInternalServerError, "Failed to update brand kit")
	}
}

// @Summary Update the brand kit
// @Description Edits colors, fonts and styles of the project's brand kit. Colors must be #RRGGBB.
// @Tags BrandKit
// @Accept  json
// @Produce json
// @Param   id     path  string                        true  "Project ID"
// @Param   patch  body  models.BrandKitUpdatePayload  true  "Fields to change"
// @Success 200 {object} brandKitResponse
// @Failure 400 {object} ErrorResponse "Invalid request"
// @Failure 404 {object} ErrorResponse "Project not found"
// @Router /projects/{id}/brandkit [patch]
func (h *Handlers) UpdateBrandKit(w http.ResponseWriter, r *http.Request) {
	var payload models.BrandKitUpdatePayload
	if err := decodeStrict(w, r, &payload); err != nil {
		respondBadBody(w, err)
		return
	}

	kit, err := h.BrandKits.UpdateBrandKit(r.Context(), mux.Vars(r)["id"], payload)
	if err != nil {
		respondBrandKitError(w, "UpdateBrandKit", err)
		return
	}
	respondWithJSON(w, http.StatusOK, brandKitResponse{Success: true, BrandKit: kit})
}

// @Summary Upload a brand logo
// @Description Uploads a logo into the project's brand folder and points the brand kit at it.
// @Tags BrandKit
// @Accept  mpfd
// @Produce json
// @Param   id    path      string  true  "Project ID"
// @Param   file  formData  file    true  "Logo"
// @Success 200 {object} brandKitResponse
// @Failure 400 {object} ErrorResponse "Missing file or file too large"
// @Failure 404 {object} ErrorResponse "Project not found"
// @Router /projects/{id}/brandkit/assets [post]
func (h *Handlers) UploadBrandAsset(w http.ResponseWriter, r *http.Request) {
	file, header, err := h.readUpload(w, r)
	if err != nil {
		if isTooLarge(err) {
			respondWithError(w, http.StatusBadRequest, "File too large")
			return
		}
		respondWithError(w, http.StatusBadRequest, "Failed to parse multipart form")
		return
	}
	if file == nil {
		respondWithError(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	defer file.Close()

	kit, err := h.BrandKits.UploadLogo(r.Context(), mux.Vars(r)["id"], services.MaterialUpload{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		respondBrandKitError(w, "UploadBrandAsset", err)
		return
	}
	respondWithJSON(w, http.StatusOK, brandKitResponse{Success: true, BrandKit: kit})
}

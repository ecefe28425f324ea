// filepath: internal/api/handlers/material_handler.go
package handlers

import (
	"errors"
	"net/http"

	"adreel/internal/logging"
	"adreel/internal/models"
	"adreel/internal/services"

	"github.com/gorilla/mux"
)

type downloadResponse struct {
	URL       string `json:"url"`
	ExpiresIn int    `json:"expiresIn"`
}

type materialDeleteResponse struct {
	Success        bool `json:"success"`
	StorageDeleted bool `json:"storageDeleted"`
}

// @Summary Register a presigned upload
// @Description Records a material for an object uploaded through a presigned URL. The key must live under the project's prefix.
// @Tags Materials
// @Accept  json
// @Produce json
// @Param   material  body  models.MaterialRegisterPayload  true  "Material"
// @Success 201 {object} models.Material
// @Failure 400 {object} ErrorResponse "Invalid request"
// @Failure 404 {object} ErrorResponse "Project not found"
// @Router /materials [post]
func (h *Handlers) RegisterMaterial(w http.ResponseWriter, r *http.Request) {
	var payload models.MaterialRegisterPayload
	if err := decodeStrict(w, r, &payload); err != nil {
		respondBadBody(w, err)
		return
	}

	material, err := h.Materials.RegisterMaterial(r.Context(), payload)
	if err != nil {
		status := statusFor(err)
		switch status {
		case http.StatusNotFound:
			respondWithError(w, status, "Project not found")
		case http.StatusInternalServerError:
			logging.Log.Errorf("RegisterMaterial: %v", err)
			respondWithError(w, status, "Failed to save file metadata")
		default:
			respondWithError(w, status, err.Error())
		}
		return
	}
	respondWithJSON(w, http.StatusCreated, material)
}

// @Summary Get a material download URL
// @Description Presigns a GET for the material's object. Expiry defaults to one hour and is capped at seven days.
// @Tags Materials
// @Produce json
// @Param   id       path   string  true   "Material ID"
// @Param   expires  query  int     false  "Expiry in seconds"
// @Success 200 {object} downloadResponse
// @Failure 404 {object} ErrorResponse "Material not found"
// @Router /materials/{id}/download [get]
func (h *Handlers) DownloadMaterial(w http.ResponseWriter, r *http.Request) {
	expiry, err := parseExpiry(r.URL.Query().Get("expires"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	url, err := h.Materials.DownloadURL(r.Context(), mux.Vars(r)["id"], expiry)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Material not found")
			return
		}
		logging.Log.Errorf("DownloadMaterial: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to generate download URL")
		return
	}

	switch {
	case expiry <= 0:
		expiry = services.DefaultPresignExpiry
	case expiry > services.MaxPresignExpiry:
		expiry = services.MaxPresignExpiry
	}
	respondWithJSON(w, http.StatusOK, downloadResponse{URL: url, ExpiresIn: int(expiry.Seconds())})
}

// @Summary Delete a material
// @Description Deletes the material row, then its object on a best-effort basis.
// @Tags Materials
// @Produce json
// @Param   id  path  string  true  "Material ID"
// @Success 200 {object} materialDeleteResponse
// @Failure 404 {object} ErrorResponse "Material not found"
// @Router /materials/{id} [delete]
func (h *Handlers) DeleteMaterial(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.Materials.DeleteMaterial(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Material not found")
			return
		}
		logging.Log.Errorf("DeleteMaterial: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to delete material")
		return
	}
	respondWithJSON(w, http.StatusOK, materialDeleteResponse{Success: true, StorageDeleted: deleted})
}

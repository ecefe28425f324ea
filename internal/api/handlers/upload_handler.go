// filepath: internal/api/handlers/upload_handler.go
package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"adreel/internal/logging"
	"adreel/internal/models"
	"adreel/internal/services"
)

// multipartMemory is how much of a multipart body is kept in memory before spilling to disk.
const multipartMemory = 8 << 20

type uploadResponse struct {
	Success  bool                     `json:"success"`
	Material *models.UploadedMaterial `json:"material"`
}

// readUpload parses a size-capped multipart request and returns its "file" part.
// A missing file returns a nil file and no error.
func (h *Handlers) readUpload(w http.ResponseWriter, r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes())
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return nil, nil, err
	}
	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil, nil
	}
	return file, header, err
}

// @Summary Upload a material
// @Description Streams a file into the project's material folder and records a ready material row.
// @Tags Upload
// @Accept  mpfd
// @Produce json
// @Param   file       formData  file    true   "File"
// @Param   projectId  formData  string  true   "Project ID"
// @Param   type       formData  string  false  "video, image, audio or overlay (default video)"
// @Param   name       formData  string  false  "Display name (defaults to the file name)"
// @Success 200 {object} uploadResponse
// @Failure 400 {object} ErrorResponse "Missing required fields or file too large"
// @Failure 404 {object} ErrorResponse "Project not found"
// @Failure 429 {object} ErrorResponse "Too many uploads"
// @Failure 500 {object} ErrorResponse "Storage or database failure"
// @Router /upload [post]
func (h *Handlers) UploadMaterial(w http.ResponseWriter, r *http.Request) {
	file, header, err := h.readUpload(w, r)
	if err != nil {
		if isTooLarge(err) {
			respondWithError(w, http.StatusBadRequest, "File too large")
			return
		}
		logging.Log.Warnf("UploadMaterial: failed to parse multipart form: %v", err)
		respondWithError(w, http.StatusBadRequest, "Failed to parse multipart form")
		return
	}
	if file != nil {
		defer file.Close()
	}

	projectID := r.FormValue("projectId")
	if file == nil || projectID == "" {
		respondWithError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	name := r.FormValue("name")
	if name == "" {
		name = header.Filename
	}

	material, err := h.Materials.UploadMaterial(r.Context(), services.MaterialUpload{
		ProjectID:   projectID,
		Type:        r.FormValue("type"),
		Name:        name,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrValidation):
			respondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Project not found")
		case errors.Is(err, services.ErrDependency):
			respondWithError(w, http.StatusInternalServerError, err.Error())
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to save file metadata")
		}
		return
	}

	h.Auditor.Log(r.Context(), "material.upload", actorName(r), "Material:"+material.ID, map[string]interface{}{
		"project_id": projectID,
		"key":        material.Key,
		"size":       header.Size,
	})
	respondWithJSON(w, http.StatusOK, uploadResponse{Success: true, Material: material})
}

// @Summary Get a presigned upload URL
// @Description Returns a URL the browser can PUT the file to directly. Nothing is recorded until the material is registered.
// @Tags Upload
// @Produce json
// @Param   fileName   query  string  true   "File name"
// @Param   projectId  query  string  true   "Project ID"
// @Param   type       query  string  false  "Material type (default video)"
// @Success 200 {object} models.PresignedUpload
// @Failure 400 {object} ErrorResponse "Missing required parameters"
// @Failure 500 {object} ErrorResponse "Failed to generate upload URL"
// @Router /upload [get]
func (h *Handlers) PresignUpload(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	fileName, projectID := q.Get("fileName"), q.Get("projectId")
	if fileName == "" || projectID == "" {
		respondWithError(w, http.StatusBadRequest, "Missing required parameters")
		return
	}

	upload, err := h.Materials.PresignUpload(r.Context(), projectID, q.Get("type"), fileName)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		logging.Log.Errorf("PresignUpload: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to generate upload URL")
		return
	}
	respondWithJSON(w, http.StatusOK, upload)
}

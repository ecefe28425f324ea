// filepath: internal/api/handlers/project_handler.go
package handlers

import (
	"errors"
	"net/http"

	"adreel/internal/logging"
	"adreel/internal/models"
	"adreel/internal/services"

	"github.com/gorilla/mux"
)

// createProjectResponse is the body returned by POST /projects.
type createProjectResponse struct {
	Success      bool                `json:"success"`
	Project      models.ProjectRef   `json:"project"`
	Message      string              `json:"message"`
	Provisioning models.Provisioning `json:"provisioning"`
}

type projectResponse struct {
	Project *models.ProjectDetail `json:"project"`
}

type projectListResponse struct {
	Projects []models.ProjectSummary `json:"projects"`
}

type projectUpdateResponse struct {
	Success bool            `json:"success"`
	Project *models.Project `json:"project"`
}

// @Summary Create a project
// @Description Creates a project, resolving (or creating) the caller's organization, then seeds variables, a default brand kit and legal metadata. Those last three steps are best effort and reported under provisioning.
// @Tags Projects
// @Accept  json
// @Produce json
// @Param   project  body  models.ProjectCreatePayload  true  "Project"
// @Success 200 {object} createProjectResponse
// @Failure 400 {object} ErrorResponse "Invalid request"
// @Failure 401 {object} ErrorResponse "No session and no userId"
// @Failure 404 {object} ErrorResponse "Organization not found"
// @Failure 500 {object} ErrorResponse "Failed to create organization or project"
// @Router /projects [post]
func (h *Handlers) CreateProject(w http.ResponseWriter, r *http.Request) {
	var payload models.ProjectCreatePayload
	if err := decodeStrict(w, r, &payload); err != nil {
		respondBadBody(w, err)
		return
	}

	result, err := h.Projects.CreateProject(r.Context(), currentUser(r), payload)
	if err != nil {
		var wfErr *services.WorkflowError
		switch {
		case errors.As(err, &wfErr) && wfErr.Step == services.StepOrganization:
			respondWithErrorDetails(w, http.StatusInternalServerError, "Failed to create organization", wfErr.Err)
		case errors.As(err, &wfErr):
			respondWithErrorDetails(w, http.StatusInternalServerError, "Failed to create project", wfErr.Err)
		case errors.Is(err, services.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Organization not found")
		case errors.Is(err, services.ErrUnauthorized):
			respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		case errors.Is(err, services.ErrValidation):
			respondWithError(w, http.StatusBadRequest, err.Error())
		default:
			logging.Log.Errorf("CreateProject: unhandled error: %v", err)
			respondWithErrorDetails(w, http.StatusInternalServerError, "Failed to create project", err)
		}
		return
	}

	respondWithJSON(w, http.StatusOK, createProjectResponse{
		Success:      true,
		Project:      result.Project,
		Message:      "Project created successfully",
		Provisioning: result.Provisioning,
	})
}

// @Summary List projects
// @Description Lists projects of one organization, or of every organization the caller belongs to.
// @Tags Projects
// @Produce json
// @Param   organizationId  query  string  false  "Organization ID"
// @Success 200 {object} projectListResponse
// @Failure 401 {object} ErrorResponse "Session required without organizationId"
// @Failure 500 {object} ErrorResponse "Failed to fetch projects"
// @Router /projects [get]
func (h *Handlers) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.Projects.ListProjects(r.Context(), currentUser(r), r.URL.Query().Get("organizationId"))
	if err != nil {
		if errors.Is(err, services.ErrUnauthorized) {
			respondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		logging.Log.Errorf("ListProjects: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch projects")
		return
	}
	if projects == nil {
		projects = []models.ProjectSummary{}
	}
	respondWithJSON(w, http.StatusOK, projectListResponse{Projects: projects})
}

// @Summary Get a project
// @Description Returns a project with brand kits, materials, variables and experiments. Each experiment carries its winning variant by ROAS.
// @Tags Projects
// @Produce json
// @Param   id  path  string  true  "Project ID"
// @Success 200 {object} projectResponse
// @Failure 404 {object} ErrorResponse "Project not found"
// @Failure 500 {object} ErrorResponse "Failed to fetch project"
// @Router /projects/{id} [get]
func (h *Handlers) GetProject(w http.ResponseWriter, r *http.Request) {
	project, err := h.Projects.GetProject(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Project not found")
			return
		}
		logging.Log.Errorf("GetProject: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch project")
		return
	}
	respondWithJSON(w, http.StatusOK, projectResponse{Project: project})
}

// @Summary Update a project
// @Description Partially updates a project. Unknown fields and empty patches are rejected.
// @Tags Projects
// @Accept  json
// @Produce json
// @Param   id     path  string                       true  "Project ID"
// @Param   patch  body  models.ProjectUpdatePayload  true  "Fields to change"
// @Success 200 {object} projectUpdateResponse
// @Failure 400 {object} ErrorResponse "Invalid request"
// @Failure 404 {object} ErrorResponse "Project not found"
// @Failure 500 {object} ErrorResponse "Failed to update project"
// @Router /projects/{id} [patch]
func (h *Handlers) UpdateProject(w http.ResponseWriter, r *http.Request) {
	var payload models.ProjectUpdatePayload
	if err := decodeStrict(w, r, &payload); err != nil {
		respondBadBody(w, err)
		return
	}

	project, err := h.Projects.UpdateProject(r.Context(), mux.Vars(r)["id"], payload)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrValidation):
			respondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Project not found")
		default:
			logging.Log.Errorf("UpdateProject: %v", err)
			respondWithError(w, http.StatusInternalServerError, "Failed to update project")
		}
		return
	}
	respondWithJSON(w, http.StatusOK, projectUpdateResponse{Success: true, Project: project})
}

// @Summary Delete a project
// @Description Deletes a project and its dependent rows. Stored objects are left for the orphan sweeper.
// @Tags Projects
// @Produce json
// @Param   id  path  string  true  "Project ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse "Project not found"
// @Failure 500 {object} ErrorResponse "Failed to delete project"
// @Router /projects/{id} [delete]
func (h *Handlers) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.Projects.DeleteProject(r.Context(), id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Project not found")
			return
		}
		logging.Log.Errorf("DeleteProject: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to delete project")
		return
	}

	h.Auditor.Log(r.Context(), "project.delete", actorName(r), "Project:"+id, nil)
	respondWithJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Project deleted successfully"})
}

// @Summary Build a UTM link
// @Description Returns the project's landing page with its UTM parameters appended.
// @Tags Projects
// @Produce json
// @Param   id       path   string  true   "Project ID"
// @Param   content  query  string  false  "utm_content override"
// @Param   term     query  string  false  "utm_term"
// @Success 200 {object} map[string]string
// @Failure 400 {object} ErrorResponse "Project has no landing page"
// @Failure 404 {object} ErrorResponse "Project not found"
// @Router /projects/{id}/utm [get]
func (h *Handlers) GetUTMLink(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	link, err := h.Projects.BuildUTMLink(r.Context(), mux.Vars(r)["id"], q.Get("content"), q.Get("term"))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrValidation):
			respondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Project not found")
		default:
			logging.Log.Errorf("GetUTMLink: %v", err)
			respondWithError(w, http.StatusInternalServerError, "Failed to build UTM link")
		}
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"url": link})
}

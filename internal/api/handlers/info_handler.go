// filepath: internal/api/handlers/info_handler.go
package handlers

import (
	"net/http"
)

// @Summary Get service information
// @Description Retrieves general information about the service: name, version, uptime, database driver and storage bucket. This is a public endpoint.
// @Tags Info
// @Produce  json
// @Success 200 {object} models.Info
// @Router /info [get]
func (h *Handlers) GetInfo(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.Info.GetInfo())
}

// filepath: internal/api/handlers/housekeeping_handler.go
package handlers

import (
	"errors"
	"net/http"

	"adreel/internal/logging"
	"adreel/internal/services"
)

// @Summary Sweep orphaned objects
// @Description Runs one orphan sweep now: objects under projects/ that no material or logo references, and that are older than the grace period, are deleted.
// @Tags Housekeeping
// @Produce json
// @Success 200 {object} models.SweepReport
// @Failure 401 {object} ErrorResponse "Authentication required"
// @Failure 503 {object} ErrorResponse "Object storage is not configured"
// @Failure 500 {object} ErrorResponse "Sweep failed"
// @Security BearerAuth
// @Router /sweep [post]
func (h *Handlers) TriggerSweep(w http.ResponseWriter, r *http.Request) {
	report, err := h.Sweeper.Sweep(r.Context())
	if err != nil {
		if errors.Is(err, services.ErrDependency) {
			respondWithError(w, http.StatusServiceUnavailable, "Object storage is not configured")
			return
		}
		logging.Log.Errorf("TriggerSweep: %v", err)
		respondWithErrorDetails(w, http.StatusInternalServerError, "Sweep failed", err)
		return
	}

	h.Auditor.Log(r.Context(), "storage.sweep", actorName(r), "Bucket", map[string]interface{}{
		"scanned": report.Scanned,
		"deleted": report.Deleted,
		"failed":  report.Failed,
	})
	respondWithJSON(w, http.StatusOK, report)
}

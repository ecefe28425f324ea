// internal/api/handlers/health_handler.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"adreel/internal/logging"
)

// HealthCheck is a public endpoint confirming the server and its database are up.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if h.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.DB.Ping(ctx); err != nil {
			logging.Log.Errorf("HealthCheck: database ping failed: %v", err)
			respondWithJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

package api

import (
	"net/http"
	"time"

	"adreel/internal/api/handlers"
	"adreel/internal/config"
	"adreel/internal/logging"
	"adreel/internal/services/auth"

	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// SetupRouter configures the main router and its sub-routers, then wraps it with
// request logging, CORS and panic recovery.
func SetupRouter(h *handlers.Handlers, am *auth.Middleware, cfg *config.Config) http.Handler {
	r := mux.NewRouter()

	// Public endpoints
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/api/info", h.GetInfo).Methods("GET")
	r.HandleFunc("/api/token", h.GetToken).Methods("POST")
	r.HandleFunc("/api/token/refresh", h.RefreshToken).Methods("POST")

	// Everything else under /api knows who is calling, if anyone.
	apiRouter := r.PathPrefix("/api").Subrouter()
	apiRouter.Use(am.Identify)

	addProjectRoutes(apiRouter, h)
	addUploadRoutes(apiRouter, h, cfg.Server.UploadRatePerMin)
	addMaterialRoutes(apiRouter, h)

	sessionRouter := apiRouter.PathPrefix("").Subrouter()
	sessionRouter.Use(am.RequireUser)
	addUserRoutes(sessionRouter, h)

	adminRouter := apiRouter.PathPrefix("/users").Subrouter()
	adminRouter.Use(am.RequireAdmin(cfg.Server.AdminEmails))
	addAdminRoutes(adminRouter, h)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondWithError(w, http.StatusNotFound, "Not found")
	})

	cors := gorillahandlers.CORS(
		gorillahandlers.AllowedOrigins(cfg.Server.AllowedOrigins),
		gorillahandlers.AllowedMethods([]string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}),
		gorillahandlers.AllowedHeaders([]string{"Content-Type", "Authorization", RequestIDHeader}),
		gorillahandlers.ExposedHeaders([]string{RequestIDHeader}),
		gorillahandlers.AllowCredentials(),
	)
	recovery := gorillahandlers.RecoveryHandler(
		gorillahandlers.RecoveryLogger(logging.Log),
		gorillahandlers.PrintRecoveryStack(true),
	)
	return recovery(cors(RequestLogger(r)))
}

// addProjectRoutes configures project, brand kit and UTM routes.
func addProjectRoutes(r *mux.Router, h *handlers.Handlers) {
	r.HandleFunc("/projects", h.CreateProject).Methods("POST")
	r.HandleFunc("/projects", h.ListProjects).Methods("GET")
	r.HandleFunc("/projects/{id}", h.GetProject).Methods("GET")
	r.HandleFunc("/projects/{id}", h.UpdateProject).Methods("PATCH")
	r.HandleFunc("/projects/{id}", h.DeleteProject).Methods("DELETE")
	r.HandleFunc("/projects/{id}/utm", h.GetUTMLink).Methods("GET")
	r.HandleFunc("/projects/{id}/brandkit", h.UpdateBrandKit).Methods("PATCH")
	r.HandleFunc("/projects/{id}/brandkit/assets", h.UploadBrandAsset).Methods("POST")
}

// addUploadRoutes configures the proxied and presigned upload routes. Proxied uploads
// are rate limited per client IP; a rate of zero disables the limit.
func addUploadRoutes(r *mux.Router, h *handlers.Handlers, ratePerMin int) {
	var upload http.Handler = http.HandlerFunc(h.UploadMaterial)
	if ratePerMin > 0 {
		upload = UploadLimiter(ratePerMin, time.Minute)(upload)
	}
	r.Handle("/upload", upload).Methods("POST")
	r.HandleFunc("/upload", h.PresignUpload).Methods("GET")
}

// addMaterialRoutes configures routes for registered materials.
func addMaterialRoutes(r *mux.Router, h *handlers.Handlers) {
	r.HandleFunc("/materials", h.RegisterMaterial).Methods("POST")
	r.HandleFunc("/materials/{id}/download", h.DownloadMaterial).Methods("GET")
	r.HandleFunc("/materials/{id}", h.DeleteMaterial).Methods("DELETE")
}

// addUserRoutes configures routes that need a session.
func addUserRoutes(r *mux.Router, h *handlers.Handlers) {
	r.HandleFunc("/logout", h.Logout).Methods("POST")
	r.HandleFunc("/me", h.GetUserMe).Methods("GET")
	r.HandleFunc("/me", h.UpdateUserMe).Methods("PATCH")
	r.HandleFunc("/sweep", h.TriggerSweep).Methods("POST")
}

// addAdminRoutes configures account administration, relative to /api/users.
func addAdminRoutes(r *mux.Router, h *handlers.Handlers) {
	r.HandleFunc("", h.GetUsers).Methods("GET")
	r.HandleFunc("", h.CreateUser).Methods("POST")
	r.HandleFunc("/{id}", h.UpdateUser).Methods("PATCH")
	r.HandleFunc("/{id}", h.DeleteUser).Methods("DELETE")
}

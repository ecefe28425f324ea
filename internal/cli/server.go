// filepath: internal/cli/server.go
package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"adreel/internal/api"
	"adreel/internal/api/handlers"
	"adreel/internal/audit"
	"adreel/internal/config"
	"adreel/internal/housekeeping"
	"adreel/internal/logging"
	"adreel/internal/repository"
	"adreel/internal/services"
	"adreel/internal/services/auth"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// serveCmd is an explicit alias for the root run.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func init() {
	RootCmd.AddCommand(serveCmd)
	registerServerFlags(serveCmd)
}

// resolveJWTSecret picks the signing secret from the flag/env override, the
// config file, or generates and persists a new one.
func resolveJWTSecret() error {
	if cfg.JWTSecret != "" {
		return nil
	}
	if cfg.JWT.Secret != "" {
		logging.Log.Infof("Using JWT secret loaded from %s.", cfgFile)
		cfg.JWTSecret = cfg.JWT.Secret
		return nil
	}

	logging.Log.Info("Generating new random JWT secret...")
	newSecret, err := auth.GenerateSecret()
	if err != nil {
		return fmt.Errorf("failed to generate JWT secret: %w", err)
	}
	cfg.JWT.Secret = newSecret
	cfg.JWTSecret = newSecret
	if err := config.SaveConfig(cfgFile, cfg); err != nil {
		logging.Log.Warnf("Failed to save new JWT secret to %s: %v", cfgFile, err)
	} else {
		logging.Log.Infof("New JWT secret saved to %s.", cfgFile)
	}
	return nil
}

// openRepository connects to the configured database and refuses to continue
// on a schema older than the embedded migrations. A brand-new database is
// migrated first when bootstrap is true.
func openRepository(bootstrap bool) (*repository.Repository, error) {
	repo, err := repository.NewRepository(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize repository: %w", err)
	}

	if bootstrap {
		if err := repo.EnsureSchemaBootstrapped(); err != nil {
			repo.Close()
			logging.Log.Errorf("Failed to bootstrap database: %v", err)
			return nil, err
		}
	}

	if err := repo.ValidateSchema(); err != nil {
		repo.Close()
		logging.Log.Error("---------------------------------------------------------------")
		logging.Log.Errorf("CRITICAL DATABASE ERROR: %v", err)
		logging.Log.Error("---------------------------------------------------------------")
		return nil, err
	}
	return repo, nil
}

// runServer starts the HTTP server and blocks until SIGINT/SIGTERM, then shuts down gracefully.
func runServer() error {
	if err := resolveJWTSecret(); err != nil {
		return err
	}

	repo, err := openRepository(true)
	if err != nil {
		return err
	}
	defer repo.Close()

	storageService, err := services.NewStorageService(context.Background(), cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize object storage: %w", err)
	}
	if !storageService.Enabled() {
		logging.Log.Warn("Object storage is not configured; uploads and presigned URLs will fail.")
	}

	// Service Initialization
	loggerAuditor := audit.NewLoggerAuditor(cfg.Logging.AuditEnabled)
	infoService := services.NewInfoService(Version, StartTime, repo.Driver, storageService)
	userService := services.NewUserService(repo)
	tokenService := auth.NewTokenService(cfg, userService, repo)
	projectService := services.NewProjectService(repo, loggerAuditor)
	materialService := services.NewMaterialService(repo, storageService, loggerAuditor)
	brandKitService := services.NewBrandKitService(repo, storageService, loggerAuditor)
	sweeper := housekeeping.NewService(housekeeping.Dependencies{DB: repo, Objects: storageService}, cfg.SweepInterval, cfg.OrphanGrace)

	authMiddleware := auth.NewMiddleware(userService, tokenService)

	sweeper.Start()
	// Stopped explicitly during graceful shutdown

	h := handlers.NewHandlers(handlers.Deps{
		Info:      infoService,
		User:      userService,
		Token:     tokenService,
		Projects:  projectService,
		Materials: materialService,
		BrandKits: brandKitService,
		Sweeper:   sweeper,
		Auditor:   loggerAuditor,
		DB:        repo,
	}, cfg)

	r := api.SetupRouter(h, authMiddleware, cfg)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              serverAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		logging.Log.Infof("Server starting on %s (max upload %s, bucket '%s')",
			serverAddr, humanize.IBytes(uint64(cfg.MaxUploadSizeBytes)), storageService.Bucket())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()

	select {
	case <-stop:
		logging.Log.Info("Shutting down server...")
	case err := <-serveErr:
		sweeper.Stop()
		return fmt.Errorf("server failed to start: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sweeper.Stop()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Log.Errorf("Server forced to shutdown: %v", err)
		return err
	}

	logging.Log.Info("Server exiting")
	return nil
}

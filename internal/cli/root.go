// filepath: internal/cli/root.go
package cli

import (
	"fmt"
	"os"
	"time"

	"adreel/internal/config"
	"adreel/internal/logging"

	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
)

const defaultConfigPath = "config.toml"

var (
	// Version info
	Version   = "0.3.0"
	StartTime time.Time

	// Global config object populated by file, env and flags
	cfg *config.Config

	cfgFile string
)

// RootCmd represents the base command when called without any subcommands.
// It starts the HTTP server.
var RootCmd = &cobra.Command{
	Use:   "adreel",
	Short: "adreel campaign API",
	Long:  `REST backend for short-form video ad campaigns: projects, brand kits, materials in R2 and experiment results.`,
	// PersistentPreRunE loads the configuration before any command runs.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeConfig(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
	SilenceUsage: true,
}

// Execute runs the command tree. It is called once by main.main().
func Execute() {
	StartTime = time.Now()

	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	registerFlags(RootCmd)
	registerServerFlags(RootCmd)
}

func registerFlags(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config_path", defaultConfigPath, "Path to the TOML configuration file. (Env: ADREEL_CONFIG_PATH)")
	pf.String("log-level", "", "Logging level (trace, debug, info, warn, error). (Env: ADREEL_LOGGING_LEVEL)")
	pf.String("db-driver", "", "Database driver, sqlite or postgres. (Env: ADREEL_DATABASE_DRIVER)")
	pf.String("db-path", "", "SQLite database file. (Env: ADREEL_DATABASE_PATH)")
	pf.String("db-url", "", "PostgreSQL connection string. (Env: ADREEL_DATABASE_URL)")
	pf.String("bucket", "", "Object storage bucket. (Env: ADREEL_STORAGE_BUCKET)")
}

// registerServerFlags adds the flags only the server run understands.
func registerServerFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("host", "", "Interface the HTTP server binds to. (Env: ADREEL_SERVER_HOST)")
	f.Int("port", 0, "Port for the HTTP server. (Env: ADREEL_SERVER_PORT)")
	f.String("max-upload-size", "", "Largest accepted multipart upload, e.g. '100MB'. (Env: ADREEL_SERVER_MAX_UPLOAD_SIZE)")
	f.String("jwt-secret", "", "Secret key for signing JWTs. (Env: ADREEL_JWT_SECRET)")
	f.String("sweep-interval", "", "How often the orphan sweeper runs, '0' disables it. (Env: ADREEL_STORAGE_SWEEP_INTERVAL)")
	f.Bool("audit-enabled", false, "Enable detailed audit logging. (Env: ADREEL_LOGGING_AUDIT_ENABLED=true)")
}

// initializeConfig loads the TOML file and layers .env, environment variables
// and explicitly set flags on top of it, in that order.
func initializeConfig(cmd *cobra.Command) error {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return fmt.Errorf("failed to load .env: %w", err)
		}
	}

	if envPath := os.Getenv(config.EnvPrefix + "_CONFIG_PATH"); envPath != "" && !cmd.Flags().Changed("config_path") {
		cfgFile = envPath
	}

	var err error
	cfg, err = config.LoadConfig(cfgFile)
	if err != nil {
		if os.IsNotExist(err) {
			// No file yet, rely on defaults, env and flags
			cfg = &config.Config{}
		} else {
			return fmt.Errorf("failed to load configuration from %s: %w", cfgFile, err)
		}
	}

	overlay, err := config.NewOverlay(cmd.Flags())
	if err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}
	cfg.ApplyOverrides(overlay)

	if err := cfg.ParseAndValidate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logging.Init(cfg.Logging.Level)
	goose.SetLogger(logging.Log)

	return nil
}

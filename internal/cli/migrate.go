// filepath: internal/cli/migrate.go
package cli

import (
	"fmt"

	"adreel/internal/logging"
	"adreel/internal/repository"

	"github.com/spf13/cobra"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Database migration tools",
	Long:  `Manage database schema versions. Use subcommands 'up', 'down', or 'status'.`,
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Migrate the database to the most recent version",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigration("up")
	},
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the database by one version",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigration("down")
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Dump the migration status for the current DB",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigration("status")
	},
}

func init() {
	RootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(upCmd)
	migrateCmd.AddCommand(downCmd)
	migrateCmd.AddCommand(statusCmd)
}

func runMigration(command string) error {
	// cfg was loaded by the root command's PersistentPreRunE.
	repo, err := repository.NewRepository(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer repo.Close()

	logging.Log.Infof("Running migration command: %s (%s)", command, repo.Driver)
	if err := repo.Migrate(command); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	logging.Log.Info("Migration operation completed successfully.")
	return nil
}

// filepath: internal/cli/recovery.go
package cli

import (
	"context"
	"fmt"

	"adreel/internal/logging"
	"adreel/internal/models"

	"github.com/spf13/cobra"
)

var recoveryCmd = &cobra.Command{
	Use:   "recovery",
	Short: "Repair projects left incomplete by a failed creation step",
	Long: `Scans for projects without a brand kit (the brand kit step of project creation is
best-effort) and gives each one the default kit. This does not start the HTTP server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRecovery(cmd.Context())
	},
}

func init() {
	RootCmd.AddCommand(recoveryCmd)
}

func runRecovery(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	repo, err := openRepository(false)
	if err != nil {
		return fmt.Errorf("cannot run recovery: %w", err)
	}
	defer repo.Close()

	logging.Log.Info("Starting recovery process...")

	ids, err := repo.ProjectsWithoutBrandKit(ctx)
	if err != nil {
		return err
	}

	fixed := 0
	for _, id := range ids {
		kit := models.DefaultBrandKit(id)
		if err := repo.CreateBrandKit(ctx, &kit); err != nil {
			logging.Log.Errorf("Recovery: could not create brand kit for project %s: %v", id, err)
			continue
		}
		fixed++
	}

	logging.Log.Infof("Recovery complete. Projects repaired: %d of %d", fixed, len(ids))
	if fixed < len(ids) {
		return fmt.Errorf("%d projects could not be repaired", len(ids)-fixed)
	}
	return nil
}

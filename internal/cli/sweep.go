// filepath: internal/cli/sweep.go
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"adreel/internal/housekeeping"
	"adreel/internal/models"
	"adreel/internal/services"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var sweepVerbose bool

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete orphaned objects from the bucket once",
	Long: `Lists every object under projects/, and deletes those older than storage.orphan_grace that
no material row or brand kit logo references. Export renders are never touched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSweep(cmd.Context(), os.Stdout)
	},
}

func init() {
	RootCmd.AddCommand(sweepCmd)
	sweepCmd.Flags().BoolVarP(&sweepVerbose, "verbose", "v", false, "Also print every orphaned key.")
}

func runSweep(ctx context.Context, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	repo, err := openRepository(false)
	if err != nil {
		return err
	}
	defer repo.Close()

	storageService, err := services.NewStorageService(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize object storage: %w", err)
	}

	svc := housekeeping.NewService(housekeeping.Dependencies{DB: repo, Objects: storageService}, 0, cfg.OrphanGrace)
	report, err := svc.Sweep(ctx)
	if report != nil {
		printSweepReport(out, report, sweepVerbose)
	}
	return err
}

func printSweepReport(out io.Writer, report *models.SweepReport, withKeys bool) {
	renderTable(out,
		[]string{"Scanned", "Orphaned", "Deleted", "Failed", "Freed"},
		[][]string{{
			strconv.Itoa(report.Scanned),
			strconv.Itoa(report.Orphaned),
			strconv.Itoa(report.Deleted),
			strconv.Itoa(report.Failed),
			humanize.Bytes(uint64(report.BytesFreed)),
		}},
		1, 2, 3, 4, 5,
	)
	if !withKeys || len(report.Keys) == 0 {
		return
	}
	rows := make([][]string, 0, len(report.Keys))
	for _, k := range report.Keys {
		rows = append(rows, []string{k})
	}
	renderTable(out, []string{"Orphaned key"}, rows)
}

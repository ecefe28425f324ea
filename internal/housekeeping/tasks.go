// filepath: internal/housekeeping/tasks.go
package housekeeping

import (
	"context"
	"errors"
	"fmt"
	"time"

	"adreel/internal/logging"
	"adreel/internal/models"
	"adreel/internal/services"
	"adreel/internal/storage"

	"github.com/dustin/go-humanize"
)

// SweepPrefix is the part of the bucket the sweeper walks.
const SweepPrefix = "projects/"

// batchSize bounds the IN (...) list sent to the database per lookup.
const batchSize = 200

// Dependencies defines the required services for the housekeeping tasks.
type Dependencies struct {
	DB      DBTX
	Objects ObjectTX
}

type candidate struct {
	key  string
	size int64
}

// Sweep deletes objects under SweepPrefix that no material row or brand kit logo references.
// Exports are never touched, and objects younger than grace are skipped so an upload whose
// row is still being written is not mistaken for an orphan.
func Sweep(ctx context.Context, deps Dependencies, grace time.Duration, now time.Time) (*models.SweepReport, error) {
	if !deps.Objects.Enabled() {
		return nil, fmt.Errorf("%w: object storage is not configured", services.ErrDependency)
	}

	report := &models.SweepReport{}
	var batch []candidate

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		err := sweepBatch(ctx, deps, batch, report)
		batch = batch[:0]
		return err
	}

	err := deps.Objects.List(ctx, SweepPrefix, func(o services.ObjectInfo) error {
		report.Scanned++
		if storage.IsExportKey(o.Key) {
			return nil
		}
		created, ok := storage.KeyTime(o.Key)
		if !ok {
			created = o.LastModified
		}
		if now.Sub(created) < grace {
			return nil
		}
		batch = append(batch, candidate{key: o.Key, size: o.Size})
		if len(batch) >= batchSize {
			return flush()
		}
		return nil
	})
	if err == nil {
		err = flush()
	}
	if err != nil {
		return report, fmt.Errorf("sweep aborted after %d objects: %w", report.Scanned, err)
	}

	logging.Log.Infof("Sweep complete: %d scanned, %d orphaned, %d deleted, %d failed, %s freed.",
		report.Scanned, report.Orphaned, report.Deleted, report.Failed, humanize.Bytes(uint64(report.BytesFreed)))
	return report, nil
}

func sweepBatch(ctx context.Context, deps Dependencies, batch []candidate, report *models.SweepReport) error {
	keys := make([]string, len(batch))
	for i, c := range batch {
		keys[i] = c.key
	}

	materials, err := deps.DB.ReferencedMaterialKeys(ctx, keys)
	if err != nil {
		return fmt.Errorf("could not look up material keys: %w", err)
	}
	logos, err := deps.DB.ReferencedLogoKeys(ctx, keys)
	if err != nil {
		return fmt.Errorf("could not look up logo keys: %w", err)
	}

	for _, c := range batch {
		if materials[c.key] || logos[c.key] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		report.Orphaned++
		report.Keys = append(report.Keys, c.key)
		if deps.Objects.Delete(ctx, c.key) {
			report.Deleted++
			report.BytesFreed += c.size
			logging.Log.Debugf("Sweep: deleted orphan '%s'", c.key)
		} else {
			report.Failed++
			logging.Log.Warnf("Sweep: failed to delete orphan '%s'", c.key)
		}
	}
	return nil
}

// pruneTokens drops refresh tokens past their expiry. Failures are logged only.
func pruneTokens(ctx context.Context, db DBTX) {
	n, err := db.DeleteExpiredRefreshTokens(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		logging.Log.Errorf("Housekeeping could not prune expired refresh tokens: %v", err)
		return
	}
	if n > 0 {
		logging.Log.Infof("Housekeeping pruned %d expired refresh tokens.", n)
	}
}

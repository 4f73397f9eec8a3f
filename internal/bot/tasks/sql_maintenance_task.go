package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/edgard/paybot/internal/metrics"
)

// maintenanceTimeoutFactor stretches the storage timeout for VACUUM and
// ANALYZE, which scan the whole payments table.
const maintenanceTimeoutFactor = 30

// newSQLMaintenanceTask compacts and re-analyzes the payments table.
func newSQLMaintenanceTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "sql_maintenance")

	return func(ctx context.Context) error {
		if deps.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, deps.Timeout*maintenanceTimeoutFactor)
			defer cancel()
		}

		start := time.Now()
		err := deps.Store.RunSQLMaintenance(ctx)
		metrics.ObserveLedger("maintenance", start, err)
		if err != nil {
			log.ErrorContext(ctx, "Payments table maintenance failed", "error", err, "duration", time.Since(start))
			return fmt.Errorf("payments maintenance failed: %w", err)
		}

		log.InfoContext(ctx, "Payments table maintenance finished", "duration", time.Since(start))
		return nil
	}
}

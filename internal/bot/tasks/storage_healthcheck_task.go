package tasks

import (
	"context"
	"fmt"

	"github.com/edgard/paybot/internal/ledger"
	"github.com/edgard/paybot/internal/metrics"
)

// newStorageHealthcheckTask pings the store and exports the result as the
// storage_up gauge.
func newStorageHealthcheckTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "storage_healthcheck")
	timeout := deps.Timeout
	if timeout <= 0 {
		timeout = ledger.DefaultTimeout
	}

	return func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		if err := deps.Store.Ping(pingCtx); err != nil {
			metrics.SetStorageUp(false)
			log.ErrorContext(ctx, "Storage health check failed", "error", err)
			return fmt.Errorf("%w: %w", ledger.ErrStorageUnavailable, err)
		}

		metrics.SetStorageUp(true)
		log.DebugContext(ctx, "Storage health check passed")
		return nil
	}
}

package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/punch"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/status"
)

// StatusPrewarmJob rebuilds the who-is-working board of every company that punched
// within lookback, so the first dashboard read after a quiet period hits the cache.
func StatusPrewarmJob(punchRepo punch.PunchRepository, statusService status.StatusService, lookback time.Duration, now func() time.Time) func(ctx context.Context) error {
	if now == nil {
		now = time.Now
	}
	return func(ctx context.Context) error {
		companyIDs, err := punchRepo.ListActiveCompanyIDs(ctx, now().Add(-lookback))
		if err != nil {
			return fmt.Errorf("failed to list active companies: %w", err)
		}

		var errs []error
		for _, companyID := range companyIDs {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := statusService.Prewarm(ctx, companyID); err != nil {
				slog.Warn("status prewarm failed", "company_id", companyID, "error", err)
				errs = append(errs, fmt.Errorf("company %s: %w", companyID, err))
			}
		}
		slog.Debug("status boards prewarmed", "companies", len(companyIDs), "failed", len(errs))
		return errors.Join(errs...)
	}
}

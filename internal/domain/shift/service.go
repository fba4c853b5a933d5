package shift

import (
	"context"
	"iter"
	"time"
)

type ShiftService interface {
	// Reconstruct folds the employee's ledger and yields the shifts overlapping window.
	Reconstruct(ctx context.Context, employeeID string, companyID string, window Window) (iter.Seq[Shift], error)
	// Current returns the employee's latest shift as of now, or nil if they never clocked in.
	Current(ctx context.Context, employeeID string, companyID string, now time.Time) (*Shift, error)
}

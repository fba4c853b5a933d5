package status

import "context"

type StatusService interface {
	WhoIsWorking(ctx context.Context, companyID string) (Board, error)
	EmployeeStatus(ctx context.Context, employeeID string, companyID string) (EmployeeStatus, error)
	// Invalidate drops the cached board so the next read reflects new ledger writes.
	Invalidate(ctx context.Context, companyID string) error
	Prewarm(ctx context.Context, companyID string) error
}

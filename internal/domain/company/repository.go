package company

import "context"

type PolicyRepository interface {
	GetPolicy(ctx context.Context, companyID string) (AttendancePolicy, error)
	UpsertPolicy(ctx context.Context, policy AttendancePolicy) (AttendancePolicy, error)
}

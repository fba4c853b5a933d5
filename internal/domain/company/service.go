package company

import "context"

type PolicyService interface {
	// Get returns the stored policy or the configured defaults for the company.
	Get(ctx context.Context, companyID string) (AttendancePolicy, error)
	Update(ctx context.Context, companyID string, req UpdatePolicyRequest) (AttendancePolicy, error)
}

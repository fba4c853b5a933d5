package company

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/company"
)

type PolicyServiceImpl struct {
	company.PolicyRepository
	defaults company.AttendancePolicy
}

// Get implements company.PolicyService.
func (s *PolicyServiceImpl) Get(ctx context.Context, companyID string) (company.AttendancePolicy, error) {
	policy, err := s.PolicyRepository.GetPolicy(ctx, companyID)
	if err != nil {
		if errors.Is(err, company.ErrPolicyNotFound) {
			policy = s.defaults
			policy.CompanyID = companyID
			return policy, nil
		}
		return company.AttendancePolicy{}, fmt.Errorf("failed to get attendance policy: %w", err)
	}
	return policy, nil
}

// Update implements company.PolicyService.
func (s *PolicyServiceImpl) Update(ctx context.Context, companyID string, req company.UpdatePolicyRequest) (company.AttendancePolicy, error) {
	if err := req.Validate(); err != nil {
		return company.AttendancePolicy{}, err
	}

	current, err := s.Get(ctx, companyID)
	if err != nil {
		return company.AttendancePolicy{}, err
	}

	saved, err := s.PolicyRepository.UpsertPolicy(ctx, req.Apply(current))
	if err != nil {
		return company.AttendancePolicy{}, fmt.Errorf("failed to update attendance policy: %w", err)
	}
	return saved, nil
}

func NewPolicyService(policyRepo company.PolicyRepository, defaults company.AttendancePolicy) company.PolicyService {
	return &PolicyServiceImpl{
		PolicyRepository: policyRepo,
		defaults:         defaults,
	}
}

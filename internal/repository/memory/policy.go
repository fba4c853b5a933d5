package memory

import (
	"context"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/company"
)

type policyRepository struct {
	s *Store
}

func (r *policyRepository) GetPolicy(_ context.Context, companyID string) (company.AttendancePolicy, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.policies[companyID]
	if !ok {
		return company.AttendancePolicy{}, company.ErrPolicyNotFound
	}
	return p, nil
}

func (r *policyRepository) UpsertPolicy(_ context.Context, p company.AttendancePolicy) (company.AttendancePolicy, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	if existing, ok := r.s.policies[p.CompanyID]; ok {
		p.CreatedAt = existing.CreatedAt
	} else {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	r.s.policies[p.CompanyID] = p
	return p, nil
}

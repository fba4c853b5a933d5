package memory

import (
	"context"
	"sort"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
)

type employeeRepository struct {
	s *Store
}

func (r *employeeRepository) GetByID(_ context.Context, id string) (employee.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	e, ok := r.s.employees[id]
	if !ok || e.DeletedAt != nil {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (r *employeeRepository) GetByIDs(_ context.Context, companyID string, ids []string) ([]employee.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]employee.Employee, 0, len(ids))
	for _, id := range ids {
		if e, ok := r.s.employees[id]; ok && e.CompanyID == companyID && e.DeletedAt == nil {
			result = append(result, e)
		}
	}
	return result, nil
}

func (r *employeeRepository) GetActiveByCompanyID(_ context.Context, companyID string) ([]employee.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]employee.Employee, 0)
	for _, e := range r.s.employees {
		if e.CompanyID == companyID && e.IsActive() {
			result = append(result, e)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].FullName == result[j].FullName {
			return result[i].ID < result[j].ID
		}
		return result[i].FullName < result[j].FullName
	})
	return result, nil
}

package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/geofence"
	"github.com/google/uuid"
)

type geofenceRepository struct {
	s *Store
}

func (r *geofenceRepository) Create(_ context.Context, g geofence.Geofence) (geofence.Geofence, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	id, err := uuid.NewV7()
	if err != nil {
		return geofence.Geofence{}, err
	}
	now := r.s.now()
	g.ID = id.String()
	g.CreatedAt = now
	g.UpdatedAt = now
	r.s.geofences[g.ID] = g
	return g, nil
}

func (r *geofenceRepository) GetByID(_ context.Context, id string, companyID string) (geofence.Geofence, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	g, ok := r.s.geofences[id]
	if !ok || g.CompanyID != companyID {
		return geofence.Geofence{}, geofence.ErrGeofenceNotFound
	}
	return g, nil
}

func (r *geofenceRepository) collect(keep func(g geofence.Geofence) bool) []geofence.Geofence {
	result := make([]geofence.Geofence, 0)
	for _, g := range r.s.geofences {
		if keep(g) {
			result = append(result, g)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name == result[j].Name {
			return result[i].ID < result[j].ID
		}
		return result[i].Name < result[j].Name
	})
	return result
}

func (r *geofenceRepository) List(_ context.Context, companyID string, filter geofence.ListFilter) ([]geofence.Geofence, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.collect(func(g geofence.Geofence) bool {
		if g.CompanyID != companyID {
			return false
		}
		if filter.ShopID != nil && g.ShopID != *filter.ShopID {
			return false
		}
		return g.IsActive || filter.IncludeInactive
	}), nil
}

func (r *geofenceRepository) Update(_ context.Context, g geofence.Geofence) (geofence.Geofence, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.geofences[g.ID]
	if !ok || existing.CompanyID != g.CompanyID {
		return geofence.Geofence{}, geofence.ErrGeofenceNotFound
	}
	g.CreatedAt = existing.CreatedAt
	g.UpdatedAt = r.s.now()
	r.s.geofences[g.ID] = g
	return g, nil
}

func (r *geofenceRepository) Delete(_ context.Context, id string, companyID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	g, ok := r.s.geofences[id]
	if !ok || g.CompanyID != companyID {
		return geofence.ErrGeofenceNotFound
	}
	delete(r.s.geofences, id)
	delete(r.s.assignments, id)
	return nil
}

func (r *geofenceRepository) IsReferenced(_ context.Context, id string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, p := range r.s.punches {
		if p.Geofence != nil && p.Geofence.GeofenceID == id {
			return true, nil
		}
	}
	return false, nil
}

func (r *geofenceRepository) GetActiveAssignedToEmployee(_ context.Context, employeeID string) ([]geofence.Geofence, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.collect(func(g geofence.Geofence) bool {
		_, assigned := r.s.assignments[g.ID][employeeID]
		return assigned && g.IsActive
	}), nil
}

func (r *geofenceRepository) GetActiveByShop(_ context.Context, companyID string, shopID string) ([]geofence.Geofence, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.collect(func(g geofence.Geofence) bool {
		return g.CompanyID == companyID && g.ShopID == shopID && g.IsActive
	}), nil
}

func (r *geofenceRepository) Assign(_ context.Context, a geofence.Assignment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.geofences[a.GeofenceID]; !ok {
		return geofence.ErrGeofenceNotFound
	}
	employees, ok := r.s.assignments[a.GeofenceID]
	if !ok {
		employees = make(map[string]time.Time)
		r.s.assignments[a.GeofenceID] = employees
	}
	if _, exists := employees[a.EmployeeID]; exists {
		return geofence.ErrAssignmentExists
	}
	employees[a.EmployeeID] = r.s.now()
	return nil
}

func (r *geofenceRepository) Unassign(_ context.Context, geofenceID string, employeeID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.assignments[geofenceID][employeeID]; !exists {
		return geofence.ErrAssignmentMissing
	}
	delete(r.s.assignments[geofenceID], employeeID)
	return nil
}

func (r *geofenceRepository) ListAssignedEmployeeIDs(_ context.Context, geofenceID string) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ids := make([]string, 0, len(r.s.assignments[geofenceID]))
	for id := range r.s.assignments[geofenceID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

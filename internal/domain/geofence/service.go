package geofence

import (
	"context"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/company"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/punch"
)

type Resolver interface {
	Evaluate(ctx context.Context, loc punch.Location, employeeID string, companyID string, policy company.AttendancePolicy) (Decision, error)
}

type GeofenceService interface {
	Create(ctx context.Context, companyID string, req CreateGeofenceRequest) (Geofence, error)
	GetByID(ctx context.Context, id string, companyID string) (GeofenceDetailResponse, error)
	List(ctx context.Context, companyID string, filter ListFilter) ([]Geofence, error)
	Update(ctx context.Context, id string, companyID string, req UpdateGeofenceRequest) (Geofence, error)
	// Delete deactivates a geofence that punches reference and removes it otherwise.
	// The returned bool reports whether the row was removed.
	Delete(ctx context.Context, id string, companyID string) (bool, error)
	Assign(ctx context.Context, id string, companyID string, req AssignRequest) error
	Unassign(ctx context.Context, id string, companyID string, employeeID string) error
}

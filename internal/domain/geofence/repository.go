package geofence

import "context"

type GeofenceRepository interface {
	Create(ctx context.Context, newGeofence Geofence) (Geofence, error)
	GetByID(ctx context.Context, id string, companyID string) (Geofence, error)
	List(ctx context.Context, companyID string, filter ListFilter) ([]Geofence, error)
	Update(ctx context.Context, g Geofence) (Geofence, error)
	// Delete removes the row; callers deactivate instead when punches reference it.
	Delete(ctx context.Context, id string, companyID string) error
	IsReferenced(ctx context.Context, id string) (bool, error)
	GetActiveAssignedToEmployee(ctx context.Context, employeeID string) ([]Geofence, error)
	GetActiveByShop(ctx context.Context, companyID string, shopID string) ([]Geofence, error)
	Assign(ctx context.Context, a Assignment) error
	Unassign(ctx context.Context, geofenceID string, employeeID string) error
	ListAssignedEmployeeIDs(ctx context.Context, geofenceID string) ([]string, error)
}

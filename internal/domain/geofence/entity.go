package geofence

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/punch"
)

// Geofence is a circular zone. Required zones block punches made outside them;
// advisory zones only flag those punches.
type Geofence struct {
	ID           string
	CompanyID    string
	ShopID       string
	Name         string
	Latitude     float64
	Longitude    float64
	RadiusMeters float64
	IsRequired   bool
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Assignment struct {
	GeofenceID string
	EmployeeID string
	CreatedAt  time.Time
}

// Decision is the resolver outcome for an accepted punch. Evaluation is nil when no
// zone applies to the employee or no location was given.
type Decision struct {
	Evaluation *punch.GeofenceEvaluation
	Flag       punch.FlagReason
}

type ListFilter struct {
	ShopID          *string
	IncludeInactive bool
}

package geofence

import (
	"errors"
	"fmt"
)

var (
	ErrGeofenceNotFound  = errors.New("geofence not found")
	ErrGeofenceViolation = errors.New("punch location is outside the required geofence")
	ErrLocationRequired  = errors.New("location is required to punch at this site")
	ErrAssignmentExists  = errors.New("employee is already assigned to this geofence")
	ErrAssignmentMissing = errors.New("employee is not assigned to this geofence")
)

// ViolationError reports how far the punch was from the nearest required zone.
type ViolationError struct {
	GeofenceID     string
	GeofenceName   string
	DistanceMeters float64
}

func (e *ViolationError) Error() string {
	return fmt.Sprintf("you are %.0f meters away from %s", e.DistanceMeters, e.GeofenceName)
}

func (e *ViolationError) Is(target error) bool {
	return target == ErrGeofenceViolation
}

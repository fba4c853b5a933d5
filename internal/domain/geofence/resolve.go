package geofence

import (
	"github.com/cmlabs-hris/attendance-engine/internal/domain/company"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/punch"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/utils"
)

// Resolve decides whether a punch at loc is accepted against fences.
// A zone contains the point iff the haversine distance is <= its radius.
func Resolve(loc punch.Location, fences []Geofence, policy company.AttendancePolicy) (Decision, error) {
	if len(fences) == 0 {
		return Decision{}, nil
	}

	hasRequired := false
	for _, g := range fences {
		if g.IsRequired {
			hasRequired = true
			break
		}
	}

	known, ok := loc.(punch.KnownLocation)
	if !ok {
		if !hasRequired {
			return Decision{}, nil
		}
		if policy.LocationMissingPolicy == company.LocationMissingFlag {
			return Decision{Flag: punch.FlagLocationMissing}, nil
		}
		return Decision{}, ErrLocationRequired
	}

	var (
		nearest, nearestInside, nearestRequired *punch.GeofenceEvaluation
		insideRequired                          bool
	)
	for _, g := range fences {
		distance := utils.CalculateHaversineDistance(known.Latitude, known.Longitude, g.Latitude, g.Longitude)
		eval := &punch.GeofenceEvaluation{
			GeofenceID:     g.ID,
			GeofenceName:   g.Name,
			DistanceMeters: distance,
			WithinRadius:   distance <= g.RadiusMeters,
		}

		if nearest == nil || distance < nearest.DistanceMeters {
			nearest = eval
		}
		if eval.WithinRadius && (nearestInside == nil || distance < nearestInside.DistanceMeters) {
			nearestInside = eval
		}
		if g.IsRequired {
			if eval.WithinRadius {
				insideRequired = true
			}
			if nearestRequired == nil || distance < nearestRequired.DistanceMeters {
				nearestRequired = eval
			}
		}
	}

	if hasRequired && !insideRequired {
		return Decision{}, &ViolationError{
			GeofenceID:     nearestRequired.GeofenceID,
			GeofenceName:   nearestRequired.GeofenceName,
			DistanceMeters: nearestRequired.DistanceMeters,
		}
	}

	if nearestInside != nil {
		return Decision{Evaluation: nearestInside}, nil
	}
	return Decision{Evaluation: nearest, Flag: punch.FlagGeofenceOutside}, nil
}

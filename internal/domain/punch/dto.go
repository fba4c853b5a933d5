package punch

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
)

// ========================================
// PUNCH DTOs
// ========================================

// PunchRequest is the JSON body of the clock-in, clock-out and break endpoints.
type PunchRequest struct {
	EmployeeID                string   `json:"employee_id"`
	Latitude                  *float64 `json:"latitude"`
	Longitude                 *float64 `json:"longitude"`
	Accuracy                  *float64 `json:"accuracy"`
	PunchMethod               Method   `json:"punch_method"`
	DeviceInfo                string   `json:"device_info"`
	IdempotencyKey            string   `json:"idempotency_key"`
	LocationUnavailableReason string   `json:"location_unavailable_reason"`
}

// ToRecordRequest builds the ledger request. A half-specified coordinate pair is
// kept as a KnownLocation with an out-of-range value so Validate reports the missing field.
func (r PunchRequest) ToRecordRequest(companyID string, punchType Type) RecordRequest {
	var loc Location
	switch {
	case r.Latitude == nil && r.Longitude == nil:
		loc = UnknownLocation{Reason: r.LocationUnavailableReason}
	default:
		known := KnownLocation{AccuracyMeters: r.Accuracy}
		if r.Latitude != nil {
			known.Latitude = *r.Latitude
		} else {
			known.Latitude = invalidCoordinate
		}
		if r.Longitude != nil {
			known.Longitude = *r.Longitude
		} else {
			known.Longitude = invalidCoordinate
		}
		loc = known
	}

	method := r.PunchMethod
	if method == "" {
		method = MethodApp
	}

	req := RecordRequest{
		EmployeeID: r.EmployeeID,
		CompanyID:  companyID,
		Type:       punchType,
		Location:   loc,
		Method:     method,
		DeviceInfo: r.DeviceInfo,
	}
	if r.IdempotencyKey != "" {
		key := r.IdempotencyKey
		req.IdempotencyKey = &key
	}
	return req
}

const invalidCoordinate = 999

type RecordRequest struct {
	EmployeeID     string
	CompanyID      string
	Type           Type
	Location       Location
	Method         Method
	DeviceInfo     string
	IdempotencyKey *string
}

func (r *RecordRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if validator.IsEmpty(r.CompanyID) {
		errs = append(errs, validator.ValidationError{
			Field:   "company_id",
			Message: "company_id is required",
		})
	}

	if !r.Type.IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "type",
			Message: "type must be one of CLOCK_IN, CLOCK_OUT, BREAK_START, BREAK_END",
		})
	}

	if !r.Method.IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "punch_method",
			Message: "punch_method must be one of APP, KIOSK, MANUAL",
		})
	}

	switch loc := r.Location.(type) {
	case KnownLocation:
		if !validator.IsValidLatitude(loc.Latitude) {
			errs = append(errs, validator.ValidationError{
				Field:   "latitude",
				Message: "latitude must be between -90 and 90",
			})
		}
		if !validator.IsValidLongitude(loc.Longitude) {
			errs = append(errs, validator.ValidationError{
				Field:   "longitude",
				Message: "longitude must be between -180 and 180",
			})
		}
		if loc.AccuracyMeters != nil && *loc.AccuracyMeters < 0 {
			errs = append(errs, validator.ValidationError{
				Field:   "accuracy",
				Message: "accuracy must not be negative",
			})
		}
	case UnknownLocation:
		if len(loc.Reason) > 255 {
			errs = append(errs, validator.ValidationError{
				Field:   "location_unavailable_reason",
				Message: "location_unavailable_reason must not exceed 255 characters",
			})
		}
	default:
		errs = append(errs, validator.ValidationError{
			Field:   "location",
			Message: "location is required",
		})
	}

	if len(r.DeviceInfo) > 255 {
		errs = append(errs, validator.ValidationError{
			Field:   "device_info",
			Message: "device_info must not exceed 255 characters",
		})
	}

	if r.IdempotencyKey != nil && (validator.IsEmpty(*r.IdempotencyKey) || len(*r.IdempotencyKey) > 128) {
		errs = append(errs, validator.ValidationError{
			Field:   "idempotency_key",
			Message: "idempotency_key must be 1 to 128 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type RecordResponse struct {
	// Punches holds every punch appended by the call in ledger order;
	// a clock-out during a break appends the implicit break end first.
	Punches  []Punch
	Message  string
	Replayed bool
}

// Punch returns the punch that was requested.
func (r RecordResponse) Punch() Punch {
	return r.Punches[len(r.Punches)-1]
}

type GeofenceEvaluationResponse struct {
	GeofenceID     string  `json:"geofence_id"`
	GeofenceName   string  `json:"geofence_name"`
	DistanceMeters float64 `json:"distance_meters"`
	WithinRadius   bool    `json:"within_radius"`
}

type PunchResponse struct {
	ID                string                      `json:"id"`
	EmployeeID        string                      `json:"employee_id"`
	Type              Type                        `json:"type"`
	Timestamp         time.Time                   `json:"timestamp"`
	OriginalTimestamp *time.Time                  `json:"original_timestamp,omitempty"`
	Latitude          *float64                    `json:"latitude,omitempty"`
	Longitude         *float64                    `json:"longitude,omitempty"`
	AccuracyMeters    *float64                    `json:"accuracy_meters,omitempty"`
	Method            Method                      `json:"punch_method"`
	DeviceInfo        string                      `json:"device_info,omitempty"`
	Geofence          *GeofenceEvaluationResponse `json:"geofence,omitempty"`
	ReviewStatus      ReviewStatus                `json:"review_status"`
	FlagReason        FlagReason                  `json:"flag_reason,omitempty"`
	Notes             *string                     `json:"notes,omitempty"`
	ReviewedBy        *string                     `json:"reviewed_by,omitempty"`
	ReviewedAt        *time.Time                  `json:"reviewed_at,omitempty"`
	CreatedAt         time.Time                   `json:"created_at"`
}

func NewPunchResponse(p Punch) PunchResponse {
	resp := PunchResponse{
		ID:                p.ID,
		EmployeeID:        p.EmployeeID,
		Type:              p.Type,
		Timestamp:         p.Timestamp,
		OriginalTimestamp: p.OriginalTimestamp,
		Latitude:          p.Latitude,
		Longitude:         p.Longitude,
		AccuracyMeters:    p.AccuracyMeters,
		Method:            p.Method,
		DeviceInfo:        p.DeviceInfo,
		ReviewStatus:      p.ReviewStatus,
		FlagReason:        p.FlagReason,
		Notes:             p.Notes,
		ReviewedBy:        p.ReviewedBy,
		ReviewedAt:        p.ReviewedAt,
		CreatedAt:         p.CreatedAt,
	}
	if p.Geofence != nil {
		resp.Geofence = &GeofenceEvaluationResponse{
			GeofenceID:     p.Geofence.GeofenceID,
			GeofenceName:   p.Geofence.GeofenceName,
			DistanceMeters: p.Geofence.DistanceMeters,
			WithinRadius:   p.Geofence.WithinRadius,
		}
	}
	return resp
}

type RecordPunchResponse struct {
	PunchID  string          `json:"punch_id"`
	Message  string          `json:"message"`
	Punch    PunchResponse   `json:"punch"`
	Implicit []PunchResponse `json:"implicit_punches,omitempty"`
	Replayed bool            `json:"replayed,omitempty"`
}

func NewRecordPunchResponse(r RecordResponse) RecordPunchResponse {
	p := r.Punch()
	resp := RecordPunchResponse{
		PunchID:  p.ID,
		Message:  r.Message,
		Punch:    NewPunchResponse(p),
		Replayed: r.Replayed,
	}
	for _, implicit := range r.Punches[:len(r.Punches)-1] {
		resp.Implicit = append(resp.Implicit, NewPunchResponse(implicit))
	}
	return resp
}

package geofence

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
)

// ========================================
// GEOFENCE DTOs
// ========================================

type CreateGeofenceRequest struct {
	ShopID       string  `json:"shop_id"`
	Name         string  `json:"name"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	RadiusMeters float64 `json:"radius_meters"`
	IsRequired   *bool   `json:"is_required"`
}

func (r *CreateGeofenceRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ShopID) {
		errs = append(errs, validator.ValidationError{
			Field:   "shop_id",
			Message: "shop_id is required",
		})
	}

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	} else if len(r.Name) > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name must not exceed 100 characters",
		})
	}

	if !validator.IsValidLatitude(r.Latitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude must be between -90 and 90",
		})
	}

	if !validator.IsValidLongitude(r.Longitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude must be between -180 and 180",
		})
	}

	if r.RadiusMeters <= 0 || r.RadiusMeters > 100000 {
		errs = append(errs, validator.ValidationError{
			Field:   "radius_meters",
			Message: "radius_meters must be greater than 0 and at most 100000",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type UpdateGeofenceRequest struct {
	Name         *string  `json:"name,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	RadiusMeters *float64 `json:"radius_meters,omitempty"`
	IsRequired   *bool    `json:"is_required,omitempty"`
	IsActive     *bool    `json:"is_active,omitempty"`
}

func (r *UpdateGeofenceRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Name == nil && r.Latitude == nil && r.Longitude == nil && r.RadiusMeters == nil && r.IsRequired == nil && r.IsActive == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "request",
			Message: "at least one field must be provided",
		})
	}

	if r.Name != nil && (validator.IsEmpty(*r.Name) || len(*r.Name) > 100) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name must be 1 to 100 characters",
		})
	}

	if r.Latitude != nil && !validator.IsValidLatitude(*r.Latitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude must be between -90 and 90",
		})
	}

	if r.Longitude != nil && !validator.IsValidLongitude(*r.Longitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude must be between -180 and 180",
		})
	}

	if r.RadiusMeters != nil && (*r.RadiusMeters <= 0 || *r.RadiusMeters > 100000) {
		errs = append(errs, validator.ValidationError{
			Field:   "radius_meters",
			Message: "radius_meters must be greater than 0 and at most 100000",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

func (r UpdateGeofenceRequest) Apply(g Geofence) Geofence {
	if r.Name != nil {
		g.Name = *r.Name
	}
	if r.Latitude != nil {
		g.Latitude = *r.Latitude
	}
	if r.Longitude != nil {
		g.Longitude = *r.Longitude
	}
	if r.RadiusMeters != nil {
		g.RadiusMeters = *r.RadiusMeters
	}
	if r.IsRequired != nil {
		g.IsRequired = *r.IsRequired
	}
	if r.IsActive != nil {
		g.IsActive = *r.IsActive
	}
	return g
}

type AssignRequest struct {
	EmployeeID string `json:"employee_id"`
}

func (r *AssignRequest) Validate() error {
	if validator.IsEmpty(r.EmployeeID) {
		return validator.ValidationErrors{{
			Field:   "employee_id",
			Message: "employee_id is required",
		}}
	}
	return nil
}

type GeofenceResponse struct {
	ID           string    `json:"id"`
	ShopID       string    `json:"shop_id"`
	Name         string    `json:"name"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	RadiusMeters float64   `json:"radius_meters"`
	IsRequired   bool      `json:"is_required"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func NewGeofenceResponse(g Geofence) GeofenceResponse {
	return GeofenceResponse{
		ID:           g.ID,
		ShopID:       g.ShopID,
		Name:         g.Name,
		Latitude:     g.Latitude,
		Longitude:    g.Longitude,
		RadiusMeters: g.RadiusMeters,
		IsRequired:   g.IsRequired,
		IsActive:     g.IsActive,
		CreatedAt:    g.CreatedAt,
		UpdatedAt:    g.UpdatedAt,
	}
}

type GeofenceDetailResponse struct {
	GeofenceResponse
	AssignedEmployeeIDs []string `json:"assigned_employee_ids"`
}

package geofence

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/geofence"
)

type GeofenceServiceImpl struct {
	geofence.GeofenceRepository
	employee.EmployeeRepository
}

// Create implements geofence.GeofenceService.
func (s *GeofenceServiceImpl) Create(ctx context.Context, companyID string, req geofence.CreateGeofenceRequest) (geofence.Geofence, error) {
	if err := req.Validate(); err != nil {
		return geofence.Geofence{}, err
	}

	isRequired := false
	if req.IsRequired != nil {
		isRequired = *req.IsRequired
	}

	created, err := s.GeofenceRepository.Create(ctx, geofence.Geofence{
		CompanyID:    companyID,
		ShopID:       req.ShopID,
		Name:         req.Name,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		RadiusMeters: req.RadiusMeters,
		IsRequired:   isRequired,
		IsActive:     true,
	})
	if err != nil {
		return geofence.Geofence{}, fmt.Errorf("failed to create geofence: %w", err)
	}
	return created, nil
}

// GetByID implements geofence.GeofenceService.
func (s *GeofenceServiceImpl) GetByID(ctx context.Context, id string, companyID string) (geofence.GeofenceDetailResponse, error) {
	g, err := s.GeofenceRepository.GetByID(ctx, id, companyID)
	if err != nil {
		return geofence.GeofenceDetailResponse{}, err
	}

	employeeIDs, err := s.GeofenceRepository.ListAssignedEmployeeIDs(ctx, id)
	if err != nil {
		return geofence.GeofenceDetailResponse{}, fmt.Errorf("failed to list geofence assignments: %w", err)
	}

	return geofence.GeofenceDetailResponse{
		GeofenceResponse:    geofence.NewGeofenceResponse(g),
		AssignedEmployeeIDs: employeeIDs,
	}, nil
}

// List implements geofence.GeofenceService.
func (s *GeofenceServiceImpl) List(ctx context.Context, companyID string, filter geofence.ListFilter) ([]geofence.Geofence, error) {
	return s.GeofenceRepository.List(ctx, companyID, filter)
}

// Update implements geofence.GeofenceService.
func (s *GeofenceServiceImpl) Update(ctx context.Context, id string, companyID string, req geofence.UpdateGeofenceRequest) (geofence.Geofence, error) {
	if err := req.Validate(); err != nil {
		return geofence.Geofence{}, err
	}

	current, err := s.GeofenceRepository.GetByID(ctx, id, companyID)
	if err != nil {
		return geofence.Geofence{}, err
	}

	return s.GeofenceRepository.Update(ctx, req.Apply(current))
}

// Delete implements geofence.GeofenceService.
func (s *GeofenceServiceImpl) Delete(ctx context.Context, id string, companyID string) (bool, error) {
	current, err := s.GeofenceRepository.GetByID(ctx, id, companyID)
	if err != nil {
		return false, err
	}

	referenced, err := s.GeofenceRepository.IsReferenced(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to check geofence references: %w", err)
	}

	if referenced {
		current.IsActive = false
		if _, err := s.GeofenceRepository.Update(ctx, current); err != nil {
			return false, fmt.Errorf("failed to deactivate geofence: %w", err)
		}
		slog.Info("geofence deactivated instead of deleted", "geofence_id", id, "company_id", companyID)
		return false, nil
	}

	if err := s.GeofenceRepository.Delete(ctx, id, companyID); err != nil {
		return false, err
	}
	return true, nil
}

// Assign implements geofence.GeofenceService.
func (s *GeofenceServiceImpl) Assign(ctx context.Context, id string, companyID string, req geofence.AssignRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	if _, err := s.GeofenceRepository.GetByID(ctx, id, companyID); err != nil {
		return err
	}

	emp, err := s.EmployeeRepository.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return err
	}
	if emp.CompanyID != companyID {
		return employee.ErrEmployeeNotFound
	}

	return s.GeofenceRepository.Assign(ctx, geofence.Assignment{
		GeofenceID: id,
		EmployeeID: req.EmployeeID,
	})
}

// Unassign implements geofence.GeofenceService.
func (s *GeofenceServiceImpl) Unassign(ctx context.Context, id string, companyID string, employeeID string) error {
	if _, err := s.GeofenceRepository.GetByID(ctx, id, companyID); err != nil {
		return err
	}
	return s.GeofenceRepository.Unassign(ctx, id, employeeID)
}

func NewGeofenceService(geofenceRepo geofence.GeofenceRepository, employeeRepo employee.EmployeeRepository) geofence.GeofenceService {
	return &GeofenceServiceImpl{
		GeofenceRepository: geofenceRepo,
		EmployeeRepository: employeeRepo,
	}
}

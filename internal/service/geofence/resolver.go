package geofence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/company"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/geofence"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/punch"
)

type ResolverImpl struct {
	geofence.GeofenceRepository
	employee.EmployeeRepository
	lookupTimeout time.Duration
}

// Evaluate implements geofence.Resolver.
func (r *ResolverImpl) Evaluate(ctx context.Context, loc punch.Location, employeeID string, companyID string, policy company.AttendancePolicy) (geofence.Decision, error) {
	lookupCtx := ctx
	if r.lookupTimeout > 0 {
		var cancel context.CancelFunc
		lookupCtx, cancel = context.WithTimeout(ctx, r.lookupTimeout)
		defer cancel()
	}

	fences, err := r.load(lookupCtx, employeeID, companyID)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			slog.Warn("geofence lookup timed out", "employee_id", employeeID, "company_id", companyID, "timeout", r.lookupTimeout)
			return geofence.Decision{}, geofence.ErrLocationRequired
		}
		return geofence.Decision{}, err
	}

	return geofence.Resolve(loc, fences, policy)
}

// load returns the zones assigned to the employee, or the zones of their shop when none are.
func (r *ResolverImpl) load(ctx context.Context, employeeID string, companyID string) ([]geofence.Geofence, error) {
	fences, err := r.GeofenceRepository.GetActiveAssignedToEmployee(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get assigned geofences: %w", err)
	}
	if len(fences) > 0 {
		return fences, nil
	}

	emp, err := r.EmployeeRepository.GetByID(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	if emp.ShopID == nil {
		return nil, nil
	}

	fences, err = r.GeofenceRepository.GetActiveByShop(ctx, companyID, *emp.ShopID)
	if err != nil {
		return nil, fmt.Errorf("failed to get shop geofences: %w", err)
	}
	return fences, nil
}

func NewResolver(geofenceRepo geofence.GeofenceRepository, employeeRepo employee.EmployeeRepository, lookupTimeout time.Duration) geofence.Resolver {
	return &ResolverImpl{
		GeofenceRepository: geofenceRepo,
		EmployeeRepository: employeeRepo,
		lookupTimeout:      lookupTimeout,
	}
}

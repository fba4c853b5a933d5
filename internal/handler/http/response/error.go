package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/company"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/geofence"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/punch"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/review"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/user"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var violation *geofence.ViolationError
	if errors.As(err, &violation) {
		GeofenceViolation(w, violation.Error(), violation.DistanceMeters)
		return
	}

	switch {
	// Punch state conflicts
	case errors.Is(err, punch.ErrAlreadyClockedIn):
		ErrorWithCode(w, http.StatusConflict, "ALREADY_CLOCKED_IN", "You are already clocked in")
	case errors.Is(err, punch.ErrNotClockedIn):
		ErrorWithCode(w, http.StatusConflict, "NOT_CLOCKED_IN", "You are not clocked in")
	case errors.Is(err, punch.ErrNoActiveBreak):
		ErrorWithCode(w, http.StatusConflict, "NO_ACTIVE_BREAK", "You are not on a break")
	case errors.Is(err, punch.ErrAlreadyOnBreak):
		ErrorWithCode(w, http.StatusConflict, "ALREADY_ON_BREAK", "You are already on a break")
	case errors.Is(err, punch.ErrPunchBusy):
		ErrorWithCode(w, http.StatusConflict, "PUNCH_IN_PROGRESS", "Another punch is being recorded, try again")
	case errors.Is(err, punch.ErrRateLimited):
		TooManyRequests(w, "Too many punch attempts, try again later")
	case errors.Is(err, punch.ErrPunchForOther):
		Forbidden(w, err.Error())
	case errors.Is(err, punch.ErrPunchNotFound):
		NotFound(w, "Punch not found")

	// Location
	case errors.Is(err, geofence.ErrLocationRequired):
		ErrorWithCode(w, http.StatusForbidden, "LOCATION_REQUIRED", "Location is required to punch at this site")
	case errors.Is(err, geofence.ErrGeofenceNotFound):
		NotFound(w, "Geofence not found")
	case errors.Is(err, geofence.ErrAssignmentExists):
		Conflict(w, "Employee is already assigned to this geofence")
	case errors.Is(err, geofence.ErrAssignmentMissing):
		NotFound(w, "Employee is not assigned to this geofence")

	// Review workflow
	case errors.Is(err, punch.ErrPunchAlreadyReviewed):
		ErrorWithCode(w, http.StatusConflict, "ALREADY_REVIEWED", "Punch has already been reviewed")
	case errors.Is(err, review.ErrInvalidTransition):
		ErrorWithCode(w, http.StatusConflict, "INVALID_TRANSITION", "Action is not allowed for the punch's review status")
	case errors.Is(err, review.ErrInvalidEditOrdering):
		ErrorWithCode(w, http.StatusConflict, "INVALID_EDIT_ORDERING", "Edited timestamp must stay between the neighbouring punches")

	// Directory and identity
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrEmployeeInactive):
		Forbidden(w, "Employee is not active")
	case errors.Is(err, employee.ErrUnauthorized):
		Forbidden(w, "Not allowed to access this employee")
	case errors.Is(err, company.ErrPolicyNotFound):
		NotFound(w, "Attendance policy not found")
	case errors.Is(err, user.ErrEmployeeIDRequired):
		BadRequest(w, "employee_id is required", nil)
	case errors.Is(err, user.ErrCompanyIDRequired), errors.Is(err, user.ErrInvalidClaims):
		Unauthorized(w, err.Error())
	case errors.Is(err, user.ErrInsufficientPermissions):
		Forbidden(w, "Insufficient permissions")
	case errors.Is(err, user.ErrManagerAccessRequired):
		Forbidden(w, "Manager access required")
	case errors.Is(err, user.ErrOwnerAccessRequired):
		Forbidden(w, "Owner access required")

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}

package user

type Role string

const (
	RoleOwner    Role = "owner"    // Company owner - full access
	RoleManager  Role = "manager"  // Supervisor, reviews punches
	RoleEmployee Role = "employee" // Regular employee
	RolePending  Role = "pending"  // Still in onboarding
)

// Identity is the caller as resolved by the identity directory (JWT claims).
// The engine trusts this mapping and never re-derives it.
type Identity struct {
	UserID     string
	EmployeeID string
	CompanyID  string
	Role       Role
}

// IsManager checks if the caller is manager or owner
func (i Identity) IsManager() bool {
	return i.Role == RoleManager || i.Role == RoleOwner
}

// IsOwner checks if the caller is company owner
func (i Identity) IsOwner() bool {
	return i.Role == RoleOwner
}

// CanReview checks if the caller may move punches through the review workflow
func (i Identity) CanReview() bool {
	return HasPermission(i.Role, PermissionAttendanceReview)
}

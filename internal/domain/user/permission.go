package user

type Permission string

const (
	// Punching
	PermissionAttendancePunch      Permission = "attendance.punch"
	PermissionAttendancePunchOther Permission = "attendance.punch_other"

	// Read paths
	PermissionAttendanceViewOwn Permission = "attendance.view_own"
	PermissionAttendanceViewAll Permission = "attendance.view_all"

	// Review workflow
	PermissionAttendanceReview Permission = "attendance.review"

	// Geofences and tenant policy
	PermissionGeofenceManage Permission = "geofence.manage"
	PermissionPolicyManage   Permission = "policy.manage"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleOwner: {
		// Owner has all permissions
		PermissionAttendancePunch,
		PermissionAttendancePunchOther,
		PermissionAttendanceViewOwn,
		PermissionAttendanceViewAll,
		PermissionAttendanceReview,
		PermissionGeofenceManage,
		PermissionPolicyManage,
	},
	RoleManager: {
		// Manager reviews punches and manages zones
		PermissionAttendancePunch,
		PermissionAttendancePunchOther,
		PermissionAttendanceViewOwn,
		PermissionAttendanceViewAll,
		PermissionAttendanceReview,
		PermissionGeofenceManage,
	},
	RoleEmployee: {
		PermissionAttendancePunch,
		PermissionAttendanceViewOwn,
	},
	RolePending: {
		// Pending role has no permissions
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}

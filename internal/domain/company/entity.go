package company

import "time"

type LocationMissingPolicy string

const (
	LocationMissingReject LocationMissingPolicy = "reject"
	LocationMissingFlag   LocationMissingPolicy = "flag"
)

type RejectedPunchPolicy string

const (
	// RejectedPunchExclude drops rejected punches from every aggregate silently.
	RejectedPunchExclude RejectedPunchPolicy = "exclude"
	// RejectedPunchReport also drops them, but timesheets report how many were rejected.
	RejectedPunchReport RejectedPunchPolicy = "report"
)

// AttendancePolicy holds the per-tenant thresholds of the attendance engine.
type AttendancePolicy struct {
	CompanyID                string
	Timezone                 string
	OvertimeThresholdMinutes int
	MaxShiftMinutes          int
	MaxBreakMinutes          int
	LocationMissingPolicy    LocationMissingPolicy
	RejectedPunchPolicy      RejectedPunchPolicy
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

// Location returns the tenant timezone, falling back to UTC for unknown names.
func (p AttendancePolicy) Location() *time.Location {
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

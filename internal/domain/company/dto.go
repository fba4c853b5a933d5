package company

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
)

type UpdatePolicyRequest struct {
	Timezone                 *string                `json:"timezone,omitempty"`
	OvertimeThresholdMinutes *int                   `json:"overtime_threshold_minutes,omitempty"`
	MaxShiftMinutes          *int                   `json:"max_shift_minutes,omitempty"`
	MaxBreakMinutes          *int                   `json:"max_break_minutes,omitempty"`
	LocationMissingPolicy    *LocationMissingPolicy `json:"location_missing_policy,omitempty"`
	RejectedPunchPolicy      *RejectedPunchPolicy   `json:"rejected_punch_policy,omitempty"`
}

func (r *UpdatePolicyRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Timezone == nil && r.OvertimeThresholdMinutes == nil && r.MaxShiftMinutes == nil &&
		r.MaxBreakMinutes == nil && r.LocationMissingPolicy == nil && r.RejectedPunchPolicy == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "request",
			Message: "at least one field must be provided",
		})
	}

	if r.Timezone != nil {
		if _, err := time.LoadLocation(*r.Timezone); err != nil || validator.IsEmpty(*r.Timezone) {
			errs = append(errs, validator.ValidationError{
				Field:   "timezone",
				Message: "timezone must be a valid IANA timezone name",
			})
		}
	}

	if r.OvertimeThresholdMinutes != nil && (*r.OvertimeThresholdMinutes < 0 || *r.OvertimeThresholdMinutes > 24*60) {
		errs = append(errs, validator.ValidationError{
			Field:   "overtime_threshold_minutes",
			Message: "overtime_threshold_minutes must be between 0 and 1440",
		})
	}

	if r.MaxShiftMinutes != nil && (*r.MaxShiftMinutes <= 0 || *r.MaxShiftMinutes > 48*60) {
		errs = append(errs, validator.ValidationError{
			Field:   "max_shift_minutes",
			Message: "max_shift_minutes must be between 1 and 2880",
		})
	}

	if r.MaxBreakMinutes != nil && (*r.MaxBreakMinutes <= 0 || *r.MaxBreakMinutes > 24*60) {
		errs = append(errs, validator.ValidationError{
			Field:   "max_break_minutes",
			Message: "max_break_minutes must be between 1 and 1440",
		})
	}

	if r.LocationMissingPolicy != nil && *r.LocationMissingPolicy != LocationMissingReject && *r.LocationMissingPolicy != LocationMissingFlag {
		errs = append(errs, validator.ValidationError{
			Field:   "location_missing_policy",
			Message: "location_missing_policy must be reject or flag",
		})
	}

	if r.RejectedPunchPolicy != nil && *r.RejectedPunchPolicy != RejectedPunchExclude && *r.RejectedPunchPolicy != RejectedPunchReport {
		errs = append(errs, validator.ValidationError{
			Field:   "rejected_punch_policy",
			Message: "rejected_punch_policy must be exclude or report",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Apply copies the provided fields onto p.
func (r UpdatePolicyRequest) Apply(p AttendancePolicy) AttendancePolicy {
	if r.Timezone != nil {
		p.Timezone = *r.Timezone
	}
	if r.OvertimeThresholdMinutes != nil {
		p.OvertimeThresholdMinutes = *r.OvertimeThresholdMinutes
	}
	if r.MaxShiftMinutes != nil {
		p.MaxShiftMinutes = *r.MaxShiftMinutes
	}
	if r.MaxBreakMinutes != nil {
		p.MaxBreakMinutes = *r.MaxBreakMinutes
	}
	if r.LocationMissingPolicy != nil {
		p.LocationMissingPolicy = *r.LocationMissingPolicy
	}
	if r.RejectedPunchPolicy != nil {
		p.RejectedPunchPolicy = *r.RejectedPunchPolicy
	}
	return p
}

type PolicyResponse struct {
	CompanyID                string                `json:"company_id"`
	Timezone                 string                `json:"timezone"`
	OvertimeThresholdMinutes int                   `json:"overtime_threshold_minutes"`
	MaxShiftMinutes          int                   `json:"max_shift_minutes"`
	MaxBreakMinutes          int                   `json:"max_break_minutes"`
	LocationMissingPolicy    LocationMissingPolicy `json:"location_missing_policy"`
	RejectedPunchPolicy      RejectedPunchPolicy   `json:"rejected_punch_policy"`
	UpdatedAt                *time.Time            `json:"updated_at,omitempty"`
}

func NewPolicyResponse(p AttendancePolicy) PolicyResponse {
	resp := PolicyResponse{
		CompanyID:                p.CompanyID,
		Timezone:                 p.Timezone,
		OvertimeThresholdMinutes: p.OvertimeThresholdMinutes,
		MaxShiftMinutes:          p.MaxShiftMinutes,
		MaxBreakMinutes:          p.MaxBreakMinutes,
		LocationMissingPolicy:    p.LocationMissingPolicy,
		RejectedPunchPolicy:      p.RejectedPunchPolicy,
	}
	if !p.UpdatedAt.IsZero() {
		updatedAt := p.UpdatedAt
		resp.UpdatedAt = &updatedAt
	}
	return resp
}

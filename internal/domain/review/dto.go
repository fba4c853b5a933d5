package review

import (
	"strconv"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/punch"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
)

// ========================================
// REVIEW DTOs
// ========================================

type ActionRequest struct {
	Action       Action  `json:"action"`
	PunchID      string  `json:"punch_id"`
	Reason       *string `json:"reason,omitempty"`
	NewTimestamp *string `json:"new_timestamp,omitempty"`
	Notes        *string `json:"notes,omitempty"`

	// Parsed by Validate.
	newTimestamp time.Time
}

func (r *ActionRequest) Validate() error {
	var errs validator.ValidationErrors

	if !r.Action.IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "action",
			Message: "action must be one of flag, approve, reject, edit",
		})
	}

	if validator.IsEmpty(r.PunchID) {
		errs = append(errs, validator.ValidationError{
			Field:   "punch_id",
			Message: "punch_id is required",
		})
	}

	if r.Action == ActionReject && (r.Reason == nil || validator.IsEmpty(*r.Reason)) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required when rejecting a punch",
		})
	}

	if r.Action == ActionEdit {
		if r.NewTimestamp == nil || validator.IsEmpty(*r.NewTimestamp) {
			errs = append(errs, validator.ValidationError{
				Field:   "new_timestamp",
				Message: "new_timestamp is required when editing a punch",
			})
		} else if ts, ok := validator.IsValidDateTime(*r.NewTimestamp); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "new_timestamp",
				Message: "new_timestamp must be an RFC3339 timestamp",
			})
		} else {
			r.newTimestamp = ts.UTC()
		}
	}

	if r.Reason != nil && len(*r.Reason) > 500 {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason must not exceed 500 characters",
		})
	}

	if r.Notes != nil && len(*r.Notes) > 1000 {
		errs = append(errs, validator.ValidationError{
			Field:   "notes",
			Message: "notes must not exceed 1000 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ParsedTimestamp returns new_timestamp as parsed by Validate.
func (r *ActionRequest) ParsedTimestamp() time.Time {
	return r.newTimestamp
}

type ListRequest struct {
	DaysBack string `json:"days_back"`
	Status   string `json:"status"`

	days   int
	status *punch.ReviewStatus
}

const (
	defaultDaysBack = 7
	maxDaysBack     = 90
)

func (r *ListRequest) Validate() error {
	var errs validator.ValidationErrors

	r.days = defaultDaysBack
	if r.DaysBack != "" {
		days, err := strconv.Atoi(r.DaysBack)
		if err != nil || days < 1 || days > maxDaysBack {
			errs = append(errs, validator.ValidationError{
				Field:   "days_back",
				Message: "days_back must be a number between 1 and 90",
			})
		} else {
			r.days = days
		}
	}

	if r.Status != "" {
		s := punch.ReviewStatus(r.Status)
		if !s.IsValid() {
			errs = append(errs, validator.ValidationError{
				Field:   "status",
				Message: "status must be one of NONE, FLAGGED, APPROVED, REJECTED, EDITED",
			})
		} else {
			r.status = &s
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

func (r *ListRequest) Days() int {
	if r.days == 0 {
		return defaultDaysBack
	}
	return r.days
}

// Statuses returns the requested status, or the unreviewed statuses by default.
func (r *ListRequest) Statuses() []punch.ReviewStatus {
	if r.status != nil {
		return []punch.ReviewStatus{*r.status}
	}
	return []punch.ReviewStatus{punch.ReviewStatusNone, punch.ReviewStatusFlagged}
}

type ReviewItem struct {
	punch.PunchResponse
	EmployeeName string `json:"employee_name,omitempty"`
	Severity     int    `json:"severity"`
}

type Summary struct {
	FlaggedCount int `json:"flagged_count"`
	TotalCount   int `json:"total_count"`
}

type ListResponse struct {
	Punches []ReviewItem `json:"punches"`
	Summary Summary      `json:"summary"`
}

type HistoryResponse struct {
	ID                string             `json:"id"`
	PunchID           string             `json:"punch_id"`
	ReviewerID        string             `json:"reviewer_id"`
	Action            Action             `json:"action"`
	FromStatus        punch.ReviewStatus `json:"from_status"`
	ToStatus          punch.ReviewStatus `json:"to_status"`
	PreviousTimestamp *time.Time         `json:"previous_timestamp,omitempty"`
	NewTimestamp      *time.Time         `json:"new_timestamp,omitempty"`
	Reason            *string            `json:"reason,omitempty"`
	Notes             *string            `json:"notes,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
}

func NewHistoryResponse(r Review) HistoryResponse {
	return HistoryResponse{
		ID:                r.ID,
		PunchID:           r.PunchID,
		ReviewerID:        r.ReviewerID,
		Action:            r.Action,
		FromStatus:        r.FromStatus,
		ToStatus:          r.ToStatus,
		PreviousTimestamp: r.PreviousTimestamp,
		NewTimestamp:      r.NewTimestamp,
		Reason:            r.Reason,
		Notes:             r.Notes,
		CreatedAt:         r.CreatedAt,
	}
}

package status

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/shift"
)

type Status string

const (
	StatusClockedOut Status = "CLOCKED_OUT"
	StatusClockedIn  Status = "CLOCKED_IN"
	StatusOnBreak    Status = "ON_BREAK"
)

// FromShift classifies an employee by their latest shift.
func FromShift(s *shift.Shift) Status {
	switch {
	case s == nil || s.IsComplete:
		return StatusClockedOut
	case s.OpenBreak() != nil:
		return StatusOnBreak
	default:
		return StatusClockedIn
	}
}

// Since returns when the employee entered their current status, or nil if they never clocked in.
func Since(s *shift.Shift) *time.Time {
	if s == nil {
		return nil
	}
	var at time.Time
	switch FromShift(s) {
	case StatusClockedOut:
		at = s.ClockOut.Timestamp
	case StatusOnBreak:
		at = s.OpenBreak().StartAt
	default:
		at = s.ClockIn.Timestamp
		if n := len(s.Breaks); n > 0 && s.Breaks[n-1].EndAt != nil {
			at = *s.Breaks[n-1].EndAt
		}
	}
	return &at
}

package timesheet

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/shift"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========================================
// TIMESHEET DTOs
// ========================================

type AggregateRequest struct {
	CompanyID   string   `json:"-"`
	EmployeeIDs []string `json:"employee_ids"`
	Period      Period   `json:"period"`
	StartDate   string   `json:"start"`
	EndDate     string   `json:"end"`
}

func (r *AggregateRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.CompanyID) {
		errs = append(errs, validator.ValidationError{
			Field:   "company_id",
			Message: "company_id is required",
		})
	}

	if r.Period == "" {
		r.Period = PeriodToday
	}

	switch r.Period {
	case PeriodToday, PeriodWeek:
	case PeriodCustom:
		start, okStart := validator.IsValidDate(r.StartDate)
		if !okStart {
			errs = append(errs, validator.ValidationError{
				Field:   "start",
				Message: "start must be a date in YYYY-MM-DD format",
			})
		}
		end, okEnd := validator.IsValidDate(r.EndDate)
		if !okEnd {
			errs = append(errs, validator.ValidationError{
				Field:   "end",
				Message: "end must be a date in YYYY-MM-DD format",
			})
		}
		if okStart && okEnd {
			if end.Before(start) {
				errs = append(errs, validator.ValidationError{
					Field:   "end",
					Message: "end must not be before start",
				})
			} else if int(end.Sub(start).Hours()/24)+1 > maxCustomDays {
				errs = append(errs, validator.ValidationError{
					Field:   "end",
					Message: "custom period must not exceed 93 days",
				})
			}
		}
	default:
		errs = append(errs, validator.ValidationError{
			Field:   "period",
			Message: "period must be one of today, week, custom",
		})
	}

	for _, id := range r.EmployeeIDs {
		if validator.IsEmpty(id) {
			errs = append(errs, validator.ValidationError{
				Field:   "employee_id",
				Message: "employee_id must not be empty",
			})
			break
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Range resolves the period to whole days in loc. Call after Validate.
// Weeks start on Monday.
func (r *AggregateRequest) Range(now time.Time, loc *time.Location) Range {
	local := now.In(loc)
	switch r.Period {
	case PeriodWeek:
		offset := (int(local.Weekday()) + 6) % 7
		monday := time.Date(local.Year(), local.Month(), local.Day()-offset, 0, 0, 0, 0, loc)
		return dayRange(monday, monday.AddDate(0, 0, 6), loc)
	case PeriodCustom:
		start, _ := time.ParseInLocation("2006-01-02", r.StartDate, loc)
		end, _ := time.ParseInLocation("2006-01-02", r.EndDate, loc)
		return dayRange(start, end, loc)
	default:
		return dayRange(local, local, loc)
	}
}

type FormattedTotals struct {
	Work     string `json:"work"`
	Break    string `json:"break"`
	Overtime string `json:"overtime"`
}

type DayResponse struct {
	Date            string `json:"date"`
	WorkMinutes     int    `json:"work_minutes"`
	BreakMinutes    int    `json:"break_minutes"`
	OvertimeMinutes int    `json:"overtime_minutes"`
	ShiftCount      int    `json:"shift_count"`
}

type EmployeeTimesheetResponse struct {
	EmployeeID         string                `json:"employee_id"`
	EmployeeName       string                `json:"employee_name"`
	Position           string                `json:"position,omitempty"`
	PayRate            *decimal.Decimal      `json:"pay_rate,omitempty"`
	Shifts             []shift.ShiftResponse `json:"shifts"`
	Days               []DayResponse         `json:"days"`
	WorkMinutes        int                   `json:"work_minutes"`
	BreakMinutes       int                   `json:"break_minutes"`
	OvertimeMinutes    int                   `json:"overtime_minutes"`
	ShiftCount         int                   `json:"shift_count"`
	OpenShiftCount     int                   `json:"open_shift_count"`
	RejectedPunchCount *int                  `json:"rejected_punch_count,omitempty"`
	Formatted          FormattedTotals       `json:"formatted"`
}

type TimesheetResponse struct {
	CompanyID   string                      `json:"company_id"`
	Period      Period                      `json:"period"`
	Start       string                      `json:"start"`
	End         string                      `json:"end"`
	Timezone    string                      `json:"timezone"`
	Employees   []EmployeeTimesheetResponse `json:"employees"`
	GeneratedAt time.Time                   `json:"generated_at"`
}

func NewTimesheetResponse(ts Timesheet) TimesheetResponse {
	resp := TimesheetResponse{
		CompanyID:   ts.CompanyID,
		Period:      ts.Period,
		Start:       ts.Range.StartDate,
		End:         ts.Range.EndDate,
		Timezone:    ts.Timezone,
		Employees:   make([]EmployeeTimesheetResponse, 0, len(ts.Employees)),
		GeneratedAt: ts.GeneratedAt,
	}
	for _, e := range ts.Employees {
		er := EmployeeTimesheetResponse{
			EmployeeID:         e.EmployeeID,
			EmployeeName:       e.EmployeeName,
			Position:           e.Position,
			PayRate:            e.PayRate,
			Shifts:             make([]shift.ShiftResponse, 0, len(e.Shifts)),
			Days:               make([]DayResponse, 0, len(e.Days)),
			WorkMinutes:        e.WorkMinutes,
			BreakMinutes:       e.BreakMinutes,
			OvertimeMinutes:    e.OvertimeMinutes,
			ShiftCount:         e.ShiftCount,
			OpenShiftCount:     e.OpenShiftCount,
			RejectedPunchCount: e.RejectedPunchCount,
			Formatted: FormattedTotals{
				Work:     shift.FormatMinutes(e.WorkMinutes),
				Break:    shift.FormatMinutes(e.BreakMinutes),
				Overtime: shift.FormatMinutes(e.OvertimeMinutes),
			},
		}
		for _, s := range e.Shifts {
			er.Shifts = append(er.Shifts, shift.NewShiftResponse(s))
		}
		for _, d := range e.Days {
			er.Days = append(er.Days, DayResponse(d))
		}
		resp.Employees = append(resp.Employees, er)
	}
	return resp
}

package timesheet

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/shift"
	"github.com/shopspring/decimal"
)

type Period string

const (
	PeriodToday  Period = "today"
	PeriodWeek   Period = "week"
	PeriodCustom Period = "custom"
)

const maxCustomDays = 93

// Range is a span of whole local days, [Start, End) in the tenant timezone.
type Range struct {
	Start     time.Time
	End       time.Time
	StartDate string
	EndDate   string
}

func (r Range) Window() shift.Window {
	return shift.Window{Start: r.Start, End: r.End}
}

// Contains reports whether t falls inside the range.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

func dayRange(first, last time.Time, loc *time.Location) Range {
	start := time.Date(first.Year(), first.Month(), first.Day(), 0, 0, 0, 0, loc)
	end := time.Date(last.Year(), last.Month(), last.Day()+1, 0, 0, 0, 0, loc)
	return Range{
		Start:     start,
		End:       end,
		StartDate: start.Format("2006-01-02"),
		EndDate:   end.AddDate(0, 0, -1).Format("2006-01-02"),
	}
}

type DaySummary struct {
	Date            string
	WorkMinutes     int
	BreakMinutes    int
	OvertimeMinutes int
	ShiftCount      int
}

type EmployeeTimesheet struct {
	EmployeeID         string
	EmployeeName       string
	Position           string
	PayRate            *decimal.Decimal
	Shifts             []shift.Shift
	Days               []DaySummary
	WorkMinutes        int
	BreakMinutes       int
	OvertimeMinutes    int
	ShiftCount         int
	OpenShiftCount     int
	RejectedPunchCount *int
}

// Add counts s towards the totals and the local day of its clock-in. Overtime is what a day's
// work exceeds the threshold by, so split shifts on one day add up before the threshold applies.
// Shifts must be added in clock-in order.
func (e *EmployeeTimesheet) Add(s shift.Shift, loc *time.Location, overtimeThresholdMinutes int) {
	e.Shifts = append(e.Shifts, s)
	e.WorkMinutes += s.WorkMinutes
	e.BreakMinutes += s.BreakMinutes
	e.ShiftCount++
	if !s.IsComplete {
		e.OpenShiftCount++
	}

	date := s.ClockIn.Timestamp.In(loc).Format("2006-01-02")
	if n := len(e.Days); n == 0 || e.Days[n-1].Date != date {
		e.Days = append(e.Days, DaySummary{Date: date})
	}
	d := &e.Days[len(e.Days)-1]
	d.WorkMinutes += s.WorkMinutes
	d.BreakMinutes += s.BreakMinutes
	d.ShiftCount++

	e.OvertimeMinutes -= d.OvertimeMinutes
	d.OvertimeMinutes = max(0, d.WorkMinutes-overtimeThresholdMinutes)
	e.OvertimeMinutes += d.OvertimeMinutes
}

type Timesheet struct {
	CompanyID   string
	Period      Period
	Range       Range
	Timezone    string
	Employees   []EmployeeTimesheet
	GeneratedAt time.Time
}

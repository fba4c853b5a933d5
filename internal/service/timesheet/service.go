package timesheet

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/company"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/punch"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/shift"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/timesheet"
)

type TimesheetServiceImpl struct {
	punch.PunchRepository
	employee.EmployeeRepository
	policyService company.PolicyService
	shiftService  shift.ShiftService
	now           func() time.Time
}

// Aggregate implements timesheet.TimesheetService.
func (s *TimesheetServiceImpl) Aggregate(ctx context.Context, req timesheet.AggregateRequest) (timesheet.Timesheet, error) {
	if err := req.Validate(); err != nil {
		return timesheet.Timesheet{}, err
	}

	policy, err := s.policyService.Get(ctx, req.CompanyID)
	if err != nil {
		return timesheet.Timesheet{}, err
	}
	loc := policy.Location()
	now := s.now()
	rng := req.Range(now, loc)

	employees, err := s.employees(ctx, req)
	if err != nil {
		return timesheet.Timesheet{}, err
	}

	result := timesheet.Timesheet{
		CompanyID:   req.CompanyID,
		Period:      req.Period,
		Range:       rng,
		Timezone:    loc.String(),
		Employees:   make([]timesheet.EmployeeTimesheet, 0, len(employees)),
		GeneratedAt: now,
	}

	for _, emp := range employees {
		et := timesheet.EmployeeTimesheet{
			EmployeeID:   emp.ID,
			EmployeeName: emp.FullName,
			Position:     emp.Position,
			PayRate:      emp.PayRate,
		}

		shifts, err := s.shiftService.Reconstruct(ctx, emp.ID, req.CompanyID, rng.Window())
		if err != nil {
			return timesheet.Timesheet{}, err
		}
		// Shifts belong to the day they started on, so overnight shifts count once.
		for sh := range shifts {
			if rng.Contains(sh.ClockIn.Timestamp) {
				et.Add(sh, loc, policy.OvertimeThresholdMinutes)
			}
		}

		if policy.RejectedPunchPolicy == company.RejectedPunchReport {
			rejected, err := s.PunchRepository.CountRejected(ctx, emp.ID, rng.Start, rng.End)
			if err != nil {
				return timesheet.Timesheet{}, fmt.Errorf("failed to count rejected punches: %w", err)
			}
			et.RejectedPunchCount = &rejected
		}

		result.Employees = append(result.Employees, et)
	}

	return result, nil
}

func (s *TimesheetServiceImpl) employees(ctx context.Context, req timesheet.AggregateRequest) ([]employee.Employee, error) {
	if len(req.EmployeeIDs) == 0 {
		employees, err := s.EmployeeRepository.GetActiveByCompanyID(ctx, req.CompanyID)
		if err != nil {
			return nil, fmt.Errorf("failed to list employees: %w", err)
		}
		return employees, nil
	}

	employees, err := s.EmployeeRepository.GetByIDs(ctx, req.CompanyID, req.EmployeeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get employees: %w", err)
	}
	found := make(map[string]bool, len(employees))
	for _, e := range employees {
		found[e.ID] = true
	}
	for _, id := range req.EmployeeIDs {
		if !found[id] {
			return nil, employee.ErrEmployeeNotFound
		}
	}
	return employees, nil
}

func NewTimesheetService(
	punchRepo punch.PunchRepository,
	employeeRepo employee.EmployeeRepository,
	policyService company.PolicyService,
	shiftService shift.ShiftService,
	now func() time.Time,
) timesheet.TimesheetService {
	if now == nil {
		now = time.Now
	}
	return &TimesheetServiceImpl{
		PunchRepository:    punchRepo,
		EmployeeRepository: employeeRepo,
		policyService:      policyService,
		shiftService:       shiftService,
		now:                now,
	}
}

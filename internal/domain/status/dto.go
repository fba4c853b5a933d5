package status

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/shift"
)

type EmployeeStatus struct {
	EmployeeID   string               `json:"employee_id"`
	EmployeeName string               `json:"employee_name"`
	Position     string               `json:"position,omitempty"`
	Status       Status               `json:"status"`
	Since        *time.Time           `json:"since,omitempty"`
	OpenShift    *shift.ShiftResponse `json:"open_shift,omitempty"`
}

// Board is the who-is-working view of one company.
type Board struct {
	CompanyID   string           `json:"company_id"`
	ClockedIn   []EmployeeStatus `json:"clocked_in"`
	OnBreak     []EmployeeStatus `json:"on_break"`
	ClockedOut  []EmployeeStatus `json:"clocked_out"`
	GeneratedAt time.Time        `json:"generated_at"`
}

func (b *Board) add(es EmployeeStatus) {
	switch es.Status {
	case StatusClockedIn:
		b.ClockedIn = append(b.ClockedIn, es)
	case StatusOnBreak:
		b.OnBreak = append(b.OnBreak, es)
	default:
		b.ClockedOut = append(b.ClockedOut, es)
	}
}

// NewBoard groups statuses by their state, keeping the given order within each group.
func NewBoard(companyID string, statuses []EmployeeStatus, generatedAt time.Time) Board {
	b := Board{
		CompanyID:   companyID,
		ClockedIn:   []EmployeeStatus{},
		OnBreak:     []EmployeeStatus{},
		ClockedOut:  []EmployeeStatus{},
		GeneratedAt: generatedAt,
	}
	for _, es := range statuses {
		b.add(es)
	}
	return b
}

// NewEmployeeStatus builds the status view of an employee from their latest shift.
func NewEmployeeStatus(employeeID, name, position string, latest *shift.Shift) EmployeeStatus {
	es := EmployeeStatus{
		EmployeeID:   employeeID,
		EmployeeName: name,
		Position:     position,
		Status:       FromShift(latest),
		Since:        Since(latest),
	}
	if latest != nil && !latest.IsComplete {
		open := shift.NewShiftResponse(*latest)
		es.OpenShift = &open
	}
	return es
}

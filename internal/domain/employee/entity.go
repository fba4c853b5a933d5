package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

// Employee is the slice of the employee directory the attendance engine reads.
type Employee struct {
	ID               string
	UserID           *string
	CompanyID        string
	ShopID           *string
	EmployeeCode     string
	FullName         string
	Position         string
	Timezone         *string
	PayRate          *decimal.Decimal
	EmploymentStatus EmploymentStatus
	CreatedAt        time.Time
	UpdatedAt        time.Time
	DeletedAt        *time.Time
}

type EmploymentStatus string

const (
	EmploymentStatusActive     EmploymentStatus = "active"
	EmploymentStatusResigned   EmploymentStatus = "resigned"
	EmploymentStatusTerminated EmploymentStatus = "terminated"
)

func (e Employee) IsActive() bool {
	return e.EmploymentStatus == EmploymentStatusActive && e.DeletedAt == nil
}

// Location returns the employee's timezone, or fallback when unset or unknown.
func (e Employee) Location(fallback *time.Location) *time.Location {
	if e.Timezone == nil || *e.Timezone == "" {
		return fallback
	}
	loc, err := time.LoadLocation(*e.Timezone)
	if err != nil {
		return fallback
	}
	return loc
}

package punch

import (
	"context"
	"time"
)

// PunchRepository reads exclude REJECTED punches unless stated otherwise,
// and return punches in ledger order.
type PunchRepository interface {
	Create(ctx context.Context, newPunch Punch) (Punch, error)
	// GetByID includes rejected punches.
	GetByID(ctx context.Context, id string, companyID string) (Punch, error)
	GetByIdempotencyKey(ctx context.Context, employeeID string, key string) (Punch, error)
	// LockEmployee serializes punch writers of one employee for the rest of the transaction.
	LockEmployee(ctx context.Context, employeeID string) error
	LastClockInBefore(ctx context.Context, employeeID string, before time.Time) (Punch, error)
	// LatestClockIns returns, per employee of the company, the last clock-in with timestamp <= at.
	LatestClockIns(ctx context.Context, companyID string, at time.Time) ([]Punch, error)
	// ListByEmployee and ListByCompany return punches with from <= timestamp <= to.
	ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]Punch, error)
	ListByCompany(ctx context.Context, companyID string, from, to time.Time) ([]Punch, error)
	// CountRejected counts rejected punches with from <= timestamp < to.
	CountRejected(ctx context.Context, employeeID string, from, to time.Time) (int, error)
	// Adjacent returns the non-rejected punches of the same employee right before and after p.
	Adjacent(ctx context.Context, p Punch) (prev *Punch, next *Punch, err error)
	// ListForReview includes every review status unless statuses is non-empty.
	ListForReview(ctx context.Context, companyID string, since time.Time, statuses []ReviewStatus) ([]Punch, error)
	// UpdateReview applies upd only if the punch is still in expected status,
	// otherwise it returns ErrPunchAlreadyReviewed.
	UpdateReview(ctx context.Context, id string, expected ReviewStatus, upd ReviewUpdate) (Punch, error)
	ListActiveCompanyIDs(ctx context.Context, since time.Time) ([]string, error)
}

package punch

import "errors"

// Punch domain errors
var (
	// State conflicts
	ErrAlreadyClockedIn = errors.New("employee is already clocked in")
	ErrNotClockedIn     = errors.New("employee is not clocked in")
	ErrNoActiveBreak    = errors.New("employee has no active break")
	ErrAlreadyOnBreak   = errors.New("employee is already on break")

	// General errors
	ErrPunchNotFound        = errors.New("punch not found")
	ErrPunchAlreadyReviewed = errors.New("punch has already been reviewed")
	ErrRateLimited          = errors.New("too many punch attempts")
	ErrPunchBusy            = errors.New("another punch for this employee is in progress")
	ErrPunchForOther        = errors.New("punching for another employee requires KIOSK or MANUAL method")
)

// ErrDuplicateIdempotencyKey is returned by PunchRepository.Create when the employee
// already has a punch with the same idempotency key.
var ErrDuplicateIdempotencyKey = errors.New("duplicate idempotency key")

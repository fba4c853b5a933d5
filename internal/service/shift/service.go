package shift

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/company"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/punch"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/shift"
)

type ShiftServiceImpl struct {
	punch.PunchRepository
	policyService company.PolicyService
	lookahead     time.Duration
	now           func() time.Time
}

// Reconstruct implements shift.ShiftService.
func (s *ShiftServiceImpl) Reconstruct(ctx context.Context, employeeID string, companyID string, window shift.Window) (iter.Seq[shift.Shift], error) {
	policy, err := s.policyService.Get(ctx, companyID)
	if err != nil {
		return nil, err
	}

	// Start from the clock-in that may still be open at window.Start.
	from := window.Start
	last, err := s.openingClockIn(ctx, employeeID, companyID, window.Start)
	hasOpener := err == nil
	switch {
	case hasOpener:
		from = last.Timestamp
	case !errors.Is(err, punch.ErrPunchNotFound):
		return nil, err
	}

	punches, err := s.PunchRepository.ListByEmployee(ctx, employeeID, from, window.End.Add(s.lookahead))
	if err != nil {
		return nil, fmt.Errorf("failed to list punches: %w", err)
	}
	if hasOpener {
		punches = dropBefore(punches, last)
	}
	punches = ownedBy(punches, companyID)

	now := s.now()
	shifts := shift.Fold(punches, now, policy.OvertimeThresholdMinutes)

	return func(yield func(shift.Shift) bool) {
		for sh := range shifts {
			if !sh.Overlaps(window, now) {
				continue
			}
			if !yield(sh) {
				return
			}
		}
	}, nil
}

// Current implements shift.ShiftService.
func (s *ShiftServiceImpl) Current(ctx context.Context, employeeID string, companyID string, now time.Time) (*shift.Shift, error) {
	last, err := s.openingClockIn(ctx, employeeID, companyID, now)
	if err != nil {
		if errors.Is(err, punch.ErrPunchNotFound) {
			return nil, nil
		}
		return nil, err
	}

	policy, err := s.policyService.Get(ctx, companyID)
	if err != nil {
		return nil, err
	}

	punches, err := s.PunchRepository.ListByEmployee(ctx, employeeID, last.Timestamp, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list punches: %w", err)
	}
	punches = ownedBy(dropBefore(punches, last), companyID)

	return shift.Last(shift.Fold(punches, now, policy.OvertimeThresholdMinutes)), nil
}

// openingClockIn returns the clock-in that opened the shift holding the latest clock-in at
// or before at. Clock-ins that follow it without a clock-out in between are duplicates to Fold,
// so it walks back over them until it reaches a clock-out of the company or the start of the ledger.
func (s *ShiftServiceImpl) openingClockIn(ctx context.Context, employeeID string, companyID string, at time.Time) (punch.Punch, error) {
	opener, err := s.PunchRepository.LastClockInBefore(ctx, employeeID, at)
	if err != nil {
		if errors.Is(err, punch.ErrPunchNotFound) {
			return punch.Punch{}, err
		}
		return punch.Punch{}, fmt.Errorf("failed to get last clock-in: %w", err)
	}

	cursor := opener
	for {
		prev, _, err := s.PunchRepository.Adjacent(ctx, cursor)
		if err != nil {
			return punch.Punch{}, fmt.Errorf("failed to get previous punch: %w", err)
		}
		if prev == nil {
			return opener, nil
		}
		if prev.CompanyID == companyID {
			if prev.Type == punch.TypeClockOut {
				return opener, nil
			}
			if prev.Type == punch.TypeClockIn {
				opener = *prev
			}
		}
		cursor = *prev
	}
}

// dropBefore skips the leading punches that sort before anchor in ledger order.
func dropBefore(punches []punch.Punch, anchor punch.Punch) []punch.Punch {
	i := 0
	for i < len(punches) && punches[i].Before(anchor) {
		i++
	}
	return punches[i:]
}

func ownedBy(punches []punch.Punch, companyID string) []punch.Punch {
	owned := punches[:0:0]
	for _, p := range punches {
		if p.CompanyID == companyID {
			owned = append(owned, p)
		}
	}
	return owned
}

func NewShiftService(punchRepo punch.PunchRepository, policyService company.PolicyService, lookahead time.Duration, now func() time.Time) shift.ShiftService {
	if now == nil {
		now = time.Now
	}
	return &ShiftServiceImpl{
		PunchRepository: punchRepo,
		policyService:   policyService,
		lookahead:       lookahead,
		now:             now,
	}
}

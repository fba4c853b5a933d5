package punch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/company"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/geofence"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/punch"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/shift"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/status"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/lock"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/ratelimit"
)

type PunchServiceImpl struct {
	db database.Transactor
	punch.PunchRepository
	employee.EmployeeRepository
	policyService company.PolicyService
	resolver      geofence.Resolver
	shiftService  shift.ShiftService
	statusService status.StatusService
	locker        lock.Locker
	limiter       ratelimit.Limiter
	now           func() time.Time
}

// Record implements punch.PunchService.
func (s *PunchServiceImpl) Record(ctx context.Context, req punch.RecordRequest) (punch.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return punch.RecordResponse{}, err
	}

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, req.CompanyID+":"+req.EmployeeID)
		if err != nil {
			slog.Warn("punch rate limiter unavailable", "employee_id", req.EmployeeID, "error", err)
		} else if !allowed {
			return punch.RecordResponse{}, punch.ErrRateLimited
		}
	}

	emp, err := s.EmployeeRepository.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return punch.RecordResponse{}, err
	}
	if emp.CompanyID != req.CompanyID {
		return punch.RecordResponse{}, employee.ErrEmployeeNotFound
	}
	if !emp.IsActive() {
		return punch.RecordResponse{}, employee.ErrEmployeeInactive
	}

	policy, err := s.policyService.Get(ctx, req.CompanyID)
	if err != nil {
		return punch.RecordResponse{}, err
	}
	loc := emp.Location(policy.Location())

	if req.IdempotencyKey != nil {
		original, found, err := s.findByKey(ctx, emp.ID, *req.IdempotencyKey)
		if err != nil {
			return punch.RecordResponse{}, err
		}
		if found {
			return replay(original, loc), nil
		}
	}

	decision, err := s.resolver.Evaluate(ctx, req.Location, emp.ID, req.CompanyID, policy)
	if err != nil {
		return punch.RecordResponse{}, err
	}

	release, err := s.locker.Acquire(ctx, "punch:"+emp.ID)
	if err != nil {
		if errors.Is(err, lock.ErrNotObtained) {
			return punch.RecordResponse{}, punch.ErrPunchBusy
		}
		return punch.RecordResponse{}, fmt.Errorf("failed to acquire punch lock: %w", err)
	}
	defer release()

	var (
		created  []punch.Punch
		replayed bool
	)
	err = s.db.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.PunchRepository.LockEmployee(ctx, emp.ID); err != nil {
			return fmt.Errorf("failed to lock employee ledger: %w", err)
		}

		if req.IdempotencyKey != nil {
			original, found, err := s.findByKey(ctx, emp.ID, *req.IdempotencyKey)
			if err != nil {
				return err
			}
			if found {
				created = []punch.Punch{original}
				replayed = true
				return nil
			}
		}

		now := s.now().UTC()
		current, err := s.shiftService.Current(ctx, emp.ID, req.CompanyID, now)
		if err != nil {
			return err
		}
		state := status.FromShift(current)
		if err := checkTransition(req.Type, state); err != nil {
			return err
		}

		base := newPunch(req, emp.ID, now, decision)

		if req.Type == punch.TypeClockOut && state == status.StatusOnBreak {
			implicit := base
			implicit.Type = punch.TypeBreakEnd
			flagFor(&implicit, longBreak(current, now, policy))
			p, err := s.PunchRepository.Create(ctx, implicit)
			if err != nil {
				return fmt.Errorf("failed to record implicit break end: %w", err)
			}
			created = append(created, p)
		}

		main := base
		main.IdempotencyKey = req.IdempotencyKey
		switch req.Type {
		case punch.TypeClockOut:
			flagFor(&main, longShift(current, now, policy))
		case punch.TypeBreakEnd:
			flagFor(&main, longBreak(current, now, policy))
		}
		p, err := s.PunchRepository.Create(ctx, main)
		if err != nil {
			return fmt.Errorf("failed to record punch: %w", err)
		}
		created = append(created, p)
		return nil
	})
	if err != nil {
		return punch.RecordResponse{}, err
	}

	if replayed {
		return replay(created[0], loc), nil
	}

	if err := s.statusService.Invalidate(ctx, req.CompanyID); err != nil {
		slog.Warn("failed to invalidate status cache", "company_id", req.CompanyID, "error", err)
	}

	recorded := created[len(created)-1]
	slog.Info("punch recorded",
		"punch_id", recorded.ID,
		"employee_id", recorded.EmployeeID,
		"company_id", recorded.CompanyID,
		"type", recorded.Type,
		"review_status", recorded.ReviewStatus,
		"flag_reason", recorded.FlagReason,
	)

	return punch.RecordResponse{
		Punches: created,
		Message: message(recorded, loc),
	}, nil
}

func (s *PunchServiceImpl) findByKey(ctx context.Context, employeeID, key string) (punch.Punch, bool, error) {
	p, err := s.PunchRepository.GetByIdempotencyKey(ctx, employeeID, key)
	if err != nil {
		if errors.Is(err, punch.ErrPunchNotFound) {
			return punch.Punch{}, false, nil
		}
		return punch.Punch{}, false, fmt.Errorf("failed to check idempotency key: %w", err)
	}
	return p, true, nil
}

func replay(original punch.Punch, loc *time.Location) punch.RecordResponse {
	return punch.RecordResponse{
		Punches:  []punch.Punch{original},
		Message:  message(original, loc),
		Replayed: true,
	}
}

// checkTransition enforces the punch state machine against the derived status.
func checkTransition(typ punch.Type, state status.Status) error {
	switch typ {
	case punch.TypeClockIn:
		if state != status.StatusClockedOut {
			return punch.ErrAlreadyClockedIn
		}
	case punch.TypeClockOut:
		if state == status.StatusClockedOut {
			return punch.ErrNotClockedIn
		}
	case punch.TypeBreakStart:
		switch state {
		case status.StatusClockedOut:
			return punch.ErrNotClockedIn
		case status.StatusOnBreak:
			return punch.ErrAlreadyOnBreak
		}
	case punch.TypeBreakEnd:
		if state != status.StatusOnBreak {
			return punch.ErrNoActiveBreak
		}
	}
	return nil
}

func newPunch(req punch.RecordRequest, employeeID string, now time.Time, decision geofence.Decision) punch.Punch {
	p := punch.Punch{
		EmployeeID:   employeeID,
		CompanyID:    req.CompanyID,
		Type:         req.Type,
		Timestamp:    now,
		Method:       req.Method,
		DeviceInfo:   req.DeviceInfo,
		Geofence:     decision.Evaluation,
		ReviewStatus: punch.ReviewStatusNone,
	}
	if known, ok := req.Location.(punch.KnownLocation); ok {
		lat, lng := known.Latitude, known.Longitude
		p.Latitude = &lat
		p.Longitude = &lng
		p.AccuracyMeters = known.AccuracyMeters
	}
	flagFor(&p, decision.Flag)
	return p
}

// flagFor marks p for review. The first reason set on a punch wins.
func flagFor(p *punch.Punch, reason punch.FlagReason) {
	if reason == punch.FlagNone || p.FlagReason != punch.FlagNone {
		return
	}
	p.FlagReason = reason
	p.ReviewStatus = punch.ReviewStatusFlagged
}

func longShift(current *shift.Shift, now time.Time, policy company.AttendancePolicy) punch.FlagReason {
	if current == nil {
		return punch.FlagNone
	}
	if now.Sub(current.ClockIn.Timestamp) > time.Duration(policy.MaxShiftMinutes)*time.Minute {
		return punch.FlagLongShift
	}
	return punch.FlagNone
}

func longBreak(current *shift.Shift, now time.Time, policy company.AttendancePolicy) punch.FlagReason {
	if current == nil {
		return punch.FlagNone
	}
	b := current.OpenBreak()
	if b == nil {
		return punch.FlagNone
	}
	if now.Sub(b.StartAt) > time.Duration(policy.MaxBreakMinutes)*time.Minute {
		return punch.FlagLongBreak
	}
	return punch.FlagNone
}

func message(p punch.Punch, loc *time.Location) string {
	var action string
	switch p.Type {
	case punch.TypeClockIn:
		action = "Shift started"
	case punch.TypeClockOut:
		action = "Shift ended"
	case punch.TypeBreakStart:
		action = "Break started"
	default:
		action = "Break ended"
	}

	msg := fmt.Sprintf("%s at %s", action, p.Timestamp.In(loc).Format("3:04 PM"))
	if p.ReviewStatus == punch.ReviewStatusFlagged {
		msg += " (flagged for review)"
	}
	return msg
}

func NewPunchService(
	db database.Transactor,
	punchRepo punch.PunchRepository,
	employeeRepo employee.EmployeeRepository,
	policyService company.PolicyService,
	resolver geofence.Resolver,
	shiftService shift.ShiftService,
	statusService status.StatusService,
	locker lock.Locker,
	limiter ratelimit.Limiter,
	now func() time.Time,
) punch.PunchService {
	if now == nil {
		now = time.Now
	}
	return &PunchServiceImpl{
		db:                 db,
		PunchRepository:    punchRepo,
		EmployeeRepository: employeeRepo,
		policyService:      policyService,
		resolver:           resolver,
		shiftService:       shiftService,
		statusService:      statusService,
		locker:             locker,
		limiter:            limiter,
		now:                now,
	}
}

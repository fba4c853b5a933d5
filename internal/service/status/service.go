package status

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/punch"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/shift"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/status"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/cache"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

type StatusServiceImpl struct {
	punch.PunchRepository
	employee.EmployeeRepository
	shiftService  shift.ShiftService
	cache         cache.Cache
	group         singleflight.Group
	ttl           time.Duration
	buildTimeout  time.Duration
	now           func() time.Time
}

const (
	buildConcurrency    = 8
	defaultBuildTimeout = 30 * time.Second
)

func cacheKey(companyID string) string {
	return "status:" + companyID
}

// WhoIsWorking implements status.StatusService.
func (s *StatusServiceImpl) WhoIsWorking(ctx context.Context, companyID string) (status.Board, error) {
	key := cacheKey(companyID)

	var board status.Board
	if hit, err := s.cache.Get(ctx, key, &board); err != nil {
		slog.Warn("status cache read failed", "company_id", companyID, "error", err)
	} else if hit {
		return board, nil
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		// A flight that started after the previous one stored its board can reuse it.
		var cached status.Board
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
			return cached, nil
		}
		// The flight is shared, so one caller going away must not fail the others.
		buildCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.buildTimeout)
		defer cancel()
		return s.build(buildCtx, companyID)
	})
	if err != nil {
		return status.Board{}, err
	}
	return v.(status.Board), nil
}

// build resolves the current shift of every active employee who ever clocked in and caches
// the board. Shifts go through the same reconstruction as EmployeeStatus, so an open shift
// is reported no matter how long ago it started.
func (s *StatusServiceImpl) build(ctx context.Context, companyID string) (status.Board, error) {
	now := s.now()

	latest, err := s.PunchRepository.LatestClockIns(ctx, companyID, now)
	if err != nil {
		return status.Board{}, fmt.Errorf("failed to list latest clock-ins: %w", err)
	}
	clockedIn := make(map[string]bool, len(latest))
	for _, p := range latest {
		clockedIn[p.EmployeeID] = true
	}

	employees, err := s.EmployeeRepository.GetActiveByCompanyID(ctx, companyID)
	if err != nil {
		return status.Board{}, fmt.Errorf("failed to list employees: %w", err)
	}

	shifts := make([]*shift.Shift, len(employees))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(buildConcurrency)
	for i, emp := range employees {
		if !clockedIn[emp.ID] {
			continue
		}
		g.Go(func() error {
			current, err := s.shiftService.Current(gctx, emp.ID, companyID, now)
			if err != nil {
				return fmt.Errorf("failed to get current shift of %s: %w", emp.ID, err)
			}
			shifts[i] = current
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return status.Board{}, err
	}

	statuses := make([]status.EmployeeStatus, 0, len(employees))
	for i, emp := range employees {
		statuses = append(statuses, status.NewEmployeeStatus(emp.ID, emp.FullName, emp.Position, shifts[i]))
	}

	board := status.NewBoard(companyID, statuses, now)
	if s.ttl > 0 {
		if err := s.cache.Set(ctx, cacheKey(companyID), board, s.ttl); err != nil {
			slog.Warn("status cache write failed", "company_id", companyID, "error", err)
		}
	}
	return board, nil
}

// EmployeeStatus implements status.StatusService.
func (s *StatusServiceImpl) EmployeeStatus(ctx context.Context, employeeID string, companyID string) (status.EmployeeStatus, error) {
	emp, err := s.EmployeeRepository.GetByID(ctx, employeeID)
	if err != nil {
		return status.EmployeeStatus{}, err
	}
	if emp.CompanyID != companyID {
		return status.EmployeeStatus{}, employee.ErrEmployeeNotFound
	}

	current, err := s.shiftService.Current(ctx, employeeID, companyID, s.now())
	if err != nil {
		return status.EmployeeStatus{}, err
	}
	return status.NewEmployeeStatus(emp.ID, emp.FullName, emp.Position, current), nil
}

// Invalidate implements status.StatusService.
func (s *StatusServiceImpl) Invalidate(ctx context.Context, companyID string) error {
	key := cacheKey(companyID)
	s.group.Forget(key)
	if err := s.cache.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to invalidate status cache: %w", err)
	}
	return nil
}

// Prewarm implements status.StatusService.
func (s *StatusServiceImpl) Prewarm(ctx context.Context, companyID string) error {
	_, err := s.build(ctx, companyID)
	return err
}

// NewStatusService caches boards for min(cacheTTL, freshnessBound).
func NewStatusService(
	punchRepo punch.PunchRepository,
	employeeRepo employee.EmployeeRepository,
	shiftService shift.ShiftService,
	boardCache cache.Cache,
	cacheTTL time.Duration,
	freshnessBound time.Duration,
	now func() time.Time,
) status.StatusService {
	if now == nil {
		now = time.Now
	}
	return &StatusServiceImpl{
		PunchRepository:    punchRepo,
		EmployeeRepository: employeeRepo,
		shiftService:       shiftService,
		cache:              boardCache,
		ttl:                min(cacheTTL, freshnessBound),
		buildTimeout:       defaultBuildTimeout,
		now:                now,
	}
}

// Package memory is an in-process store implementing every repository of the engine.
// It backs STORE_TYPE=memory and the service tests.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/company"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/geofence"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/punch"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/review"
)

type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	punches     []punch.Punch
	nextSeq     int64
	reviews     []review.Review
	geofences   map[string]geofence.Geofence
	assignments map[string]map[string]time.Time
	employees   map[string]employee.Employee
	policies    map[string]company.AttendancePolicy

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		geofences:   make(map[string]geofence.Geofence),
		assignments: make(map[string]map[string]time.Time),
		employees:   make(map[string]employee.Employee),
		policies:    make(map[string]company.AttendancePolicy),
		now:         time.Now,
	}
}

type txKey struct{}

// WithinTransaction runs fn with ledger writes serialized. If fn fails, punches and
// review rows written by it are rolled back. Nested calls join the outer transaction.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	punches := slices.Clone(s.punches)
	reviews := slices.Clone(s.reviews)
	nextSeq := s.nextSeq
	s.mu.RUnlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.mu.Lock()
		s.punches = punches
		s.reviews = reviews
		s.nextSeq = nextSeq
		s.mu.Unlock()
		return err
	}
	return nil
}

// PutEmployee stores e. The employee directory is owned elsewhere; this seeds it.
func (s *Store) PutEmployee(e employee.Employee) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.EmploymentStatus == "" {
		e.EmploymentStatus = employee.EmploymentStatusActive
	}
	s.employees[e.ID] = e
}

func (s *Store) Punches() punch.PunchRepository { return &punchRepository{s: s} }
func (s *Store) Geofences() geofence.GeofenceRepository { return &geofenceRepository{s: s} }
func (s *Store) Employees() employee.EmployeeRepository { return &employeeRepository{s: s} }
func (s *Store) Policies() company.PolicyRepository { return &policyRepository{s: s} }
func (s *Store) Reviews() review.ReviewRepository { return &reviewRepository{s: s} }

// SetClock replaces the clock used for CreatedAt and UpdatedAt values.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

package status

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/company"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/punch"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/status"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/cache"
	"github.com/cmlabs-hris/attendance-engine/internal/repository/memory"
	companysvc "github.com/cmlabs-hris/attendance-engine/internal/service/company"
	shiftsvc "github.com/cmlabs-hris/attendance-engine/internal/service/shift"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const companyID = "company-1"

var now = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

// countingPunches counts company-wide ledger scans and honours cancellation like a database would.
type countingPunches struct {
	punch.PunchRepository
	calls atomic.Int32
	delay time.Duration
}

func (c *countingPunches) LatestClockIns(ctx context.Context, companyID string, at time.Time) ([]punch.Punch, error) {
	c.calls.Add(1)
	time.Sleep(c.delay)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.PunchRepository.LatestClockIns(ctx, companyID, at)
}

type fixture struct {
	store   *memory.Store
	punches *countingPunches
	svc     status.StatusService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	for _, e := range []employee.Employee{
		{ID: "emp-ana", CompanyID: companyID, FullName: "Ana", Position: "Barista"},
		{ID: "emp-ben", CompanyID: companyID, FullName: "Ben", Position: "Cashier"},
		{ID: "emp-cleo", CompanyID: companyID, FullName: "Cleo", Position: "Cook"},
		{ID: "emp-dan", CompanyID: companyID, FullName: "Dan", EmploymentStatus: employee.EmploymentStatusResigned},
	} {
		store.PutEmployee(e)
	}

	policies := companysvc.NewPolicyService(store.Policies(), company.AttendancePolicy{
		Timezone:                 "UTC",
		OvertimeThresholdMinutes: 480,
	})
	clock := func() time.Time { return now }
	punches := &countingPunches{PunchRepository: store.Punches()}
	shifts := shiftsvc.NewShiftService(store.Punches(), policies, 24*time.Hour, clock)
	svc := NewStatusService(punches, store.Employees(), shifts, cache.NewMemoryCache(),
		10*time.Second, 15*time.Second, clock)

	return &fixture{store: store, punches: punches, svc: svc}
}

func (f *fixture) record(t *testing.T, employeeID string, typ punch.Type, ts time.Time) {
	t.Helper()
	_, err := f.store.Punches().Create(context.Background(), punch.Punch{
		EmployeeID:   employeeID,
		CompanyID:    companyID,
		Type:         typ,
		Timestamp:    ts,
		Method:       punch.MethodApp,
		ReviewStatus: punch.ReviewStatusNone,
	})
	require.NoError(t, err)
}

func names(statuses []status.EmployeeStatus) []string {
	result := make([]string, 0, len(statuses))
	for _, s := range statuses {
		result = append(result, s.EmployeeName)
	}
	return result
}

func TestWhoIsWorking_ClassifiesActiveEmployees(t *testing.T) {
	f := newFixture(t)
	// overnight shift from yesterday still open
	f.record(t, "emp-ana", punch.TypeClockIn, now.Add(-14*time.Hour))
	f.record(t, "emp-ben", punch.TypeClockIn, now.Add(-2*time.Hour))
	f.record(t, "emp-ben", punch.TypeBreakStart, now.Add(-10*time.Minute))
	f.record(t, "emp-cleo", punch.TypeClockIn, now.Add(-5*time.Hour))
	f.record(t, "emp-cleo", punch.TypeClockOut, now.Add(-1*time.Hour))

	board, err := f.svc.WhoIsWorking(context.Background(), companyID)
	require.NoError(t, err)

	assert.Equal(t, []string{"Ana"}, names(board.ClockedIn))
	assert.Equal(t, []string{"Ben"}, names(board.OnBreak))
	assert.Equal(t, []string{"Cleo"}, names(board.ClockedOut))
	require.NotNil(t, board.ClockedIn[0].OpenShift)
	assert.Equal(t, 14*60, board.ClockedIn[0].OpenShift.WorkMinutes)
	require.NotNil(t, board.OnBreak[0].Since)
	assert.True(t, board.OnBreak[0].Since.Equal(now.Add(-10*time.Minute)))
}

func TestWhoIsWorking_AgreesWithEmployeeStatusOnLongShifts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	// forgotten clock-out two days ago
	f.record(t, "emp-ana", punch.TypeClockIn, now.Add(-50*time.Hour))
	// shift started before yesterday's midnight, break taken this morning
	f.record(t, "emp-ben", punch.TypeClockIn, now.Add(-40*time.Hour))
	f.record(t, "emp-ben", punch.TypeBreakStart, now.Add(-20*time.Minute))

	board, err := f.svc.WhoIsWorking(ctx, companyID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ana"}, names(board.ClockedIn))
	assert.Equal(t, []string{"Ben"}, names(board.OnBreak))
	assert.Equal(t, []string{"Cleo"}, names(board.ClockedOut))

	for _, es := range append(board.ClockedIn, board.OnBreak...) {
		single, err := f.svc.EmployeeStatus(ctx, es.EmployeeID, companyID)
		require.NoError(t, err)
		assert.Equal(t, single.Status, es.Status)
		require.NotNil(t, es.OpenShift)
		require.NotNil(t, single.OpenShift)
		assert.Equal(t, single.OpenShift.WorkMinutes, es.OpenShift.WorkMinutes)
	}
	assert.Equal(t, 50*60, board.ClockedIn[0].OpenShift.WorkMinutes)
}

func TestWhoIsWorking_CancelledCallerDoesNotFailTheBuild(t *testing.T) {
	f := newFixture(t)
	f.record(t, "emp-ana", punch.TypeClockIn, now.Add(-time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	board, err := f.svc.WhoIsWorking(ctx, companyID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ana"}, names(board.ClockedIn))
}

func TestWhoIsWorking_CachesUntilInvalidated(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.record(t, "emp-ana", punch.TypeClockIn, now.Add(-time.Hour))

	_, err := f.svc.WhoIsWorking(ctx, companyID)
	require.NoError(t, err)

	f.record(t, "emp-ben", punch.TypeClockIn, now.Add(-time.Minute))
	board, err := f.svc.WhoIsWorking(ctx, companyID)
	require.NoError(t, err)
	assert.Len(t, board.ClockedIn, 1)
	assert.Equal(t, int32(1), f.punches.calls.Load())

	require.NoError(t, f.svc.Invalidate(ctx, companyID))
	board, err = f.svc.WhoIsWorking(ctx, companyID)
	require.NoError(t, err)
	assert.Len(t, board.ClockedIn, 2)
	assert.Equal(t, int32(2), f.punches.calls.Load())
}

func TestWhoIsWorking_ConcurrentMissesShareOneLoad(t *testing.T) {
	f := newFixture(t)
	f.punches.delay = 50 * time.Millisecond
	f.record(t, "emp-ana", punch.TypeClockIn, now.Add(-time.Hour))

	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			board, err := f.svc.WhoIsWorking(context.Background(), companyID)
			assert.NoError(t, err)
			assert.Len(t, board.ClockedIn, 1)
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), f.punches.calls.Load())
}

func TestPrewarm_FillsCache(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.svc.Prewarm(ctx, companyID))
	_, err := f.svc.WhoIsWorking(ctx, companyID)
	require.NoError(t, err)

	assert.Equal(t, int32(1), f.punches.calls.Load())
}

func TestEmployeeStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	es, err := f.svc.EmployeeStatus(ctx, "emp-ana", companyID)
	require.NoError(t, err)
	assert.Equal(t, status.StatusClockedOut, es.Status)
	assert.Nil(t, es.Since)

	f.record(t, "emp-ana", punch.TypeClockIn, now.Add(-3*time.Hour))
	f.record(t, "emp-ana", punch.TypeBreakStart, now.Add(-time.Hour))
	f.record(t, "emp-ana", punch.TypeBreakEnd, now.Add(-30*time.Minute))

	es, err = f.svc.EmployeeStatus(ctx, "emp-ana", companyID)
	require.NoError(t, err)
	assert.Equal(t, status.StatusClockedIn, es.Status)
	require.NotNil(t, es.Since)
	assert.True(t, es.Since.Equal(now.Add(-30*time.Minute)))
	require.NotNil(t, es.OpenShift)
	assert.Equal(t, 150, es.OpenShift.WorkMinutes)

	_, err = f.svc.EmployeeStatus(ctx, "emp-ana", "company-2")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

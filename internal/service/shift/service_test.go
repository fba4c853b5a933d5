package shift

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/company"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/punch"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/shift"
	"github.com/cmlabs-hris/attendance-engine/internal/repository/memory"
	companysvc "github.com/cmlabs-hris/attendance-engine/internal/service/company"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	companyID  = "company-1"
	employeeID = "emp-1"
)

var day = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func newService(store *memory.Store, now time.Time) shift.ShiftService {
	policies := companysvc.NewPolicyService(store.Policies(), company.AttendancePolicy{
		Timezone:                 "UTC",
		OvertimeThresholdMinutes: 480,
		MaxShiftMinutes:          960,
		MaxBreakMinutes:          120,
	})
	return NewShiftService(store.Punches(), policies, 24*time.Hour, func() time.Time { return now })
}

func record(t *testing.T, store *memory.Store, typ punch.Type, ts time.Time) punch.Punch {
	t.Helper()
	p, err := store.Punches().Create(context.Background(), punch.Punch{
		EmployeeID:   employeeID,
		CompanyID:    companyID,
		Type:         typ,
		Timestamp:    ts,
		Method:       punch.MethodApp,
		ReviewStatus: punch.ReviewStatusNone,
	})
	require.NoError(t, err)
	return p
}

func TestReconstruct_OvernightShiftOverlapsBothDays(t *testing.T) {
	store := memory.NewStore()
	record(t, store, punch.TypeClockIn, day.Add(22*time.Hour))
	record(t, store, punch.TypeClockOut, day.Add(30*time.Hour))

	svc := newService(store, day.Add(48*time.Hour))
	ctx := context.Background()

	first, err := svc.Reconstruct(ctx, employeeID, companyID, shift.Window{Start: day, End: day.Add(24 * time.Hour)})
	require.NoError(t, err)
	shifts := slices.Collect(first)
	require.Len(t, shifts, 1)
	assert.True(t, shifts[0].IsComplete)
	assert.Equal(t, 480, shifts[0].WorkMinutes)

	second, err := svc.Reconstruct(ctx, employeeID, companyID, shift.Window{Start: day.Add(24 * time.Hour), End: day.Add(48 * time.Hour)})
	require.NoError(t, err)
	shifts = slices.Collect(second)
	require.Len(t, shifts, 1)
	assert.Equal(t, day.Add(22*time.Hour), shifts[0].ClockIn.Timestamp)
}

func TestReconstruct_YieldsOnlyOverlappingShiftsAndRestarts(t *testing.T) {
	store := memory.NewStore()
	record(t, store, punch.TypeClockIn, day.Add(-20*time.Hour))
	record(t, store, punch.TypeClockOut, day.Add(-12*time.Hour))
	record(t, store, punch.TypeClockIn, day.Add(8*time.Hour))
	record(t, store, punch.TypeBreakStart, day.Add(12*time.Hour))
	record(t, store, punch.TypeBreakEnd, day.Add(12*time.Hour+30*time.Minute))
	record(t, store, punch.TypeClockOut, day.Add(17*time.Hour))

	svc := newService(store, day.Add(20*time.Hour))
	seq, err := svc.Reconstruct(context.Background(), employeeID, companyID, shift.Window{Start: day, End: day.Add(24 * time.Hour)})
	require.NoError(t, err)

	shifts := slices.Collect(seq)
	require.Len(t, shifts, 1)
	assert.Equal(t, 510, shifts[0].WorkMinutes)
	assert.Equal(t, 30, shifts[0].BreakMinutes)
	assert.Equal(t, 30, shifts[0].OvertimeMinutes)

	again := slices.Collect(seq)
	assert.Equal(t, shifts, again)
}

func TestReconstruct_NoPunches(t *testing.T) {
	svc := newService(memory.NewStore(), day)

	seq, err := svc.Reconstruct(context.Background(), employeeID, companyID, shift.Window{Start: day, End: day.Add(24 * time.Hour)})
	require.NoError(t, err)
	assert.Empty(t, slices.Collect(seq))
}

func TestCurrent(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	now := day.Add(10 * time.Hour)
	svc := newService(store, now)

	current, err := svc.Current(ctx, employeeID, companyID, now)
	require.NoError(t, err)
	assert.Nil(t, current)

	record(t, store, punch.TypeClockIn, day.Add(8*time.Hour))
	record(t, store, punch.TypeBreakStart, day.Add(9*time.Hour))

	current, err = svc.Current(ctx, employeeID, companyID, now)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.False(t, current.IsComplete)
	assert.NotNil(t, current.OpenBreak())
	assert.Equal(t, 60, current.WorkMinutes)
	assert.Equal(t, 60, current.BreakMinutes)
}

func TestCurrent_ClockOutAndClockInAtSameInstant(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	at := day.Add(16 * time.Hour)

	record(t, store, punch.TypeClockIn, day.Add(8*time.Hour))
	record(t, store, punch.TypeClockOut, at)
	record(t, store, punch.TypeClockIn, at)

	svc := newService(store, at)
	current, err := svc.Current(ctx, employeeID, companyID, at)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.False(t, current.IsComplete)
	assert.Equal(t, at, current.ClockIn.Timestamp)
	assert.False(t, current.HasAnomalies)
}

func TestCurrent_IgnoresOtherTenants(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	record(t, store, punch.TypeClockIn, day.Add(8*time.Hour))

	svc := newService(store, day.Add(9*time.Hour))
	current, err := svc.Current(ctx, employeeID, "company-2", day.Add(9*time.Hour))
	require.NoError(t, err)
	assert.Nil(t, current)
}

func TestCurrent_AgreesWithReconstructAcrossRejectedClockOut(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	opener := record(t, store, punch.TypeClockIn, day.Add(8*time.Hour))
	_, err := store.Punches().Create(ctx, punch.Punch{
		EmployeeID:   employeeID,
		CompanyID:    companyID,
		Type:         punch.TypeClockOut,
		Timestamp:    day.Add(12 * time.Hour),
		Method:       punch.MethodApp,
		ReviewStatus: punch.ReviewStatusRejected,
	})
	require.NoError(t, err)
	record(t, store, punch.TypeClockIn, day.Add(13*time.Hour))

	now := day.Add(14 * time.Hour)
	svc := newService(store, now)

	current, err := svc.Current(ctx, employeeID, companyID, now)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, opener.ID, current.ClockIn.ID)
	assert.True(t, current.HasAnomalies)
	assert.Equal(t, 360, current.WorkMinutes)

	seq, err := svc.Reconstruct(ctx, employeeID, companyID, shift.Window{Start: day.Add(13 * time.Hour), End: now})
	require.NoError(t, err)
	shifts := slices.Collect(seq)
	require.Len(t, shifts, 1)
	assert.Equal(t, current.ClockIn.ID, shifts[0].ClockIn.ID)
	assert.Equal(t, current.WorkMinutes, shifts[0].WorkMinutes)
}

func TestCurrent_StopsAtClockOut(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	record(t, store, punch.TypeClockIn, day.Add(-16*time.Hour))
	record(t, store, punch.TypeClockOut, day.Add(-8*time.Hour))
	latest := record(t, store, punch.TypeClockIn, day.Add(8*time.Hour))

	now := day.Add(9 * time.Hour)
	current, err := newService(store, now).Current(ctx, employeeID, companyID, now)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, latest.ID, current.ClockIn.ID)
	assert.False(t, current.HasAnomalies)
}

package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/geofence"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/punch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, 3, 10, 7, 0, 0, 0, time.UTC)

func createPunch(t *testing.T, repo punch.PunchRepository, employeeID string, typ punch.Type, ts time.Time) punch.Punch {
	t.Helper()
	p, err := repo.Create(context.Background(), punch.Punch{
		EmployeeID: employeeID,
		CompanyID:  "c1",
		Type:       typ,
		Timestamp:  ts,
		Method:     punch.MethodApp,
	})
	require.NoError(t, err)
	return p
}

func TestPunchRepository_CreateAssignsSeqAndOrders(t *testing.T) {
	store := NewStore()
	repo := store.Punches()
	ctx := context.Background()

	out := createPunch(t, repo, "e1", punch.TypeClockOut, base.Add(8*time.Hour))
	in := createPunch(t, repo, "e1", punch.TypeClockIn, base)
	createPunch(t, repo, "e2", punch.TypeClockIn, base)

	assert.Equal(t, int64(1), out.Seq)
	assert.Equal(t, int64(2), in.Seq)
	assert.Equal(t, punch.ReviewStatusNone, in.ReviewStatus)

	list, err := repo.ListByEmployee(ctx, "e1", base, base.Add(8*time.Hour))
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, in.ID, list[0].ID)
	assert.Equal(t, out.ID, list[1].ID)
}

func TestPunchRepository_DuplicateIdempotencyKey(t *testing.T) {
	repo := NewStore().Punches()
	ctx := context.Background()
	key := "retry-1"

	_, err := repo.Create(ctx, punch.Punch{EmployeeID: "e1", CompanyID: "c1", Type: punch.TypeClockIn, Timestamp: base, IdempotencyKey: &key})
	require.NoError(t, err)
	_, err = repo.Create(ctx, punch.Punch{EmployeeID: "e1", CompanyID: "c1", Type: punch.TypeClockIn, Timestamp: base, IdempotencyKey: &key})
	assert.ErrorIs(t, err, punch.ErrDuplicateIdempotencyKey)

	_, err = repo.Create(ctx, punch.Punch{EmployeeID: "e2", CompanyID: "c1", Type: punch.TypeClockIn, Timestamp: base, IdempotencyKey: &key})
	assert.NoError(t, err, "keys are scoped per employee")

	found, err := repo.GetByIdempotencyKey(ctx, "e1", key)
	require.NoError(t, err)
	assert.Equal(t, "e1", found.EmployeeID)
}

func TestPunchRepository_UpdateReviewIsConditional(t *testing.T) {
	repo := NewStore().Punches()
	ctx := context.Background()
	p := createPunch(t, repo, "e1", punch.TypeClockIn, base)
	edited := base.Add(5 * time.Minute)

	updated, err := repo.UpdateReview(ctx, p.ID, punch.ReviewStatusNone, punch.ReviewUpdate{
		Status:            punch.ReviewStatusEdited,
		Timestamp:         &edited,
		OriginalTimestamp: &p.Timestamp,
		ReviewedBy:        "mgr",
		ReviewedAt:        base.Add(time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, edited, updated.Timestamp)
	assert.Equal(t, base, *updated.OriginalTimestamp)

	again := base.Add(10 * time.Minute)
	updated, err = repo.UpdateReview(ctx, p.ID, punch.ReviewStatusEdited, punch.ReviewUpdate{
		Status:            punch.ReviewStatusEdited,
		Timestamp:         &again,
		OriginalTimestamp: &edited,
		ReviewedBy:        "mgr",
	})
	require.NoError(t, err)
	assert.Equal(t, base, *updated.OriginalTimestamp, "original timestamp is kept from the first edit")

	_, err = repo.UpdateReview(ctx, p.ID, punch.ReviewStatusNone, punch.ReviewUpdate{Status: punch.ReviewStatusApproved})
	assert.ErrorIs(t, err, punch.ErrPunchAlreadyReviewed)
}

func TestPunchRepository_AdjacentSkipsRejected(t *testing.T) {
	repo := NewStore().Punches()
	ctx := context.Background()

	in := createPunch(t, repo, "e1", punch.TypeClockIn, base)
	bs := createPunch(t, repo, "e1", punch.TypeBreakStart, base.Add(4*time.Hour))
	be := createPunch(t, repo, "e1", punch.TypeBreakEnd, base.Add(5*time.Hour))
	out := createPunch(t, repo, "e1", punch.TypeClockOut, base.Add(8*time.Hour))
	_, err := repo.UpdateReview(ctx, be.ID, punch.ReviewStatusNone, punch.ReviewUpdate{Status: punch.ReviewStatusRejected})
	require.NoError(t, err)

	prev, next, err := repo.Adjacent(ctx, bs)
	require.NoError(t, err)
	require.NotNil(t, prev)
	require.NotNil(t, next)
	assert.Equal(t, in.ID, prev.ID)
	assert.Equal(t, out.ID, next.ID)

	prev, next, err = repo.Adjacent(ctx, in)
	require.NoError(t, err)
	assert.Nil(t, prev)
	assert.Equal(t, bs.ID, next.ID)
}

func TestPunchRepository_LastClockInBefore(t *testing.T) {
	repo := NewStore().Punches()
	ctx := context.Background()

	first := createPunch(t, repo, "e1", punch.TypeClockIn, base)
	createPunch(t, repo, "e1", punch.TypeClockOut, base.Add(time.Hour))
	second := createPunch(t, repo, "e1", punch.TypeClockIn, base.Add(2*time.Hour))

	got, err := repo.LastClockInBefore(ctx, "e1", base.Add(90*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)

	got, err = repo.LastClockInBefore(ctx, "e1", base.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID, "the bound is inclusive")

	_, err = repo.LastClockInBefore(ctx, "e1", base.Add(-time.Minute))
	assert.ErrorIs(t, err, punch.ErrPunchNotFound)
}

func TestPunchRepository_LatestClockIns(t *testing.T) {
	repo := NewStore().Punches()
	ctx := context.Background()

	createPunch(t, repo, "e1", punch.TypeClockIn, base.Add(-72*time.Hour))
	e1 := createPunch(t, repo, "e1", punch.TypeClockIn, base)
	createPunch(t, repo, "e1", punch.TypeClockIn, base.Add(3*time.Hour))
	e2 := createPunch(t, repo, "e2", punch.TypeClockIn, base.Add(-50*time.Hour))
	createPunch(t, repo, "e2", punch.TypeBreakStart, base.Add(-49*time.Hour))
	createPunch(t, repo, "e3", punch.TypeClockOut, base)

	got, err := repo.LatestClockIns(ctx, "c1", base.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, e1.ID, got[0].ID)
	assert.Equal(t, e2.ID, got[1].ID)

	got, err = repo.LatestClockIns(ctx, "c2", base.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_WithinTransactionRollsBack(t *testing.T) {
	store := NewStore()
	repo := store.Punches()
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.WithinTransaction(ctx, func(ctx context.Context) error {
		createPunch(t, repo, "e1", punch.TypeClockIn, base)
		return store.WithinTransaction(ctx, func(ctx context.Context) error {
			createPunch(t, repo, "e1", punch.TypeClockOut, base.Add(time.Hour))
			return boom
		})
	})
	require.ErrorIs(t, err, boom)

	list, err := repo.ListByEmployee(ctx, "e1", base.Add(-time.Hour), base.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, list)

	p := createPunch(t, repo, "e1", punch.TypeClockIn, base)
	assert.Equal(t, int64(1), p.Seq)
}

func TestGeofenceRepository_AssignmentsAndReferences(t *testing.T) {
	store := NewStore()
	repo := store.Geofences()
	ctx := context.Background()

	g, err := repo.Create(ctx, geofence.Geofence{CompanyID: "c1", ShopID: "s1", Name: "Main", RadiusMeters: 100, IsActive: true})
	require.NoError(t, err)

	require.NoError(t, repo.Assign(ctx, geofence.Assignment{GeofenceID: g.ID, EmployeeID: "e1"}))
	assert.ErrorIs(t, repo.Assign(ctx, geofence.Assignment{GeofenceID: g.ID, EmployeeID: "e1"}), geofence.ErrAssignmentExists)

	assigned, err := repo.GetActiveAssignedToEmployee(ctx, "e1")
	require.NoError(t, err)
	require.Len(t, assigned, 1)

	referenced, err := repo.IsReferenced(ctx, g.ID)
	require.NoError(t, err)
	assert.False(t, referenced)

	_, err = store.Punches().Create(ctx, punch.Punch{
		EmployeeID: "e1", CompanyID: "c1", Type: punch.TypeClockIn, Timestamp: base,
		Geofence: &punch.GeofenceEvaluation{GeofenceID: g.ID, WithinRadius: true},
	})
	require.NoError(t, err)

	referenced, err = repo.IsReferenced(ctx, g.ID)
	require.NoError(t, err)
	assert.True(t, referenced)

	g.IsActive = false
	_, err = repo.Update(ctx, g)
	require.NoError(t, err)
	assigned, err = repo.GetActiveAssignedToEmployee(ctx, "e1")
	require.NoError(t, err)
	assert.Empty(t, assigned)

	_, err = repo.GetByID(ctx, g.ID, "other-company")
	assert.ErrorIs(t, err, geofence.ErrGeofenceNotFound)
}

package postgresql_test

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/punch"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/review"
	"github.com/cmlabs-hris/attendance-engine/internal/repository/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createPunch(t *testing.T, ctx context.Context, repo punch.PunchRepository, employeeID, companyID string, typ punch.Type, ts time.Time) punch.Punch {
	t.Helper()
	p, err := repo.Create(ctx, punch.Punch{
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

func TestPunchRepository_LedgerOrderAndRanges(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewPunchRepository(db)

	companyID := newID(t)
	employeeID := insertEmployee(t, db, companyID, nil, "Ana")
	base := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

	in := createPunch(t, ctx, repo, employeeID, companyID, punch.TypeClockIn, base)
	out := createPunch(t, ctx, repo, employeeID, companyID, punch.TypeClockOut, base.Add(8*time.Hour))
	// same instant as the clock-out, inserted later
	late := createPunch(t, ctx, repo, employeeID, companyID, punch.TypeClockIn, base.Add(8*time.Hour))

	assert.Less(t, in.Seq, out.Seq)
	assert.Less(t, out.Seq, late.Seq)

	got, err := repo.ListByEmployee(ctx, employeeID, base, base.Add(8*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{in.ID, out.ID, late.ID}, []string{got[0].ID, got[1].ID, got[2].ID})

	byCompany, err := repo.ListByCompany(ctx, companyID, base.Add(time.Hour), base.Add(9*time.Hour))
	require.NoError(t, err)
	assert.Len(t, byCompany, 2)

	last, err := repo.LastClockInBefore(ctx, employeeID, base.Add(8*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, late.ID, last.ID)

	_, err = repo.LastClockInBefore(ctx, employeeID, base.Add(-time.Minute))
	assert.ErrorIs(t, err, punch.ErrPunchNotFound)

	latest, err := repo.LatestClockIns(ctx, companyID, base.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, in.ID, latest[0].ID)

	latest, err = repo.LatestClockIns(ctx, companyID, base.Add(8*time.Hour))
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, late.ID, latest[0].ID)

	prev, next, err := repo.Adjacent(ctx, out)
	require.NoError(t, err)
	require.NotNil(t, prev)
	require.NotNil(t, next)
	assert.Equal(t, in.ID, prev.ID)
	assert.Equal(t, late.ID, next.ID)
}

func TestPunchRepository_IdempotencyKeyIsUniquePerEmployee(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewPunchRepository(db)

	companyID := newID(t)
	employeeID := insertEmployee(t, db, companyID, nil, "Ben")
	key := "device-1-0001"

	first, err := repo.Create(ctx, punch.Punch{
		EmployeeID: employeeID, CompanyID: companyID, Type: punch.TypeClockIn,
		Timestamp: time.Now().UTC(), Method: punch.MethodApp, ReviewStatus: punch.ReviewStatusNone,
		IdempotencyKey: &key,
	})
	require.NoError(t, err)

	_, err = repo.Create(ctx, punch.Punch{
		EmployeeID: employeeID, CompanyID: companyID, Type: punch.TypeClockIn,
		Timestamp: time.Now().UTC(), Method: punch.MethodApp, ReviewStatus: punch.ReviewStatusNone,
		IdempotencyKey: &key,
	})
	assert.ErrorIs(t, err, punch.ErrDuplicateIdempotencyKey)

	found, err := repo.GetByIdempotencyKey(ctx, employeeID, key)
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)
}

func TestPunchRepository_UpdateReviewAndAudit(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	punches := postgresql.NewPunchRepository(db)
	reviews := postgresql.NewReviewRepository(db)
	tx := postgresql.NewTransactor(db)

	companyID := newID(t)
	reviewerID := newID(t)
	employeeID := insertEmployee(t, db, companyID, nil, "Cleo")
	ts := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	p := createPunch(t, ctx, punches, employeeID, companyID, punch.TypeClockIn, ts)

	rejectedAt := ts.Add(time.Hour)
	reason := "clocked in from home"
	err := tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := punches.LockEmployee(ctx, employeeID); err != nil {
			return err
		}
		if _, err := punches.UpdateReview(ctx, p.ID, punch.ReviewStatusNone, punch.ReviewUpdate{
			Status:     punch.ReviewStatusRejected,
			Notes:      &reason,
			ReviewedBy: reviewerID,
			ReviewedAt: rejectedAt,
		}); err != nil {
			return err
		}
		_, err := reviews.Create(ctx, review.Review{
			PunchID: p.ID, CompanyID: companyID, ReviewerID: reviewerID,
			Action: review.ActionReject, FromStatus: punch.ReviewStatusNone, ToStatus: punch.ReviewStatusRejected,
			Reason: &reason,
		})
		return err
	})
	require.NoError(t, err)

	_, err = punches.UpdateReview(ctx, p.ID, punch.ReviewStatusNone, punch.ReviewUpdate{
		Status: punch.ReviewStatusApproved, ReviewedBy: reviewerID, ReviewedAt: rejectedAt,
	})
	assert.ErrorIs(t, err, punch.ErrPunchAlreadyReviewed)

	stored, err := punches.GetByID(ctx, p.ID, companyID)
	require.NoError(t, err)
	assert.Equal(t, punch.ReviewStatusRejected, stored.ReviewStatus)

	listed, err := punches.ListByEmployee(ctx, employeeID, ts.Add(-time.Hour), ts.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, listed)

	count, err := punches.CountRejected(ctx, employeeID, ts, ts.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	history, err := reviews.ListByPunch(ctx, p.ID, companyID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, review.ActionReject, history[0].Action)
}

func TestTransactor_RollsBackOnError(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	punches := postgresql.NewPunchRepository(db)
	tx := postgresql.NewTransactor(db)

	companyID := newID(t)
	employeeID := insertEmployee(t, db, companyID, nil, "Dan")
	ts := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

	err := tx.WithinTransaction(ctx, func(ctx context.Context) error {
		createPunch(t, ctx, punches, employeeID, companyID, punch.TypeClockIn, ts)
		return punch.ErrAlreadyClockedIn
	})
	assert.ErrorIs(t, err, punch.ErrAlreadyClockedIn)

	listed, err := punches.ListByEmployee(ctx, employeeID, ts, ts)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

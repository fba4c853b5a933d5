package review

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/punch"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/review"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/status"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
)

type ReviewServiceImpl struct {
	db database.Transactor
	punch.PunchRepository
	review.ReviewRepository
	employee.EmployeeRepository
	statusService status.StatusService
	now           func() time.Time
}

// change describes what a review action writes once the punch is locked.
type change func(ctx context.Context, p punch.Punch, at time.Time) (punch.ReviewUpdate, review.Review, error)

func (s *ReviewServiceImpl) transition(ctx context.Context, punchID, companyID, reviewerID string, action review.Action, build change) (punch.Punch, error) {
	var updated punch.Punch
	err := s.db.WithinTransaction(ctx, func(ctx context.Context) error {
		p, err := s.PunchRepository.GetByID(ctx, punchID, companyID)
		if err != nil {
			return err
		}
		if err := s.PunchRepository.LockEmployee(ctx, p.EmployeeID); err != nil {
			return fmt.Errorf("failed to lock employee ledger: %w", err)
		}
		// Re-read under the lock so the transition starts from the latest state.
		p, err = s.PunchRepository.GetByID(ctx, punchID, companyID)
		if err != nil {
			return err
		}

		switch {
		case p.ReviewStatus == punch.ReviewStatusApproved || p.ReviewStatus == punch.ReviewStatusRejected:
			return punch.ErrPunchAlreadyReviewed
		case !review.CanTransition(p.ReviewStatus, action):
			return review.ErrInvalidTransition
		}

		at := s.now().UTC()
		upd, audit, err := build(ctx, p, at)
		if err != nil {
			return err
		}
		upd.Status = action.Target()
		upd.ReviewedBy = reviewerID
		upd.ReviewedAt = at

		updated, err = s.PunchRepository.UpdateReview(ctx, p.ID, p.ReviewStatus, upd)
		if err != nil {
			return err
		}

		audit.PunchID = p.ID
		audit.CompanyID = companyID
		audit.ReviewerID = reviewerID
		audit.Action = action
		audit.FromStatus = p.ReviewStatus
		audit.ToStatus = updated.ReviewStatus
		if _, err := s.ReviewRepository.Create(ctx, audit); err != nil {
			return fmt.Errorf("failed to record punch review: %w", err)
		}
		return nil
	})
	if err != nil {
		return punch.Punch{}, err
	}

	if err := s.statusService.Invalidate(ctx, companyID); err != nil {
		slog.Warn("failed to invalidate status cache", "company_id", companyID, "error", err)
	}

	slog.Info("punch reviewed",
		"punch_id", updated.ID,
		"company_id", companyID,
		"reviewer_id", reviewerID,
		"action", action,
		"review_status", updated.ReviewStatus,
	)
	return updated, nil
}

// Flag implements review.ReviewService.
func (s *ReviewServiceImpl) Flag(ctx context.Context, punchID, companyID, reviewerID string, reason *string) (punch.Punch, error) {
	return s.transition(ctx, punchID, companyID, reviewerID, review.ActionFlag,
		func(_ context.Context, _ punch.Punch, _ time.Time) (punch.ReviewUpdate, review.Review, error) {
			manual := punch.FlagManual
			return punch.ReviewUpdate{FlagReason: &manual, Notes: reason}, review.Review{Reason: reason}, nil
		})
}

// Approve implements review.ReviewService.
func (s *ReviewServiceImpl) Approve(ctx context.Context, punchID, companyID, reviewerID string, notes *string) (punch.Punch, error) {
	return s.transition(ctx, punchID, companyID, reviewerID, review.ActionApprove,
		func(_ context.Context, _ punch.Punch, _ time.Time) (punch.ReviewUpdate, review.Review, error) {
			return punch.ReviewUpdate{Notes: notes}, review.Review{Notes: notes}, nil
		})
}

// Reject implements review.ReviewService.
func (s *ReviewServiceImpl) Reject(ctx context.Context, punchID, companyID, reviewerID string, reason string) (punch.Punch, error) {
	if validator.IsEmpty(reason) {
		return punch.Punch{}, validator.ValidationErrors{{
			Field:   "reason",
			Message: "reason is required when rejecting a punch",
		}}
	}

	return s.transition(ctx, punchID, companyID, reviewerID, review.ActionReject,
		func(_ context.Context, _ punch.Punch, _ time.Time) (punch.ReviewUpdate, review.Review, error) {
			return punch.ReviewUpdate{Notes: &reason}, review.Review{Reason: &reason}, nil
		})
}

// Edit implements review.ReviewService.
func (s *ReviewServiceImpl) Edit(ctx context.Context, punchID, companyID, reviewerID string, newTimestamp time.Time, notes *string) (punch.Punch, error) {
	if newTimestamp.IsZero() {
		return punch.Punch{}, validator.ValidationErrors{{
			Field:   "new_timestamp",
			Message: "new_timestamp is required when editing a punch",
		}}
	}
	newTimestamp = newTimestamp.UTC()
	if newTimestamp.After(s.now()) {
		return punch.Punch{}, validator.ValidationErrors{{
			Field:   "new_timestamp",
			Message: "new_timestamp must not be in the future",
		}}
	}

	return s.transition(ctx, punchID, companyID, reviewerID, review.ActionEdit,
		func(ctx context.Context, p punch.Punch, _ time.Time) (punch.ReviewUpdate, review.Review, error) {
			prev, next, err := s.PunchRepository.Adjacent(ctx, p)
			if err != nil {
				return punch.ReviewUpdate{}, review.Review{}, fmt.Errorf("failed to get adjacent punches: %w", err)
			}
			if prev != nil && !punch.KeyBefore(prev.Timestamp, prev.Seq, newTimestamp, p.Seq) {
				return punch.ReviewUpdate{}, review.Review{}, review.ErrInvalidEditOrdering
			}
			if next != nil && !punch.KeyBefore(newTimestamp, p.Seq, next.Timestamp, next.Seq) {
				return punch.ReviewUpdate{}, review.Review{}, review.ErrInvalidEditOrdering
			}

			previous := p.Timestamp
			upd := punch.ReviewUpdate{
				Timestamp:         &newTimestamp,
				OriginalTimestamp: &previous,
				Notes:             notes,
			}
			audit := review.Review{
				PreviousTimestamp: &previous,
				NewTimestamp:      &newTimestamp,
				Notes:             notes,
			}
			return upd, audit, nil
		})
}

// Apply implements review.ReviewService.
func (s *ReviewServiceImpl) Apply(ctx context.Context, companyID, reviewerID string, req review.ActionRequest) (punch.Punch, error) {
	if err := req.Validate(); err != nil {
		return punch.Punch{}, err
	}

	switch req.Action {
	case review.ActionFlag:
		return s.Flag(ctx, req.PunchID, companyID, reviewerID, req.Reason)
	case review.ActionApprove:
		return s.Approve(ctx, req.PunchID, companyID, reviewerID, req.Notes)
	case review.ActionReject:
		return s.Reject(ctx, req.PunchID, companyID, reviewerID, *req.Reason)
	default:
		return s.Edit(ctx, req.PunchID, companyID, reviewerID, req.ParsedTimestamp(), req.Notes)
	}
}

// ListForReview implements review.ReviewService.
func (s *ReviewServiceImpl) ListForReview(ctx context.Context, companyID string, req review.ListRequest) (review.ListResponse, error) {
	if err := req.Validate(); err != nil {
		return review.ListResponse{}, err
	}

	since := s.now().Add(-time.Duration(req.Days()) * 24 * time.Hour)
	punches, err := s.PunchRepository.ListForReview(ctx, companyID, since, req.Statuses())
	if err != nil {
		return review.ListResponse{}, fmt.Errorf("failed to list punches for review: %w", err)
	}

	ids := make([]string, 0)
	seen := make(map[string]bool)
	for _, p := range punches {
		if !seen[p.EmployeeID] {
			seen[p.EmployeeID] = true
			ids = append(ids, p.EmployeeID)
		}
	}
	employees, err := s.EmployeeRepository.GetByIDs(ctx, companyID, ids)
	if err != nil {
		return review.ListResponse{}, fmt.Errorf("failed to get employees: %w", err)
	}
	names := make(map[string]string, len(employees))
	for _, e := range employees {
		names[e.ID] = e.FullName
	}

	resp := review.ListResponse{Punches: make([]review.ReviewItem, 0, len(punches))}
	for _, p := range punches {
		resp.Punches = append(resp.Punches, review.ReviewItem{
			PunchResponse: punch.NewPunchResponse(p),
			EmployeeName:  names[p.EmployeeID],
			Severity:      p.FlagReason.Severity(),
		})
		if p.ReviewStatus == punch.ReviewStatusFlagged {
			resp.Summary.FlaggedCount++
		}
	}
	resp.Summary.TotalCount = len(resp.Punches)

	// Punches arrive newest first; the stable sort keeps that order within a severity.
	sort.SliceStable(resp.Punches, func(i, j int) bool {
		return resp.Punches[i].Severity > resp.Punches[j].Severity
	})

	return resp, nil
}

// History implements review.ReviewService.
func (s *ReviewServiceImpl) History(ctx context.Context, punchID, companyID string) ([]review.Review, error) {
	if _, err := s.PunchRepository.GetByID(ctx, punchID, companyID); err != nil {
		return nil, err
	}
	return s.ReviewRepository.ListByPunch(ctx, punchID, companyID)
}

func NewReviewService(
	db database.Transactor,
	punchRepo punch.PunchRepository,
	reviewRepo review.ReviewRepository,
	employeeRepo employee.EmployeeRepository,
	statusService status.StatusService,
	now func() time.Time,
) review.ReviewService {
	if now == nil {
		now = time.Now
	}
	return &ReviewServiceImpl{
		db:                 db,
		PunchRepository:    punchRepo,
		ReviewRepository:   reviewRepo,
		EmployeeRepository: employeeRepo,
		statusService:      statusService,
		now:                now,
	}
}

package review

import (
	"context"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/punch"
)

type ReviewService interface {
	Flag(ctx context.Context, punchID, companyID, reviewerID string, reason *string) (punch.Punch, error)
	Approve(ctx context.Context, punchID, companyID, reviewerID string, notes *string) (punch.Punch, error)
	Reject(ctx context.Context, punchID, companyID, reviewerID string, reason string) (punch.Punch, error)
	Edit(ctx context.Context, punchID, companyID, reviewerID string, newTimestamp time.Time, notes *string) (punch.Punch, error)
	// Apply validates req and dispatches to the action it names.
	Apply(ctx context.Context, companyID, reviewerID string, req ActionRequest) (punch.Punch, error)
	ListForReview(ctx context.Context, companyID string, req ListRequest) (ListResponse, error)
	History(ctx context.Context, punchID, companyID string) ([]Review, error)
}

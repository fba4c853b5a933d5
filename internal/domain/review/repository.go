package review

import "context"

type ReviewRepository interface {
	Create(ctx context.Context, r Review) (Review, error)
	ListByPunch(ctx context.Context, punchID string, companyID string) ([]Review, error)
}

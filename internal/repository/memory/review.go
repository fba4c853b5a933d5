package memory

import (
	"context"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/review"
	"github.com/google/uuid"
)

type reviewRepository struct {
	s *Store
}

func (r *reviewRepository) Create(_ context.Context, rv review.Review) (review.Review, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	id, err := uuid.NewV7()
	if err != nil {
		return review.Review{}, err
	}
	rv.ID = id.String()
	rv.CreatedAt = r.s.now()
	r.s.reviews = append(r.s.reviews, rv)
	return rv, nil
}

func (r *reviewRepository) ListByPunch(_ context.Context, punchID string, companyID string) ([]review.Review, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]review.Review, 0)
	for _, rv := range r.s.reviews {
		if rv.PunchID == punchID && rv.CompanyID == companyID {
			result = append(result, rv)
		}
	}
	return result, nil
}

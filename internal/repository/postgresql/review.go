package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/review"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type reviewRepository struct {
	db *database.DB
}

func NewReviewRepository(db *database.DB) review.ReviewRepository {
	return &reviewRepository{db: db}
}

const reviewColumns = `
	id, punch_id, company_id, reviewer_id, action, from_status, to_status,
	previous_punched_at, new_punched_at, reason, notes, created_at`

func scanReview(row pgx.Row) (review.Review, error) {
	var rv review.Review
	err := row.Scan(
		&rv.ID, &rv.PunchID, &rv.CompanyID, &rv.ReviewerID, &rv.Action, &rv.FromStatus, &rv.ToStatus,
		&rv.PreviousTimestamp, &rv.NewTimestamp, &rv.Reason, &rv.Notes, &rv.CreatedAt,
	)
	return rv, err
}

// Create implements review.ReviewRepository.
func (r *reviewRepository) Create(ctx context.Context, rv review.Review) (review.Review, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return review.Review{}, fmt.Errorf("failed to generate review id: %w", err)
	}

	query := `
		INSERT INTO punch_reviews (
			id, punch_id, company_id, reviewer_id, action, from_status, to_status,
			previous_punched_at, new_punched_at, reason, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + reviewColumns

	created, err := scanReview(q.QueryRow(ctx, query,
		id.String(), rv.PunchID, rv.CompanyID, rv.ReviewerID, rv.Action, rv.FromStatus, rv.ToStatus,
		rv.PreviousTimestamp, rv.NewTimestamp, rv.Reason, rv.Notes,
	))
	if err != nil {
		return review.Review{}, fmt.Errorf("failed to create punch review: %w", err)
	}
	return created, nil
}

// ListByPunch implements review.ReviewRepository.
func (r *reviewRepository) ListByPunch(ctx context.Context, punchID string, companyID string) ([]review.Review, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + reviewColumns + `
		FROM punch_reviews
		WHERE punch_id = $1 AND company_id = $2
		ORDER BY created_at, id
	`

	rows, err := q.Query(ctx, query, punchID, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list punch reviews: %w", err)
	}
	defer rows.Close()

	reviews := make([]review.Review, 0)
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan punch review: %w", err)
		}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate punch reviews: %w", err)
	}
	return reviews, nil
}

package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/company"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type policyRepository struct {
	db *database.DB
}

func NewPolicyRepository(db *database.DB) company.PolicyRepository {
	return &policyRepository{db: db}
}

const policyColumns = `
	company_id, timezone, overtime_threshold_minutes, max_shift_minutes, max_break_minutes,
	location_missing_policy, rejected_punch_policy, created_at, updated_at`

func scanPolicy(row pgx.Row) (company.AttendancePolicy, error) {
	var p company.AttendancePolicy
	err := row.Scan(
		&p.CompanyID, &p.Timezone, &p.OvertimeThresholdMinutes, &p.MaxShiftMinutes, &p.MaxBreakMinutes,
		&p.LocationMissingPolicy, &p.RejectedPunchPolicy, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

// GetPolicy implements company.PolicyRepository.
func (r *policyRepository) GetPolicy(ctx context.Context, companyID string) (company.AttendancePolicy, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + policyColumns + ` FROM attendance_policies WHERE company_id = $1`

	p, err := scanPolicy(q.QueryRow(ctx, query, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return company.AttendancePolicy{}, company.ErrPolicyNotFound
		}
		return company.AttendancePolicy{}, fmt.Errorf("failed to get attendance policy: %w", err)
	}
	return p, nil
}

// UpsertPolicy implements company.PolicyRepository.
func (r *policyRepository) UpsertPolicy(ctx context.Context, policy company.AttendancePolicy) (company.AttendancePolicy, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendance_policies (
			company_id, timezone, overtime_threshold_minutes, max_shift_minutes, max_break_minutes,
			location_missing_policy, rejected_punch_policy
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (company_id) DO UPDATE SET
			timezone = EXCLUDED.timezone,
			overtime_threshold_minutes = EXCLUDED.overtime_threshold_minutes,
			max_shift_minutes = EXCLUDED.max_shift_minutes,
			max_break_minutes = EXCLUDED.max_break_minutes,
			location_missing_policy = EXCLUDED.location_missing_policy,
			rejected_punch_policy = EXCLUDED.rejected_punch_policy,
			updated_at = NOW()
		RETURNING ` + policyColumns

	saved, err := scanPolicy(q.QueryRow(ctx, query,
		policy.CompanyID, policy.Timezone, policy.OvertimeThresholdMinutes, policy.MaxShiftMinutes,
		policy.MaxBreakMinutes, policy.LocationMissingPolicy, policy.RejectedPunchPolicy,
	))
	if err != nil {
		return company.AttendancePolicy{}, fmt.Errorf("failed to save attendance policy: %w", err)
	}
	return saved, nil
}

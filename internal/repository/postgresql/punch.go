package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/punch"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type punchRepository struct {
	db *database.DB
}

func NewPunchRepository(db *database.DB) punch.PunchRepository {
	return &punchRepository{db: db}
}

const punchColumns = `
	id, seq, employee_id, company_id, type, punched_at, original_punched_at,
	latitude, longitude, accuracy_meters, method, device_info,
	geofence_id, geofence_name, geofence_distance_meters, geofence_within_radius,
	review_status, flag_reason, notes, reviewed_by, reviewed_at, idempotency_key, created_at`

func scanPunch(row pgx.Row) (punch.Punch, error) {
	var (
		p              punch.Punch
		geofenceID     *string
		geofenceName   *string
		geofenceDist   *float64
		geofenceWithin *bool
	)
	err := row.Scan(
		&p.ID, &p.Seq, &p.EmployeeID, &p.CompanyID, &p.Type, &p.Timestamp, &p.OriginalTimestamp,
		&p.Latitude, &p.Longitude, &p.AccuracyMeters, &p.Method, &p.DeviceInfo,
		&geofenceID, &geofenceName, &geofenceDist, &geofenceWithin,
		&p.ReviewStatus, &p.FlagReason, &p.Notes, &p.ReviewedBy, &p.ReviewedAt, &p.IdempotencyKey, &p.CreatedAt,
	)
	if err != nil {
		return punch.Punch{}, err
	}
	if geofenceID != nil {
		p.Geofence = &punch.GeofenceEvaluation{GeofenceID: *geofenceID}
		if geofenceName != nil {
			p.Geofence.GeofenceName = *geofenceName
		}
		if geofenceDist != nil {
			p.Geofence.DistanceMeters = *geofenceDist
		}
		if geofenceWithin != nil {
			p.Geofence.WithinRadius = *geofenceWithin
		}
	}
	p.Timestamp = p.Timestamp.UTC()
	return p, nil
}

func collectPunches(rows pgx.Rows) ([]punch.Punch, error) {
	defer rows.Close()

	punches := make([]punch.Punch, 0)
	for rows.Next() {
		p, err := scanPunch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan punch: %w", err)
		}
		punches = append(punches, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate punches: %w", err)
	}
	return punches, nil
}

// Create implements punch.PunchRepository.
func (r *punchRepository) Create(ctx context.Context, newPunch punch.Punch) (punch.Punch, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return punch.Punch{}, fmt.Errorf("failed to generate punch id: %w", err)
	}
	if newPunch.ReviewStatus == "" {
		newPunch.ReviewStatus = punch.ReviewStatusNone
	}

	var (
		geofenceID     *string
		geofenceName   *string
		geofenceDist   *float64
		geofenceWithin *bool
	)
	if g := newPunch.Geofence; g != nil {
		geofenceID, geofenceName, geofenceDist, geofenceWithin = &g.GeofenceID, &g.GeofenceName, &g.DistanceMeters, &g.WithinRadius
	}

	query := `
		INSERT INTO punches (
			id, employee_id, company_id, type, punched_at,
			latitude, longitude, accuracy_meters, method, device_info,
			geofence_id, geofence_name, geofence_distance_meters, geofence_within_radius,
			review_status, flag_reason, idempotency_key
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17
		) RETURNING ` + punchColumns

	created, err := scanPunch(q.QueryRow(ctx, query,
		id.String(),
		newPunch.EmployeeID,
		newPunch.CompanyID,
		newPunch.Type,
		newPunch.Timestamp,
		newPunch.Latitude,
		newPunch.Longitude,
		newPunch.AccuracyMeters,
		newPunch.Method,
		newPunch.DeviceInfo,
		geofenceID,
		geofenceName,
		geofenceDist,
		geofenceWithin,
		newPunch.ReviewStatus,
		newPunch.FlagReason,
		newPunch.IdempotencyKey,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return punch.Punch{}, punch.ErrDuplicateIdempotencyKey
		}
		return punch.Punch{}, fmt.Errorf("failed to create punch: %w", err)
	}

	return created, nil
}

// GetByID implements punch.PunchRepository.
func (r *punchRepository) GetByID(ctx context.Context, id string, companyID string) (punch.Punch, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + punchColumns + ` FROM punches WHERE id = $1 AND company_id = $2`

	p, err := scanPunch(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return punch.Punch{}, punch.ErrPunchNotFound
		}
		return punch.Punch{}, fmt.Errorf("failed to get punch: %w", err)
	}
	return p, nil
}

// GetByIdempotencyKey implements punch.PunchRepository.
func (r *punchRepository) GetByIdempotencyKey(ctx context.Context, employeeID string, key string) (punch.Punch, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + punchColumns + ` FROM punches WHERE employee_id = $1 AND idempotency_key = $2`

	p, err := scanPunch(q.QueryRow(ctx, query, employeeID, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return punch.Punch{}, punch.ErrPunchNotFound
		}
		return punch.Punch{}, fmt.Errorf("failed to get punch by idempotency key: %w", err)
	}
	return p, nil
}

// LockEmployee takes a transaction-scoped advisory lock keyed by the employee id.
func (r *punchRepository) LockEmployee(ctx context.Context, employeeID string) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, employeeID); err != nil {
		return fmt.Errorf("failed to lock employee punches: %w", err)
	}
	return nil
}

// LastClockInBefore implements punch.PunchRepository.
func (r *punchRepository) LastClockInBefore(ctx context.Context, employeeID string, before time.Time) (punch.Punch, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + punchColumns + `
		FROM punches
		WHERE employee_id = $1
		  AND type = 'CLOCK_IN'
		  AND review_status <> 'REJECTED'
		  AND punched_at <= $2
		ORDER BY punched_at DESC, seq DESC
		LIMIT 1
	`

	p, err := scanPunch(q.QueryRow(ctx, query, employeeID, before))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return punch.Punch{}, punch.ErrPunchNotFound
		}
		return punch.Punch{}, fmt.Errorf("failed to get last clock-in: %w", err)
	}
	return p, nil
}

// LatestClockIns implements punch.PunchRepository.
func (r *punchRepository) LatestClockIns(ctx context.Context, companyID string, at time.Time) ([]punch.Punch, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT DISTINCT ON (employee_id) ` + punchColumns + `
		FROM punches
		WHERE company_id = $1
		  AND type = 'CLOCK_IN'
		  AND review_status <> 'REJECTED'
		  AND punched_at <= $2
		ORDER BY employee_id, punched_at DESC, seq DESC
	`

	rows, err := q.Query(ctx, query, companyID, at)
	if err != nil {
		return nil, fmt.Errorf("failed to list latest clock-ins: %w", err)
	}
	return collectPunches(rows)
}

// ListByEmployee implements punch.PunchRepository.
func (r *punchRepository) ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]punch.Punch, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + punchColumns + `
		FROM punches
		WHERE employee_id = $1
		  AND review_status <> 'REJECTED'
		  AND punched_at BETWEEN $2 AND $3
		ORDER BY punched_at, seq
	`

	rows, err := q.Query(ctx, query, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list employee punches: %w", err)
	}
	return collectPunches(rows)
}

// ListByCompany implements punch.PunchRepository.
func (r *punchRepository) ListByCompany(ctx context.Context, companyID string, from, to time.Time) ([]punch.Punch, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + punchColumns + `
		FROM punches
		WHERE company_id = $1
		  AND review_status <> 'REJECTED'
		  AND punched_at BETWEEN $2 AND $3
		ORDER BY punched_at, seq
	`

	rows, err := q.Query(ctx, query, companyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list company punches: %w", err)
	}
	return collectPunches(rows)
}

// CountRejected implements punch.PunchRepository.
func (r *punchRepository) CountRejected(ctx context.Context, employeeID string, from, to time.Time) (int, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COUNT(*)
		FROM punches
		WHERE employee_id = $1
		  AND review_status = 'REJECTED'
		  AND punched_at >= $2 AND punched_at < $3
	`

	var count int
	if err := q.QueryRow(ctx, query, employeeID, from, to).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count rejected punches: %w", err)
	}
	return count, nil
}

// Adjacent implements punch.PunchRepository.
func (r *punchRepository) Adjacent(ctx context.Context, p punch.Punch) (*punch.Punch, *punch.Punch, error) {
	q := GetQuerier(ctx, r.db)

	prevQuery := `
		SELECT ` + punchColumns + `
		FROM punches
		WHERE employee_id = $1 AND id <> $2 AND review_status <> 'REJECTED'
		  AND (punched_at, seq) < ($3, $4)
		ORDER BY punched_at DESC, seq DESC
		LIMIT 1
	`
	nextQuery := `
		SELECT ` + punchColumns + `
		FROM punches
		WHERE employee_id = $1 AND id <> $2 AND review_status <> 'REJECTED'
		  AND (punched_at, seq) > ($3, $4)
		ORDER BY punched_at, seq
		LIMIT 1
	`

	find := func(query string) (*punch.Punch, error) {
		found, err := scanPunch(q.QueryRow(ctx, query, p.EmployeeID, p.ID, p.Timestamp, p.Seq))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, nil
			}
			return nil, fmt.Errorf("failed to get adjacent punch: %w", err)
		}
		return &found, nil
	}

	prev, err := find(prevQuery)
	if err != nil {
		return nil, nil, err
	}
	next, err := find(nextQuery)
	if err != nil {
		return nil, nil, err
	}
	return prev, next, nil
}

// ListForReview implements punch.PunchRepository.
func (r *punchRepository) ListForReview(ctx context.Context, companyID string, since time.Time, statuses []punch.ReviewStatus) ([]punch.Punch, error) {
	q := GetQuerier(ctx, r.db)

	filter := make([]string, 0, len(statuses))
	for _, s := range statuses {
		filter = append(filter, string(s))
	}

	query := `
		SELECT ` + punchColumns + `
		FROM punches
		WHERE company_id = $1
		  AND punched_at >= $2
		  AND (cardinality($3::text[]) = 0 OR review_status = ANY($3::text[]))
		ORDER BY punched_at DESC, seq DESC
	`

	rows, err := q.Query(ctx, query, companyID, since, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list punches for review: %w", err)
	}
	return collectPunches(rows)
}

// UpdateReview implements punch.PunchRepository.
func (r *punchRepository) UpdateReview(ctx context.Context, id string, expected punch.ReviewStatus, upd punch.ReviewUpdate) (punch.Punch, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE punches SET
			review_status = $3,
			flag_reason = COALESCE($4, flag_reason),
			punched_at = COALESCE($5, punched_at),
			original_punched_at = COALESCE(original_punched_at, $6),
			notes = COALESCE($7, notes),
			reviewed_by = $8,
			reviewed_at = $9
		WHERE id = $1 AND review_status = $2
		RETURNING ` + punchColumns

	updated, err := scanPunch(q.QueryRow(ctx, query,
		id, expected, upd.Status, upd.FlagReason, upd.Timestamp, upd.OriginalTimestamp,
		upd.Notes, upd.ReviewedBy, upd.ReviewedAt,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			var exists bool
			if existsErr := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM punches WHERE id = $1)`, id).Scan(&exists); existsErr != nil {
				return punch.Punch{}, fmt.Errorf("failed to check punch: %w", existsErr)
			}
			if !exists {
				return punch.Punch{}, punch.ErrPunchNotFound
			}
			return punch.Punch{}, punch.ErrPunchAlreadyReviewed
		}
		return punch.Punch{}, fmt.Errorf("failed to update punch review: %w", err)
	}
	return updated, nil
}

// ListActiveCompanyIDs implements punch.PunchRepository.
func (r *punchRepository) ListActiveCompanyIDs(ctx context.Context, since time.Time) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT DISTINCT company_id FROM punches WHERE punched_at >= $1 ORDER BY company_id`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list active companies: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan company id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

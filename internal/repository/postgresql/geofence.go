package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/geofence"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type geofenceRepository struct {
	db *database.DB
}

func NewGeofenceRepository(db *database.DB) geofence.GeofenceRepository {
	return &geofenceRepository{db: db}
}

const geofenceColumns = `
	id, company_id, shop_id, name, latitude, longitude, radius_meters,
	is_required, is_active, created_at, updated_at`

func scanGeofence(row pgx.Row) (geofence.Geofence, error) {
	var g geofence.Geofence
	err := row.Scan(
		&g.ID, &g.CompanyID, &g.ShopID, &g.Name, &g.Latitude, &g.Longitude, &g.RadiusMeters,
		&g.IsRequired, &g.IsActive, &g.CreatedAt, &g.UpdatedAt,
	)
	return g, err
}

func (r *geofenceRepository) list(ctx context.Context, query string, args ...interface{}) ([]geofence.Geofence, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list geofences: %w", err)
	}
	defer rows.Close()

	fences := make([]geofence.Geofence, 0)
	for rows.Next() {
		g, err := scanGeofence(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan geofence: %w", err)
		}
		fences = append(fences, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate geofences: %w", err)
	}
	return fences, nil
}

// Create implements geofence.GeofenceRepository.
func (r *geofenceRepository) Create(ctx context.Context, newGeofence geofence.Geofence) (geofence.Geofence, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return geofence.Geofence{}, fmt.Errorf("failed to generate geofence id: %w", err)
	}

	query := `
		INSERT INTO geofences (id, company_id, shop_id, name, latitude, longitude, radius_meters, is_required, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + geofenceColumns

	created, err := scanGeofence(q.QueryRow(ctx, query,
		id.String(), newGeofence.CompanyID, newGeofence.ShopID, newGeofence.Name,
		newGeofence.Latitude, newGeofence.Longitude, newGeofence.RadiusMeters,
		newGeofence.IsRequired, newGeofence.IsActive,
	))
	if err != nil {
		return geofence.Geofence{}, fmt.Errorf("failed to create geofence: %w", err)
	}
	return created, nil
}

// GetByID implements geofence.GeofenceRepository.
func (r *geofenceRepository) GetByID(ctx context.Context, id string, companyID string) (geofence.Geofence, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + geofenceColumns + ` FROM geofences WHERE id = $1 AND company_id = $2`

	g, err := scanGeofence(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return geofence.Geofence{}, geofence.ErrGeofenceNotFound
		}
		return geofence.Geofence{}, fmt.Errorf("failed to get geofence: %w", err)
	}
	return g, nil
}

// List implements geofence.GeofenceRepository.
func (r *geofenceRepository) List(ctx context.Context, companyID string, filter geofence.ListFilter) ([]geofence.Geofence, error) {
	query := `
		SELECT ` + geofenceColumns + `
		FROM geofences
		WHERE company_id = $1
		  AND ($2::uuid IS NULL OR shop_id = $2::uuid)
		  AND (is_active OR $3)
		ORDER BY name, id
	`
	return r.list(ctx, query, companyID, filter.ShopID, filter.IncludeInactive)
}

// Update implements geofence.GeofenceRepository.
func (r *geofenceRepository) Update(ctx context.Context, g geofence.Geofence) (geofence.Geofence, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE geofences SET
			name = $3, latitude = $4, longitude = $5, radius_meters = $6,
			is_required = $7, is_active = $8, updated_at = NOW()
		WHERE id = $1 AND company_id = $2
		RETURNING ` + geofenceColumns

	updated, err := scanGeofence(q.QueryRow(ctx, query,
		g.ID, g.CompanyID, g.Name, g.Latitude, g.Longitude, g.RadiusMeters, g.IsRequired, g.IsActive,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return geofence.Geofence{}, geofence.ErrGeofenceNotFound
		}
		return geofence.Geofence{}, fmt.Errorf("failed to update geofence: %w", err)
	}
	return updated, nil
}

// Delete implements geofence.GeofenceRepository.
func (r *geofenceRepository) Delete(ctx context.Context, id string, companyID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM geofences WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		return fmt.Errorf("failed to delete geofence: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return geofence.ErrGeofenceNotFound
	}
	return nil
}

// IsReferenced implements geofence.GeofenceRepository.
func (r *geofenceRepository) IsReferenced(ctx context.Context, id string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var referenced bool
	if err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM punches WHERE geofence_id = $1)`, id).Scan(&referenced); err != nil {
		return false, fmt.Errorf("failed to check geofence references: %w", err)
	}
	return referenced, nil
}

// GetActiveAssignedToEmployee implements geofence.GeofenceRepository.
func (r *geofenceRepository) GetActiveAssignedToEmployee(ctx context.Context, employeeID string) ([]geofence.Geofence, error) {
	query := `
		SELECT ` + prefixed("g", geofenceColumns) + `
		FROM geofences g
		JOIN geofence_assignments ga ON ga.geofence_id = g.id
		WHERE ga.employee_id = $1 AND g.is_active
		ORDER BY g.name, g.id
	`
	return r.list(ctx, query, employeeID)
}

// GetActiveByShop implements geofence.GeofenceRepository.
func (r *geofenceRepository) GetActiveByShop(ctx context.Context, companyID string, shopID string) ([]geofence.Geofence, error) {
	query := `
		SELECT ` + geofenceColumns + `
		FROM geofences
		WHERE company_id = $1 AND shop_id = $2 AND is_active
		ORDER BY name, id
	`
	return r.list(ctx, query, companyID, shopID)
}

// Assign implements geofence.GeofenceRepository.
func (r *geofenceRepository) Assign(ctx context.Context, a geofence.Assignment) error {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `INSERT INTO geofence_assignments (geofence_id, employee_id) VALUES ($1, $2)`, a.GeofenceID, a.EmployeeID)
	if err != nil {
		if isUniqueViolation(err) {
			return geofence.ErrAssignmentExists
		}
		return fmt.Errorf("failed to assign geofence: %w", err)
	}
	return nil
}

// Unassign implements geofence.GeofenceRepository.
func (r *geofenceRepository) Unassign(ctx context.Context, geofenceID string, employeeID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM geofence_assignments WHERE geofence_id = $1 AND employee_id = $2`, geofenceID, employeeID)
	if err != nil {
		return fmt.Errorf("failed to unassign geofence: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return geofence.ErrAssignmentMissing
	}
	return nil
}

// ListAssignedEmployeeIDs implements geofence.GeofenceRepository.
func (r *geofenceRepository) ListAssignedEmployeeIDs(ctx context.Context, geofenceID string) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT employee_id FROM geofence_assignments WHERE geofence_id = $1 ORDER BY employee_id`, geofenceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list geofence assignments: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan employee id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

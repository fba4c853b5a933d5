package postgresql_test

import (
	"context"
	"os"
	"testing"

	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-engine/migrations"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// openTestDB connects to TEST_DATABASE_URL, applies the schema and empties every table.
func openTestDB(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := database.NewPostgreSQLDB(dsn)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	ctx := context.Background()
	require.NoError(t, migrations.Apply(ctx, db))

	_, err = db.Exec(ctx, `TRUNCATE TABLE punch_reviews, punches, geofence_assignments, geofences, attendance_policies, employees CASCADE`)
	require.NoError(t, err)

	return db
}

func newID(t *testing.T) string {
	t.Helper()
	id, err := uuid.NewV7()
	require.NoError(t, err)
	return id.String()
}

func insertEmployee(t *testing.T, db *database.DB, companyID string, shopID *string, name string) string {
	t.Helper()
	id := newID(t)
	_, err := db.Exec(context.Background(), `
		INSERT INTO employees (id, company_id, shop_id, full_name, position, pay_rate)
		VALUES ($1, $2, $3, $4, 'Barista', 12.50)
	`, id, companyID, shopID, name)
	require.NoError(t, err)
	return id
}

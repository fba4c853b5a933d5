package geofence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/company"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/geofence"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/punch"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/utils"
	"github.com/cmlabs-hris/attendance-engine/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	companyID = "company-1"
	shopID    = "shop-1"
	storeLat  = -6.2
	storeLng  = 106.8
)

var rejectPolicy = company.AttendancePolicy{
	CompanyID:             companyID,
	Timezone:              "UTC",
	LocationMissingPolicy: company.LocationMissingReject,
}

func seed(t *testing.T, required bool) (*memory.Store, geofence.Geofence) {
	t.Helper()
	store := memory.NewStore()
	shop := shopID
	store.PutEmployee(employee.Employee{ID: "emp-1", CompanyID: companyID, ShopID: &shop, FullName: "Ana"})
	store.PutEmployee(employee.Employee{ID: "emp-2", CompanyID: companyID, FullName: "Ben"})

	g, err := store.Geofences().Create(context.Background(), geofence.Geofence{
		CompanyID: companyID, ShopID: shopID, Name: "Main Street",
		Latitude: storeLat, Longitude: storeLng, RadiusMeters: 100,
		IsRequired: required, IsActive: true,
	})
	require.NoError(t, err)
	return store, g
}

func TestResolver_UsesShopZonesWhenNoneAssigned(t *testing.T) {
	store, _ := seed(t, true)
	resolver := NewResolver(store.Geofences(), store.Employees(), time.Second)

	away := punch.KnownLocation{Latitude: utils.OffsetNorth(storeLat, 300), Longitude: storeLng}
	_, err := resolver.Evaluate(context.Background(), away, "emp-1", companyID, rejectPolicy)

	var violation *geofence.ViolationError
	require.ErrorAs(t, err, &violation)
	assert.ErrorIs(t, err, geofence.ErrGeofenceViolation)
	assert.InDelta(t, 300, violation.DistanceMeters, 1)
	assert.Equal(t, "Main Street", violation.GeofenceName)
}

func TestResolver_NoZonesAccepts(t *testing.T) {
	store, _ := seed(t, true)
	resolver := NewResolver(store.Geofences(), store.Employees(), time.Second)

	decision, err := resolver.Evaluate(context.Background(), punch.UnknownLocation{}, "emp-2", companyID, rejectPolicy)
	require.NoError(t, err)
	assert.Nil(t, decision.Evaluation)
	assert.Equal(t, punch.FlagNone, decision.Flag)
}

func TestResolver_AssignedZonesTakePrecedence(t *testing.T) {
	ctx := context.Background()
	store, _ := seed(t, true)

	remote, err := store.Geofences().Create(ctx, geofence.Geofence{
		CompanyID: companyID, ShopID: "shop-2", Name: "Warehouse",
		Latitude: 10, Longitude: 10, RadiusMeters: 50, IsActive: true,
	})
	require.NoError(t, err)
	require.NoError(t, store.Geofences().Assign(ctx, geofence.Assignment{GeofenceID: remote.ID, EmployeeID: "emp-1"}))

	resolver := NewResolver(store.Geofences(), store.Employees(), time.Second)
	decision, err := resolver.Evaluate(ctx, punch.KnownLocation{Latitude: storeLat, Longitude: storeLng}, "emp-1", companyID, rejectPolicy)
	require.NoError(t, err)

	require.NotNil(t, decision.Evaluation)
	assert.Equal(t, "Warehouse", decision.Evaluation.GeofenceName)
	assert.Equal(t, punch.FlagGeofenceOutside, decision.Flag)
}

type slowGeofences struct {
	geofence.GeofenceRepository
}

func (s slowGeofences) GetActiveAssignedToEmployee(ctx context.Context, _ string) ([]geofence.Geofence, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestResolver_TimeoutFailsSafe(t *testing.T) {
	store, _ := seed(t, false)
	resolver := NewResolver(slowGeofences{store.Geofences()}, store.Employees(), 20*time.Millisecond)

	_, err := resolver.Evaluate(context.Background(), punch.KnownLocation{Latitude: storeLat, Longitude: storeLng}, "emp-1", companyID, rejectPolicy)
	assert.ErrorIs(t, err, geofence.ErrLocationRequired)
}

func TestResolver_CallerCancellationIsNotMasked(t *testing.T) {
	store, _ := seed(t, false)
	resolver := NewResolver(slowGeofences{store.Geofences()}, store.Employees(), time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := resolver.Evaluate(ctx, punch.UnknownLocation{}, "emp-1", companyID, rejectPolicy)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestGeofenceService_DeleteDeactivatesReferencedZone(t *testing.T) {
	ctx := context.Background()
	store, g := seed(t, false)
	svc := NewGeofenceService(store.Geofences(), store.Employees())

	_, err := store.Punches().Create(ctx, punch.Punch{
		EmployeeID: "emp-1", CompanyID: companyID, Type: punch.TypeClockIn,
		Timestamp: time.Now().UTC(), Method: punch.MethodApp, ReviewStatus: punch.ReviewStatusNone,
		Geofence: &punch.GeofenceEvaluation{GeofenceID: g.ID, GeofenceName: g.Name, WithinRadius: true},
	})
	require.NoError(t, err)

	removed, err := svc.Delete(ctx, g.ID, companyID)
	require.NoError(t, err)
	assert.False(t, removed)

	detail, err := svc.GetByID(ctx, g.ID, companyID)
	require.NoError(t, err)
	assert.False(t, detail.IsActive)

	unused, err := svc.Create(ctx, companyID, geofence.CreateGeofenceRequest{
		ShopID: shopID, Name: "Kiosk", Latitude: storeLat, Longitude: storeLng, RadiusMeters: 30,
	})
	require.NoError(t, err)

	removed, err = svc.Delete(ctx, unused.ID, companyID)
	require.NoError(t, err)
	assert.True(t, removed)

	_, err = svc.GetByID(ctx, unused.ID, companyID)
	assert.ErrorIs(t, err, geofence.ErrGeofenceNotFound)
}

func TestGeofenceService_AssignRules(t *testing.T) {
	ctx := context.Background()
	store, g := seed(t, true)
	store.PutEmployee(employee.Employee{ID: "emp-x", CompanyID: "company-2", FullName: "Xavier"})
	svc := NewGeofenceService(store.Geofences(), store.Employees())

	require.NoError(t, svc.Assign(ctx, g.ID, companyID, geofence.AssignRequest{EmployeeID: "emp-2"}))
	assert.ErrorIs(t, svc.Assign(ctx, g.ID, companyID, geofence.AssignRequest{EmployeeID: "emp-2"}), geofence.ErrAssignmentExists)
	assert.ErrorIs(t, svc.Assign(ctx, g.ID, companyID, geofence.AssignRequest{EmployeeID: "emp-x"}), employee.ErrEmployeeNotFound)
	assert.ErrorIs(t, svc.Assign(ctx, g.ID, "company-2", geofence.AssignRequest{EmployeeID: "emp-x"}), geofence.ErrGeofenceNotFound)

	detail, err := svc.GetByID(ctx, g.ID, companyID)
	require.NoError(t, err)
	assert.Equal(t, []string{"emp-2"}, detail.AssignedEmployeeIDs)

	require.NoError(t, svc.Unassign(ctx, g.ID, companyID, "emp-2"))
	assert.ErrorIs(t, svc.Unassign(ctx, g.ID, companyID, "emp-2"), geofence.ErrAssignmentMissing)
}

func TestGeofenceService_UpdateAppliesPartialChanges(t *testing.T) {
	ctx := context.Background()
	store, g := seed(t, false)
	svc := NewGeofenceService(store.Geofences(), store.Employees())

	radius := 250.0
	required := true
	updated, err := svc.Update(ctx, g.ID, companyID, geofence.UpdateGeofenceRequest{RadiusMeters: &radius, IsRequired: &required})
	require.NoError(t, err)

	assert.Equal(t, 250.0, updated.RadiusMeters)
	assert.True(t, updated.IsRequired)
	assert.Equal(t, "Main Street", updated.Name)
}

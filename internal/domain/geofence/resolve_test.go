package geofence

import (
	"errors"
	"testing"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/company"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/punch"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	siteLat = -6.2000
	siteLng = 106.8166
)

var rejectPolicy = company.AttendancePolicy{LocationMissingPolicy: company.LocationMissingReject}

func site(id string, radius float64, required bool) Geofence {
	return Geofence{
		ID:           id,
		Name:         "Site " + id,
		Latitude:     siteLat,
		Longitude:    siteLng,
		RadiusMeters: radius,
		IsRequired:   required,
		IsActive:     true,
	}
}

func TestResolve_NoFences(t *testing.T) {
	d, err := Resolve(punch.UnknownLocation{}, nil, rejectPolicy)
	require.NoError(t, err)
	assert.Nil(t, d.Evaluation)
	assert.Equal(t, punch.FlagNone, d.Flag)
}

func TestResolve_PointAtCenterIsWithin(t *testing.T) {
	d, err := Resolve(punch.KnownLocation{Latitude: siteLat, Longitude: siteLng}, []Geofence{site("a", 1, true)}, rejectPolicy)
	require.NoError(t, err)
	require.NotNil(t, d.Evaluation)
	assert.True(t, d.Evaluation.WithinRadius)
	assert.Equal(t, 0.0, d.Evaluation.DistanceMeters)
	assert.Equal(t, punch.FlagNone, d.Flag)
}

func TestResolve_RequiredViolation(t *testing.T) {
	loc := punch.KnownLocation{Latitude: utils.OffsetNorth(siteLat, 300), Longitude: siteLng}

	_, err := Resolve(loc, []Geofence{site("a", 150, true)}, rejectPolicy)

	require.ErrorIs(t, err, ErrGeofenceViolation)
	var violation *ViolationError
	require.True(t, errors.As(err, &violation))
	assert.Equal(t, "a", violation.GeofenceID)
	assert.InDelta(t, 300, violation.DistanceMeters, 1)
}

func TestResolve_InsideOneOfSeveralRequired(t *testing.T) {
	far := site("far", 100, true)
	far.Latitude = utils.OffsetNorth(siteLat, 5000)
	loc := punch.KnownLocation{Latitude: utils.OffsetNorth(siteLat, 50), Longitude: siteLng}

	d, err := Resolve(loc, []Geofence{far, site("near", 100, true)}, rejectPolicy)
	require.NoError(t, err)
	assert.Equal(t, "near", d.Evaluation.GeofenceID)
	assert.True(t, d.Evaluation.WithinRadius)
}

func TestResolve_AdvisoryOutsideFlags(t *testing.T) {
	loc := punch.KnownLocation{Latitude: utils.OffsetNorth(siteLat, 300), Longitude: siteLng}

	d, err := Resolve(loc, []Geofence{site("a", 150, false)}, rejectPolicy)
	require.NoError(t, err)
	assert.Equal(t, punch.FlagGeofenceOutside, d.Flag)
	require.NotNil(t, d.Evaluation)
	assert.False(t, d.Evaluation.WithinRadius)
	assert.InDelta(t, 300, d.Evaluation.DistanceMeters, 1)
}

func TestResolve_UnknownLocation(t *testing.T) {
	required := []Geofence{site("a", 150, true)}

	_, err := Resolve(punch.UnknownLocation{Reason: "denied"}, required, rejectPolicy)
	assert.ErrorIs(t, err, ErrLocationRequired)

	flagPolicy := company.AttendancePolicy{LocationMissingPolicy: company.LocationMissingFlag}
	d, err := Resolve(punch.UnknownLocation{}, required, flagPolicy)
	require.NoError(t, err)
	assert.Equal(t, punch.FlagLocationMissing, d.Flag)

	d, err = Resolve(punch.UnknownLocation{}, []Geofence{site("b", 150, false)}, rejectPolicy)
	require.NoError(t, err)
	assert.Equal(t, punch.FlagNone, d.Flag)
}

func TestViolationError_Message(t *testing.T) {
	err := &ViolationError{GeofenceName: "Main Shop", DistanceMeters: 299.6}
	assert.Equal(t, "you are 300 meters away from Main Shop", err.Error())
}

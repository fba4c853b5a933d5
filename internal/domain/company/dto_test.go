package company

import (
	"testing"

	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdatePolicyRequest_Validate(t *testing.T) {
	tz := "Asia/Jakarta"
	badTz := "Nowhere/City"
	neg := -5
	flag := LocationMissingFlag
	bogus := LocationMissingPolicy("ignore")

	assert.NoError(t, (&UpdatePolicyRequest{Timezone: &tz, LocationMissingPolicy: &flag}).Validate())

	tests := []struct {
		name      string
		req       UpdatePolicyRequest
		wantField string
	}{
		{"empty", UpdatePolicyRequest{}, "request"},
		{"bad timezone", UpdatePolicyRequest{Timezone: &badTz}, "timezone"},
		{"negative threshold", UpdatePolicyRequest{OvertimeThresholdMinutes: &neg}, "overtime_threshold_minutes"},
		{"negative max break", UpdatePolicyRequest{MaxBreakMinutes: &neg}, "max_break_minutes"},
		{"unknown location policy", UpdatePolicyRequest{LocationMissingPolicy: &bogus}, "location_missing_policy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var verrs validator.ValidationErrors
			require.ErrorAs(t, tt.req.Validate(), &verrs)
			assert.Contains(t, verrs.ToMap(), tt.wantField)
		})
	}
}

func TestUpdatePolicyRequest_Apply(t *testing.T) {
	threshold := 420
	report := RejectedPunchReport
	base := AttendancePolicy{CompanyID: "c1", Timezone: "UTC", OvertimeThresholdMinutes: 480, MaxShiftMinutes: 960}

	got := UpdatePolicyRequest{OvertimeThresholdMinutes: &threshold, RejectedPunchPolicy: &report}.Apply(base)

	assert.Equal(t, 420, got.OvertimeThresholdMinutes)
	assert.Equal(t, RejectedPunchReport, got.RejectedPunchPolicy)
	assert.Equal(t, 960, got.MaxShiftMinutes)
	assert.Equal(t, "UTC", got.Timezone)
}

func TestAttendancePolicy_Location(t *testing.T) {
	assert.Equal(t, "Asia/Jakarta", AttendancePolicy{Timezone: "Asia/Jakarta"}.Location().String())
	assert.Equal(t, "UTC", AttendancePolicy{Timezone: "bogus"}.Location().String())
}

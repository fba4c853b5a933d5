package company

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/company"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
	"github.com/cmlabs-hris/attendance-engine/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDefaults = company.AttendancePolicy{
	Timezone:                 "UTC",
	OvertimeThresholdMinutes: 480,
	MaxShiftMinutes:          960,
	MaxBreakMinutes:          120,
	LocationMissingPolicy:    company.LocationMissingReject,
	RejectedPunchPolicy:      company.RejectedPunchExclude,
}

func TestPolicyService_GetFallsBackToDefaults(t *testing.T) {
	svc := NewPolicyService(memory.NewStore().Policies(), testDefaults)

	policy, err := svc.Get(context.Background(), "company-1")
	require.NoError(t, err)

	assert.Equal(t, "company-1", policy.CompanyID)
	assert.Equal(t, 480, policy.OvertimeThresholdMinutes)
	assert.Equal(t, company.LocationMissingReject, policy.LocationMissingPolicy)
}

func TestPolicyService_UpdateMergesOntoDefaults(t *testing.T) {
	ctx := context.Background()
	svc := NewPolicyService(memory.NewStore().Policies(), testDefaults)

	threshold := 420
	flag := company.LocationMissingFlag
	_, err := svc.Update(ctx, "company-1", company.UpdatePolicyRequest{
		OvertimeThresholdMinutes: &threshold,
		LocationMissingPolicy:    &flag,
	})
	require.NoError(t, err)

	policy, err := svc.Get(ctx, "company-1")
	require.NoError(t, err)
	assert.Equal(t, 420, policy.OvertimeThresholdMinutes)
	assert.Equal(t, company.LocationMissingFlag, policy.LocationMissingPolicy)
	assert.Equal(t, 960, policy.MaxShiftMinutes)

	other, err := svc.Get(ctx, "company-2")
	require.NoError(t, err)
	assert.Equal(t, 480, other.OvertimeThresholdMinutes)
}

func TestPolicyService_UpdateRejectsInvalidRequest(t *testing.T) {
	svc := NewPolicyService(memory.NewStore().Policies(), testDefaults)

	tz := "Mars/Olympus_Mons"
	_, err := svc.Update(context.Background(), "company-1", company.UpdatePolicyRequest{Timezone: &tz})

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "timezone")
}

package entitlement

import (
	"testing"
	"time"

	"entitlement-service/internal/model"

	"github.com/stretchr/testify/assert"
)

func timePtr(t time.Time) *time.Time {
	return &t
}

func TestEvaluateTrial(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		rec  *model.TenantBilling
		want Decision
	}{
		{
			name: "new tenant without trial date is never blocked",
			rec:  &model.TenantBilling{ID: "t1", IsPremium: false, TrialEndDate: nil},
			want: Decision{
				IsPremium:         false,
				IsExpired:         false,
				DaysRemaining:     7,
				ShouldBlockAccess: false,
				ExpirationDate:    nil,
			},
		},
		{
			name: "zero trial date treated as absent",
			rec:  &model.TenantBilling{ID: "t1", IsPremium: false, TrialEndDate: timePtr(time.Time{})},
			want: Decision{
				DaysRemaining: 7,
			},
		},
		{
			name: "trial expired yesterday",
			rec:  &model.TenantBilling{ID: "t1", IsPremium: false, TrialEndDate: timePtr(now.AddDate(0, 0, -1))},
			want: Decision{
				IsPremium:         false,
				IsExpired:         true,
				DaysRemaining:     0,
				ShouldBlockAccess: true,
				ExpirationDate:    timePtr(now.AddDate(0, 0, -1)),
			},
		},
		{
			name: "trial active with three whole days left",
			rec:  &model.TenantBilling{ID: "t1", IsPremium: false, TrialEndDate: timePtr(now.AddDate(0, 0, 3))},
			want: Decision{
				DaysRemaining:  3,
				ExpirationDate: timePtr(now.AddDate(0, 0, 3)),
			},
		},
		{
			name: "trial with hours left rounds up to one day",
			rec:  &model.TenantBilling{ID: "t1", IsPremium: false, TrialEndDate: timePtr(now.Add(2 * time.Hour))},
			want: Decision{
				DaysRemaining:  1,
				ExpirationDate: timePtr(now.Add(2 * time.Hour)),
			},
		},
		{
			name: "trial with one day and one second rounds up to two days",
			rec:  &model.TenantBilling{ID: "t1", IsPremium: false, TrialEndDate: timePtr(now.Add(24*time.Hour + time.Second))},
			want: Decision{
				DaysRemaining:  2,
				ExpirationDate: timePtr(now.Add(24*time.Hour + time.Second)),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.rec, now)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluatePremium(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		rec  *model.TenantBilling
		want Decision
	}{
		{
			name: "premium active with three days left",
			rec:  &model.TenantBilling{ID: "t1", IsPremium: true, TrialEndDate: timePtr(now.AddDate(0, 0, 3))},
			want: Decision{
				IsPremium:      true,
				DaysRemaining:  3,
				ExpirationDate: timePtr(now.AddDate(0, 0, 3)),
			},
		},
		{
			name: "premium expired one hour ago downgrades at decision time",
			rec:  &model.TenantBilling{ID: "t1", IsPremium: true, TrialEndDate: timePtr(now.Add(-1 * time.Hour))},
			want: Decision{
				IsPremium:         false,
				IsExpired:         true,
				DaysRemaining:     0,
				ShouldBlockAccess: true,
				ExpirationDate:    timePtr(now.Add(-1 * time.Hour)),
			},
		},
		{
			name: "premium without end date falls back to updated_at plus 30 days",
			rec: &model.TenantBilling{
				ID:        "t1",
				IsPremium: true,
				UpdatedAt: now.AddDate(0, 0, -10),
			},
			want: Decision{
				IsPremium:      true,
				DaysRemaining:  20,
				ExpirationDate: timePtr(now.AddDate(0, 0, -10).Add(30 * 24 * time.Hour)),
			},
		},
		{
			name: "premium with stale updated_at anchor is expired",
			rec: &model.TenantBilling{
				ID:        "t1",
				IsPremium: true,
				UpdatedAt: now.AddDate(0, 0, -45),
			},
			want: Decision{
				IsPremium:         false,
				IsExpired:         true,
				ShouldBlockAccess: true,
				ExpirationDate:    timePtr(now.AddDate(0, 0, -45).Add(30 * 24 * time.Hour)),
			},
		},
		{
			name: "premium with no dates at all anchors on now",
			rec:  &model.TenantBilling{ID: "t1", IsPremium: true},
			want: Decision{
				IsPremium:      true,
				DaysRemaining:  30,
				ExpirationDate: timePtr(now.Add(30 * 24 * time.Hour)),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.rec, now)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateInvariants(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	records := []*model.TenantBilling{
		nil,
		{ID: "a"},
		{ID: "b", TrialEndDate: timePtr(now.AddDate(0, 0, -100))},
		{ID: "c", TrialEndDate: timePtr(now.AddDate(0, 0, 100))},
		{ID: "d", IsPremium: true},
		{ID: "e", IsPremium: true, TrialEndDate: timePtr(now.Add(-time.Minute))},
		{ID: "f", IsPremium: true, TrialEndDate: timePtr(now.Add(time.Minute))},
		{ID: "g", IsPremium: true, UpdatedAt: now.AddDate(-1, 0, 0)},
	}

	for _, rec := range records {
		d := Evaluate(rec, now)
		if d.IsExpired {
			assert.True(t, d.ShouldBlockAccess, "expired decisions must block")
			assert.Zero(t, d.DaysRemaining, "expired decisions report zero days")
		}
		assert.GreaterOrEqual(t, d.DaysRemaining, 0)
	}
}

func TestDenied(t *testing.T) {
	d := Denied()
	assert.True(t, d.ShouldBlockAccess)
	assert.True(t, d.IsExpired)
	assert.Zero(t, d.DaysRemaining)
	assert.False(t, d.IsPremium)
}

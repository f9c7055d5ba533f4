package entity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPlanQuotas(t *testing.T) {
	tests := []struct {
		plan       Plan
		wills      int
		memorials  int
		fundraises bool
	}{
		{PlanFree, 1, 1, false},
		{PlanStandard, Unlimited, 5, true},
		{PlanPremium, Unlimited, Unlimited, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.plan), func(t *testing.T) {
			assert.Equal(t, tt.wills, tt.plan.MaxWills())
			assert.Equal(t, tt.memorials, tt.plan.MaxMemorials())
			assert.Equal(t, tt.fundraises, tt.plan.CanFundraise())
		})
	}
	assert.False(t, Plan("gold").Valid())
}

func TestEffectivePlanFallsBackAfterExpiry(t *testing.T) {
	now := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	u := &User{SubscriptionPlan: PlanPremium, SubscriptionExpiry: &past}
	assert.Equal(t, PlanFree, u.EffectivePlan(now))

	u.SubscriptionExpiry = &future
	assert.Equal(t, PlanPremium, u.EffectivePlan(now))

	u.SubscriptionExpiry = nil
	assert.Equal(t, PlanPremium, u.EffectivePlan(now))
}

func TestFundraiserProgress(t *testing.T) {
	f := &Fundraiser{TargetAmount: 1000, CurrentAmount: 250}
	assert.InDelta(t, 25.0, f.ProgressPercentage(), 1e-9)
	assert.False(t, f.TargetReached())

	f.CurrentAmount = 1500
	assert.InDelta(t, 100.0, f.ProgressPercentage(), 1e-9)
	assert.True(t, f.TargetReached())

	f.TargetAmount = 0
	assert.Zero(t, f.ProgressPercentage())
}

func TestBookingTransitions(t *testing.T) {
	assert.True(t, BookingPending.CanTransitionTo(BookingConfirmed))
	assert.True(t, BookingPending.CanTransitionTo(BookingCancelled))
	assert.False(t, BookingPending.CanTransitionTo(BookingCompleted))
	assert.True(t, BookingConfirmed.CanTransitionTo(BookingCompleted))
	assert.False(t, BookingCompleted.CanTransitionTo(BookingCancelled))
	assert.False(t, BookingCancelled.CanTransitionTo(BookingConfirmed))
}

func TestBeneficiaryList(t *testing.T) {
	w := &Will{Beneficiaries: json.RawMessage(`[{"name":"Amina","relationship":"daughter","share":"50%"},"bogus",{"name":"Otieno"}]`)}
	got := w.BeneficiaryList()
	assert.Equal(t, []Beneficiary{{Name: "Amina", Relationship: "daughter"}, {Name: "Otieno"}}, got)

	w.Beneficiaries = json.RawMessage(`{"name":"not a list"}`)
	assert.Nil(t, w.BeneficiaryList())
}

func TestFullName(t *testing.T) {
	assert.Equal(t, "Jane Wanjiru", (&User{FirstName: "Jane", LastName: "Wanjiru"}).FullName())
	assert.Equal(t, "Jane", (&User{FirstName: "Jane"}).FullName())
}

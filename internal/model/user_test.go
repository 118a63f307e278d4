package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParsePlan(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Plan
	}{
		{name: "monthly", in: "monthly", want: PlanMonthly},
		{name: "quarterly", in: "quarterly", want: PlanQuarterly},
		{name: "annual", in: "annual", want: PlanAnnual},
		{name: "portuguese quarterly", in: "trimestral", want: PlanQuarterly},
		{name: "portuguese annual", in: " Anual ", want: PlanAnnual},
		{name: "portuguese monthly", in: "mensal", want: PlanMonthly},
		{name: "empty falls back to monthly", in: "", want: PlanMonthly},
		{name: "unknown falls back to monthly", in: "weekly", want: PlanMonthly},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParsePlan(tt.in))
		})
	}
}

func TestPlan_ExpiresAt(t *testing.T) {
	from := time.Date(2025, time.March, 15, 14, 30, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2025, time.April, 15, 0, 0, 0, 0, time.UTC), PlanMonthly.ExpiresAt(from))
	assert.Equal(t, time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC), PlanQuarterly.ExpiresAt(from))
	assert.Equal(t, time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC), PlanAnnual.ExpiresAt(from))

	// Month overflow normalizes forward.
	endOfJan := time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC), PlanMonthly.ExpiresAt(endOfJan))
}

func TestUser_Expired(t *testing.T) {
	u := &User{ExpiresAt: time.Date(2025, time.May, 10, 0, 0, 0, 0, time.UTC)}

	assert.False(t, u.Expired(time.Date(2025, time.May, 10, 23, 0, 0, 0, time.UTC)))
	assert.True(t, u.Expired(time.Date(2025, time.May, 11, 0, 0, 1, 0, time.UTC)))

	u.IsAdmin = true
	assert.False(t, u.Expired(time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC)))
}

func TestHomeRoute(t *testing.T) {
	tests := []struct {
		user *User
		name string
		want string
	}{
		{name: "admin", user: &User{IsAdmin: true, BusinessTypeID: BusinessTypeBarbershop}, want: "/admin"},
		{name: "barbershop", user: &User{BusinessTypeID: BusinessTypeBarbershop}, want: "/dashboard/barbearia"},
		{name: "beauty salon", user: &User{BusinessTypeID: BusinessTypeBeautySalon}, want: "/dashboard/salao-beleza"},
		{name: "unknown type", user: &User{BusinessTypeID: "nope"}, want: "/dashboard"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HomeRoute(tt.user, DefaultBusinessTypes))
		})
	}
}

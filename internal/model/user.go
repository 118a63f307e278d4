package model

import (
	"strings"
	"time"
)

// Plan is the subscription tier a client pays for.
type Plan string

const (
	// PlanMonthly renews every month.
	PlanMonthly Plan = "monthly"
	// PlanQuarterly renews every three months.
	PlanQuarterly Plan = "quarterly"
	// PlanAnnual renews every year.
	PlanAnnual Plan = "annual"
)

// ParsePlan maps a plan name to a Plan. The Portuguese names used by older
// clients are accepted too. Unknown or empty names fall back to monthly.
func ParsePlan(name string) Plan {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case string(PlanQuarterly), "trimestral":
		return PlanQuarterly
	case string(PlanAnnual), "anual":
		return PlanAnnual
	default:
		return PlanMonthly
	}
}

// ExpiresAt returns the subscription expiry for a plan started at from.
// Month arithmetic normalizes overflow the same way time.AddDate does.
func (p Plan) ExpiresAt(from time.Time) time.Time {
	var t time.Time
	switch p {
	case PlanQuarterly:
		t = from.AddDate(0, 3, 0)
	case PlanAnnual:
		t = from.AddDate(1, 0, 0)
	default:
		t = from.AddDate(0, 1, 0)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// PaymentStatus tracks whether a client is paid up.
type PaymentStatus string

const (
	// PaymentActive means the subscription is current.
	PaymentActive PaymentStatus = "active"
	// PaymentOverdue means the expiry date has passed without renewal.
	PaymentOverdue PaymentStatus = "overdue"
	// PaymentCanceled means the client canceled.
	PaymentCanceled PaymentStatus = "canceled"
)

// User is a tenant account. ID is the row's primary key; ExternalID is the
// identifier assigned by the authentication provider.
type User struct {
	ExpiresAt      time.Time     `db:"expires_at" json:"expires_at"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
	ID             string        `db:"id" json:"id"`
	ExternalID     string        `db:"external_id" json:"external_id"`
	Name           string        `db:"name" json:"name"`
	Email          string        `db:"email" json:"email"`
	BusinessName   string        `db:"business_name" json:"business_name"`
	BusinessTypeID string        `db:"business_type_id" json:"business_type_id"`
	Plan           Plan          `db:"plan" json:"plan"`
	PaymentStatus  PaymentStatus `db:"payment_status" json:"payment_status"`
	IsAdmin        bool          `db:"is_admin" json:"is_admin"`
}

// Expired reports whether the subscription has lapsed as of now.
func (u *User) Expired(now time.Time) bool {
	return !u.IsAdmin && now.After(u.ExpiresAt.AddDate(0, 0, 1))
}

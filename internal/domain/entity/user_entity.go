package entity

import (
	"time"
)

// Role is the closed set of account roles.
type Role string

const (
	RoleFamily Role = "family"
	RoleVendor Role = "vendor"
	RoleAdmin  Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleFamily, RoleVendor, RoleAdmin:
		return true
	}
	return false
}

// User is the aggregate root for accounts.
// Passwords are stored as bcrypt hashes in PasswordHash.
type User struct {
	ID                 string
	Email              string
	Phone              string
	FirstName          string
	LastName           string
	PasswordHash       string
	Role               Role
	SubscriptionPlan   Plan
	SubscriptionExpiry *time.Time
	IsVerified         bool
	IsActive           bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// EffectivePlan falls back to the free tier once a paid subscription lapses.
func (u *User) EffectivePlan(now time.Time) Plan {
	if u.SubscriptionPlan != PlanFree && u.SubscriptionExpiry != nil && now.After(*u.SubscriptionExpiry) {
		return PlanFree
	}
	return u.SubscriptionPlan
}

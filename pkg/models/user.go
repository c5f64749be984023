package models

import "time"

type Tier string

const (
	TierFree    Tier = "free"
	TierPro     Tier = "pro"
	TierProPlus Tier = "pro_plus"
)

// tierQuotas holds the daily request quota of each tier.
var tierQuotas = map[Tier]int{
	TierFree:    20,
	TierPro:     500,
	TierProPlus: 2000,
}

// Quota returns the default daily request quota for the tier.
// Unknown tiers fall back to the free quota.
func (t Tier) Quota() int {
	if q, ok := tierQuotas[t]; ok {
		return q
	}
	return tierQuotas[TierFree]
}

func (t Tier) Valid() bool {
	_, ok := tierQuotas[t]
	return ok
}

// Paid reports whether the tier can be bought through billing.
func (t Tier) Paid() bool {
	return t == TierPro || t == TierProPlus
}

// User is the profile snapshot the backend returns and the client caches.
// RequestsUsed and RequestsTotal are nil when the server did not report them.
type User struct {
	ID            int64  `json:"id"`
	Email         string `json:"email"`
	Tier          Tier   `json:"tier"`
	RequestsUsed  *int   `json:"requestsUsed,omitempty"`
	RequestsTotal *int   `json:"requestsTotal,omitempty"`
}

// Clone returns a deep copy so cached profiles are never mutated in place.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.RequestsUsed != nil {
		v := *u.RequestsUsed
		c.RequestsUsed = &v
	}
	if u.RequestsTotal != nil {
		v := *u.RequestsTotal
		c.RequestsTotal = &v
	}
	return &c
}

// IntPtr is a helper for the optional counters.
func IntPtr(v int) *int {
	return &v
}

// Usage is the usage block of /auth/me.
type Usage struct {
	RequestsToday int `json:"requestsToday"`
	Limit         int `json:"limit"`
}

// AccountRecord is the development backend's view of an account.
type AccountRecord struct {
	User
	PasswordHash []byte
	DeviceID     string
	CreatedAt    time.Time
}

// PendingRegistration tracks an email between send-code and complete-registration.
type PendingRegistration struct {
	Email     string
	Code      string
	ExpiresAt time.Time
	Verified  bool
}

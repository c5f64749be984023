// Package usage tracks the daily request quota: it merges /auth/me responses
// into the cached profile and drives a credits indicator.
package usage

import "github.com/kamikazebr/iskra-desktop/pkg/models"

// EffectiveQuota is requestsTotal when reported, else the tier default.
func EffectiveQuota(u *models.User) int {
	if u == nil {
		return 0
	}
	if u.RequestsTotal != nil {
		return *u.RequestsTotal
	}
	return u.Tier.Quota()
}

// Used is requestsUsed when reported, else 0.
func Used(u *models.User) int {
	if u == nil || u.RequestsUsed == nil {
		return 0
	}
	return *u.RequestsUsed
}

// Remaining may be negative when the server over-counts.
func Remaining(u *models.User) int {
	return EffectiveQuota(u) - Used(u)
}

// Reconcile merges a /auth/me response into the cached profile and returns a
// new value. Server fields win; the usage block, when present, sets the
// counters; missing counters are filled from the tier table. A tier change
// without a reported total resets the total to the new tier's default. It returns nil
// only when neither side carries a profile.
func Reconcile(cached *models.User, me *models.MeResponse) *models.User {
	merged := cached.Clone()
	if me != nil && me.User != nil {
		if merged == nil {
			merged = &models.User{}
		}
		overlay(merged, me.User)
	}
	if merged == nil {
		return nil
	}
	if cached != nil && merged.Tier != cached.Tier && (me.User == nil || me.User.RequestsTotal == nil) {
		merged.RequestsTotal = nil
	}

	if me != nil && me.Usage != nil {
		merged.RequestsUsed = models.IntPtr(me.Usage.RequestsToday)
		if me.Usage.Limit > 0 {
			merged.RequestsTotal = models.IntPtr(me.Usage.Limit)
		}
	}
	return Backfill(merged)
}

func overlay(dst, src *models.User) {
	if src.ID != 0 {
		dst.ID = src.ID
	}
	if src.Email != "" {
		dst.Email = src.Email
	}
	if src.Tier != "" {
		dst.Tier = src.Tier
	}
	if src.RequestsUsed != nil {
		dst.RequestsUsed = models.IntPtr(*src.RequestsUsed)
	}
	if src.RequestsTotal != nil {
		dst.RequestsTotal = models.IntPtr(*src.RequestsTotal)
	}
}

// Backfill returns a copy with missing counters taken from the tier table.
func Backfill(u *models.User) *models.User {
	if u == nil {
		return nil
	}
	c := u.Clone()
	if c.Tier == "" {
		c.Tier = models.TierFree
	}
	if c.RequestsUsed == nil {
		c.RequestsUsed = models.IntPtr(0)
	}
	if c.RequestsTotal == nil {
		c.RequestsTotal = models.IntPtr(c.Tier.Quota())
	}
	return c
}

// Display is what an indicator renders.
type Display struct {
	Used      int
	Total     int
	Remaining int
	Tier      models.Tier
	Exhausted bool
}

func DisplayFor(u *models.User) Display {
	d := Display{
		Used:  Used(u),
		Total: EffectiveQuota(u),
		Tier:  u.Tier,
	}
	d.Remaining = d.Total - d.Used
	d.Exhausted = d.Remaining == 0
	return d
}

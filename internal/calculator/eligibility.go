package calculator

import (
	"time"

	"github.com/mmynk/bordertrade/internal/models"
)

// IneligibleReason explains why a resident cannot take an allocation.
type IneligibleReason string

const (
	ReasonInactive            IneligibleReason = "inactive"
	ReasonMonthlyLimitReached IneligibleReason = "monthly_limit_reached"
	ReasonDailyQuotaUsed      IneligibleReason = "daily_quota_used"
)

// Eligibility is the derived allocation status of one resident.
type Eligibility struct {
	Eligible bool             `json:"isEligible"`
	Reason   IneligibleReason `json:"ineligibleReason,omitempty"`
}

// CheckEligibility reports whether r may take an allocation on the day of asOf.
// Reasons are checked in order: inactive account, monthly cap, daily quota.
func CheckEligibility(r models.Resident, asOf time.Time) Eligibility {
	switch {
	case r.Status != models.ResidentActive:
		return Eligibility{Reason: ReasonInactive}
	case r.MonthlyUsageCount >= models.MonthlyUsageCap:
		return Eligibility{Reason: ReasonMonthlyLimitReached}
	case sameDay(r.LastAllocatedOn, asOf):
		return Eligibility{Reason: ReasonDailyQuotaUsed}
	}
	return Eligibility{Eligible: true}
}

// Member is a resident annotated with its eligibility.
type Member struct {
	models.Resident
	Eligibility
}

// GroupMembers returns the residents of groupID in pool order, each annotated
// with its eligibility as of asOf.
func GroupMembers(pool []models.Resident, groupID string, asOf time.Time) []Member {
	var members []Member
	for _, r := range pool {
		if r.GroupID != groupID {
			continue
		}
		members = append(members, Member{Resident: r, Eligibility: CheckEligibility(r, asOf)})
	}
	return members
}

func sameDay(a, b time.Time) bool {
	if a.IsZero() || b.IsZero() {
		return false
	}
	ay, am, ad := a.Date()
	by, bm, bd := b.In(a.Location()).Date()
	return ay == by && am == bm && ad == bd
}

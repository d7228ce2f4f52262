package models

import "time"

// MonthlyUsageCap is the number of allocations a resident may take per calendar month.
const MonthlyUsageCap = 12

// ResidentStatus is the verification state of a resident account.
type ResidentStatus string

const (
	ResidentActive        ResidentStatus = "active"
	ResidentPendingVerify ResidentStatus = "pending_verify"
	ResidentSuspended     ResidentStatus = "suspended"
)

// ResidentLevel is the membership tier of a resident.
type ResidentLevel string

const (
	LevelOrdinary ResidentLevel = "ordinary"
	LevelBronze   ResidentLevel = "bronze"
	LevelSilver   ResidentLevel = "silver"
	LevelGold     ResidentLevel = "gold"
	LevelBusiness ResidentLevel = "business"
	LevelPartner  ResidentLevel = "partner"
)

// Resident represents a registered border resident.
type Resident struct {
	// ID is the unique identifier for the resident (e.g., "R-092").
	ID string `json:"id" yaml:"id"`

	// Name is the resident's display name.
	Name string `json:"name" yaml:"name"`

	// IDCardMasked is the partially masked identity card number.
	IDCardMasked string `json:"idCard" yaml:"id_card"`

	// Level is the membership tier.
	Level ResidentLevel `json:"level" yaml:"level"`

	// GroupID references the mutual-aid group the resident belongs to.
	GroupID string `json:"groupId" yaml:"group_id"`

	// ActiveScore is the ranking weight used by automatic allocation.
	ActiveScore int `json:"activeScore" yaml:"active_score"`

	// MonthlyUsageCount is the number of allocations taken this month.
	// Bounded by MonthlyUsageCap.
	MonthlyUsageCount int `json:"monthlyUsageCount" yaml:"monthly_usage_count"`

	// Status is the account's verification state.
	Status ResidentStatus `json:"status" yaml:"status"`

	// CreditScore is the resident's credit rating.
	CreditScore int `json:"creditScore" yaml:"credit_score"`

	// JoinDate is the day the resident registered.
	JoinDate time.Time `json:"joinDate" yaml:"join_date"`

	// LastAllocatedOn is the day of the resident's last committed allocation.
	// Zero if the resident has never been allocated.
	LastAllocatedOn time.Time `json:"lastAllocatedOn,omitzero" yaml:"last_allocated_on"`
}

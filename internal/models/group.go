package models

import "github.com/shopspring/decimal"

// Group represents a mutual-aid group of residents.
// Residents are scoped to exactly one group; allocation always works on one group at a time.
type Group struct {
	// ID is the unique identifier for the group (e.g., "G-001").
	ID string `json:"id" yaml:"id"`

	// Name is the display name of the group.
	Name string `json:"name" yaml:"name"`

	// Leader is the name of the group leader.
	Leader string `json:"leader" yaml:"leader"`

	// MembersCount is the headcount reported for the group.
	MembersCount int `json:"membersCount" yaml:"members_count"`

	// Location is the border port or village the group operates from.
	Location string `json:"location" yaml:"location"`

	// Performance is the group's fulfilment score (0-100).
	Performance int `json:"performance" yaml:"performance"`

	// AvailableQuota is the remaining trade quota of the group in currency units.
	AvailableQuota decimal.Decimal `json:"availableQuota" yaml:"available_quota"`
}

package models

import "github.com/shopspring/decimal"

// ResidentRateType selects how the residents' share of the service fee is computed.
type ResidentRateType string

const (
	// RateFixed pays each resident a fixed amount per allocation line.
	RateFixed ResidentRateType = "fixed"
	// RateRatio pays residents a percentage of the total service fee.
	RateRatio ResidentRateType = "ratio"
)

// ProfitConfig describes how an order's service fee is shared between
// residents, their group and the cooperative agent.
type ProfitConfig struct {
	TotalServiceFee  decimal.Decimal  `json:"totalServiceFee"`
	ResidentRateType ResidentRateType `json:"residentRateType"`
	// ResidentValue is a currency amount for RateFixed and a percentage for RateRatio.
	ResidentValue decimal.Decimal `json:"residentValue"`
	GroupRatio    decimal.Decimal `json:"groupRatio"`
	AgentRatio    decimal.Decimal `json:"agentRatio"`
}

// DefaultProfitConfig mirrors the dashboard defaults: 20 per resident, 5% to the group.
func DefaultProfitConfig() ProfitConfig {
	return ProfitConfig{
		TotalServiceFee:  decimal.Zero,
		ResidentRateType: RateFixed,
		ResidentValue:    decimal.NewFromInt(20),
		GroupRatio:       decimal.NewFromInt(5),
		AgentRatio:       decimal.Zero,
	}
}

package calculator

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/mmynk/bordertrade/internal/models"
)

var ErrInvalidProfitConfig = errors.New("invalid profit configuration")

var hundred = decimal.NewFromInt(100)

// ProfitDistribution is how an order's service fee is shared out.
type ProfitDistribution struct {
	EstimatedResidents int             `json:"estResidents"`
	ResidentTotal      decimal.Decimal `json:"residentTotal"`
	GroupTotal         decimal.Decimal `json:"groupTotal"`
	AgentTotal         decimal.Decimal `json:"agentTotal"`
}

// DistributeProfit splits cfg.TotalServiceFee between residents, their group
// and the cooperative agent.
//
// Algorithm:
// - estimated residents = ceil(order total / split)
// - residents: fixed -> estimated x value, ratio -> fee x value%
// - group: fee x groupRatio%
// - agent: whatever is left, never below zero
func DistributeProfit(order models.Order, cfg models.ProfitConfig, split decimal.Decimal) (ProfitDistribution, error) {
	est, err := RequiredLines(order.TotalAmount, split)
	if err != nil {
		return ProfitDistribution{}, err
	}
	if cfg.TotalServiceFee.IsNegative() || cfg.ResidentValue.IsNegative() || cfg.GroupRatio.IsNegative() {
		return ProfitDistribution{}, ErrInvalidProfitConfig
	}

	var residentTotal decimal.Decimal
	switch cfg.ResidentRateType {
	case models.RateFixed:
		residentTotal = cfg.ResidentValue.Mul(decimal.NewFromInt(int64(est)))
	case models.RateRatio:
		residentTotal = cfg.TotalServiceFee.Mul(cfg.ResidentValue).Div(hundred)
	default:
		return ProfitDistribution{}, ErrInvalidProfitConfig
	}

	groupTotal := cfg.TotalServiceFee.Mul(cfg.GroupRatio).Div(hundred)
	agentTotal := decimal.Max(decimal.Zero, cfg.TotalServiceFee.Sub(residentTotal).Sub(groupTotal))

	return ProfitDistribution{
		EstimatedResidents: est,
		ResidentTotal:      residentTotal,
		GroupTotal:         groupTotal,
		AgentTotal:         agentTotal,
	}, nil
}

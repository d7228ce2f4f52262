package service

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/bordertrade/internal/calculator"
	"github.com/mmynk/bordertrade/internal/grab"
	"github.com/mmynk/bordertrade/internal/models"
)

// PreviewAllocationRequest asks for a preview of one order. Options are
// applied over the order's default allocation config.
type PreviewAllocationRequest struct {
	OrderID string                       `json:"orderId"`
	Options calculator.AllocationOptions `json:"options"`
}

type PreviewAllocationResponse struct {
	Preview *calculator.AllocationPreview `json:"preview"`
}

// DistributeProfitRequest asks how an order's service fee would be shared.
// A nil SplitValue or Config takes the platform defaults.
type DistributeProfitRequest struct {
	OrderID    string               `json:"orderId"`
	SplitValue *decimal.Decimal     `json:"splitValue,omitempty"`
	Config     *models.ProfitConfig `json:"config,omitempty"`
}

type DistributeProfitResponse struct {
	Distribution calculator.ProfitDistribution `json:"distribution"`
}

type PublishGrabRequest struct {
	OrderID    string          `json:"orderId"`
	GroupID    string          `json:"groupId"`
	SplitValue decimal.Decimal `json:"splitValue"`
	Count      int             `json:"count"`
	Fee        decimal.Decimal `json:"fee"`
}

type PublishGrabResponse struct {
	Board grab.Board `json:"board"`
}

type ClaimGrabRequest struct {
	BoardID    string `json:"boardId"`
	ResidentID string `json:"residentId"`
}

type ClaimGrabResponse struct {
	Board grab.Board `json:"board"`
	Event grab.Event `json:"event"`
}

type GetGrabBoardResponse struct {
	Board  grab.Board   `json:"board"`
	Events []grab.Event `json:"events"`
}

type ListGrabBoardsResponse struct {
	Boards []grab.Board `json:"boards"`
}

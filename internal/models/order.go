package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderPendingDeposit OrderStatus = "pending_deposit"
	OrderProcessing     OrderStatus = "processing"
	OrderCleared        OrderStatus = "cleared"
	OrderSettled        OrderStatus = "settled"
	OrderMatching       OrderStatus = "matching"
	OrderAssigned       OrderStatus = "assigned"
	OrderCompleted      OrderStatus = "completed"
	OrderCancelled      OrderStatus = "cancelled"
)

var orderStatusLabels = map[OrderStatus]string{
	OrderPendingDeposit: "待缴保证金",
	OrderProcessing:     "处理中",
	OrderCleared:        "已清关",
	OrderSettled:        "已结算",
	OrderMatching:       "匹配中",
	OrderAssigned:       "已派单",
	OrderCompleted:      "已履约",
	OrderCancelled:      "已取消",
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	_, ok := orderStatusLabels[s]
	return ok
}

// Label returns the display label shown on the dashboard.
func (s OrderStatus) Label() string {
	if l, ok := orderStatusLabels[s]; ok {
		return l
	}
	return string(s)
}

// Order represents a bulk import order placed by an enterprise.
type Order struct {
	// ID is the order number (e.g., "ORD-20231026-001").
	ID string `json:"id" yaml:"id"`

	// ProductName describes the goods being imported.
	ProductName string `json:"productName" yaml:"product_name"`

	// EnterpriseID references the purchasing enterprise.
	EnterpriseID string `json:"enterpriseId" yaml:"enterprise_id"`

	// EnterpriseName is the purchasing enterprise's display name.
	EnterpriseName string `json:"enterpriseName" yaml:"enterprise_name"`

	// Quantity is the order weight in tonnes.
	Quantity float64 `json:"quantity" yaml:"quantity"`

	// TotalAmount is the order value in currency units.
	TotalAmount decimal.Decimal `json:"totalAmount" yaml:"total_amount"`

	// Date is the day the order was declared.
	Date time.Time `json:"date" yaml:"date"`

	// Status is the order's lifecycle state.
	Status OrderStatus `json:"status" yaml:"status"`

	// SplitCount is the number of committed sub-orders. Zero means not yet split.
	SplitCount int `json:"splitCount" yaml:"split_count"`

	// DepositPaid records whether the enterprise has paid the deposit.
	DepositPaid bool `json:"depositPaid" yaml:"deposit_paid"`
}

// IsSplit reports whether the order has been divided into sub-orders.
func (o *Order) IsSplit() bool {
	return o.SplitCount > 0
}

// SubOrderStatus is the state of a committed allocation line.
type SubOrderStatus string

const (
	SubOrderPending   SubOrderStatus = "pending"
	SubOrderConfirmed SubOrderStatus = "confirmed"
)

// SubOrder is one committed allocation line of an order, bound to a resident.
// Sub-orders are written when a grab slot is claimed; previews never create them.
type SubOrder struct {
	ID                string          `json:"id" yaml:"id"`
	ParentOrderID     string          `json:"parentOrderId" yaml:"parent_order_id"`
	ResidentID        string          `json:"residentId" yaml:"resident_id"`
	ResidentName      string          `json:"residentName" yaml:"resident_name"`
	ResidentIDDisplay string          `json:"residentIdDisplay" yaml:"resident_id_display"`
	Amount            decimal.Decimal `json:"amount" yaml:"amount"`
	Status            SubOrderStatus  `json:"status" yaml:"status"`
	GroupName         string          `json:"groupName" yaml:"group_name"`
	CreatedAt         int64           `json:"createdAt" yaml:"created_at"`
}

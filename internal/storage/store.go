// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/bordertrade/internal/models"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique key is already taken.
	ErrDuplicate = errors.New("record already exists")
	// ErrQuotaExhausted is returned when a claim would exceed a resident's monthly cap.
	ErrQuotaExhausted = errors.New("resident monthly quota exhausted")
)

// Stats is the dashboard headline summary for one day.
type Stats struct {
	TodayGMV        decimal.Decimal `json:"todayGmv"`
	ActiveResidents int             `json:"activeResidents"`
	RiskAlerts      int             `json:"riskAlerts"`
	ConversionCount int             `json:"conversionCount"`
}

// Claim is a committed allocation: one resident taking one slot of an order.
type Claim struct {
	OrderID    string
	ResidentID string
	Amount     decimal.Decimal
	ClaimedAt  time.Time
}

// Store defines the interface for platform storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	// CreateUser persists a new user. Fails if the username is taken.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByUsername returns ErrNotFound if no such user exists.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// GetUserByID returns ErrNotFound if no such user exists.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// SaveGroup inserts or replaces a group.
	SaveGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group by its ID.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroups returns all groups ordered by ID.
	ListGroups(ctx context.Context) ([]*models.Group, error)

	// SaveResident inserts or replaces a resident.
	SaveResident(ctx context.Context, resident *models.Resident) error

	// GetResident retrieves a resident by its ID.
	GetResident(ctx context.Context, residentID string) (*models.Resident, error)

	// ListResidents returns residents ordered by ID.
	// An empty groupID lists residents of every group.
	ListResidents(ctx context.Context, groupID string) ([]models.Resident, error)

	// ResetMonthlyUsage zeroes every resident's monthly usage count and
	// returns how many residents were changed.
	ResetMonthlyUsage(ctx context.Context) (int64, error)

	// SaveOrder inserts or replaces an order.
	SaveOrder(ctx context.Context, order *models.Order) error

	// GetOrder retrieves an order by its ID.
	GetOrder(ctx context.Context, orderID string) (*models.Order, error)

	// ListOrders returns orders newest first. An empty status lists all orders.
	ListOrders(ctx context.Context, status models.OrderStatus) ([]*models.Order, error)

	// SaveSubOrder inserts or replaces a sub-order.
	SaveSubOrder(ctx context.Context, sub *models.SubOrder) error

	// ListSubOrders returns the sub-orders of an order, oldest first.
	ListSubOrders(ctx context.Context, orderID string) ([]*models.SubOrder, error)

	// RecordClaim commits a claim: it writes a confirmed sub-order, bumps the
	// order's split count and the resident's monthly usage, and stamps the
	// resident's last allocation day, all in one transaction.
	RecordClaim(ctx context.Context, claim Claim) (*models.SubOrder, error)

	// Stats summarises the platform for the calendar day of day.
	Stats(ctx context.Context, day time.Time) (*Stats, error)

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/bordertrade/internal/models"
	"github.com/mmynk/bordertrade/internal/storage"
)

const orderColumns = `id, product_name, enterprise_id, enterprise_name, quantity, total_amount,
	order_date, status, split_count, deposit_paid`

const subOrderColumns = `id, parent_order_id, resident_id, resident_name, resident_id_display,
	amount, status, group_name, created_at`

// SaveOrder inserts or replaces an order.
func (s *SQLiteStore) SaveOrder(ctx context.Context, o *models.Order) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO orders (`+orderColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.ProductName, o.EnterpriseID, o.EnterpriseName, o.Quantity, o.TotalAmount.String(),
		o.Date.Format(dayLayout), string(o.Status), o.SplitCount, boolToInt(o.DepositPaid),
	)
	if err != nil {
		return fmt.Errorf("failed to save order: %w", err)
	}
	return nil
}

// GetOrder retrieves an order by ID.
func (s *SQLiteStore) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	o, err := scanOrder(s.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = ?`, orderID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: order %s", storage.ErrNotFound, orderID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return o, nil
}

// ListOrders returns orders newest first, optionally filtered by status.
func (s *SQLiteStore) ListOrders(ctx context.Context, status models.OrderStatus) ([]*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY order_date DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []*models.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate orders: %w", err)
	}
	return orders, nil
}

// SaveSubOrder inserts or replaces a sub-order.
func (s *SQLiteStore) SaveSubOrder(ctx context.Context, sub *models.SubOrder) error {
	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	if sub.CreatedAt == 0 {
		sub.CreatedAt = time.Now().Unix()
	}
	return saveSubOrder(ctx, s.db, sub)
}

// ListSubOrders returns the sub-orders of an order, oldest first.
func (s *SQLiteStore) ListSubOrders(ctx context.Context, orderID string) ([]*models.SubOrder, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+subOrderColumns+` FROM sub_orders WHERE parent_order_id = ? ORDER BY created_at, id`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list sub-orders: %w", err)
	}
	defer rows.Close()

	subs := []*models.SubOrder{}
	for rows.Next() {
		sub := &models.SubOrder{}
		var status string
		if err := rows.Scan(&sub.ID, &sub.ParentOrderID, &sub.ResidentID, &sub.ResidentName,
			&sub.ResidentIDDisplay, &sub.Amount, &status, &sub.GroupName, &sub.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sub-order: %w", err)
		}
		sub.Status = models.SubOrderStatus(status)
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sub-orders: %w", err)
	}
	return subs, nil
}

// RecordClaim commits a claimed allocation slot in one transaction.
func (s *SQLiteStore) RecordClaim(ctx context.Context, claim storage.Claim) (*models.SubOrder, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	r, err := scanResident(tx.QueryRowContext(ctx,
		`SELECT `+residentColumns+` FROM residents WHERE id = ?`, claim.ResidentID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: resident %s", storage.ErrNotFound, claim.ResidentID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get resident: %w", err)
	}

	var groupName string
	err = tx.QueryRowContext(ctx, `SELECT name FROM groups WHERE id = ?`, r.GroupID).Scan(&groupName)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE orders SET split_count = split_count + 1 WHERE id = ?`, claim.OrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("%w: order %s", storage.ErrNotFound, claim.OrderID)
	}

	res, err = tx.ExecContext(ctx,
		`UPDATE residents SET monthly_usage_count = monthly_usage_count + 1, last_allocated_on = ?
		 WHERE id = ? AND monthly_usage_count < ?`,
		formatDay(claim.ClaimedAt), claim.ResidentID, models.MonthlyUsageCap,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update resident: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("%w: resident %s", storage.ErrQuotaExhausted, claim.ResidentID)
	}

	sub := &models.SubOrder{
		ID:                uuid.New().String(),
		ParentOrderID:     claim.OrderID,
		ResidentID:        r.ID,
		ResidentName:      r.Name,
		ResidentIDDisplay: r.IDCardMasked,
		Amount:            claim.Amount,
		Status:            models.SubOrderConfirmed,
		GroupName:         groupName,
		CreatedAt:         claim.ClaimedAt.Unix(),
	}
	if err := saveSubOrder(ctx, tx, sub); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return sub, nil
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func saveSubOrder(ctx context.Context, db execer, sub *models.SubOrder) error {
	_, err := db.ExecContext(ctx,
		`INSERT OR REPLACE INTO sub_orders (`+subOrderColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sub.ID, sub.ParentOrderID, sub.ResidentID, sub.ResidentName, sub.ResidentIDDisplay,
		sub.Amount.String(), string(sub.Status), sub.GroupName, sub.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save sub-order: %w", err)
	}
	return nil
}

func scanOrder(row rowScanner) (*models.Order, error) {
	o := &models.Order{}
	var day, status string
	var deposit int
	if err := row.Scan(&o.ID, &o.ProductName, &o.EnterpriseID, &o.EnterpriseName, &o.Quantity,
		&o.TotalAmount, &day, &status, &o.SplitCount, &deposit); err != nil {
		return nil, err
	}
	date, err := time.Parse(dayLayout, day)
	if err != nil {
		return nil, fmt.Errorf("failed to parse order date %q: %w", day, err)
	}
	o.Date = date
	o.Status = models.OrderStatus(status)
	o.DepositPaid = deposit != 0
	return o, nil
}

package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/bordertrade/internal/models"
	"github.com/mmynk/bordertrade/internal/storage"
)

// Stats summarises the platform for the calendar day of day.
//
// Risk alerts count residents that are suspended or have hit the monthly cap;
// conversions count every committed sub-order.
func (s *SQLiteStore) Stats(ctx context.Context, day time.Time) (*storage.Stats, error) {
	stats := &storage.Stats{TodayGMV: decimal.Zero}

	rows, err := s.db.QueryContext(ctx,
		`SELECT total_amount FROM orders WHERE order_date = ? AND status != ?`,
		day.Format(dayLayout), string(models.OrderCancelled),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query today's orders: %w", err)
	}
	for rows.Next() {
		var amount decimal.Decimal
		if err := rows.Scan(&amount); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan order amount: %w", err)
		}
		stats.TodayGMV = stats.TodayGMV.Add(amount)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate order amounts: %w", err)
	}

	err = s.db.QueryRowContext(ctx,
		`SELECT
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = ? OR monthly_usage_count >= ? THEN 1 ELSE 0 END), 0)
		 FROM residents`,
		string(models.ResidentActive), string(models.ResidentSuspended), models.MonthlyUsageCap,
	).Scan(&stats.ActiveResidents, &stats.RiskAlerts)
	if err != nil {
		return nil, fmt.Errorf("failed to count residents: %w", err)
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sub_orders`).Scan(&stats.ConversionCount); err != nil {
		return nil, fmt.Errorf("failed to count sub-orders: %w", err)
	}

	return stats, nil
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mmynk/bordertrade/internal/models"
	"github.com/mmynk/bordertrade/internal/storage"
)

const residentColumns = `id, name, id_card, level, group_id, active_score, monthly_usage_count,
	status, credit_score, join_date, last_allocated_on`

// SaveResident inserts or replaces a resident.
func (s *SQLiteStore) SaveResident(ctx context.Context, r *models.Resident) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO residents (`+residentColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Name, r.IDCardMasked, string(r.Level), r.GroupID, r.ActiveScore, r.MonthlyUsageCount,
		string(r.Status), r.CreditScore, formatDay(r.JoinDate), formatDay(r.LastAllocatedOn),
	)
	if err != nil {
		return fmt.Errorf("failed to save resident: %w", err)
	}
	return nil
}

// GetResident retrieves a resident by ID.
func (s *SQLiteStore) GetResident(ctx context.Context, residentID string) (*models.Resident, error) {
	r, err := scanResident(s.db.QueryRowContext(ctx,
		`SELECT `+residentColumns+` FROM residents WHERE id = ?`, residentID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: resident %s", storage.ErrNotFound, residentID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get resident: %w", err)
	}
	return r, nil
}

// ListResidents returns residents ordered by ID, optionally scoped to one group.
func (s *SQLiteStore) ListResidents(ctx context.Context, groupID string) ([]models.Resident, error) {
	query := `SELECT ` + residentColumns + ` FROM residents`
	var args []any
	if groupID != "" {
		query += ` WHERE group_id = ?`
		args = append(args, groupID)
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list residents: %w", err)
	}
	defer rows.Close()

	residents := []models.Resident{}
	for rows.Next() {
		r, err := scanResident(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan resident: %w", err)
		}
		residents = append(residents, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate residents: %w", err)
	}
	return residents, nil
}

// ResetMonthlyUsage zeroes the monthly usage count of every resident.
func (s *SQLiteStore) ResetMonthlyUsage(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE residents SET monthly_usage_count = 0 WHERE monthly_usage_count > 0`)
	if err != nil {
		return 0, fmt.Errorf("failed to reset monthly usage: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count reset residents: %w", err)
	}
	return n, nil
}

func scanResident(row rowScanner) (*models.Resident, error) {
	r := &models.Resident{}
	var level, status string
	var joinDate, lastAllocated sql.NullString
	if err := row.Scan(&r.ID, &r.Name, &r.IDCardMasked, &level, &r.GroupID, &r.ActiveScore,
		&r.MonthlyUsageCount, &status, &r.CreditScore, &joinDate, &lastAllocated); err != nil {
		return nil, err
	}
	r.Level = models.ResidentLevel(level)
	r.Status = models.ResidentStatus(status)

	var err error
	if r.JoinDate, err = parseDay(joinDate); err != nil {
		return nil, err
	}
	if r.LastAllocatedOn, err = parseDay(lastAllocated); err != nil {
		return nil, err
	}
	return r, nil
}

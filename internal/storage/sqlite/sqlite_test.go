package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/bordertrade/internal/models"
	"github.com/mmynk/bordertrade/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	// Create temp directory for test database
	tempDir, err := os.MkdirTemp("", "bordertrade-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func seedGroup(t *testing.T, store *SQLiteStore) {
	t.Helper()
	ctx := context.Background()

	group := &models.Group{ID: "G-001", Name: "弄岛互助组", Leader: "岩帕", Location: "靖西龙邦",
		AvailableQuota: decimal.NewFromInt(360000)}
	if err := store.SaveGroup(ctx, group); err != nil {
		t.Fatalf("SaveGroup failed: %v", err)
	}

	residents := []*models.Resident{
		{ID: "R-092", Name: "岩帕", IDCardMasked: "5331021985********", GroupID: "G-001",
			ActiveScore: 98, MonthlyUsageCount: 8, Status: models.ResidentActive,
			JoinDate: time.Date(2021, 3, 15, 0, 0, 0, 0, time.UTC)},
		{ID: "R-093", Name: "玉香", GroupID: "G-001", ActiveScore: 91, MonthlyUsageCount: 11,
			Status: models.ResidentActive},
		{ID: "R-097", Name: "玉波", GroupID: "G-001", ActiveScore: 64, Status: models.ResidentSuspended},
	}
	for _, r := range residents {
		if err := store.SaveResident(ctx, r); err != nil {
			t.Fatalf("SaveResident failed: %v", err)
		}
	}
}

func TestSQLiteStore(t *testing.T) {
	store := newTestStore(t)
	seedGroup(t, store)
	ctx := context.Background()

	day := time.Date(2023, 10, 26, 0, 0, 0, 0, time.UTC)
	orders := []*models.Order{
		{ID: "ORD-1", ProductName: "腰果", EnterpriseID: "E-001", EnterpriseName: "鑫源",
			Quantity: 32, TotalAmount: decimal.NewFromInt(2560000), Date: day,
			Status: models.OrderProcessing, DepositPaid: true},
		{ID: "ORD-2", ProductName: "火龙果", EnterpriseID: "E-002", EnterpriseName: "百色",
			Quantity: 6, TotalAmount: decimal.RequireFromString("48000.50"), Date: day.AddDate(0, 0, -1),
			Status: models.OrderMatching},
		{ID: "ORD-3", ProductName: "木薯", EnterpriseID: "E-001", EnterpriseName: "鑫源",
			Quantity: 2, TotalAmount: decimal.NewFromInt(999), Date: day,
			Status: models.OrderCancelled},
	}
	for _, o := range orders {
		if err := store.SaveOrder(ctx, o); err != nil {
			t.Fatalf("SaveOrder failed: %v", err)
		}
	}

	t.Run("GetOrder round-trips decimal amounts", func(t *testing.T) {
		got, err := store.GetOrder(ctx, "ORD-2")
		if err != nil {
			t.Fatalf("GetOrder failed: %v", err)
		}
		if !got.TotalAmount.Equal(decimal.RequireFromString("48000.5")) {
			t.Errorf("TotalAmount mismatch: got %s, want 48000.5", got.TotalAmount)
		}
		if !got.Date.Equal(day.AddDate(0, 0, -1)) {
			t.Errorf("Date mismatch: got %s", got.Date)
		}
		if got.DepositPaid {
			t.Error("Expected DepositPaid to be false")
		}
	})

	t.Run("GetOrder returns ErrNotFound for nonexistent order", func(t *testing.T) {
		_, err := store.GetOrder(ctx, "nonexistent-id")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ListOrders is newest first and filters by status", func(t *testing.T) {
		all, err := store.ListOrders(ctx, "")
		if err != nil {
			t.Fatalf("ListOrders failed: %v", err)
		}
		if len(all) != 3 {
			t.Fatalf("Expected 3 orders, got %d", len(all))
		}
		if all[len(all)-1].ID != "ORD-2" {
			t.Errorf("Expected oldest order last, got %s", all[len(all)-1].ID)
		}

		matching, err := store.ListOrders(ctx, models.OrderMatching)
		if err != nil {
			t.Fatalf("ListOrders failed: %v", err)
		}
		if len(matching) != 1 || matching[0].ID != "ORD-2" {
			t.Errorf("Expected only ORD-2, got %d orders", len(matching))
		}
	})

	t.Run("ListResidents scopes by group", func(t *testing.T) {
		residents, err := store.ListResidents(ctx, "G-001")
		if err != nil {
			t.Fatalf("ListResidents failed: %v", err)
		}
		if len(residents) != 3 {
			t.Fatalf("Expected 3 residents, got %d", len(residents))
		}
		if residents[0].ID != "R-092" || residents[0].JoinDate.IsZero() {
			t.Errorf("Expected R-092 with join date first, got %+v", residents[0])
		}

		none, err := store.ListResidents(ctx, "G-404")
		if err != nil {
			t.Fatalf("ListResidents failed: %v", err)
		}
		if len(none) != 0 {
			t.Errorf("Expected no residents, got %d", len(none))
		}
	})

	t.Run("RecordClaim commits a sub-order", func(t *testing.T) {
		claimedAt := day.Add(10 * time.Hour)
		sub, err := store.RecordClaim(ctx, storage.Claim{
			OrderID:    "ORD-1",
			ResidentID: "R-092",
			Amount:     decimal.NewFromInt(8000),
			ClaimedAt:  claimedAt,
		})
		if err != nil {
			t.Fatalf("RecordClaim failed: %v", err)
		}
		if sub.ID == "" || sub.GroupName != "弄岛互助组" || sub.Status != models.SubOrderConfirmed {
			t.Errorf("Unexpected sub-order: %+v", sub)
		}

		order, _ := store.GetOrder(ctx, "ORD-1")
		if order.SplitCount != 1 {
			t.Errorf("SplitCount mismatch: got %d, want 1", order.SplitCount)
		}

		r, _ := store.GetResident(ctx, "R-092")
		if r.MonthlyUsageCount != 9 {
			t.Errorf("MonthlyUsageCount mismatch: got %d, want 9", r.MonthlyUsageCount)
		}
		if r.LastAllocatedOn.Format(dayLayout) != "2023-10-26" {
			t.Errorf("LastAllocatedOn mismatch: got %s", r.LastAllocatedOn)
		}

		subs, err := store.ListSubOrders(ctx, "ORD-1")
		if err != nil {
			t.Fatalf("ListSubOrders failed: %v", err)
		}
		if len(subs) != 1 || !subs[0].Amount.Equal(decimal.NewFromInt(8000)) {
			t.Errorf("Expected one 8000 sub-order, got %+v", subs)
		}
	})

	t.Run("RecordClaim refuses a resident at the monthly cap", func(t *testing.T) {
		claim := storage.Claim{OrderID: "ORD-1", ResidentID: "R-093",
			Amount: decimal.NewFromInt(8000), ClaimedAt: day}
		if _, err := store.RecordClaim(ctx, claim); err != nil {
			t.Fatalf("RecordClaim failed: %v", err)
		}
		_, err := store.RecordClaim(ctx, claim)
		if !errors.Is(err, storage.ErrQuotaExhausted) {
			t.Errorf("Expected ErrQuotaExhausted, got %v", err)
		}

		order, _ := store.GetOrder(ctx, "ORD-1")
		if order.SplitCount != 2 {
			t.Errorf("Rolled-back claim changed SplitCount: got %d, want 2", order.SplitCount)
		}
	})

	t.Run("RecordClaim on a missing order", func(t *testing.T) {
		_, err := store.RecordClaim(ctx, storage.Claim{OrderID: "ORD-404", ResidentID: "R-092",
			Amount: decimal.NewFromInt(8000), ClaimedAt: day})
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Stats aggregates the day", func(t *testing.T) {
		stats, err := store.Stats(ctx, day)
		if err != nil {
			t.Fatalf("Stats failed: %v", err)
		}
		if !stats.TodayGMV.Equal(decimal.NewFromInt(2560000)) {
			t.Errorf("TodayGMV mismatch: got %s, want 2560000", stats.TodayGMV)
		}
		if stats.ActiveResidents != 2 {
			t.Errorf("ActiveResidents mismatch: got %d, want 2", stats.ActiveResidents)
		}
		// R-097 is suspended and R-093 reached the cap through the claims above.
		if stats.RiskAlerts != 2 {
			t.Errorf("RiskAlerts mismatch: got %d, want 2", stats.RiskAlerts)
		}
		if stats.ConversionCount != 2 {
			t.Errorf("ConversionCount mismatch: got %d, want 2", stats.ConversionCount)
		}
	})

	t.Run("ResetMonthlyUsage zeroes counters", func(t *testing.T) {
		n, err := store.ResetMonthlyUsage(ctx)
		if err != nil {
			t.Fatalf("ResetMonthlyUsage failed: %v", err)
		}
		if n != 2 {
			t.Errorf("Expected 2 residents reset, got %d", n)
		}
		r, _ := store.GetResident(ctx, "R-093")
		if r.MonthlyUsageCount != 0 {
			t.Errorf("MonthlyUsageCount mismatch: got %d, want 0", r.MonthlyUsageCount)
		}
	})
}

func TestSQLiteStore_Users(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := models.NewUser("agent01", "张三", models.RoleAgent, "hash")
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	t.Run("GetUserByUsername", func(t *testing.T) {
		got, err := store.GetUserByUsername(ctx, "agent01")
		if err != nil {
			t.Fatalf("GetUserByUsername failed: %v", err)
		}
		if got.ID != user.ID || got.Role != models.RoleAgent || got.RealName != "张三" {
			t.Errorf("Unexpected user: %+v", got)
		}
	})

	t.Run("GetUserByID for unknown user", func(t *testing.T) {
		_, err := store.GetUserByID(ctx, "missing")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("duplicate username", func(t *testing.T) {
		dup := models.NewUser("agent01", "李四", models.RoleEnterprise, "hash")
		err := store.CreateUser(ctx, dup)
		if !errors.Is(err, storage.ErrDuplicate) {
			t.Errorf("Expected ErrDuplicate, got %v", err)
		}
	})
}

func TestSQLiteStore_Pragmas(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Ping(ctx); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}

	var fk int
	if err := store.db.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("PRAGMA foreign_keys failed: %v", err)
	}
	if fk != 1 {
		t.Errorf("foreign_keys = %d, want 1", fk)
	}

	var mode string
	if err := store.db.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("PRAGMA journal_mode failed: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}
}

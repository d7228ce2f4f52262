package seed

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/bordertrade/internal/models"
	"github.com/mmynk/bordertrade/internal/storage/sqlite"
)

func TestDefaultFixtures(t *testing.T) {
	f, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	if len(f.Groups) == 0 || len(f.Residents) == 0 || len(f.Orders) == 0 {
		t.Fatalf("expected non-empty fixtures, got %d groups, %d residents, %d orders",
			len(f.Groups), len(f.Residents), len(f.Orders))
	}

	order := f.Orders[0]
	if order.ID != "ORD-20231026-001" {
		t.Errorf("first order = %s, want ORD-20231026-001", order.ID)
	}
	if !order.TotalAmount.Equal(decimal.NewFromInt(2560000)) {
		t.Errorf("total amount = %s, want 2560000", order.TotalAmount)
	}
	if order.Status != models.OrderProcessing {
		t.Errorf("status = %s, want %s", order.Status, models.OrderProcessing)
	}
	if order.Date.Format("2006-01-02") != "2023-10-26" {
		t.Errorf("date = %s, want 2023-10-26", order.Date)
	}

	if r := f.Residents[0]; r.ID != "R-092" || r.ActiveScore != 98 || r.JoinDate.IsZero() {
		t.Errorf("first resident = %+v, want R-092 with score 98 and a join date", r)
	}
}

func TestApplyIfEmpty(t *testing.T) {
	store, err := sqlite.New(filepath.Join(t.TempDir(), "seed.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	f, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}

	applied, err := ApplyIfEmpty(ctx, store, f)
	if err != nil {
		t.Fatalf("ApplyIfEmpty() error = %v", err)
	}
	if !applied {
		t.Fatal("expected fixtures to be applied to an empty store")
	}

	residents, err := store.ListResidents(ctx, "")
	if err != nil {
		t.Fatalf("ListResidents() error = %v", err)
	}
	if len(residents) != len(f.Residents) {
		t.Errorf("got %d residents, want %d", len(residents), len(f.Residents))
	}

	applied, err = ApplyIfEmpty(ctx, store, f)
	if err != nil {
		t.Fatalf("second ApplyIfEmpty() error = %v", err)
	}
	if applied {
		t.Error("expected fixtures to be skipped on a populated store")
	}
}

package calculator

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"github.com/mmynk/bordertrade/internal/models"
)

var today = time.Date(2023, 10, 26, 9, 30, 0, 0, time.UTC)

func cashewOrder(total int64) models.Order {
	return models.Order{
		ID:             "ORD-20231026-001",
		ProductName:    "越南去皮干腰果 (W320)",
		EnterpriseName: "鑫源坚果加工有限公司",
		TotalAmount:    decimal.NewFromInt(total),
		Status:         models.OrderProcessing,
	}
}

func resident(id string, score int) models.Resident {
	return models.Resident{
		ID:          id,
		Name:        "name-" + id,
		GroupID:     "G-001",
		ActiveScore: score,
		Status:      models.ResidentActive,
	}
}

func autoConfig() AllocationConfig {
	return AllocationConfig{
		Mode:        ModeAuto,
		SplitValue:  DefaultSplitValue,
		GroupID:     "G-001",
		ResidentFee: decimal.NewFromInt(20),
		AsOf:        today,
	}
}

func lineIDs(p *AllocationPreview) []string {
	ids := make([]string, len(p.Lines))
	for i, l := range p.Lines {
		ids[i] = l.ID
	}
	return ids
}

func TestPreviewAllocation_Auto(t *testing.T) {
	suspended := resident("R-010", 99)
	suspended.Status = models.ResidentSuspended
	capped := resident("R-011", 98)
	capped.MonthlyUsageCount = models.MonthlyUsageCap
	usedToday := resident("R-012", 97)
	usedToday.LastAllocatedOn = today.Add(-2 * time.Hour)
	usedYesterday := resident("R-013", 40)
	usedYesterday.LastAllocatedOn = today.AddDate(0, 0, -1)
	otherGroup := resident("R-014", 100)
	otherGroup.GroupID = "G-002"

	tests := []struct {
		name      string
		total     int64
		pool      []models.Resident
		wantIDs   []string
		wantTotal int64
		wantDiff  int64
		wantValid bool
	}{
		{
			name:      "exact cover ranks by activity score",
			total:     24000,
			pool:      []models.Resident{resident("R-001", 50), resident("R-002", 90), resident("R-003", 70), resident("R-004", 10)},
			wantIDs:   []string{"R-002", "R-003", "R-001"},
			wantTotal: 24000,
			wantDiff:  0,
			wantValid: true,
		},
		{
			name:      "ceil rounds up and overflow stays under one split",
			total:     20000,
			pool:      []models.Resident{resident("R-001", 50), resident("R-002", 90), resident("R-003", 70), resident("R-004", 10)},
			wantIDs:   []string{"R-002", "R-003", "R-001"},
			wantTotal: 24000,
			wantDiff:  -4000,
			wantValid: true,
		},
		{
			name:      "ties broken by resident ID",
			total:     16000,
			pool:      []models.Resident{resident("R-009", 80), resident("R-003", 80), resident("R-005", 80)},
			wantIDs:   []string{"R-003", "R-005"},
			wantTotal: 16000,
			wantDiff:  0,
			wantValid: true,
		},
		{
			name:      "ineligible and foreign residents never appear",
			total:     40000,
			pool:      []models.Resident{suspended, capped, usedToday, usedYesterday, otherGroup},
			wantIDs:   []string{"R-013"},
			wantTotal: 8000,
			wantDiff:  32000,
			wantValid: false,
		},
		{
			name:      "large order with a single eligible resident",
			total:     2560000,
			pool:      []models.Resident{resident("R-092", 98)},
			wantIDs:   []string{"R-092"},
			wantTotal: 8000,
			wantDiff:  2552000,
			wantValid: false,
		},
		{
			name:      "empty pool is not an error",
			total:     8000,
			pool:      nil,
			wantIDs:   []string{},
			wantTotal: 0,
			wantDiff:  8000,
			wantValid: false,
		},
		{
			name:      "zero total needs no lines",
			total:     0,
			pool:      []models.Resident{resident("R-001", 50)},
			wantIDs:   []string{},
			wantTotal: 0,
			wantDiff:  0,
			wantValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			preview, err := PreviewAllocation(cashewOrder(tt.total), tt.pool, autoConfig())
			if err != nil {
				t.Fatalf("PreviewAllocation() error = %v", err)
			}
			if diff := cmp.Diff(tt.wantIDs, lineIDs(preview)); diff != "" {
				t.Errorf("line IDs mismatch (-want +got):\n%s", diff)
			}
			for _, l := range preview.Lines {
				if !l.Amount.Equal(DefaultSplitValue) {
					t.Errorf("line %s amount = %s, want %s", l.ID, l.Amount, DefaultSplitValue)
				}
				if l.Status != LineAssigned {
					t.Errorf("line %s status = %s, want %s", l.ID, l.Status, LineAssigned)
				}
			}
			s := preview.Summary
			if s.Count != len(tt.wantIDs) {
				t.Errorf("count = %d, want %d", s.Count, len(tt.wantIDs))
			}
			if !s.Total.Equal(decimal.NewFromInt(tt.wantTotal)) {
				t.Errorf("total = %s, want %d", s.Total, tt.wantTotal)
			}
			if !s.Diff.Equal(decimal.NewFromInt(tt.wantDiff)) {
				t.Errorf("diff = %s, want %d", s.Diff, tt.wantDiff)
			}
			if s.Valid != tt.wantValid {
				t.Errorf("valid = %v, want %v", s.Valid, tt.wantValid)
			}
		})
	}
}

func TestPreviewAllocation_AutoRequiredCount(t *testing.T) {
	pool := make([]models.Resident, 0, 400)
	for i := 0; i < 400; i++ {
		pool = append(pool, resident(fmt.Sprintf("R-%04d", i), i%100))
	}

	preview, err := PreviewAllocation(cashewOrder(2560000), pool, autoConfig())
	if err != nil {
		t.Fatalf("PreviewAllocation() error = %v", err)
	}
	if preview.Required != 320 {
		t.Errorf("required = %d, want 320", preview.Required)
	}
	if preview.Summary.Count != 320 {
		t.Errorf("count = %d, want 320", preview.Summary.Count)
	}
	if !preview.Summary.Valid {
		t.Error("expected a fully covered order to be valid")
	}
	if !preview.Summary.Total.Equal(decimal.NewFromInt(2560000)) {
		t.Errorf("total = %s, want 2560000", preview.Summary.Total)
	}
}

func TestPreviewAllocation_Manual(t *testing.T) {
	suspended := resident("R-020", 10)
	suspended.Status = models.ResidentSuspended
	pool := []models.Resident{resident("R-092", 98), resident("R-093", 50), suspended}

	t.Run("single selected member", func(t *testing.T) {
		cfg := autoConfig()
		cfg.Mode = ModeManual
		cfg.ManualMemberIDs = []string{"R-092"}

		preview, err := PreviewAllocation(cashewOrder(2560000), pool, cfg)
		if err != nil {
			t.Fatalf("PreviewAllocation() error = %v", err)
		}
		if diff := cmp.Diff([]string{"R-092"}, lineIDs(preview)); diff != "" {
			t.Errorf("line IDs mismatch (-want +got):\n%s", diff)
		}
		if !preview.Summary.Total.Equal(decimal.NewFromInt(8000)) {
			t.Errorf("total = %s, want 8000", preview.Summary.Total)
		}
		if !preview.Summary.Diff.Equal(decimal.NewFromInt(2552000)) {
			t.Errorf("diff = %s, want 2552000", preview.Summary.Diff)
		}
		if preview.Summary.Valid {
			t.Error("expected under-allocated preview to be invalid")
		}
	})

	t.Run("keeps supplied order and collapses duplicates", func(t *testing.T) {
		cfg := autoConfig()
		cfg.Mode = ModeManual
		cfg.ManualMemberIDs = []string{"R-093", "R-020", "R-093", "R-092"}

		preview, err := PreviewAllocation(cashewOrder(24000), pool, cfg)
		if err != nil {
			t.Fatalf("PreviewAllocation() error = %v", err)
		}
		if diff := cmp.Diff([]string{"R-093", "R-020", "R-092"}, lineIDs(preview)); diff != "" {
			t.Errorf("line IDs mismatch (-want +got):\n%s", diff)
		}
		if !preview.Summary.Valid {
			t.Error("expected exact cover to be valid")
		}
	})

	t.Run("ids outside the group are dropped", func(t *testing.T) {
		outsider := resident("R-101", 80)
		outsider.GroupID = "G-002"
		cfg := autoConfig()
		cfg.Mode = ModeManual
		cfg.ManualMemberIDs = []string{"R-404", "R-092", "R-101"}

		preview, err := PreviewAllocation(cashewOrder(24000), append(pool, outsider), cfg)
		if err != nil {
			t.Fatalf("PreviewAllocation() error = %v", err)
		}
		if diff := cmp.Diff([]string{"R-092"}, lineIDs(preview)); diff != "" {
			t.Errorf("line IDs mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("no selection yields an empty invalid preview", func(t *testing.T) {
		cfg := autoConfig()
		cfg.Mode = ModeManual

		preview, err := PreviewAllocation(cashewOrder(24000), pool, cfg)
		if err != nil {
			t.Fatalf("PreviewAllocation() error = %v", err)
		}
		if preview.Summary.Count != 0 || preview.Summary.Valid {
			t.Errorf("summary = %+v, want empty and invalid", preview.Summary)
		}
	})
}

func TestPreviewAllocation_Grab(t *testing.T) {
	for _, total := range []int64{0, 8000, 2560000} {
		cfg := autoConfig()
		cfg.Mode = ModeGrab
		cfg.GrabCount = 5

		preview, err := PreviewAllocation(cashewOrder(total), []models.Resident{resident("R-001", 10)}, cfg)
		if err != nil {
			t.Fatalf("PreviewAllocation() error = %v", err)
		}
		if len(preview.Lines) != 5 {
			t.Fatalf("total %d: got %d lines, want 5", total, len(preview.Lines))
		}
		for i, l := range preview.Lines {
			if l.Status != LineWaiting {
				t.Errorf("line %d status = %s, want %s", i, l.Status, LineWaiting)
			}
			if l.Name != GrabPlaceholderName {
				t.Errorf("line %d name = %q, want %q", i, l.Name, GrabPlaceholderName)
			}
		}
		if preview.Lines[0].ID != "GRAB-1" || preview.Lines[4].ID != "GRAB-5" {
			t.Errorf("unexpected slot IDs %q..%q", preview.Lines[0].ID, preview.Lines[4].ID)
		}
		if !preview.Summary.Total.Equal(decimal.NewFromInt(40000)) {
			t.Errorf("total = %s, want 40000", preview.Summary.Total)
		}
	}
}

func TestPreviewAllocation_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		total   int64
		mutate  func(*AllocationConfig)
		wantErr error
	}{
		{"zero split value", 2560000, func(c *AllocationConfig) { c.SplitValue = decimal.Zero }, ErrInvalidSplitValue},
		{"negative split value", 2560000, func(c *AllocationConfig) { c.SplitValue = decimal.NewFromInt(-1) }, ErrInvalidSplitValue},
		{"zero split value in grab mode", 2560000, func(c *AllocationConfig) { c.Mode = ModeGrab; c.SplitValue = decimal.Zero }, ErrInvalidSplitValue},
		{"negative order total", -1, func(c *AllocationConfig) {}, ErrInvalidOrderAmount},
		{"negative grab count", 8000, func(c *AllocationConfig) { c.Mode = ModeGrab; c.GrabCount = -3 }, ErrInvalidGrabCount},
		{"unknown mode", 8000, func(c *AllocationConfig) { c.Mode = "lottery" }, ErrUnknownMode},
		{"tiny split value", 2560000, func(c *AllocationConfig) { c.SplitValue = decimal.RequireFromString("0.0000000000002") }, ErrTooManyLines},
		{"tiny split value in grab mode", 2560000, func(c *AllocationConfig) {
			c.Mode = ModeGrab
			c.SplitValue = decimal.RequireFromString("0.0000000000001")
		}, ErrTooManyLines},
		{"oversized grab count", 8000, func(c *AllocationConfig) { c.Mode = ModeGrab; c.GrabCount = 4000000000 }, ErrTooManyLines},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := autoConfig()
			tt.mutate(&cfg)
			preview, err := PreviewAllocation(cashewOrder(tt.total), []models.Resident{resident("R-001", 1)}, cfg)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if preview != nil {
				t.Errorf("expected nil preview on error, got %+v", preview)
			}
		})
	}
}

func TestPreviewAllocation_DoesNotMutatePool(t *testing.T) {
	pool := []models.Resident{resident("R-001", 10), resident("R-002", 90), resident("R-003", 50)}
	before := append([]models.Resident(nil), pool...)

	if _, err := PreviewAllocation(cashewOrder(24000), pool, autoConfig()); err != nil {
		t.Fatalf("PreviewAllocation() error = %v", err)
	}
	if diff := cmp.Diff(before, pool); diff != "" {
		t.Errorf("pool mutated (-before +after):\n%s", diff)
	}
}

func TestRequiredLines(t *testing.T) {
	tests := []struct {
		total, split int64
		want         int
	}{
		{2560000, 8000, 320},
		{2560001, 8000, 321},
		{7999, 8000, 1},
		{0, 8000, 0},
		{MaxLines * 8000, 8000, MaxLines},
	}
	for _, tt := range tests {
		got, err := RequiredLines(decimal.NewFromInt(tt.total), decimal.NewFromInt(tt.split))
		if err != nil {
			t.Fatalf("RequiredLines(%d, %d) error = %v", tt.total, tt.split, err)
		}
		if got != tt.want {
			t.Errorf("RequiredLines(%d, %d) = %d, want %d", tt.total, tt.split, got, tt.want)
		}
	}

	t.Run("above the line cap", func(t *testing.T) {
		_, err := RequiredLines(decimal.NewFromInt(MaxLines*8000+1), decimal.NewFromInt(8000))
		if !errors.Is(err, ErrTooManyLines) {
			t.Errorf("error = %v, want %v", err, ErrTooManyLines)
		}
		if !IsValidationError(err) {
			t.Errorf("expected %v to be a validation error", err)
		}
	})
}

func TestDefaultAllocationConfig(t *testing.T) {
	cfg := DefaultAllocationConfig(cashewOrder(2560000), "G-001")
	if cfg.Mode != ModeAuto {
		t.Errorf("mode = %s, want %s", cfg.Mode, ModeAuto)
	}
	if !cfg.SplitValue.Equal(DefaultSplitValue) {
		t.Errorf("split value = %s, want %s", cfg.SplitValue, DefaultSplitValue)
	}
	if cfg.GrabCount != 320 {
		t.Errorf("grab count = %d, want 320", cfg.GrabCount)
	}
	if len(cfg.ManualMemberIDs) != 0 {
		t.Errorf("manual members = %v, want none", cfg.ManualMemberIDs)
	}
}

func TestAllocationOptionsApply(t *testing.T) {
	base := DefaultAllocationConfig(cashewOrder(2560000), "G-001")

	t.Run("empty options keep defaults", func(t *testing.T) {
		got := AllocationOptions{}.Apply(base)
		if diff := cmp.Diff(base, got); diff != "" {
			t.Errorf("Apply() changed config (-want +got):\n%s", diff)
		}
	})

	t.Run("explicit zero split is kept", func(t *testing.T) {
		zero := decimal.Zero
		mode := ModeManual
		got := AllocationOptions{Mode: &mode, SplitValue: &zero, ManualMemberIDs: []string{"R-092"}}.Apply(base)
		if got.Mode != ModeManual || !got.SplitValue.IsZero() || len(got.ManualMemberIDs) != 1 {
			t.Errorf("Apply() = %+v", got)
		}
		_, err := PreviewAllocation(cashewOrder(2560000), nil, got)
		if !IsValidationError(err) {
			t.Errorf("expected a validation error, got %v", err)
		}
	})
}

package calculator

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/bordertrade/internal/models"
)

var (
	ErrInvalidSplitValue  = errors.New("split value must be positive")
	ErrInvalidOrderAmount = errors.New("order total amount must not be negative")
	ErrInvalidGrabCount   = errors.New("grab count must not be negative")
	ErrUnknownMode        = errors.New("unknown allocation mode")
	ErrUnknownMember      = errors.New("resident is not a member of the selected group")
	ErrTooManyLines       = fmt.Errorf("allocation needs more than %d lines", MaxLines)
)

// MaxLines caps the lines of one preview or grab board.
const MaxLines = 10000

// DefaultSplitValue is the quota amount assigned to one resident per line.
var DefaultSplitValue = decimal.NewFromInt(8000)

// Mode selects how an order is partitioned among residents.
type Mode string

const (
	// ModeAuto ranks eligible group members by activity score.
	ModeAuto Mode = "auto"
	// ModeManual uses the members picked by the operator.
	ModeManual Mode = "manual"
	// ModeGrab publishes placeholder slots that residents claim first-come-first-served.
	ModeGrab Mode = "grab"
)

// LineStatus tags an allocation line.
type LineStatus string

const (
	LineAssigned LineStatus = "assigned"
	LineWaiting  LineStatus = "waiting"
)

// GrabPlaceholderName is the display name of an unclaimed grab slot.
const GrabPlaceholderName = "pending grab"

// AllocationConfig holds the operator's choices for one preview.
type AllocationConfig struct {
	Mode            Mode            `json:"mode"`
	SplitValue      decimal.Decimal `json:"splitValue"`
	GroupID         string          `json:"groupId"`
	ManualMemberIDs []string        `json:"manualMemberIds,omitempty"`
	GrabCount       int             `json:"grabCount,omitempty"`
	// ResidentFee is the service fee shown on each line.
	ResidentFee decimal.Decimal `json:"residentFee"`
	// AsOf is the day the daily-quota rule is evaluated against.
	AsOf time.Time `json:"asOf,omitzero"`
}

// AllocationLine is one recipient (or placeholder slot) of a preview.
// Amount always equals the configured split value.
type AllocationLine struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
	Fee    decimal.Decimal `json:"fee"`
	Status LineStatus      `json:"status"`
}

// AllocationSummary compares a preview against the order total.
type AllocationSummary struct {
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
	Diff  decimal.Decimal `json:"diff"`
	Valid bool            `json:"valid"`
}

// AllocationPreview is the advisory result of PreviewAllocation.
type AllocationPreview struct {
	OrderID  string            `json:"orderId"`
	Mode     Mode              `json:"mode"`
	Required int               `json:"required"`
	Lines    []AllocationLine  `json:"lines"`
	Summary  AllocationSummary `json:"summary"`
}

// DefaultAllocationConfig returns the configuration the dashboard starts from
// when an operator opens the split dialog for order: automatic mode, the default
// split value, and a grab count that would cover the order exactly.
func DefaultAllocationConfig(order models.Order, groupID string) AllocationConfig {
	grabCount, _ := RequiredLines(order.TotalAmount, DefaultSplitValue)
	return AllocationConfig{
		Mode:        ModeAuto,
		SplitValue:  DefaultSplitValue,
		GroupID:     groupID,
		GrabCount:   grabCount,
		ResidentFee: models.DefaultProfitConfig().ResidentValue,
	}
}

// RequiredLines returns ceil(total / split), the number of lines needed to cover total.
func RequiredLines(total, split decimal.Decimal) (int, error) {
	if !split.IsPositive() {
		return 0, ErrInvalidSplitValue
	}
	if total.IsNegative() {
		return 0, ErrInvalidOrderAmount
	}
	q, r := total.QuoRem(split, 0)
	if r.IsPositive() {
		q = q.Add(decimal.NewFromInt(1))
	}
	if q.GreaterThan(decimal.NewFromInt(MaxLines)) {
		return 0, fmt.Errorf("%w: %s per line for %s", ErrTooManyLines, split, total)
	}
	return int(q.IntPart()), nil
}

// PreviewAllocation computes how order would be divided among the residents of
// cfg.GroupID in pool. It never mutates its inputs and has no side effects.
//
// An empty or too small pool is not an error: the preview simply holds fewer
// lines than required and Summary.Valid is false.
func PreviewAllocation(order models.Order, pool []models.Resident, cfg AllocationConfig) (*AllocationPreview, error) {
	required, err := RequiredLines(order.TotalAmount, cfg.SplitValue)
	if err != nil {
		return nil, err
	}

	var lines []AllocationLine
	switch cfg.Mode {
	case ModeAuto:
		lines = autoLines(pool, cfg, required)
	case ModeManual:
		lines = manualLines(pool, cfg)
	case ModeGrab:
		if cfg.GrabCount < 0 {
			return nil, ErrInvalidGrabCount
		}
		if cfg.GrabCount > MaxLines {
			return nil, fmt.Errorf("%w: %d slots", ErrTooManyLines, cfg.GrabCount)
		}
		lines = grabLines(cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, cfg.Mode)
	}

	return &AllocationPreview{
		OrderID:  order.ID,
		Mode:     cfg.Mode,
		Required: required,
		Lines:    lines,
		Summary:  Summarize(order.TotalAmount, cfg.SplitValue, len(lines)),
	}, nil
}

// Summarize builds the summary for count lines of split against orderTotal.
func Summarize(orderTotal, split decimal.Decimal, count int) AllocationSummary {
	total := split.Mul(decimal.NewFromInt(int64(count)))
	diff := orderTotal.Sub(total)
	return AllocationSummary{
		Count: count,
		Total: total,
		Diff:  diff,
		Valid: count > 0 && diff.Abs().LessThan(split),
	}
}

func autoLines(pool []models.Resident, cfg AllocationConfig, required int) []AllocationLine {
	var eligible []models.Resident
	for _, m := range GroupMembers(pool, cfg.GroupID, cfg.AsOf) {
		if m.Eligible {
			eligible = append(eligible, m.Resident)
		}
	}
	slices.SortStableFunc(eligible, func(a, b models.Resident) int {
		if c := cmp.Compare(b.ActiveScore, a.ActiveScore); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if len(eligible) > required {
		eligible = eligible[:required]
	}

	lines := make([]AllocationLine, 0, len(eligible))
	for _, r := range eligible {
		lines = append(lines, assignedLine(r, cfg))
	}
	return lines
}

// manualLines keeps the operator's order and drops repeated IDs and IDs
// outside the group. Eligibility is not re-checked: the operator's selection stands.
func manualLines(pool []models.Resident, cfg AllocationConfig) []AllocationLine {
	members := make(map[string]models.Resident)
	for _, r := range pool {
		if r.GroupID == cfg.GroupID {
			members[r.ID] = r
		}
	}

	seen := make(map[string]bool, len(cfg.ManualMemberIDs))
	lines := make([]AllocationLine, 0, len(cfg.ManualMemberIDs))
	for _, id := range cfg.ManualMemberIDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		if r, ok := members[id]; ok {
			lines = append(lines, assignedLine(r, cfg))
		}
	}
	return lines
}

func grabLines(cfg AllocationConfig) []AllocationLine {
	lines := make([]AllocationLine, 0, cfg.GrabCount)
	for i := 0; i < cfg.GrabCount; i++ {
		lines = append(lines, AllocationLine{
			ID:     fmt.Sprintf("GRAB-%d", i+1),
			Name:   GrabPlaceholderName,
			Amount: cfg.SplitValue,
			Fee:    cfg.ResidentFee,
			Status: LineWaiting,
		})
	}
	return lines
}

func assignedLine(r models.Resident, cfg AllocationConfig) AllocationLine {
	return AllocationLine{
		ID:     r.ID,
		Name:   r.Name,
		Amount: cfg.SplitValue,
		Fee:    cfg.ResidentFee,
		Status: LineAssigned,
	}
}

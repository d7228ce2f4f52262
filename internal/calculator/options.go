package calculator

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// AllocationOptions is a partial AllocationConfig as sent by a client. Nil
// fields keep the value of the config they are applied to.
type AllocationOptions struct {
	Mode            *Mode            `json:"mode,omitempty"`
	SplitValue      *decimal.Decimal `json:"splitValue,omitempty"`
	GroupID         *string          `json:"groupId,omitempty"`
	ManualMemberIDs []string         `json:"manualMemberIds,omitempty"`
	GrabCount       *int             `json:"grabCount,omitempty"`
	ResidentFee     *decimal.Decimal `json:"residentFee,omitempty"`
	AsOf            *time.Time       `json:"asOf,omitempty"`
}

// Apply returns cfg with every set option copied over it.
func (o AllocationOptions) Apply(cfg AllocationConfig) AllocationConfig {
	if o.Mode != nil {
		cfg.Mode = *o.Mode
	}
	if o.SplitValue != nil {
		cfg.SplitValue = *o.SplitValue
	}
	if o.GroupID != nil {
		cfg.GroupID = *o.GroupID
	}
	if o.ManualMemberIDs != nil {
		cfg.ManualMemberIDs = append([]string(nil), o.ManualMemberIDs...)
	}
	if o.GrabCount != nil {
		cfg.GrabCount = *o.GrabCount
	}
	if o.ResidentFee != nil {
		cfg.ResidentFee = *o.ResidentFee
	}
	if o.AsOf != nil {
		cfg.AsOf = *o.AsOf
	}
	return cfg
}

// IsValidationError reports whether err is a rejected allocation or profit input.
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrInvalidSplitValue,
		ErrInvalidOrderAmount,
		ErrInvalidGrabCount,
		ErrTooManyLines,
		ErrUnknownMode,
		ErrUnknownMember,
		ErrInvalidProfitConfig,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

package types

import (
	ierr "github.com/autumnhq/autumn/internal/errors"
	"github.com/samber/lo"
)

// OnIncrease defines how a price reacts to an allocation increase.
type OnIncrease string

const (
	// Charge the full new amount immediately, no proration
	OnIncreaseBillImmediately OnIncrease = "bill_immediately"
	// Charge the prorated difference immediately
	OnIncreaseProrateImmediately OnIncrease = "prorate_immediately"
	// No immediate effect, the increase is billed at the next renewal
	OnIncreaseProrateNextCycle OnIncrease = "prorate_next_cycle"
)

// OnDecrease defines how a price reacts to an allocation decrease.
type OnDecrease string

const (
	// Refund the prorated difference immediately
	OnDecreaseProrateImmediately OnDecrease = "prorate_immediately"
	// No refund; the removed units become replaceable credits that expire
	// at the next cycle boundary
	OnDecreaseNoProrations OnDecrease = "no_prorations"
	// No immediate effect and no credits; the decrease applies at renewal
	OnDecreaseNone OnDecrease = "none"
)

var OnIncreaseValues = []OnIncrease{
	OnIncreaseBillImmediately,
	OnIncreaseProrateImmediately,
	OnIncreaseProrateNextCycle,
}

var OnDecreaseValues = []OnDecrease{
	OnDecreaseProrateImmediately,
	OnDecreaseNoProrations,
	OnDecreaseNone,
}

func (o OnIncrease) Validate() error {
	if !lo.Contains(OnIncreaseValues, o) {
		return ierr.NewError("invalid on_increase behavior").
			WithHint("On increase behavior must be bill_immediately, prorate_immediately, or prorate_next_cycle").
			WithReportableDetails(map[string]any{
				"allowed_values": OnIncreaseValues,
				"provided_value": o,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

func (o OnIncrease) String() string {
	return string(o)
}

func (o OnDecrease) Validate() error {
	if !lo.Contains(OnDecreaseValues, o) {
		return ierr.NewError("invalid on_decrease behavior").
			WithHint("On decrease behavior must be prorate_immediately, no_prorations, or none").
			WithReportableDetails(map[string]any{
				"allowed_values": OnDecreaseValues,
				"provided_value": o,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

func (o OnDecrease) String() string {
	return string(o)
}

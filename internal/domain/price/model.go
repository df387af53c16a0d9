package price

import (
	"github.com/autumnhq/autumn/internal/types"
	"github.com/shopspring/decimal"

	ierr "github.com/autumnhq/autumn/internal/errors"
)

// Price is one billable component of a product.
type Price struct {
	// ID uuid identifier for the price
	ID string `json:"id"`

	// ProductID is the id of the product this price belongs to
	ProductID string `json:"product_id"`

	// FeatureID ties allocation and consumable prices to the feature they
	// bill for. Empty for fixed prices.
	FeatureID string `json:"feature_id"`

	// Amount stored in main currency units (e.g., dollars, not cents)
	Amount decimal.Decimal `json:"amount"`

	// Currency 3 digit ISO currency code in lowercase ex usd, eur, gbp
	Currency string `json:"currency"`

	// Type is the type of the price ex FIXED, ALLOCATION, CONSUMABLE
	Type types.PriceType `json:"type"`

	// BillingPeriod is the billing period for the price ex MONTHLY, ANNUAL
	BillingPeriod types.BillingPeriod `json:"billing_period"`

	// BillingPeriodCount is the count of the billing period ex 1, 3, 6, 12
	BillingPeriodCount int `json:"billing_period_count"`

	// BillingCadence is the billing cadence for the price ex RECURRING, ONETIME
	BillingCadence types.BillingCadence `json:"billing_cadence"`

	// BillingTiming is when the price is collected ex in_advance, in_arrear
	BillingTiming types.BillingTiming `json:"billing_timing"`

	// BillingModel is the billing model for the price ex FLAT_FEE, PACKAGE, TIERED
	BillingModel types.BillingModel `json:"billing_model"`

	// TierMode defines tier evaluation when BillingModel is TIERED
	TierMode types.BillingTier `json:"tier_mode,omitempty"`

	// Tiers are the tiers for the price when BillingModel is TIERED
	Tiers []PriceTier `json:"tiers,omitempty"`

	// TransformQuantity is the quantity transformation in case of PACKAGE billing model
	TransformQuantity *TransformQuantity `json:"transform_quantity,omitempty"`

	// OnIncrease is how the price reacts to an allocation increase
	OnIncrease types.OnIncrease `json:"on_increase"`

	// OnDecrease is how the price reacts to an allocation decrease
	OnDecrease types.OnDecrease `json:"on_decrease"`

	// Description of the price
	Description string `json:"description"`
}

// PriceTier is one step of a TIERED price.
type PriceTier struct {
	// UpTo is the upper bound of the tier, nil for the unbounded last tier
	UpTo *uint64 `json:"up_to"`

	// UnitAmount is the per-unit amount for quantity in this tier
	UnitAmount decimal.Decimal `json:"unit_amount"`

	// FlatAmount is an optional flat fee added once the tier is reached
	FlatAmount *decimal.Decimal `json:"flat_amount,omitempty"`
}

// TransformQuantity divides quantity into packages for PACKAGE billing.
type TransformQuantity struct {
	DivideBy int    `json:"divide_by"`
	Round    string `json:"round"`
}

// GetTierUpTo returns the tier bound, with the unbounded tier sorting last.
func (pt *PriceTier) GetTierUpTo() uint64 {
	if pt.UpTo == nil {
		return ^uint64(0)
	}
	return *pt.UpTo
}

// CalculateTierAmount returns the cost of the given quantity within this tier,
// including the flat amount if configured.
func (pt *PriceTier) CalculateTierAmount(quantity decimal.Decimal) decimal.Decimal {
	tierCost := pt.UnitAmount.Mul(quantity)
	if pt.FlatAmount != nil {
		tierCost = tierCost.Add(*pt.FlatAmount)
	}
	return tierCost
}

// IsRecurring reports whether the price repeats every billing period.
func (p *Price) IsRecurring() bool {
	return p.BillingCadence == types.BILLING_CADENCE_RECURRING
}

// IsOneOff reports whether the price is charged exactly once.
func (p *Price) IsOneOff() bool {
	return p.BillingCadence == types.BILLING_CADENCE_ONETIME
}

// IsConsumable reports whether the price bills metered usage in arrears.
func (p *Price) IsConsumable() bool {
	return p.Type == types.PRICE_TYPE_CONSUMABLE
}

// IsAllocation reports whether the price bills persistent per-unit features.
func (p *Price) IsAllocation() bool {
	return p.Type == types.PRICE_TYPE_ALLOCATION
}

// IsPaid reports whether the price can produce a non-zero amount.
func (p *Price) IsPaid() bool {
	if p.Amount.GreaterThan(decimal.Zero) {
		return true
	}
	for _, tier := range p.Tiers {
		if tier.UnitAmount.GreaterThan(decimal.Zero) {
			return true
		}
		if tier.FlatAmount != nil && tier.FlatAmount.GreaterThan(decimal.Zero) {
			return true
		}
	}
	return false
}

// Validate performs validation on the price
func (p *Price) Validate() error {
	if p.ID == "" {
		return ierr.NewError("price id is required").
			WithHint("Please provide a valid price ID").
			Mark(ierr.ErrValidation)
	}
	if p.Amount.LessThan(decimal.Zero) {
		return ierr.NewError("amount cannot be negative").
			WithHintf("Price %s has a negative amount", p.ID).
			Mark(ierr.ErrValidation)
	}
	if err := p.BillingCadence.Validate(); err != nil {
		return err
	}
	if p.IsRecurring() {
		if err := p.BillingPeriod.Validate(); err != nil {
			return err
		}
		if p.BillingPeriodCount <= 0 {
			return ierr.NewError("billing period count must be positive").
				WithHintf("Price %s has billing period count %d", p.ID, p.BillingPeriodCount).
				Mark(ierr.ErrValidation)
		}
	}
	if p.Type != types.PRICE_TYPE_FIXED && p.FeatureID == "" {
		return ierr.NewError("feature_id is required for usage prices").
			WithHintf("Price %s bills a feature but has no feature ID", p.ID).
			Mark(ierr.ErrValidation)
	}
	return nil
}

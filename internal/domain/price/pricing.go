package price

import (
	"sort"

	"github.com/autumnhq/autumn/internal/types"
	"github.com/shopspring/decimal"
)

// Calculator converts a quantity into an amount for a given price. The plan
// computation engine treats it as a black box: it decides when to call it and
// with what quantity, never how the per-unit math works. Implementations must
// be pure and deterministic.
type Calculator interface {
	Calculate(price *Price, quantity decimal.Decimal) decimal.Decimal
}

type calculator struct {
	precision int32
}

// NewCalculator returns the default calculator, rounding final amounts to the
// given currency precision.
func NewCalculator(precision int32) Calculator {
	return &calculator{precision: precision}
}

// Calculate returns the cost for the given price and quantity
// in main currency units (e.g., 1.00 = $1.00)
func (c *calculator) Calculate(price *Price, quantity decimal.Decimal) decimal.Decimal {
	cost := decimal.Zero
	if quantity.IsZero() {
		return cost
	}

	switch price.BillingModel {
	case types.BILLING_MODEL_FLAT_FEE:
		cost = price.Amount.Mul(quantity)

	case types.BILLING_MODEL_PACKAGE:
		if price.TransformQuantity == nil || price.TransformQuantity.DivideBy <= 0 {
			return decimal.Zero
		}

		transformedQuantity := quantity.Div(decimal.NewFromInt(int64(price.TransformQuantity.DivideBy)))

		if price.TransformQuantity.Round == types.ROUND_UP {
			transformedQuantity = transformedQuantity.Ceil()
		} else if price.TransformQuantity.Round == types.ROUND_DOWN {
			transformedQuantity = transformedQuantity.Floor()
		}

		cost = price.Amount.Mul(transformedQuantity)

	case types.BILLING_MODEL_TIERED:
		cost = c.calculateTieredCost(price, quantity)

	default:
		// Prices without a billing model are flat per-unit
		cost = price.Amount.Mul(quantity)
	}

	return cost.Round(c.precision)
}

// calculateTieredCost calculates cost for tiered pricing
func (c *calculator) calculateTieredCost(price *Price, quantity decimal.Decimal) decimal.Decimal {
	cost := decimal.Zero
	if len(price.Tiers) == 0 {
		return cost
	}

	tiers := make([]PriceTier, len(price.Tiers))
	copy(tiers, price.Tiers)
	sort.Slice(tiers, func(i, j int) bool {
		return tiers[i].GetTierUpTo() < tiers[j].GetTierUpTo()
	})

	switch price.TierMode {
	case types.BILLING_TIER_VOLUME:
		// All units price at the tier the total quantity falls into
		selectedTier := tiers[len(tiers)-1]
		for _, tier := range tiers {
			if tier.UpTo == nil {
				selectedTier = tier
				break
			}
			if quantity.LessThan(decimal.NewFromUint64(*tier.UpTo)) {
				selectedTier = tier
				break
			}
		}
		cost = cost.Add(selectedTier.CalculateTierAmount(quantity))

	case types.BILLING_TIER_SLAB:
		// Tiers apply progressively as quantity increases
		remainingQuantity := quantity
		for _, tier := range tiers {
			tierQuantity := remainingQuantity
			if tier.UpTo != nil {
				upTo := decimal.NewFromUint64(*tier.UpTo)
				if remainingQuantity.GreaterThan(upTo) {
					tierQuantity = upTo
				}
			}

			cost = cost.Add(tier.CalculateTierAmount(tierQuantity))
			remainingQuantity = remainingQuantity.Sub(tierQuantity)

			if remainingQuantity.LessThanOrEqual(decimal.Zero) {
				break
			}
		}

	default:
		return decimal.Zero
	}

	return cost
}

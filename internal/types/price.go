package types

// BillingModel defines how a price converts quantity into an amount
// ex FLAT_FEE, PACKAGE, TIERED
type BillingModel string

// BillingTier when BillingModel is TIERED defines how to
// calculate the price for a given quantity
type BillingTier string

// PriceType classifies what a price bills for.
type PriceType string

const (
	// Fixed recurring or one-off fee, independent of usage
	PRICE_TYPE_FIXED PriceType = "FIXED"

	// Per-unit price for a feature that persists across a cycle ex per seat
	PRICE_TYPE_ALLOCATION PriceType = "ALLOCATION"

	// Metered usage billed after the fact for the period it accrued in
	PRICE_TYPE_CONSUMABLE PriceType = "CONSUMABLE"

	// Billing model for a flat fee per unit
	BILLING_MODEL_FLAT_FEE BillingModel = "FLAT_FEE"

	// Billing model for a package of units ex 1000 emails for $100
	BILLING_MODEL_PACKAGE BillingModel = "PACKAGE"

	// Billing model for a tiered pricing model
	// ex 1-100 emails for $100, 101-1000 emails for $90
	BILLING_MODEL_TIERED BillingModel = "TIERED"

	// BILLING_TIER_VOLUME means all units price based on final tier reached.
	BILLING_TIER_VOLUME BillingTier = "VOLUME"

	// BILLING_TIER_SLAB means tiers apply progressively as quantity increases
	BILLING_TIER_SLAB BillingTier = "SLAB"

	// ROUND_UP rounds to the ceiling value ex 1.99 -> 2.00
	ROUND_UP = "up"
	// ROUND_DOWN rounds to the floor value ex 1.99 -> 1.00
	ROUND_DOWN = "down"

	// DEFAULT_CURRENCY_PRECISION is the rounding precision for final amounts
	DEFAULT_CURRENCY_PRECISION = 2
)

var PriceTypeValues = []PriceType{
	PRICE_TYPE_FIXED,
	PRICE_TYPE_ALLOCATION,
	PRICE_TYPE_CONSUMABLE,
}

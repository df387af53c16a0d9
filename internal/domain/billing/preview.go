package billing

import (
	"github.com/autumnhq/autumn/internal/types"
	"github.com/shopspring/decimal"
)

// Preview is the customer-facing answer to "what would this change cost",
// derived purely from a plan and an optional next-cycle projection. Nothing
// in it has been applied.
type Preview struct {
	Number    string           `json:"number"`
	LineItems []*LineItem      `json:"line_items"`
	Total     decimal.Decimal  `json:"total"`
	Currency  string           `json:"currency"`
	NextCycle *CycleProjection `json:"next_cycle,omitempty"`
}

// BuildPreview flattens a plan into the preview shape. The fallback currency
// is used when the plan moves no money.
func BuildPreview(plan *BillingPlan, projection *CycleProjection, fallbackCurrency string) *Preview {
	currency := plan.Currency()
	if currency == "" {
		currency = fallbackCurrency
	}

	return &Preview{
		Number:    types.GenerateShortIDWithPrefix(types.SHORT_ID_PREFIX_PREVIEW),
		LineItems: plan.LineItems,
		Total:     plan.Total(),
		Currency:  currency,
		NextCycle: projection,
	}
}

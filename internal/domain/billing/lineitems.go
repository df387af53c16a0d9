package billing

import (
	"fmt"
	"time"

	"github.com/autumnhq/autumn/internal/domain/price"
	"github.com/autumnhq/autumn/internal/domain/product"
	ierr "github.com/autumnhq/autumn/internal/errors"
	"github.com/autumnhq/autumn/internal/types"
	"github.com/shopspring/decimal"
)

// LineItemContext carries everything a downstream adapter needs to turn a
// line item into provider metadata.
type LineItemContext struct {
	Price     *price.Price           `json:"price"`
	Product   *product.Product       `json:"product"`
	FeatureID string                 `json:"feature_id,omitempty"`
	Direction types.ChargeDirection  `json:"direction"`
	Timing    types.BillingTiming    `json:"timing"`
	Period    *BillingPeriod         `json:"period,omitempty"`
	Currency  string                 `json:"currency"`
	Now       time.Time              `json:"now"`
}

// LineItem is one monetary movement in a plan. Refund amounts are negative,
// charges positive, so a plan total is a plain sum. Zero-amount items are
// filtered before any list leaves the generator.
type LineItem struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`

	// Amount before discounts
	Amount decimal.Decimal `json:"amount"`

	// FinalAmount after discounts
	FinalAmount decimal.Decimal `json:"final_amount"`

	// ChargeImmediately drives whether the item bills now or rides the next
	// invoice
	ChargeImmediately bool `json:"charge_immediately"`

	Context *LineItemContext `json:"context"`
}

// LineItemGenerator produces charge and refund line items for the priced
// components of a product. Per-unit math is delegated to the injected
// pricing calculator.
type LineItemGenerator struct {
	pricing   price.Calculator
	precision int32
}

func NewLineItemGenerator(pricing price.Calculator, precision int32) *LineItemGenerator {
	return &LineItemGenerator{
		pricing:   pricing,
		precision: precision,
	}
}

// BuildLineItems generates one item per fixed or allocation price on the
// product. Consumable prices are excluded here; they bill through the
// dedicated arrear pass once their period ends.
func (g *LineItemGenerator) BuildLineItems(ctx *BillingContext, cp *product.CustomerProduct, direction types.ChargeDirection) ([]*LineItem, error) {
	if cp.Product == nil {
		return nil, ierr.NewError("customer product has no product").
			WithHintf("Customer product %s is missing its product", cp.ID).
			Mark(ierr.ErrValidation)
	}

	items := make([]*LineItem, 0, len(cp.Product.Prices))
	for _, pr := range cp.Product.Prices {
		if pr.IsConsumable() {
			continue
		}

		period, err := ComputePricePeriod(ctx, pr, floorsFor(ctx, cp))
		if err != nil {
			return nil, err
		}

		var item *LineItem
		switch pr.Type {
		case types.PRICE_TYPE_ALLOCATION:
			item, err = g.allocationItem(ctx, cp, pr, direction, period)
		default:
			item = g.fixedItem(ctx, cp, pr, direction, period)
		}
		if err != nil {
			return nil, err
		}
		if item != nil {
			items = append(items, item)
		}
	}

	return filterZeroItems(items), nil
}

// BuildArrearLineItems bills actual recorded usage for every consumable
// price on the product. A consumable price without a resolved entitlement is
// a correctness bug, not a recoverable condition: unbilled usage must fail
// loudly.
func (g *LineItemGenerator) BuildArrearLineItems(ctx *BillingContext, cp *product.CustomerProduct, usage map[string]decimal.Decimal) ([]*LineItem, error) {
	if cp.Product == nil {
		return nil, ierr.NewError("customer product has no product").
			WithHintf("Customer product %s is missing its product", cp.ID).
			Mark(ierr.ErrValidation)
	}

	items := make([]*LineItem, 0)
	for _, pr := range cp.Product.Prices {
		if !pr.IsConsumable() {
			continue
		}

		ent := ctx.EntitlementFor(pr.FeatureID)
		if ent == nil {
			return nil, ierr.NewError("no entitlement found for consumable price").
				WithHintf("Consumable price %s has no entitlement for feature %s", pr.ID, pr.FeatureID).
				WithReportableDetails(map[string]any{
					"price_id":   pr.ID,
					"feature_id": pr.FeatureID,
					"product_id": cp.ProductID,
				}).
				Mark(ierr.ErrNotFound)
		}

		period, err := ComputePricePeriod(ctx, pr, floorsFor(ctx, cp))
		if err != nil {
			return nil, err
		}

		// Bill only usage beyond the included allowance
		recorded := usage[pr.FeatureID]
		billable := decimal.Max(recorded.Sub(ent.Allowance), decimal.Zero)
		amount := g.pricing.Calculate(pr, billable)

		items = append(items, g.newItem(ctx, itemParams{
			price:       pr,
			product:     cp.Product,
			featureID:   pr.FeatureID,
			direction:   types.ChargeDirectionCharge,
			period:      period,
			amount:      amount,
			immediately: true,
			description: fmt.Sprintf("%s (Usage Charge)", pr.Description),
		}))
	}

	return filterZeroItems(items), nil
}

// BuildAllocationChangeItems generates the charge or refund for an
// allocation change on the changed entitlement's price. unitsToBill is the
// overage delta left after the seat ledger consumed available replaceables.
func (g *LineItemGenerator) BuildAllocationChangeItems(actx *AllocatedInvoiceContext, behavior ProrationBehavior, unitsToBill decimal.Decimal) ([]*LineItem, error) {
	if behavior.SkipLineItems {
		return []*LineItem{}, nil
	}

	ref, err := actx.resolvePrice()
	if err != nil {
		return nil, err
	}
	pr := ref.Price

	period, err := ComputePricePeriod(actx.BillingContext, pr, floorsFor(actx.BillingContext, ref.CustomerProduct))
	if err != nil {
		return nil, err
	}

	if unitsToBill.LessThanOrEqual(decimal.Zero) {
		return []*LineItem{}, nil
	}

	amount := g.pricing.Calculate(pr, unitsToBill)
	if behavior.ApplyProration && period != nil {
		amount = prorate(amount, period, actx.Now).Round(g.precision)
	}

	upgrade := IsUpgrade(actx)
	direction := types.ChargeDirectionCharge
	description := fmt.Sprintf("Prorated charge for additional %s", pr.Description)
	if !upgrade {
		direction = types.ChargeDirectionRefund
		description = fmt.Sprintf("Credit for unused %s", pr.Description)
	}
	if !behavior.ApplyProration && upgrade {
		description = fmt.Sprintf("Charge for additional %s", pr.Description)
	}

	items := []*LineItem{g.newItem(actx.BillingContext, itemParams{
		price:       pr,
		product:     ref.CustomerProduct.Product,
		featureID:   actx.Entitlement.FeatureID,
		direction:   direction,
		period:      period,
		amount:      amount,
		immediately: true,
		description: description,
	})}

	return filterZeroItems(items), nil
}

// priceRef pairs a resolved price with the customer product carrying it.
type priceRef struct {
	Price           *price.Price
	CustomerProduct *product.CustomerProduct
}

type itemParams struct {
	price       *price.Price
	product     *product.Product
	featureID   string
	direction   types.ChargeDirection
	period      *BillingPeriod
	amount      decimal.Decimal
	immediately bool
	description string
}

func (g *LineItemGenerator) fixedItem(ctx *BillingContext, cp *product.CustomerProduct, pr *price.Price, direction types.ChargeDirection, period *BillingPeriod) *LineItem {
	quantity := decimal.NewFromInt(1)
	amount := g.pricing.Calculate(pr, quantity)

	description := fmt.Sprintf("%s (Fixed Charge)", pr.Description)
	if direction == types.ChargeDirectionRefund {
		description = fmt.Sprintf("Credit for unused time on %s", pr.Description)
	}

	return g.newItem(ctx, itemParams{
		price:       pr,
		product:     cp.Product,
		direction:   direction,
		period:      period,
		amount:      amount,
		immediately: pr.BillingTiming == types.BillingTimingInAdvance,
		description: description,
	})
}

func (g *LineItemGenerator) allocationItem(ctx *BillingContext, cp *product.CustomerProduct, pr *price.Price, direction types.ChargeDirection, period *BillingPeriod) (*LineItem, error) {
	ent := ctx.EntitlementFor(pr.FeatureID)
	if ent == nil {
		return nil, ierr.NewError("no entitlement found for allocation price").
			WithHintf("Allocation price %s has no entitlement for feature %s", pr.ID, pr.FeatureID).
			WithReportableDetails(map[string]any{
				"price_id":   pr.ID,
				"feature_id": pr.FeatureID,
				"product_id": cp.ProductID,
			}).
			Mark(ierr.ErrNotFound)
	}

	amount := g.pricing.Calculate(pr, ent.Overage())

	description := fmt.Sprintf("%s (Allocation Charge)", pr.Description)
	if direction == types.ChargeDirectionRefund {
		description = fmt.Sprintf("Credit for unused time on %s", pr.Description)
	}

	return g.newItem(ctx, itemParams{
		price:       pr,
		product:     cp.Product,
		featureID:   pr.FeatureID,
		direction:   direction,
		period:      period,
		amount:      amount,
		immediately: pr.BillingTiming == types.BillingTimingInAdvance,
		description: description,
	}), nil
}

// newItem signs the amount by direction and applies provider discounts.
func (g *LineItemGenerator) newItem(ctx *BillingContext, p itemParams) *LineItem {
	amount := p.amount
	if p.direction == types.ChargeDirectionRefund {
		amount = amount.Neg()
	}

	return &LineItem{
		ID:                types.GenerateUUIDWithPrefix(types.UUID_PREFIX_LINE_ITEM),
		Description:       p.description,
		Amount:            amount,
		FinalAmount:       g.applyDiscounts(amount, ctx.Provider.Discounts),
		ChargeImmediately: p.immediately,
		Context: &LineItemContext{
			Price:     p.price,
			Product:   p.product,
			FeatureID: p.featureID,
			Direction: p.direction,
			Timing:    p.price.BillingTiming,
			Period:    p.period,
			Currency:  p.price.Currency,
			Now:       ctx.Now,
		},
	}
}

// applyDiscounts reduces the amount by each percent discount in turn.
func (g *LineItemGenerator) applyDiscounts(amount decimal.Decimal, discounts []Discount) decimal.Decimal {
	final := amount
	hundred := decimal.NewFromInt(100)
	for _, d := range discounts {
		if d.Percent.LessThanOrEqual(decimal.Zero) {
			continue
		}
		final = final.Mul(hundred.Sub(d.Percent)).Div(hundred)
	}
	return final.Round(g.precision)
}

// prorate scales an amount by the unused share of the period, measured in
// whole days so a mid-day change bills the day it lands in.
func prorate(amount decimal.Decimal, period *BillingPeriod, now time.Time) decimal.Decimal {
	totalDays := daysInDuration(period.Start, period.End)
	if totalDays <= 0 {
		return amount
	}

	remainingDays := daysInDuration(now, period.End)
	if remainingDays < 0 {
		remainingDays = 0
	}
	if remainingDays > totalDays {
		remainingDays = totalDays
	}

	coefficient := decimal.NewFromInt(int64(remainingDays)).Div(decimal.NewFromInt(int64(totalDays)))
	return amount.Mul(coefficient)
}

// daysInDuration counts calendar days between two instants in UTC,
// inclusive of the start day and exclusive of the end day.
func daysInDuration(start, end time.Time) int {
	startDay := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	endDay := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)

	days := 0
	for current := startDay; current.Before(endDay); current = current.AddDate(0, 0, 1) {
		days++
	}
	if days == 0 && end.After(start) {
		days = 1
	}
	return days
}

// filterZeroItems drops no-op items: a zero-amount charge must never reach a
// plan.
func filterZeroItems(items []*LineItem) []*LineItem {
	filtered := make([]*LineItem, 0, len(items))
	for _, item := range items {
		if item == nil || item.Amount.IsZero() {
			continue
		}
		filtered = append(filtered, item)
	}
	return filtered
}

// floorsFor derives the period clamps from the snapshot: the provider-side
// subscription start and, while trialing, the trial end.
func floorsFor(ctx *BillingContext, cp *product.CustomerProduct) PeriodFloors {
	floors := PeriodFloors{
		SubscriptionStartedAt: ctx.SubscriptionStartedAt,
	}
	if cp.TrialEndsAt != nil {
		floors.AnchorFloor = *cp.TrialEndsAt
	}
	return floors
}

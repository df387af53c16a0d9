package billing

import (
	"time"

	"github.com/autumnhq/autumn/internal/domain/entitlement"
	"github.com/autumnhq/autumn/internal/domain/product"
	"github.com/autumnhq/autumn/internal/types"
	"github.com/shopspring/decimal"
)

// CycleProjection is the forward-looking answer to "what does the next cycle
// cost, and when does it start".
type CycleProjection struct {
	StartsAt time.Time       `json:"starts_at"`
	Total    decimal.Decimal `json:"total"`
	Currency string          `json:"currency"`
}

// NextCycleProjector projects the next cycle's charges for the products that
// result from applying a plan.
type NextCycleProjector struct {
	generator *LineItemGenerator
}

func NewNextCycleProjector(generator *LineItemGenerator) *NextCycleProjector {
	return &NextCycleProjector{generator: generator}
}

// ProjectNextCycle returns nil when the anchor is the "now" sentinel (there
// is no forward cycle yet) or when no paid recurring product survives the
// plan. Otherwise it re-runs line item generation at the next cycle start of
// the tightest-cycling paid commitment.
func (p *NextCycleProjector) ProjectNextCycle(ctx *BillingContext, plan *BillingPlan) (*CycleProjection, error) {
	if ctx.CycleAnchor.IsNow() {
		return nil, nil
	}

	eligible := eligibleProducts(resultingProducts(ctx, plan))
	if len(eligible) == 0 {
		return nil, nil
	}

	period, count, ok := smallestInterval(eligible)
	if !ok {
		return nil, nil
	}

	nextStart, err := nextCycleStart(ctx.CycleAnchor.Time(), period, count, ctx.Now)
	if err != nil {
		return nil, err
	}

	projected := ctx.WithNow(nextStart)
	projected.Products = eligible
	projected.Entitlements = entitlementsAfterPlan(ctx, plan)

	total := decimal.Zero
	currency := ""
	for _, cp := range eligible {
		items, err := p.generator.BuildLineItems(projected, cp, types.ChargeDirectionCharge)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			total = total.Add(item.FinalAmount)
			if currency == "" && item.Context != nil {
				currency = item.Context.Currency
			}
		}
	}

	return &CycleProjection{
		StartsAt: nextStart,
		Total:    total,
		Currency: currency,
	}, nil
}

// resultingProducts merges the snapshot's products with the plan's inserts;
// an inserted product supersedes a snapshot product with the same id.
func resultingProducts(ctx *BillingContext, plan *BillingPlan) []*product.CustomerProduct {
	merged := make([]*product.CustomerProduct, 0, len(ctx.Products)+len(plan.InsertCustomerProducts))
	inserted := make(map[string]bool, len(plan.InsertCustomerProducts))

	for _, cp := range plan.InsertCustomerProducts {
		merged = append(merged, cp)
		inserted[cp.ID] = true
	}
	for _, cp := range ctx.Products {
		if !inserted[cp.ID] {
			merged = append(merged, cp)
		}
	}
	return merged
}

func eligibleProducts(products []*product.CustomerProduct) []*product.CustomerProduct {
	eligible := make([]*product.CustomerProduct, 0, len(products))
	for _, cp := range products {
		if cp.Product == nil {
			continue
		}
		if !cp.Status.IsActiveEligible() {
			continue
		}
		if !cp.Product.IsPaid() || !cp.Product.IsRecurring() {
			continue
		}
		eligible = append(eligible, cp)
	}
	return eligible
}

// smallestInterval finds the tightest billing interval across the products'
// paid recurring prices; that commitment determines the projection point.
func smallestInterval(products []*product.CustomerProduct) (types.BillingPeriod, int, bool) {
	var (
		found  bool
		period types.BillingPeriod
		count  int
	)
	for _, cp := range products {
		p, c, ok := cp.Product.SmallestBillingPeriod()
		if !ok {
			continue
		}
		if !found || p.ShorterThan(period) || (p == period && c < count) {
			period = p
			count = c
			found = true
		}
	}
	return period, count, found
}

// nextCycleStart walks the anchor forward until it passes now.
func nextCycleStart(anchor time.Time, period types.BillingPeriod, count int, now time.Time) (time.Time, error) {
	start := anchor.UTC()
	for !start.After(now) {
		next, err := types.NextBillingDate(start, count, period)
		if err != nil {
			return time.Time{}, err
		}
		start = next
	}
	return start, nil
}

// entitlementsAfterPlan overlays the plan's balance changes onto copies of
// the snapshot's entitlements so projected allocation charges reflect the
// change being applied.
func entitlementsAfterPlan(ctx *BillingContext, plan *BillingPlan) map[string]*entitlement.Entitlement {
	result := make(map[string]*entitlement.Entitlement, len(ctx.Entitlements))
	for featureID, ent := range ctx.Entitlements {
		result[featureID] = ent
	}

	for _, fragment := range plan.UpdateCustomerEntitlements {
		ent := fragment.Entitlement
		updated := *ent
		updated.Balance = ent.Balance.Add(fragment.BalanceChange)
		result[ent.FeatureID] = &updated
	}
	return result
}

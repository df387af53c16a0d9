package billing

import (
	"time"

	"github.com/autumnhq/autumn/internal/domain/entitlement"
	"github.com/autumnhq/autumn/internal/domain/price"
	"github.com/autumnhq/autumn/internal/domain/product"
	"github.com/autumnhq/autumn/internal/types"
	"github.com/shopspring/decimal"
)

// Shared fixtures for the billing package tests. Amounts are kept small and
// round so expected values stay readable.

func testGenerator() *LineItemGenerator {
	return NewLineItemGenerator(price.NewCalculator(2), 2)
}

func testSeatPrice(amount int64) *price.Price {
	return &price.Price{
		ID:                 "price_seats",
		ProductID:          "prod_pro",
		FeatureID:          "feat_seats",
		Amount:             decimal.NewFromInt(amount),
		Currency:           "usd",
		Type:               types.PRICE_TYPE_ALLOCATION,
		BillingPeriod:      types.BILLING_PERIOD_MONTHLY,
		BillingPeriodCount: 1,
		BillingCadence:     types.BILLING_CADENCE_RECURRING,
		BillingTiming:      types.BillingTimingInAdvance,
		BillingModel:       types.BILLING_MODEL_FLAT_FEE,
		OnIncrease:         types.OnIncreaseProrateImmediately,
		OnDecrease:         types.OnDecreaseNoProrations,
		Description:        "Seats",
	}
}

func testFixedPrice(amount int64) *price.Price {
	return &price.Price{
		ID:                 "price_base",
		ProductID:          "prod_pro",
		Amount:             decimal.NewFromInt(amount),
		Currency:           "usd",
		Type:               types.PRICE_TYPE_FIXED,
		BillingPeriod:      types.BILLING_PERIOD_MONTHLY,
		BillingPeriodCount: 1,
		BillingCadence:     types.BILLING_CADENCE_RECURRING,
		BillingTiming:      types.BillingTimingInAdvance,
		BillingModel:       types.BILLING_MODEL_FLAT_FEE,
		Description:        "Pro Plan",
	}
}

func testConsumablePrice(amount int64) *price.Price {
	return &price.Price{
		ID:                 "price_api_calls",
		ProductID:          "prod_pro",
		FeatureID:          "feat_api_calls",
		Amount:             decimal.NewFromInt(amount),
		Currency:           "usd",
		Type:               types.PRICE_TYPE_CONSUMABLE,
		BillingPeriod:      types.BILLING_PERIOD_MONTHLY,
		BillingPeriodCount: 1,
		BillingCadence:     types.BILLING_CADENCE_RECURRING,
		BillingTiming:      types.BillingTimingInArrear,
		BillingModel:       types.BILLING_MODEL_FLAT_FEE,
		Description:        "API Calls",
	}
}

func testCustomerProduct(startedAt time.Time, prices ...*price.Price) *product.CustomerProduct {
	return &product.CustomerProduct{
		ID:         "cusprod_1",
		CustomerID: "cust_1",
		ProductID:  "prod_pro",
		Status:     types.CustomerProductStatusActive,
		StartedAt:  startedAt,
		Product: &product.Product{
			ID:     "prod_pro",
			Name:   "Pro",
			Prices: prices,
		},
	}
}

// testEntitlement builds a seat entitlement with the given allowance and
// balance plus n seat credits, oldest first.
func testEntitlement(allowance, balance int64, numReplaceables int) *entitlement.Entitlement {
	ent := &entitlement.Entitlement{
		ID:                "ent_seats",
		CustomerID:        "cust_1",
		CustomerProductID: "cusprod_1",
		FeatureID:         "feat_seats",
		Allowance:         decimal.NewFromInt(allowance),
		Balance:           decimal.NewFromInt(balance),
	}
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < numReplaceables; i++ {
		ent.Replaceables = append(ent.Replaceables, &entitlement.Replaceable{
			ID:              types.GenerateUUIDWithPrefix(types.UUID_PREFIX_REPLACEABLE),
			EntitlementID:   ent.ID,
			CreatedAt:       base.Add(time.Duration(i) * time.Hour),
			DeleteNextCycle: true,
		})
	}
	return ent
}

func testBillingContext(now time.Time, anchor types.BillingAnchor, cp *product.CustomerProduct, ent *entitlement.Entitlement) *BillingContext {
	ctx := &BillingContext{
		CustomerID:            "cust_1",
		Now:                   now,
		CycleAnchor:           anchor,
		ResetAnchor:           anchor,
		SubscriptionStartedAt: cp.StartedAt,
		Entitlements:          map[string]*entitlement.Entitlement{},
		FeatureQuantities:     map[string]decimal.Decimal{},
		Provider: ProviderRefs{
			SubscriptionID: "sub_123",
			CustomerID:     "cus_stripe_123",
		},
	}
	if cp != nil {
		ctx.Products = []*product.CustomerProduct{cp}
	}
	if ent != nil {
		ctx.Entitlements[ent.FeatureID] = ent
	}
	return ctx
}

// testAllocationContext wires up an allocation change moving the seat balance
// to newBalance.
func testAllocationContext(now time.Time, ent *entitlement.Entitlement, newBalance int64, prices ...*price.Price) *AllocatedInvoiceContext {
	cp := testCustomerProduct(now.AddDate(0, -1, 0), prices...)
	ctx := testBillingContext(now, types.AnchorAt(now.AddDate(0, -1, 0)), cp, ent)

	actx, err := NewAllocatedInvoiceContext(ctx, ent, EntitlementUpdate{NewBalance: decimal.NewFromInt(newBalance)})
	if err != nil {
		panic(err)
	}
	return actx
}

package billing

import (
	"testing"
	"time"

	ierr "github.com/autumnhq/autumn/internal/errors"
	"github.com/autumnhq/autumn/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildLineItems(t *testing.T) {
	anchor := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	g := testGenerator()

	t.Run("charges fixed and allocation prices, skips consumables", func(t *testing.T) {
		ent := testEntitlement(5, -3, 0) // 3 seats of overage
		cp := testCustomerProduct(anchor, testFixedPrice(50), testSeatPrice(10), testConsumablePrice(1))
		ctx := testBillingContext(now, types.AnchorAt(anchor), cp, ent)

		items, err := g.BuildLineItems(ctx, cp, types.ChargeDirectionCharge)
		require.NoError(t, err)
		require.Len(t, items, 2)

		assert.True(t, items[0].Amount.Equal(decimal.NewFromInt(50)))
		assert.True(t, items[0].ChargeImmediately)
		assert.Equal(t, types.ChargeDirectionCharge, items[0].Context.Direction)

		// Allocation bills current overage at the per-seat price
		assert.True(t, items[1].Amount.Equal(decimal.NewFromInt(30)))
		assert.Equal(t, "feat_seats", items[1].Context.FeatureID)
	})

	t.Run("refund direction negates amounts", func(t *testing.T) {
		ent := testEntitlement(5, -3, 0)
		cp := testCustomerProduct(anchor, testFixedPrice(50), testSeatPrice(10))
		ctx := testBillingContext(now, types.AnchorAt(anchor), cp, ent)

		items, err := g.BuildLineItems(ctx, cp, types.ChargeDirectionRefund)
		require.NoError(t, err)
		require.Len(t, items, 2)

		for _, item := range items {
			assert.True(t, item.Amount.IsNegative(), "refund %s should be negative", item.Description)
			assert.True(t, item.FinalAmount.IsNegative())
			assert.Equal(t, types.ChargeDirectionRefund, item.Context.Direction)
		}
	})

	t.Run("zero amount items never reach the plan", func(t *testing.T) {
		ent := testEntitlement(5, 5, 0) // no overage
		cp := testCustomerProduct(anchor, testFixedPrice(0), testSeatPrice(10))
		ctx := testBillingContext(now, types.AnchorAt(anchor), cp, ent)

		items, err := g.BuildLineItems(ctx, cp, types.ChargeDirectionCharge)
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("allocation price without entitlement fails loudly", func(t *testing.T) {
		cp := testCustomerProduct(anchor, testSeatPrice(10))
		ctx := testBillingContext(now, types.AnchorAt(anchor), cp, nil)

		_, err := g.BuildLineItems(ctx, cp, types.ChargeDirectionCharge)
		require.Error(t, err)
		assert.True(t, ierr.IsNotFound(err))
	})

	t.Run("discounts apply to final amounts only", func(t *testing.T) {
		ent := testEntitlement(5, 5, 0)
		cp := testCustomerProduct(anchor, testFixedPrice(50))
		ctx := testBillingContext(now, types.AnchorAt(anchor), cp, ent)
		ctx.Provider.Discounts = []Discount{{ID: "disc_1", Percent: decimal.NewFromInt(25)}}

		items, err := g.BuildLineItems(ctx, cp, types.ChargeDirectionCharge)
		require.NoError(t, err)
		require.Len(t, items, 1)

		assert.True(t, items[0].Amount.Equal(decimal.NewFromInt(50)))
		assert.True(t, items[0].FinalAmount.Equal(decimal.NewFromFloat(37.50)))
	})
}

func TestBuildArrearLineItems(t *testing.T) {
	anchor := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC)
	g := testGenerator()

	t.Run("bills recorded usage beyond the allowance", func(t *testing.T) {
		ent := testEntitlement(1000, 0, 0)
		ent.FeatureID = "feat_api_calls"
		cp := testCustomerProduct(anchor, testConsumablePrice(1))
		ctx := testBillingContext(now, types.AnchorAt(anchor), cp, ent)

		items, err := g.BuildArrearLineItems(ctx, cp, map[string]decimal.Decimal{
			"feat_api_calls": decimal.NewFromInt(1500),
		})
		require.NoError(t, err)
		require.Len(t, items, 1)

		assert.True(t, items[0].Amount.Equal(decimal.NewFromInt(500)))
		assert.True(t, items[0].ChargeImmediately)
		assert.Equal(t, types.ChargeDirectionCharge, items[0].Context.Direction)
	})

	t.Run("usage under the allowance bills nothing", func(t *testing.T) {
		ent := testEntitlement(1000, 0, 0)
		ent.FeatureID = "feat_api_calls"
		cp := testCustomerProduct(anchor, testConsumablePrice(1))
		ctx := testBillingContext(now, types.AnchorAt(anchor), cp, ent)

		items, err := g.BuildArrearLineItems(ctx, cp, map[string]decimal.Decimal{
			"feat_api_calls": decimal.NewFromInt(400),
		})
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("consumable without entitlement fails loudly", func(t *testing.T) {
		cp := testCustomerProduct(anchor, testConsumablePrice(1))
		ctx := testBillingContext(now, types.AnchorAt(anchor), cp, nil)

		_, err := g.BuildArrearLineItems(ctx, cp, map[string]decimal.Decimal{
			"feat_api_calls": decimal.NewFromInt(100),
		})
		require.Error(t, err)
		assert.True(t, ierr.IsNotFound(err))
	})
}

func TestBuildAllocationChangeItems(t *testing.T) {
	anchor := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	g := testGenerator()

	newActx := func(ent *entitlementFixture) *AllocatedInvoiceContext {
		e := testEntitlement(ent.allowance, ent.balance, 0)
		cp := testCustomerProduct(anchor, testSeatPrice(10))
		ctx := testBillingContext(now, types.AnchorAt(anchor), cp, e)
		actx, err := NewAllocatedInvoiceContext(ctx, e, EntitlementUpdate{NewBalance: decimal.NewFromInt(ent.newBalance)})
		require.NoError(t, err)
		return actx
	}

	t.Run("skip behavior produces no items", func(t *testing.T) {
		actx := newActx(&entitlementFixture{allowance: 5, balance: 0, newBalance: -2})

		items, err := g.BuildAllocationChangeItems(actx, ProrationBehavior{SkipLineItems: true}, decimal.NewFromInt(2))
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("prorated upgrade charge scales by remaining days", func(t *testing.T) {
		actx := newActx(&entitlementFixture{allowance: 5, balance: 0, newBalance: -2})

		items, err := g.BuildAllocationChangeItems(actx, ProrationBehavior{ApplyProration: true}, decimal.NewFromInt(2))
		require.NoError(t, err)
		require.Len(t, items, 1)

		// 2 seats * $10 over a 31-day period with 14 days left: 20 * 14/31
		assert.True(t, items[0].Amount.Equal(decimal.NewFromFloat(9.03)),
			"got %s", items[0].Amount)
		assert.True(t, items[0].ChargeImmediately)
		assert.Equal(t, types.ChargeDirectionCharge, items[0].Context.Direction)
	})

	t.Run("unprorated upgrade bills the full period", func(t *testing.T) {
		actx := newActx(&entitlementFixture{allowance: 5, balance: 0, newBalance: -2})

		items, err := g.BuildAllocationChangeItems(actx, ProrationBehavior{}, decimal.NewFromInt(2))
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.True(t, items[0].Amount.Equal(decimal.NewFromInt(20)))
	})

	t.Run("prorated downgrade refunds the unused share", func(t *testing.T) {
		actx := newActx(&entitlementFixture{allowance: 5, balance: -3, newBalance: -1})

		items, err := g.BuildAllocationChangeItems(actx, ProrationBehavior{ApplyProration: true}, decimal.NewFromInt(2))
		require.NoError(t, err)
		require.Len(t, items, 1)

		assert.True(t, items[0].Amount.IsNegative())
		assert.Equal(t, types.ChargeDirectionRefund, items[0].Context.Direction)
	})

	t.Run("nothing left to bill after seat credits", func(t *testing.T) {
		actx := newActx(&entitlementFixture{allowance: 5, balance: 0, newBalance: -2})

		items, err := g.BuildAllocationChangeItems(actx, ProrationBehavior{ApplyProration: true}, decimal.Zero)
		require.NoError(t, err)
		assert.Empty(t, items)
	})
}

type entitlementFixture struct {
	allowance  int64
	balance    int64
	newBalance int64
}

func TestProrate(t *testing.T) {
	period := &BillingPeriod{
		Start: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC),
	}
	amount := decimal.NewFromInt(31)

	tests := []struct {
		name string
		now  time.Time
		want decimal.Decimal
	}{
		{
			name: "at period start the full amount remains",
			now:  period.Start,
			want: decimal.NewFromInt(31),
		},
		{
			name: "mid period scales by remaining days",
			now:  time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
			want: decimal.NewFromInt(14),
		},
		{
			name: "past period end nothing remains",
			now:  time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
			want: decimal.Zero,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := prorate(amount, period, tt.now)
			assert.True(t, tt.want.Equal(got), "want %s got %s", tt.want, got)
		})
	}
}

package billing

import (
	"github.com/autumnhq/autumn/internal/domain/price"
	"github.com/autumnhq/autumn/internal/types"
)

// ProrationBehavior is the classified outcome of a price's configured
// increase/decrease policy for one direction of change.
type ProrationBehavior struct {
	// ApplyProration scales generated amounts by the unused share of the
	// current period
	ApplyProration bool

	// SkipLineItems short-circuits the whole plan to an empty line item
	// list; the change takes effect at renewal instead
	SkipLineItems bool

	// CreateReplaceables turns a downgrade into seat credits instead of a
	// refund
	CreateReplaceables bool
}

// IsUpgrade classifies the change strictly by usage delta. Equal usage is
// the downgrade path, which is no-op safe. Price amounts play no part in the
// classification: a swap to a cheaper product with higher allocation usage
// still counts as an upgrade here.
func IsUpgrade(ctx *AllocatedInvoiceContext) bool {
	return ctx.NewUsage.GreaterThan(ctx.PreviousUsage)
}

// ProrationPolicy looks up the price's configured behavior for the given
// direction. Pure and deterministic: same inputs, same policy.
func ProrationPolicy(pr *price.Price, isUpgrade bool) ProrationBehavior {
	if isUpgrade {
		switch pr.OnIncrease {
		case types.OnIncreaseBillImmediately:
			return ProrationBehavior{}
		case types.OnIncreaseProrateNextCycle:
			return ProrationBehavior{SkipLineItems: true}
		default:
			// prorate_immediately, also the default for unconfigured prices
			return ProrationBehavior{ApplyProration: true}
		}
	}

	switch pr.OnDecrease {
	case types.OnDecreaseProrateImmediately:
		return ProrationBehavior{ApplyProration: true}
	case types.OnDecreaseNone:
		return ProrationBehavior{SkipLineItems: true}
	default:
		// no_prorations, also the default: removed units become seat
		// credits that expire at the next cycle boundary
		return ProrationBehavior{SkipLineItems: true, CreateReplaceables: true}
	}
}

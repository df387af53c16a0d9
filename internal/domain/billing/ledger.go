package billing

import (
	"github.com/autumnhq/autumn/internal/domain/entitlement"
	"github.com/shopspring/decimal"
)

// EntitlementUpdatePlan is the planned mutation of a single entitlement:
// a signed balance change plus either replaceables to delete (upgrade) or
// replaceables to insert (downgrade), never both.
type EntitlementUpdatePlan struct {
	Entitlement        *entitlement.Entitlement   `json:"entitlement"`
	BalanceChange      decimal.Decimal            `json:"balance_change"`
	DeleteReplaceables []*entitlement.Replaceable `json:"delete_replaceables,omitempty"`
	CreateReplaceables []*entitlement.Replaceable `json:"create_replaceables,omitempty"`
}

// PlanEntitlementUpdate computes how many seat credits an allocation change
// consumes or issues, and the resulting balance delta. Returns nil when the
// change needs no entitlement mutation; callers treat that as "nothing to
// do", not an error.
func PlanEntitlementUpdate(ctx *AllocatedInvoiceContext, behavior ProrationBehavior) *EntitlementUpdatePlan {
	if IsUpgrade(ctx) {
		// A deferred upgrade takes effect at renewal; consuming seat
		// credits now would burn them for a change that has not landed.
		// Downgrades are different: SkipLineItems pairs with
		// CreateReplaceables there, and the credits ARE the deferral.
		if behavior.SkipLineItems {
			return nil
		}
		return planUpgrade(ctx)
	}
	return planDowngrade(ctx, behavior)
}

// planUpgrade consumes existing replaceables, oldest first, to cover newly
// occupied overage seats. It never deletes more credits than exist and never
// fabricates debt.
func planUpgrade(ctx *AllocatedInvoiceContext) *EntitlementUpdatePlan {
	newOverageUsage := ctx.NewOverage.Sub(ctx.PreviousOverage)
	if newOverageUsage.LessThanOrEqual(decimal.Zero) {
		return nil
	}

	available := ctx.Entitlement.Replaceables
	numToDelete := int(newOverageUsage.IntPart())
	if numToDelete > len(available) {
		numToDelete = len(available)
	}
	if numToDelete == 0 {
		return nil
	}

	toDelete := make([]*entitlement.Replaceable, numToDelete)
	copy(toDelete, available[:numToDelete])

	return &EntitlementUpdatePlan{
		Entitlement:        ctx.Entitlement,
		BalanceChange:      decimal.NewFromInt(int64(numToDelete)).Neg(),
		DeleteReplaceables: toDelete,
	}
}

// planDowngrade issues one seat credit per vacated overage seat, each marked
// to expire at the next cycle boundary. Only runs when the price's decrease
// policy says so.
func planDowngrade(ctx *AllocatedInvoiceContext, behavior ProrationBehavior) *EntitlementUpdatePlan {
	if !behavior.CreateReplaceables {
		return nil
	}

	freed := ctx.PreviousOverage.Sub(ctx.NewOverage)
	numToCreate := int(freed.IntPart())
	if numToCreate <= 0 {
		return nil
	}

	created := make([]*entitlement.Replaceable, 0, numToCreate)
	for i := 0; i < numToCreate; i++ {
		created = append(created, entitlement.NewReplaceable(ctx.Entitlement.ID, ctx.Now))
	}

	return &EntitlementUpdatePlan{
		Entitlement:        ctx.Entitlement,
		BalanceChange:      decimal.NewFromInt(int64(numToCreate)),
		CreateReplaceables: created,
	}
}

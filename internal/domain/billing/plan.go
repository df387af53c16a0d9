package billing

import (
	"github.com/autumnhq/autumn/internal/domain/product"
	ierr "github.com/autumnhq/autumn/internal/errors"
	"github.com/autumnhq/autumn/internal/types"
	"github.com/shopspring/decimal"
)

// BillingPlan is the provider-agnostic output of a plan computation:
// entitlement mutations, money movements, and product records to persist.
// Everything in it is a short-lived, per-request value; persistence belongs
// to the durable store behind the engine.
type BillingPlan struct {
	UpdateCustomerEntitlements []*EntitlementUpdatePlan   `json:"update_customer_entitlements"`
	LineItems                  []*LineItem                `json:"line_items"`
	InsertCustomerProducts     []*product.CustomerProduct `json:"insert_customer_products"`
}

// Total sums the plan's final amounts. Refunds are negative, so this is the
// net money movement.
func (p *BillingPlan) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range p.LineItems {
		total = total.Add(item.FinalAmount)
	}
	return total
}

// Currency returns the currency of the plan's line items, empty when the
// plan moves no money.
func (p *BillingPlan) Currency() string {
	for _, item := range p.LineItems {
		if item.Context != nil && item.Context.Currency != "" {
			return item.Context.Currency
		}
	}
	return ""
}

// PlanAssembler sequences the ledger and the line item generator into plans.
// It performs no computation of its own beyond ordering and packaging; new
// price types plug in at the generator without touching the ledger or the
// period math.
type PlanAssembler struct {
	generator *LineItemGenerator
}

func NewPlanAssembler(generator *LineItemGenerator) *PlanAssembler {
	return &PlanAssembler{generator: generator}
}

// ComputeAllocationPlan turns an allocation change into a plan. The
// orchestration order is fixed: entitlement fragment first, line items
// second, packaging last.
func (a *PlanAssembler) ComputeAllocationPlan(actx *AllocatedInvoiceContext) (*BillingPlan, error) {
	ref, err := actx.resolvePrice()
	if err != nil {
		return nil, err
	}

	upgrade := IsUpgrade(actx)
	behavior := ProrationPolicy(ref.Price, upgrade)

	fragment := PlanEntitlementUpdate(actx, behavior)

	unitsToBill := decimal.Zero
	if upgrade {
		unitsToBill = actx.NewOverage.Sub(actx.PreviousOverage)
		if fragment != nil {
			consumed := decimal.NewFromInt(int64(len(fragment.DeleteReplaceables)))
			unitsToBill = unitsToBill.Sub(consumed)
		}
	} else {
		unitsToBill = actx.PreviousOverage.Sub(actx.NewOverage)
	}

	lineItems, err := a.generator.BuildAllocationChangeItems(actx, behavior, unitsToBill)
	if err != nil {
		return nil, err
	}

	plan := &BillingPlan{
		UpdateCustomerEntitlements: []*EntitlementUpdatePlan{},
		LineItems:                  lineItems,
		InsertCustomerProducts:     []*product.CustomerProduct{},
	}
	if fragment != nil {
		plan.UpdateCustomerEntitlements = append(plan.UpdateCustomerEntitlements, fragment)
	}
	return plan, nil
}

// ComputeProductChangePlan builds the plan for attaching a product, or for
// swapping one product for another when oldCP is set. In a swap, every
// refund item for the superseded product precedes every charge item for the
// product replacing it; downstream diffing relies on that ordering.
func (a *PlanAssembler) ComputeProductChangePlan(ctx *BillingContext, oldCP, newCP *product.CustomerProduct) (*BillingPlan, error) {
	if newCP == nil {
		return nil, ierr.NewError("new customer product is required").
			WithHint("A product change needs the product taking effect").
			Mark(ierr.ErrValidation)
	}

	lineItems := make([]*LineItem, 0)

	if oldCP != nil {
		refunds, err := a.generator.BuildLineItems(ctx, oldCP, types.ChargeDirectionRefund)
		if err != nil {
			return nil, err
		}
		lineItems = append(lineItems, refunds...)
	}

	charges, err := a.generator.BuildLineItems(ctx, newCP, types.ChargeDirectionCharge)
	if err != nil {
		return nil, err
	}
	lineItems = append(lineItems, charges...)

	return &BillingPlan{
		UpdateCustomerEntitlements: []*EntitlementUpdatePlan{},
		LineItems:                  lineItems,
		InsertCustomerProducts:     []*product.CustomerProduct{newCP},
	}, nil
}

// ComputeArrearPlan bills recorded consumable usage for the product at the
// end of its period.
func (a *PlanAssembler) ComputeArrearPlan(ctx *BillingContext, cp *product.CustomerProduct, usage map[string]decimal.Decimal) (*BillingPlan, error) {
	lineItems, err := a.generator.BuildArrearLineItems(ctx, cp, usage)
	if err != nil {
		return nil, err
	}

	return &BillingPlan{
		UpdateCustomerEntitlements: []*EntitlementUpdatePlan{},
		LineItems:                  lineItems,
		InsertCustomerProducts:     []*product.CustomerProduct{},
	}, nil
}

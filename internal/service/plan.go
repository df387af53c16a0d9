package service

import (
	"context"

	"github.com/autumnhq/autumn/internal/domain/billing"
	"github.com/autumnhq/autumn/internal/domain/product"
	"github.com/autumnhq/autumn/internal/provider"
	"github.com/shopspring/decimal"
)

// PlanService computes billing plans and their provider action sets.
type PlanService interface {
	// ComputeAllocationChange plans a seat-count change for the feature the
	// entitlement covers: ledger fragment plus any immediate line items.
	ComputeAllocationChange(ctx context.Context, bctx *billing.BillingContext, featureID string, update billing.EntitlementUpdate) (*billing.BillingPlan, error)

	// ComputeProductChange plans attaching newCP, refunding oldCP first when
	// one is being replaced.
	ComputeProductChange(ctx context.Context, bctx *billing.BillingContext, oldCP, newCP *product.CustomerProduct) (*billing.BillingPlan, error)

	// ComputeArrearCharges plans end-of-period billing for recorded
	// consumable usage.
	ComputeArrearCharges(ctx context.Context, bctx *billing.BillingContext, cp *product.CustomerProduct, usage map[string]decimal.Decimal) (*billing.BillingPlan, error)

	// BuildActionSet derives the provider-facing action plan from a computed
	// billing plan.
	BuildActionSet(ctx context.Context, bctx *billing.BillingContext, plan *billing.BillingPlan) (*provider.ActionSet, error)
}

type planService struct {
	ServiceParams
	engine *engine
}

func NewPlanService(params ServiceParams) PlanService {
	return &planService{
		ServiceParams: params,
		engine:        newEngine(params),
	}
}

func (s *planService) ComputeAllocationChange(ctx context.Context, bctx *billing.BillingContext, featureID string, update billing.EntitlementUpdate) (*billing.BillingPlan, error) {
	actx, err := billing.NewAllocatedInvoiceContext(bctx, bctx.EntitlementFor(featureID), update)
	if err != nil {
		s.Logger.Errorw("failed to build allocation context",
			"error", err,
			"customer_id", bctx.CustomerID,
			"feature_id", featureID)
		return nil, err
	}

	plan, err := s.engine.assembler.ComputeAllocationPlan(actx)
	if err != nil {
		s.Logger.Errorw("failed to compute allocation plan",
			"error", err,
			"customer_id", bctx.CustomerID,
			"feature_id", featureID)
		return nil, err
	}

	s.Logger.Infow("computed allocation plan",
		"customer_id", bctx.CustomerID,
		"feature_id", featureID,
		"line_items", len(plan.LineItems),
		"total", plan.Total())
	return plan, nil
}

func (s *planService) ComputeProductChange(ctx context.Context, bctx *billing.BillingContext, oldCP, newCP *product.CustomerProduct) (*billing.BillingPlan, error) {
	plan, err := s.engine.assembler.ComputeProductChangePlan(bctx, oldCP, newCP)
	if err != nil {
		s.Logger.Errorw("failed to compute product change plan",
			"error", err,
			"customer_id", bctx.CustomerID)
		return nil, err
	}

	s.Logger.Infow("computed product change plan",
		"customer_id", bctx.CustomerID,
		"line_items", len(plan.LineItems),
		"total", plan.Total())
	return plan, nil
}

func (s *planService) ComputeArrearCharges(ctx context.Context, bctx *billing.BillingContext, cp *product.CustomerProduct, usage map[string]decimal.Decimal) (*billing.BillingPlan, error) {
	plan, err := s.engine.assembler.ComputeArrearPlan(bctx, cp, usage)
	if err != nil {
		s.Logger.Errorw("failed to compute arrear plan",
			"error", err,
			"customer_id", bctx.CustomerID,
			"customer_product_id", cp.ID)
		return nil, err
	}

	s.Logger.Infow("computed arrear plan",
		"customer_id", bctx.CustomerID,
		"customer_product_id", cp.ID,
		"line_items", len(plan.LineItems),
		"total", plan.Total())
	return plan, nil
}

func (s *planService) BuildActionSet(ctx context.Context, bctx *billing.BillingContext, plan *billing.BillingPlan) (*provider.ActionSet, error) {
	set := provider.ActionSetFromPlan(bctx, plan)
	if err := set.Validate(); err != nil {
		s.Logger.Errorw("derived action set failed validation",
			"error", err,
			"customer_id", bctx.CustomerID)
		return nil, err
	}

	s.Logger.Debugw("derived provider action set",
		"customer_id", bctx.CustomerID,
		"subscription_action", set.Subscription.Kind,
		"invoice_action", set.Invoice.Kind,
		"schedule_action", set.Schedule.Kind)
	return set, nil
}

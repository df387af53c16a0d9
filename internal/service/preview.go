package service

import (
	"context"

	"github.com/autumnhq/autumn/internal/domain/billing"
	"github.com/autumnhq/autumn/internal/domain/product"
)

// PreviewService answers "what would this change cost" without applying
// anything: it runs the same computation a real change would and packages
// the plan with a next-cycle projection.
type PreviewService interface {
	PreviewAllocationChange(ctx context.Context, bctx *billing.BillingContext, featureID string, update billing.EntitlementUpdate) (*billing.Preview, error)
	PreviewProductChange(ctx context.Context, bctx *billing.BillingContext, oldCP, newCP *product.CustomerProduct) (*billing.Preview, error)
}

type previewService struct {
	ServiceParams
	engine *engine
	plans  PlanService
}

func NewPreviewService(params ServiceParams) PreviewService {
	return &previewService{
		ServiceParams: params,
		engine:        newEngine(params),
		plans:         NewPlanService(params),
	}
}

func (s *previewService) PreviewAllocationChange(ctx context.Context, bctx *billing.BillingContext, featureID string, update billing.EntitlementUpdate) (*billing.Preview, error) {
	plan, err := s.plans.ComputeAllocationChange(ctx, bctx, featureID, update)
	if err != nil {
		return nil, err
	}
	return s.preview(bctx, plan)
}

func (s *previewService) PreviewProductChange(ctx context.Context, bctx *billing.BillingContext, oldCP, newCP *product.CustomerProduct) (*billing.Preview, error) {
	plan, err := s.plans.ComputeProductChange(ctx, bctx, oldCP, newCP)
	if err != nil {
		return nil, err
	}
	return s.preview(bctx, plan)
}

func (s *previewService) preview(bctx *billing.BillingContext, plan *billing.BillingPlan) (*billing.Preview, error) {
	projection, err := s.engine.projector.ProjectNextCycle(bctx, plan)
	if err != nil {
		s.Logger.Errorw("failed to project next cycle",
			"error", err,
			"customer_id", bctx.CustomerID)
		return nil, err
	}

	preview := billing.BuildPreview(plan, projection, s.Config.Billing.DefaultCurrency)

	s.Logger.Infow("built billing preview",
		"customer_id", bctx.CustomerID,
		"preview_number", preview.Number,
		"total", preview.Total,
		"has_next_cycle", projection != nil)
	return preview, nil
}

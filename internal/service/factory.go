package service

import (
	"github.com/autumnhq/autumn/internal/config"
	"github.com/autumnhq/autumn/internal/domain/billing"
	"github.com/autumnhq/autumn/internal/domain/price"
	ierr "github.com/autumnhq/autumn/internal/errors"
	"github.com/autumnhq/autumn/internal/logger"
)

// ServiceParams carries the shared dependencies injected into every service.
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
}

func (p ServiceParams) Validate() error {
	if p.Logger == nil {
		return ierr.NewError("logger is required").
			Mark(ierr.ErrValidation)
	}
	if p.Config == nil {
		return ierr.NewError("config is required").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// engine bundles the computation components every service runs on. All of
// them are stateless, so one engine is shared freely across requests.
type engine struct {
	generator *billing.LineItemGenerator
	assembler *billing.PlanAssembler
	projector *billing.NextCycleProjector
}

func newEngine(params ServiceParams) *engine {
	precision := params.Config.Billing.CurrencyPrecision
	generator := billing.NewLineItemGenerator(price.NewCalculator(precision), precision)
	return &engine{
		generator: generator,
		assembler: billing.NewPlanAssembler(generator),
		projector: billing.NewNextCycleProjector(generator),
	}
}

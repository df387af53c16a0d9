package billing

import (
	"time"

	"github.com/autumnhq/autumn/internal/domain/entitlement"
	"github.com/autumnhq/autumn/internal/domain/product"
	ierr "github.com/autumnhq/autumn/internal/errors"
	"github.com/autumnhq/autumn/internal/types"
	"github.com/shopspring/decimal"
)

// ProviderRefs are the provider-side references resolved before a plan
// computation runs. The engine never fetches these itself.
type ProviderRefs struct {
	SubscriptionID  string     `json:"subscription_id,omitempty"`
	CustomerID      string     `json:"customer_id,omitempty"`
	PaymentMethodID string     `json:"payment_method_id,omitempty"`
	Discounts       []Discount `json:"discounts,omitempty"`
}

// Discount is a provider-side discount applied to generated line items.
type Discount struct {
	ID      string          `json:"id"`
	Percent decimal.Decimal `json:"percent"`
}

// BillingContext is the immutable snapshot of state a plan computation reads.
// Downstream components never mutate it; derived contexts are produced with
// WithNow.
type BillingContext struct {
	CustomerID string `json:"customer_id"`

	// Products are the customer products in play for this computation
	Products []*product.CustomerProduct `json:"products"`

	// FeatureQuantities are the requested quantities keyed by feature id
	FeatureQuantities map[string]decimal.Decimal `json:"feature_quantities,omitempty"`

	// Entitlements are the customer's resolved entitlements keyed by feature id
	Entitlements map[string]*entitlement.Entitlement `json:"entitlements,omitempty"`

	// Now is the instant all period math is evaluated at
	Now time.Time `json:"now"`

	// CycleAnchor aligns recurring periods; the "now" sentinel before any
	// paid recurring product exists
	CycleAnchor types.BillingAnchor `json:"-"`

	// ResetAnchor aligns entitlement usage resets
	ResetAnchor types.BillingAnchor `json:"-"`

	// SubscriptionStartedAt floors billing periods: nothing bills for time
	// before the provider-side subscription existed
	SubscriptionStartedAt time.Time `json:"subscription_started_at"`

	Provider ProviderRefs `json:"provider"`

	// BillingVersion tags which billing model produced this context
	BillingVersion int `json:"billing_version"`
}

// NewBillingContext validates and returns an immutable computation snapshot.
func NewBillingContext(params BillingContext) (*BillingContext, error) {
	if params.CustomerID == "" {
		return nil, ierr.NewError("customer_id is required").
			WithHint("Please provide a valid customer ID").
			Mark(ierr.ErrValidation)
	}
	if params.Now.IsZero() {
		return nil, ierr.NewError("now is required").
			WithHint("Billing context requires the evaluation instant").
			Mark(ierr.ErrValidation)
	}
	if params.CycleAnchor.IsZero() {
		return nil, ierr.NewError("billing cycle anchor is required").
			WithHint("Provide a concrete anchor or the now sentinel").
			Mark(ierr.ErrValidation)
	}
	for _, cp := range params.Products {
		if err := cp.Validate(); err != nil {
			return nil, err
		}
	}

	ctx := params
	ctx.Now = params.Now.UTC()
	if ctx.FeatureQuantities == nil {
		ctx.FeatureQuantities = map[string]decimal.Decimal{}
	}
	if ctx.Entitlements == nil {
		ctx.Entitlements = map[string]*entitlement.Entitlement{}
	}
	return &ctx, nil
}

// WithNow derives a new context from c with the evaluation instant shifted.
// The receiver is left untouched; the projector uses this to re-run line item
// generation at a future cycle start.
func (c *BillingContext) WithNow(now time.Time) *BillingContext {
	derived := *c
	derived.Now = now.UTC()

	derived.Products = make([]*product.CustomerProduct, len(c.Products))
	copy(derived.Products, c.Products)

	return &derived
}

// EntitlementFor returns the resolved entitlement for a feature, if any.
func (c *BillingContext) EntitlementFor(featureID string) *entitlement.Entitlement {
	return c.Entitlements[featureID]
}

// EntitlementUpdate is the raw update being applied to an entitlement: the
// balance it should end up with once the requested change or usage deduction
// lands.
type EntitlementUpdate struct {
	NewBalance decimal.Decimal `json:"new_balance"`
}

// AllocatedInvoiceContext extends BillingContext with the entitlement being
// changed and the usage/overage scalars every downstream decision keys off.
type AllocatedInvoiceContext struct {
	*BillingContext

	Entitlement *entitlement.Entitlement `json:"entitlement"`
	Update      EntitlementUpdate        `json:"update"`

	PreviousUsage   decimal.Decimal `json:"previous_usage"`
	NewUsage        decimal.Decimal `json:"new_usage"`
	PreviousOverage decimal.Decimal `json:"previous_overage"`
	NewOverage      decimal.Decimal `json:"new_overage"`
}

// NewAllocatedInvoiceContext computes the four usage scalars from the
// entitlement's current state and the raw update, before any line items
// exist.
func NewAllocatedInvoiceContext(ctx *BillingContext, ent *entitlement.Entitlement, update EntitlementUpdate) (*AllocatedInvoiceContext, error) {
	if ctx == nil {
		return nil, ierr.NewError("billing context is required").
			WithHint("Allocated invoice context requires a base billing context").
			Mark(ierr.ErrValidation)
	}
	if ent == nil {
		return nil, ierr.NewError("entitlement is required").
			WithHint("No entitlement found for the requested change").
			Mark(ierr.ErrNotFound)
	}
	if err := ent.Validate(); err != nil {
		return nil, err
	}

	newUsage := ent.Allowance.Sub(update.NewBalance)
	newOverage := decimal.Zero
	if update.NewBalance.LessThan(decimal.Zero) {
		newOverage = update.NewBalance.Neg()
	}

	return &AllocatedInvoiceContext{
		BillingContext:  ctx,
		Entitlement:     ent,
		Update:          update,
		PreviousUsage:   ent.Usage(),
		NewUsage:        newUsage,
		PreviousOverage: ent.Overage(),
		NewOverage:      newOverage,
	}, nil
}

// resolvePrice finds the allocation price billing the changed entitlement's
// feature across the products in play. A missing price is a missing-context
// error: an allocation change without a price cannot be billed.
func (c *AllocatedInvoiceContext) resolvePrice() (*priceRef, error) {
	for _, cp := range c.Products {
		if cp.Product == nil {
			continue
		}
		if pr := cp.Product.PriceForFeature(c.Entitlement.FeatureID); pr != nil {
			return &priceRef{Price: pr, CustomerProduct: cp}, nil
		}
	}
	return nil, ierr.NewError("no price found for entitlement").
		WithHintf("No price bills feature %s on any product in play", c.Entitlement.FeatureID).
		WithReportableDetails(map[string]any{
			"feature_id":     c.Entitlement.FeatureID,
			"entitlement_id": c.Entitlement.ID,
		}).
		Mark(ierr.ErrNotFound)
}

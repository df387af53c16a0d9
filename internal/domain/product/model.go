package product

import (
	"time"

	"github.com/autumnhq/autumn/internal/domain/price"
	ierr "github.com/autumnhq/autumn/internal/errors"
	"github.com/autumnhq/autumn/internal/types"
)

// Product is a sellable bundle of prices.
type Product struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Prices      []*price.Price `json:"prices"`
}

// CustomerProduct is a product attached to a customer, together with its
// lifecycle status and provider-side references.
type CustomerProduct struct {
	ID         string                      `json:"id"`
	CustomerID string                      `json:"customer_id"`
	ProductID  string                      `json:"product_id"`
	Status     types.CustomerProductStatus `json:"status"`
	Product    *Product                    `json:"product,omitempty"`

	// StartedAt is when the provider-side subscription for this product began
	StartedAt time.Time `json:"started_at"`

	// TrialEndsAt is set while the product is trialing
	TrialEndsAt *time.Time `json:"trial_ends_at,omitempty"`
}

// IsPaid reports whether any price on the product can produce a charge.
func (p *Product) IsPaid() bool {
	for _, pr := range p.Prices {
		if pr.IsPaid() {
			return true
		}
	}
	return false
}

// IsRecurring reports whether any price on the product recurs.
func (p *Product) IsRecurring() bool {
	for _, pr := range p.Prices {
		if pr.IsRecurring() {
			return true
		}
	}
	return false
}

// SmallestBillingPeriod returns the tightest-cycling recurring paid price on
// the product, if any. The tightest cycle determines when the next charge
// lands.
func (p *Product) SmallestBillingPeriod() (types.BillingPeriod, int, bool) {
	var (
		found  bool
		period types.BillingPeriod
		count  int
	)
	for _, pr := range p.Prices {
		if !pr.IsRecurring() || !pr.IsPaid() {
			continue
		}
		if !found || pr.BillingPeriod.ShorterThan(period) {
			period = pr.BillingPeriod
			count = pr.BillingPeriodCount
			found = true
		}
	}
	return period, count, found
}

// PriceForFeature returns the price on the product billing the given feature.
func (p *Product) PriceForFeature(featureID string) *price.Price {
	for _, pr := range p.Prices {
		if pr.FeatureID == featureID {
			return pr
		}
	}
	return nil
}

// Validate performs validation on the product
func (p *Product) Validate() error {
	if p.ID == "" {
		return ierr.NewError("product id is required").
			WithHint("Please provide a valid product ID").
			Mark(ierr.ErrValidation)
	}
	for _, pr := range p.Prices {
		if err := pr.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Validate performs validation on the customer product
func (cp *CustomerProduct) Validate() error {
	if cp.ID == "" {
		return ierr.NewError("customer product id is required").
			WithHint("Please provide a valid customer product ID").
			Mark(ierr.ErrValidation)
	}
	if cp.CustomerID == "" {
		return ierr.NewError("customer_id is required").
			WithHint("Please provide a valid customer ID").
			Mark(ierr.ErrValidation)
	}
	if err := cp.Status.Validate(); err != nil {
		return err
	}
	return nil
}

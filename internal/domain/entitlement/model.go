package entitlement

import (
	"time"

	ierr "github.com/autumnhq/autumn/internal/errors"
	"github.com/shopspring/decimal"
)

// Entitlement is a customer's tracked balance for one feature under one
// product. Balance counts remaining included units and goes negative once
// the customer exceeds the allowance; the negative part is the overage that
// allocation prices bill for.
type Entitlement struct {
	ID                string `json:"id"`
	CustomerID        string `json:"customer_id"`
	CustomerProductID string `json:"customer_product_id"`
	FeatureID         string `json:"feature_id"`

	// Allowance is the number of units included with the product
	Allowance decimal.Decimal `json:"allowance"`

	// Balance is the remaining included units; negative means overage
	Balance decimal.Decimal `json:"balance"`

	// Replaceables are unexpired seat credits attached to this entitlement,
	// ordered oldest first
	Replaceables []*Replaceable `json:"replaceables,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Usage returns the units consumed out of (and possibly beyond) the allowance.
func (e *Entitlement) Usage() decimal.Decimal {
	return e.Allowance.Sub(e.Balance)
}

// Overage returns the units consumed beyond the allowance, never negative.
func (e *Entitlement) Overage() decimal.Decimal {
	if e.Balance.GreaterThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return e.Balance.Neg()
}

// Validate performs validation on the entitlement
func (e *Entitlement) Validate() error {
	if e.ID == "" {
		return ierr.NewError("entitlement id is required").
			WithHint("Please provide a valid entitlement ID").
			Mark(ierr.ErrValidation)
	}
	if e.FeatureID == "" {
		return ierr.NewError("feature_id is required").
			WithHint("Please provide a valid feature ID").
			Mark(ierr.ErrValidation)
	}
	if e.CustomerID == "" {
		return ierr.NewError("customer_id is required").
			WithHint("Please provide a valid customer ID").
			Mark(ierr.ErrValidation)
	}
	return nil
}

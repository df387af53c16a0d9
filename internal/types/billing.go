package types

import (
	ierr "github.com/autumnhq/autumn/internal/errors"
	"github.com/samber/lo"
)

// BillingPeriod is the recurrence interval of a price ex MONTHLY, ANNUAL
type BillingPeriod string

// BillingCadence is the billing cadence of a price ex RECURRING, ONETIME
type BillingCadence string

// BillingTiming describes when a price is collected relative to the period it covers
type BillingTiming string

// ChargeDirection describes whether a line item moves money towards or away
// from the customer
type ChargeDirection string

const (
	// For BILLING_CADENCE_RECURRING
	BILLING_PERIOD_DAILY     BillingPeriod = "DAILY"
	BILLING_PERIOD_WEEKLY    BillingPeriod = "WEEKLY"
	BILLING_PERIOD_MONTHLY   BillingPeriod = "MONTHLY"
	BILLING_PERIOD_QUARTERLY BillingPeriod = "QUARTERLY"
	BILLING_PERIOD_HALF_YEAR BillingPeriod = "HALF_YEARLY"
	BILLING_PERIOD_ANNUAL    BillingPeriod = "ANNUAL"

	BILLING_CADENCE_RECURRING BillingCadence = "RECURRING"
	BILLING_CADENCE_ONETIME   BillingCadence = "ONETIME"

	// BillingTimingInAdvance collects payment at the start of the period it covers
	BillingTimingInAdvance BillingTiming = "in_advance"
	// BillingTimingInArrear collects payment for recorded usage once the period ends
	BillingTimingInArrear BillingTiming = "in_arrear"

	ChargeDirectionCharge ChargeDirection = "charge"
	ChargeDirectionRefund ChargeDirection = "refund"
)

var BillingPeriodValues = []BillingPeriod{
	BILLING_PERIOD_DAILY,
	BILLING_PERIOD_WEEKLY,
	BILLING_PERIOD_MONTHLY,
	BILLING_PERIOD_QUARTERLY,
	BILLING_PERIOD_HALF_YEAR,
	BILLING_PERIOD_ANNUAL,
}

// billingPeriodRank orders periods from tightest to loosest cycle.
var billingPeriodRank = map[BillingPeriod]int{
	BILLING_PERIOD_DAILY:     1,
	BILLING_PERIOD_WEEKLY:    2,
	BILLING_PERIOD_MONTHLY:   3,
	BILLING_PERIOD_QUARTERLY: 4,
	BILLING_PERIOD_HALF_YEAR: 5,
	BILLING_PERIOD_ANNUAL:    6,
}

func (p BillingPeriod) Validate() error {
	if !lo.Contains(BillingPeriodValues, p) {
		return ierr.NewError("invalid billing period").
			WithHint("Billing period must be one of DAILY, WEEKLY, MONTHLY, QUARTERLY, HALF_YEARLY, ANNUAL").
			WithReportableDetails(map[string]any{
				"allowed_values": BillingPeriodValues,
				"provided_value": p,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

func (p BillingPeriod) String() string {
	return string(p)
}

// ShorterThan reports whether p cycles more frequently than other.
// Unknown periods compare as loosest so they never win a smallest-interval search.
func (p BillingPeriod) ShorterThan(other BillingPeriod) bool {
	pr, ok := billingPeriodRank[p]
	if !ok {
		return false
	}
	or, ok := billingPeriodRank[other]
	if !ok {
		return true
	}
	return pr < or
}

var BillingCadenceValues = []BillingCadence{
	BILLING_CADENCE_RECURRING,
	BILLING_CADENCE_ONETIME,
}

func (c BillingCadence) Validate() error {
	if !lo.Contains(BillingCadenceValues, c) {
		return ierr.NewError("invalid billing cadence").
			WithHint("Billing cadence must be RECURRING or ONETIME").
			WithReportableDetails(map[string]any{
				"allowed_values": BillingCadenceValues,
				"provided_value": c,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

var BillingTimingValues = []BillingTiming{
	BillingTimingInAdvance,
	BillingTimingInArrear,
}

func (t BillingTiming) Validate() error {
	if !lo.Contains(BillingTimingValues, t) {
		return ierr.NewError("invalid billing timing").
			WithHint("Billing timing must be in_advance or in_arrear").
			WithReportableDetails(map[string]any{
				"allowed_values": BillingTimingValues,
				"provided_value": t,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

var ChargeDirectionValues = []ChargeDirection{
	ChargeDirectionCharge,
	ChargeDirectionRefund,
}

func (d ChargeDirection) Validate() error {
	if !lo.Contains(ChargeDirectionValues, d) {
		return ierr.NewError("invalid charge direction").
			WithHint("Charge direction must be charge or refund").
			WithReportableDetails(map[string]any{
				"allowed_values": ChargeDirectionValues,
				"provided_value": d,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

func (d ChargeDirection) String() string {
	return string(d)
}

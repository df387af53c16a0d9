package types

import (
	ierr "github.com/autumnhq/autumn/internal/errors"
	"github.com/samber/lo"
)

// Status is the lifecycle status of a record
type Status string

const (
	StatusPublished Status = "published"
	StatusDeleted   Status = "deleted"
	StatusArchived  Status = "archived"
)

// CustomerProductStatus is the lifecycle status of a product attached
// to a customer
type CustomerProductStatus string

const (
	CustomerProductStatusActive    CustomerProductStatus = "active"
	CustomerProductStatusTrialing  CustomerProductStatus = "trialing"
	CustomerProductStatusPastDue   CustomerProductStatus = "past_due"
	CustomerProductStatusScheduled CustomerProductStatus = "scheduled"
	CustomerProductStatusExpired   CustomerProductStatus = "expired"
)

var CustomerProductStatusValues = []CustomerProductStatus{
	CustomerProductStatusActive,
	CustomerProductStatusTrialing,
	CustomerProductStatusPastDue,
	CustomerProductStatusScheduled,
	CustomerProductStatusExpired,
}

// activeEligibleStatuses are the statuses that count towards cycle
// projection. Scheduled and expired products never project charges.
var activeEligibleStatuses = []CustomerProductStatus{
	CustomerProductStatusActive,
	CustomerProductStatusTrialing,
	CustomerProductStatusPastDue,
}

func (s CustomerProductStatus) Validate() error {
	if !lo.Contains(CustomerProductStatusValues, s) {
		return ierr.NewError("invalid customer product status").
			WithHint("Customer product status must be active, trialing, past_due, scheduled, or expired").
			WithReportableDetails(map[string]any{
				"allowed_values": CustomerProductStatusValues,
				"provided_value": s,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsActiveEligible reports whether the status counts as active for
// billing projection purposes.
func (s CustomerProductStatus) IsActiveEligible() bool {
	return lo.Contains(activeEligibleStatuses, s)
}

func (s CustomerProductStatus) String() string {
	return string(s)
}

package provider

import (
	"time"

	ierr "github.com/autumnhq/autumn/internal/errors"
	"github.com/autumnhq/autumn/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Action kinds. Every category carries exactly one action, "none" included,
// so an adapter never has to disambiguate intent from absent fields.

type SubscriptionActionKind string

const (
	SubscriptionActionCreate SubscriptionActionKind = "create"
	SubscriptionActionUpdate SubscriptionActionKind = "update"
	SubscriptionActionCancel SubscriptionActionKind = "cancel"
	SubscriptionActionNone   SubscriptionActionKind = "none"
)

type InvoiceActionKind string

const (
	InvoiceActionCreate InvoiceActionKind = "create"
	InvoiceActionNone   InvoiceActionKind = "none"
)

type InvoiceItemsActionKind string

const (
	InvoiceItemsActionAdd  InvoiceItemsActionKind = "add"
	InvoiceItemsActionNone InvoiceItemsActionKind = "none"
)

type ScheduleActionKind string

const (
	ScheduleActionCreate ScheduleActionKind = "create"
	ScheduleActionCancel ScheduleActionKind = "cancel"
	ScheduleActionNone   ScheduleActionKind = "none"
)

var (
	subscriptionActionKinds = []SubscriptionActionKind{
		SubscriptionActionCreate, SubscriptionActionUpdate, SubscriptionActionCancel, SubscriptionActionNone,
	}
	invoiceActionKinds = []InvoiceActionKind{
		InvoiceActionCreate, InvoiceActionNone,
	}
	invoiceItemsActionKinds = []InvoiceItemsActionKind{
		InvoiceItemsActionAdd, InvoiceItemsActionNone,
	}
	scheduleActionKinds = []ScheduleActionKind{
		ScheduleActionCreate, ScheduleActionCancel, ScheduleActionNone,
	}
)

// SubscriptionItem is one priced component on a provider subscription.
type SubscriptionItem struct {
	PriceRef string `json:"price_ref"`
	Quantity int64  `json:"quantity"`
}

// SubscriptionAction mutates the provider-side subscription.
type SubscriptionAction struct {
	Kind             SubscriptionActionKind `json:"kind"`
	CustomerRef      string                 `json:"customer_ref,omitempty"`
	SubscriptionRef  string                 `json:"subscription_ref,omitempty"`
	PaymentMethodRef string                 `json:"payment_method_ref,omitempty"`
	Items            []SubscriptionItem     `json:"items,omitempty"`
	AnchorAt         *time.Time             `json:"anchor_at,omitempty"`
}

// InvoiceAction creates the provider-side invoice immediate charges land on.
type InvoiceAction struct {
	Kind                InvoiceActionKind `json:"kind"`
	CustomerRef         string            `json:"customer_ref,omitempty"`
	Currency            string            `json:"currency,omitempty"`
	ChargeAutomatically bool              `json:"charge_automatically,omitempty"`
}

// InvoiceItem is one monetary line pushed to the provider.
type InvoiceItem struct {
	Description string                `json:"description"`
	Amount      decimal.Decimal       `json:"amount"`
	Currency    string                `json:"currency"`
	Direction   types.ChargeDirection `json:"direction"`
	Metadata    map[string]string     `json:"metadata,omitempty"`
}

// InvoiceItemsAction attaches line items to the invoice being created.
type InvoiceItemsAction struct {
	Kind  InvoiceItemsActionKind `json:"kind"`
	Items []InvoiceItem          `json:"items,omitempty"`
}

// ScheduleAction defers changes to a future phase boundary.
type ScheduleAction struct {
	Kind            ScheduleActionKind `json:"kind"`
	SubscriptionRef string             `json:"subscription_ref,omitempty"`
	PhaseStartsAt   *time.Time         `json:"phase_starts_at,omitempty"`
	Items           []SubscriptionItem `json:"items,omitempty"`
}

// ActionSet is the full provider-facing plan: one discriminated action per
// category.
type ActionSet struct {
	Subscription SubscriptionAction `json:"subscription"`
	Invoice      InvoiceAction      `json:"invoice"`
	InvoiceItems InvoiceItemsAction `json:"invoice_items"`
	Schedule     ScheduleAction     `json:"schedule"`
}

// Validate ensures every category carries a known kind and that dependent
// fields line up.
func (s *ActionSet) Validate() error {
	if !lo.Contains(subscriptionActionKinds, s.Subscription.Kind) {
		return ierr.NewError("invalid subscription action kind").
			WithHintf("Unknown subscription action kind: %s", s.Subscription.Kind).
			Mark(ierr.ErrValidation)
	}
	if !lo.Contains(invoiceActionKinds, s.Invoice.Kind) {
		return ierr.NewError("invalid invoice action kind").
			WithHintf("Unknown invoice action kind: %s", s.Invoice.Kind).
			Mark(ierr.ErrValidation)
	}
	if !lo.Contains(invoiceItemsActionKinds, s.InvoiceItems.Kind) {
		return ierr.NewError("invalid invoice items action kind").
			WithHintf("Unknown invoice items action kind: %s", s.InvoiceItems.Kind).
			Mark(ierr.ErrValidation)
	}
	if !lo.Contains(scheduleActionKinds, s.Schedule.Kind) {
		return ierr.NewError("invalid schedule action kind").
			WithHintf("Unknown schedule action kind: %s", s.Schedule.Kind).
			Mark(ierr.ErrValidation)
	}
	if s.InvoiceItems.Kind == InvoiceItemsActionAdd && s.Invoice.Kind != InvoiceActionCreate {
		return ierr.NewError("invoice items require an invoice").
			WithHint("Line items can only be added to an invoice being created").
			Mark(ierr.ErrValidation)
	}
	return nil
}

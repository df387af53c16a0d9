package stripe

import (
	"strings"

	ierr "github.com/autumnhq/autumn/internal/errors"
	"github.com/autumnhq/autumn/internal/provider"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
)

// Request is the fully materialized set of Stripe calls an executor would
// issue, in order. Nil fields mean "no call". Translation is pure; nothing
// here talks to Stripe.
type Request struct {
	CreateSubscription    *stripe.SubscriptionCreateParams
	UpdateSubscription    *stripe.SubscriptionUpdateParams
	UpdateSubscriptionRef string
	CancelSubscription    *stripe.SubscriptionCancelParams
	CancelSubscriptionRef string
	CreateInvoice         *stripe.InvoiceCreateParams
	AddInvoiceItems       []*stripe.InvoiceItemCreateParams
	CreateSchedule        *stripe.SubscriptionScheduleCreateParams
	CancelScheduleRef     string
}

// Translate maps a provider-agnostic action set onto Stripe request params.
// Unknown kinds fail loudly rather than silently dropping an action.
func Translate(set *provider.ActionSet) (*Request, error) {
	if err := set.Validate(); err != nil {
		return nil, err
	}

	req := &Request{}

	switch set.Subscription.Kind {
	case provider.SubscriptionActionCreate:
		req.CreateSubscription = subscriptionCreateParams(set.Subscription)
	case provider.SubscriptionActionUpdate:
		req.UpdateSubscription = subscriptionUpdateParams(set.Subscription)
		req.UpdateSubscriptionRef = set.Subscription.SubscriptionRef
	case provider.SubscriptionActionCancel:
		req.CancelSubscription = &stripe.SubscriptionCancelParams{
			InvoiceNow: stripe.Bool(false),
			Prorate:    stripe.Bool(false),
		}
		req.CancelSubscriptionRef = set.Subscription.SubscriptionRef
	case provider.SubscriptionActionNone:
	default:
		return nil, ierr.NewError("unsupported subscription action").
			WithHintf("No Stripe translation for subscription action kind: %s", set.Subscription.Kind).
			Mark(ierr.ErrInvalidOperation)
	}

	switch set.Invoice.Kind {
	case provider.InvoiceActionCreate:
		req.CreateInvoice = invoiceCreateParams(set.Invoice)
	case provider.InvoiceActionNone:
	default:
		return nil, ierr.NewError("unsupported invoice action").
			WithHintf("No Stripe translation for invoice action kind: %s", set.Invoice.Kind).
			Mark(ierr.ErrInvalidOperation)
	}

	switch set.InvoiceItems.Kind {
	case provider.InvoiceItemsActionAdd:
		req.AddInvoiceItems = invoiceItemParams(set.Invoice, set.InvoiceItems)
	case provider.InvoiceItemsActionNone:
	default:
		return nil, ierr.NewError("unsupported invoice items action").
			WithHintf("No Stripe translation for invoice items action kind: %s", set.InvoiceItems.Kind).
			Mark(ierr.ErrInvalidOperation)
	}

	switch set.Schedule.Kind {
	case provider.ScheduleActionCreate:
		req.CreateSchedule = scheduleCreateParams(set.Schedule)
	case provider.ScheduleActionCancel:
		req.CancelScheduleRef = set.Schedule.SubscriptionRef
	case provider.ScheduleActionNone:
	default:
		return nil, ierr.NewError("unsupported schedule action").
			WithHintf("No Stripe translation for schedule action kind: %s", set.Schedule.Kind).
			Mark(ierr.ErrInvalidOperation)
	}

	return req, nil
}

func subscriptionCreateParams(action provider.SubscriptionAction) *stripe.SubscriptionCreateParams {
	params := &stripe.SubscriptionCreateParams{
		Customer: stripe.String(action.CustomerRef),
	}
	if action.PaymentMethodRef != "" {
		params.DefaultPaymentMethod = stripe.String(action.PaymentMethodRef)
	}
	if action.AnchorAt != nil {
		params.BillingCycleAnchor = stripe.Int64(action.AnchorAt.Unix())
	}
	for _, item := range action.Items {
		params.Items = append(params.Items, &stripe.SubscriptionCreateItemParams{
			Price:    stripe.String(item.PriceRef),
			Quantity: stripe.Int64(item.Quantity),
		})
	}
	return params
}

func subscriptionUpdateParams(action provider.SubscriptionAction) *stripe.SubscriptionUpdateParams {
	// The engine already emitted its own proration line items, so Stripe's
	// proration engine must stay out of the way.
	params := &stripe.SubscriptionUpdateParams{
		ProrationBehavior: stripe.String("none"),
	}
	for _, item := range action.Items {
		params.Items = append(params.Items, &stripe.SubscriptionUpdateItemParams{
			Price:    stripe.String(item.PriceRef),
			Quantity: stripe.Int64(item.Quantity),
		})
	}
	return params
}

func invoiceCreateParams(action provider.InvoiceAction) *stripe.InvoiceCreateParams {
	params := &stripe.InvoiceCreateParams{
		Customer:    stripe.String(action.CustomerRef),
		Currency:    stripe.String(strings.ToLower(action.Currency)),
		AutoAdvance: stripe.Bool(true),
	}
	if action.ChargeAutomatically {
		params.CollectionMethod = stripe.String(string(stripe.InvoiceCollectionMethodChargeAutomatically))
	} else {
		params.CollectionMethod = stripe.String(string(stripe.InvoiceCollectionMethodSendInvoice))
	}
	return params
}

func invoiceItemParams(invoice provider.InvoiceAction, action provider.InvoiceItemsAction) []*stripe.InvoiceItemCreateParams {
	items := make([]*stripe.InvoiceItemCreateParams, 0, len(action.Items))
	for _, item := range action.Items {
		params := &stripe.InvoiceItemCreateParams{
			Customer:    stripe.String(invoice.CustomerRef),
			Currency:    stripe.String(strings.ToLower(item.Currency)),
			Description: stripe.String(item.Description),
			Amount:      stripe.Int64(toCents(item.Amount)),
			Metadata:    item.Metadata,
		}
		items = append(items, params)
	}
	return items
}

func scheduleCreateParams(action provider.ScheduleAction) *stripe.SubscriptionScheduleCreateParams {
	phase := &stripe.SubscriptionScheduleCreatePhaseParams{}
	for _, item := range action.Items {
		phase.Items = append(phase.Items, &stripe.SubscriptionScheduleCreatePhaseItemParams{
			Price:    stripe.String(item.PriceRef),
			Quantity: stripe.Int64(item.Quantity),
		})
	}
	params := &stripe.SubscriptionScheduleCreateParams{
		FromSubscription: stripe.String(action.SubscriptionRef),
		Phases:           []*stripe.SubscriptionScheduleCreatePhaseParams{phase},
	}
	if action.PhaseStartsAt != nil {
		params.StartDate = stripe.Int64(action.PhaseStartsAt.Unix())
	}
	return params
}

// toCents converts a decimal major-unit amount to Stripe's integer cents.
func toCents(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).IntPart()
}

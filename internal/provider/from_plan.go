package provider

import (
	"time"

	"github.com/autumnhq/autumn/internal/domain/billing"
)

// ActionSetFromPlan derives the provider action plan from a computed billing
// plan. Immediate line items land on a fresh invoice; deferred items and
// product changes become subscription or schedule work.
func ActionSetFromPlan(ctx *billing.BillingContext, plan *billing.BillingPlan) *ActionSet {
	set := &ActionSet{
		Subscription: SubscriptionAction{Kind: SubscriptionActionNone},
		Invoice:      InvoiceAction{Kind: InvoiceActionNone},
		InvoiceItems: InvoiceItemsAction{Kind: InvoiceItemsActionNone},
		Schedule:     ScheduleAction{Kind: ScheduleActionNone},
	}

	immediate := make([]*billing.LineItem, 0, len(plan.LineItems))
	deferred := make([]*billing.LineItem, 0)
	for _, item := range plan.LineItems {
		if item.ChargeImmediately {
			immediate = append(immediate, item)
		} else {
			deferred = append(deferred, item)
		}
	}

	if len(immediate) > 0 {
		set.Invoice = InvoiceAction{
			Kind:                InvoiceActionCreate,
			CustomerRef:         ctx.Provider.CustomerID,
			Currency:            plan.Currency(),
			ChargeAutomatically: ctx.Provider.PaymentMethodID != "",
		}
		set.InvoiceItems = InvoiceItemsAction{
			Kind:  InvoiceItemsActionAdd,
			Items: invoiceItemsFrom(immediate),
		}
	}

	if items := subscriptionItemsFrom(plan); len(items) > 0 {
		if ctx.Provider.SubscriptionID == "" {
			action := SubscriptionAction{
				Kind:             SubscriptionActionCreate,
				CustomerRef:      ctx.Provider.CustomerID,
				PaymentMethodRef: ctx.Provider.PaymentMethodID,
				Items:            items,
			}
			if !ctx.CycleAnchor.IsNow() {
				anchor := ctx.CycleAnchor.Time()
				action.AnchorAt = &anchor
			}
			set.Subscription = action
		} else {
			set.Subscription = SubscriptionAction{
				Kind:            SubscriptionActionUpdate,
				CustomerRef:     ctx.Provider.CustomerID,
				SubscriptionRef: ctx.Provider.SubscriptionID,
				Items:           items,
			}
		}
	}

	// Deferred items need an existing subscription to schedule against.
	// Without one they are intentionally not represented here: the items
	// remain in the plan, and the next computation after the subscription
	// exists picks them up.
	if len(deferred) > 0 && ctx.Provider.SubscriptionID != "" {
		schedule := ScheduleAction{
			Kind:            ScheduleActionCreate,
			SubscriptionRef: ctx.Provider.SubscriptionID,
			Items:           subscriptionItemsFromLineItems(deferred),
		}
		if first := deferred[0]; first.Context != nil && first.Context.Period != nil {
			phaseStart := first.Context.Period.End
			schedule.PhaseStartsAt = &phaseStart
		}
		set.Schedule = schedule
	}

	return set
}

func invoiceItemsFrom(items []*billing.LineItem) []InvoiceItem {
	result := make([]InvoiceItem, 0, len(items))
	for _, item := range items {
		invItem := InvoiceItem{
			Description: item.Description,
			Amount:      item.FinalAmount,
			Metadata:    metadataFrom(item),
		}
		if item.Context != nil {
			invItem.Currency = item.Context.Currency
			invItem.Direction = item.Context.Direction
		}
		result = append(result, invItem)
	}
	return result
}

// subscriptionItemsFrom lists the recurring paid prices on products the plan
// inserts; these define the provider subscription's composition.
func subscriptionItemsFrom(plan *billing.BillingPlan) []SubscriptionItem {
	items := make([]SubscriptionItem, 0)
	for _, cp := range plan.InsertCustomerProducts {
		if cp.Product == nil {
			continue
		}
		for _, pr := range cp.Product.Prices {
			if !pr.IsRecurring() || !pr.IsPaid() || pr.IsConsumable() {
				continue
			}
			items = append(items, SubscriptionItem{PriceRef: pr.ID, Quantity: 1})
		}
	}
	return items
}

func subscriptionItemsFromLineItems(items []*billing.LineItem) []SubscriptionItem {
	result := make([]SubscriptionItem, 0, len(items))
	for _, item := range items {
		if item.Context == nil || item.Context.Price == nil {
			continue
		}
		result = append(result, SubscriptionItem{PriceRef: item.Context.Price.ID, Quantity: 1})
	}
	return result
}

// metadataFrom flattens the line item's context into provider metadata.
func metadataFrom(item *billing.LineItem) map[string]string {
	meta := map[string]string{
		"autumn_line_item_id": item.ID,
	}
	lic := item.Context
	if lic == nil {
		return meta
	}
	if lic.Price != nil {
		meta["autumn_price_id"] = lic.Price.ID
	}
	if lic.Product != nil {
		meta["autumn_product_id"] = lic.Product.ID
	}
	if lic.FeatureID != "" {
		meta["autumn_feature_id"] = lic.FeatureID
	}
	meta["autumn_direction"] = string(lic.Direction)
	if lic.Period != nil {
		meta["autumn_period_start"] = lic.Period.Start.UTC().Format(time.RFC3339)
		meta["autumn_period_end"] = lic.Period.End.UTC().Format(time.RFC3339)
	}
	return meta
}

package billing

import (
	"time"

	"github.com/autumnhq/autumn/internal/domain/price"
	"github.com/autumnhq/autumn/internal/types"
)

// BillingPeriod is a concrete half-open [Start, End) interval a price bills
// for.
type BillingPeriod struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// PeriodFloors clamp a computed period against provider-side reality.
type PeriodFloors struct {
	// SubscriptionStartedAt floors the period start: time before the
	// provider-side subscription existed is never billable.
	SubscriptionStartedAt time.Time

	// AnchorFloor floors the period end, e.g. a trial end the cycle may not
	// close before. Ignored when the anchor is the "now" sentinel.
	AnchorFloor time.Time
}

// ComputePeriod returns the billing cycle boundaries containing now, aligned
// to the anchor and clamped by the floors. One-off prices have no period;
// callers pass only recurring intervals here.
func ComputePeriod(anchor types.BillingAnchor, period types.BillingPeriod, count int, now time.Time, floors PeriodFloors) (*BillingPeriod, error) {
	now = now.UTC()

	anchorTime := now
	if !anchor.IsNow() {
		anchorTime = anchor.Time()
	}

	start := anchorTime
	end, err := types.NextBillingDate(start, count, period)
	if err != nil {
		return nil, err
	}

	// Walk forward until the cycle contains now
	for !end.After(now) {
		start = end
		end, err = types.NextBillingDate(start, count, period)
		if err != nil {
			return nil, err
		}
	}

	// Walk backward when the anchor sits in the future
	for start.After(now) {
		end = start
		start, err = types.PrevBillingDate(start, count, period)
		if err != nil {
			return nil, err
		}
	}

	// The subscription-created floor wins over the naive cycle start: you
	// cannot bill for time before the subscription existed.
	if !floors.SubscriptionStartedAt.IsZero() && start.Before(floors.SubscriptionStartedAt) {
		start = floors.SubscriptionStartedAt.UTC()
	}

	// The anchor floor wins over the naive cycle end, unless there is no
	// concrete anchor to clamp against yet.
	if !anchor.IsNow() && !floors.AnchorFloor.IsZero() && end.Before(floors.AnchorFloor) {
		end = floors.AnchorFloor.UTC()
	}

	return &BillingPeriod{Start: start.UTC(), End: end.UTC()}, nil
}

// ComputePricePeriod computes the period for a specific price, returning nil
// for one-off prices, which have none.
func ComputePricePeriod(ctx *BillingContext, pr *price.Price, floors PeriodFloors) (*BillingPeriod, error) {
	if pr.IsOneOff() {
		return nil, nil
	}
	return ComputePeriod(ctx.CycleAnchor, pr.BillingPeriod, pr.BillingPeriodCount, ctx.Now, floors)
}

// Contains reports whether t falls inside the half-open period.
func (p *BillingPeriod) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

// Duration returns the period length.
func (p *BillingPeriod) Duration() time.Duration {
	return p.End.Sub(p.Start)
}

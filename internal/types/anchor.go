package types

import "time"

// BillingAnchor is the reference instant from which recurring period
// boundaries are computed. It is either a concrete timestamp or the "now"
// sentinel used before any paid recurring product exists, in which case
// there is no forward cycle to align against.
type BillingAnchor struct {
	at  time.Time
	now bool
}

// AnchorAt returns an anchor fixed at the given instant.
func AnchorAt(t time.Time) BillingAnchor {
	return BillingAnchor{at: t.UTC()}
}

// AnchorNow returns the "now" sentinel anchor.
func AnchorNow() BillingAnchor {
	return BillingAnchor{now: true}
}

// IsNow reports whether the anchor is the "now" sentinel.
func (a BillingAnchor) IsNow() bool {
	return a.now
}

// Time returns the anchored instant. Only meaningful when IsNow is false.
func (a BillingAnchor) Time() time.Time {
	return a.at
}

// IsZero reports whether the anchor was never set.
func (a BillingAnchor) IsZero() bool {
	return !a.now && a.at.IsZero()
}

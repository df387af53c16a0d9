package entitlement

import (
	"time"

	"github.com/autumnhq/autumn/internal/types"
)

// Replaceable is a previously purchased seat credit that can be re-applied
// to a new occupant without a new charge. Credits created on a downgrade are
// marked to expire at the next cycle boundary so they never persist
// indefinitely.
type Replaceable struct {
	ID              string    `json:"id"`
	EntitlementID   string    `json:"entitlement_id"`
	CreatedAt       time.Time `json:"created_at"`
	DeleteNextCycle bool      `json:"delete_next_cycle"`
}

// NewReplaceable returns a fresh seat credit for the given entitlement,
// flagged to expire at the next cycle boundary.
func NewReplaceable(entitlementID string, now time.Time) *Replaceable {
	return &Replaceable{
		ID:              types.GenerateUUIDWithPrefix(types.UUID_PREFIX_REPLACEABLE),
		EntitlementID:   entitlementID,
		CreatedAt:       now,
		DeleteNextCycle: true,
	}
}

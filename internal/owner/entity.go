// AngelaMos | 2026
// entity.go

package owner

import (
	"time"
)

// Snapshot is the owner's standing at CheckedAt. It is computed on every
// lookup and never stored.
type Snapshot struct {
	AccountActive      bool      `db:"account_active"`
	SubscriptionActive bool      `db:"subscription_active"`
	CheckedAt          time.Time `db:"-"`
}

func (s Snapshot) Eligible() bool {
	return s.AccountActive && s.SubscriptionActive
}

const (
	AccountStatusActive    = "active"
	AccountStatusSuspended = "suspended"
)

const (
	SubscriptionStatusActive   = "active"
	SubscriptionStatusTrialing = "trialing"
	SubscriptionStatusCanceled = "canceled"
	SubscriptionStatusPastDue  = "past_due"
)

package model

import (
	"time"

	"gorm.io/gorm"
)

type SubscriptionStatus string

const (
	SubscriptionStatusActive  SubscriptionStatus = "active"
	SubscriptionStatusExpired SubscriptionStatus = "expired"
)

// Subscription is the per-user entitlement record. One row per user,
// replaced by upsert when a later payment completes.
type Subscription struct {
	gorm.Model
	UserID    uint               `json:"user_id" gorm:"uniqueIndex;not null"`
	PackageID string             `json:"package_id" gorm:"not null"`
	Status    SubscriptionStatus `json:"status" gorm:"not null;default:'active'"`
	StartedAt time.Time          `json:"started_at" gorm:"not null"`
	ExpiresAt time.Time          `json:"expires_at" gorm:"not null"`

	User User `json:"-" gorm:"foreignKey:UserID"`
}

// IsActiveAt evaluates the effective-access predicate. The stored status
// alone is never trusted: a row can still say "active" after its expiry
// passed, because expiry is only swept lazily.
func (s *Subscription) IsActiveAt(now time.Time) bool {
	return s.Status == SubscriptionStatusActive && s.ExpiresAt.After(now)
}

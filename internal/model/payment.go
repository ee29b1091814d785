package model

import (
	"time"

	"gorm.io/gorm"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

type PaymentType string

const (
	PaymentTypeSubscription PaymentType = "subscription"
)

// PaymentTransaction is the ledger entry for a single checkout attempt.
// SessionID is the reconciliation key against the payment gateway; exactly
// one row exists per gateway session. Amount and Currency are captured at
// checkout time and never re-derived from the catalog.
type PaymentTransaction struct {
	gorm.Model
	TransactionID string        `json:"transaction_id" gorm:"uniqueIndex;not null"`
	UserID        uint          `json:"user_id" gorm:"index;not null"`
	SessionID     string        `json:"session_id" gorm:"uniqueIndex;not null"`
	Type          PaymentType   `json:"type" gorm:"not null;default:'subscription'"`
	PackageID     string        `json:"package_id" gorm:"not null"`
	Amount        float64       `json:"amount" gorm:"not null"`
	Currency      string        `json:"currency" gorm:"not null"`
	Status        PaymentStatus `json:"status" gorm:"not null;default:'pending'"`
	SettledAt     *time.Time    `json:"settled_at"`

	User User `json:"-" gorm:"foreignKey:UserID"`
}

// IsTerminal reports whether the transaction reached a final state.
// Terminal rows are never transitioned again.
func (t *PaymentTransaction) IsTerminal() bool {
	return t.Status == PaymentStatusCompleted || t.Status == PaymentStatusFailed
}

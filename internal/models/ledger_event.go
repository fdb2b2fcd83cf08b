package models

import "time"

// Ledger event kinds.
const (
	EventRequestCreated  = "request_created"
	EventStatusChanged   = "status_changed"
	EventEnrollmentDebit = "enrollment_debit"
)

// LedgerEvent is an append-only record of every wallet-affecting action.
// Events are written in the same transaction as the mutation they describe,
// so folding a center's events always reproduces its stored balance.
type LedgerEvent struct {
	ID        uint  `gorm:"primarykey" json:"id"`
	RequestID *uint `gorm:"index" json:"requestId,omitempty"`
	CenterID  uint  `gorm:"not null;index" json:"centerId"`

	Kind       string         `gorm:"type:varchar(24);not null" json:"kind"`
	FromStatus RechargeStatus `gorm:"type:varchar(16)" json:"fromStatus,omitempty"`
	ToStatus   RechargeStatus `gorm:"type:varchar(16)" json:"toStatus,omitempty"`

	// AppliedDelta is the signed amount actually applied to the balance.
	// ClampedDelta is the part of a reversal swallowed by the zero floor;
	// nonzero values are what reconciliation looks for.
	AppliedDelta float64 `json:"appliedDelta"`
	ClampedDelta float64 `json:"clampedDelta"`

	ActorID   uint      `json:"actorId"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

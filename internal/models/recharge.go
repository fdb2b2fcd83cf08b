package models

import (
	"time"
)

// RechargeStatus drives the wallet ledger. Only transitions that cross the
// Approved edge touch the center balance.
type RechargeStatus string

const (
	StatusPending  RechargeStatus = "Pending"
	StatusApproved RechargeStatus = "Approved"
	StatusRejected RechargeStatus = "Rejected"
)

// ParseRechargeStatus validates a caller-supplied status value.
func ParseRechargeStatus(s string) (RechargeStatus, bool) {
	switch RechargeStatus(s) {
	case StatusPending, StatusApproved, StatusRejected:
		return RechargeStatus(s), true
	}
	return "", false
}

// RechargeRequest is one claimed, evidence-backed deposit awaiting
// superadmin moderation. Amount and the audit metadata are immutable after
// creation; only Status (and the review stamp) change.
type RechargeRequest struct {
	ID       uint `gorm:"primarykey" json:"id"`
	CenterID uint `gorm:"not null;index" json:"centerId"`

	// Snapshot of the center at submission time, kept for audit display
	// even if the center is later renamed.
	CenterCode string `gorm:"size:4;not null" json:"centerCode"`
	CenterName string `gorm:"not null" json:"centerName"`

	Amount            float64        `gorm:"not null" json:"amount"`
	Status            RechargeStatus `gorm:"type:varchar(16);not null;default:'Pending';index" json:"status"`
	TransactionID     string         `json:"transactionId"`
	TransactionDate   string         `json:"transactionDate"`
	PaymentType       string         `json:"paymentType"`
	Beneficiary       string         `json:"beneficiary"`
	AccountHolderName string         `json:"accountHolderName"`

	// PaySlip is the stored evidence filename. Empty only for
	// system-generated rows such as an initial-balance seed.
	PaySlip string `json:"paySlip"`

	ReviewedBy *uint      `json:"reviewedBy,omitempty"`
	ReviewedAt *time.Time `json:"reviewedAt,omitempty"`
	AddedOn    time.Time  `gorm:"autoCreateTime" json:"addedOn"`
}

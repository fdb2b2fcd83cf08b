package ledger

import (
	"context"

	"admitdesk/internal/models"
)

// SubmitInput carries a recharge submission. All fields except PaySlip are
// immutable audit metadata once the row is created.
type SubmitInput struct {
	CenterCode        string
	Amount            float64
	PaySlip           string
	TransactionID     string
	TransactionDate   string
	PaymentType       string
	Beneficiary       string
	AccountHolderName string
}

// ReconcileReport compares a center's stored balance against the balance
// derived by folding the applied deltas of its event stream. The component
// totals are reported alongside for display; ExpectedBalance is the fold.
type ReconcileReport struct {
	CenterID         uint    `json:"centerId"`
	StoredBalance    float64 `json:"storedBalance"`
	ApprovedTotal    float64 `json:"approvedTotal"`
	EnrollmentDebits float64 `json:"enrollmentDebits"`
	ClampedTotal     float64 `json:"clampedTotal"`
	ExpectedBalance  float64 `json:"expectedBalance"`
	Drift            float64 `json:"drift"`
}

// Cache is the invalidation surface the ledger needs after a balance
// mutation. Satisfied by cache.CacheService.
type Cache interface {
	InvalidateCenter(ctx context.Context, centerID uint, code string) error
}

// Service is the wallet ledger workflow.
type Service interface {
	SubmitRecharge(ctx context.Context, caller *models.UserClaims, in SubmitInput) (*models.RechargeRequest, error)
	ListRecharges(ctx context.Context, caller *models.UserClaims, filterCenterID uint) ([]models.RechargeRequest, error)
	TransitionStatus(ctx context.Context, caller *models.UserClaims, requestID uint, newStatus models.RechargeStatus) (*models.RechargeRequest, error)

	// SeedBalance creates a pre-approved, system-generated recharge row and
	// credits it in one unit of work. Used when a superadmin registers a
	// center with an opening balance.
	SeedBalance(ctx context.Context, caller *models.UserClaims, centerID uint, amount float64) (*models.RechargeRequest, error)

	// ChargeEnrollment debits an enrollment fee, failing rather than
	// clamping when the balance does not cover it.
	ChargeEnrollment(ctx context.Context, centerID uint, amount float64, actorID uint, note string) error

	ListEvents(ctx context.Context, caller *models.UserClaims, requestID uint) ([]models.LedgerEvent, error)
	Reconcile(ctx context.Context, caller *models.UserClaims, centerID uint) (*ReconcileReport, error)
}

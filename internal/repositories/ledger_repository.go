package repositories

import (
	"fmt"
	"time"

	"admitdesk/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RechargeFilter scopes a recharge listing. CenterID zero means all centers.
type RechargeFilter struct {
	CenterID uint
	Status   models.RechargeStatus
}

// LedgerRepository is the unit of work for everything that can touch a
// center's wallet balance: recharge rows, the balance itself, and the
// append-only event log. Methods called inside ExecuteInTransaction share
// one database transaction.
type LedgerRepository interface {
	CreateRecharge(req *models.RechargeRequest) error
	GetRechargeByID(id uint) (*models.RechargeRequest, error)
	// GetRechargeForUpdate locks the request row for the remainder of the
	// surrounding transaction, serializing transitions on the same request.
	GetRechargeForUpdate(id uint) (*models.RechargeRequest, error)
	ListRecharges(filter RechargeFilter) ([]models.RechargeRequest, error)
	UpdateRechargeStatus(id uint, status models.RechargeStatus, reviewerID uint) error

	// GetCenterForUpdate locks the center row, serializing all balance
	// mutations for that center.
	GetCenterForUpdate(id uint) (*models.Center, error)
	// AdjustCenterBalance applies a signed delta as a single SQL expression.
	// Negative deltas clamp at zero. Returns the resulting balance.
	AdjustCenterBalance(centerID uint, delta float64) (float64, error)
	// DebitCenterBalance subtracts amount only if the balance covers it.
	DebitCenterBalance(centerID uint, amount float64) error

	AppendEvent(ev *models.LedgerEvent) error
	ListEvents(requestID uint) ([]models.LedgerEvent, error)
	ListCenterEvents(centerID uint) ([]models.LedgerEvent, error)
	SumApproved(centerID uint) (float64, error)
	SumEnrollmentDebits(centerID uint) (float64, error)

	ExecuteInTransaction(fn func(LedgerRepository) error) error
}

// ErrInsufficientFunds is returned by DebitCenterBalance when the balance
// does not cover the amount.
var ErrInsufficientFunds = fmt.Errorf("insufficient wallet balance")

type ledgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) CreateRecharge(req *models.RechargeRequest) error {
	if err := r.db.Create(req).Error; err != nil {
		return fmt.Errorf("failed to create recharge request: %w", err)
	}
	return nil
}

func (r *ledgerRepository) GetRechargeByID(id uint) (*models.RechargeRequest, error) {
	var req models.RechargeRequest
	if err := r.db.First(&req, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrRechargeNotFound
		}
		return nil, fmt.Errorf("failed to get recharge request: %w", err)
	}
	return &req, nil
}

func (r *ledgerRepository) GetRechargeForUpdate(id uint) (*models.RechargeRequest, error) {
	var req models.RechargeRequest
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&req, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrRechargeNotFound
		}
		return nil, fmt.Errorf("failed to lock recharge request: %w", err)
	}
	return &req, nil
}

func (r *ledgerRepository) ListRecharges(filter RechargeFilter) ([]models.RechargeRequest, error) {
	q := r.db.Order("added_on DESC")
	if filter.CenterID != 0 {
		q = q.Where("center_id = ?", filter.CenterID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var reqs []models.RechargeRequest
	if err := q.Find(&reqs).Error; err != nil {
		return nil, fmt.Errorf("failed to list recharge requests: %w", err)
	}
	return reqs, nil
}

func (r *ledgerRepository) UpdateRechargeStatus(id uint, status models.RechargeStatus, reviewerID uint) error {
	now := time.Now()
	result := r.db.Model(&models.RechargeRequest{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      status,
			"reviewed_by": reviewerID,
			"reviewed_at": now,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update recharge status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRechargeNotFound
	}
	return nil
}

func (r *ledgerRepository) GetCenterForUpdate(id uint) (*models.Center, error) {
	var center models.Center
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&center, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrCenterNotFound
		}
		return nil, fmt.Errorf("failed to lock center: %w", err)
	}
	return &center, nil
}

func (r *ledgerRepository) AdjustCenterBalance(centerID uint, delta float64) (float64, error) {
	// The delta is evaluated by the store in one expression, so concurrent
	// adjustments never clobber each other even without the row lock.
	expr := gorm.Expr("wallet_balance + ?", delta)
	if delta < 0 {
		expr = gorm.Expr("GREATEST(wallet_balance + ?, 0)", delta)
	}

	result := r.db.Model(&models.Center{}).
		Where("id = ?", centerID).
		UpdateColumn("wallet_balance", expr)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to adjust center balance: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, ErrCenterNotFound
	}

	var balance float64
	err := r.db.Model(&models.Center{}).
		Where("id = ?", centerID).
		Select("wallet_balance").
		Scan(&balance).Error
	if err != nil {
		return 0, fmt.Errorf("failed to read center balance: %w", err)
	}
	return balance, nil
}

func (r *ledgerRepository) DebitCenterBalance(centerID uint, amount float64) error {
	result := r.db.Model(&models.Center{}).
		Where("id = ? AND wallet_balance >= ?", centerID, amount).
		UpdateColumn("wallet_balance", gorm.Expr("wallet_balance - ?", amount))
	if result.Error != nil {
		return fmt.Errorf("failed to debit center balance: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.Model(&models.Center{}).Where("id = ?", centerID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to debit center balance: %w", err)
		}
		if count == 0 {
			return ErrCenterNotFound
		}
		return ErrInsufficientFunds
	}
	return nil
}

func (r *ledgerRepository) AppendEvent(ev *models.LedgerEvent) error {
	if err := r.db.Create(ev).Error; err != nil {
		return fmt.Errorf("failed to append ledger event: %w", err)
	}
	return nil
}

func (r *ledgerRepository) ListEvents(requestID uint) ([]models.LedgerEvent, error) {
	var events []models.LedgerEvent
	err := r.db.Where("request_id = ?", requestID).Order("id ASC").Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger events: %w", err)
	}
	return events, nil
}

func (r *ledgerRepository) ListCenterEvents(centerID uint) ([]models.LedgerEvent, error) {
	var events []models.LedgerEvent
	err := r.db.Where("center_id = ?", centerID).Order("id ASC").Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list center ledger events: %w", err)
	}
	return events, nil
}

func (r *ledgerRepository) SumApproved(centerID uint) (float64, error) {
	var total float64
	err := r.db.Model(&models.RechargeRequest{}).
		Where("center_id = ? AND status = ?", centerID, models.StatusApproved).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum approved recharges: %w", err)
	}
	return total, nil
}

func (r *ledgerRepository) SumEnrollmentDebits(centerID uint) (float64, error) {
	var total float64
	err := r.db.Model(&models.LedgerEvent{}).
		Where("center_id = ? AND kind = ?", centerID, models.EventEnrollmentDebit).
		Select("COALESCE(SUM(-applied_delta), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum enrollment debits: %w", err)
	}
	return total, nil
}

func (r *ledgerRepository) ExecuteInTransaction(fn func(LedgerRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&ledgerRepository{db: tx})
	})
}

package ledger

import (
	"context"
	"fmt"
	"log"
	"time"

	"admitdesk/internal/models"
	"admitdesk/internal/repositories"
)

type service struct {
	repo       repositories.LedgerRepository
	centerRepo repositories.CenterRepository
	cache      Cache
}

// NewService creates a new ledger service. Cache may be nil.
func NewService(repo repositories.LedgerRepository, centerRepo repositories.CenterRepository, cache Cache) Service {
	if repo == nil {
		panic("ledger repository is required")
	}
	if centerRepo == nil {
		panic("center repository is required")
	}
	if cache == nil {
		cache = noopCache{}
	}
	return &service{
		repo:       repo,
		centerRepo: centerRepo,
		cache:      cache,
	}
}

func (s *service) SubmitRecharge(ctx context.Context, caller *models.UserClaims, in SubmitInput) (*models.RechargeRequest, error) {
	if !caller.Role.Can(models.CapSubmitRecharge) {
		return nil, ErrForbidden
	}
	if in.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if in.PaySlip == "" {
		return nil, ErrMissingEvidence
	}

	center, err := s.centerRepo.GetByCode(in.CenterCode)
	if err != nil {
		if err == repositories.ErrCenterNotFound {
			return nil, ErrCenterNotFound
		}
		return nil, fmt.Errorf("failed to resolve center: %w", err)
	}

	// A center admin may only submit for their own center.
	if caller.Role == models.RoleAdmin && caller.CenterID != center.ID {
		return nil, ErrForbidden
	}

	req := &models.RechargeRequest{
		CenterID:          center.ID,
		CenterCode:        center.Code,
		CenterName:        center.Name,
		Amount:            in.Amount,
		Status:            models.StatusPending,
		TransactionID:     in.TransactionID,
		TransactionDate:   in.TransactionDate,
		PaymentType:       in.PaymentType,
		Beneficiary:       in.Beneficiary,
		AccountHolderName: in.AccountHolderName,
		PaySlip:           in.PaySlip,
	}

	// Submission never touches the balance; the event row just anchors the
	// audit trail for this request.
	err = s.repo.ExecuteInTransaction(func(tx repositories.LedgerRepository) error {
		if err := tx.CreateRecharge(req); err != nil {
			return err
		}
		return tx.AppendEvent(&models.LedgerEvent{
			RequestID: &req.ID,
			CenterID:  center.ID,
			Kind:      models.EventRequestCreated,
			ToStatus:  models.StatusPending,
			ActorID:   caller.UserID,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record recharge submission: %w", err)
	}

	return req, nil
}

func (s *service) ListRecharges(ctx context.Context, caller *models.UserClaims, filterCenterID uint) ([]models.RechargeRequest, error) {
	filter := repositories.RechargeFilter{}
	if caller.Role.Can(models.CapViewAllRecharges) {
		filter.CenterID = filterCenterID
	} else {
		// Center admins only ever see their own center.
		filter.CenterID = caller.CenterID
	}
	return s.repo.ListRecharges(filter)
}

func (s *service) TransitionStatus(ctx context.Context, caller *models.UserClaims, requestID uint, newStatus models.RechargeStatus) (*models.RechargeRequest, error) {
	if !caller.Role.Can(models.CapModerateRecharges) {
		return nil, ErrForbidden
	}
	if _, ok := models.ParseRechargeStatus(string(newStatus)); !ok {
		return nil, ErrInvalidStatus
	}

	var updated *models.RechargeRequest
	err := s.repo.ExecuteInTransaction(func(tx repositories.LedgerRepository) error {
		req, err := tx.GetRechargeForUpdate(requestID)
		if err != nil {
			return err
		}

		// A missing center here is a data-integrity fault: requests always
		// reference an existing center and centers are never deleted.
		center, err := tx.GetCenterForUpdate(req.CenterID)
		if err != nil {
			if err == repositories.ErrCenterNotFound {
				log.Printf("ledger: request %d references missing center %d", req.ID, req.CenterID)
			}
			return err
		}

		oldStatus := req.Status
		var applied, clamped float64
		switch {
		case oldStatus != models.StatusApproved && newStatus == models.StatusApproved:
			applied = req.Amount
		case oldStatus == models.StatusApproved && newStatus != models.StatusApproved:
			// Reversal clamps at zero rather than going negative. The
			// swallowed delta is recorded so reconciliation can find it.
			applied = -req.Amount
			if center.WalletBalance < req.Amount {
				applied = -center.WalletBalance
				clamped = req.Amount - center.WalletBalance
			}
		}

		if applied != 0 {
			if _, err := tx.AdjustCenterBalance(center.ID, applied); err != nil {
				return err
			}
			if clamped > 0 {
				log.Printf("ledger: reversal of request %d clamped at zero, %.2f lost from center %d",
					req.ID, clamped, center.ID)
			}
		}

		if err := tx.UpdateRechargeStatus(req.ID, newStatus, caller.UserID); err != nil {
			return err
		}

		if err := tx.AppendEvent(&models.LedgerEvent{
			RequestID:    &req.ID,
			CenterID:     center.ID,
			Kind:         models.EventStatusChanged,
			FromStatus:   oldStatus,
			ToStatus:     newStatus,
			AppliedDelta: applied,
			ClampedDelta: clamped,
			ActorID:      caller.UserID,
		}); err != nil {
			return err
		}

		now := time.Now()
		req.Status = newStatus
		req.ReviewedBy = &caller.UserID
		req.ReviewedAt = &now
		updated = req
		return nil
	})
	if err != nil {
		switch err {
		case repositories.ErrRechargeNotFound:
			return nil, ErrRequestNotFound
		case repositories.ErrCenterNotFound:
			return nil, ErrCenterNotFound
		}
		return nil, fmt.Errorf("failed to transition recharge status: %w", err)
	}

	s.invalidateCenter(ctx, updated.CenterID, updated.CenterCode)
	return updated, nil
}

func (s *service) SeedBalance(ctx context.Context, caller *models.UserClaims, centerID uint, amount float64) (*models.RechargeRequest, error) {
	if !caller.Role.Can(models.CapManageCenters) {
		return nil, ErrForbidden
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	var req *models.RechargeRequest
	err := s.repo.ExecuteInTransaction(func(tx repositories.LedgerRepository) error {
		center, err := tx.GetCenterForUpdate(centerID)
		if err != nil {
			return err
		}

		now := time.Now()
		req = &models.RechargeRequest{
			CenterID:    center.ID,
			CenterCode:  center.Code,
			CenterName:  center.Name,
			Amount:      amount,
			Status:      models.StatusApproved,
			PaymentType: "seed",
			ReviewedBy:  &caller.UserID,
			ReviewedAt:  &now,
		}
		if err := tx.CreateRecharge(req); err != nil {
			return err
		}
		if _, err := tx.AdjustCenterBalance(center.ID, amount); err != nil {
			return err
		}
		return tx.AppendEvent(&models.LedgerEvent{
			RequestID:    &req.ID,
			CenterID:     center.ID,
			Kind:         models.EventStatusChanged,
			FromStatus:   models.StatusPending,
			ToStatus:     models.StatusApproved,
			AppliedDelta: amount,
			ActorID:      caller.UserID,
			Note:         "initial balance seed",
		})
	})
	if err != nil {
		if err == repositories.ErrCenterNotFound {
			return nil, ErrCenterNotFound
		}
		return nil, fmt.Errorf("failed to seed balance: %w", err)
	}

	s.invalidateCenter(ctx, req.CenterID, req.CenterCode)
	return req, nil
}

func (s *service) ChargeEnrollment(ctx context.Context, centerID uint, amount float64, actorID uint, note string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	var code string
	err := s.repo.ExecuteInTransaction(func(tx repositories.LedgerRepository) error {
		center, err := tx.GetCenterForUpdate(centerID)
		if err != nil {
			return err
		}
		code = center.Code

		if err := tx.DebitCenterBalance(center.ID, amount); err != nil {
			return err
		}
		return tx.AppendEvent(&models.LedgerEvent{
			CenterID:     center.ID,
			Kind:         models.EventEnrollmentDebit,
			AppliedDelta: -amount,
			ActorID:      actorID,
			Note:         note,
		})
	})
	if err != nil {
		switch err {
		case repositories.ErrCenterNotFound:
			return ErrCenterNotFound
		case repositories.ErrInsufficientFunds:
			return ErrInsufficientBalance
		}
		return fmt.Errorf("failed to charge enrollment fee: %w", err)
	}

	s.invalidateCenter(ctx, centerID, code)
	return nil
}

func (s *service) ListEvents(ctx context.Context, caller *models.UserClaims, requestID uint) ([]models.LedgerEvent, error) {
	if !caller.Role.Can(models.CapViewAudit) {
		return nil, ErrForbidden
	}
	return s.repo.ListEvents(requestID)
}

// Reconcile folds the ledger for a center and reports any drift between the
// derived and stored balance. Drift should always be zero; nonzero values
// point at writes that bypassed the ledger.
func (s *service) Reconcile(ctx context.Context, caller *models.UserClaims, centerID uint) (*ReconcileReport, error) {
	if !caller.Role.Can(models.CapViewAudit) {
		return nil, ErrForbidden
	}

	center, err := s.centerRepo.GetByID(centerID)
	if err != nil {
		if err == repositories.ErrCenterNotFound {
			return nil, ErrCenterNotFound
		}
		return nil, err
	}

	approved, err := s.repo.SumApproved(centerID)
	if err != nil {
		return nil, err
	}
	debits, err := s.repo.SumEnrollmentDebits(centerID)
	if err != nil {
		return nil, err
	}

	events, err := s.repo.ListCenterEvents(centerID)
	if err != nil {
		return nil, err
	}
	var folded, clamped float64
	for _, ev := range events {
		folded += ev.AppliedDelta
		clamped += ev.ClampedDelta
	}

	report := &ReconcileReport{
		CenterID:         centerID,
		StoredBalance:    center.WalletBalance,
		ApprovedTotal:    approved,
		EnrollmentDebits: debits,
		ClampedTotal:     clamped,
		ExpectedBalance:  folded,
	}
	report.Drift = report.StoredBalance - report.ExpectedBalance
	return report, nil
}

func (s *service) invalidateCenter(ctx context.Context, centerID uint, code string) {
	if err := s.cache.InvalidateCenter(ctx, centerID, code); err != nil {
		log.Printf("ledger: failed to invalidate center %d cache: %v", centerID, err)
	}
}

type noopCache struct{}

func (noopCache) InvalidateCenter(context.Context, uint, string) error { return nil }

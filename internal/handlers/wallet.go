package handlers

import (
	"errors"
	"strconv"

	"admitdesk/internal/middleware"
	"admitdesk/internal/models"
	"admitdesk/internal/services/center"
	"admitdesk/internal/services/ledger"
	"admitdesk/internal/services/upload"
	"admitdesk/internal/utils"
	"admitdesk/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// WalletHandler exposes the recharge/ledger HTTP surface.
type WalletHandler struct {
	ledgerService ledger.Service
	centerService center.Service
	uploads       *upload.Adapter
}

func NewWalletHandler(ledgerService ledger.Service, centerService center.Service, uploads *upload.Adapter) *WalletHandler {
	return &WalletHandler{
		ledgerService: ledgerService,
		centerService: centerService,
		uploads:       uploads,
	}
}

// SubmitRecharge accepts the multipart recharge form. The slip is stored
// before the row is created; if the ledger rejects the submission the stored
// file is cleaned up best-effort.
func (h *WalletHandler) SubmitRecharge(c *fiber.Ctx) error {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}

	amount, err := strconv.ParseFloat(c.FormValue("amount"), 64)
	if err != nil {
		return utils.BadRequest(c, "amount must be a number")
	}

	file, err := c.FormFile("paySlip")
	if err != nil {
		return utils.BadRequest(c, "payment slip is required")
	}

	centerCode := c.FormValue("centerCode")
	v := validation.New()
	v.RechargeSubmission(centerCode, amount, file.Filename)
	if !v.Valid() {
		return utils.BadRequest(c, v.Error())
	}

	src, err := file.Open()
	if err != nil {
		return utils.BadRequest(c, "could not read payment slip")
	}
	defer src.Close()

	slipName, err := h.uploads.Save(file.Size, src)
	if err != nil {
		switch {
		case errors.Is(err, upload.ErrNotImage), errors.Is(err, upload.ErrTooLarge):
			return utils.BadRequest(c, err.Error())
		}
		return utils.InternalError(c, "failed to store payment slip")
	}

	req, err := h.ledgerService.SubmitRecharge(c.Context(), claims, ledger.SubmitInput{
		CenterCode:        centerCode,
		Amount:            amount,
		PaySlip:           slipName,
		TransactionID:     c.FormValue("transactionId"),
		TransactionDate:   c.FormValue("transactionDate"),
		PaymentType:       c.FormValue("paymentType"),
		Beneficiary:       c.FormValue("beneficiary"),
		AccountHolderName: c.FormValue("accountHolderName"),
	})
	if err != nil {
		h.uploads.Remove(slipName)
		switch {
		case errors.Is(err, ledger.ErrInvalidAmount), errors.Is(err, ledger.ErrMissingEvidence):
			return utils.BadRequest(c, err.Error())
		case errors.Is(err, ledger.ErrCenterNotFound):
			return utils.NotFound(c, "center not found")
		case errors.Is(err, ledger.ErrForbidden):
			return utils.Forbidden(c, "cannot submit for another center")
		}
		return utils.InternalError(c, "failed to submit recharge request")
	}

	return utils.Created(c, "Recharge request submitted", req)
}

// ListRecharges returns recharge requests scoped to the caller's role.
func (h *WalletHandler) ListRecharges(c *fiber.Ctx) error {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}

	var filterCenterID uint
	if raw := c.Query("centerId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return utils.BadRequest(c, "centerId must be a number")
		}
		filterCenterID = uint(id)
	}

	reqs, err := h.ledgerService.ListRecharges(c.Context(), claims, filterCenterID)
	if err != nil {
		return utils.InternalError(c, "failed to list recharge requests")
	}
	if reqs == nil {
		reqs = []models.RechargeRequest{}
	}
	return c.JSON(reqs)
}

// TransitionStatus moderates a recharge request.
func (h *WalletHandler) TransitionStatus(c *fiber.Ctx) error {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return utils.BadRequest(c, "invalid request id")
	}

	var input struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}

	req, err := h.ledgerService.TransitionStatus(c.Context(), claims, uint(id), models.RechargeStatus(input.Status))
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrForbidden):
			return utils.Forbidden(c, "only superadmins may moderate recharge requests")
		case errors.Is(err, ledger.ErrInvalidStatus):
			return utils.BadRequest(c, err.Error())
		case errors.Is(err, ledger.ErrRequestNotFound):
			return utils.NotFound(c, "recharge request not found")
		case errors.Is(err, ledger.ErrCenterNotFound):
			return utils.NotFound(c, "center not found")
		}
		return utils.InternalError(c, "failed to update recharge status")
	}

	return utils.Success(c, "Recharge status updated", req)
}

// ListCenters returns the superadmin wallet overview.
func (h *WalletHandler) ListCenters(c *fiber.Ctx) error {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}

	list, err := h.centerService.ListSummaries(c.Context(), claims)
	if err != nil {
		if errors.Is(err, center.ErrForbidden) {
			return utils.Forbidden(c, "insufficient permissions")
		}
		return utils.InternalError(c, "failed to list centers")
	}
	if list == nil {
		list = []models.CenterSummary{}
	}
	return c.JSON(list)
}

// GetBalance returns the caller's own center balance.
func (h *WalletHandler) GetBalance(c *fiber.Ctx) error {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}
	if claims.CenterID == 0 {
		return utils.BadRequest(c, "caller is not bound to a center")
	}

	ctr, err := h.centerService.GetByID(c.Context(), claims.CenterID)
	if err != nil {
		if errors.Is(err, center.ErrCenterNotFound) {
			return utils.NotFound(c, "center not found")
		}
		return utils.InternalError(c, "failed to get center balance")
	}

	return c.JSON(fiber.Map{
		"centerId":      ctr.ID,
		"code":          ctr.Code,
		"walletBalance": ctr.WalletBalance,
	})
}

// ListEvents returns the audit trail for one recharge request.
func (h *WalletHandler) ListEvents(c *fiber.Ctx) error {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return utils.BadRequest(c, "invalid request id")
	}

	events, err := h.ledgerService.ListEvents(c.Context(), claims, uint(id))
	if err != nil {
		if errors.Is(err, ledger.ErrForbidden) {
			return utils.Forbidden(c, "insufficient permissions")
		}
		return utils.InternalError(c, "failed to list ledger events")
	}
	if events == nil {
		events = []models.LedgerEvent{}
	}
	return c.JSON(events)
}

// Reconcile folds a center's ledger and reports drift.
func (h *WalletHandler) Reconcile(c *fiber.Ctx) error {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}

	id, err := c.ParamsInt("centerId")
	if err != nil || id <= 0 {
		return utils.BadRequest(c, "invalid center id")
	}

	report, err := h.ledgerService.Reconcile(c.Context(), claims, uint(id))
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrForbidden):
			return utils.Forbidden(c, "insufficient permissions")
		case errors.Is(err, ledger.ErrCenterNotFound):
			return utils.NotFound(c, "center not found")
		}
		return utils.InternalError(c, "failed to reconcile center")
	}

	return utils.Success(c, "Reconciliation complete", report)
}

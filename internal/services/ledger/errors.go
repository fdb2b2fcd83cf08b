package ledger

import "errors"

// Service errors
var (
	ErrInvalidAmount       = errors.New("amount must be a positive number")
	ErrMissingEvidence     = errors.New("payment slip reference is required")
	ErrInvalidStatus       = errors.New("invalid recharge status")
	ErrForbidden           = errors.New("operation not permitted for this role")
	ErrCenterNotFound      = errors.New("center not found")
	ErrRequestNotFound     = errors.New("recharge request not found")
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
)

package repositories

import "errors"

var (
	ErrCenterNotFound   = errors.New("center not found")
	ErrRechargeNotFound = errors.New("recharge request not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrStudentNotFound  = errors.New("student not found")
	ErrDuplicateCode    = errors.New("center code already in use")
	ErrDuplicateEmail   = errors.New("email already in use")
)

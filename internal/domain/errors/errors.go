package errors

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyExists           = errors.New("already exists")
	ErrNotFound                = errors.New("not found")
	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrForbidden               = errors.New("forbidden")
	ErrValidation              = errors.New("validation failed")
	ErrInsufficientStock       = errors.New("insufficient stock")
	ErrConcurrentStockConflict = errors.New("stock changed concurrently")
	ErrInvalidTransition       = errors.New("invalid status transition")
	ErrRequestInProgress       = errors.New("request with the same idempotency key is in progress")

	ErrVoucher              = errors.New("voucher rejected")
	ErrVoucherNotFound      = errors.New("voucher not found")
	ErrVoucherExpired       = errors.New("voucher expired")
	ErrVoucherNotYetActive  = errors.New("voucher not yet active")
	ErrVoucherUsageExceeded = errors.New("voucher usage limit reached")
	ErrVoucherMinimumNotMet = errors.New("order amount below voucher minimum")
)

// ValidationError reports malformed input on a single field.
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidationError is a shorthand for &ValidationError{...}.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// InsufficientStockError names the variant that cannot cover the requested quantity.
type InsufficientStockError struct {
	VariantID int64
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for variant %d: requested %d, available %d", e.VariantID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// ConcurrentStockConflictError is returned when the conditional stock decrement
// at commit time finds less stock than the pre-check saw.
type ConcurrentStockConflictError struct {
	VariantID int64
}

func (e *ConcurrentStockConflictError) Error() string {
	if e.VariantID == 0 {
		return ErrConcurrentStockConflict.Error()
	}
	return fmt.Sprintf("stock for variant %d changed concurrently", e.VariantID)
}

func (e *ConcurrentStockConflictError) Is(target error) bool {
	return target == ErrConcurrentStockConflict
}

// VoucherReason enumerates why a voucher was rejected.
type VoucherReason string

const (
	VoucherNotFound      VoucherReason = "not_found"
	VoucherExpired       VoucherReason = "expired"
	VoucherNotYetActive  VoucherReason = "not_yet_active"
	VoucherUsageExceeded VoucherReason = "usage_exceeded"
	VoucherMinimumNotMet VoucherReason = "minimum_not_met"
)

func (r VoucherReason) sentinel() error {
	switch r {
	case VoucherNotFound:
		return ErrVoucherNotFound
	case VoucherExpired:
		return ErrVoucherExpired
	case VoucherNotYetActive:
		return ErrVoucherNotYetActive
	case VoucherUsageExceeded:
		return ErrVoucherUsageExceeded
	case VoucherMinimumNotMet:
		return ErrVoucherMinimumNotMet
	default:
		return ErrVoucher
	}
}

// VoucherError matches ErrVoucher and the sentinel of its reason.
type VoucherError struct {
	Code   string
	Reason VoucherReason
}

func NewVoucherError(code string, reason VoucherReason) *VoucherError {
	return &VoucherError{Code: code, Reason: reason}
}

func (e *VoucherError) Error() string {
	return fmt.Sprintf("voucher %q: %s", e.Code, e.Reason.sentinel().Error())
}

func (e *VoucherError) Is(target error) bool {
	return target == ErrVoucher || target == e.Reason.sentinel()
}

// InvalidTransitionError is returned for order status changes outside the lifecycle table.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot move order from %s to %s", e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool { return target == ErrInvalidTransition }

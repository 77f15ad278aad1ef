package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/server/http/dto"
)

// Stable error codes returned in dto.ErrorResponse.Error.
const (
	CodeInvalidBody          = "invalid_body"
	CodeValidation           = "validation_error"
	CodeNotFound             = "not_found"
	CodeAlreadyExists        = "already_exists"
	CodeInvalidCredentials   = "invalid_credentials"
	CodeForbidden            = "forbidden"
	CodeInsufficientStock    = "insufficient_stock"
	CodeStockConflict        = "stock_conflict"
	CodeInvalidTransition    = "invalid_transition"
	CodeRequestInProgress    = "request_in_progress"
	CodeVoucherNotFound      = "voucher_not_found"
	CodeVoucherExpired       = "voucher_expired"
	CodeVoucherNotYetActive  = "voucher_not_yet_active"
	CodeVoucherUsageExceeded = "voucher_usage_exceeded"
	CodeVoucherMinimumNotMet = "voucher_minimum_not_met"
	CodeVoucherRejected      = "voucher_rejected"
	CodeInternal             = "internal_error"
)

var voucherCodes = map[domainErrors.VoucherReason]string{
	domainErrors.VoucherNotFound:      CodeVoucherNotFound,
	domainErrors.VoucherExpired:       CodeVoucherExpired,
	domainErrors.VoucherNotYetActive:  CodeVoucherNotYetActive,
	domainErrors.VoucherUsageExceeded: CodeVoucherUsageExceeded,
	domainErrors.VoucherMinimumNotMet: CodeVoucherMinimumNotMet,
}

// respondError maps a use-case error onto status code and stable error code.
func respondError(c *gin.Context, err error) {
	var (
		validation *domainErrors.ValidationError
		voucher    *domainErrors.VoucherError
	)

	switch {
	case errors.As(err, &validation):
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{Error: CodeValidation, Message: validation.Error(), Field: validation.Field})
	case errors.As(err, &voucher):
		code, ok := voucherCodes[voucher.Reason]
		if !ok {
			code = CodeVoucherRejected
		}
		status := http.StatusBadRequest
		if voucher.Reason == domainErrors.VoucherNotFound {
			status = http.StatusNotFound
		}
		c.AbortWithStatusJSON(status, dto.ErrorResponse{Error: code, Message: voucher.Error(), Field: "voucher_code"})
	case errors.Is(err, domainErrors.ErrValidation):
		abortWith(c, http.StatusBadRequest, CodeValidation, err)
	case errors.Is(err, domainErrors.ErrInsufficientStock):
		abortWith(c, http.StatusBadRequest, CodeInsufficientStock, err)
	case errors.Is(err, domainErrors.ErrConcurrentStockConflict):
		c.Header("Retry-After", "1")
		abortWith(c, http.StatusBadRequest, CodeStockConflict, err)
	case errors.Is(err, domainErrors.ErrInvalidTransition):
		abortWith(c, http.StatusBadRequest, CodeInvalidTransition, err)
	case errors.Is(err, domainErrors.ErrNotFound):
		abortWith(c, http.StatusNotFound, CodeNotFound, err)
	case errors.Is(err, domainErrors.ErrAlreadyExists):
		abortWith(c, http.StatusConflict, CodeAlreadyExists, err)
	case errors.Is(err, domainErrors.ErrRequestInProgress):
		abortWith(c, http.StatusConflict, CodeRequestInProgress, err)
	case errors.Is(err, domainErrors.ErrInvalidCredentials):
		abortWith(c, http.StatusUnauthorized, CodeInvalidCredentials, err)
	case errors.Is(err, domainErrors.ErrForbidden):
		abortWith(c, http.StatusForbidden, CodeForbidden, err)
	default:
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, dto.ErrorResponse{Error: CodeInternal, Message: "internal server error"})
	}
}

func abortWith(c *gin.Context, status int, code string, err error) {
	c.AbortWithStatusJSON(status, dto.ErrorResponse{Error: code, Message: err.Error()})
}

func badRequest(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{Error: code, Message: message})
}

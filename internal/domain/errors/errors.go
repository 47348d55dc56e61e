package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// API error codes surfaced in response bodies.
const (
	CodeValidation     = "VALIDATION_ERROR"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeForbidden      = "FORBIDDEN"
	CodeNotFound       = "NOT_FOUND"
	CodeInvalidPlan    = "INVALID_PLAN"
	CodeInvalidAddress = "INVALID_ADDRESS"
	CodeInvalidNetwork = "INVALID_NETWORK"
	CodeInvalidStatus  = "INVALID_STATUS"
	CodePendingExists  = "PENDING_EXISTS"
	CodeCannotCancel   = "CANNOT_CANCEL"
	CodeOfacSanctioned = "OFAC_SANCTIONED"
	CodeRateLimited    = "RATE_LIMITED"
	CodeInternal       = "INTERNAL_ERROR"
)

// Domain errors
var (
	ErrNotFound          = errors.New("resource not found")
	ErrAlreadyExists     = errors.New("resource already exists")
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrTenantNotActive   = errors.New("tenant not active")
	ErrPaymentExpired    = errors.New("payment expired")
	ErrDuplicateTxHash   = errors.New("transaction hash already used")
	ErrUpdateInProgress  = errors.New("update already in progress")
	ErrInvalidTransition = errors.New("illegal payment status transition")
)

// AppError carries the HTTP status and API error code alongside the message.
type AppError struct {
	Status  int         `json:"-"`
	Code    string      `json:"error"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Err     error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new app error
func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{Status: status, Code: code, Message: message, Err: err}
}

// Common error constructors

func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, CodeNotFound, message, ErrNotFound)
}

func BadRequest(code, message string) *AppError {
	return NewAppError(http.StatusBadRequest, code, message, ErrInvalidInput)
}

func Validation(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeValidation, message, ErrInvalidInput)
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, CodeUnauthorized, message, ErrUnauthorized)
}

func Forbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, CodeForbidden, message, ErrForbidden)
}

func Conflict(code, message string) *AppError {
	return NewAppError(http.StatusConflict, code, message, ErrAlreadyExists)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternal, "internal server error", err)
}

// OfacSanctioned builds the compliance rejection naming the listed entity.
func OfacSanctioned(address, sdnName string) *AppError {
	msg := fmt.Sprintf("address %s on OFAC SDN list (%s)", address, sdnName)
	return NewAppError(http.StatusForbidden, CodeOfacSanctioned, msg, ErrForbidden)
}

package errors

import (
	stderrors "errors"
	"fmt"
	"runtime"
	"strings"
	"time"
)

// ErrorCode is a machine readable error class.
type ErrorCode string

const (
	// Generic
	ErrCodeInternal        ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation      ErrorCode = "VALIDATION_ERROR"
	ErrCodeNotFound        ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized    ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden       ErrorCode = "FORBIDDEN"
	ErrCodeConflict        ErrorCode = "CONFLICT"
	ErrCodeTooManyRequests ErrorCode = "TOO_MANY_REQUESTS"
	ErrCodeBadRequest      ErrorCode = "BAD_REQUEST"

	// Giveaways and participants
	ErrCodeGiveawayNotFound     ErrorCode = "GIVEAWAY_NOT_FOUND"
	ErrCodeGiveawayNotActive    ErrorCode = "GIVEAWAY_NOT_ACTIVE"
	ErrCodeGiveawayFull         ErrorCode = "GIVEAWAY_FULL"
	ErrCodeDuplicateParticipant ErrorCode = "DUPLICATE_PARTICIPANT"
	ErrCodeParticipantNotFound  ErrorCode = "PARTICIPANT_NOT_FOUND"
	ErrCodeNotOwner             ErrorCode = "NOT_OWNER"
	ErrCodeCreatorCannotJoin    ErrorCode = "CREATOR_CANNOT_JOIN"
	ErrCodeWrongPassword        ErrorCode = "WRONG_PASSWORD"
	ErrCodeInvalidBankAccount   ErrorCode = "INVALID_BANK_ACCOUNT"
	ErrCodeInvalidWinners       ErrorCode = "INVALID_WINNERS_COUNT"

	// Quiz
	ErrCodeQuizExpired     ErrorCode = "QUIZ_EXPIRED"
	ErrCodeQuizUnavailable ErrorCode = "QUIZ_UNAVAILABLE"

	// Payments
	ErrCodeTransactionNotFound ErrorCode = "TRANSACTION_NOT_FOUND"
	ErrCodeInvalidTransition   ErrorCode = "INVALID_TRANSITION"

	// Storage
	ErrCodeDatabaseError     ErrorCode = "DATABASE_ERROR"
	ErrCodeTransactionFailed ErrorCode = "TRANSACTION_FAILED"
	ErrCodeConnectionFailed  ErrorCode = "CONNECTION_FAILED"
	ErrCodeCacheError        ErrorCode = "CACHE_ERROR"

	// External APIs
	ErrCodeExternalAPI ErrorCode = "EXTERNAL_API_ERROR"
	ErrCodeRateLimit   ErrorCode = "RATE_LIMIT_EXCEEDED"
)

// AppError is a typed application error.
type AppError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Context   map[string]string      `json:"context,omitempty"`
	Stack     []string               `json:"-"`
	Timestamp time.Time              `json:"timestamp"`
	RequestID string                 `json:"request_id,omitempty"`
	UserID    int64                  `json:"user_id,omitempty"`
	Cause     error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// IsNotFound reports whether the error is a "not found" class error.
func (e *AppError) IsNotFound() bool {
	return e.Code == ErrCodeNotFound ||
		e.Code == ErrCodeGiveawayNotFound ||
		e.Code == ErrCodeParticipantNotFound ||
		e.Code == ErrCodeTransactionNotFound
}

// IsValidation reports whether the error was caused by rejected user input.
func (e *AppError) IsValidation() bool {
	switch e.Code {
	case ErrCodeValidation, ErrCodeBadRequest, ErrCodeDuplicateParticipant, ErrCodeWrongPassword,
		ErrCodeInvalidBankAccount, ErrCodeInvalidWinners, ErrCodeGiveawayNotActive,
		ErrCodeGiveawayFull, ErrCodeCreatorCannotJoin, ErrCodeQuizExpired:
		return true
	}
	return false
}

func (e *AppError) IsUnauthorized() bool {
	return e.Code == ErrCodeUnauthorized || e.Code == ErrCodeForbidden || e.Code == ErrCodeNotOwner
}

// IsTransport reports whether a remote dependency was unreachable. Such errors are retryable.
func (e *AppError) IsTransport() bool {
	return e.Code == ErrCodeExternalAPI || e.Code == ErrCodeRateLimit || e.Code == ErrCodeQuizUnavailable
}

func (e *AppError) IsInternal() bool {
	return e.Code == ErrCodeInternal ||
		e.Code == ErrCodeDatabaseError ||
		e.Code == ErrCodeTransactionFailed ||
		e.Code == ErrCodeConnectionFailed ||
		e.Code == ErrCodeCacheError
}

func (e *AppError) WithContext(key, value string) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = value
	return e
}

func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

func (e *AppError) WithRequestID(requestID string) *AppError {
	e.RequestID = requestID
	return e
}

func (e *AppError) WithUserID(userID int64) *AppError {
	e.UserID = userID
	return e
}

// New creates an application error.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
		Stack:     getStackTrace(),
	}
}

// Wrap wraps an existing error.
func Wrap(err error, code ErrorCode, message string) *AppError {
	appErr := New(code, message)
	appErr.Cause = err
	return appErr
}

func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *AppError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

func getStackTrace() []string {
	var stack []string
	for i := 2; ; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}
		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}
		if strings.Contains(fn.Name(), "internal/common/errors") {
			continue
		}
		stack = append(stack, fmt.Sprintf("%s:%d %s", file, line, fn.Name()))
		if len(stack) >= 10 {
			break
		}
	}
	return stack
}

func NewValidationError(field, reason string) *AppError {
	return New(ErrCodeValidation, fmt.Sprintf("Validation failed for field '%s': %s", field, reason)).
		WithDetail("field", field).
		WithDetail("reason", reason)
}

func NewNotFoundError(resource, id interface{}) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource)).
		WithDetail("resource", resource).
		WithDetail("id", id)
}

func NewGiveawayNotFoundError(giveawayID string) *AppError {
	return New(ErrCodeGiveawayNotFound, fmt.Sprintf("Giveaway not found: %s", giveawayID)).
		WithDetail("giveaway_id", giveawayID)
}

// NewTransactionNotFoundError is the "unknown transaction" outcome of reconciliation.
func NewTransactionNotFoundError(reference string) *AppError {
	return New(ErrCodeTransactionNotFound, fmt.Sprintf("Transaction not found: %s", reference)).
		WithDetail("reference", reference)
}

func NewForbiddenError(reason string) *AppError {
	return New(ErrCodeForbidden, fmt.Sprintf("Forbidden: %s", reason)).
		WithDetail("reason", reason)
}

func NewUnauthorizedError(reason string) *AppError {
	return New(ErrCodeUnauthorized, fmt.Sprintf("Unauthorized: %s", reason)).
		WithDetail("reason", reason)
}

func NewDatabaseError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeDatabaseError, fmt.Sprintf("Database operation failed: %s", operation)).
		WithDetail("operation", operation)
}

func NewCacheError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeCacheError, fmt.Sprintf("Cache operation failed: %s", operation)).
		WithDetail("operation", operation)
}

// NewExternalAPIError marks a gateway/provider failure; callers may retry.
func NewExternalAPIError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeExternalAPI, fmt.Sprintf("External API operation failed: %s", operation)).
		WithDetail("operation", operation)
}

func NewConflictError(resource, reason string) *AppError {
	return New(ErrCodeConflict, fmt.Sprintf("Conflict with %s: %s", resource, reason)).
		WithDetail("resource", resource).
		WithDetail("reason", reason)
}

// IsAppError reports whether err is (or wraps) an AppError.
func IsAppError(err error) bool {
	_, ok := AsAppError(err)
	return ok
}

// AsAppError finds the first AppError in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if err == nil {
		return nil, false
	}
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

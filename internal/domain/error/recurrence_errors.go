// Package error defines domain-specific errors for the recurring ledger service.
package error

import (
	"errors"
	"strings"
)

// Recurrence domain errors.
var (
	// ErrSeriesNotFound is returned when a recurring series does not exist.
	ErrSeriesNotFound = errors.New("recurring series not found")

	// ErrEntryNotFound is returned when a ledger entry does not exist.
	ErrEntryNotFound = errors.New("ledger entry not found")

	// ErrNotAuthorizedForSeries is returned when a series belongs to another user.
	ErrNotAuthorizedForSeries = errors.New("not authorized to access series")

	// ErrInvalidFrequency is returned when the frequency is not one of
	// daily, weekly, monthly or yearly.
	ErrInvalidFrequency = errors.New("invalid frequency")

	// ErrInvalidEntryKind is returned when the entry kind is invalid.
	ErrInvalidEntryKind = errors.New("invalid entry kind")

	// ErrInvalidAmount is returned when the amount is not a positive decimal.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInvalidDate is returned when a date string is malformed.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidScope is returned when the edit scope is unknown.
	ErrInvalidScope = errors.New("invalid edit scope")

	// ErrEndBeforeStart is returned when end_date precedes start_date.
	ErrEndBeforeStart = errors.New("end date precedes start date")

	// ErrDateOutsideWindow is returned when the effective date of a scoped
	// edit or delete lies outside the series' [start_date, end_date] window.
	ErrDateOutsideWindow = errors.New("effective date outside series window")

	// ErrCategoryRefNotFound is returned when a referenced category has
	// vanished. Surfaced as a validation-class failure, never a crash.
	ErrCategoryRefNotFound = errors.New("referenced category not found")

	// ErrUserRefNotFound is returned when a referenced owner has vanished.
	ErrUserRefNotFound = errors.New("referenced user not found")
)

// RecurrenceErrorCode defines error codes for recurrence errors.
// Format: REC-XXYYYY where XX is category and YYYY is specific error.
type RecurrenceErrorCode string

const (
	// Validation errors (01XXXX)
	ErrCodeInvalidFrequency  RecurrenceErrorCode = "REC-010001"
	ErrCodeInvalidEntryKind  RecurrenceErrorCode = "REC-010002"
	ErrCodeInvalidAmount     RecurrenceErrorCode = "REC-010003"
	ErrCodeInvalidDate       RecurrenceErrorCode = "REC-010004"
	ErrCodeInvalidScope      RecurrenceErrorCode = "REC-010005"
	ErrCodeEndBeforeStart    RecurrenceErrorCode = "REC-010006"
	ErrCodeDateOutsideWindow RecurrenceErrorCode = "REC-010007"
	ErrCodeMissingFields     RecurrenceErrorCode = "REC-010008"

	// Not-found errors (02XXXX)
	ErrCodeSeriesNotFound RecurrenceErrorCode = "REC-020001"
	ErrCodeEntryNotFound  RecurrenceErrorCode = "REC-020002"
	ErrCodeNotAuthorized  RecurrenceErrorCode = "REC-020003"

	// Reference errors (03XXXX)
	ErrCodeCategoryRefNotFound RecurrenceErrorCode = "REC-030001"
	ErrCodeUserRefNotFound     RecurrenceErrorCode = "REC-030002"
)

// RecurrenceError represents a recurrence error with code and message.
type RecurrenceError struct {
	Code    RecurrenceErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *RecurrenceError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *RecurrenceError) Unwrap() error {
	return e.Err
}

// NewRecurrenceError creates a new RecurrenceError with the given code and message.
func NewRecurrenceError(code RecurrenceErrorCode, message string, err error) *RecurrenceError {
	return &RecurrenceError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// hasCodeClass reports whether err carries a RecurrenceError code in the
// given class ("01", "02" or "03").
func hasCodeClass(err error, class string) bool {
	var recErr *RecurrenceError
	return errors.As(err, &recErr) && strings.HasPrefix(string(recErr.Code), "REC-"+class)
}

// IsValidation reports whether the error belongs to the validation class
// (including dangling references, which are surfaced to callers as
// validation-grade failures).
func IsValidation(err error) bool {
	return hasCodeClass(err, "01") ||
		hasCodeClass(err, "03") ||
		errors.Is(err, ErrInvalidFrequency) ||
		errors.Is(err, ErrInvalidEntryKind) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidScope) ||
		errors.Is(err, ErrEndBeforeStart) ||
		errors.Is(err, ErrDateOutsideWindow) ||
		errors.Is(err, ErrCategoryRefNotFound) ||
		errors.Is(err, ErrUserRefNotFound)
}

// IsNotFound reports whether the error belongs to the not-found class.
func IsNotFound(err error) bool {
	return hasCodeClass(err, "02") ||
		errors.Is(err, ErrSeriesNotFound) ||
		errors.Is(err, ErrEntryNotFound) ||
		errors.Is(err, ErrNotAuthorizedForSeries)
}

package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ErrorType represents the class of a dashboard error
type ErrorType string

const (
	// ErrTransport covers network and stream failures, including payloads
	// that could not be decoded
	ErrTransport ErrorType = "TRANSPORT"
	// ErrHTTPStatus is a non-2xx reply
	ErrHTTPStatus ErrorType = "HTTP_STATUS"
	// ErrApplication is a {success:false} reply carrying a server message
	ErrApplication ErrorType = "APPLICATION"
	// ErrPartial is a batch where some but not all items succeeded
	ErrPartial ErrorType = "PARTIAL"
	// ErrDataAbsence is an expected optional field that is missing
	ErrDataAbsence ErrorType = "DATA_ABSENCE"
	// ErrInvalidInput is a request rejected before reaching the server
	ErrInvalidInput ErrorType = "INVALID_INPUT"
)

// AppError represents a classified dashboard error
type AppError struct {
	Type       ErrorType
	Message    string
	StatusCode int
	Cause      error
	Timestamp  time.Time
}

func (e *AppError) Error() string {
	msg := e.Message
	if e.Type == ErrHTTPStatus && e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, msg)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:      errType,
		Message:   message,
		Cause:     cause,
		Timestamp: time.Now(),
	}
}

// NewTransportError creates a network or decode failure
func NewTransportError(message string, cause error) *AppError {
	return New(ErrTransport, message, cause)
}

// NewHTTPStatusError creates an error for a non-2xx reply. The message is
// the server supplied error text when present, the status text otherwise.
func NewHTTPStatusError(statusCode int, statusText, message string) *AppError {
	if strings.TrimSpace(message) == "" {
		message = statusText
	}
	err := New(ErrHTTPStatus, message, nil)
	err.StatusCode = statusCode
	return err
}

// NewApplicationError creates an error from a {success:false} reply
func NewApplicationError(message string) *AppError {
	if strings.TrimSpace(message) == "" {
		message = "request was not successful"
	}
	return New(ErrApplication, message, nil)
}

// NewValidationError creates an invalid input error
func NewValidationError(message string, cause error) *AppError {
	return New(ErrInvalidInput, message, cause)
}

// PartialError reports a batch where some items failed
type PartialError struct {
	Succeeded []string
	Failed    []string
}

func (e *PartialError) Error() string {
	return fmt.Sprintf("%s: %d succeeded, %d failed (%s)",
		ErrPartial, len(e.Succeeded), len(e.Failed), strings.Join(e.Failed, ", "))
}

// NewPartialError creates a new PartialError
func NewPartialError(succeeded, failed []string) *PartialError {
	return &PartialError{
		Succeeded: succeeded,
		Failed:    failed,
	}
}

// DataAbsenceError reports a missing optional field
type DataAbsenceError struct {
	Field string
}

func (e *DataAbsenceError) Error() string {
	return fmt.Sprintf("%s: %s not available", ErrDataAbsence, e.Field)
}

// NewDataAbsenceError creates a new DataAbsenceError
func NewDataAbsenceError(field string) *DataAbsenceError {
	return &DataAbsenceError{Field: field}
}

// TypeOf returns the class of err, or an empty ErrorType for foreign errors
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type
	}
	var partial *PartialError
	if stderrors.As(err, &partial) {
		return ErrPartial
	}
	var absent *DataAbsenceError
	if stderrors.As(err, &absent) {
		return ErrDataAbsence
	}
	return ""
}

// IsTransport checks if the error is a transport error
func IsTransport(err error) bool {
	return TypeOf(err) == ErrTransport
}

// IsHTTPStatus checks if the error is a non-2xx reply
func IsHTTPStatus(err error) bool {
	return TypeOf(err) == ErrHTTPStatus
}

// IsApplication checks if the error is an application error
func IsApplication(err error) bool {
	return TypeOf(err) == ErrApplication
}

// IsPartial checks if the error is a partial failure
func IsPartial(err error) bool {
	return TypeOf(err) == ErrPartial
}

// IsDataAbsence checks if the error is a missing optional field
func IsDataAbsence(err error) bool {
	return TypeOf(err) == ErrDataAbsence
}

// IsValidationError checks if the error is an invalid input error
func IsValidationError(err error) bool {
	return TypeOf(err) == ErrInvalidInput
}

// StatusCode returns the HTTP status carried by err, or 0
func StatusCode(err error) int {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return 0
}

// UserMessage returns the text shown to the user for err
func UserMessage(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

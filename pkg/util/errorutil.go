package util

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgInvalidTextRepresentation is raised when a malformed value reaches a typed
// column, such as a bad UUID in a WHERE clause.
const pgInvalidTextRepresentation = "22P02"

// Stable machine-readable error codes.
const (
	CodeValidation       = "VALIDATION_FAILED"
	CodeInvalidStatus    = "INVALID_STATUS"
	CodeInvalidMember    = "INVALID_MEMBER"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeForbidden        = "FORBIDDEN"
	CodeNotFound         = "NOT_FOUND"
	CodeConflict         = "CONFLICT"
	CodeAlreadyAssigned  = "ALREADY_ASSIGNED"
	CodeAlreadyReviewed  = "ALREADY_REVIEWED"
	CodeCapacityExceeded = "CAPACITY_EXCEEDED"
	CodeInternal         = "INTERNAL_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// IsConflict reports whether the error belongs to the conflict family
// (duplicate, already assigned, already reviewed).
func (e *DomainError) IsConflict() bool {
	return e.HTTPStatus == http.StatusConflict
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidation, message, http.StatusBadRequest, details)
}

func NewInvalidStatus(status string, allowed []string) error {
	return NewDomainError(CodeInvalidStatus, "invalid status value", http.StatusBadRequest, map[string]any{
		"status":  status,
		"allowed": allowed,
	})
}

func NewInvalidMembers(invalid []string) error {
	return NewDomainError(CodeInvalidMember, "some members are not part of this batch", http.StatusBadRequest, map[string]any{
		"invalid_members": invalid,
	})
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError(CodeConflict, message, http.StatusConflict, details)
}

func NewAlreadyAssigned(details map[string]any) error {
	return NewDomainError(CodeAlreadyAssigned, "ticket is already assigned", http.StatusConflict, details)
}

func NewAlreadyReviewed(details map[string]any) error {
	return NewDomainError(CodeAlreadyReviewed, "submission has already been reviewed", http.StatusConflict, details)
}

func NewCapacityExceeded(message string, details map[string]any) error {
	return NewDomainError(CodeCapacityExceeded, message, http.StatusUnprocessableEntity, details)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows) {
		if de, ok := NewNotFound("resource", nil).(*DomainError); ok {
			return de
		}
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgInvalidTextRepresentation {
		return &DomainError{
			Code:       CodeValidation,
			Message:    "invalid identifier",
			HTTPStatus: http.StatusBadRequest,
			Err:        err,
		}
	}
	if de, ok := NewInternalError(err).(*DomainError); ok {
		return de
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// MapError wraps err as a DomainError. A nil err stays nil.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	return ToDomainError(err)
}

// CodeOf returns the DomainError code carried by err, or "" when err is not a DomainError.
func CodeOf(err error) string {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}

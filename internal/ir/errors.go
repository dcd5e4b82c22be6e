package ir

import (
	"errors"
	"fmt"
)

// Error represents a failure while building or resolving dynamic types.
//
// Resolution errors include:
//   - Parse error: a storage definition is malformed
//   - Not found: an id has no matching row
//   - Store error: the backing store failed a connection or query
//   - Type mismatch: a value cannot be converted to the requested type
//   - Field missing: a value mapping lacks the requested field
//
// Only NOT_FOUND is ever absorbed into a null result; every other code is
// surfaced to the caller.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// TypeName identifies the component/storage type involved, if any.
	TypeName string

	// Field identifies the offending field, if any.
	Field string

	// Err is the underlying cause, if any.
	Err error
}

// ErrorCode categorizes resolution errors.
type ErrorCode string

const (
	// ErrCodeParse indicates a malformed storage definition.
	ErrCodeParse ErrorCode = "PARSE_ERROR"

	// ErrCodeNotFound indicates no row matched the lookup key.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeStore indicates a connection or query failure.
	ErrCodeStore ErrorCode = "STORE_ERROR"

	// ErrCodeTypeMismatch indicates a value of the wrong variant.
	ErrCodeTypeMismatch ErrorCode = "TYPE_MISMATCH"

	// ErrCodeFieldMissing indicates an absent field.
	ErrCodeFieldMissing ErrorCode = "FIELD_MISSING"
)

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	switch {
	case e.TypeName != "" && e.Field != "":
		msg = fmt.Sprintf("%s (type=%s, field=%s)", msg, e.TypeName, e.Field)
	case e.TypeName != "":
		msg = fmt.Sprintf("%s (type=%s)", msg, e.TypeName)
	case e.Field != "":
		msg = fmt.Sprintf("%s (field=%s)", msg, e.Field)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// HasCode reports whether err is an *Error with the given code.
// Uses errors.As to handle wrapped errors.
func HasCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IsParseError returns true if err is a PARSE_ERROR.
func IsParseError(err error) bool { return HasCode(err, ErrCodeParse) }

// IsNotFound returns true if err is a NOT_FOUND.
func IsNotFound(err error) bool { return HasCode(err, ErrCodeNotFound) }

// IsStoreError returns true if err is a STORE_ERROR.
func IsStoreError(err error) bool { return HasCode(err, ErrCodeStore) }

// IsTypeMismatch returns true if err is a TYPE_MISMATCH.
func IsTypeMismatch(err error) bool { return HasCode(err, ErrCodeTypeMismatch) }

// IsFieldMissing returns true if err is a FIELD_MISSING.
func IsFieldMissing(err error) bool { return HasCode(err, ErrCodeFieldMissing) }

// NewParseError creates an Error for a malformed storage definition.
func NewParseError(typeName, format string, args ...any) *Error {
	return &Error{
		Code:     ErrCodeParse,
		Message:  fmt.Sprintf(format, args...),
		TypeName: typeName,
	}
}

// NewNotFoundError creates an Error for a missing row.
func NewNotFoundError(typeName, id string) *Error {
	return &Error{
		Code:     ErrCodeNotFound,
		Message:  fmt.Sprintf("no row with id %q", id),
		TypeName: typeName,
	}
}

// NewStoreError wraps a backing store failure.
func NewStoreError(typeName string, err error) *Error {
	return &Error{
		Code:     ErrCodeStore,
		Message:  "store operation failed",
		TypeName: typeName,
		Err:      err,
	}
}

// NewTypeMismatchError creates an Error for a value of the wrong variant.
func NewTypeMismatchError(field, want, got string) *Error {
	return &Error{
		Code:    ErrCodeTypeMismatch,
		Message: fmt.Sprintf("want %s, got %s", want, got),
		Field:   field,
	}
}

// NewFieldMissingError creates an Error for an absent field.
func NewFieldMissingError(field string) *Error {
	return &Error{
		Code:    ErrCodeFieldMissing,
		Message: "field not present in value mapping",
		Field:   field,
	}
}

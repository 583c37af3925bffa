package mixed

import (
	"errors"
	"fmt"

	"github.com/karstdb/karst/internal/packed"
)

// ValueError represents an error raised by mixed value operations.
//
// Value errors include:
//   - Unknown type: a stored tag outside the closed kind set
//   - Type mismatch: a typed accessor called on the wrong kind
//   - Invalid reference: a referenced object deleted or never managed
//   - Cross session: a referenced object owned by a different session
type ValueError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Kind is the value's actual kind, where relevant.
	Kind packed.Kind

	// Requested is the kind a mismatched accessor asked for.
	Requested packed.Kind
}

// ErrorCode categorizes value errors.
type ErrorCode string

const (
	// ErrCodeUnknownType indicates a type tag outside the closed set.
	// This is a contract violation between the value layer and the
	// storage encoding, not a recoverable input condition.
	ErrCodeUnknownType ErrorCode = "UNKNOWN_TYPE"

	// ErrCodeTypeMismatch indicates an accessor asked for a kind the
	// value does not hold.
	ErrCodeTypeMismatch ErrorCode = "TYPE_MISMATCH"

	// ErrCodeInvalidReference indicates a referenced object that has
	// been deleted or was never managed by a session.
	ErrCodeInvalidReference ErrorCode = "INVALID_REFERENCE"

	// ErrCodeCrossSession indicates a referenced object owned by a
	// session other than the one validating it.
	ErrCodeCrossSession ErrorCode = "CROSS_SESSION"
)

// Error implements the error interface.
func (e *ValueError) Error() string {
	if e.Code == ErrCodeTypeMismatch {
		return fmt.Sprintf("%s: %s (value is %s, requested %s)", e.Code, e.Message, e.Kind, e.Requested)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsTypeMismatch returns true if the error is a type mismatch.
// Uses errors.As to handle wrapped errors.
func IsTypeMismatch(err error) bool {
	return hasCode(err, ErrCodeTypeMismatch)
}

// IsInvalidReference returns true if the error reports an invalid
// object reference.
func IsInvalidReference(err error) bool {
	return hasCode(err, ErrCodeInvalidReference)
}

// IsCrossSession returns true if the error reports a cross-session
// object reference.
func IsCrossSession(err error) bool {
	return hasCode(err, ErrCodeCrossSession)
}

// IsUnknownType returns true if the error reports an unrecognized
// type tag.
func IsUnknownType(err error) bool {
	return hasCode(err, ErrCodeUnknownType)
}

func hasCode(err error, code ErrorCode) bool {
	var ve *ValueError
	if errors.As(err, &ve) {
		return ve.Code == code
	}
	return false
}

func newTypeMismatch(requested, actual packed.Kind) *ValueError {
	return &ValueError{
		Code:      ErrCodeTypeMismatch,
		Message:   "incompatible type requested",
		Kind:      actual,
		Requested: requested,
	}
}

func newUnknownType(k packed.Kind) *ValueError {
	return &ValueError{
		Code:    ErrCodeUnknownType,
		Message: fmt.Sprintf("unrecognized type tag %d", uint8(k)),
		Kind:    k,
	}
}

func newInvalidReference(msg string) *ValueError {
	return &ValueError{Code: ErrCodeInvalidReference, Message: msg}
}

func newCrossSession(msg string) *ValueError {
	return &ValueError{Code: ErrCodeCrossSession, Message: msg}
}

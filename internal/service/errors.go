package service

import (
	"errors"
	"fmt"

	"smart-inventory/pkg/validator"
)

// ErrorKind classifies a failure so callers can render it without
// inspecting messages.
type ErrorKind int

const (
	KindOperational ErrorKind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindPolicyViolation
	KindPartialFailure
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindPolicyViolation:
		return "policy_violation"
	case KindPartialFailure:
		return "partial_failure"
	default:
		return "operational"
	}
}

// Error is the typed result every service operation returns on failure.
type Error struct {
	Kind    ErrorKind
	Message string
	Fields  []*validator.ErrorResponse
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Kind == KindOperational {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches sentinel errors by kind and message, so a wrapped copy of
// ErrLastAdmin still satisfies errors.Is(err, ErrLastAdmin).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

// KindOf reports the kind of err; anything that is not an *Error is operational.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindOperational
}

var (
	ErrInvalidQuantity     = &Error{Kind: KindValidation, Message: "quantity must be greater than zero"}
	ErrInsufficientStock   = &Error{Kind: KindValidation, Message: "insufficient stock remaining"}
	ErrInvalidPrice        = &Error{Kind: KindValidation, Message: "unit price must not be negative"}
	ErrUnknownSupplier     = &Error{Kind: KindValidation, Message: "supplier does not exist"}
	ErrInvalidRole         = &Error{Kind: KindValidation, Message: "role must be Admin or Staff"}
	ErrInvalidCredentials  = &Error{Kind: KindValidation, Message: "invalid email or password"}
	ErrProductNotFound     = &Error{Kind: KindNotFound, Message: "product not found"}
	ErrMovementNotFound    = &Error{Kind: KindNotFound, Message: "stock movement not found"}
	ErrSupplierNotFound    = &Error{Kind: KindNotFound, Message: "supplier not found"}
	ErrUserNotFound        = &Error{Kind: KindNotFound, Message: "user not found"}
	ErrProductHasHistory   = &Error{Kind: KindConflict, Message: "product has movement history"}
	ErrSupplierHasProducts = &Error{Kind: KindConflict, Message: "supplier has products"}
	ErrEmailTaken          = &Error{Kind: KindConflict, Message: "email is already registered"}
	ErrLastAdmin           = &Error{Kind: KindPolicyViolation, Message: "cannot delete the last admin user"}
	ErrNotLockedOut        = &Error{Kind: KindPolicyViolation, Message: "user is not locked out"}
	ErrLockedOut           = &Error{Kind: KindPolicyViolation, Message: "account is locked, try again later"}
	ErrSessionReplaced     = &Error{Kind: KindPolicyViolation, Message: "session expired (logged in on another device)"}
	ErrRoleLost            = &Error{Kind: KindPartialFailure, Message: "roles were removed but the new role could not be assigned; the account has no role"}
)

func validationFailed(fields []*validator.ErrorResponse) *Error {
	msg := "validation failed"
	if len(fields) > 0 {
		msg = "Validation failed: " + fields[0].Message()
	}
	return &Error{Kind: KindValidation, Message: msg, Fields: fields}
}

func operational(op string, err error) *Error {
	return &Error{Kind: KindOperational, Message: op, Err: err}
}

// wrap passes *Error values through untouched and turns anything else into
// an operational error tagged with op.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return operational(op, err)
}

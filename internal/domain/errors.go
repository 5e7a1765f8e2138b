package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrDuplicate    = errors.New("duplicate")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")

	// ErrDelivery marks a notification that could not be handed to the mail provider.
	ErrDelivery = errors.New("delivery failed")

	// ErrInvalidToken covers both unknown and expired verification tokens; callers
	// must not be able to tell the two apart.
	ErrInvalidToken = NewError(ErrBadRequest, "Invalid or expired verification token")

	// ErrTokenExpired is returned by token stores alongside the expired record.
	// It wraps ErrNotFound so callers that only care about presence treat it as absent.
	ErrTokenExpired = fmt.Errorf("verification token expired: %w", ErrNotFound)

	ErrEmailNotVerified = errors.New("email not verified")
)

// StockError reports a product that cannot cover the requested quantity.
type StockError struct {
	ProductID string
	Name      string
}

func (e *StockError) Error() string {
	if e.Name != "" {
		return "Insufficient stock for " + e.Name
	}
	return "Insufficient stock for product " + e.ProductID
}

func (e *StockError) Unwrap() error { return ErrBadRequest }

func (e *StockError) PublicMessage() string { return e.Error() }

// Error pairs a sentinel kind with the message shown to API clients.
type Error struct {
	Kind    error
	Message string
}

// NewError returns an error that matches kind under errors.Is and carries msg
// as its client-facing message.
func NewError(kind error, msg string) error {
	return &Error{Kind: kind, Message: msg}
}

func (e *Error) Error() string         { return e.Message + ": " + e.Kind.Error() }
func (e *Error) Unwrap() error         { return e.Kind }
func (e *Error) PublicMessage() string { return e.Message }

package domain

import "errors"

// Sentinel errors for the whole system. Services return these (possibly
// wrapped); handlers translate them into HTTP statuses and wire codes.
var (
	ErrUnauthenticated   = errors.New("unauthenticated")
	ErrInsufficientRole  = errors.New("insufficient role")
	ErrNotOwner          = errors.New("not the resource owner")
	ErrNotFound          = errors.New("resource not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrUserNotFound      = errors.New("user not found")
	ErrInvalidPassword   = errors.New("invalid password")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrStoreUnavailable  = errors.New("store temporarily unavailable")
)

// Code returns the stable machine-readable code for err. Clients depend on
// these values staying the same across releases.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return "UNAUTHENTICATED"
	case errors.Is(err, ErrInsufficientRole):
		return "INSUFFICIENT_ROLE"
	case errors.Is(err, ErrNotOwner):
		return "NOT_OWNER"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrInvalidInput):
		return "INVALID_INPUT"
	case errors.Is(err, ErrDuplicateEmail):
		return "DUPLICATE_EMAIL"
	case errors.Is(err, ErrUserNotFound):
		return "USER_NOT_FOUND"
	case errors.Is(err, ErrInvalidPassword):
		return "INVALID_PASSWORD"
	case errors.Is(err, ErrInvalidTransition):
		return "INVALID_TRANSITION"
	case errors.Is(err, ErrStoreUnavailable):
		return "STORE_UNAVAILABLE"
	default:
		return "INTERNAL_ERROR"
	}
}

// Package errs contains sentinel errors shared by repositories, services and
// handlers so that every layer maps failures to the same stable kinds.
package errs

import "errors"

// Stable error kinds surfaced to API clients. Handlers translate these into
// HTTP status codes; repositories translate raw driver errors into them so
// storage errors never leak upwards.
var (
	// ErrNotFound indicates a missing entity reference (user, cart, item, ...).
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a unique-field violation (e.g. duplicate email).
	ErrConflict = errors.New("already exists")

	// ErrUnauthorized indicates bad credentials or an inactive account.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates an authorization failure, including a refresh
	// token that does not match the stored value.
	ErrForbidden = errors.New("forbidden")

	// ErrBadRequest indicates a business-rule violation, such as adding an
	// unavailable product to a cart.
	ErrBadRequest = errors.New("bad request")
)

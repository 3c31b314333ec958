// Package errs holds the error categories shared by the domain packages.
// Concrete errors wrap one of these so callers can branch on the category
// with errors.Is without knowing every specific sentinel.
package errs

import "errors"

var (
	// ErrValidation: the request would break an invariant (negative balance,
	// bad loan terms, mutation of a frozen loan).
	ErrValidation = errors.New("validation error")

	// ErrRouting: an account or ledger could not be resolved for the operation.
	ErrRouting = errors.New("routing error")

	// ErrSchedule: a loan schedule could not be produced or consumed.
	ErrSchedule = errors.New("schedule error")
)

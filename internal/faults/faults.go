// Package faults defines the sentinel error kinds shared by all workflow
// operations. Callers classify failures with errors.Is; the HTTP layer maps
// each kind to a status code.
package faults

import "errors"

var (
	// ErrValidation marks bad or missing input. Nothing was mutated.
	ErrValidation = errors.New("validation failed")

	// ErrPrecondition marks a request that would drive the state machine out
	// of order, e.g. confirming arrival at the wrong stage.
	ErrPrecondition = errors.New("precondition not met")

	// ErrForbidden marks an operation on an entity outside the caller's
	// agency or client scope.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound marks a missing entity.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks an operation that collides with existing state, e.g.
	// assigning a labour profile that already holds an active assignment.
	ErrConflict = errors.New("conflict")
)

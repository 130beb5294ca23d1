package fulfillment

import "errors"

// Domain-rule errors. Storage-conflict errors (StaleState, AlreadyBatched,
// DuplicateConfirmation) live in the store package; together the two sets
// form the full error taxonomy the handlers translate to HTTP statuses.
var (
	// ErrInvalidTransition means the requested edge is not defined for the
	// entity's current status.
	ErrInvalidTransition = errors.New("transition not allowed from current status")
	// ErrMissingJustification means a disposal decision arrived without a
	// justification. The transition fails; it never silently defaults to
	// storage.
	ErrMissingJustification = errors.New("disposal decision requires a justification")
	// ErrInvalidCode means the submitted daily code does not match the
	// derived value for that user today.
	ErrInvalidCode = errors.New("daily code does not match")
	// ErrTooLateToCancel means processing already began, so the stock side
	// effect may have fired; cancellation must be handled as a post-hoc
	// reversal outside this core.
	ErrTooLateToCancel = errors.New("request can no longer be cancelled")
	// ErrForbidden means the actor's role or identity does not allow the
	// transition.
	ErrForbidden = errors.New("actor not allowed to perform this action")
	// ErrValidation wraps input validation failures.
	ErrValidation = errors.New("invalid input")
)

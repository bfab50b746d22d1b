/*
errors.go - Error taxonomy for the booking and settlement core

PURPOSE:
  One place for every error kind the core can surface. Callers branch
  with errors.Is; the API layer maps each kind to a stable HTTP status
  and message, never leaking internals.

TAXONOMY:
  ErrNotFound             session / user / skill absent
  ErrSessionNotAvailable  booking lost a race, or session not open
  ErrSelfBooking          a teacher booking their own session
  ErrInsufficientCredit   debit would drive a balance negative
  ErrForbidden            non-teacher attempting a teacher-only action
  ErrInvalidTransition    any disallowed status edge
  ErrStatusConflict       compare-and-set saw a different stored status

PROPAGATION:
  Validation failures are detected before any mutation and returned with
  no side effects. A losing compare-and-set is not an internal error: the
  booking path reports it as ErrSessionNotAvailable and the caller decides
  whether to re-fetch and retry.
*/
package exchange

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotFound is returned when a referenced session, user or skill
	// does not exist.
	ErrNotFound = errors.New("not found")

	// ErrSessionNotAvailable is returned when a session cannot be booked:
	// it is not open, already has a student, or a concurrent booking won.
	ErrSessionNotAvailable = errors.New("session not available")

	// ErrSelfBooking is returned when a user tries to book their own session.
	ErrSelfBooking = errors.New("cannot book own session")

	// ErrInsufficientCredit is returned when a debit would make a balance
	// negative. The operation performs no mutation.
	ErrInsufficientCredit = errors.New("insufficient credit")

	// ErrForbidden is returned when the requester lacks the role the
	// operation requires (e.g. completion by a non-teacher).
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidTransition is returned for any status edge outside the
	// state machine.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrStatusConflict is returned by the store when a compare-and-set
	// finds a status other than the expected one. Services translate it
	// into ErrSessionNotAvailable or ErrInvalidTransition as appropriate.
	ErrStatusConflict = errors.New("session status changed concurrently")

	// ErrDuplicateEntry is returned when a ledger entry with the same
	// idempotency key already exists. Expected behavior for retries.
	ErrDuplicateEntry = errors.New("duplicate ledger entry")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InsufficientCreditError details a balance shortfall.
type InsufficientCreditError struct {
	UserID    UserID
	Available Credits
	Requested Credits
}

func (e *InsufficientCreditError) Error() string {
	return fmt.Sprintf("insufficient credit: user %s has %v, needs %v",
		e.UserID, e.Available.Value, e.Requested.Value)
}

func (e *InsufficientCreditError) Unwrap() error { return ErrInsufficientCredit }

// InvalidTransitionError details a rejected status edge.
type InvalidTransitionError struct {
	SessionID SessionID
	From      SessionStatus
	To        SessionStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition for session %s: %s -> %s",
		e.SessionID, e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsRetryable returns true if the error might succeed on a fresh attempt.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStatusConflict)
}

// IsClientError returns true if the error is the caller's fault rather
// than the system's.
func IsClientError(err error) bool {
	return errors.Is(err, ErrSessionNotAvailable) ||
		errors.Is(err, ErrSelfBooking) ||
		errors.Is(err, ErrInsufficientCredit) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrInvalidTransition)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

/*
booking.go - Booking, completion and cancellation orchestration

PURPOSE:
  The only writers of session status. BookingService pairs the
  open→booked transition with the student→teacher credit transfer in one
  atomic unit; CompletionService flips booked→completed with no credit
  movement (settlement already happened at booking time); cancellation
  closes a session from either non-terminal state, refunding the booking
  transfer when one exists.

BOOKING FLOW:
  1. Read session              → ErrNotFound if absent
  2. Validate open             → ErrSessionNotAvailable
     student ≠ teacher         → ErrSelfBooking
     balance ≥ cost            → ErrInsufficientCredit
  3. WithTx:
       compare-and-set open→booked (assigns student)
       ledger transfer student→teacher of CreditCost
  4. A lost compare-and-set aborts the unit with no credit movement and
     surfaces ErrSessionNotAvailable. A transfer failure rolls the
     transition back. Nothing is ever left half-applied.

CONCURRENCY:
  The compare-and-set is the sole serialization point: of N concurrent
  bookings for one open session exactly one commits, the rest observe
  ErrSessionNotAvailable after a clean rollback. Per-user overdraw is
  prevented by the store's conditional balance write.
*/
package exchange

import (
	"context"
	"errors"
)

// =============================================================================
// BOOKING SERVICE
// =============================================================================

// BookingService orchestrates booking and cancellation.
type BookingService struct {
	store  TxStore
	ledger *Ledger
}

func NewBookingService(store TxStore, ledger *Ledger) *BookingService {
	return &BookingService{store: store, ledger: ledger}
}

// Book assigns the session to the student and settles its credit cost,
// atomically. Returns the updated session on success.
func (b *BookingService) Book(ctx context.Context, sessionID SessionID, studentID UserID) (*Session, error) {
	sess, err := b.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrNotFound
	}

	// All validation happens before any mutation.
	if sess.Status != StatusOpen || sess.StudentID != nil {
		return nil, ErrSessionNotAvailable
	}
	if sess.TeacherID == studentID {
		return nil, ErrSelfBooking
	}

	student, err := b.store.GetUser(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, ErrNotFound
	}
	if student.Balance.LessThan(sess.CreditCost) {
		return nil, &InsufficientCreditError{
			UserID:    studentID,
			Available: student.Balance,
			Requested: sess.CreditCost,
		}
	}

	// The transition and the transfer commit together or not at all.
	err = b.store.WithTx(ctx, func(st Store) error {
		if err := st.TransitionSession(ctx, sessionID, StatusOpen, StatusBooked, &studentID); err != nil {
			if errors.Is(err, ErrStatusConflict) {
				// Lost the race to a concurrent booker.
				return ErrSessionNotAvailable
			}
			return err
		}
		return b.ledger.Transfer(ctx, st, studentID, sess.TeacherID, sess.CreditCost,
			string(sessionID), "session booked")
	})
	if err != nil {
		return nil, err
	}

	return b.store.GetSession(ctx, sessionID)
}

// Cancel closes a session. An open session may be cancelled by its
// teacher; a booked session by either participant, refunding the
// booking-time transfer in the same atomic unit as the transition.
func (b *BookingService) Cancel(ctx context.Context, sessionID SessionID, requesterID UserID) (*Session, error) {
	sess, err := b.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrNotFound
	}

	switch sess.Status {
	case StatusOpen:
		if sess.TeacherID != requesterID {
			return nil, ErrForbidden
		}
		err = b.store.WithTx(ctx, func(st Store) error {
			return st.TransitionSession(ctx, sessionID, StatusOpen, StatusCancelled, nil)
		})

	case StatusBooked:
		if !sess.IsParticipant(requesterID) {
			return nil, ErrForbidden
		}
		student := *sess.StudentID
		err = b.store.WithTx(ctx, func(st Store) error {
			if err := st.TransitionSession(ctx, sessionID, StatusBooked, StatusCancelled, nil); err != nil {
				return err
			}
			return b.ledger.Transfer(ctx, st, sess.TeacherID, student, sess.CreditCost,
				string(sessionID), "booking refunded on cancellation")
		})

	default:
		return nil, &InvalidTransitionError{SessionID: sessionID, From: sess.Status, To: StatusCancelled}
	}

	if err != nil {
		if errors.Is(err, ErrStatusConflict) {
			// Someone else moved the session first; re-read to report the edge.
			return nil, &InvalidTransitionError{SessionID: sessionID, From: sess.Status, To: StatusCancelled}
		}
		return nil, err
	}

	return b.store.GetSession(ctx, sessionID)
}

// =============================================================================
// COMPLETION SERVICE
// =============================================================================

// CompletionService flips a booked session to completed. Completion is
// trust-based: no proof-of-attendance signal exists, the teacher's word
// unlocks review eligibility and nothing more. Credits do not move here.
type CompletionService struct {
	store TxStore
}

func NewCompletionService(store TxStore) *CompletionService {
	return &CompletionService{store: store}
}

// Complete marks the session completed. Only the session's teacher may
// call it, and only while the session is booked.
func (c *CompletionService) Complete(ctx context.Context, sessionID SessionID, requesterID UserID) (*Session, error) {
	sess, err := c.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrNotFound
	}

	if sess.TeacherID != requesterID {
		return nil, ErrForbidden
	}
	if sess.Status != StatusBooked {
		return nil, &InvalidTransitionError{SessionID: sessionID, From: sess.Status, To: StatusCompleted}
	}

	err = c.store.TransitionSession(ctx, sessionID, StatusBooked, StatusCompleted, nil)
	if err != nil {
		if errors.Is(err, ErrStatusConflict) {
			// The session moved between our read and the compare-and-set.
			fresh, readErr := c.store.GetSession(ctx, sessionID)
			from := sess.Status
			if readErr == nil && fresh != nil {
				from = fresh.Status
			}
			return nil, &InvalidTransitionError{SessionID: sessionID, From: from, To: StatusCompleted}
		}
		return nil, err
	}

	return c.store.GetSession(ctx, sessionID)
}

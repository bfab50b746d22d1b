/*
store.go - Persistence interfaces for the booking core

PURPOSE:
  The boundary between domain logic and storage. Implementations exist
  for SQLite (store/sqlite) and memory (exchange/store). The store is an
  explicit dependency handed to services at construction, never a
  process-wide singleton, so the core tests in isolation.

WRITE DISCIPLINE:
  Session rows and user balances are the only shared mutable state, and
  they are mutated exclusively through two primitives:

    TransitionSession  compare-and-set on session status
    AdjustBalance      conditional balance delta (never below zero)

  No service writes a status or balance field any other way. Ledger
  entries are append-only; corrections are new entries, never updates.

ATOMIC UNITS:
  TxStore.WithTx runs a function against a transactional view. If the
  function errors, every write inside it is rolled back. Booking runs
  its compare-and-set and credit transfer inside one such unit, so no
  reader ever observes a booked session without its settlement.
*/
package exchange

import "context"

// Store is the full persistence surface consumed by the core.
//
// Read methods return (nil, nil) for absent records; services translate
// that into ErrNotFound so storage stays ignorant of the error taxonomy.
type Store interface {
	// Users. Balance is mutated only through AdjustBalance.
	SaveUser(ctx context.Context, u User) error
	GetUser(ctx context.Context, id UserID) (*User, error)

	// AdjustBalance applies delta to the user's balance as one conditional
	// write. It fails with ErrInsufficientCredit when the result would be
	// negative and ErrNotFound when the user does not exist; either way the
	// balance is untouched. The check and the write are a single serialized
	// step per user, so concurrent debits cannot jointly overdraw.
	AdjustBalance(ctx context.Context, id UserID, delta Credits) error

	// Sessions.
	SaveSession(ctx context.Context, s Session) error
	GetSession(ctx context.Context, id SessionID) (*Session, error)

	// TransitionSession performs a compare-and-set on session status:
	// the write happens only if the stored status equals expected.
	// A mismatch returns ErrStatusConflict with no mutation; an edge not
	// in the state machine returns InvalidTransitionError. student must
	// be non-nil exactly for the open->booked edge, which assigns it.
	TransitionSession(ctx context.Context, id SessionID, expected, next SessionStatus, student *UserID) error

	// Read-only projections, newest first.
	AvailableSessions(ctx context.Context) ([]Session, error)
	SessionsByTeacher(ctx context.Context, teacherID UserID) ([]Session, error)
	SessionsByStudent(ctx context.Context, studentID UserID) ([]Session, error)

	// Ledger entries. Append-only; ErrDuplicateEntry on idempotency key reuse.
	AppendEntry(ctx context.Context, e LedgerEntry) error
	EntriesByUser(ctx context.Context, id UserID) ([]LedgerEntry, error)

	// Skills. Read-only to the core beyond creation.
	SaveSkill(ctx context.Context, s Skill) error
	GetSkill(ctx context.Context, id SkillID) (*Skill, error)
	SkillsByUser(ctx context.Context, userID UserID, teaching bool) ([]Skill, error)

	// Reviews.
	SaveReview(ctx context.Context, r Review) error
	ReviewsBySession(ctx context.Context, sessionID SessionID) ([]Review, error)
}

// TxStore wraps Store with atomic multi-write units.
type TxStore interface {
	Store

	// WithTx executes fn against a transactional view of the store.
	// If fn returns an error every write inside it is rolled back and the
	// error is returned unchanged; otherwise the unit commits.
	WithTx(ctx context.Context, fn func(Store) error) error
}

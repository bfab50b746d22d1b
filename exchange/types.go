/*
Package exchange contains the core of the skill-exchange marketplace:
the session booking workflow and the credit ledger that settles it.

PURPOSE:
  Users teach or learn skills in time-boxed sessions. A teacher lists a
  session with a fixed credit cost; a student books it, which atomically
  moves credits from student to teacher and flips the session from open
  to booked. This package owns that state machine and the ledger.

KEY CONCEPTS IN THIS FILE (types.go):
  - Credits:      An exact credit amount (decimal-backed, integer-valued)
  - Session:      The central entity with its status lifecycle
  - LedgerEntry:  An immutable record of a balance change
  - User/Skill/Review: Supporting entities at the collaborator boundary

DESIGN PRINCIPLES:
  1. Single writer: session status and balances change only through
     store primitives, never via direct field writes.
  2. Atomic units: a booking's status transition and credit transfer
     commit together or not at all.
  3. Auditability: every balance change leaves a ledger entry with a
     reference and idempotency key.

SEE ALSO:
  - session.go: Status state machine
  - ledger.go:  Transfer/credit/debit primitives
  - booking.go: Booking, completion and cancellation orchestration
  - store.go:   Persistence interfaces
*/
package exchange

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type UserID string
type SkillID string
type SessionID string
type EntryID string
type ReviewID string

// =============================================================================
// CREDITS - Exact credit amounts
// =============================================================================

// Credits is the marketplace's unit of exchange. Amounts are integer-valued
// (one credit is one unit of teaching time) but carried as decimals so ledger
// arithmetic stays exact end to end.
type Credits struct {
	Value decimal.Decimal
}

func NewCredits(v int64) Credits {
	return Credits{Value: decimal.NewFromInt(v)}
}

func ZeroCredits() Credits {
	return Credits{Value: decimal.Zero}
}

func (c Credits) Add(o Credits) Credits      { return Credits{Value: c.Value.Add(o.Value)} }
func (c Credits) Sub(o Credits) Credits      { return Credits{Value: c.Value.Sub(o.Value)} }
func (c Credits) Neg() Credits               { return Credits{Value: c.Value.Neg()} }
func (c Credits) IsNegative() bool           { return c.Value.IsNegative() }
func (c Credits) IsPositive() bool           { return c.Value.IsPositive() }
func (c Credits) IsZero() bool               { return c.Value.IsZero() }
func (c Credits) LessThan(o Credits) bool    { return c.Value.LessThan(o.Value) }
func (c Credits) GreaterThan(o Credits) bool { return c.Value.GreaterThan(o.Value) }
func (c Credits) Equal(o Credits) bool       { return c.Value.Equal(o.Value) }

// Int64 returns the integer value. Credit amounts are integer-valued by
// construction; storage columns use INTEGER.
func (c Credits) Int64() int64 { return c.Value.IntPart() }

// =============================================================================
// USER - Identity plus credit balance
// =============================================================================

// User is created by the registration collaborator; this core only ever
// mutates the balance, and only through ledger operations.
type User struct {
	ID        UserID
	Name      string
	Email     string
	Balance   Credits
	CreatedAt time.Time
}

// =============================================================================
// SKILL - A capability a user teaches or wants to learn
// =============================================================================

type SkillLevel string

const (
	LevelBeginner     SkillLevel = "beginner"
	LevelIntermediate SkillLevel = "intermediate"
	LevelAdvanced     SkillLevel = "advanced"
)

// Skill is owned by exactly one user and tagged as teaching or learning.
// Sessions reference a skill id as an opaque foreign key; the core never
// interprets skill attributes.
type Skill struct {
	ID        SkillID
	UserID    UserID
	Name      string
	Category  string
	Level     SkillLevel
	Teaching  bool
	CreatedAt time.Time
}

// =============================================================================
// SESSION - The central entity
// =============================================================================

// Session is a scheduled teaching engagement between exactly two users.
//
// Invariants:
//   - StudentID is nil while the session is open; the open→booked edge is
//     the only thing that sets it.
//   - CreditCost is fixed at creation and never changes.
//   - Teacher and student are never the same user.
type Session struct {
	ID          SessionID
	Title       string
	Description string
	TeacherID   UserID
	StudentID   *UserID
	SkillID     SkillID
	ScheduledAt time.Time
	DurationMin int
	MeetingLink string
	CreditCost  Credits
	Status      SessionStatus
	CreatedAt   time.Time
}

// Booked reports whether a student holds this session.
func (s *Session) Booked() bool {
	return s.StudentID != nil
}

// IsParticipant reports whether id is the session's teacher or student.
func (s *Session) IsParticipant(id UserID) bool {
	if s.TeacherID == id {
		return true
	}
	return s.StudentID != nil && *s.StudentID == id
}

// =============================================================================
// LEDGER ENTRY - Immutable balance change record
// =============================================================================

type EntryType string

const (
	EntryGrant  EntryType = "grant"  // Seed credits at registration
	EntryDebit  EntryType = "debit"  // Credits leaving a balance
	EntryCredit EntryType = "credit" // Credits arriving at a balance
)

// LedgerEntry records a single balance adjustment. A transfer always
// produces a balanced debit/credit pair sharing one ReferenceID, so the
// log sums to zero across any completed exchange.
type LedgerEntry struct {
	ID             EntryID
	UserID         UserID
	Delta          Credits
	Type           EntryType
	ReferenceID    string // session id for transfers, empty for grants
	Reason         string
	IdempotencyKey string
	CreatedAt      time.Time
}

// =============================================================================
// REVIEW - Feedback on a completed session
// =============================================================================

// Review is gated on session status: only participants of a completed
// session may leave one. The core exposes no other review logic.
type Review struct {
	ID         ReviewID
	SessionID  SessionID
	ReviewerID UserID
	Rating     int
	Comment    string
	CreatedAt  time.Time
}

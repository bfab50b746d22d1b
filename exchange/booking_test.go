package exchange_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PrithviBathla/EduPair/exchange"
	memstore "github.com/PrithviBathla/EduPair/exchange/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

type bookingEnv struct {
	store      *memstore.Memory
	ledger     *exchange.Ledger
	booking    *exchange.BookingService
	completion *exchange.CompletionService
	query      *exchange.QueryService
}

func newBookingEnv(t *testing.T) *bookingEnv {
	t.Helper()
	st := memstore.NewMemory()
	ledger := exchange.NewLedger()
	return &bookingEnv{
		store:      st,
		ledger:     ledger,
		booking:    exchange.NewBookingService(st, ledger),
		completion: exchange.NewCompletionService(st),
		query:      exchange.NewQueryService(st),
	}
}

func (e *bookingEnv) addUser(t *testing.T, id string, credits int64) {
	t.Helper()
	err := e.store.SaveUser(context.Background(), exchange.User{
		ID:        exchange.UserID(id),
		Name:      id,
		Balance:   exchange.NewCredits(credits),
		CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
}

func (e *bookingEnv) addOpenSession(t *testing.T, id, teacher string, cost int64) {
	t.Helper()
	err := e.store.SaveSession(context.Background(), exchange.Session{
		ID:          exchange.SessionID(id),
		Title:       "Session " + id,
		TeacherID:   exchange.UserID(teacher),
		SkillID:     "skill-1",
		ScheduledAt: time.Date(2026, time.September, 1, 10, 0, 0, 0, time.UTC),
		DurationMin: 60,
		CreditCost:  exchange.NewCredits(cost),
		Status:      exchange.StatusOpen,
		CreatedAt:   time.Now().UTC(),
	})
	require.NoError(t, err)
}

func (e *bookingEnv) balance(t *testing.T, id string) int64 {
	t.Helper()
	u, err := e.store.GetUser(context.Background(), exchange.UserID(id))
	require.NoError(t, err)
	require.NotNil(t, u)
	return u.Balance.Int64()
}

func (e *bookingEnv) session(t *testing.T, id string) *exchange.Session {
	t.Helper()
	s, err := e.store.GetSession(context.Background(), exchange.SessionID(id))
	require.NoError(t, err)
	require.NotNil(t, s)
	return s
}

// =============================================================================
// BOOKING TESTS
// =============================================================================

func TestBooking_Success(t *testing.T) {
	// GIVEN: Open session costing 3, student holding 5
	// WHEN: Student books
	// THEN: Session is booked with the student assigned and 3 credits
	//       moved from student to teacher

	env := newBookingEnv(t)
	ctx := context.Background()

	env.addUser(t, "teacher", 5)
	env.addUser(t, "student", 5)
	env.addOpenSession(t, "s1", "teacher", 3)

	sess, err := env.booking.Book(ctx, "s1", "student")
	require.NoError(t, err)

	assert.Equal(t, exchange.StatusBooked, sess.Status)
	require.NotNil(t, sess.StudentID)
	assert.Equal(t, exchange.UserID("student"), *sess.StudentID)

	assert.Equal(t, int64(2), env.balance(t, "student"))
	assert.Equal(t, int64(8), env.balance(t, "teacher"))
}

func TestBooking_WritesBalancedLedgerPair(t *testing.T) {
	// GIVEN: A successful booking
	// WHEN: Reading both users' ledger histories
	// THEN: One debit and one credit share the session as reference and
	//       sum to zero

	env := newBookingEnv(t)
	ctx := context.Background()

	env.addUser(t, "teacher", 0)
	env.addUser(t, "student", 5)
	env.addOpenSession(t, "s1", "teacher", 3)

	_, err := env.booking.Book(ctx, "s1", "student")
	require.NoError(t, err)

	studentEntries, err := env.store.EntriesByUser(ctx, "student")
	require.NoError(t, err)
	require.Len(t, studentEntries, 1)
	assert.Equal(t, exchange.EntryDebit, studentEntries[0].Type)
	assert.Equal(t, int64(-3), studentEntries[0].Delta.Int64())
	assert.Equal(t, "s1", studentEntries[0].ReferenceID)

	teacherEntries, err := env.store.EntriesByUser(ctx, "teacher")
	require.NoError(t, err)
	require.Len(t, teacherEntries, 1)
	assert.Equal(t, exchange.EntryCredit, teacherEntries[0].Type)
	assert.Equal(t, int64(3), teacherEntries[0].Delta.Int64())
	assert.Equal(t, "s1", teacherEntries[0].ReferenceID)

	sum := studentEntries[0].Delta.Add(teacherEntries[0].Delta)
	assert.True(t, sum.IsZero(), "transfer pair should sum to zero")
}

func TestBooking_InsufficientCredit(t *testing.T) {
	// GIVEN: Session costs 3, student holds 1
	// WHEN: Student books
	// THEN: Booking fails with the shortfall detailed; session stays open
	//       and no balance moves

	env := newBookingEnv(t)
	ctx := context.Background()

	env.addUser(t, "teacher", 5)
	env.addUser(t, "student", 1)
	env.addOpenSession(t, "s1", "teacher", 3)

	_, err := env.booking.Book(ctx, "s1", "student")
	require.Error(t, err)
	assert.ErrorIs(t, err, exchange.ErrInsufficientCredit)

	var credErr *exchange.InsufficientCreditError
	require.ErrorAs(t, err, &credErr)
	assert.Equal(t, exchange.UserID("student"), credErr.UserID)
	assert.Equal(t, int64(1), credErr.Available.Int64())
	assert.Equal(t, int64(3), credErr.Requested.Int64())

	sess := env.session(t, "s1")
	assert.Equal(t, exchange.StatusOpen, sess.Status)
	assert.Nil(t, sess.StudentID)
	assert.Equal(t, int64(1), env.balance(t, "student"))
	assert.Equal(t, int64(5), env.balance(t, "teacher"))

	// The session is still bookable by someone else.
	available, err := env.query.Available(ctx)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, exchange.SessionID("s1"), available[0].ID)
}

func TestBooking_SelfBookingForbidden(t *testing.T) {
	// GIVEN: A teacher with plenty of credits and their own open session
	// WHEN: The teacher books it
	// THEN: Rejected before any state changes

	env := newBookingEnv(t)
	ctx := context.Background()

	env.addUser(t, "teacher", 10)
	env.addOpenSession(t, "s1", "teacher", 3)

	_, err := env.booking.Book(ctx, "s1", "teacher")
	assert.ErrorIs(t, err, exchange.ErrSelfBooking)

	sess := env.session(t, "s1")
	assert.Equal(t, exchange.StatusOpen, sess.Status)
	assert.Equal(t, int64(10), env.balance(t, "teacher"))
}

func TestBooking_AlreadyBooked(t *testing.T) {
	// GIVEN: Session already booked by student A
	// WHEN: Student B books it
	// THEN: B is told the session is unavailable; A keeps the booking and
	//       B's balance is untouched

	env := newBookingEnv(t)
	ctx := context.Background()

	env.addUser(t, "teacher", 0)
	env.addUser(t, "alice", 5)
	env.addUser(t, "bob", 5)
	env.addOpenSession(t, "s1", "teacher", 2)

	_, err := env.booking.Book(ctx, "s1", "alice")
	require.NoError(t, err)

	_, err = env.booking.Book(ctx, "s1", "bob")
	assert.ErrorIs(t, err, exchange.ErrSessionNotAvailable)

	sess := env.session(t, "s1")
	require.NotNil(t, sess.StudentID)
	assert.Equal(t, exchange.UserID("alice"), *sess.StudentID)
	assert.Equal(t, int64(5), env.balance(t, "bob"))
	assert.Equal(t, int64(2), env.balance(t, "teacher"))
}

func TestBooking_SessionNotFound(t *testing.T) {
	env := newBookingEnv(t)
	env.addUser(t, "student", 5)

	_, err := env.booking.Book(context.Background(), "missing", "student")
	assert.ErrorIs(t, err, exchange.ErrNotFound)
}

func TestBooking_StudentNotFound(t *testing.T) {
	env := newBookingEnv(t)
	env.addUser(t, "teacher", 0)
	env.addOpenSession(t, "s1", "teacher", 1)

	_, err := env.booking.Book(context.Background(), "s1", "ghost")
	assert.ErrorIs(t, err, exchange.ErrNotFound)

	sess := env.session(t, "s1")
	assert.Equal(t, exchange.StatusOpen, sess.Status)
}

func TestBooking_CancelledSessionNotAvailable(t *testing.T) {
	// GIVEN: A session the teacher already cancelled
	// WHEN: A student tries to book it
	// THEN: Unavailable, not a transition error: from the booker's point
	//       of view the session simply cannot be booked

	env := newBookingEnv(t)
	ctx := context.Background()

	env.addUser(t, "teacher", 0)
	env.addUser(t, "student", 5)
	env.addOpenSession(t, "s1", "teacher", 2)

	_, err := env.booking.Cancel(ctx, "s1", "teacher")
	require.NoError(t, err)

	_, err = env.booking.Book(ctx, "s1", "student")
	assert.ErrorIs(t, err, exchange.ErrSessionNotAvailable)
}

func TestBooking_RollbackOnTransferFailure(t *testing.T) {
	// GIVEN: A poisoned ledger: the idempotency key the booking debit will
	//        use is already taken
	// WHEN: Booking runs (the compare-and-set itself succeeds)
	// THEN: The whole unit rolls back: session open, student unassigned,
	//       balances untouched

	env := newBookingEnv(t)
	ctx := context.Background()

	env.addUser(t, "teacher", 0)
	env.addUser(t, "student", 5)
	env.addOpenSession(t, "s1", "teacher", 3)

	err := env.store.AppendEntry(ctx, exchange.LedgerEntry{
		ID:             "poison",
		UserID:         "student",
		Delta:          exchange.NewCredits(1),
		Type:           exchange.EntryCredit,
		IdempotencyKey: "s1-debit-student",
		CreatedAt:      time.Now().UTC(),
	})
	require.NoError(t, err)

	_, err = env.booking.Book(ctx, "s1", "student")
	require.Error(t, err)
	assert.ErrorIs(t, err, exchange.ErrDuplicateEntry)

	sess := env.session(t, "s1")
	assert.Equal(t, exchange.StatusOpen, sess.Status)
	assert.Nil(t, sess.StudentID)
	assert.Equal(t, int64(5), env.balance(t, "student"))
	assert.Equal(t, int64(0), env.balance(t, "teacher"))
}

// =============================================================================
// CONCURRENCY TESTS
// =============================================================================

func TestBooking_Concurrent_ExactlyOneWins(t *testing.T) {
	// GIVEN: One open session and 8 students racing to book it
	// WHEN: All bookings run concurrently
	// THEN: Exactly one succeeds; every loser sees "not available" and
	//       keeps their full balance; the teacher is paid exactly once

	env := newBookingEnv(t)
	ctx := context.Background()

	env.addUser(t, "teacher", 0)
	students := []string{"st-0", "st-1", "st-2", "st-3", "st-4", "st-5", "st-6", "st-7"}
	for _, id := range students {
		env.addUser(t, id, 10)
	}
	env.addOpenSession(t, "s1", "teacher", 4)

	var wg sync.WaitGroup
	errs := make([]error, len(students))
	for i, id := range students {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, errs[i] = env.booking.Book(ctx, "s1", exchange.UserID(id))
		}(i, id)
	}
	wg.Wait()

	var winners []string
	for i, err := range errs {
		if err == nil {
			winners = append(winners, students[i])
		} else {
			assert.ErrorIs(t, err, exchange.ErrSessionNotAvailable)
		}
	}
	require.Len(t, winners, 1, "exactly one booking should succeed")

	sess := env.session(t, "s1")
	assert.Equal(t, exchange.StatusBooked, sess.Status)
	require.NotNil(t, sess.StudentID)
	assert.Equal(t, exchange.UserID(winners[0]), *sess.StudentID)

	assert.Equal(t, int64(4), env.balance(t, "teacher"), "teacher paid exactly once")
	for _, id := range students {
		want := int64(10)
		if id == winners[0] {
			want = 6
		}
		assert.Equal(t, want, env.balance(t, id), "balance of %s", id)
	}
}

func TestBooking_Concurrent_NoOverdraw(t *testing.T) {
	// GIVEN: A student with 5 credits and two open sessions costing 3 each
	// WHEN: The student books both concurrently
	// THEN: At most one booking succeeds; the balance never goes negative

	env := newBookingEnv(t)
	ctx := context.Background()

	env.addUser(t, "t1", 0)
	env.addUser(t, "t2", 0)
	env.addUser(t, "student", 5)
	env.addOpenSession(t, "s1", "t1", 3)
	env.addOpenSession(t, "s2", "t2", 3)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []exchange.SessionID{"s1", "s2"} {
		wg.Add(1)
		go func(i int, id exchange.SessionID) {
			defer wg.Done()
			_, errs[i] = env.booking.Book(ctx, id, "student")
		}(i, id)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, exchange.ErrInsufficientCredit)
		}
	}
	assert.Equal(t, 1, succeeded, "the second booking cannot be afforded")
	assert.Equal(t, int64(2), env.balance(t, "student"))
	assert.GreaterOrEqual(t, env.balance(t, "student"), int64(0))
}

// =============================================================================
// COMPLETION TESTS
// =============================================================================

func TestCompletion_Success(t *testing.T) {
	// GIVEN: A booked session (settled at booking time)
	// WHEN: The teacher marks it completed
	// THEN: Status flips; no credits move

	env := newBookingEnv(t)
	ctx := context.Background()

	env.addUser(t, "teacher", 0)
	env.addUser(t, "student", 5)
	env.addOpenSession(t, "s1", "teacher", 3)

	_, err := env.booking.Book(ctx, "s1", "student")
	require.NoError(t, err)

	sess, err := env.completion.Complete(ctx, "s1", "teacher")
	require.NoError(t, err)
	assert.Equal(t, exchange.StatusCompleted, sess.Status)
	require.NotNil(t, sess.StudentID)
	assert.Equal(t, exchange.UserID("student"), *sess.StudentID)

	// Settlement already happened at booking; completion moves nothing.
	assert.Equal(t, int64(2), env.balance(t, "student"))
	assert.Equal(t, int64(3), env.balance(t, "teacher"))
}

func TestCompletion_OnlyTeacher(t *testing.T) {
	// GIVEN: A booked session
	// WHEN: The student (or anyone else) tries to complete it
	// THEN: Forbidden; status unchanged

	env := newBookingEnv(t)
	ctx := context.Background()

	env.addUser(t, "teacher", 0)
	env.addUser(t, "student", 5)
	env.addOpenSession(t, "s1", "teacher", 2)

	_, err := env.booking.Book(ctx, "s1", "student")
	require.NoError(t, err)

	_, err = env.completion.Complete(ctx, "s1", "student")
	assert.ErrorIs(t, err, exchange.ErrForbidden)

	_, err = env.completion.Complete(ctx, "s1", "stranger")
	assert.ErrorIs(t, err, exchange.ErrForbidden)

	assert.Equal(t, exchange.StatusBooked, env.session(t, "s1").Status)
}

func TestCompletion_RequiresBooked(t *testing.T) {
	// GIVEN: An open session
	// WHEN: The teacher completes it
	// THEN: Invalid transition reporting open -> completed

	env := newBookingEnv(t)
	ctx := context.Background()

	env.addUser(t, "teacher", 0)
	env.addOpenSession(t, "s1", "teacher", 2)

	_, err := env.completion.Complete(ctx, "s1", "teacher")
	require.Error(t, err)

	var transErr *exchange.InvalidTransitionError
	require.ErrorAs(t, err, &transErr)
	assert.Equal(t, exchange.StatusOpen, transErr.From)
	assert.Equal(t, exchange.StatusCompleted, transErr.To)
}

func TestCompletion_AlreadyCompleted(t *testing.T) {
	env := newBookingEnv(t)
	ctx := context.Background()

	env.addUser(t, "teacher", 0)
	env.addUser(t, "student", 5)
	env.addOpenSession(t, "s1", "teacher", 2)

	_, err := env.booking.Book(ctx, "s1", "student")
	require.NoError(t, err)
	_, err = env.completion.Complete(ctx, "s1", "teacher")
	require.NoError(t, err)

	_, err = env.completion.Complete(ctx, "s1", "teacher")
	assert.ErrorIs(t, err, exchange.ErrInvalidTransition)
}

func TestCompletion_NotFound(t *testing.T) {
	env := newBookingEnv(t)
	_, err := env.completion.Complete(context.Background(), "missing", "teacher")
	assert.ErrorIs(t, err, exchange.ErrNotFound)
}

// =============================================================================
// CANCELLATION TESTS
// =============================================================================

func TestCancel_Open_ByTeacher(t *testing.T) {
	// GIVEN: An open session
	// WHEN: The teacher cancels it
	// THEN: Cancelled with no student assigned and no credit movement

	env := newBookingEnv(t)
	ctx := context.Background()

	env.addUser(t, "teacher", 0)
	env.addOpenSession(t, "s1", "teacher", 2)

	sess, err := env.booking.Cancel(ctx, "s1", "teacher")
	require.NoError(t, err)
	assert.Equal(t, exchange.StatusCancelled, sess.Status)
	assert.Nil(t, sess.StudentID)
	assert.Equal(t, int64(0), env.balance(t, "teacher"))
}

func TestCancel_Open_ByNonTeacher(t *testing.T) {
	env := newBookingEnv(t)
	ctx := context.Background()

	env.addUser(t, "teacher", 0)
	env.addUser(t, "other", 5)
	env.addOpenSession(t, "s1", "teacher", 2)

	_, err := env.booking.Cancel(ctx, "s1", "other")
	assert.ErrorIs(t, err, exchange.ErrForbidden)
	assert.Equal(t, exchange.StatusOpen, env.session(t, "s1").Status)
}

func TestCancel_Booked_RefundsStudent(t *testing.T) {
	// GIVEN: A booked session, settled at booking time
	// WHEN: The student cancels
	// THEN: Both balances return to their pre-booking values, with a
	//       refund pair in the ledger

	env := newBookingEnv(t)
	ctx := context.Background()

	env.addUser(t, "teacher", 1)
	env.addUser(t, "student", 5)
	env.addOpenSession(t, "s1", "teacher", 3)

	_, err := env.booking.Book(ctx, "s1", "student")
	require.NoError(t, err)
	require.Equal(t, int64(2), env.balance(t, "student"))

	sess, err := env.booking.Cancel(ctx, "s1", "student")
	require.NoError(t, err)
	assert.Equal(t, exchange.StatusCancelled, sess.Status)

	assert.Equal(t, int64(5), env.balance(t, "student"))
	assert.Equal(t, int64(1), env.balance(t, "teacher"))

	// Booking debit plus refund credit for the student.
	entries, err := env.store.EntriesByUser(ctx, "student")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	sum := exchange.ZeroCredits()
	for _, e := range entries {
		sum = sum.Add(e.Delta)
	}
	assert.True(t, sum.IsZero(), "debit and refund should cancel out")
}

func TestCancel_Booked_ByTeacher(t *testing.T) {
	// Either participant may cancel a booked session.
	env := newBookingEnv(t)
	ctx := context.Background()

	env.addUser(t, "teacher", 0)
	env.addUser(t, "student", 5)
	env.addOpenSession(t, "s1", "teacher", 3)

	_, err := env.booking.Book(ctx, "s1", "student")
	require.NoError(t, err)

	sess, err := env.booking.Cancel(ctx, "s1", "teacher")
	require.NoError(t, err)
	assert.Equal(t, exchange.StatusCancelled, sess.Status)
	assert.Equal(t, int64(5), env.balance(t, "student"))
	assert.Equal(t, int64(0), env.balance(t, "teacher"))
}

func TestCancel_Booked_ByNonParticipant(t *testing.T) {
	env := newBookingEnv(t)
	ctx := context.Background()

	env.addUser(t, "teacher", 0)
	env.addUser(t, "student", 5)
	env.addUser(t, "stranger", 5)
	env.addOpenSession(t, "s1", "teacher", 2)

	_, err := env.booking.Book(ctx, "s1", "student")
	require.NoError(t, err)

	_, err = env.booking.Cancel(ctx, "s1", "stranger")
	assert.ErrorIs(t, err, exchange.ErrForbidden)
	assert.Equal(t, exchange.StatusBooked, env.session(t, "s1").Status)
}

func TestCancel_Terminal(t *testing.T) {
	// GIVEN: A completed session
	// WHEN: Anyone cancels it
	// THEN: Invalid transition; completed is terminal

	env := newBookingEnv(t)
	ctx := context.Background()

	env.addUser(t, "teacher", 0)
	env.addUser(t, "student", 5)
	env.addOpenSession(t, "s1", "teacher", 2)

	_, err := env.booking.Book(ctx, "s1", "student")
	require.NoError(t, err)
	_, err = env.completion.Complete(ctx, "s1", "teacher")
	require.NoError(t, err)

	_, err = env.booking.Cancel(ctx, "s1", "teacher")
	assert.ErrorIs(t, err, exchange.ErrInvalidTransition)
	assert.Equal(t, int64(2), env.balance(t, "teacher"), "no refund after completion")
}

func TestCancel_NotFound(t *testing.T) {
	env := newBookingEnv(t)
	_, err := env.booking.Cancel(context.Background(), "missing", "anyone")
	assert.ErrorIs(t, err, exchange.ErrNotFound)
}

// =============================================================================
// QUERY TESTS
// =============================================================================

func TestQuery_Available_NewestFirst(t *testing.T) {
	// GIVEN: Three open sessions created in order
	// WHEN: Listing available sessions
	// THEN: Newest first

	env := newBookingEnv(t)
	ctx := context.Background()

	env.addUser(t, "teacher", 0)
	env.addOpenSession(t, "s1", "teacher", 1)
	env.addOpenSession(t, "s2", "teacher", 1)
	env.addOpenSession(t, "s3", "teacher", 1)

	sessions, err := env.query.Available(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 3)
	assert.Equal(t, exchange.SessionID("s3"), sessions[0].ID)
	assert.Equal(t, exchange.SessionID("s2"), sessions[1].ID)
	assert.Equal(t, exchange.SessionID("s1"), sessions[2].ID)
}

func TestQuery_Available_ExcludesBookedAndCancelled(t *testing.T) {
	// GIVEN: One booked, one cancelled and one open session
	// WHEN: Listing available sessions
	// THEN: Only the open one appears

	env := newBookingEnv(t)
	ctx := context.Background()

	env.addUser(t, "teacher", 0)
	env.addUser(t, "student", 10)
	env.addOpenSession(t, "s1", "teacher", 1)
	env.addOpenSession(t, "s2", "teacher", 1)
	env.addOpenSession(t, "s3", "teacher", 1)

	_, err := env.booking.Book(ctx, "s1", "student")
	require.NoError(t, err)
	_, err = env.booking.Cancel(ctx, "s2", "teacher")
	require.NoError(t, err)

	sessions, err := env.query.Available(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, exchange.SessionID("s3"), sessions[0].ID)
}

func TestQuery_ByTeacherAndByStudent(t *testing.T) {
	// GIVEN: Sessions across two teachers, one booked by a student
	// WHEN: Querying per-user projections
	// THEN: Teacher sees all their sessions regardless of status; student
	//       sees only sessions they hold

	env := newBookingEnv(t)
	ctx := context.Background()

	env.addUser(t, "t1", 0)
	env.addUser(t, "t2", 0)
	env.addUser(t, "student", 10)
	env.addOpenSession(t, "s1", "t1", 1)
	env.addOpenSession(t, "s2", "t2", 1)
	env.addOpenSession(t, "s3", "t1", 1)

	_, err := env.booking.Book(ctx, "s3", "student")
	require.NoError(t, err)

	teaching, err := env.query.ByTeacher(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, teaching, 2)
	assert.Equal(t, exchange.SessionID("s3"), teaching[0].ID)
	assert.Equal(t, exchange.SessionID("s1"), teaching[1].ID)

	learning, err := env.query.ByStudent(ctx, "student")
	require.NoError(t, err)
	require.Len(t, learning, 1)
	assert.Equal(t, exchange.SessionID("s3"), learning[0].ID)

	none, err := env.query.ByStudent(ctx, "t2")
	require.NoError(t, err)
	assert.Empty(t, none)
}

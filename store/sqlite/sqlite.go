/*
Package sqlite provides the SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements exchange.Store and exchange.TxStore using SQLite. The same
  patterns apply to PostgreSQL in production - only minor SQL dialect
  differences.

KEY TABLES:
  users           Identity plus the authoritative credit balance
  sessions        Session records with their status field
  ledger_entries  Append-only audit log of every balance change
  skills          Teaching/learning capabilities (collaborator-owned)
  reviews         Feedback on completed sessions

INVARIANTS IN THE SCHEMA:
  - users.credits has CHECK (credits >= 0): even a bug above this layer
    cannot persist a negative balance.
  - sessions.status is constrained to the four wire literals.
  - ledger_entries.idempotency_key is UNIQUE: a replayed transfer fails
    instead of double-moving credits.

COMPARE-AND-SET:
  Status transitions are a single conditional UPDATE guarded by
  WHERE status = expected (and student_id IS NULL for booking). Zero
  rows affected means the caller lost a race, never that state was
  corrupted. The read-modify-write pattern is deliberately absent.

CONCURRENCY:
  WAL mode plus a sync.Mutex around access; with PostgreSQL, row-level
  locking would take the mutex's place.

SEE ALSO:
  - exchange/store.go: Interface contracts
  - exchange/store/memory.go: In-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/PrithviBathla/EduPair/exchange"
)

// Store implements exchange.TxStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// New opens (or creates) the database at dbPath and migrates the schema.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		credits INTEGER NOT NULL DEFAULT 0 CHECK (credits >= 0),
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT,
		teacher_id TEXT NOT NULL,
		student_id TEXT,
		skill_id TEXT NOT NULL,
		scheduled_at TEXT NOT NULL,
		duration_min INTEGER NOT NULL,
		meeting_link TEXT,
		credit_cost INTEGER NOT NULL CHECK (credit_cost > 0),
		status TEXT NOT NULL DEFAULT 'open'
			CHECK (status IN ('open', 'booked', 'completed', 'cancelled')),
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_teacher
		ON sessions(teacher_id, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_sessions_student
		ON sessions(student_id, created_at DESC)
		WHERE student_id IS NOT NULL;
	-- Hot path: the available-sessions listing
	CREATE INDEX IF NOT EXISTS idx_sessions_status
		ON sessions(status, created_at DESC);

	-- Append-only ledger. No UPDATE or DELETE is ever issued against it.
	CREATE TABLE IF NOT EXISTS ledger_entries (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		delta INTEGER NOT NULL,
		entry_type TEXT NOT NULL,
		reference_id TEXT,
		reason TEXT,
		idempotency_key TEXT UNIQUE,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_entries_user
		ON ledger_entries(user_id, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_entries_reference
		ON ledger_entries(reference_id) WHERE reference_id IS NOT NULL;

	CREATE TABLE IF NOT EXISTS skills (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		category TEXT,
		level TEXT NOT NULL,
		teaching BOOLEAN NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_skills_user
		ON skills(user_id, teaching, created_at DESC);

	CREATE TABLE IF NOT EXISTS reviews (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		reviewer_id TEXT NOT NULL,
		rating INTEGER NOT NULL,
		comment TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reviews_session
		ON reviews(session_id, created_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// =============================================================================
// USERS
// =============================================================================

func (s *Store) SaveUser(ctx context.Context, u exchange.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveUser(ctx, s.db, u)
}

func saveUser(ctx context.Context, db dbtx, u exchange.User) error {
	// Balance is owned by AdjustBalance; the upsert never touches it.
	query := `
		INSERT INTO users (id, name, email, credits, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email
	`
	createdAt := u.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := db.ExecContext(ctx, query,
		u.ID, u.Name, u.Email, u.Balance.Int64(), createdAt.Format(time.RFC3339))
	return err
}

func (s *Store) GetUser(ctx context.Context, id exchange.UserID) (*exchange.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return getUser(ctx, s.db, id)
}

func getUser(ctx context.Context, db dbtx, id exchange.UserID) (*exchange.User, error) {
	var (
		u         exchange.User
		email     sql.NullString
		credits   int64
		createdAt string
	)
	err := db.QueryRowContext(ctx,
		"SELECT id, name, email, credits, created_at FROM users WHERE id = ?", id,
	).Scan(&u.ID, &u.Name, &email, &credits, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u.Email = email.String
	u.Balance = exchange.NewCredits(credits)
	u.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &u, nil
}

func (s *Store) AdjustBalance(ctx context.Context, id exchange.UserID, delta exchange.Credits) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return adjustBalance(ctx, s.db, id, delta)
}

// adjustBalance is the single-user serialization point: the balance
// check and mutation are one conditional UPDATE, so a stale read can
// never sneak an overdraw past it.
func adjustBalance(ctx context.Context, db dbtx, id exchange.UserID, delta exchange.Credits) error {
	d := delta.Int64()
	res, err := db.ExecContext(ctx,
		"UPDATE users SET credits = credits + ? WHERE id = ? AND credits + ? >= 0",
		d, id, d)
	if err != nil {
		return fmt.Errorf("failed to adjust balance: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var count int
		if err := db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM users WHERE id = ?", id).Scan(&count); err != nil {
			return err
		}
		if count == 0 {
			return exchange.ErrNotFound
		}
		return exchange.ErrInsufficientCredit
	}
	return nil
}

// =============================================================================
// SESSIONS
// =============================================================================

func (s *Store) SaveSession(ctx context.Context, sess exchange.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveSession(ctx, s.db, sess)
}

func saveSession(ctx context.Context, db dbtx, sess exchange.Session) error {
	query := `
		INSERT INTO sessions
		(id, title, description, teacher_id, student_id, skill_id, scheduled_at,
		 duration_min, meeting_link, credit_cost, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	var studentID *string
	if sess.StudentID != nil {
		v := string(*sess.StudentID)
		studentID = &v
	}
	createdAt := sess.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := db.ExecContext(ctx, query,
		sess.ID, sess.Title, sess.Description, sess.TeacherID, studentID,
		sess.SkillID, sess.ScheduledAt.Format(time.RFC3339), sess.DurationMin,
		nullString(sess.MeetingLink), sess.CreditCost.Int64(), sess.Status,
		createdAt.Format(time.RFC3339))
	return err
}

func (s *Store) GetSession(ctx context.Context, id exchange.SessionID) (*exchange.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return getSession(ctx, s.db, id)
}

const sessionColumns = `id, title, description, teacher_id, student_id, skill_id,
	scheduled_at, duration_min, meeting_link, credit_cost, status, created_at`

func getSession(ctx context.Context, db dbtx, id exchange.SessionID) (*exchange.Session, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT "+sessionColumns+" FROM sessions WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	sess, err := scanSession(rows)
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *Store) TransitionSession(ctx context.Context, id exchange.SessionID, expected, next exchange.SessionStatus, student *exchange.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return transitionSession(ctx, s.db, id, expected, next, student)
}

// transitionSession is the compare-and-set at the heart of booking.
// The WHERE clause carries the expected status (and, for booking, the
// unassigned guard); zero rows affected means a concurrent writer won.
func transitionSession(ctx context.Context, db dbtx, id exchange.SessionID, expected, next exchange.SessionStatus, student *exchange.UserID) error {
	if !exchange.CanTransition(expected, next) {
		return &exchange.InvalidTransitionError{SessionID: id, From: expected, To: next}
	}

	var (
		res sql.Result
		err error
	)
	if next == exchange.StatusBooked {
		if student == nil {
			return fmt.Errorf("booking transition requires a student reference")
		}
		res, err = db.ExecContext(ctx,
			`UPDATE sessions SET status = ?, student_id = ?
			 WHERE id = ? AND status = ? AND student_id IS NULL`,
			next, *student, id, expected)
	} else {
		res, err = db.ExecContext(ctx,
			"UPDATE sessions SET status = ? WHERE id = ? AND status = ?",
			next, id, expected)
	}
	if err != nil {
		return fmt.Errorf("failed to transition session: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var count int
		if err := db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM sessions WHERE id = ?", id).Scan(&count); err != nil {
			return err
		}
		if count == 0 {
			return exchange.ErrNotFound
		}
		return exchange.ErrStatusConflict
	}
	return nil
}

func (s *Store) AvailableSessions(ctx context.Context) ([]exchange.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return querySessions(ctx, s.db, availableSessionsQuery)
}

func (s *Store) SessionsByTeacher(ctx context.Context, teacherID exchange.UserID) ([]exchange.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return querySessions(ctx, s.db, sessionsByTeacherQuery, teacherID)
}

func (s *Store) SessionsByStudent(ctx context.Context, studentID exchange.UserID) ([]exchange.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return querySessions(ctx, s.db, sessionsByStudentQuery, studentID)
}

const (
	availableSessionsQuery = `SELECT ` + sessionColumns + ` FROM sessions
		WHERE status = 'open' AND student_id IS NULL
		ORDER BY created_at DESC, id DESC`

	sessionsByTeacherQuery = `SELECT ` + sessionColumns + ` FROM sessions
		WHERE teacher_id = ?
		ORDER BY created_at DESC, id DESC`

	sessionsByStudentQuery = `SELECT ` + sessionColumns + ` FROM sessions
		WHERE student_id = ?
		ORDER BY created_at DESC, id DESC`
)

func querySessions(ctx context.Context, db dbtx, query string, args ...any) ([]exchange.Session, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []exchange.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

func scanSession(rows *sql.Rows) (exchange.Session, error) {
	var (
		sess        exchange.Session
		description sql.NullString
		studentID   sql.NullString
		scheduledAt string
		meetingLink sql.NullString
		creditCost  int64
		createdAt   string
	)
	err := rows.Scan(
		&sess.ID, &sess.Title, &description, &sess.TeacherID, &studentID,
		&sess.SkillID, &scheduledAt, &sess.DurationMin, &meetingLink,
		&creditCost, &sess.Status, &createdAt,
	)
	if err != nil {
		return sess, fmt.Errorf("failed to scan session: %w", err)
	}
	sess.Description = description.String
	if studentID.Valid {
		ref := exchange.UserID(studentID.String)
		sess.StudentID = &ref
	}
	sess.MeetingLink = meetingLink.String
	sess.CreditCost = exchange.NewCredits(creditCost)
	sess.ScheduledAt, _ = time.Parse(time.RFC3339, scheduledAt)
	sess.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return sess, nil
}

// =============================================================================
// LEDGER ENTRIES (append-only)
// =============================================================================

func (s *Store) AppendEntry(ctx context.Context, e exchange.LedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return appendEntry(ctx, s.db, e)
}

func appendEntry(ctx context.Context, db dbtx, e exchange.LedgerEntry) error {
	query := `
		INSERT INTO ledger_entries
		(id, user_id, delta, entry_type, reference_id, reason, idempotency_key, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := db.ExecContext(ctx, query,
		e.ID, e.UserID, e.Delta.Int64(), e.Type,
		nullString(e.ReferenceID), nullString(e.Reason),
		nullString(e.IdempotencyKey), createdAt.Format(time.RFC3339))
	if err != nil {
		if isUniqueConstraintError(err) {
			return exchange.ErrDuplicateEntry
		}
		return fmt.Errorf("failed to append ledger entry: %w", err)
	}
	return nil
}

func (s *Store) EntriesByUser(ctx context.Context, id exchange.UserID) ([]exchange.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return queryEntries(ctx, s.db, entriesByUserQuery, id)
}

const entriesByUserQuery = `
	SELECT id, user_id, delta, entry_type, reference_id, reason, idempotency_key, created_at
	FROM ledger_entries
	WHERE user_id = ?
	ORDER BY created_at DESC, id DESC`

func queryEntries(ctx context.Context, db dbtx, query string, args ...any) ([]exchange.LedgerEntry, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []exchange.LedgerEntry
	for rows.Next() {
		var (
			e              exchange.LedgerEntry
			delta          int64
			referenceID    sql.NullString
			reason         sql.NullString
			idempotencyKey sql.NullString
			createdAt      string
		)
		if err := rows.Scan(&e.ID, &e.UserID, &delta, &e.Type,
			&referenceID, &reason, &idempotencyKey, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		e.Delta = exchange.NewCredits(delta)
		e.ReferenceID = referenceID.String
		e.Reason = reason.String
		e.IdempotencyKey = idempotencyKey.String
		e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// =============================================================================
// SKILLS
// =============================================================================

func (s *Store) SaveSkill(ctx context.Context, sk exchange.Skill) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveSkill(ctx, s.db, sk)
}

func saveSkill(ctx context.Context, db dbtx, sk exchange.Skill) error {
	query := `
		INSERT INTO skills (id, user_id, name, category, level, teaching, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			category = excluded.category,
			level = excluded.level
	`
	createdAt := sk.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := db.ExecContext(ctx, query,
		sk.ID, sk.UserID, sk.Name, nullString(sk.Category), sk.Level,
		sk.Teaching, createdAt.Format(time.RFC3339))
	return err
}

func (s *Store) GetSkill(ctx context.Context, id exchange.SkillID) (*exchange.Skill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return getSkill(ctx, s.db, id)
}

func getSkill(ctx context.Context, db dbtx, id exchange.SkillID) (*exchange.Skill, error) {
	var (
		sk        exchange.Skill
		category  sql.NullString
		createdAt string
	)
	err := db.QueryRowContext(ctx,
		"SELECT id, user_id, name, category, level, teaching, created_at FROM skills WHERE id = ?",
		id,
	).Scan(&sk.ID, &sk.UserID, &sk.Name, &category, &sk.Level, &sk.Teaching, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	sk.Category = category.String
	sk.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &sk, nil
}

func (s *Store) SkillsByUser(ctx context.Context, userID exchange.UserID, teaching bool) ([]exchange.Skill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return querySkills(ctx, s.db, userID, teaching)
}

func querySkills(ctx context.Context, db dbtx, userID exchange.UserID, teaching bool) ([]exchange.Skill, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, user_id, name, category, level, teaching, created_at
		 FROM skills
		 WHERE user_id = ? AND teaching = ?
		 ORDER BY created_at DESC, id DESC`, userID, teaching)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var skills []exchange.Skill
	for rows.Next() {
		var (
			sk        exchange.Skill
			category  sql.NullString
			createdAt string
		)
		if err := rows.Scan(&sk.ID, &sk.UserID, &sk.Name, &category,
			&sk.Level, &sk.Teaching, &createdAt); err != nil {
			return nil, err
		}
		sk.Category = category.String
		sk.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		skills = append(skills, sk)
	}
	return skills, rows.Err()
}

// =============================================================================
// REVIEWS
// =============================================================================

func (s *Store) SaveReview(ctx context.Context, r exchange.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveReview(ctx, s.db, r)
}

func saveReview(ctx context.Context, db dbtx, r exchange.Review) error {
	createdAt := r.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO reviews (id, session_id, reviewer_id, rating, comment, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.SessionID, r.ReviewerID, r.Rating, nullString(r.Comment),
		createdAt.Format(time.RFC3339))
	return err
}

func (s *Store) ReviewsBySession(ctx context.Context, sessionID exchange.SessionID) ([]exchange.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return queryReviews(ctx, s.db, sessionID)
}

func queryReviews(ctx context.Context, db dbtx, sessionID exchange.SessionID) ([]exchange.Review, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, session_id, reviewer_id, rating, comment, created_at
		 FROM reviews
		 WHERE session_id = ?
		 ORDER BY created_at DESC, id DESC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []exchange.Review
	for rows.Next() {
		var (
			r         exchange.Review
			comment   sql.NullString
			createdAt string
		)
		if err := rows.Scan(&r.ID, &r.SessionID, &r.ReviewerID, &r.Rating,
			&comment, &createdAt); err != nil {
			return nil, err
		}
		r.Comment = comment.String
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}

// =============================================================================
// TRANSACTIONAL STORE (exchange.TxStore interface)
// =============================================================================

// WithTx executes fn within a database transaction. Everything fn
// writes through its store argument commits together or not at all;
// the booking unit (compare-and-set + transfer) relies on this.
func (s *Store) WithTx(ctx context.Context, fn func(exchange.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{tx: sqlTx}); err != nil {
		return err
	}
	return sqlTx.Commit()
}

// txStore routes every call to the package-level helpers against the
// open *sql.Tx. It must not touch the parent mutex: WithTx holds it.
type txStore struct {
	tx *sql.Tx
}

func (ts *txStore) SaveUser(ctx context.Context, u exchange.User) error {
	return saveUser(ctx, ts.tx, u)
}

func (ts *txStore) GetUser(ctx context.Context, id exchange.UserID) (*exchange.User, error) {
	return getUser(ctx, ts.tx, id)
}

func (ts *txStore) AdjustBalance(ctx context.Context, id exchange.UserID, delta exchange.Credits) error {
	return adjustBalance(ctx, ts.tx, id, delta)
}

func (ts *txStore) SaveSession(ctx context.Context, sess exchange.Session) error {
	return saveSession(ctx, ts.tx, sess)
}

func (ts *txStore) GetSession(ctx context.Context, id exchange.SessionID) (*exchange.Session, error) {
	return getSession(ctx, ts.tx, id)
}

func (ts *txStore) TransitionSession(ctx context.Context, id exchange.SessionID, expected, next exchange.SessionStatus, student *exchange.UserID) error {
	return transitionSession(ctx, ts.tx, id, expected, next, student)
}

func (ts *txStore) AvailableSessions(ctx context.Context) ([]exchange.Session, error) {
	return querySessions(ctx, ts.tx, availableSessionsQuery)
}

func (ts *txStore) SessionsByTeacher(ctx context.Context, teacherID exchange.UserID) ([]exchange.Session, error) {
	return querySessions(ctx, ts.tx, sessionsByTeacherQuery, teacherID)
}

func (ts *txStore) SessionsByStudent(ctx context.Context, studentID exchange.UserID) ([]exchange.Session, error) {
	return querySessions(ctx, ts.tx, sessionsByStudentQuery, studentID)
}

func (ts *txStore) AppendEntry(ctx context.Context, e exchange.LedgerEntry) error {
	return appendEntry(ctx, ts.tx, e)
}

func (ts *txStore) EntriesByUser(ctx context.Context, id exchange.UserID) ([]exchange.LedgerEntry, error) {
	return queryEntries(ctx, ts.tx, entriesByUserQuery, id)
}

func (ts *txStore) SaveSkill(ctx context.Context, sk exchange.Skill) error {
	return saveSkill(ctx, ts.tx, sk)
}

func (ts *txStore) GetSkill(ctx context.Context, id exchange.SkillID) (*exchange.Skill, error) {
	return getSkill(ctx, ts.tx, id)
}

func (ts *txStore) SkillsByUser(ctx context.Context, userID exchange.UserID, teaching bool) ([]exchange.Skill, error) {
	return querySkills(ctx, ts.tx, userID, teaching)
}

func (ts *txStore) SaveReview(ctx context.Context, r exchange.Review) error {
	return saveReview(ctx, ts.tx, r)
}

func (ts *txStore) ReviewsBySession(ctx context.Context, sessionID exchange.SessionID) ([]exchange.Review, error) {
	return queryReviews(ctx, ts.tx, sessionID)
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func isUniqueConstraintError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key"))
}

// Package store provides an in-memory exchange.TxStore for tests and dev.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/PrithviBathla/EduPair/exchange"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory implements exchange.TxStore. A single mutex serializes every
// write, which makes the balance check-then-mutate and the status
// compare-and-set trivially race-free; WithTx adds rollback by snapshot.
type Memory struct {
	mu           sync.Mutex
	users        map[exchange.UserID]exchange.User
	sessions     map[exchange.SessionID]exchange.Session
	sessionOrder []exchange.SessionID
	entries      []exchange.LedgerEntry
	idempotency  map[string]bool
	skills       map[exchange.SkillID]exchange.Skill
	skillOrder   []exchange.SkillID
	reviews      []exchange.Review
}

func NewMemory() *Memory {
	return &Memory{
		users:       make(map[exchange.UserID]exchange.User),
		sessions:    make(map[exchange.SessionID]exchange.Session),
		idempotency: make(map[string]bool),
		skills:      make(map[exchange.SkillID]exchange.Skill),
	}
}

// =============================================================================
// USERS
// =============================================================================

func (m *Memory) SaveUser(_ context.Context, u exchange.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveUserLocked(u)
}

func (m *Memory) saveUserLocked(u exchange.User) error {
	if existing, ok := m.users[u.ID]; ok {
		// Balance is owned by AdjustBalance; an upsert never touches it.
		existing.Name = u.Name
		existing.Email = u.Email
		m.users[u.ID] = existing
		return nil
	}
	m.users[u.ID] = u
	return nil
}

func (m *Memory) GetUser(_ context.Context, id exchange.UserID) (*exchange.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getUserLocked(id)
}

func (m *Memory) getUserLocked(id exchange.UserID) (*exchange.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *Memory) AdjustBalance(_ context.Context, id exchange.UserID, delta exchange.Credits) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.adjustBalanceLocked(id, delta)
}

func (m *Memory) adjustBalanceLocked(id exchange.UserID, delta exchange.Credits) error {
	u, ok := m.users[id]
	if !ok {
		return exchange.ErrNotFound
	}
	next := u.Balance.Add(delta)
	if next.IsNegative() {
		return exchange.ErrInsufficientCredit
	}
	u.Balance = next
	m.users[id] = u
	return nil
}

// =============================================================================
// SESSIONS
// =============================================================================

func (m *Memory) SaveSession(_ context.Context, s exchange.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveSessionLocked(s)
}

func (m *Memory) saveSessionLocked(s exchange.Session) error {
	if _, ok := m.sessions[s.ID]; !ok {
		m.sessionOrder = append(m.sessionOrder, s.ID)
	}
	m.sessions[s.ID] = cloneSession(s)
	return nil
}

func (m *Memory) GetSession(_ context.Context, id exchange.SessionID) (*exchange.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getSessionLocked(id)
}

func (m *Memory) getSessionLocked(id exchange.SessionID) (*exchange.Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	c := cloneSession(s)
	return &c, nil
}

func (m *Memory) TransitionSession(_ context.Context, id exchange.SessionID, expected, next exchange.SessionStatus, student *exchange.UserID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transitionLocked(id, expected, next, student)
}

func (m *Memory) transitionLocked(id exchange.SessionID, expected, next exchange.SessionStatus, student *exchange.UserID) error {
	s, ok := m.sessions[id]
	if !ok {
		return exchange.ErrNotFound
	}
	if !exchange.CanTransition(expected, next) {
		return &exchange.InvalidTransitionError{SessionID: id, From: expected, To: next}
	}
	if s.Status != expected {
		return exchange.ErrStatusConflict
	}
	if next == exchange.StatusBooked {
		if student == nil {
			return fmt.Errorf("booking transition requires a student reference")
		}
		ref := *student
		s.StudentID = &ref
	}
	s.Status = next
	m.sessions[id] = s
	return nil
}

func (m *Memory) AvailableSessions(_ context.Context) ([]exchange.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listSessionsLocked(func(s exchange.Session) bool {
		return s.Status == exchange.StatusOpen && s.StudentID == nil
	}), nil
}

func (m *Memory) SessionsByTeacher(_ context.Context, teacherID exchange.UserID) ([]exchange.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listSessionsLocked(func(s exchange.Session) bool {
		return s.TeacherID == teacherID
	}), nil
}

func (m *Memory) SessionsByStudent(_ context.Context, studentID exchange.UserID) ([]exchange.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listSessionsLocked(func(s exchange.Session) bool {
		return s.StudentID != nil && *s.StudentID == studentID
	}), nil
}

// listSessionsLocked walks insertion order backwards: newest first.
func (m *Memory) listSessionsLocked(keep func(exchange.Session) bool) []exchange.Session {
	var out []exchange.Session
	for i := len(m.sessionOrder) - 1; i >= 0; i-- {
		s := m.sessions[m.sessionOrder[i]]
		if keep(s) {
			out = append(out, cloneSession(s))
		}
	}
	return out
}

func cloneSession(s exchange.Session) exchange.Session {
	if s.StudentID != nil {
		ref := *s.StudentID
		s.StudentID = &ref
	}
	return s
}

// =============================================================================
// LEDGER ENTRIES
// =============================================================================

func (m *Memory) AppendEntry(_ context.Context, e exchange.LedgerEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.appendEntryLocked(e)
}

func (m *Memory) appendEntryLocked(e exchange.LedgerEntry) error {
	if e.IdempotencyKey != "" && m.idempotency[e.IdempotencyKey] {
		return exchange.ErrDuplicateEntry
	}
	m.entries = append(m.entries, e)
	if e.IdempotencyKey != "" {
		m.idempotency[e.IdempotencyKey] = true
	}
	return nil
}

func (m *Memory) EntriesByUser(_ context.Context, id exchange.UserID) ([]exchange.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []exchange.LedgerEntry
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].UserID == id {
			out = append(out, m.entries[i])
		}
	}
	return out, nil
}

// =============================================================================
// SKILLS
// =============================================================================

func (m *Memory) SaveSkill(_ context.Context, s exchange.Skill) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveSkillLocked(s)
}

func (m *Memory) saveSkillLocked(s exchange.Skill) error {
	if _, ok := m.skills[s.ID]; !ok {
		m.skillOrder = append(m.skillOrder, s.ID)
	}
	m.skills[s.ID] = s
	return nil
}

func (m *Memory) GetSkill(_ context.Context, id exchange.SkillID) (*exchange.Skill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.skills[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *Memory) SkillsByUser(_ context.Context, userID exchange.UserID, teaching bool) ([]exchange.Skill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []exchange.Skill
	for i := len(m.skillOrder) - 1; i >= 0; i-- {
		s := m.skills[m.skillOrder[i]]
		if s.UserID == userID && s.Teaching == teaching {
			out = append(out, s)
		}
	}
	return out, nil
}

// =============================================================================
// REVIEWS
// =============================================================================

func (m *Memory) SaveReview(_ context.Context, r exchange.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reviews = append(m.reviews, r)
	return nil
}

func (m *Memory) ReviewsBySession(_ context.Context, sessionID exchange.SessionID) ([]exchange.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []exchange.Review
	for i := len(m.reviews) - 1; i >= 0; i-- {
		if m.reviews[i].SessionID == sessionID {
			out = append(out, m.reviews[i])
		}
	}
	return out, nil
}

// =============================================================================
// TRANSACTIONAL UNIT - snapshot + rollback
// =============================================================================

// WithTx executes fn against a view of the store while holding the
// write lock, simulating a database transaction with a snapshot that is
// restored if fn fails. Holding the lock for the whole unit is what
// makes the booking compare-and-set plus transfer one serialization
// point, exactly as row locking does in the SQLite store.
func (m *Memory) WithTx(_ context.Context, fn func(exchange.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.snapshot()
	if err := fn(&txView{parent: m}); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

type memorySnapshot struct {
	users        map[exchange.UserID]exchange.User
	sessions     map[exchange.SessionID]exchange.Session
	sessionOrder []exchange.SessionID
	entries      []exchange.LedgerEntry
	idempotency  map[string]bool
	skills       map[exchange.SkillID]exchange.Skill
	skillOrder   []exchange.SkillID
	reviews      []exchange.Review
}

func (m *Memory) snapshot() memorySnapshot {
	s := memorySnapshot{
		users:        make(map[exchange.UserID]exchange.User, len(m.users)),
		sessions:     make(map[exchange.SessionID]exchange.Session, len(m.sessions)),
		sessionOrder: append([]exchange.SessionID{}, m.sessionOrder...),
		entries:      append([]exchange.LedgerEntry{}, m.entries...),
		idempotency:  make(map[string]bool, len(m.idempotency)),
		skills:       make(map[exchange.SkillID]exchange.Skill, len(m.skills)),
		skillOrder:   append([]exchange.SkillID{}, m.skillOrder...),
		reviews:      append([]exchange.Review{}, m.reviews...),
	}
	for k, v := range m.users {
		s.users[k] = v
	}
	for k, v := range m.sessions {
		s.sessions[k] = cloneSession(v)
	}
	for k, v := range m.idempotency {
		s.idempotency[k] = v
	}
	for k, v := range m.skills {
		s.skills[k] = v
	}
	return s
}

func (m *Memory) restore(s memorySnapshot) {
	m.users = s.users
	m.sessions = s.sessions
	m.sessionOrder = s.sessionOrder
	m.entries = s.entries
	m.idempotency = s.idempotency
	m.skills = s.skills
	m.skillOrder = s.skillOrder
	m.reviews = s.reviews
}

// txView routes every call to the parent's unlocked helpers; the parent
// already holds the lock for the duration of WithTx.
type txView struct {
	parent *Memory
}

func (tv *txView) SaveUser(_ context.Context, u exchange.User) error {
	return tv.parent.saveUserLocked(u)
}

func (tv *txView) GetUser(_ context.Context, id exchange.UserID) (*exchange.User, error) {
	return tv.parent.getUserLocked(id)
}

func (tv *txView) AdjustBalance(_ context.Context, id exchange.UserID, delta exchange.Credits) error {
	return tv.parent.adjustBalanceLocked(id, delta)
}

func (tv *txView) SaveSession(_ context.Context, s exchange.Session) error {
	return tv.parent.saveSessionLocked(s)
}

func (tv *txView) GetSession(_ context.Context, id exchange.SessionID) (*exchange.Session, error) {
	return tv.parent.getSessionLocked(id)
}

func (tv *txView) TransitionSession(_ context.Context, id exchange.SessionID, expected, next exchange.SessionStatus, student *exchange.UserID) error {
	return tv.parent.transitionLocked(id, expected, next, student)
}

func (tv *txView) AvailableSessions(_ context.Context) ([]exchange.Session, error) {
	return tv.parent.listSessionsLocked(func(s exchange.Session) bool {
		return s.Status == exchange.StatusOpen && s.StudentID == nil
	}), nil
}

func (tv *txView) SessionsByTeacher(_ context.Context, teacherID exchange.UserID) ([]exchange.Session, error) {
	return tv.parent.listSessionsLocked(func(s exchange.Session) bool {
		return s.TeacherID == teacherID
	}), nil
}

func (tv *txView) SessionsByStudent(_ context.Context, studentID exchange.UserID) ([]exchange.Session, error) {
	return tv.parent.listSessionsLocked(func(s exchange.Session) bool {
		return s.StudentID != nil && *s.StudentID == studentID
	}), nil
}

func (tv *txView) AppendEntry(_ context.Context, e exchange.LedgerEntry) error {
	return tv.parent.appendEntryLocked(e)
}

func (tv *txView) EntriesByUser(_ context.Context, id exchange.UserID) ([]exchange.LedgerEntry, error) {
	var out []exchange.LedgerEntry
	for i := len(tv.parent.entries) - 1; i >= 0; i-- {
		if tv.parent.entries[i].UserID == id {
			out = append(out, tv.parent.entries[i])
		}
	}
	return out, nil
}

func (tv *txView) SaveSkill(_ context.Context, s exchange.Skill) error {
	return tv.parent.saveSkillLocked(s)
}

func (tv *txView) GetSkill(_ context.Context, id exchange.SkillID) (*exchange.Skill, error) {
	s, ok := tv.parent.skills[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (tv *txView) SkillsByUser(_ context.Context, userID exchange.UserID, teaching bool) ([]exchange.Skill, error) {
	var out []exchange.Skill
	for i := len(tv.parent.skillOrder) - 1; i >= 0; i-- {
		s := tv.parent.skills[tv.parent.skillOrder[i]]
		if s.UserID == userID && s.Teaching == teaching {
			out = append(out, s)
		}
	}
	return out, nil
}

func (tv *txView) SaveReview(_ context.Context, r exchange.Review) error {
	tv.parent.reviews = append(tv.parent.reviews, r)
	return nil
}

func (tv *txView) ReviewsBySession(_ context.Context, sessionID exchange.SessionID) ([]exchange.Review, error) {
	var out []exchange.Review
	for i := len(tv.parent.reviews) - 1; i >= 0; i-- {
		if tv.parent.reviews[i].SessionID == sessionID {
			out = append(out, tv.parent.reviews[i])
		}
	}
	return out, nil
}

/*
handlers.go - HTTP API handlers for the skill-exchange marketplace

PURPOSE:
  Exposes the booking core via REST. Handlers parse the request, pull
  the caller's identity from the auth collaborator's header, delegate
  to domain services, and serialize the result.

IDENTITY:
  The auth collaborator fronts this service and forwards the verified
  user id in the X-User-ID header. Handlers trust it without
  re-authenticating; requests without it get 401.

ENDPOINTS:
  Users:
    POST /api/users                    Register (applies the seed grant)
    GET  /api/users/{id}               User with current balance
    GET  /api/users/{id}/entries       Ledger entry history

  Skills:
    POST /api/skills                   Add a skill to the caller's profile
    GET  /api/skills/teaching          Caller's teaching skills
    GET  /api/skills/learning          Caller's learning skills
    GET  /api/skills/{id}              Get skill

  Sessions:
    GET  /api/sessions                 Available sessions (newest first)
    GET  /api/sessions/teaching        Caller's sessions as teacher
    GET  /api/sessions/learning        Caller's sessions as student
    POST /api/sessions                 Create session (caller teaches)
    GET  /api/sessions/{id}            Get session
    POST /api/sessions/{id}/book       Book (caller is the student)
    POST /api/sessions/{id}/complete   Complete (teacher only)
    POST /api/sessions/{id}/cancel     Cancel (participant rules)

  Reviews:
    GET  /api/sessions/{id}/reviews    List reviews
    POST /api/sessions/{id}/reviews    Review a completed session

ERROR HANDLING:
  Every domain error kind maps to one HTTP status (see statusForError);
  the body is a stable {error, details} pair with no internals.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/PrithviBathla/EduPair/exchange"
)

// identityHeader carries the authenticated user id, set by the auth
// collaborator in front of this service.
const identityHeader = "X-User-ID"

// SignupGrant is the credit balance every new account starts with.
var SignupGrant = exchange.NewCredits(5)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store      exchange.TxStore
	Ledger     *exchange.Ledger
	Booking    *exchange.BookingService
	Completion *exchange.CompletionService
	Query      *exchange.QueryService
}

// NewHandler wires the domain services over the given store.
func NewHandler(store exchange.TxStore) *Handler {
	ledger := exchange.NewLedger()
	return &Handler{
		Store:      store,
		Ledger:     ledger,
		Booking:    exchange.NewBookingService(store, ledger),
		Completion: exchange.NewCompletionService(store),
		Query:      exchange.NewQueryService(store),
	}
}

// =============================================================================
// USER HANDLERS
// =============================================================================

// CreateUser registers a user and applies the signup grant atomically.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}

	id := exchange.UserID(req.ID)
	if id == "" {
		id = exchange.UserID(uuid.NewString())
	}

	ctx := r.Context()
	if existing, err := h.Store.GetUser(ctx, id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create user", err)
		return
	} else if existing != nil {
		writeError(w, http.StatusConflict, "User already exists", nil)
		return
	}

	err := h.Store.WithTx(ctx, func(st exchange.Store) error {
		if err := st.SaveUser(ctx, exchange.User{
			ID:        id,
			Name:      req.Name,
			Email:     req.Email,
			Balance:   exchange.ZeroCredits(),
			CreatedAt: time.Now().UTC(),
		}); err != nil {
			return err
		}
		return h.Ledger.Grant(ctx, st, id, SignupGrant, "signup grant")
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create user", err)
		return
	}

	u, err := h.Store.GetUser(ctx, id)
	if err != nil || u == nil {
		writeError(w, http.StatusInternalServerError, "Failed to create user", err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserDTO(u))
}

// GetUser returns a user with their current balance.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id := exchange.UserID(chi.URLParam(r, "id"))

	u, err := h.Store.GetUser(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get user", err)
		return
	}
	if u == nil {
		writeError(w, http.StatusNotFound, "User not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(u))
}

// GetUserEntries returns the user's ledger history, newest first.
func (h *Handler) GetUserEntries(w http.ResponseWriter, r *http.Request) {
	id := exchange.UserID(chi.URLParam(r, "id"))
	ctx := r.Context()

	u, err := h.Store.GetUser(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get user", err)
		return
	}
	if u == nil {
		writeError(w, http.StatusNotFound, "User not found", nil)
		return
	}

	entries, err := h.Store.EntriesByUser(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load entries", err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryDTOs(entries))
}

// =============================================================================
// SKILL HANDLERS
// =============================================================================

// CreateSkill adds a skill to the caller's profile.
func (h *Handler) CreateSkill(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req CreateSkillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}
	level := exchange.SkillLevel(req.Level)
	switch level {
	case exchange.LevelBeginner, exchange.LevelIntermediate, exchange.LevelAdvanced:
	default:
		writeError(w, http.StatusBadRequest, "level must be beginner, intermediate or advanced", nil)
		return
	}

	skill := exchange.Skill{
		ID:        exchange.SkillID(uuid.NewString()),
		UserID:    userID,
		Name:      req.Name,
		Category:  req.Category,
		Level:     level,
		Teaching:  req.Teaching,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.Store.SaveSkill(r.Context(), skill); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create skill", err)
		return
	}
	writeJSON(w, http.StatusCreated, toSkillDTO(&skill))
}

// GetSkill returns a single skill.
func (h *Handler) GetSkill(w http.ResponseWriter, r *http.Request) {
	id := exchange.SkillID(chi.URLParam(r, "id"))

	skill, err := h.Store.GetSkill(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get skill", err)
		return
	}
	if skill == nil {
		writeError(w, http.StatusNotFound, "Skill not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toSkillDTO(skill))
}

// ListTeachingSkills returns the caller's teaching skills.
func (h *Handler) ListTeachingSkills(w http.ResponseWriter, r *http.Request) {
	h.listSkills(w, r, true)
}

// ListLearningSkills returns the caller's learning skills.
func (h *Handler) ListLearningSkills(w http.ResponseWriter, r *http.Request) {
	h.listSkills(w, r, false)
}

func (h *Handler) listSkills(w http.ResponseWriter, r *http.Request, teaching bool) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	skills, err := h.Store.SkillsByUser(r.Context(), userID, teaching)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list skills", err)
		return
	}
	writeJSON(w, http.StatusOK, toSkillDTOs(skills))
}

// =============================================================================
// SESSION HANDLERS
// =============================================================================

// CreateSession lists a new session with the caller as teacher.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	teacherID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required", nil)
		return
	}
	if req.SkillID == "" {
		writeError(w, http.StatusBadRequest, "skill_id is required", nil)
		return
	}
	if req.CreditCost <= 0 {
		writeError(w, http.StatusBadRequest, "credit_cost must be a positive integer", nil)
		return
	}
	if req.DurationMin <= 0 {
		writeError(w, http.StatusBadRequest, "duration_min must be positive", nil)
		return
	}
	scheduledAt, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid scheduled_at (use RFC 3339)", err)
		return
	}

	sess := exchange.Session{
		ID:          exchange.SessionID(uuid.NewString()),
		Title:       req.Title,
		Description: req.Description,
		TeacherID:   teacherID,
		SkillID:     exchange.SkillID(req.SkillID),
		ScheduledAt: scheduledAt,
		DurationMin: req.DurationMin,
		MeetingLink: req.MeetingLink,
		CreditCost:  exchange.NewCredits(req.CreditCost),
		Status:      exchange.StatusOpen,
		CreatedAt:   time.Now().UTC(),
	}
	if err := h.Store.SaveSession(r.Context(), sess); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create session", err)
		return
	}
	writeJSON(w, http.StatusCreated, toSessionDTO(&sess))
}

// GetSession returns a single session.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	id := exchange.SessionID(chi.URLParam(r, "id"))

	sess, err := h.Store.GetSession(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get session", err)
		return
	}
	if sess == nil {
		writeError(w, http.StatusNotFound, "Session not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toSessionDTO(sess))
}

// ListAvailableSessions returns bookable sessions, newest first.
func (h *Handler) ListAvailableSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.Query.Available(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sessions", err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionDTOs(sessions))
}

// ListTeachingSessions returns the caller's sessions as teacher.
func (h *Handler) ListTeachingSessions(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	sessions, err := h.Query.ByTeacher(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sessions", err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionDTOs(sessions))
}

// ListLearningSessions returns the caller's sessions as student.
func (h *Handler) ListLearningSessions(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	sessions, err := h.Query.ByStudent(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sessions", err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionDTOs(sessions))
}

// BookSession books the session for the caller.
func (h *Handler) BookSession(w http.ResponseWriter, r *http.Request) {
	studentID, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	id := exchange.SessionID(chi.URLParam(r, "id"))

	sess, err := h.Booking.Book(r.Context(), id, studentID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionDTO(sess))
}

// CompleteSession marks the session completed; teacher only.
func (h *Handler) CompleteSession(w http.ResponseWriter, r *http.Request) {
	requesterID, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	id := exchange.SessionID(chi.URLParam(r, "id"))

	sess, err := h.Completion.Complete(r.Context(), id, requesterID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionDTO(sess))
}

// CancelSession cancels the session under the participation rules.
func (h *Handler) CancelSession(w http.ResponseWriter, r *http.Request) {
	requesterID, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	id := exchange.SessionID(chi.URLParam(r, "id"))

	sess, err := h.Booking.Cancel(r.Context(), id, requesterID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionDTO(sess))
}

// =============================================================================
// REVIEW HANDLERS
// =============================================================================

// ListReviews returns reviews for a session, newest first.
func (h *Handler) ListReviews(w http.ResponseWriter, r *http.Request) {
	id := exchange.SessionID(chi.URLParam(r, "id"))
	ctx := r.Context()

	sess, err := h.Store.GetSession(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get session", err)
		return
	}
	if sess == nil {
		writeError(w, http.StatusNotFound, "Session not found", nil)
		return
	}

	reviews, err := h.Store.ReviewsBySession(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list reviews", err)
		return
	}
	writeJSON(w, http.StatusOK, toReviewDTOs(reviews))
}

// CreateReview leaves feedback on a completed session. Only the two
// participants may review, and only once the teacher marked completion.
func (h *Handler) CreateReview(w http.ResponseWriter, r *http.Request) {
	reviewerID, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	id := exchange.SessionID(chi.URLParam(r, "id"))
	ctx := r.Context()

	sess, err := h.Store.GetSession(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get session", err)
		return
	}
	if sess == nil {
		writeError(w, http.StatusNotFound, "Session not found", nil)
		return
	}
	if sess.Status != exchange.StatusCompleted {
		writeError(w, http.StatusConflict, "Only completed sessions can be reviewed", nil)
		return
	}
	if !sess.IsParticipant(reviewerID) {
		writeError(w, http.StatusForbidden, "Only participants can review a session", nil)
		return
	}

	var req CreateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		writeError(w, http.StatusBadRequest, "rating must be between 1 and 5", nil)
		return
	}

	review := exchange.Review{
		ID:         exchange.ReviewID(uuid.NewString()),
		SessionID:  id,
		ReviewerID: reviewerID,
		Rating:     req.Rating,
		Comment:    req.Comment,
		CreatedAt:  time.Now().UTC(),
	}
	if err := h.Store.SaveReview(ctx, review); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create review", err)
		return
	}
	writeJSON(w, http.StatusCreated, toReviewDTO(&review))
}

// =============================================================================
// HELPERS
// =============================================================================

// currentUser pulls the authenticated identity from the request. Writes
// a 401 and returns false when the header is missing.
func (h *Handler) currentUser(w http.ResponseWriter, r *http.Request) (exchange.UserID, bool) {
	id := r.Header.Get(identityHeader)
	if id == "" {
		writeError(w, http.StatusUnauthorized, "Not authenticated", nil)
		return "", false
	}
	return exchange.UserID(id), true
}

// writeDomainError maps a domain error kind to its HTTP status.
func writeDomainError(w http.ResponseWriter, err error) {
	writeError(w, statusForError(err), messageForError(err), err)
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, exchange.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, exchange.ErrSessionNotAvailable):
		return http.StatusConflict
	case errors.Is(err, exchange.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, exchange.ErrSelfBooking):
		return http.StatusForbidden
	case errors.Is(err, exchange.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, exchange.ErrInsufficientCredit):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func messageForError(err error) string {
	switch {
	case errors.Is(err, exchange.ErrNotFound):
		return "Session not found"
	case errors.Is(err, exchange.ErrSessionNotAvailable):
		return "Session is not available for booking"
	case errors.Is(err, exchange.ErrInvalidTransition):
		return "Session is not in a valid state for this action"
	case errors.Is(err, exchange.ErrSelfBooking):
		return "Cannot book your own session"
	case errors.Is(err, exchange.ErrForbidden):
		return "Only the teacher can perform this action"
	case errors.Is(err, exchange.ErrInsufficientCredit):
		return "Not enough credits"
	default:
		return "Internal error"
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil && status < http.StatusInternalServerError {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

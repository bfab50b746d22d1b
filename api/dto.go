/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for API communication, decoupled from the domain
  model so internal types can evolve without breaking clients.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

WIRE COMPATIBILITY:
  Session status serializes as exactly one of "open", "booked",
  "completed", "cancelled" - collaborators match on these literals.
  Credit amounts serialize as plain integers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/PrithviBathla/EduPair/exchange"
)

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// UserDTO represents a user in API responses.
type UserDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Credits   int64  `json:"credits"`
	CreatedAt string `json:"created_at,omitempty"`
}

// SessionDTO represents a session in API responses.
type SessionDTO struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	TeacherID   string  `json:"teacher_id"`
	StudentID   *string `json:"student_id"`
	SkillID     string  `json:"skill_id"`
	ScheduledAt string  `json:"scheduled_at"`
	DurationMin int     `json:"duration_min"`
	MeetingLink string  `json:"meeting_link,omitempty"`
	CreditCost  int64   `json:"credit_cost"`
	Status      string  `json:"status"`
	CreatedAt   string  `json:"created_at"`
}

// SkillDTO represents a skill in API responses.
type SkillDTO struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	Category  string `json:"category,omitempty"`
	Level     string `json:"level"`
	Teaching  bool   `json:"teaching"`
	CreatedAt string `json:"created_at,omitempty"`
}

// EntryDTO represents a ledger entry in API responses.
type EntryDTO struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	Delta       int64  `json:"delta"`
	Type        string `json:"type"`
	ReferenceID string `json:"reference_id,omitempty"`
	Reason      string `json:"reason,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// ReviewDTO represents a review in API responses.
type ReviewDTO struct {
	ID         string `json:"id"`
	SessionID  string `json:"session_id"`
	ReviewerID string `json:"reviewer_id"`
	Rating     int    `json:"rating"`
	Comment    string `json:"comment,omitempty"`
	CreatedAt  string `json:"created_at"`
}

// ErrorResponse is the uniform error body. Details carry the stable
// error kind's message; internals are never exposed.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// REQUEST TYPES
// =============================================================================

// CreateUserRequest registers a user. The seed grant is applied by the
// server; clients cannot choose a starting balance.
type CreateUserRequest struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// CreateSessionRequest lists a new teaching session. The caller (from
// the identity header) becomes the teacher.
type CreateSessionRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	SkillID     string `json:"skill_id"`
	ScheduledAt string `json:"scheduled_at"`
	DurationMin int    `json:"duration_min"`
	MeetingLink string `json:"meeting_link,omitempty"`
	CreditCost  int64  `json:"credit_cost"`
}

// CreateSkillRequest adds a skill to the caller's profile.
type CreateSkillRequest struct {
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Level    string `json:"level"`
	Teaching bool   `json:"teaching"`
}

// CreateReviewRequest leaves feedback on a completed session.
type CreateReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment,omitempty"`
}

// =============================================================================
// CONVERTERS
// =============================================================================

func toUserDTO(u *exchange.User) UserDTO {
	return UserDTO{
		ID:        string(u.ID),
		Name:      u.Name,
		Email:     u.Email,
		Credits:   u.Balance.Int64(),
		CreatedAt: formatTime(u.CreatedAt),
	}
}

func toSessionDTO(s *exchange.Session) SessionDTO {
	dto := SessionDTO{
		ID:          string(s.ID),
		Title:       s.Title,
		Description: s.Description,
		TeacherID:   string(s.TeacherID),
		SkillID:     string(s.SkillID),
		ScheduledAt: formatTime(s.ScheduledAt),
		DurationMin: s.DurationMin,
		MeetingLink: s.MeetingLink,
		CreditCost:  s.CreditCost.Int64(),
		Status:      string(s.Status),
		CreatedAt:   formatTime(s.CreatedAt),
	}
	if s.StudentID != nil {
		v := string(*s.StudentID)
		dto.StudentID = &v
	}
	return dto
}

func toSessionDTOs(sessions []exchange.Session) []SessionDTO {
	dtos := make([]SessionDTO, len(sessions))
	for i := range sessions {
		dtos[i] = toSessionDTO(&sessions[i])
	}
	return dtos
}

func toSkillDTO(s *exchange.Skill) SkillDTO {
	return SkillDTO{
		ID:        string(s.ID),
		UserID:    string(s.UserID),
		Name:      s.Name,
		Category:  s.Category,
		Level:     string(s.Level),
		Teaching:  s.Teaching,
		CreatedAt: formatTime(s.CreatedAt),
	}
}

func toSkillDTOs(skills []exchange.Skill) []SkillDTO {
	dtos := make([]SkillDTO, len(skills))
	for i := range skills {
		dtos[i] = toSkillDTO(&skills[i])
	}
	return dtos
}

func toEntryDTOs(entries []exchange.LedgerEntry) []EntryDTO {
	dtos := make([]EntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = EntryDTO{
			ID:          string(e.ID),
			UserID:      string(e.UserID),
			Delta:       e.Delta.Int64(),
			Type:        string(e.Type),
			ReferenceID: e.ReferenceID,
			Reason:      e.Reason,
			CreatedAt:   formatTime(e.CreatedAt),
		}
	}
	return dtos
}

func toReviewDTO(r *exchange.Review) ReviewDTO {
	return ReviewDTO{
		ID:         string(r.ID),
		SessionID:  string(r.SessionID),
		ReviewerID: string(r.ReviewerID),
		Rating:     r.Rating,
		Comment:    r.Comment,
		CreatedAt:  formatTime(r.CreatedAt),
	}
}

func toReviewDTOs(reviews []exchange.Review) []ReviewDTO {
	dtos := make([]ReviewDTO, len(reviews))
	for i := range reviews {
		dtos[i] = toReviewDTO(&reviews[i])
	}
	return dtos
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

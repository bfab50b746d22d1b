/*
query.go - Read-only session projections

PURPOSE:
  The views external collaborators consume: what can be booked, what a
  teacher is offering, what a student has booked. Pure reads, newest
  first, no locking beyond the store's normal read consistency.
*/
package exchange

import "context"

// QueryService exposes read-only session projections.
type QueryService struct {
	store Store
}

func NewQueryService(store Store) *QueryService {
	return &QueryService{store: store}
}

// Available returns open, unassigned sessions, newest first. A session
// that was just booked never appears here again.
func (q *QueryService) Available(ctx context.Context) ([]Session, error) {
	return q.store.AvailableSessions(ctx)
}

// ByTeacher returns every session the user teaches, newest first.
func (q *QueryService) ByTeacher(ctx context.Context, teacherID UserID) ([]Session, error) {
	return q.store.SessionsByTeacher(ctx, teacherID)
}

// ByStudent returns every session the user has booked, newest first.
func (q *QueryService) ByStudent(ctx context.Context, studentID UserID) ([]Session, error) {
	return q.store.SessionsByStudent(ctx, studentID)
}

/*
session.go - Session status state machine

PURPOSE:
  Encodes the directed edges a session may travel and nothing else.
  Stores consult this table at their single write point so no invalid
  edge can reach storage regardless of which service requested it.

STATE MACHINE:

      book                 complete
  open ───────▶ booked ──────────▶ completed
    │             │
    │ cancel      │ cancel
    ▼             ▼
  cancelled    cancelled

  completed and cancelled are terminal. Everything not drawn above
  (open→completed, completed→anything, ...) is rejected.

GUARDS (enforced by the services, not this table):
  open→booked       student ≠ teacher, session unassigned
  open→cancelled    requester is the teacher
  booked→completed  requester is the teacher
  booked→cancelled  requester is a participant (credits refunded)
*/
package exchange

// SessionStatus is persisted and serialized with exactly these literals;
// external collaborators depend on them verbatim.
type SessionStatus string

const (
	StatusOpen      SessionStatus = "open"
	StatusBooked    SessionStatus = "booked"
	StatusCompleted SessionStatus = "completed"
	StatusCancelled SessionStatus = "cancelled"
)

// validTransitions is the complete edge set. Absence means rejection.
var validTransitions = map[SessionStatus][]SessionStatus{
	StatusOpen:   {StatusBooked, StatusCancelled},
	StatusBooked: {StatusCompleted, StatusCancelled},
	// completed and cancelled are terminal: no outgoing edges.
}

// CanTransition reports whether from -> to is an allowed edge.
func CanTransition(from, to SessionStatus) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidStatus reports whether s is one of the four known literals.
func ValidStatus(s SessionStatus) bool {
	switch s {
	case StatusOpen, StatusBooked, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether s has no outgoing edges.
func Terminal(s SessionStatus) bool {
	return len(validTransitions[s]) == 0 && ValidStatus(s)
}

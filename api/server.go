/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the web client

ROUTE GROUPS:
  /api/users/*      Registration, balances, ledger history
  /api/skills/*     Teaching and learning skills
  /api/sessions/*   Listing, booking, completion, cancellation, reviews

SECURITY NOTE:
  Identity comes from the X-User-ID header set by the auth collaborator
  in front of this service. There is no authentication middleware here.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-User-ID"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// User routes
		r.Route("/users", func(r chi.Router) {
			r.Post("/", h.CreateUser)
			r.Get("/{id}", h.GetUser)
			r.Get("/{id}/entries", h.GetUserEntries)
		})

		// Skill routes
		r.Route("/skills", func(r chi.Router) {
			r.Post("/", h.CreateSkill)
			r.Get("/teaching", h.ListTeachingSkills)
			r.Get("/learning", h.ListLearningSkills)
			r.Get("/{id}", h.GetSkill)
		})

		// Session routes
		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", h.ListAvailableSessions)
			r.Post("/", h.CreateSession)
			r.Get("/teaching", h.ListTeachingSessions)
			r.Get("/learning", h.ListLearningSessions)
			r.Get("/{id}", h.GetSession)
			r.Post("/{id}/book", h.BookSession)
			r.Post("/{id}/complete", h.CompleteSession)
			r.Post("/{id}/cancel", h.CancelSession)
			r.Get("/{id}/reviews", h.ListReviews)
			r.Post("/{id}/reviews", h.CreateReview)
		})
	})

	return r
}
